package indicators

import (
	"time"
)

// WorldEntity is the synthetic aggregate entity the API reports alongside countries and regions.
const WorldEntity = "World"

// Indicator is a single statistical series known by its agency code.
type Indicator struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
}

// Catalog maps indicator codes to display names. Order is the column order of
// the loaded dataset.
type Catalog []Indicator

// Codes returns the indicator codes in catalog order.
func (c Catalog) Codes() []string {
	codes := make([]string, 0, len(c))
	for _, ind := range c {
		codes = append(codes, ind.Code)
	}
	return codes
}

// Names returns the display names in catalog order.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for _, ind := range c {
		names = append(names, ind.Name)
	}
	return names
}

// NameOf returns the display name for code.
func (c Catalog) NameOf(code string) (string, bool) {
	for _, ind := range c {
		if ind.Code == code {
			return ind.Name, true
		}
	}
	return "", false
}

// DefaultCatalog is the set of World Bank indicators tracked when no catalog file is configured.
func DefaultCatalog() Catalog {
	return Catalog{
		{Code: "SP.POP.TOTL", Name: "Population, total"},
		{Code: "AG.SRF.TOTL.K2", Name: "Surface area (sq. km)"},
		{Code: "AG.LND.TOTL.K2", Name: "Land area (sq. km)"},
		{Code: "AG.LND.ARBL.ZS", Name: "Arable land (% of land area)"},
		{Code: "EN.ATM.GHGT.KT.CE", Name: "Total greenhouse gas emissions (kt of CO2 equivalent)"},
		{Code: "EN.ATM.CO2E.KT", Name: "CO2 emissions (kt)"},
		{Code: "EN.ATM.NOXE.KT.CE", Name: "Nitrous oxide emissions (thousand metric tons of CO2 equivalent)"},
		{Code: "EN.ATM.METH.KT.CE", Name: "Methane emissions (kt of CO2 equivalent)"},
		{Code: "EN.ATM.CO2E.SF.KT", Name: "CO2 emissions from solid fuel consumption (kt)"},
		{Code: "EN.ATM.CO2E.LF.KT", Name: "CO2 emissions from liquid fuel consumption (kt)"},
		{Code: "EN.ATM.CO2E.GF.KT", Name: "CO2 emissions from gaseous fuel consumption (kt)"},
		{Code: "EN.CO2.MANF.ZS", Name: "CO2 emissions from manufacturing industries and construction (% of total fuel combustion)"},
		{Code: "EN.CO2.TRAN.ZS", Name: "CO2 emissions from transport (% of total fuel combustion)"},
		{Code: "EN.ATM.CO2E.GF.ZS", Name: "CO2 emissions from gaseous fuel consumption (% of total)"},
		{Code: "EN.ATM.CO2E.KD.GD", Name: "CO2 emissions (kg per 2010 US$ of GDP)"},
		{Code: "AG.YLD.CREL.KG", Name: "Cereal yield (kg per hectare)"},
		{Code: "AG.PRD.LVSK.XD", Name: "Livestock production index (2004-2006 = 100)"},
		{Code: "AG.PRD.CROP.XD", Name: "Crop production index (2004-2006 = 100)"},
		{Code: "NY.GDP.MKTP.CD", Name: "GDP (current US$)"},
		{Code: "NY.GDP.MKTP.KD", Name: "GDP (constant 2010 US$)"},
	}
}

// DefaultRegions lists the World Bank regions, in order of increasing population.
// The order is the stacking order of region charts.
func DefaultRegions() []string {
	return []string{
		"East Asia & Pacific",
		"South Asia",
		"Sub-Saharan Africa",
		"Europe & Central Asia",
		"Latin America & Caribbean",
		"Middle East & North Africa",
		"North America",
	}
}

// Value is a single dataset cell. Valid is false for a missing observation.
type Value struct {
	Float float64
	Valid bool
}

// Observation is one (entity, date, code) cell as returned by a Source.
type Observation struct {
	Entity string
	Date   time.Time
	Code   string
	Value  Value
}

// Row is one (entity, date) record of a Dataset. Values are aligned with Dataset.Columns.
type Row struct {
	Entity string    `json:"entity"`
	Date   time.Time `json:"date"`
	Values []Value   `json:"values"`
}

// Point is a single non-missing value of a time series.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Series is a date-ordered sequence of points.
type Series []Point

// Matrix is a dates x columns table. Cells[i][j] is the value of Columns[j] at Dates[i].
type Matrix struct {
	Columns []string    `json:"columns"`
	Dates   []time.Time `json:"dates"`
	Cells   [][]Value   `json:"cells"`
}

// Column returns the column named name as a series, dropping absent cells.
func (m Matrix) Column(name string) (Series, bool) {
	j := -1
	for i, c := range m.Columns {
		if c == name {
			j = i
			break
		}
	}
	if j < 0 {
		return nil, false
	}

	out := make(Series, 0, len(m.Dates))
	for i, d := range m.Dates {
		if v := m.Cells[i][j]; v.Valid {
			out = append(out, Point{Date: d, Value: v.Float})
		}
	}
	return out, true
}

// MetricView is the per-request projection of one metric: the world series and the region matrix.
type MetricView struct {
	Metric  string `json:"metric"`
	World   Series `json:"world"`
	Regions Matrix `json:"regions"`
}
