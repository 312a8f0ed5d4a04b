package indicators

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
	"time"
)

var jsonNull = []byte("null")

// MarshalJSON encodes a missing value as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return jsonNull, nil
	}
	return json.Marshal(v.Float)
}

// UnmarshalJSON decodes null as a missing value.
func (v *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		*v = Value{}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Value{Float: f, Valid: true}
	return nil
}

// Dataset is a table keyed by (entity, date) with one column per indicator display name.
// It is built once and must not be mutated afterwards.
type Dataset struct {
	columns []string
	rows    []Row

	columnIndex map[string]int
	// entity -> [start, end) into rows
	entitySpans map[string][2]int
}

// NewDataset sorts rows by (entity, date) and indexes them. Every row must carry
// exactly len(columns) values.
func NewDataset(columns []string, rows []Row) *Dataset {
	cols := append([]string(nil), columns...)
	sorted := append([]Row(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return rowLess(sorted[i], sorted[j])
	})

	ds := &Dataset{
		columns:     cols,
		rows:        sorted,
		columnIndex: make(map[string]int, len(cols)),
		entitySpans: make(map[string][2]int),
	}
	for i, c := range cols {
		if _, dup := ds.columnIndex[c]; !dup {
			ds.columnIndex[c] = i
		}
	}
	for i := 0; i < len(sorted); {
		j := i
		for j < len(sorted) && sorted[j].Entity == sorted[i].Entity {
			j++
		}
		ds.entitySpans[sorted[i].Entity] = [2]int{i, j}
		i = j
	}
	return ds
}

// FromObservations pivots long-format observations into a Dataset. Codes are
// renamed to display names via catalog; codes absent from the catalog are dropped.
func FromObservations(catalog Catalog, obs []Observation) *Dataset {
	columns := catalog.Names()
	colOf := make(map[string]int, len(catalog))
	for i, ind := range catalog {
		colOf[ind.Code] = i
	}

	type key struct {
		entity string
		date   time.Time
	}
	index := make(map[key]int)
	var rows []Row

	for _, o := range obs {
		j, ok := colOf[o.Code]
		if !ok {
			continue
		}
		k := key{entity: o.Entity, date: o.Date.UTC()}
		i, ok := index[k]
		if !ok {
			i = len(rows)
			index[k] = i
			rows = append(rows, Row{Entity: k.entity, Date: k.date, Values: make([]Value, len(columns))})
		}
		rows[i].Values[j] = o.Value
	}

	return NewDataset(columns, rows)
}

func rowLess(a, b Row) bool {
	if c := strings.Compare(a.Entity, b.Entity); c != 0 {
		return c < 0
	}
	return a.Date.Before(b.Date)
}

// Columns returns the display names of the dataset's columns.
func (d *Dataset) Columns() []string {
	return append([]string(nil), d.columns...)
}

// Rows returns the rows sorted by (entity, date). The slice must not be modified.
func (d *Dataset) Rows() []Row {
	return d.rows
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.rows)
}

// HasColumn reports whether name is one of the dataset's columns.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.columnIndex[name]
	return ok
}

// HasEntity reports whether the dataset has any row for entity.
func (d *Dataset) HasEntity(entity string) bool {
	_, ok := d.entitySpans[entity]
	return ok
}

// Entities returns the distinct entity names in sorted order.
func (d *Dataset) Entities() []string {
	out := make([]string, 0, len(d.entitySpans))
	for e := range d.entitySpans {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// entityRows returns the contiguous date-ordered rows for entity.
func (d *Dataset) entityRows(entity string) ([]Row, bool) {
	span, ok := d.entitySpans[entity]
	if !ok {
		return nil, false
	}
	return d.rows[span[0]:span[1]], true
}
