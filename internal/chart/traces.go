package chart

import (
	"time"

	"github.com/i474232898/emissions-explorer/internal/common"
	"github.com/i474232898/emissions-explorer/internal/indicators"
)

// Trace is one plotted series. Traces sharing a non-empty StackGroup are drawn cumulatively.
type Trace struct {
	Name       string            `json:"name"`
	Points     indicators.Series `json:"points"`
	StackGroup string            `json:"stackGroup,omitempty"`
	Dashed     bool              `json:"dashed,omitempty"`
}

// Stackable reports whether regional values of metric can be summed. Shares,
// indices and per-unit ratios cannot.
func Stackable(metric string) bool {
	return !common.HasAny(metric, "%", " 100", " per ")
}

// BuildTraces returns one trace per region column, in column order, followed
// by a dashed World trace.
func BuildTraces(view indicators.MetricView) []Trace {
	group := ""
	if Stackable(view.Metric) {
		group = view.Metric
	}

	traces := make([]Trace, 0, len(view.Regions.Columns)+1)
	for _, region := range view.Regions.Columns {
		points, _ := view.Regions.Column(region)
		traces = append(traces, Trace{
			Name:       region,
			Points:     points,
			StackGroup: group,
		})
	}
	traces = append(traces, Trace{
		Name:   indicators.WorldEntity,
		Points: view.World,
		Dashed: true,
	})
	return traces
}

// Part describes one World series of a composite figure.
type Part struct {
	Metric     string
	Legend     string
	StackGroup string
	Dashed     bool
}

// Figure is a titled set of traces.
type Figure struct {
	Title  string  `json:"title"`
	YAxis  string  `json:"yAxis,omitempty"`
	Traces []Trace `json:"traces"`
}

// GreenhouseGasParts is the emissions breakdown: the total as a dashed line
// over stacked CO2, nitrous oxide and methane.
func GreenhouseGasParts() []Part {
	return []Part{
		{Metric: "Total greenhouse gas emissions (kt of CO2 equivalent)", Legend: "Total", Dashed: true},
		{Metric: "CO2 emissions (kt)", Legend: "CO2", StackGroup: "ghg"},
		{Metric: "Nitrous oxide emissions (thousand metric tons of CO2 equivalent)", Legend: "Nitrous oxide", StackGroup: "ghg"},
		{Metric: "Methane emissions (kt of CO2 equivalent)", Legend: "Methane", StackGroup: "ghg"},
	}
}

// Composite builds a figure from World series of several metrics.
func Composite(ds *indicators.Dataset, title, yAxis string, parts []Part) (Figure, error) {
	fig := Figure{Title: title, YAxis: yAxis}
	for _, p := range parts {
		s, err := indicators.WorldSeries(ds, p.Metric)
		if err != nil {
			return Figure{}, err
		}
		fig.Traces = append(fig.Traces, Trace{
			Name:       p.Legend,
			Points:     s,
			StackGroup: p.StackGroup,
			Dashed:     p.Dashed,
		})
	}
	return fig, nil
}

// stacked returns the cumulative values of traces in one stack group over the
// union of their dates. Absent values count as zero.
func stacked(traces []Trace) ([]time.Time, [][]float64) {
	dateSet := make(map[time.Time]struct{})
	for _, t := range traces {
		for _, p := range t.Points {
			dateSet[p.Date] = struct{}{}
		}
	}
	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sortTimes(dates)

	idx := make(map[time.Time]int, len(dates))
	for i, d := range dates {
		idx[d] = i
	}

	running := make([]float64, len(dates))
	out := make([][]float64, len(traces))
	for k, t := range traces {
		for _, p := range t.Points {
			running[idx[p.Date]] += p.Value
		}
		out[k] = append([]float64(nil), running...)
	}
	return dates, out
}
