package chart

import (
	"errors"
	"io"
	"math"
	"sort"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
)

// ErrNoData is returned when a figure has nothing to draw.
var ErrNoData = errors.New("no data to render")

const (
	defaultWidth  = 1024
	defaultHeight = 576
)

// RenderPNG draws fig as a PNG. Stack groups are drawn cumulatively and
// filled, topmost layer first, so each band shows its own contribution.
func RenderPNG(w io.Writer, fig Figure) error {
	var (
		series []gochart.Series
		groups = make(map[string][]Trace)
		order  []string
		color  int
	)

	nextColor := func() gochart.Style {
		c := gochart.GetDefaultColor(color)
		color++
		return gochart.Style{StrokeColor: c, StrokeWidth: 2}
	}

	for _, t := range fig.Traces {
		if t.StackGroup == "" {
			continue
		}
		if _, ok := groups[t.StackGroup]; !ok {
			order = append(order, t.StackGroup)
		}
		groups[t.StackGroup] = append(groups[t.StackGroup], t)
	}

	for _, g := range order {
		traces := groups[g]
		dates, cumulative := stacked(traces)
		if len(dates) == 0 {
			continue
		}
		styles := make([]gochart.Style, len(traces))
		for k := range traces {
			st := nextColor()
			st.FillColor = st.StrokeColor.WithAlpha(128)
			styles[k] = st
		}
		for k := len(traces) - 1; k >= 0; k-- {
			series = append(series, gochart.TimeSeries{
				Name:    traces[k].Name,
				XValues: dates,
				YValues: cumulative[k],
				Style:   styles[k],
			})
		}
	}

	for _, t := range fig.Traces {
		if t.StackGroup != "" || len(t.Points) == 0 {
			continue
		}
		st := nextColor()
		if t.Dashed {
			st.StrokeColor = gochart.ColorBlack
			st.StrokeDashArray = []float64{6.0, 4.0}
		}
		xs := make([]time.Time, len(t.Points))
		ys := make([]float64, len(t.Points))
		for i, p := range t.Points {
			xs[i] = p.Date
			ys[i] = p.Value
		}
		series = append(series, gochart.TimeSeries{Name: t.Name, XValues: xs, YValues: ys, Style: st})
	}

	if len(series) == 0 {
		return ErrNoData
	}

	ch := gochart.Chart{
		Title:  fig.Title,
		Width:  defaultWidth,
		Height: defaultHeight,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: gochart.XAxis{
			ValueFormatter: gochart.TimeValueFormatterWithFormat("2006"),
		},
		YAxis: gochart.YAxis{
			Name: fig.YAxis,
		},
		Series: series,
	}
	padRanges(&ch, series)
	ch.Elements = []gochart.Renderable{gochart.LegendLeft(&ch)}

	return ch.Render(gochart.PNG, w)
}

// padRanges widens an axis whose values collapse to a single point, which
// go-chart refuses to render. A lone year gets six months either side.
func padRanges(ch *gochart.Chart, series []gochart.Series) {
	var minX, maxX time.Time
	var minY, maxY float64
	first := true
	for _, s := range series {
		ts, ok := s.(gochart.TimeSeries)
		if !ok {
			continue
		}
		for i, x := range ts.XValues {
			y := ts.YValues[i]
			if first {
				minX, maxX, minY, maxY = x, x, y, y
				first = false
				continue
			}
			if x.Before(minX) {
				minX = x
			}
			if x.After(maxX) {
				maxX = x
			}
			minY = math.Min(minY, y)
			maxY = math.Max(maxY, y)
		}
	}
	if first {
		return
	}

	if minX.Equal(maxX) {
		ch.XAxis.Range = &gochart.ContinuousRange{
			Min: gochart.TimeToFloat64(minX.AddDate(0, -6, 0)),
			Max: gochart.TimeToFloat64(maxX.AddDate(0, 6, 0)),
		}
	}
	if minY == maxY {
		pad := math.Abs(minY) * 0.1
		if pad == 0 {
			pad = 1
		}
		ch.YAxis.Range = &gochart.ContinuousRange{Min: minY - pad, Max: maxY + pad}
	}
}

func sortTimes(ts []time.Time) {
	sort.Slice(ts, func(i, j int) bool { return ts[i].Before(ts[j]) })
}
