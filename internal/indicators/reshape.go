package indicators

import (
	"sort"
	"time"
)

// WorldSeries returns the non-missing values of metric for the World aggregate, ordered by date.
func WorldSeries(ds *Dataset, metric string) (Series, error) {
	return EntitySeries(ds, WorldEntity, metric)
}

// EntitySeries returns the non-missing values of metric for a single entity, ordered by date.
// The result is empty, not nil, when the entity has no observations for metric.
func EntitySeries(ds *Dataset, entity, metric string) (Series, error) {
	j, ok := ds.columnIndex[metric]
	if !ok {
		return nil, &MetricNotFoundError{Metric: metric}
	}
	rows, ok := ds.entityRows(entity)
	if !ok {
		return nil, &EntityNotFoundError{Entity: entity}
	}

	out := make(Series, 0, len(rows))
	for _, r := range rows {
		if v := r.Values[j]; v.Valid {
			out = append(out, Point{Date: r.Date, Value: v.Float})
		}
	}
	return out, nil
}

// RegionMatrix pivots metric into one column per region and one row per date.
//
// Missing values are dropped before pivoting, so a region without any
// observation contributes no column. Columns follow order; rows are the
// sorted union of observed dates. Cells with no observation are not Valid.
func RegionMatrix(ds *Dataset, metric string, order []string) (Matrix, error) {
	if !ds.HasColumn(metric) {
		return Matrix{}, &MetricNotFoundError{Metric: metric}
	}
	for _, region := range order {
		if !ds.HasEntity(region) {
			return Matrix{}, &EntityNotFoundError{Entity: region}
		}
	}

	var (
		columns []string
		series  []Series
		dateSet = make(map[time.Time]struct{})
	)
	seen := make(map[string]bool, len(order))
	for _, region := range order {
		if seen[region] {
			continue
		}
		seen[region] = true

		s, err := EntitySeries(ds, region, metric)
		if err != nil {
			return Matrix{}, err
		}
		if len(s) == 0 {
			continue
		}
		columns = append(columns, region)
		series = append(series, s)
		for _, p := range s {
			dateSet[p.Date] = struct{}{}
		}
	}

	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	rowOf := make(map[time.Time]int, len(dates))
	cells := make([][]Value, len(dates))
	for i, d := range dates {
		rowOf[d] = i
		cells[i] = make([]Value, len(columns))
	}
	for j, s := range series {
		for _, p := range s {
			cells[rowOf[p.Date]][j] = Value{Float: p.Value, Valid: true}
		}
	}

	return Matrix{Columns: columns, Dates: dates, Cells: cells}, nil
}

// View computes the world series and the region matrix for metric.
func View(ds *Dataset, metric string, order []string) (MetricView, error) {
	world, err := WorldSeries(ds, metric)
	if err != nil {
		return MetricView{}, err
	}
	regions, err := RegionMatrix(ds, metric, order)
	if err != nil {
		return MetricView{}, err
	}
	return MetricView{Metric: metric, World: world, Regions: regions}, nil
}
