package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/i474232898/emissions-explorer/internal/indicators"
)

const (
	worldSheet   = "World"
	regionsSheet = "Regions"
	dateFormat   = "2006-01-02"
)

// WriteXLSX writes view as a workbook with a World sheet (date, value) and a
// Regions sheet (date, one column per region). Absent cells are left empty.
func WriteXLSX(w io.Writer, view indicators.MetricView) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", worldSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(regionsSheet); err != nil {
		return err
	}

	if err := writeWorld(f, view); err != nil {
		return fmt.Errorf("write %s sheet: %w", worldSheet, err)
	}
	if err := writeRegions(f, view); err != nil {
		return fmt.Errorf("write %s sheet: %w", regionsSheet, err)
	}

	_, err := f.WriteTo(w)
	return err
}

func writeWorld(f *excelize.File, view indicators.MetricView) error {
	if err := f.SetSheetRow(worldSheet, "A1", &[]interface{}{"Date", view.Metric}); err != nil {
		return err
	}
	for i, p := range view.World {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(worldSheet, cell, &[]interface{}{p.Date.Format(dateFormat), p.Value}); err != nil {
			return err
		}
	}
	return f.SetColWidth(worldSheet, "A", "B", 18)
}

func writeRegions(f *excelize.File, view indicators.MetricView) error {
	m := view.Regions

	header := make([]interface{}, 0, len(m.Columns)+1)
	header = append(header, "Date")
	for _, c := range m.Columns {
		header = append(header, c)
	}
	if err := f.SetSheetRow(regionsSheet, "A1", &header); err != nil {
		return err
	}

	for i, d := range m.Dates {
		row := make([]interface{}, len(m.Columns)+1)
		row[0] = d.Format(dateFormat)
		for j, v := range m.Cells[i] {
			if v.Valid {
				row[j+1] = v.Float
			}
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(regionsSheet, cell, &row); err != nil {
			return err
		}
	}

	last, err := excelize.ColumnNumberToName(len(m.Columns) + 1)
	if err != nil {
		return err
	}
	return f.SetColWidth(regionsSheet, "A", last, 18)
}
