package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/i474232898/emissions-explorer/internal/indicators"
)

type jsonDocument struct {
	Table   string           `json:"table"`
	Columns []string         `json:"columns"`
	Rows    []indicators.Row `json:"rows"`
}

type jsonCodec struct{}

func (jsonCodec) read(path string) (*indicators.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc jsonDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if doc.Table != TableName {
		return nil, fmt.Errorf("table %q not found", TableName)
	}
	for _, r := range doc.Rows {
		if len(r.Values) != len(doc.Columns) {
			return nil, fmt.Errorf("row %s/%s has %d values, want %d",
				r.Entity, r.Date.Format("2006-01-02"), len(r.Values), len(doc.Columns))
		}
	}

	return indicators.NewDataset(doc.Columns, doc.Rows), nil
}

func (jsonCodec) write(path string, ds *indicators.Dataset) error {
	data, err := json.MarshalIndent(jsonDocument{
		Table:   TableName,
		Columns: ds.Columns(),
		Rows:    ds.Rows(),
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
