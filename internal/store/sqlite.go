package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/i474232898/emissions-explorer/internal/indicators"
)

// Long format: one row per (entity, date, metric) cell, NULL for a missing
// value. Column order lives in a side table.
const sqliteSchema = `
CREATE TABLE ` + TableName + `_columns (
	position INTEGER PRIMARY KEY,
	name     TEXT NOT NULL UNIQUE
);
CREATE TABLE ` + TableName + ` (
	entity TEXT NOT NULL,
	date   TEXT NOT NULL,
	metric TEXT NOT NULL,
	value  REAL,
	PRIMARY KEY (entity, date, metric)
);`

type sqliteCodec struct{}

func (sqliteCodec) read(path string) (*indicators.Dataset, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	defer db.Close()

	columns, err := readColumns(db)
	if err != nil {
		return nil, err
	}
	colOf := make(map[string]int, len(columns))
	for i, c := range columns {
		colOf[c] = i
	}

	rs, err := db.Query(`SELECT entity, date, metric, value FROM ` + TableName + ` ORDER BY entity, date`)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", TableName, err)
	}
	defer rs.Close()

	var rows []indicators.Row
	for rs.Next() {
		var (
			entity, date, metric string
			value                sql.NullFloat64
		)
		if err := rs.Scan(&entity, &date, &metric, &value); err != nil {
			return nil, fmt.Errorf("scan %s: %w", TableName, err)
		}
		j, ok := colOf[metric]
		if !ok {
			return nil, fmt.Errorf("cell for unknown column %q", metric)
		}
		ts, err := time.Parse(time.RFC3339, date)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", date, err)
		}

		// Rows arrive grouped by (entity, date).
		n := len(rows)
		if n == 0 || rows[n-1].Entity != entity || !rows[n-1].Date.Equal(ts) {
			rows = append(rows, indicators.Row{Entity: entity, Date: ts, Values: make([]indicators.Value, len(columns))})
			n++
		}
		rows[n-1].Values[j] = indicators.Value{Float: value.Float64, Valid: value.Valid}
	}
	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", TableName, err)
	}

	return indicators.NewDataset(columns, rows), nil
}

func readColumns(db *sql.DB) ([]string, error) {
	rs, err := db.Query(`SELECT name FROM ` + TableName + `_columns ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query %s_columns: %w", TableName, err)
	}
	defer rs.Close()

	var columns []string
	for rs.Next() {
		var name string
		if err := rs.Scan(&name); err != nil {
			return nil, err
		}
		columns = append(columns, name)
	}
	return columns, rs.Err()
}

func (sqliteCodec) write(path string, ds *indicators.Dataset) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open sqlite %s: %w", path, err)
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	columns := ds.Columns()
	for i, c := range columns {
		if _, err := tx.Exec(`INSERT INTO `+TableName+`_columns (position, name) VALUES (?, ?)`, i, c); err != nil {
			return fmt.Errorf("insert column %q: %w", c, err)
		}
	}

	stmt, err := tx.Prepare(`INSERT INTO ` + TableName + ` (entity, date, metric, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range ds.Rows() {
		date := r.Date.UTC().Format(time.RFC3339)
		for j, v := range r.Values {
			value := sql.NullFloat64{Float64: v.Float, Valid: v.Valid}
			if _, err := stmt.Exec(r.Entity, date, columns[j], value); err != nil {
				return fmt.Errorf("insert %s/%s: %w", r.Entity, date, err)
			}
		}
	}

	return tx.Commit()
}
