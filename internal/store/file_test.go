package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/i474232898/emissions-explorer/internal/indicators"
)

func sampleDataset() *indicators.Dataset {
	d := func(y int) time.Time { return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC) }
	return indicators.NewDataset([]string{"CO2 emissions (kt)", "Arable land (% of land area)"}, []indicators.Row{
		{Entity: "World", Date: d(2001), Values: []indicators.Value{{Float: 2.5, Valid: true}, {}}},
		{Entity: "East Asia & Pacific", Date: d(2000), Values: []indicators.Value{{}, {}}},
		{Entity: "World", Date: d(2000), Values: []indicators.Value{{Float: 1, Valid: true}, {Float: 11.1, Valid: true}}},
	})
}

func assertSameDataset(t *testing.T, want, got *indicators.Dataset) {
	t.Helper()

	wc, gc := want.Columns(), got.Columns()
	if len(wc) != len(gc) {
		t.Fatalf("expected columns %v, got %v", wc, gc)
	}
	for i := range wc {
		if wc[i] != gc[i] {
			t.Fatalf("expected columns %v, got %v", wc, gc)
		}
	}

	wr, gr := want.Rows(), got.Rows()
	if len(wr) != len(gr) {
		t.Fatalf("expected %d rows, got %d", len(wr), len(gr))
	}
	for i := range wr {
		if wr[i].Entity != gr[i].Entity || !wr[i].Date.Equal(gr[i].Date) {
			t.Fatalf("row %d: expected %s/%s, got %s/%s", i, wr[i].Entity, wr[i].Date, gr[i].Entity, gr[i].Date)
		}
		for j := range wr[i].Values {
			if wr[i].Values[j] != gr[i].Values[j] {
				t.Fatalf("row %d col %d: expected %+v, got %+v", i, j, wr[i].Values[j], gr[i].Values[j])
			}
		}
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	for _, name := range []string{"cache.db", "cache.sqlite", "cache.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			s := NewFileStore()
			ds := sampleDataset()

			if err := s.Save(path, ds); err != nil {
				t.Fatalf("save: %v", err)
			}
			got, ok, err := s.TryLoad(path)
			if err != nil || !ok {
				t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
			}
			assertSameDataset(t, ds, got)
		})
	}
}

func TestFileStoreMissingFileIsMiss(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.db")

	ds, ok, err := NewFileStore().TryLoad(path)
	if ds != nil || ok || err != nil {
		t.Fatalf("expected clean miss, got ds=%v ok=%v err=%v", ds, ok, err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("TryLoad must not create the cache file")
	}
}

func TestFileStoreCorruptFileIsError(t *testing.T) {
	for _, name := range []string{"cache.db", "cache.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := os.WriteFile(path, []byte("definitely not a cache"), 0644); err != nil {
				t.Fatal(err)
			}

			_, ok, err := NewFileStore().TryLoad(path)
			if ok {
				t.Fatal("corrupt file reported as hit")
			}
			var ce *indicators.CacheError
			if !errors.As(err, &ce) || ce.Op != "read" {
				t.Fatalf("expected read CacheError, got %v", err)
			}
		})
	}
}

func TestFileStoreJSONTableName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte(`{"table":"other","columns":[],"rows":[]}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := NewFileStore().TryLoad(path); !errors.Is(err, indicators.ErrCacheIO) {
		t.Fatalf("expected ErrCacheIO for wrong table, got %v", err)
	}
}

func TestFileStoreUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.hdf")

	if _, _, err := NewFileStore().TryLoad(path); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if err := NewFileStore().Save(path, sampleDataset()); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestFileStoreSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	if err := NewFileStore().Save(filepath.Join(dir, "cache.db"), sampleDataset()); err != nil {
		t.Fatalf("save: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "cache.db" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("expected only cache.db, got %v", names)
	}
}

func TestFileStoreSaveIntoMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "cache.db")

	if err := NewFileStore().Save(path, sampleDataset()); !errors.Is(err, indicators.ErrCacheIO) {
		t.Fatalf("expected ErrCacheIO, got %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()

	if _, ok, _ := s.TryLoad("a"); ok {
		t.Fatal("expected miss on empty store")
	}
	ds := sampleDataset()
	if err := s.Save("a", ds); err != nil {
		t.Fatal(err)
	}
	got, ok, err := s.TryLoad("a")
	if !ok || err != nil || got != ds {
		t.Fatalf("expected saved dataset, got ok=%v err=%v", ok, err)
	}
	if s.Saves() != 1 {
		t.Fatalf("expected 1 save, got %d", s.Saves())
	}
}
