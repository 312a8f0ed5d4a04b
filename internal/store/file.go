package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/i474232898/emissions-explorer/internal/indicators"
)

// TableName is the fixed name the dataset is stored under in every cache format.
const TableName = "indicators"

var (
	// ErrUnsupportedFormat is returned for cache paths whose extension has no codec.
	ErrUnsupportedFormat = errors.New("unsupported cache file format")
)

// codec reads and writes a dataset in one file format.
type codec interface {
	read(path string) (*indicators.Dataset, error)
	write(path string, ds *indicators.Dataset) error
}

// FileStore persists datasets to local files, choosing the format from the file extension:
// .db, .sqlite and .sqlite3 use SQLite; .json uses JSON.
type FileStore struct {
	codecs map[string]codec
}

// NewFileStore creates a FileStore with the SQLite and JSON codecs registered.
func NewFileStore() *FileStore {
	sqlite := sqliteCodec{}
	return &FileStore{
		codecs: map[string]codec{
			".db":      sqlite,
			".sqlite":  sqlite,
			".sqlite3": sqlite,
			".json":    jsonCodec{},
		},
	}
}

func (s *FileStore) codecFor(path string) (codec, error) {
	ext := strings.ToLower(filepath.Ext(path))
	c, ok := s.codecs[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return c, nil
}

// TryLoad returns the dataset stored at path. A missing file is a miss, not an error.
func (s *FileStore) TryLoad(path string) (*indicators.Dataset, bool, error) {
	c, err := s.codecFor(path)
	if err != nil {
		return nil, false, indicators.NewCacheError("read", path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, indicators.NewCacheError("read", path, err)
	}
	if info.IsDir() {
		return nil, false, indicators.NewCacheError("read", path, errors.New("is a directory"))
	}

	ds, err := c.read(path)
	if err != nil {
		return nil, false, indicators.NewCacheError("read", path, err)
	}
	return ds, true, nil
}

// Save writes ds to a temporary file next to path and renames it into place,
// so a failed write never leaves a partial cache behind.
func (s *FileStore) Save(path string, ds *indicators.Dataset) error {
	c, err := s.codecFor(path)
	if err != nil {
		return indicators.NewCacheError("write", path, err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return indicators.NewCacheError("write", path, err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := c.write(tmpPath, ds); err != nil {
		return indicators.NewCacheError("write", path, err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return indicators.NewCacheError("write", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return indicators.NewCacheError("write", path, err)
	}
	return nil
}
