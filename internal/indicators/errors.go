package indicators

import (
	"errors"
	"fmt"
)

var (
	// ErrFetchFailed matches any *FetchError.
	ErrFetchFailed = errors.New("indicator fetch failed")
	// ErrCacheIO matches any *CacheError.
	ErrCacheIO = errors.New("indicator cache i/o failed")
	// ErrMetricNotFound matches any *MetricNotFoundError.
	ErrMetricNotFound = errors.New("metric not found")
	// ErrEntityNotFound matches any *EntityNotFoundError.
	ErrEntityNotFound = errors.New("entity not found")
)

// FetchError is returned when the remote source fails on a cache miss.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch from %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetchFailed }

// CacheError is returned when the local cache file cannot be read or written.
type CacheError struct {
	Op   string
	Path string
	Err  error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *CacheError) Unwrap() error { return e.Err }

func (e *CacheError) Is(target error) bool { return target == ErrCacheIO }

// MetricNotFoundError names a display name that is not a dataset column.
type MetricNotFoundError struct {
	Metric string
}

func (e *MetricNotFoundError) Error() string {
	return fmt.Sprintf("metric not found: %q", e.Metric)
}

func (e *MetricNotFoundError) Is(target error) bool { return target == ErrMetricNotFound }

// EntityNotFoundError names an entity with no rows in the dataset.
type EntityNotFoundError struct {
	Entity string
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("entity not found: %q", e.Entity)
}

func (e *EntityNotFoundError) Is(target error) bool { return target == ErrEntityNotFound }

// NewFetchError wraps a failure of the named source.
func NewFetchError(source string, err error) *FetchError {
	return &FetchError{Source: source, Err: err}
}

// NewCacheError wraps a failed cache operation ("read" or "write") on path.
func NewCacheError(op, path string, err error) *CacheError {
	return &CacheError{Op: op, Path: path, Err: err}
}
