package indicators

import (
	"context"
)

// Source abstracts a remote statistics API (e.g. the World Bank indicators API).
// Fetch requests every code in a single call and returns long-format observations.
type Source interface {
	Name() string
	Fetch(ctx context.Context, codes []string) ([]Observation, error)
}

// Store is the contract a local cache file codec must satisfy.
//
// TryLoad returns (nil, false, nil) when nothing is stored at path. An existing
// but unreadable file is an error, never a miss.
type Store interface {
	TryLoad(path string) (*Dataset, bool, error)
	Save(path string, ds *Dataset) error
}
