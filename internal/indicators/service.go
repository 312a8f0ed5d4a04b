package indicators

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// ErrNotLoaded is returned by read accessors called before Load.
var ErrNotLoaded = errors.New("indicator dataset not loaded")

// Service owns the process-wide dataset and the region order used to reshape it.
type Service struct {
	source  Source
	store   Store
	catalog Catalog
	regions []string

	dataset *Dataset
}

// NewService creates a new Service.
func NewService(source Source, store Store, catalog Catalog, regions []string) *Service {
	return &Service{
		source:  source,
		store:   store,
		catalog: catalog,
		regions: append([]string(nil), regions...),
	}
}

// TryLoad reads the dataset cached at path. The cached columns are not checked
// against the catalog.
func (s *Service) TryLoad(path string) (*Dataset, bool, error) {
	return s.store.TryLoad(path)
}

// FetchAndStore requests every catalog indicator from the source in one call,
// persists the sorted dataset to path and returns it.
func (s *Service) FetchAndStore(ctx context.Context, path string) (*Dataset, error) {
	return FetchAndStore(ctx, s.source, s.store, s.catalog, path)
}

// Load returns the cached dataset at path, or fetches and caches it on a miss.
// The result becomes the dataset served by the read accessors. Load must be
// called once, before any reader runs.
func (s *Service) Load(ctx context.Context, path string) (*Dataset, error) {
	ds, ok, err := s.TryLoad(path)
	if err != nil {
		return nil, err
	}
	if ok {
		log.Printf("INFO: loaded %d cached rows from %s", ds.Len(), path)
	} else {
		log.Printf("INFO: no cache at %s; fetching %d indicators from %s", path, len(s.catalog), s.source.Name())
		ds, err = s.FetchAndStore(ctx, path)
		if err != nil {
			return nil, err
		}
	}

	s.dataset = ds
	return ds, nil
}

// FetchAndStore is the cache-miss branch of loading a dataset.
func FetchAndStore(ctx context.Context, source Source, store Store, catalog Catalog, path string) (*Dataset, error) {
	if len(catalog) == 0 {
		return nil, fmt.Errorf("empty indicator catalog")
	}

	obs, err := source.Fetch(ctx, catalog.Codes())
	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) {
			return nil, err
		}
		return nil, NewFetchError(source.Name(), err)
	}

	ds := FromObservations(catalog, obs)
	log.Printf("DEBUG: fetched %d observations into %d rows", len(obs), ds.Len())

	if err := store.Save(path, ds); err != nil {
		var ce *CacheError
		if errors.As(err, &ce) {
			return nil, err
		}
		return nil, NewCacheError("write", path, err)
	}
	return ds, nil
}

// Dataset returns the loaded dataset.
func (s *Service) Dataset() (*Dataset, error) {
	if s.dataset == nil {
		return nil, ErrNotLoaded
	}
	return s.dataset, nil
}

// Regions returns the configured region order.
func (s *Service) Regions() []string {
	return append([]string(nil), s.regions...)
}

// Metrics returns the dataset's column names, which is the set of selectable metrics.
func (s *Service) Metrics() ([]string, error) {
	ds, err := s.Dataset()
	if err != nil {
		return nil, err
	}
	return ds.Columns(), nil
}

// WorldSeries returns the World series of metric.
func (s *Service) WorldSeries(metric string) (Series, error) {
	ds, err := s.Dataset()
	if err != nil {
		return nil, err
	}
	return WorldSeries(ds, metric)
}

// RegionMatrix returns metric per configured region.
func (s *Service) RegionMatrix(metric string) (Matrix, error) {
	ds, err := s.Dataset()
	if err != nil {
		return Matrix{}, err
	}
	return RegionMatrix(ds, metric, s.regions)
}

// View returns both projections of metric.
func (s *Service) View(metric string) (MetricView, error) {
	ds, err := s.Dataset()
	if err != nil {
		return MetricView{}, err
	}
	return View(ds, metric, s.regions)
}

// EntitySeries returns metric for a single entity.
func (s *Service) EntitySeries(entity, metric string) (Series, error) {
	ds, err := s.Dataset()
	if err != nil {
		return nil, err
	}
	return EntitySeries(ds, entity, metric)
}
