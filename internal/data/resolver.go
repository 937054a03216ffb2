package data

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Resolver loads a range dataset once and answers location queries against
// it. A Resolver is created by the process root and shared by reference; it
// is safe for concurrent use.
type Resolver struct {
	load  func(path string) ([]RangeRecord, error)
	group singleflight.Group
	index atomic.Pointer[RangeIndex]
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLoader replaces the dataset reader, LoadDataset by default.
func WithLoader(load func(path string) ([]RangeRecord, error)) ResolverOption {
	return func(r *Resolver) {
		r.load = load
	}
}

// NewResolver returns an unloaded Resolver.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{load: LoadDataset}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// EnsureLoaded loads and indexes the dataset at path unless a dataset is
// already loaded, in which case it does nothing regardless of path.
// Concurrent callers share a single load. On failure the Resolver stays
// unloaded and a later call may retry.
func (r *Resolver) EnsureLoaded(path string) error {
	if r.Loaded() {
		return nil
	}

	_, err, _ := r.group.Do("load", func() (any, error) {
		if r.Loaded() {
			return nil, nil
		}

		records, err := r.load(path)
		if err != nil {
			return nil, err
		}
		idx := BuildIndex(records)
		r.index.Store(idx)

		attrs := []any{"path", path, "records", idx.Len()}
		if lo, hi, ok := idx.Span(); ok {
			attrs = append(attrs, "lowest_id", lo, "highest_id", hi)
		}
		slog.Info("dataset loaded", attrs...)
		return nil, nil
	})
	return err
}

// Loaded reports whether a dataset has been loaded.
func (r *Resolver) Loaded() bool {
	return r.index.Load() != nil
}

// Len returns the number of loaded records, zero before loading.
func (r *Resolver) Len() int {
	idx := r.index.Load()
	if idx == nil {
		return 0
	}
	return idx.Len()
}

// Resolve returns the location of the first range, in lower-bound order,
// containing id. Overlapping later matches are ignored.
func (r *Resolver) Resolve(id uint32) (Location, error) {
	idx := r.index.Load()
	if idx == nil {
		return Location{}, ErrNotLoaded
	}

	matches := idx.Query(id)
	slog.Debug("range query", "id", id, "matches", len(matches))
	if len(matches) == 0 {
		return Location{}, fmt.Errorf("id %d: %w", id, ErrNotFound)
	}

	first := matches[0]
	return Location{
		Country:     first.CountryName,
		CountryCode: first.CountryCode,
		City:        first.City,
	}, nil
}

// DatasetLookup implements LocationLookup by loading the dataset at a fixed
// path on first use.
type DatasetLookup struct {
	resolver *Resolver
	path     string
}

// NewDatasetLookup binds resolver to the dataset at path.
func NewDatasetLookup(resolver *Resolver, path string) *DatasetLookup {
	return &DatasetLookup{resolver: resolver, path: path}
}

// Preload loads the dataset without performing a lookup.
func (l *DatasetLookup) Preload() error {
	return l.resolver.EnsureLoaded(l.path)
}

// Ready returns ErrNotLoaded until the dataset has been loaded.
func (l *DatasetLookup) Ready() error {
	if !l.resolver.Loaded() {
		return ErrNotLoaded
	}
	return nil
}

// LookupLocation loads the dataset if needed and resolves id.
func (l *DatasetLookup) LookupLocation(id uint32) (Location, error) {
	if err := l.resolver.EnsureLoaded(l.path); err != nil {
		return Location{}, err
	}
	return l.resolver.Resolve(id)
}

// Close is a no-op; the dataset is held in memory only.
func (l *DatasetLookup) Close() error {
	return nil
}
