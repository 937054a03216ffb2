package data

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/TomasB/iplocate/internal/ipv4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingLoader struct {
	calls   atomic.Int32
	records []RangeRecord
	err     error
}

func (l *countingLoader) load(string) ([]RangeRecord, error) {
	l.calls.Add(1)
	if l.err != nil {
		return nil, l.err
	}
	return l.records, nil
}

func TestResolver_InitiallyUnloaded(t *testing.T) {
	r := NewResolver()
	assert.False(t, r.Loaded())
	assert.Equal(t, 0, r.Len())

	_, err := r.Resolve(1500)
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestResolver_EnsureLoadedOnce(t *testing.T) {
	loader := &countingLoader{records: sampleRecords}
	r := NewResolver(WithLoader(loader.load))

	require.NoError(t, r.EnsureLoaded("/fake/path.csv"))
	require.NoError(t, r.EnsureLoaded("/fake/path.csv"))
	require.NoError(t, r.EnsureLoaded("/some/other.csv"))

	assert.Equal(t, int32(1), loader.calls.Load())
	assert.True(t, r.Loaded())
	assert.Equal(t, 3, r.Len())
}

func TestResolver_EnsureLoadedConcurrent(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	r := NewResolver(WithLoader(func(string) ([]RangeRecord, error) {
		calls.Add(1)
		<-release
		return sampleRecords, nil
	}))

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- r.EnsureLoaded("/fake/path.csv")
		}()
	}
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.True(t, r.Loaded())
	// late arrivals see the loaded flag, early ones share the in-flight load
	assert.Equal(t, int32(1), calls.Load())
}

func TestResolver_LoadFailureIsRetryable(t *testing.T) {
	loader := &countingLoader{err: &DatasetReadError{Path: "/fake/path.csv", Err: errors.New("permission denied")}}
	r := NewResolver(WithLoader(loader.load))

	err := r.EnsureLoaded("/fake/path.csv")
	var readErr *DatasetReadError
	require.ErrorAs(t, err, &readErr)
	assert.False(t, r.Loaded())

	loader.err = nil
	loader.records = sampleRecords
	require.NoError(t, r.EnsureLoaded("/fake/path.csv"))
	assert.True(t, r.Loaded())
	assert.Equal(t, int32(2), loader.calls.Load())
}

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver(WithLoader((&countingLoader{records: sampleRecords}).load))
	require.NoError(t, r.EnsureLoaded("/fake/path.csv"))

	loc, err := r.Resolve(1500)
	require.NoError(t, err)
	assert.Equal(t, Location{Country: "United States", CountryCode: "US", City: "Los Angeles"}, loc)

	loc, err = r.Resolve(12000)
	require.NoError(t, err)
	assert.Equal(t, "Paris", loc.City)
}

func TestResolver_ResolveFirstOfOverlapping(t *testing.T) {
	r := NewResolver(WithLoader((&countingLoader{records: []RangeRecord{
		{Lower: 1500, Upper: 2500, CountryCode: "CA", CountryName: "Canada", City: "Toronto"},
		{Lower: 1000, Upper: 2000, CountryCode: "US", CountryName: "United States", City: "Los Angeles"},
	}}).load))
	require.NoError(t, r.EnsureLoaded("/fake/path.csv"))

	loc, err := r.Resolve(1800)
	require.NoError(t, err)
	assert.Equal(t, "Los Angeles", loc.City)
}

func TestResolver_NotFound(t *testing.T) {
	r := NewResolver(WithLoader((&countingLoader{records: sampleRecords}).load))
	require.NoError(t, r.EnsureLoaded("/fake/path.csv"))

	for _, id := range []uint32{0, 999, 3000, 4294967295} {
		_, err := r.Resolve(id)
		assert.ErrorIs(t, err, ErrNotFound, "id %d", id)
	}
}

func TestResolver_EmptyDataset(t *testing.T) {
	r := NewResolver(WithLoader((&countingLoader{}).load))
	require.NoError(t, r.EnsureLoaded("/fake/empty.csv"))
	assert.True(t, r.Loaded())

	for _, id := range []uint32{0, 1500, 4294967295} {
		_, err := r.Resolve(id)
		assert.ErrorIs(t, err, ErrNotFound)
	}
}

func TestResolver_EmptyLocationFields(t *testing.T) {
	r := NewResolver(WithLoader((&countingLoader{records: []RangeRecord{{Lower: 3000, Upper: 4000}}}).load))
	require.NoError(t, r.EnsureLoaded("/fake/path.csv"))

	loc, err := r.Resolve(3500)
	require.NoError(t, err)
	assert.Equal(t, Location{}, loc)
}

func TestResolver_EndToEnd(t *testing.T) {
	path := writeDataset(t, `16777216,16777471,"AU","Australia","South Australia","Adelaide"`+"\n")
	r := NewResolver()
	require.NoError(t, r.EnsureLoaded(path))

	id, err := ipv4.ParseID("1.0.0.100")
	require.NoError(t, err)

	loc, err := r.Resolve(id)
	require.NoError(t, err)
	assert.Equal(t, Location{Country: "Australia", CountryCode: "AU", City: "Adelaide"}, loc)
}

func TestDatasetLookup(t *testing.T) {
	loader := &countingLoader{records: sampleRecords}
	l := NewDatasetLookup(NewResolver(WithLoader(loader.load)), "/fake/path.csv")

	assert.ErrorIs(t, l.Ready(), ErrNotLoaded)

	loc, err := l.LookupLocation(5500)
	require.NoError(t, err)
	assert.Equal(t, "London", loc.City)
	assert.NoError(t, l.Ready())

	_, err = l.LookupLocation(3000)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, int32(1), loader.calls.Load())
	assert.NoError(t, l.Close())
}

func TestDatasetLookup_LoadError(t *testing.T) {
	l := NewDatasetLookup(NewResolver(), "/nonexistent/dataset.csv")

	_, err := l.LookupLocation(1)
	var readErr *DatasetReadError
	assert.ErrorAs(t, err, &readErr)
	assert.ErrorIs(t, l.Ready(), ErrNotLoaded)
}
