package data

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no range contains the queried id.
	ErrNotFound = errors.New("resource not found")

	// ErrNotLoaded is returned by Resolve before a dataset has been loaded.
	ErrNotLoaded = errors.New("dataset not loaded")
)

// DatasetReadError reports that the dataset source could not be opened or read.
type DatasetReadError struct {
	Path string
	Err  error
}

func (e *DatasetReadError) Error() string {
	return fmt.Sprintf("failed to read dataset %q: %v", e.Path, e.Err)
}

func (e *DatasetReadError) Unwrap() error {
	return e.Err
}

// Location is the projection of a matched range returned to callers.
type Location struct {
	Country     string `json:"country"`
	CountryCode string `json:"countryCode"`
	City        string `json:"city"`
}

// LocationLookup defines the interface for IPv4-to-location lookups.
type LocationLookup interface {
	// LookupLocation returns the location for the given IPv4 identifier.
	// Returns ErrNotFound if no location is known for it.
	LookupLocation(id uint32) (Location, error)

	// Close releases any resources held by the lookup implementation.
	Close() error
}
