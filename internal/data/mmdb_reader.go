package data

import (
	"fmt"

	"github.com/TomasB/iplocate/internal/ipv4"
	"github.com/oschwald/geoip2-golang"
)

const mmdbLanguage = "en"

// MmdbReader implements LocationLookup using a MaxMind City MMDB file.
type MmdbReader struct {
	db *geoip2.Reader
}

// NewMmdbReader opens the MMDB file at the given path and returns a reader.
func NewMmdbReader(path string) (*MmdbReader, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, &DatasetReadError{Path: path, Err: err}
	}
	return &MmdbReader{db: db}, nil
}

// LookupLocation returns the English country and city names and the ISO-3166
// country code for the given IPv4 identifier.
func (r *MmdbReader) LookupLocation(id uint32) (Location, error) {
	record, err := r.db.City(ipv4.Decode(id))
	if err != nil {
		return Location{}, fmt.Errorf("city lookup failed: %w", err)
	}
	if record.Country.IsoCode == "" && len(record.City.Names) == 0 {
		return Location{}, fmt.Errorf("id %d: %w", id, ErrNotFound)
	}
	return Location{
		Country:     record.Country.Names[mmdbLanguage],
		CountryCode: record.Country.IsoCode,
		City:        record.City.Names[mmdbLanguage],
	}, nil
}

// Close releases the MMDB reader resources.
func (r *MmdbReader) Close() error {
	return r.db.Close()
}
