package main

import (
	"github.com/TomasB/iplocate/internal/config"
	"github.com/TomasB/iplocate/internal/data"
	"github.com/TomasB/iplocate/internal/handler/health"
)

// backend is the lookup chain built from the config, with the pieces the
// commands need to drive it.
type backend struct {
	lookup data.LocationLookup
	// dataset is nil for the mmdb format
	dataset *data.DatasetLookup
}

// readiness returns the checker for /ready, nil when the backend is ready as
// soon as it is opened.
func (b *backend) readiness() health.ReadinessChecker {
	if b.dataset == nil {
		return nil
	}
	return b.dataset
}

// openBackend builds the configured LocationLookup. For csv datasets the
// Resolver is created here, owned by the caller and shared by every handler
// that receives the lookup.
func openBackend(cfg *config.Config) (*backend, error) {
	b := &backend{}

	switch cfg.DatasetFormat {
	case config.FormatMMDB:
		reader, err := data.NewMmdbReader(cfg.DatasetPath)
		if err != nil {
			return nil, err
		}
		b.lookup = reader
	default:
		b.dataset = data.NewDatasetLookup(data.NewResolver(), cfg.DatasetPath)
		b.lookup = b.dataset
	}

	if cfg.CacheSize > 0 {
		cached, err := data.NewCachedLookup(b.lookup, cfg.CacheSize)
		if err != nil {
			b.lookup.Close()
			return nil, err
		}
		b.lookup = cached
	}
	return b, nil
}
