package data

import (
	"os"
	"testing"

	"github.com/TomasB/iplocate/internal/ipv4"
)

const testMMDBPath = "../../testdata/GeoLite2-City-Test.mmdb"

func skipIfNoMMDB(t *testing.T) {
	t.Helper()
	if _, err := os.Stat(testMMDBPath); os.IsNotExist(err) {
		t.Skip("test MMDB file not found; download it with: curl -L -o testdata/GeoLite2-City-Test.mmdb https://github.com/maxmind/MaxMind-DB/raw/main/test-data/GeoLite2-City-Test.mmdb")
	}
}

func TestNewMmdbReader_Success(t *testing.T) {
	skipIfNoMMDB(t)

	reader, err := NewMmdbReader(testMMDBPath)
	if err != nil {
		t.Fatalf("failed to create reader: %v", err)
	}
	defer reader.Close()
}

func TestNewMmdbReader_InvalidPath(t *testing.T) {
	_, err := NewMmdbReader("/nonexistent/path.mmdb")
	if err == nil {
		t.Fatal("expected error for invalid path")
	}
	if _, ok := err.(*DatasetReadError); !ok {
		t.Errorf("expected *DatasetReadError, got %T", err)
	}
}

func TestMmdbReader_LookupLocation(t *testing.T) {
	skipIfNoMMDB(t)

	reader, err := NewMmdbReader(testMMDBPath)
	if err != nil {
		t.Fatalf("failed to create reader: %v", err)
	}
	defer reader.Close()

	tests := []struct {
		name        string
		ip          string
		wantCode    string
		wantCountry string
	}{
		{
			name:        "UK IP",
			ip:          "2.125.160.216",
			wantCode:    "GB",
			wantCountry: "United Kingdom",
		},
		{
			name:        "US IP",
			ip:          "216.160.83.56",
			wantCode:    "US",
			wantCountry: "United States",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ipv4.ParseID(tt.ip)
			if err != nil {
				t.Fatalf("failed to parse IP: %s", tt.ip)
			}

			loc, err := reader.LookupLocation(id)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if loc.CountryCode != tt.wantCode {
				t.Errorf("expected country code %s, got %s", tt.wantCode, loc.CountryCode)
			}
			if loc.Country != tt.wantCountry {
				t.Errorf("expected country %s, got %s", tt.wantCountry, loc.Country)
			}
		})
	}
}

func TestMmdbReader_NotFound(t *testing.T) {
	skipIfNoMMDB(t)

	reader, err := NewMmdbReader(testMMDBPath)
	if err != nil {
		t.Fatalf("failed to create reader: %v", err)
	}
	defer reader.Close()

	_, err = reader.LookupLocation(ipv4.Encode(10, 0, 0, 1))
	if err == nil {
		t.Fatal("expected error for private address")
	}
}

func TestMmdbReader_Close(t *testing.T) {
	skipIfNoMMDB(t)

	reader, err := NewMmdbReader(testMMDBPath)
	if err != nil {
		t.Fatalf("failed to create reader: %v", err)
	}

	if err := reader.Close(); err != nil {
		t.Fatalf("failed to close reader: %v", err)
	}
}
