// Package geo provides a read-only city coordinate lookup. The table is
// constructed explicitly at startup and injected into the components that
// need it; Reload replaces the whole table atomically when the underlying
// data file changes.
package geo

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Coordinates is a WGS84 point.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Lookup maps normalized city names to coordinates.
type Lookup struct {
	mu     sync.RWMutex
	cities map[string]Coordinates
	path   string
}

// NewLookup builds a lookup from a CSV file with rows "city,lat,lon".
// An empty path yields an empty (but usable) lookup.
func NewLookup(path string) (*Lookup, error) {
	l := &Lookup{cities: make(map[string]Coordinates), path: path}
	if path == "" {
		return l, nil
	}
	if err := l.Reload(); err != nil {
		return nil, err
	}
	return l, nil
}

// Reload re-reads the data file and swaps the table in one step.
func (l *Lookup) Reload() error {
	f, err := os.Open(l.path)
	if err != nil {
		return fmt.Errorf("open geo data file: %w", err)
	}
	defer f.Close()

	cities, err := parse(f)
	if err != nil {
		return fmt.Errorf("parse geo data file %s: %w", l.path, err)
	}

	l.mu.Lock()
	l.cities = cities
	l.mu.Unlock()
	return nil
}

func parse(r io.Reader) (map[string]Coordinates, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 3

	cities := make(map[string]Coordinates)
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %q: bad latitude: %w", rec[0], err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %q: bad longitude: %w", rec[0], err)
		}
		cities[normalize(rec[0])] = Coordinates{Latitude: lat, Longitude: lon}
	}
	return cities, nil
}

// Find returns the coordinates for a city, case- and space-insensitive.
func (l *Lookup) Find(city string) (Coordinates, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	c, ok := l.cities[normalize(city)]
	return c, ok
}

// Size returns the number of known cities.
func (l *Lookup) Size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.cities)
}

func normalize(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}
