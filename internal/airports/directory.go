package airports

import (
	"sort"
	"strings"
	"sync"

	"github.com/Avzar/AeroBot/internal/geo"
	"github.com/Avzar/AeroBot/pkg/logger"
)

// Directory is an in-memory index of airport records. It is read-only after
// Load; Load replaces the whole index atomically so it can run while queries
// are in flight.
type Directory struct {
	mu         sync.RWMutex
	records    []Record
	iataToICAO map[string]string
	logger     *logger.Logger
}

// NewDirectory creates an empty directory. Until Load is called, Search and
// Nearby return empty results and ResolveCode only normalizes case.
func NewDirectory(log *logger.Logger) *Directory {
	return &Directory{
		iataToICAO: make(map[string]string),
		logger:     log.Named("airports"),
	}
}

// Load replaces the active index with the given records. Records with both
// an IATA and an ICAO code feed the IATA lookup map; on duplicate IATA codes
// the last record wins.
func (d *Directory) Load(records []Record) {
	iataToICAO := make(map[string]string)
	for _, r := range records {
		if r.IATA != "" && r.ICAO != "" {
			iataToICAO[strings.ToUpper(r.IATA)] = r.ICAO
		}
	}

	d.mu.Lock()
	d.records = records
	d.iataToICAO = iataToICAO
	d.mu.Unlock()

	d.logger.Info("Airport directory loaded",
		logger.Int("airports", len(records)),
		logger.Int("iata_mappings", len(iataToICAO)))
}

// Len returns the number of loaded records.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.records)
}

// ResolveCode normalizes a user-supplied airport code. Three-letter inputs
// are treated as IATA codes and mapped to ICAO when the mapping is known;
// everything else is returned uppercased and trimmed. This is best-effort
// normalization, never a validation step.
func (d *Directory) ResolveCode(input string) string {
	code := strings.ToUpper(strings.TrimSpace(input))
	if len(code) != 3 {
		return code
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if icao, ok := d.iataToICAO[code]; ok {
		return icao
	}
	return code
}

// Search returns records whose name, ICAO, IATA, or local identifier contains
// the query, case-insensitively, in source-file order. An empty query returns
// nothing.
func (d *Directory) Search(query string, maxResults int) []Record {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || maxResults <= 0 {
		return nil
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []Record
	for _, r := range d.records {
		if strings.Contains(strings.ToLower(r.Name), q) ||
			strings.Contains(strings.ToLower(r.ICAO), q) ||
			strings.Contains(strings.ToLower(r.IATA), q) ||
			strings.Contains(strings.ToLower(r.Ident), q) {
			out = append(out, r)
			if len(out) >= maxResults {
				break
			}
		}
	}
	return out
}

// Nearby returns the airports within radiusKm of the given point, sorted
// ascending by great-circle distance (ties keep load order) and truncated to
// maxResults.
func (d *Directory) Nearby(lat, lon, radiusKm float64, maxResults int) []Nearby {
	if maxResults <= 0 {
		return nil
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []Nearby
	for _, r := range d.records {
		dist := geo.HaversineKm(lat, lon, r.Lat, r.Lon)
		if dist <= radiusKm {
			out = append(out, Nearby{DistanceKm: dist, Record: r})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceKm < out[j].DistanceKm
	})

	if len(out) > maxResults {
		out = out[:maxResults]
	}
	return out
}
