package airports

// Record represents a single airport from the reference dataset (OurAirports
// format). Coordinates are WGS84 decimal degrees. At least one of ICAO or
// Ident is non-empty for every loaded record.
type Record struct {
	Ident   string  `json:"ident"`
	ICAO    string  `json:"icao,omitempty"`
	IATA    string  `json:"iata,omitempty"`
	Name    string  `json:"name"`
	Country string  `json:"country,omitempty"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Code returns the best identifier for display and weather lookups:
// the ICAO code when present, otherwise the local identifier.
func (r Record) Code() string {
	if r.ICAO != "" {
		return r.ICAO
	}
	return r.Ident
}

// Nearby pairs a record with its great-circle distance from a query point.
type Nearby struct {
	DistanceKm float64 `json:"distance_km"`
	Record     Record  `json:"airport"`
}
