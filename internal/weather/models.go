package weather

// Config represents the weather service configuration
type Config struct {
	APIBaseURL            string `toml:"api_base_url"`
	NOTAMsBaseURL         string `toml:"notams_api_base_url"`
	NOTAMsAPIKey          string `toml:"notams_api_key"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
	MaxRetries            int    `toml:"max_retries"`
	CacheTTLSeconds       int    `toml:"cache_ttl_seconds"`
	FetchNOTAMs           bool   `toml:"fetch_notams"`
}

// DefaultConfig returns the default weather configuration
func DefaultConfig() Config {
	return Config{
		APIBaseURL:            "https://aviationweather.gov/api/data",
		NOTAMsBaseURL:         "https://external-api.faa.gov/notamapi/v1/notams",
		RequestTimeoutSeconds: 10,
		MaxRetries:            2,
		CacheTTLSeconds:       300,
		FetchNOTAMs:           true,
	}
}

// Bulletins holds the raw METAR and TAF text for one airport. Either field
// may be empty when the upstream response carried no matching block.
type Bulletins struct {
	METAR string `json:"metar,omitempty"`
	TAF   string `json:"taf,omitempty"`
}

// bulletinType labels a fetch for logging
type bulletinType string

const (
	typeBulletins bulletinType = "metar_taf"
	typeNOTAMs    bulletinType = "notams"
)

// notamResponse mirrors the NOTAM API payload shape
type notamResponse struct {
	Notams []notamEntry `json:"notams"`
}

type notamEntry struct {
	Text string `json:"text"`
}

// Update is the payload broadcast to websocket subscribers after a fresh
// upstream fetch replaces a cache entry.
type Update struct {
	Airport string `json:"airport"`
	Kind    string `json:"kind"`
	Summary string `json:"summary"`
}
