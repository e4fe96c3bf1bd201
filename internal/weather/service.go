package weather

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Avzar/AeroBot/internal/cache"
	"github.com/Avzar/AeroBot/internal/metar"
	"github.com/Avzar/AeroBot/internal/report"
	"github.com/Avzar/AeroBot/internal/taf"
	"github.com/Avzar/AeroBot/pkg/logger"
)

// bulletinSeparator joins METAR and TAF into one cache value so a single
// entry covers both bulletins.
const bulletinSeparator = "||METAR_TAF||"

// Broadcaster pushes a message to all connected websocket subscribers.
type Broadcaster interface {
	Broadcast(message []byte)
}

// Service serves decoded weather for airports, caching raw upstream payloads
// so repeated lookups within the TTL cost no network round trip.
type Service struct {
	config      Config
	client      *Client
	cache       *cache.Store
	broadcaster Broadcaster
	logger      *logger.Logger
}

// NewService creates a new weather service. broadcaster may be nil when no
// websocket fan-out is wanted.
func NewService(config Config, store *cache.Store, broadcaster Broadcaster, logger *logger.Logger) *Service {
	if store == nil {
		store = cache.New(time.Duration(config.CacheTTLSeconds) * time.Second)
	}
	return &Service{
		config:      config,
		client:      NewClient(config, logger),
		cache:       store,
		broadcaster: broadcaster,
		logger:      logger.Named("weather-service"),
	}
}

// Bulletins returns the raw METAR and TAF for the airport, cache-first. The
// upstream fetch happens outside any lock, so concurrent misses may fetch
// twice; the last writer wins and both see valid data.
func (s *Service) Bulletins(airportCode string) (Bulletins, error) {
	code := strings.ToUpper(strings.TrimSpace(airportCode))
	key := code + "/metar_taf"

	if cached, ok := s.cache.Get(key); ok {
		s.logger.Debug("Bulletin cache hit", logger.String("airport", code))
		return decodeCachedBulletins(cached), nil
	}

	bulletins, err := s.client.FetchBulletins(code)
	if err != nil {
		return Bulletins{}, fmt.Errorf("fetching bulletins for %s: %w", code, err)
	}

	s.cache.Set(key, bulletins.METAR+bulletinSeparator+bulletins.TAF)
	s.notify(code, "metar_taf", firstLine(bulletins.METAR))
	return bulletins, nil
}

// Report returns the human-readable weather bulletin for the airport.
func (s *Service) Report(airportCode string) (string, error) {
	bulletins, err := s.Bulletins(airportCode)
	if err != nil {
		return "", err
	}

	var obs *metar.Observation
	if bulletins.METAR != "" {
		decoded := metar.Decode(bulletins.METAR)
		obs = &decoded
	}
	return report.FormatWeather(airportCode, obs, bulletins.TAF), nil
}

// WindForecast returns the wind periods extracted from the airport's TAF.
func (s *Service) WindForecast(airportCode string) ([]taf.WindPeriod, error) {
	bulletins, err := s.Bulletins(airportCode)
	if err != nil {
		return nil, err
	}
	return taf.DecodeWindPeriods(bulletins.TAF), nil
}

// TempExtremes returns the TX/TN extremes extracted from the airport's TAF.
func (s *Service) TempExtremes(airportCode string) ([]taf.TempExtreme, error) {
	bulletins, err := s.Bulletins(airportCode)
	if err != nil {
		return nil, err
	}
	return taf.DecodeTempExtremes(bulletins.TAF), nil
}

// NOTAMs returns the rendered NOTAM summary for the airport, cache-first.
// An upstream failure degrades to an explicit unavailability message rather
// than an error; the NOTAM API rejects many non-US locations.
func (s *Service) NOTAMs(airportCode string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(airportCode))
	key := code + "/notam"

	if cached, ok := s.cache.Get(key); ok {
		s.logger.Debug("NOTAM cache hit", logger.String("airport", code))
		return cached, nil
	}

	if !s.config.FetchNOTAMs {
		return fmt.Sprintf("NOTAM lookups are disabled for %s.", code), nil
	}

	texts, err := s.client.FetchNOTAMs(code)
	if err != nil {
		s.logger.Warn("NOTAM fetch failed",
			logger.String("airport", code),
			logger.Error(err))
		msg := fmt.Sprintf("NOTAMs unavailable for %s (API error).", code)
		s.cache.Set(key, msg)
		return msg, nil
	}

	summary := report.FormatNOTAMs(code, texts)
	s.cache.Set(key, summary)
	s.notify(code, "notam", firstLine(summary))
	return summary, nil
}

// notify broadcasts a weather update to websocket subscribers, if any.
func (s *Service) notify(code, kind, summary string) {
	if s.broadcaster == nil {
		return
	}
	payload, err := json.Marshal(Update{Airport: code, Kind: kind, Summary: summary})
	if err != nil {
		s.logger.Error("Failed to marshal weather update", logger.Error(err))
		return
	}
	s.broadcaster.Broadcast(payload)
}

// decodeCachedBulletins splits a joined cache value back into bulletins.
// A value without the separator is treated as METAR only.
func decodeCachedBulletins(cached string) Bulletins {
	m, t, found := strings.Cut(cached, bulletinSeparator)
	if !found {
		return Bulletins{METAR: cached}
	}
	return Bulletins{METAR: m, TAF: t}
}

// splitBulletins separates a raw format=raw&taf=true response into METAR and
// TAF. The upstream returns blank-line separated blocks; any block containing
// the TAF keyword is the forecast, the rest are observation lines.
func splitBulletins(body string) Bulletins {
	raw := strings.TrimSpace(strings.ReplaceAll(body, "\r\n", "\n"))
	if raw == "" {
		return Bulletins{}
	}

	if !strings.Contains(raw, "TAF") || !strings.Contains(raw, "\n") {
		return Bulletins{METAR: raw}
	}

	var b Bulletins
	for _, part := range strings.Split(raw, "\n\n") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.Contains(part, "TAF") {
			b.TAF = part
			continue
		}
		if b.METAR != "" {
			b.METAR += "\n" + part
		} else {
			b.METAR = part
		}
	}
	return b
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
