package api

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Avzar/AeroBot/internal/airports"
	"github.com/Avzar/AeroBot/internal/config"
	"github.com/Avzar/AeroBot/internal/storage/sqlite"
	"github.com/Avzar/AeroBot/internal/taf"
	"github.com/Avzar/AeroBot/internal/weather"
	"github.com/Avzar/AeroBot/internal/websocket"
	"github.com/Avzar/AeroBot/pkg/logger"
)

// Handler contains the API handlers
type Handler struct {
	directory      *airports.Directory
	weatherService *weather.Service
	historyStorage *sqlite.HistoryStorage
	config         *config.Config
	logger         *logger.Logger
	wsServer       *websocket.Server
}

// NewHandler creates a new API handler
func NewHandler(directory *airports.Directory, weatherService *weather.Service, historyStorage *sqlite.HistoryStorage, config *config.Config, log *logger.Logger, wsServer *websocket.Server) *Handler {
	return &Handler{
		directory:      directory,
		weatherService: weatherService,
		historyStorage: historyStorage,
		config:         config,
		logger:         log.Named("api-handler"),
		wsServer:       wsServer,
	}
}

// GetWeather returns the human-readable weather report for an airport
func (h *Handler) GetWeather(w http.ResponseWriter, r *http.Request) {
	code := h.directory.ResolveCode(chi.URLParam(r, "code"))

	text, err := h.weatherService.Report(code)
	if err != nil {
		h.logger.Error("Failed to fetch weather report",
			logger.String("airport", code),
			logger.Error(err))
		WriteJSON(w, http.StatusBadGateway, errorResponse("weather data unavailable"))
		return
	}

	h.recordHistory(r, "weather:"+code, text)
	WriteJSON(w, http.StatusOK, struct {
		Airport string `json:"airport"`
		Report  string `json:"report"`
	}{Airport: code, Report: text})
}

// GetNOTAMs returns the NOTAM summary for an airport
func (h *Handler) GetNOTAMs(w http.ResponseWriter, r *http.Request) {
	code := h.directory.ResolveCode(chi.URLParam(r, "code"))

	summary, err := h.weatherService.NOTAMs(code)
	if err != nil {
		h.logger.Error("Failed to fetch NOTAMs",
			logger.String("airport", code),
			logger.Error(err))
		WriteJSON(w, http.StatusBadGateway, errorResponse("NOTAM data unavailable"))
		return
	}

	h.recordHistory(r, "notam:"+code, summary)
	WriteJSON(w, http.StatusOK, struct {
		Airport string `json:"airport"`
		Summary string `json:"summary"`
	}{Airport: code, Summary: summary})
}

// GetWindForecast returns TAF wind periods for an airport
func (h *Handler) GetWindForecast(w http.ResponseWriter, r *http.Request) {
	code := h.directory.ResolveCode(chi.URLParam(r, "code"))

	periods, err := h.weatherService.WindForecast(code)
	if err != nil {
		h.logger.Error("Failed to fetch wind forecast",
			logger.String("airport", code),
			logger.Error(err))
		WriteJSON(w, http.StatusBadGateway, errorResponse("weather data unavailable"))
		return
	}

	h.recordHistory(r, "wind:"+code, formatWindPeriods(periods))
	WriteJSON(w, http.StatusOK, struct {
		Airport string           `json:"airport"`
		Periods []taf.WindPeriod `json:"periods"`
	}{Airport: code, Periods: periods})
}

// GetTempExtremes returns TAF TX/TN temperature extremes for an airport
func (h *Handler) GetTempExtremes(w http.ResponseWriter, r *http.Request) {
	code := h.directory.ResolveCode(chi.URLParam(r, "code"))

	extremes, err := h.weatherService.TempExtremes(code)
	if err != nil {
		h.logger.Error("Failed to fetch temperature extremes",
			logger.String("airport", code),
			logger.Error(err))
		WriteJSON(w, http.StatusBadGateway, errorResponse("weather data unavailable"))
		return
	}

	h.recordHistory(r, "temp:"+code, formatTempExtremes(extremes))
	WriteJSON(w, http.StatusOK, struct {
		Airport  string            `json:"airport"`
		Extremes []taf.TempExtreme `json:"extremes"`
	}{Airport: code, Extremes: extremes})
}

// SearchAirports performs a substring search over the airport directory
func (h *Handler) SearchAirports(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	limit := parseIntParam(r, "limit", h.config.Airports.DefaultSearchLimit)

	results := h.directory.Search(query, limit)
	WriteJSON(w, http.StatusOK, struct {
		Query   string            `json:"query"`
		Results []airports.Record `json:"results"`
	}{Query: query, Results: results})
}

// NearbyAirports returns airports within a radius of a point, closest first
func (h *Handler) NearbyAirports(w http.ResponseWriter, r *http.Request) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if errLat != nil || errLon != nil {
		WriteJSON(w, http.StatusBadRequest, errorResponse("lat and lon query parameters are required"))
		return
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		WriteJSON(w, http.StatusBadRequest, errorResponse("lat/lon out of range"))
		return
	}

	radiusKm := parseFloatParam(r, "radius_km", h.config.Airports.NearbyRadiusKm)
	limit := parseIntParam(r, "limit", h.config.Airports.NearbyLimit)

	results := h.directory.Nearby(lat, lon, radiusKm, limit)
	WriteJSON(w, http.StatusOK, struct {
		Lat      float64           `json:"lat"`
		Lon      float64           `json:"lon"`
		RadiusKm float64           `json:"radius_km"`
		Results  []airports.Nearby `json:"results"`
	}{Lat: lat, Lon: lon, RadiusKm: radiusKm, Results: results})
}

// ResolveCode normalizes an airport code (IATA to ICAO where known)
func (h *Handler) ResolveCode(w http.ResponseWriter, r *http.Request) {
	input := chi.URLParam(r, "code")
	resolved := h.directory.ResolveCode(input)
	WriteJSON(w, http.StatusOK, struct {
		Input string `json:"input"`
		Code  string `json:"code"`
	}{Input: input, Code: resolved})
}

// GetHistory returns recent recorded lookups, newest first
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	if h.historyStorage == nil {
		WriteJSON(w, http.StatusServiceUnavailable, errorResponse("history storage not available"))
		return
	}

	clientID := r.URL.Query().Get("client")
	limit := parseIntParam(r, "limit", 20)

	records, err := h.historyStorage.GetRecent(clientID, limit)
	if err != nil {
		h.logger.Error("Failed to query history", logger.Error(err))
		WriteJSON(w, http.StatusInternalServerError, errorResponse("failed to query history"))
		return
	}
	if records == nil {
		records = []sqlite.HistoryRecord{}
	}

	WriteJSON(w, http.StatusOK, struct {
		Records []sqlite.HistoryRecord `json:"records"`
	}{Records: records})
}

// Health reports liveness plus directory and subscriber counts
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, struct {
		Status    string `json:"status"`
		Airports  int    `json:"airports"`
		WSClients int    `json:"ws_clients"`
	}{Status: "ok", Airports: h.directory.Len(), WSClients: h.wsServer.ClientCount()})
}

// recordHistory stores a lookup result, keyed by the caller's client ID.
// History is best effort; failures are logged and the response proceeds.
func (h *Handler) recordHistory(r *http.Request, query, result string) {
	if h.historyStorage == nil {
		return
	}
	if _, err := h.historyStorage.StoreQuery(clientID(r), query, result); err != nil {
		h.logger.Warn("Failed to record history", logger.Error(err))
	}
}

// clientID identifies the caller: explicit header first, else remote host.
func clientID(r *http.Request) string {
	if id := r.Header.Get("X-Client-ID"); id != "" {
		return id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func parseIntParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func parseFloatParam(r *http.Request, name string, fallback float64) float64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func formatWindPeriods(periods []taf.WindPeriod) string {
	if len(periods) == 0 {
		return "no wind periods"
	}
	parts := make([]string, 0, len(periods))
	for _, p := range periods {
		parts = append(parts, p.Window+": "+p.WindToken)
	}
	return strings.Join(parts, "; ")
}

func formatTempExtremes(extremes []taf.TempExtreme) string {
	if len(extremes) == 0 {
		return "no temperature extremes"
	}
	parts := make([]string, 0, len(extremes))
	for _, e := range extremes {
		parts = append(parts, fmt.Sprintf("%s %d°C", e.Kind, e.ValueC))
	}
	return strings.Join(parts, "; ")
}

func errorResponse(msg string) any {
	return struct {
		Error string `json:"error"`
	}{Error: msg}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
