package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Avzar/AeroBot/internal/airports"
	"github.com/Avzar/AeroBot/internal/cache"
	"github.com/Avzar/AeroBot/internal/config"
	"github.com/Avzar/AeroBot/internal/storage/sqlite"
	"github.com/Avzar/AeroBot/internal/weather"
	"github.com/Avzar/AeroBot/internal/websocket"
	"github.com/Avzar/AeroBot/pkg/logger"
)

const upstreamBody = "UAAA 010600Z 18005KT 9999 FEW020 22/14 Q1015\n\nTAF UAAA 010500Z 0106/0212 20010KT 9999 SCT030 TX22/0110Z TNM03/0201Z"

func newTestAPI(t *testing.T) *httptest.Server {
	t.Helper()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/metar":
			w.Write([]byte(upstreamBody))
		case "/notams":
			w.Write([]byte(`{"notams":[{"text":"RWY 05R/23L CLSD"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(upstream.Close)

	cfg := &config.Config{}
	cfg.Server.CORSAllowedOrigins = []string{"*"}
	cfg.Airports.DefaultSearchLimit = 8
	cfg.Airports.NearbyRadiusKm = 200
	cfg.Airports.NearbyLimit = 5

	wxCfg := weather.DefaultConfig()
	wxCfg.APIBaseURL = upstream.URL
	wxCfg.NOTAMsBaseURL = upstream.URL + "/notams"
	wxCfg.MaxRetries = 0

	log := logger.NewNop()

	directory := airports.NewDirectory(log)
	directory.Load([]airports.Record{
		{Ident: "UAAA", ICAO: "UAAA", IATA: "ALA", Name: "Almaty International Airport", Country: "KZ", Lat: 43.3521, Lon: 77.0405},
		{Ident: "UACC", ICAO: "UACC", IATA: "NQZ", Name: "Nursultan Nazarbayev International Airport", Country: "KZ", Lat: 51.0222, Lon: 71.4669},
	})

	historyStorage, err := sqlite.NewHistoryStorage(filepath.Join(t.TempDir(), "history.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { historyStorage.Close() })

	wsServer := websocket.NewServer(log)
	weatherService := weather.NewService(wxCfg, cache.New(5*time.Minute), wsServer, log)

	router := NewRouter(directory, weatherService, historyStorage, cfg, log, wsServer)
	srv := httptest.NewServer(router.Routes())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp
}

func TestGetWeatherResolvesIATA(t *testing.T) {
	srv := newTestAPI(t)

	var got struct {
		Airport string `json:"airport"`
		Report  string `json:"report"`
	}
	resp := getJSON(t, srv.URL+"/api/v1/weather/ala", &got)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "UAAA", got.Airport)
	assert.Contains(t, got.Report, "Airport: UAAA")
	assert.Contains(t, got.Report, "Wind: 180° 5 kt")
	assert.Contains(t, got.Report, "TAF (brief):")
}

func TestGetNOTAMs(t *testing.T) {
	srv := newTestAPI(t)

	var got struct {
		Airport string `json:"airport"`
		Summary string `json:"summary"`
	}
	getJSON(t, srv.URL+"/api/v1/notams/UAAA", &got)

	assert.Equal(t, "UAAA", got.Airport)
	assert.Contains(t, got.Summary, "NOTAMs for UAAA (1):")
	assert.Contains(t, got.Summary, "RWY 05R/23L CLSD")
}

func TestGetWindAndTemps(t *testing.T) {
	srv := newTestAPI(t)

	var wind struct {
		Periods []struct {
			Window string `json:"window"`
			Wind   string `json:"wind"`
		} `json:"periods"`
	}
	getJSON(t, srv.URL+"/api/v1/wind/UAAA", &wind)
	require.Len(t, wind.Periods, 1)
	assert.Equal(t, "0106/0212", wind.Periods[0].Window)
	assert.Equal(t, "20010KT", wind.Periods[0].Wind)

	var temps struct {
		Extremes []struct {
			Kind   string `json:"kind"`
			ValueC int    `json:"value_c"`
		} `json:"extremes"`
	}
	getJSON(t, srv.URL+"/api/v1/temps/UAAA", &temps)
	require.Len(t, temps.Extremes, 2)
	assert.Equal(t, "max", temps.Extremes[0].Kind)
	assert.Equal(t, 22, temps.Extremes[0].ValueC)
	assert.Equal(t, -3, temps.Extremes[1].ValueC)
}

func TestSearchAirports(t *testing.T) {
	srv := newTestAPI(t)

	var got struct {
		Results []struct {
			ICAO string `json:"icao"`
		} `json:"results"`
	}
	getJSON(t, srv.URL+"/api/v1/airports/search?q=almaty", &got)
	require.Len(t, got.Results, 1)
	assert.Equal(t, "UAAA", got.Results[0].ICAO)

	// Empty query yields no results.
	getJSON(t, srv.URL+"/api/v1/airports/search", &got)
	assert.Empty(t, got.Results)
}

func TestNearbyAirports(t *testing.T) {
	srv := newTestAPI(t)

	var got struct {
		Results []struct {
			DistanceKm float64 `json:"distance_km"`
			Record     struct {
				ICAO string `json:"icao"`
			} `json:"airport"`
		} `json:"results"`
	}
	getJSON(t, srv.URL+"/api/v1/airports/nearby?lat=43.3&lon=77.0&radius_km=100", &got)
	require.Len(t, got.Results, 1)
	assert.Equal(t, "UAAA", got.Results[0].Record.ICAO)

	resp, err := http.Get(srv.URL + "/api/v1/airports/nearby?lat=abc&lon=77.0")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestResolveCode(t *testing.T) {
	srv := newTestAPI(t)

	var got struct {
		Input string `json:"input"`
		Code  string `json:"code"`
	}
	getJSON(t, srv.URL+"/api/v1/airports/resolve/ala", &got)
	assert.Equal(t, "ala", got.Input)
	assert.Equal(t, "UAAA", got.Code)

	getJSON(t, srv.URL+"/api/v1/airports/resolve/UACC", &got)
	assert.Equal(t, "UACC", got.Code)
}

func TestHistoryRecordsLookups(t *testing.T) {
	srv := newTestAPI(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/weather/UAAA", nil)
	require.NoError(t, err)
	req.Header.Set("X-Client-ID", "tester")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	var got struct {
		Records []struct {
			ClientID string `json:"client_id"`
			Query    string `json:"query"`
		} `json:"records"`
	}
	getJSON(t, srv.URL+"/api/v1/history?client=tester", &got)
	require.Len(t, got.Records, 1)
	assert.Equal(t, "tester", got.Records[0].ClientID)
	assert.Equal(t, "weather:UAAA", got.Records[0].Query)
}

func TestHealth(t *testing.T) {
	srv := newTestAPI(t)

	var got struct {
		Status   string `json:"status"`
		Airports int    `json:"airports"`
	}
	resp := getJSON(t, srv.URL+"/api/v1/health", &got)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", got.Status)
	assert.Equal(t, 2, got.Airports)
}
