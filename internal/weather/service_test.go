package weather

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Avzar/AeroBot/internal/cache"
	"github.com/Avzar/AeroBot/pkg/logger"
)

const sampleBody = "UAAA 010600Z 18005KT 9999 FEW020 22/14 Q1015\n\nTAF UAAA 010500Z 0106/0212 20010KT 9999 SCT030\n  BECMG 0112/0114 27015KT"

func TestSplitBulletins(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantMETAR string
		wantTAF   string
	}{
		{
			name:      "metar and taf blocks",
			body:      sampleBody,
			wantMETAR: "UAAA 010600Z 18005KT 9999 FEW020 22/14 Q1015",
			wantTAF:   "TAF UAAA 010500Z 0106/0212 20010KT 9999 SCT030\n  BECMG 0112/0114 27015KT",
		},
		{
			name:      "metar only",
			body:      "UACC 010630Z 36012KT 4000 OVC010 M05/M10 Q1028\n",
			wantMETAR: "UACC 010630Z 36012KT 4000 OVC010 M05/M10 Q1028",
		},
		{
			name:    "taf only",
			body:    "TAF KJFK 010520Z 0106/0212 24008KT P6SM\n\n",
			wantTAF: "TAF KJFK 010520Z 0106/0212 24008KT P6SM",
		},
		{
			name: "empty body",
			body: "   \n  ",
		},
		{
			name:      "crlf line endings",
			body:      "UAAA 010600Z 18005KT\r\n\r\nTAF UAAA 010500Z 0106/0212 20010KT",
			wantMETAR: "UAAA 010600Z 18005KT",
			wantTAF:   "TAF UAAA 010500Z 0106/0212 20010KT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitBulletins(tt.body)
			assert.Equal(t, tt.wantMETAR, got.METAR)
			assert.Equal(t, tt.wantTAF, got.TAF)
		})
	}
}

func TestDecodeCachedBulletins(t *testing.T) {
	b := decodeCachedBulletins("METAR TEXT" + bulletinSeparator + "TAF TEXT")
	assert.Equal(t, "METAR TEXT", b.METAR)
	assert.Equal(t, "TAF TEXT", b.TAF)

	b = decodeCachedBulletins("METAR ONLY")
	assert.Equal(t, "METAR ONLY", b.METAR)
	assert.Empty(t, b.TAF)
}

type fakeBroadcaster struct {
	messages [][]byte
}

func (f *fakeBroadcaster) Broadcast(message []byte) {
	f.messages = append(f.messages, message)
}

func newTestService(t *testing.T, upstream http.HandlerFunc) (*Service, *fakeBroadcaster, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.APIBaseURL = srv.URL
	cfg.NOTAMsBaseURL = srv.URL + "/notams"
	cfg.MaxRetries = 0

	broadcaster := &fakeBroadcaster{}
	store := cache.New(5 * time.Minute)
	return NewService(cfg, store, broadcaster, logger.NewNop()), broadcaster, srv
}

func TestServiceBulletinsCacheFirst(t *testing.T) {
	var hits int32
	svc, broadcaster, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "/metar", r.URL.Path)
		assert.Equal(t, "UAAA", r.URL.Query().Get("ids"))
		assert.Equal(t, "raw", r.URL.Query().Get("format"))
		assert.Equal(t, "true", r.URL.Query().Get("taf"))
		w.Write([]byte(sampleBody))
	})

	b, err := svc.Bulletins("uaaa")
	require.NoError(t, err)
	assert.Equal(t, "UAAA 010600Z 18005KT 9999 FEW020 22/14 Q1015", b.METAR)
	assert.Contains(t, b.TAF, "TAF UAAA")

	// Second lookup is served from cache.
	b2, err := svc.Bulletins("UAAA")
	require.NoError(t, err)
	assert.Equal(t, b, b2)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	// Only the fresh fetch is broadcast.
	require.Len(t, broadcaster.messages, 1)
	assert.Contains(t, string(broadcaster.messages[0]), `"airport":"UAAA"`)
}

func TestServiceReport(t *testing.T) {
	svc, _, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleBody))
	})

	got, err := svc.Report("UAAA")
	require.NoError(t, err)
	assert.Contains(t, got, "Airport: UAAA")
	assert.Contains(t, got, "Wind: 180° 5 kt")
	assert.Contains(t, got, "Visibility: 10+ km")
	assert.Contains(t, got, "TAF (brief):")
}

func TestServiceWindForecastAndTempExtremes(t *testing.T) {
	svc, _, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("UAAA 010600Z 18005KT\n\nTAF UAAA 010500Z 0106/0212 20010KT TX22/0110Z TNM03/0201Z"))
	})

	periods, err := svc.WindForecast("UAAA")
	require.NoError(t, err)
	require.Len(t, periods, 1)
	assert.Equal(t, "0106/0212", periods[0].Window)
	assert.Equal(t, "20010KT", periods[0].WindToken)

	extremes, err := svc.TempExtremes("UAAA")
	require.NoError(t, err)
	require.Len(t, extremes, 2)
	assert.Equal(t, 22, extremes[0].ValueC)
	assert.Equal(t, -3, extremes[1].ValueC)
}

func TestServiceNOTAMs(t *testing.T) {
	var hits int32
	svc, _, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "/notams", r.URL.Path)
		assert.Equal(t, "KJFK", r.URL.Query().Get("locations"))
		w.Write([]byte(`{"notams":[{"text":"RWY 04L/22R CLSD"},{"text":"TWY B LGTS U/S"}]}`))
	})

	got, err := svc.NOTAMs("kjfk")
	require.NoError(t, err)
	assert.Contains(t, got, "NOTAMs for KJFK (2):")
	assert.Contains(t, got, "RWY 04L/22R CLSD")

	// Summary comes from cache on the second call.
	_, err = svc.NOTAMs("KJFK")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestServiceNOTAMsEmpty(t *testing.T) {
	svc, _, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"notams":[]}`))
	})

	got, err := svc.NOTAMs("UAAA")
	require.NoError(t, err)
	assert.Equal(t, "No active NOTAMs for UAAA.", got)
}

func TestServiceNOTAMsUpstreamFailure(t *testing.T) {
	svc, _, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	})

	got, err := svc.NOTAMs("UAAA")
	require.NoError(t, err)
	assert.Equal(t, "NOTAMs unavailable for UAAA (API error).", got)
}
