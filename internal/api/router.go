package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Avzar/AeroBot/internal/airports"
	"github.com/Avzar/AeroBot/internal/config"
	"github.com/Avzar/AeroBot/internal/storage/sqlite"
	"github.com/Avzar/AeroBot/internal/weather"
	"github.com/Avzar/AeroBot/internal/websocket"
	"github.com/Avzar/AeroBot/pkg/logger"
)

// Router wires the API handlers into an HTTP route tree
type Router struct {
	handler  *Handler
	config   *config.Config
	wsServer *websocket.Server
}

// NewRouter creates a new API router
func NewRouter(directory *airports.Directory, weatherService *weather.Service, historyStorage *sqlite.HistoryStorage, cfg *config.Config, log *logger.Logger, wsServer *websocket.Server) *Router {
	return &Router{
		handler:  NewHandler(directory, weatherService, historyStorage, cfg, log, wsServer),
		config:   cfg,
		wsServer: wsServer,
	}
}

// Routes returns the HTTP handler for all API routes
func (rt *Router) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware(rt.config.Server.CORSAllowedOrigins))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/weather/{code}", rt.handler.GetWeather)
		r.Get("/notams/{code}", rt.handler.GetNOTAMs)
		r.Get("/wind/{code}", rt.handler.GetWindForecast)
		r.Get("/temps/{code}", rt.handler.GetTempExtremes)

		r.Get("/airports/search", rt.handler.SearchAirports)
		r.Get("/airports/nearby", rt.handler.NearbyAirports)
		r.Get("/airports/resolve/{code}", rt.handler.ResolveCode)

		r.Get("/history", rt.handler.GetHistory)
		r.Get("/health", rt.handler.Health)

		r.Get("/ws", rt.wsServer.HandleConnection)
	})

	return r
}

// corsMiddleware sets CORS headers based on the configured allowed origins
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAll := false
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowAll || allowed[origin]) {
				if allowAll {
					w.Header().Set("Access-Control-Allow-Origin", "*")
				} else {
					w.Header().Set("Access-Control-Allow-Origin", origin)
				}
				w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Client-ID")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
