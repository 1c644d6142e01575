package httptransport

import (
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"

	appsession "roulette-oracle/internal/app/session"
	"roulette-oracle/internal/config"
	"roulette-oracle/internal/mcpserver"
	"roulette-oracle/internal/store"
	"roulette-oracle/internal/ws"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

func NewRouter(mgr *appsession.Manager, st store.Store, cfg config.ServerConfig) *chi.Mux {
	sessions := NewSessionHandlers(mgr)
	mcpSrv := mcpserver.New(mgr)
	wsSrv := ws.NewServer(mgr)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(CORSMiddleware(cfg.CORSOrigins))

	r.With(APILogMiddleware()).Get("/healthz", HealthHandler(st, mgr))
	r.With(APILogMiddleware()).MethodFunc(http.MethodOptions, "/mcp", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Allow", "POST, GET, DELETE, OPTIONS")
		w.WriteHeader(http.StatusNoContent)
	})
	r.With(APILogMiddleware()).Method(http.MethodPost, "/mcp", mcpSrv.Handler())
	r.With(APILogMiddleware()).Method(http.MethodGet, "/mcp", mcpSrv.Handler())
	r.With(APILogMiddleware()).Method(http.MethodDelete, "/mcp", mcpSrv.Handler())

	r.Get("/ws/sessions/{session_id}", wsSrv.HandleWS)

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Post("/sessions", sessions.Create())
		r.Route("/sessions/{session_id}", func(r chi.Router) {
			r.Get("/", sessions.Get())
			r.Delete("/", sessions.Delete())
			r.Get("/spins", sessions.Spins())
			r.Get("/predictions", sessions.Predictions())
			r.Get("/strategies", sessions.Strategies())
			r.Get("/categories", sessions.Categories())
			r.Get("/agent", sessions.Agent())
			r.Get("/stats", sessions.Stats())
			r.Get("/export.csv", sessions.ExportCSV())
			r.Get("/events", EventsSSEHandler(mgr))

			r.Group(func(r chi.Router) {
				r.Use(BodyCaptureMiddleware(4096))
				r.Post("/spins", sessions.AppendSpin())
				r.Delete("/spins/last", sessions.UndoSpin())
				r.Delete("/spins/{index}", sessions.RemoveSpin())
				r.Post("/reset", sessions.Reset())
			})
		})
		r.Get("/debug/vars", expvar.Handler().ServeHTTP)
	})
	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 32)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
