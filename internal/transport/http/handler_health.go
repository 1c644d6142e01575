package httptransport

import (
	"net/http"

	appsession "roulette-oracle/internal/app/session"
	"roulette-oracle/internal/store"
)

func HealthHandler(st store.Store, mgr *appsession.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "store": "down"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "store": "up", "sessions_live": mgr.Live()})
	}
}
