package httptransport

import (
	"net/http"
	"time"

	appsession "roulette-oracle/internal/app/session"
	"roulette-oracle/internal/stream"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

var ssePingInterval = 15 * time.Second

// EventsSSEHandler streams session changes. Last-Event-ID resumes from the
// session's replay buffer.
func EventsSSEHandler(mgr *appsession.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := mgr.Get(r.Context(), chi.URLParam(r, "session_id"))
		if err != nil {
			writeSessionError(w, err)
			return
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			WriteHTTPError(w, http.StatusInternalServerError, "stream_not_supported")
			return
		}

		metricSSEConnectionsTotal.Add(1)
		metricSSEConnectionsActive.Add(1)
		defer metricSSEConnectionsActive.Add(-1)

		buf := s.Events()
		ch, cancel := buf.Subscribe()
		defer cancel()

		stream.SetSSEHeaders(w)
		reqID := chimw.GetReqID(r.Context())
		log.Info().Str("request_id", reqID).Str("session_id", s.ID).Msg("sse stream opened")

		for _, ev := range buf.Since(r.Header.Get("Last-Event-ID")) {
			if err := stream.WriteSSE(w, ev); err != nil {
				return
			}
		}
		flusher.Flush()

		ticker := time.NewTicker(ssePingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-r.Context().Done():
				log.Info().Str("request_id", reqID).Str("session_id", s.ID).Msg("sse stream closed")
				return
			case ev, ok := <-ch:
				if !ok {
					log.Info().Str("request_id", reqID).Str("session_id", s.ID).Msg("sse session closed")
					return
				}
				if err := stream.WriteSSE(w, ev); err != nil {
					return
				}
				log.Debug().Str("session_id", s.ID).Str("event", ev.Type).Str("event_id", ev.ID()).Msg("sse event sent")
				flusher.Flush()
			case <-ticker.C:
				ping := stream.Event{Type: "ping", SessionID: s.ID, ServerTS: time.Now().UnixMilli()}
				if err := stream.WriteSSE(w, ping); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}
