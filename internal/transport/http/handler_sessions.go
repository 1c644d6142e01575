package httptransport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	appsession "roulette-oracle/internal/app/session"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

type SessionHandlers struct {
	mgr *appsession.Manager
}

func NewSessionHandlers(mgr *appsession.Manager) *SessionHandlers {
	return &SessionHandlers{mgr: mgr}
}

type createSessionRequest struct {
	Spins []int `json:"spins"`
}

type createSessionResponse struct {
	SessionID string `json:"session_id"`
	Imported  int    `json:"imported"`
	Persisted bool   `json:"persisted"`
}

type appendSpinRequest struct {
	Number *int `json:"number"`
}

type changeResponse struct {
	Change    appsession.Change   `json:"change"`
	Persisted bool                `json:"persisted"`
	Overview  appsession.Overview `json:"overview"`
}

type historyPage struct {
	Items  []int `json:"items"`
	Total  int   `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// notReady is returned in place of a view the history is too short for.
type notReady struct {
	Ready bool `json:"ready"`
	Need  int  `json:"need"`
	Have  int  `json:"have"`
}

func (h *SessionHandlers) session(w http.ResponseWriter, r *http.Request) (*appsession.Session, bool) {
	s, err := h.mgr.Get(r.Context(), chi.URLParam(r, "session_id"))
	if err != nil {
		writeSessionError(w, err)
		return nil, false
	}
	return s, true
}

func (h *SessionHandlers) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricSessionCreateTotal.Add(1)
		var req createSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			metricSessionCreateErrors.Add(1)
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		s, err := h.mgr.Create(r.Context())
		if err != nil {
			metricSessionCreateErrors.Add(1)
			log.Error().Err(err).Str("request_id", chimw.GetReqID(r.Context())).Msg("session create failed")
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		resp := createSessionResponse{SessionID: s.ID, Persisted: true}
		if len(req.Spins) > 0 {
			n, err := s.Import(r.Context(), req.Spins)
			resp.Imported = n
			resp.Persisted = h.checkPersist(err)
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

func (h *SessionHandlers) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := h.session(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, s.Overview())
	}
}

func (h *SessionHandlers) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.mgr.Delete(r.Context(), chi.URLParam(r, "session_id")); err != nil {
			writeSessionError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *SessionHandlers) Spins() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := h.session(w, r)
		if !ok {
			return
		}
		hist := s.History()
		limit, offset := ParsePagination(r)
		start := min(offset, len(hist))
		end := min(start+limit, len(hist))
		writeJSON(w, http.StatusOK, historyPage{Items: hist[start:end], Total: len(hist), Limit: limit, Offset: offset})
	}
}

func (h *SessionHandlers) AppendSpin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := h.session(w, r)
		if !ok {
			return
		}
		var req appendSpinRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Number == nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		metricSpinAppendTotal.Add(1)
		ch, err := s.Append(r.Context(), *req.Number)
		if errors.Is(err, appsession.ErrInvalidOutcome) {
			metricSpinRejectedTotal.Add(1)
		}
		h.respondChange(w, s, ch, err)
	}
}

func (h *SessionHandlers) UndoSpin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := h.session(w, r)
		if !ok {
			return
		}
		metricHistoryEditTotal.Add(1)
		ch, err := s.Undo(r.Context())
		h.respondChange(w, s, ch, err)
	}
}

func (h *SessionHandlers) RemoveSpin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := h.session(w, r)
		if !ok {
			return
		}
		idx, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_index")
			return
		}
		metricHistoryEditTotal.Add(1)
		ch, err := s.RemoveAt(r.Context(), idx)
		h.respondChange(w, s, ch, err)
	}
}

func (h *SessionHandlers) Reset() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := h.session(w, r)
		if !ok {
			return
		}
		metricHistoryEditTotal.Add(1)
		ch, err := s.Reset(r.Context())
		h.respondChange(w, s, ch, err)
	}
}

// respondChange reports a write. A failed save still returns the change
// with persisted=false because the session itself was updated.
func (h *SessionHandlers) respondChange(w http.ResponseWriter, s *appsession.Session, ch appsession.Change, err error) {
	if err != nil && !errors.Is(err, appsession.ErrPersist) {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, changeResponse{Change: ch, Persisted: h.checkPersist(err), Overview: s.Overview()})
}

func (h *SessionHandlers) checkPersist(err error) bool {
	if err == nil {
		return true
	}
	metricPersistErrorsTotal.Add(1)
	return false
}

func (h *SessionHandlers) Predictions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := h.session(w, r)
		if !ok {
			return
		}
		metricPredictTotal.Add(1)
		started := time.Now()
		p, err := s.Predict()
		metricPredictMillis.Set(time.Since(started).Milliseconds())
		if h.notReady(w, s, err, appsession.MinPredictionSpins) {
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func (h *SessionHandlers) Strategies() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := h.session(w, r)
		if !ok {
			return
		}
		p, err := s.Predict()
		if h.notReady(w, s, err, appsession.MinPredictionSpins) {
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"results":      p.Consensus.Results,
			"active_count": p.Consensus.ActiveCount,
		})
	}
}

func (h *SessionHandlers) Categories() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := h.session(w, r)
		if !ok {
			return
		}
		p, err := s.Predict()
		if h.notReady(w, s, err, appsession.MinPredictionSpins) {
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": p.Categories})
	}
}

func (h *SessionHandlers) Agent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := h.session(w, r)
		if !ok {
			return
		}
		v, err := s.Agent()
		if h.notReady(w, s, err, appsession.MinAgentSpins) {
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func (h *SessionHandlers) Stats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := h.session(w, r)
		if !ok {
			return
		}
		sum, err := s.Stats()
		if h.notReady(w, s, err, appsession.MinPredictionSpins) {
			return
		}
		writeJSON(w, http.StatusOK, sum)
	}
}

func (h *SessionHandlers) ExportCSV() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := h.session(w, r)
		if !ok {
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "roulette-"+s.ID+".csv"))
		if err := s.ExportCSV(w); err != nil {
			log.Warn().Err(err).Str("session_id", s.ID).Msg("csv export interrupted")
		}
	}
}

// notReady writes the response for err and reports whether the caller is
// done. Short histories get 200 with ready=false.
func (h *SessionHandlers) notReady(w http.ResponseWriter, s *appsession.Session, err error, need int) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, appsession.ErrInsufficientData) {
		writeJSON(w, http.StatusOK, notReady{Ready: false, Need: need, Have: s.Len()})
		return true
	}
	writeSessionError(w, err)
	return true
}
