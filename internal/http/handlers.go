package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"pocketbook/internal/core"
	applog "pocketbook/internal/log"
	"pocketbook/internal/session"
)

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.withSession(nil))
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	// Unknown screens are ignored by the session and answered with the
	// unchanged state.
	screen := core.Screen(strings.ToUpper(strings.TrimSpace(req.Screen)))
	state := s.withSession(func(sess *session.Session) { sess.NavigateTo(r.Context(), screen) })
	writeJSON(w, r, http.StatusOK, state)
}

func (s *Server) handleToggleTheme(w http.ResponseWriter, r *http.Request) {
	state := s.withSession(func(sess *session.Session) { sess.ToggleTheme(r.Context()) })
	writeJSON(w, r, http.StatusOK, state)
}

func (s *Server) handleToggleLanguage(w http.ResponseWriter, r *http.Request) {
	state := s.withSession(func(sess *session.Session) { sess.ToggleLanguage(r.Context()) })
	writeJSON(w, r, http.StatusOK, state)
}

func (s *Server) handleKeypad(w http.ResponseWriter, r *http.Request) {
	var req keypadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	state := s.withSession(func(sess *session.Session) { sess.OnKeypadClick(r.Context(), req.Key) })
	writeJSON(w, r, http.StatusOK, state)
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	name := sanitizeInput(req.Name)
	state := s.withSession(func(sess *session.Session) { sess.AddTransaction(r.Context(), name) })
	writeJSON(w, r, http.StatusOK, state)
}

func (s *Server) handleReceipts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	state := s.sess.Snapshot()
	lz := s.sess.Localizer()
	resp := buildReceipts(state.Transactions, state.Totals, lz, s.location)
	s.mu.Unlock()
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleListDictionary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.withSession(nil).Dictionary)
}

func (s *Server) handleSaveDictionaryItem(w http.ResponseWriter, r *http.Request) {
	var req dictionaryItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	item := req.item()
	state := s.withSession(func(sess *session.Session) { sess.SaveDictionaryItem(r.Context(), item) })
	writeJSON(w, r, http.StatusOK, state)
}

func (s *Server) handleUpdateDictionaryItem(w http.ResponseWriter, r *http.Request) {
	var req dictionaryItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	id := r.PathValue("id")
	if req.ID != "" && req.ID != id {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("body id %q does not match path id %q", req.ID, id))
		return
	}
	req.ID = id
	item := req.item()
	state := s.withSession(func(sess *session.Session) { sess.UpdateDictionaryItem(r.Context(), item) })
	writeJSON(w, r, http.StatusOK, state)
}

func (s *Server) handleDeleteDictionaryItem(w http.ResponseWriter, r *http.Request) {
	item := core.RecommendationItem{ID: r.PathValue("id")}
	state := s.withSession(func(sess *session.Session) { sess.DeleteDictionaryItem(r.Context(), item) })
	writeJSON(w, r, http.StatusOK, state)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if s.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()
		if err := s.store.Ping(ctx); err != nil {
			s.logger.WarnContext(ctx, "Readiness check failed", applog.FieldError, err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("store unavailable"))
			return
		}
	}
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	state := s.withSession(nil)
	req := s.tracer.GetMetrics()
	rl := s.limiter.GetMetrics()
	sec := s.detector.GetMetrics()

	var b strings.Builder
	line := func(name string, v int64) { fmt.Fprintf(&b, "%s %d\n", name, v) }
	line("pocketbook_http_requests_total", req.TotalRequests)
	line("pocketbook_http_server_errors_total", req.ServerErrors)
	line("pocketbook_http_response_time_avg_us", req.AverageResponseTime)
	line("pocketbook_rate_limit_hits_total", rl.TotalHits)
	line("pocketbook_rate_limit_clients", rl.ClientCount)
	line("pocketbook_suspicious_requests_total", sec.SuspiciousRequests)
	line("pocketbook_blocked_requests_total", sec.BlockedRequests)
	line("pocketbook_websocket_sessions", int64(s.ws.Len()))
	line("pocketbook_transactions", int64(len(state.Transactions)))
	line("pocketbook_dictionary_items", int64(len(state.Dictionary)))

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	_, _ = w.Write([]byte(b.String()))
}
