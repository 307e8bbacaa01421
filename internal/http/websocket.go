package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/olahol/melody"

	applog "pocketbook/internal/log"
	"pocketbook/internal/session"
)

const messageTypeState = "state"

type stateMessage struct {
	Type  string        `json:"type"`
	State session.State `json:"state"`
}

func newMelody(logger *applog.Logger) *melody.Melody {
	logger = logger.WithComponent(applog.ComponentWebSocket)

	m := melody.New()
	// Clients only listen; inbound frames are small control messages.
	m.Config.MaxMessageSize = 1024
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	m.HandleDisconnect(func(s *melody.Session) {
		logger.Debug("WebSocket client disconnected", applog.FieldClientIP, s.Request.RemoteAddr)
	})
	m.HandleError(func(s *melody.Session, err error) {
		if errors.Is(err, melody.ErrSessionClosed) {
			return
		}
		logger.Warn("WebSocket error", applog.FieldError, err)
	})
	return m
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if err := s.ws.HandleRequest(w, r); err != nil {
		s.logger.WarnContext(r.Context(), "WebSocket upgrade failed", applog.FieldError, err)
	}
}

// handleWSConnect sends the current state so a new client renders without
// waiting for the next change.
func (s *Server) handleWSConnect(ws *melody.Session) {
	s.logger.Debug("WebSocket client connected", applog.FieldClientIP, ws.Request.RemoteAddr)

	msg, err := encodeState(s.withSession(nil))
	if err != nil {
		s.logger.Error("Failed to encode state", applog.FieldError, err)
		return
	}
	if err := ws.Write(msg); err != nil {
		s.logger.Warn("Failed to send initial state", applog.FieldError, err)
	}
}

// broadcastState is the session observer. It runs under the session lock;
// melody queues the message per connection, so it never blocks on clients.
func (s *Server) broadcastState(state session.State) {
	msg, err := encodeState(state)
	if err != nil {
		s.logger.Error("Failed to encode state", applog.FieldError, err)
		return
	}
	if err := s.ws.Broadcast(msg); err != nil && !errors.Is(err, melody.ErrClosed) {
		s.logger.Warn("Failed to broadcast state", applog.FieldError, err)
	}
}

func encodeState(state session.State) ([]byte, error) {
	return json.Marshal(stateMessage{Type: messageTypeState, State: state})
}
