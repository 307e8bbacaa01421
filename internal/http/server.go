// Package http exposes a pocketbook session as a JSON API with WebSocket
// push of state snapshots.
package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/olahol/melody"

	applog "pocketbook/internal/log"
	"pocketbook/internal/middleware/ratelimit"
	"pocketbook/internal/middleware/security"
	"pocketbook/internal/middleware/trace"
	"pocketbook/internal/session"
)

const readinessTimeout = 2 * time.Second

// Pinger checks that the backing store answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures a Server. Session is required.
type Options struct {
	Session            *session.Session
	Store              Pinger
	Logger             *applog.Logger
	RateLimitPerMinute int
	// Location is used when rendering receipt dates; nil means time.Local.
	Location *time.Location
}

// Server serializes every request into one session, the way a single UI
// thread would.
type Server struct {
	http.Server

	logger   *applog.Logger
	location *time.Location
	store    Pinger

	mu   sync.Mutex
	sess *session.Session

	ws          *melody.Melody
	unsubscribe func()

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

func NewServer(addr string, opts Options) (*Server, error) {
	if opts.Session == nil {
		return nil, errors.New("http: session is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}

	s := &Server{
		logger:   logger.WithComponent(applog.ComponentHTTP),
		location: opts.Location,
		store:    opts.Store,
		sess:     opts.Session,
		detector: security.NewDetector(),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)
	s.ws = newMelody(logger)

	s.ws.HandleConnect(s.handleWSConnect)
	s.mu.Lock()
	s.unsubscribe = s.sess.Subscribe(s.broadcastState)
	s.mu.Unlock()

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("POST /api/navigate", s.handleNavigate)
	mux.HandleFunc("POST /api/theme/toggle", s.handleToggleTheme)
	mux.HandleFunc("POST /api/language/toggle", s.handleToggleLanguage)
	mux.HandleFunc("POST /api/keypad", s.handleKeypad)
	mux.HandleFunc("POST /api/transactions", s.handleAddTransaction)
	mux.HandleFunc("GET /api/receipts", s.handleReceipts)
	mux.HandleFunc("GET /api/dictionary", s.handleListDictionary)
	mux.HandleFunc("POST /api/dictionary", s.handleSaveDictionaryItem)
	mux.HandleFunc("PUT /api/dictionary/{id}", s.handleUpdateDictionaryItem)
	mux.HandleFunc("DELETE /api/dictionary/{id}", s.handleDeleteDictionaryItem)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	var h http.Handler = mux
	h = s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited)(h)
	h = s.detector.Middleware(s.logger)(h)
	h = security.NewHeadersMiddleware(security.APIHeadersConfig()).Middleware(h)
	h = applog.Middleware(s.logger, trace.RequestIDFromRequest)(h)
	h = s.tracer.Middleware(h)
	return h
}

// withSession runs fn while holding the session lock and returns the
// resulting snapshot.
func (s *Server) withSession(fn func(*session.Session)) session.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn != nil {
		fn(s.sess)
	}
	return s.sess.Snapshot()
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldPath, r.URL.Path)
	writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded, try again later")
}

// Shutdown closes WebSocket sessions, stops background goroutines and then
// drains HTTP connections.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if s.unsubscribe != nil {
			s.unsubscribe()
		}
		s.mu.Unlock()

		if cerr := s.ws.Close(); cerr != nil && !errors.Is(cerr, melody.ErrClosed) {
			s.logger.WarnContext(ctx, "Closing WebSocket hub failed", applog.FieldError, cerr)
		}
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
