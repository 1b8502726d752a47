package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/wfunc/simonsays/game"
	"github.com/wfunc/simonsays/logger"
	"github.com/wfunc/simonsays/monitor"
	"github.com/wfunc/simonsays/session"
	"github.com/wfunc/simonsays/timer"
)

type Option func(*GameServer)

// WithScheduler shares one scheduler across all sessions. Tests pass a
// timer.Manual here.
func WithScheduler(s timer.Scheduler) Option {
	return func(g *GameServer) { g.scheduler = s }
}

// WithRandSource builds the pad draw source for each new game controller.
func WithRandSource(fn func() game.Rand) Option {
	return func(g *GameServer) { g.newRand = fn }
}

func WithMonitor(m *monitor.Monitor) Option {
	return func(g *GameServer) { g.monitor = m }
}

func WithTiming(t game.Timing) Option {
	return func(g *GameServer) { g.timing = t }
}

func WithDefaultDifficulty(d game.Difficulty) Option {
	return func(g *GameServer) { g.difficulty = d }
}

// WithHeartbeat drops clients silent for longer than twice interval.
func WithHeartbeat(interval time.Duration) Option {
	return func(g *GameServer) { g.heartbeat = interval }
}

// WithStaticDir serves the browser client from dir.
func WithStaticDir(dir string) Option {
	return func(g *GameServer) { g.staticDir = dir }
}

type GameServer struct {
	addr           string
	upgrader       websocket.Upgrader
	router         chi.Router
	httpServer     *http.Server
	sessionManager *session.Manager
	monitor        *monitor.Monitor
	scheduler      timer.Scheduler
	ownsScheduler  bool
	newRand        func() game.Rand
	timing         game.Timing
	difficulty     game.Difficulty
	heartbeat      time.Duration
	staticDir      string
}

func NewGameServer(addr string, opts ...Option) *GameServer {
	s := &GameServer{
		addr:           addr,
		sessionManager: session.NewManager(),
		timing:         game.DefaultTiming(),
		difficulty:     game.Medium,
		heartbeat:      30 * time.Second,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.monitor == nil {
		s.monitor = monitor.NewMonitor("simon")
	}
	if s.scheduler == nil {
		s.scheduler = timer.NewTimerManager()
		s.ownsScheduler = true
	}

	s.router = s.routes()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *GameServer) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/ws", s.handleWebSocket)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.monitor.Handler())

	if s.staticDir != "" {
		if info, err := os.Stat(s.staticDir); err == nil && info.IsDir() {
			logger.Log.Infof("Serving static files from %s", s.staticDir)
			r.NotFound(handleSPA(s.staticDir))
		} else {
			logger.Log.Warnf("Static dir %s not usable, skipping", s.staticDir)
		}
	}
	return r
}

// Handler exposes the router, for httptest.
func (s *GameServer) Handler() http.Handler {
	return s.router
}

func (s *GameServer) Sessions() *session.Manager {
	return s.sessionManager
}

// Start serves until Shutdown. It returns nil after a clean shutdown.
func (s *GameServer) Start() error {
	logger.Log.Infof("Game server listening on %s", s.addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and closes every live session.
func (s *GameServer) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)

	// hijacked websocket connections are not closed by http.Server
	for _, sess := range s.sessionManager.List() {
		sess.Close()
	}
	if m, ok := s.scheduler.(*timer.TimerManager); ok && s.ownsScheduler {
		m.Stop()
	}
	return err
}
