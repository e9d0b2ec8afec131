package api

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"portfolio/metrics"
	"portfolio/respond"
	"portfolio/scheduler"
	"portfolio/session"
	"portfolio/storage"
	"portfolio/theme"
)

const (
	DefaultPingInterval  = 30 * time.Second
	DefaultSweepInterval = 30 * time.Second

	writeWait      = 5 * time.Second
	maxMessageSize = 4096
)

var errConnectionGone = errors.New("api: websocket connection gone")

// Options configure a Server.
type Options struct {
	Sessions *session.Manager
	Palette  *theme.Palette
	Store    storage.Store

	// Static serves /static/ (the page script). Assets serves /assets/
	// (logos and other images referenced by the page).
	Static fs.FS
	Assets fs.FS

	Gatherer prometheus.Gatherer
	Metrics  *metrics.Metrics

	CORSOrigins   []string
	PingInterval  time.Duration
	SweepInterval time.Duration
	Logger        *zap.Logger
}

type Server struct {
	sessions *session.Manager
	theme    *theme.Handler
	store    storage.Store
	static   fs.FS
	assets   fs.FS
	gatherer prometheus.Gatherer
	metrics  *metrics.Metrics
	origins  []string
	logger   *zap.Logger

	pingInterval  time.Duration
	sweepInterval time.Duration

	conns    *WSConnectionManager
	upgrader websocket.Upgrader
}

func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = DefaultPingInterval
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = DefaultSweepInterval
	}
	if opts.Store == nil {
		opts.Store = storage.NewMemory()
	}

	s := &Server{
		sessions:      opts.Sessions,
		store:         opts.Store,
		static:        opts.Static,
		assets:        opts.Assets,
		gatherer:      opts.Gatherer,
		metrics:       opts.Metrics,
		origins:       opts.CORSOrigins,
		logger:        opts.Logger,
		pingInterval:  opts.PingInterval,
		sweepInterval: opts.SweepInterval,
		conns:         NewWSConnectionManager(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	s.theme = theme.NewHandler(opts.Palette, func(r *http.Request) theme.Store {
		return storage.NewBucket(s.store, ClientID(r.Context()))
	}, opts.Logger.Named("theme"))
	return s
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(clientIdentity)

	r.Get("/", s.handleIndex)
	r.Get("/ws", s.handleWebsocket)
	r.Get("/styles.css", s.theme.HandleStylesheet)

	if s.static != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(s.static))))
	}
	if s.assets != nil {
		r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(s.assets))))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.origins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPut, http.MethodOptions},
			AllowedHeaders:   []string{"Content-Type", theme.ClientHintHeader},
			AllowCredentials: true,
			MaxAge:           300,
		}))
		r.Get("/health", s.handleHealth)
		r.Get("/theme", s.theme.HandleGetPreference)
		r.Put("/theme", s.theme.HandlePutPreference)
	})

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Tasks returns the periodic jobs the server needs: sweeping pages whose
// websocket never arrived and pinging attached sockets.
func (s *Server) Tasks() []scheduler.Task {
	return []scheduler.Task{
		{
			Name:  "sweep-sessions",
			Every: s.sweepInterval,
			Run: func(_ context.Context, now time.Time) {
				s.sessions.Sweep(now)
			},
		},
		{
			Name:  "ping-sockets",
			Every: s.pingInterval,
			Run: func(context.Context, time.Time) {
				for _, id := range s.conns.Ping(writeWait) {
					s.metrics.WebsocketError("ping")
					s.logger.Debug("ping failed", zap.String("session", id))
				}
			},
		},
	}
}

// Shutdown closes every websocket and drops every session.
func (s *Server) Shutdown() {
	s.conns.CloseAll(writeWait)
	s.sessions.Close()
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Accept-CH", theme.ClientHintHeader)
	w.Header().Add("Vary", theme.ClientHintHeader)
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	sess := s.sessions.Create(ClientID(r.Context()), theme.PrefersDarkFromRequest(r))
	if err := sess.Render(w); err != nil {
		s.logger.Error("render page", zap.String("session", sess.ID()), zap.Error(err))
		s.sessions.Remove(sess.ID())
	}
}

type healthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
	Sockets  int    `json:"sockets"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		Sessions: s.sessions.Len(),
		Sockets:  s.conns.Len(),
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
