package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

type Server struct {
	HTTP *http.Server
	Log  *slog.Logger
}

// NewRouter wires the API routes. Access logs go to accessLog when it is non-nil.
func NewRouter(h *Handlers, accessLog io.Writer) http.Handler {
	r := mux.NewRouter()
	r.Use(withRequestID)

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	if h.Metrics != nil {
		r.Handle("/metrics", h.Metrics.Handler()).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()
	api.Handle("/assets", h.instrument("/api/assets", h.Assets)).Methods(http.MethodGet)
	api.Handle("/assets/{id}", h.instrument("/api/assets/{id}", h.Asset)).Methods(http.MethodGet)
	api.Handle("/optimize", h.instrument("/api/optimize", h.Optimize)).Methods(http.MethodGet)
	api.Handle("/export", h.instrument("/api/export", h.Export)).Methods(http.MethodPost)

	var handler http.Handler = r
	handler = handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(handler)
	handler = handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost}),
		handlers.ExposedHeaders([]string{requestIDHeader}),
	)(handler)
	if accessLog != nil {
		handler = handlers.LoggingHandler(accessLog, handler)
	}
	return handler
}

func (h *Handlers) instrument(route string, fn http.HandlerFunc) http.Handler {
	if h.Metrics == nil {
		return fn
	}
	return h.Metrics.Instrument(route, fn)
}

func NewServer(addr string, log *slog.Logger, h *Handlers, accessLog io.Writer) *Server {
	hs := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(h, accessLog),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return &Server{HTTP: hs, Log: log}
}

func (s *Server) Start() error {
	s.Log.Info("http server starting", "addr", s.HTTP.Addr)
	return s.HTTP.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.Log.Info("http server stopping")
	return s.HTTP.Shutdown(ctx)
}
