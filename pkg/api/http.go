// Package api provides the HTTP and WebSocket endpoints of the oracle server.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/hardyjosh/rain-oracle-server/pkg/logging"
	"github.com/hardyjosh/rain-oracle-server/pkg/metrics"
	"github.com/hardyjosh/rain-oracle-server/pkg/oracle"
	"github.com/hardyjosh/rain-oracle-server/pkg/order"
)

// maxBodyBytes bounds the ABI-encoded order body.
const maxBodyBytes = 1 << 20

// Producer produces signed contexts.
type Producer interface {
	Produce(ctx context.Context) (*oracle.SignedContext, error)
	ProduceForOrder(ctx context.Context, input, output common.Address) (*oracle.SignedContext, error)
}

// Server represents the HTTP API server.
type Server struct {
	addr        string
	producer    Producer
	server      *http.Server
	logger      *logging.Logger
	corsOrigins []string
	tlsCert     string
	tlsKey      string
	stream      *StreamServer // Optional signed context stream
}

// Option configures a Server.
type Option func(*Server)

// WithCORSOrigins sets the allowed origins. Defaults to any origin.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) { s.corsOrigins = origins }
}

// WithTLS serves HTTPS with the given certificate and key files.
func WithTLS(cert, key string) Option {
	return func(s *Server) {
		s.tlsCert = cert
		s.tlsKey = key
	}
}

// WithStream mounts the signed context stream at /ws.
func WithStream(stream *StreamServer) Option {
	return func(s *Server) { s.stream = stream }
}

// NewServer creates a new HTTP API server.
func NewServer(addr string, producer Producer, logger *logging.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = logging.NewNoopLogger()
	}
	s := &Server{
		addr:        addr,
		producer:    producer,
		logger:      logger,
		corsOrigins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Handler returns the routed handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.recordRequest)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleHealth)
	r.Get("/health", s.handleHealth)
	r.Get("/context", s.handleGetContext)
	r.Post("/context", s.handlePostContext)
	if s.stream != nil {
		r.Get("/ws", s.stream.HandleWebSocket)
	}

	return r
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	var err error
	if s.tlsCert != "" {
		s.logger.Info("Starting HTTPS server", "addr", s.addr)
		err = s.server.ListenAndServeTLS(s.tlsCert, s.tlsKey)
	} else {
		s.logger.Info("Starting HTTP server", "addr", s.addr)
		err = s.server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Stop gracefully stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping HTTP server")
	return s.server.Shutdown(ctx)
}

// handleHealth handles / and /health.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleGetContext returns a signed context with the feed price as-is.
func (s *Server) handleGetContext(w http.ResponseWriter, r *http.Request) {
	sc, err := s.producer.Produce(r.Context())
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	s.sendJSON(w, http.StatusOK, sc)
}

// handlePostContext decodes an ABI-encoded order request and returns a
// signed context facing the order's direction.
func (s *Server) handlePostContext(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.sendError(w, r, fmt.Errorf("%w: %v", order.ErrInvalidBody, err))
		return
	}

	req, err := order.Decode(body)
	if err != nil {
		s.sendError(w, r, err)
		return
	}

	input, output, err := req.Tokens()
	if err != nil {
		s.sendError(w, r, err)
		return
	}

	s.logger.Debug("Oracle request",
		"request_id", middleware.GetReqID(r.Context()),
		"input", input.Hex(),
		"output", output.Hex(),
		"counterparty", req.Counterparty.Hex(),
	)

	sc, err := s.producer.ProduceForOrder(r.Context(), input, output)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	s.sendJSON(w, http.StatusOK, sc)
}

// sendError writes the JSON error body matching err.
func (s *Server) sendError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)

	fields := []interface{}{
		"request_id", middleware.GetReqID(r.Context()),
		"path", r.URL.Path,
		"code", code,
		"error", err,
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", fields...)
	} else {
		s.logger.Warn("Bad request", fields...)
	}

	s.sendJSON(w, status, ErrorResponse{Error: code, Detail: err.Error()})
}

// sendJSON sends a JSON response.
func (s *Server) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to encode JSON response", "error", err)
	}
}

// recordRequest records per-route request metrics.
func (s *Server) recordRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			endpoint := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				endpoint = r.Method + " " + rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			metrics.RecordHTTPRequest(endpoint, strconv.Itoa(status), time.Since(start))
		}()
		next.ServeHTTP(ww, r)
	})
}
