// internal/server/server.go
package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"store-assistant/internal/common/config"
	apperrors "store-assistant/internal/common/errors"
	"store-assistant/internal/common/logger"
	"store-assistant/internal/resolver"
)

// viewerHeader carries the authenticated salesperson identity. Upstream auth
// middleware sets it; the assistant itself never authenticates anyone.
const viewerHeader = "X-Viewer-Identity"

type questionRequest struct {
	Query string `json:"query"`
}

// Server is the thin HTTP face over the resolver. It owns request decoding,
// viewer extraction and status codes; all question semantics live below it.
type Server struct {
	config   *config.ServerConfig
	resolver *resolver.Service
	logger   logger.Logger
}

func New(cfg *config.ServerConfig, svc *resolver.Service, log logger.Logger) *Server {
	return &Server{
		config:   cfg,
		resolver: svc,
		logger:   log.WithFields(map[string]interface{}{"component": "server"}),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/orders/query", s.handleOrderQuery)
	mux.HandleFunc("/api/products/search", s.handleProductSearch)
	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) handleOrderQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, apperrors.NewMalformedQueryError("POST required"))
		return
	}

	viewer := strings.TrimSpace(r.Header.Get(viewerHeader))
	if viewer == "" {
		s.writeError(w, http.StatusUnauthorized, apperrors.NewInvalidFilterFormatError(viewerHeader+" header is required"))
		return
	}

	req, ok := s.decodeQuestion(w, r)
	if !ok {
		return
	}

	log := s.requestLogger(r)
	log.Info("order query received", map[string]interface{}{"viewer": viewer})

	result := s.resolver.ResolveSalesOrderQuery(r.Context(), req.Query, viewer)
	s.writeJSON(w, statusFor(result.Err), result)
}

func (s *Server) handleProductSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, apperrors.NewMalformedQueryError("POST required"))
		return
	}

	req, ok := s.decodeQuestion(w, r)
	if !ok {
		return
	}

	log := s.requestLogger(r)
	log.Info("product search received", nil)

	result := s.resolver.ResolveProductSearch(r.Context(), req.Query)
	s.writeJSON(w, statusFor(result.Err), result)
}

// handleChat classifies the question and routes it. Order questions on this
// endpoint still require the viewer header; product and general chat do not.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, apperrors.NewMalformedQueryError("POST required"))
		return
	}

	req, ok := s.decodeQuestion(w, r)
	if !ok {
		return
	}

	viewer := strings.TrimSpace(r.Header.Get(viewerHeader))
	log := s.requestLogger(r)
	log.Info("chat question received", nil)

	resolution := s.resolver.Resolve(r.Context(), req.Query, viewer)

	status := http.StatusOK
	switch {
	case resolution.Order != nil:
		status = statusFor(resolution.Order.Err)
	case resolution.Product != nil:
		status = statusFor(resolution.Product.Err)
	}
	s.writeJSON(w, status, resolution)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) decodeQuestion(w http.ResponseWriter, r *http.Request) (questionRequest, bool) {
	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, apperrors.NewMalformedQueryError("request body must be JSON with a query field"))
		return req, false
	}
	if strings.TrimSpace(req.Query) == "" {
		s.writeError(w, http.StatusBadRequest, apperrors.NewMalformedQueryError("query must not be empty"))
		return req, false
	}
	return req, true
}

func (s *Server) requestLogger(r *http.Request) logger.Logger {
	return s.logger.WithFields(map[string]interface{}{
		"requestId": uuid.New().String(),
		"path":      r.URL.Path,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("response encoding failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, stdErr *apperrors.StandardError) {
	s.writeJSON(w, status, map[string]interface{}{"error": stdErr})
}

// statusFor keeps the uniform result body while still signalling transport
// level success or failure.
func statusFor(errMessage string) int {
	if errMessage == "" {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}
