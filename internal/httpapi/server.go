package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/dshills/scrub/internal/config"
	"github.com/dshills/scrub/internal/jsonscrub"
	"github.com/dshills/scrub/internal/log"
	"github.com/dshills/scrub/internal/observability"
	"github.com/dshills/scrub/internal/redact"
)

// Server serves redaction requests.
type Server struct {
	cfg      config.Config
	metrics  *observability.Metrics
	gatherer prometheus.Gatherer
	logger   zerolog.Logger
}

// New returns a Server. gatherer backs the /metrics endpoint.
func New(cfg config.Config, metrics *observability.Metrics, gatherer prometheus.Gatherer) *Server {
	return &Server{
		cfg:      cfg,
		metrics:  metrics,
		gatherer: gatherer,
		logger:   log.WithComponent("httpapi"),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", observability.Handler(s.gatherer).ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(rateLimit(s.cfg.Server.RateLimit))
		r.Post("/v1/redact", s.handleRedact)
		r.Post("/v1/redact/json", s.handleRedactJSON)
	})

	return r
}

type redactRequest struct {
	Text              *string `json:"text"`
	KeepExtensionURLs *bool   `json:"keepExtensionUrls,omitempty"`
}

type redactResponse struct {
	Text string `json:"text"`
	URLs int    `json:"urls"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":              "ok",
		"redactExtensionUrls": s.cfg.RedactExtensionURLs,
	})
}

func (s *Server) handleRedact(w http.ResponseWriter, r *http.Request) {
	if !isJSON(r) {
		respondError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "content type must be application/json")
		return
	}
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	var req redactRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_json", "request body is not valid JSON")
		return
	}
	if req.Text == nil {
		respondError(w, http.StatusBadRequest, "missing_text", "text is required")
		return
	}

	policy := s.cfg.Policy()
	if req.KeepExtensionURLs != nil {
		policy.KeepExtensionURLs = *req.KeepExtensionURLs
	}

	out, matches := policy.RedactMatches(*req.Text)
	s.observe(redact.CountByScheme(matches))
	respondJSON(w, http.StatusOK, redactResponse{Text: out, URLs: len(matches)})
}

func (s *Server) handleRedactJSON(w http.ResponseWriter, r *http.Request) {
	if !isJSON(r) {
		respondError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "content type must be application/json")
		return
	}
	policy := s.cfg.Policy()
	if v := r.URL.Query().Get("keepExtensionUrls"); v != "" {
		keep, err := strconv.ParseBool(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_query", "keepExtensionUrls must be a boolean")
			return
		}
		policy.KeepExtensionURLs = keep
	}

	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	out, counts, err := jsonscrub.Redact(body, policy)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	s.observe(counts)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// readBody reads the request body up to the configured limit. On failure it
// writes the error response and returns false.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxInputBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "too_large", "request body exceeds the size limit")
			return nil, false
		}
		respondError(w, http.StatusBadRequest, "read_error", "cannot read request body")
		return nil, false
	}
	s.metrics.InputBytes.Observe(float64(len(body)))
	return body, true
}

func (s *Server) observe(counts map[string]int) {
	for scheme, n := range counts {
		s.metrics.ObserveURLs(scheme, n)
	}
}

// isJSON accepts a missing Content-Type or any application/json variant.
func isJSON(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return true
	}
	mt, _, err := mime.ParseMediaType(ct)
	return err == nil && mt == "application/json"
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
