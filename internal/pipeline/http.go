// internal/pipeline/http.go
package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wenwen-recommender/internal/common/errors"
	"wenwen-recommender/internal/common/logger"
	buildresponse "wenwen-recommender/internal/workers/infrastructure/build-response"
)

const (
	maxBodyBytes = 64 << 10
	pingTimeout  = 2 * time.Second
)

// Handler exposes the Service over HTTP.
type Handler struct {
	service *Service
	pingers map[string]Pinger
	errors  *errors.ErrorHandler
	logger  logger.Logger
	timeout time.Duration
	started time.Time
	version string
}

func NewHandler(service *Service, pingers map[string]Pinger, version string, log logger.Logger) *Handler {
	return &Handler{
		service: service,
		pingers: pingers,
		errors:  errors.NewErrorHandler(log),
		logger:  log.WithFields(map[string]interface{}{"component": "http"}),
		timeout: service.config.RequestTimeout,
		started: time.Now(),
		version: version,
	}
}

// Routes registers every endpoint on a new mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", h.chat)
	mux.HandleFunc("GET /api/sessions/{id}/metrics", h.sessionMetrics)
	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("GET /ready", h.ready)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

func (h *Handler) chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	var raw map[string]interface{}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&raw); err != nil {
		h.errors.HandleHTTPError(w, r, errors.NewInvalidRequestError("malformed JSON body: "+err.Error()))
		return
	}
	if result := chatRequest.Validate(raw); !result.Valid {
		h.errors.HandleHTTPError(w, r, errors.NewInvalidRequestError(result.Summary()))
		return
	}
	req := Request{UserMeta: map[string]interface{}{}}
	req.SessionID, _ = raw["sessionId"].(string)
	req.UserMessage, _ = raw["userMessage"].(string)
	if meta, ok := raw["userMeta"].(map[string]interface{}); ok {
		req.UserMeta = meta
	}

	resp, err := h.service.Handle(ctx, req)
	if err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}

	status := http.StatusOK
	if resp.Status == buildresponse.StatusError {
		status = errors.HTTPStatus(errors.ErrorCode(resp.ErrorCode))
	}
	writeJSON(w, status, resp)
}

func (h *Handler) sessionMetrics(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.errors.HandleHTTPError(w, r, errors.NewInvalidRequestError("session id is required"))
		return
	}
	writeJSON(w, http.StatusOK, h.service.Metrics(id))
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"version": h.version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
		"time":    time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	names := make([]string, 0, len(h.pingers))
	for name := range h.pingers {
		names = append(names, name)
	}
	sort.Strings(names)

	checks := make(map[string]string, len(names))
	status := http.StatusOK
	for _, name := range names {
		if err := h.pingers[name].Ping(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			h.logger.Warn("readiness check failed", map[string]interface{}{
				"dependency": name,
				"error":      err.Error(),
			})
			continue
		}
		checks[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}
	writeJSON(w, status, map[string]interface{}{
		"status": state,
		"checks": checks,
		"time":   time.Now().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
