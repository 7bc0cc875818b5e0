package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// Checker probes one external dependency.
type Checker interface {
	HealthCheck(ctx context.Context) error
}

// DefaultCheckTimeout bounds a single aggregate health probe.
const DefaultCheckTimeout = 3 * time.Second

// Handler serves the aggregate health endpoint. Registered dependencies
// are probed in order under a shared timeout; any failure turns the
// response unhealthy with a 503.
type Handler struct {
	timeout time.Duration
	logger  *slog.Logger
	checks  []namedChecker
}

type namedChecker struct {
	name    string
	checker Checker
}

// NewHandler creates a health handler.
func NewHandler(timeout time.Duration, logger *slog.Logger) *Handler {
	if timeout <= 0 {
		timeout = DefaultCheckTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		timeout: timeout,
		logger:  logger,
	}
}

// Register adds a named dependency check. Not safe to call after the
// handler starts serving.
func (h *Handler) Register(name string, c Checker) {
	h.checks = append(h.checks, namedChecker{name: name, checker: c})
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// ServeHTTP probes every registered dependency and reports per-check
// status. With no registered checks the service reports healthy.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp := healthResponse{Status: "healthy"}
	if len(h.checks) > 0 {
		resp.Checks = make(map[string]string, len(h.checks))
	}

	code := http.StatusOK
	for _, c := range h.checks {
		if err := c.checker.HealthCheck(ctx); err != nil {
			h.logger.Warn("health check failed", "check", c.name, "error", err)
			resp.Checks[c.name] = err.Error()
			resp.Status = "unhealthy"
			code = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[c.name] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to write health response", "error", err)
	}
}
