package health

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type stubChecker struct {
	err error
}

func (s stubChecker) HealthCheck(ctx context.Context) error {
	return s.err
}

func newHandler() *Handler {
	return NewHandler(time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHandlerNoChecks(t *testing.T) {
	h := newHandler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("status = %q, want healthy", resp.Status)
	}
}

func TestHandlerAllHealthy(t *testing.T) {
	h := newHandler()
	h.Register("database", stubChecker{})
	h.Register("redis", stubChecker{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Checks["database"] != "ok" || resp.Checks["redis"] != "ok" {
		t.Errorf("checks = %v, want all ok", resp.Checks)
	}
}

func TestHandlerUnhealthyDependency(t *testing.T) {
	h := newHandler()
	h.Register("database", stubChecker{})
	h.Register("redis", stubChecker{err: errors.New("connection refused")})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}

	var resp healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "unhealthy" {
		t.Errorf("status = %q, want unhealthy", resp.Status)
	}
	if resp.Checks["database"] != "ok" {
		t.Errorf("database = %q, want ok", resp.Checks["database"])
	}
	if resp.Checks["redis"] != "connection refused" {
		t.Errorf("redis = %q, want the failure message", resp.Checks["redis"])
	}
}
