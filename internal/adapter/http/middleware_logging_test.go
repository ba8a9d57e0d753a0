package adapthttp

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"planner/internal/logging"
)

func TestLoggingMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s := &Server{log: logging.FromZap(zap.New(core))}
	// Create a dummy handler
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("OK"))
	})

	// Wrap it
	handler := s.loggingMiddleware(nextHandler)

	req := httptest.NewRequest("GET", "/test-path", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	// Check response
	if w.Code != http.StatusTeapot {
		t.Errorf("Expected status %d, got %d", http.StatusTeapot, w.Code)
	}

	// Check log
	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["method"] != "GET" || fields["path"] != "/test-path" || fields["status"] != int64(http.StatusTeapot) {
		t.Errorf("Log entry missing expected fields. Got: %v", fields)
	}
}

func TestStatusFor(t *testing.T) {
	s := &Server{log: logging.Nop()}
	w := httptest.NewRecorder()
	s.fail(w, httptest.NewRequest("GET", "/", nil), http.ErrHandlerTimeout)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
	if body := w.Body.String(); body != "{\"error\":\"internal error\"}\n" {
		t.Errorf("expected internal details to be withheld, got %s", body)
	}
}
