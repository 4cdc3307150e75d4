package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
)

func TestRecoveryMiddleware(t *testing.T) {
	logger, hook := test.NewNullLogger()

	h := RequestIDMiddleware(RecoveryMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("handler bug")
	})))

	req := httptest.NewRequest(http.MethodGet, "/todos/", nil)
	req.Header.Set("X-Request-ID", "req-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != `{"detail":"Internal Server Error"}` {
		t.Fatalf("unexpected body: %s", body)
	}
	entry := hook.LastEntry()
	if entry == nil || entry.Message != "Panic recovered" || entry.Data["request_id"] != "req-1" {
		t.Fatalf("unexpected log entry: %+v", entry)
	}
	if entry.Data["error"] != "handler bug" {
		t.Fatalf("unexpected logged error: %v", entry.Data["error"])
	}
}

func TestResponseWriterKeepsFirstStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)
	if rw.statusCode != http.StatusOK {
		t.Fatalf("default status = %d", rw.statusCode)
	}
	rw.WriteHeader(http.StatusUnprocessableEntity)
	rw.WriteHeader(http.StatusInternalServerError)
	if rw.statusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rw.statusCode)
	}
}
