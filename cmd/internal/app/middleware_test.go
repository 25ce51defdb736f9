package app

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequestLogMeta(t *testing.T) {
	cases := []struct {
		status     int
		wantLevel  slog.Level
		wantResult string
	}{
		{200, slog.LevelInfo, "success"},
		{204, slog.LevelInfo, "success"},
		{301, slog.LevelInfo, "redirect"},
		{400, slog.LevelWarn, "client_error"},
		{404, slog.LevelWarn, "client_error"},
		{500, slog.LevelError, "server_error"},
		{503, slog.LevelError, "server_error"},
	}

	for _, tc := range cases {
		level, result := requestLogMeta(tc.status)
		if level != tc.wantLevel || result != tc.wantResult {
			t.Errorf("requestLogMeta(%d) = (%v, %q), want (%v, %q)",
				tc.status, level, result, tc.wantLevel, tc.wantResult)
		}
	}
}

func TestWithRequestLogging(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	})

	h := WithRequestLogging(inner, log)

	req := httptest.NewRequest(http.MethodGet, "/teapot", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get(RequestIDHeader); len(got) != 26 {
		t.Fatalf("%s = %q, want a 26-char ULID", RequestIDHeader, got)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decoding log line %q: %v", buf.String(), err)
	}
	if entry["msg"] != "http.request" {
		t.Fatalf("msg = %v", entry["msg"])
	}
	if entry["method"] != "GET" || entry["path"] != "/teapot" {
		t.Fatalf("entry = %v", entry)
	}
	if entry["status"] != float64(http.StatusTeapot) {
		t.Fatalf("status = %v", entry["status"])
	}
	if entry["result"] != "client_error" {
		t.Fatalf("result = %v", entry["result"])
	}
	if entry["bytes"] != float64(len("short and stout")) {
		t.Fatalf("bytes = %v", entry["bytes"])
	}
}

func TestLoggingResponseWriterDefaultsTo200(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	h := WithRequestLogging(inner, log)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decoding log line: %v", err)
	}
	if entry["status"] != float64(http.StatusOK) {
		t.Fatalf("status = %v, want implicit 200", entry["status"])
	}
}

func TestWithMetricsNilPassthrough(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	h := WithMetrics(inner, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
}
