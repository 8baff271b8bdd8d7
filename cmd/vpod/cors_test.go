package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// The player shell is served from its own origin, so every backend response
// must carry the allow-origin header, not just the happy path.
func TestWithCORSDecoratesEveryResponse(t *testing.T) {
	tests := []struct {
		name   string
		target string
		status int
	}{
		{"version endpoint", "/api/v1/version", http.StatusOK},
		{"missing cover", "/cover?folder=unknown", http.StatusNotFound},
		{"unmapped path", "/nope", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := withCORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
				t.Errorf("allow-origin on %d response = %q, want *", tt.status, got)
			}
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestWithCORSAnswersPreflightItself(t *testing.T) {
	handler := withCORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("preflight request reached the wrapped handler")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/socket.io/", nil))

	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, OPTIONS" {
		t.Errorf("allow-methods = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type" {
		t.Errorf("allow-headers = %q", got)
	}
}

func TestWithCORSLeavesPayloadAlone(t *testing.T) {
	const body = `{"name":"vPod","version":"0.1.0"}`
	handler := withCORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/version", nil))

	if got := rec.Body.String(); got != body {
		t.Errorf("body = %q, want it passed through untouched", got)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want the handler's own value", got)
	}
}
