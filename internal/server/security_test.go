package server

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestDefaultSecurityConfig(t *testing.T) {
	t.Parallel()
	config := DefaultSecurityConfig()
	if !config.EnableCORS {
		t.Error("EnableCORS should be true by default")
	}
	if !reflect.DeepEqual(config.AllowedOrigins, []string{"*"}) {
		t.Errorf("AllowedOrigins = %v, want [*]", config.AllowedOrigins)
	}
	if !reflect.DeepEqual(config.AllowedMethods, []string{"GET", "OPTIONS"}) {
		t.Errorf("AllowedMethods = %v, want [GET OPTIONS]", config.AllowedMethods)
	}
}

func TestSecurityMiddleware_SecurityHeaders(t *testing.T) {
	t.Parallel()
	for _, method := range []string{"GET", "POST", "PUT", "DELETE"} {
		t.Run(method, func(t *testing.T) {
			t.Parallel()
			nextCalled := false
			handler := SecurityMiddleware(DefaultSecurityConfig(), func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
			})
			rec := httptest.NewRecorder()
			handler(rec, httptest.NewRequest(method, "/metrics", http.NoBody))

			headers := map[string]string{
				"X-Content-Type-Options":  "nosniff",
				"X-Frame-Options":         "DENY",
				"X-XSS-Protection":        "1; mode=block",
				"Referrer-Policy":         "strict-origin-when-cross-origin",
				"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
			}
			for header, want := range headers {
				if got := rec.Header().Get(header); got != want {
					t.Errorf("%s = %q, want %q", header, got, want)
				}
			}
			if !nextCalled {
				t.Error("next handler was not called")
			}
		})
	}
}

func TestSecurityMiddleware_CORS(t *testing.T) {
	t.Parallel()
	specific := SecurityConfig{
		EnableCORS:     true,
		AllowedOrigins: []string{"http://first.example", "http://second.example"},
		AllowedMethods: []string{"GET"},
	}
	tests := []struct {
		name       string
		config     SecurityConfig
		origin     string
		wantOrigin string
	}{
		{"disabled", SecurityConfig{}, "http://first.example", ""},
		{"wildcard", DefaultSecurityConfig(), "http://any.example", "*"},
		{"wildcard without origin", DefaultSecurityConfig(), "", "*"},
		{"first match", specific, "http://first.example", "http://first.example"},
		{"second match", specific, "http://second.example", "http://second.example"},
		{"disallowed", specific, "http://other.example", ""},
		{"specific without origin", specific, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			handler := SecurityMiddleware(tt.config, func(http.ResponseWriter, *http.Request) {})
			req := httptest.NewRequest("GET", "/metrics", http.NoBody)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			handler(rec, req)

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
			if tt.wantOrigin != "" && rec.Header().Get("Access-Control-Max-Age") == "" {
				t.Error("Access-Control-Max-Age should be set")
			}
		})
	}
}

func TestSecurityMiddleware_Preflight(t *testing.T) {
	t.Parallel()
	nextCalled := false
	handler := SecurityMiddleware(DefaultSecurityConfig(), func(http.ResponseWriter, *http.Request) {
		nextCalled = true
	})
	req := httptest.NewRequest("OPTIONS", "/metrics", http.NoBody)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if nextCalled {
		t.Error("next handler should not be called for OPTIONS")
	}
	if rec.Header().Get("Access-Control-Allow-Methods") != "GET, OPTIONS" {
		t.Errorf("Access-Control-Allow-Methods = %q", rec.Header().Get("Access-Control-Allow-Methods"))
	}
}
