package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"bastion-hq/gateway/pkg/config"
)

func TestCORSMiddleware(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name        string
		cfg         config.CORSConfig
		method      string
		origin      string
		preflight   bool
		wantCode    int
		wantOrigin  string
		wantMethods string
		wantMaxAge  string
	}{
		{
			name:       "allowed origin echoed",
			cfg:        config.CORSConfig{Enabled: true, AllowedOrigins: []string{"https://example.com"}},
			method:     http.MethodGet,
			origin:     "https://example.com",
			wantCode:   http.StatusOK,
			wantOrigin: "https://example.com",
		},
		{
			name:       "wildcard",
			cfg:        config.CORSConfig{Enabled: true, AllowedOrigins: []string{"*"}},
			method:     http.MethodGet,
			origin:     "https://any-origin.com",
			wantCode:   http.StatusOK,
			wantOrigin: "*",
		},
		{
			name:     "disallowed origin",
			cfg:      config.CORSConfig{Enabled: true, AllowedOrigins: []string{"https://example.com"}},
			method:   http.MethodGet,
			origin:   "https://evil.com",
			wantCode: http.StatusOK,
		},
		{
			name:     "disabled",
			cfg:      config.CORSConfig{Enabled: false, AllowedOrigins: []string{"*"}},
			method:   http.MethodGet,
			origin:   "https://example.com",
			wantCode: http.StatusOK,
		},
		{
			name: "preflight",
			cfg: config.CORSConfig{
				Enabled:        true,
				AllowedOrigins: []string{"*"},
				AllowedMethods: []string{"GET", "POST"},
				AllowedHeaders: []string{"Content-Type"},
				MaxAge:         3600,
			},
			method:      http.MethodOptions,
			origin:      "https://example.com",
			preflight:   true,
			wantCode:    http.StatusNoContent,
			wantOrigin:  "*",
			wantMethods: "GET, POST",
			wantMaxAge:  "3600",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/test", nil)
			req.Header.Set("Origin", tt.origin)
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			w := httptest.NewRecorder()

			CORSMiddleware(tt.cfg)(okHandler).ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", w.Code, tt.wantCode)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
			if got := w.Header().Get("Access-Control-Allow-Methods"); got != tt.wantMethods {
				t.Errorf("Allow-Methods = %q, want %q", got, tt.wantMethods)
			}
			if got := w.Header().Get("Access-Control-Max-Age"); got != tt.wantMaxAge {
				t.Errorf("Max-Age = %q, want %q", got, tt.wantMaxAge)
			}
		})
	}
}
