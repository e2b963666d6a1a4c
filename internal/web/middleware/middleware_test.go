package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JonMunkholm/useradmin/internal/config"
)

func TestTrustedRealIP(t *testing.T) {
	tests := []struct {
		name    string
		trusted []string
		remote  string
		headers map[string]string
		want    string
	}{
		{
			name:    "no proxies configured ignores headers",
			remote:  "203.0.113.9:5555",
			headers: map[string]string{"X-Real-IP": "1.2.3.4"},
			want:    "203.0.113.9",
		},
		{
			name:    "trusted proxy X-Real-IP",
			trusted: []string{"10.0.0.0/8"},
			remote:  "10.1.2.3:4000",
			headers: map[string]string{"X-Real-IP": "198.51.100.7"},
			want:    "198.51.100.7",
		},
		{
			name:    "trusted proxy X-Forwarded-For first hop",
			trusted: []string{"127.0.0.1"},
			remote:  "127.0.0.1:4000",
			headers: map[string]string{"X-Forwarded-For": "198.51.100.8, 10.0.0.1"},
			want:    "198.51.100.8",
		},
		{
			name:    "untrusted source keeps remote",
			trusted: []string{"10.0.0.0/8"},
			remote:  "192.0.2.1:4000",
			headers: map[string]string{"X-Real-IP": "198.51.100.7"},
			want:    "192.0.2.1",
		},
		{
			name:    "garbage header ignored",
			trusted: []string{"10.0.0.0/8"},
			remote:  "10.0.0.5:4000",
			headers: map[string]string{"X-Real-IP": "not-an-ip"},
			want:    "10.0.0.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := TrustedRealIP(tt.trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.RemoteAddr
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.want {
				t.Errorf("RemoteAddr = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAPIKeyAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	tests := []struct {
		name    string
		cfg     config.SecurityConfig
		headers map[string]string
		want    int
	}{
		{"disabled", config.SecurityConfig{}, nil, http.StatusNoContent},
		{"missing key", config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"k1"}}, nil, http.StatusUnauthorized},
		{"wrong key", config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"k1"}}, map[string]string{"X-API-Key": "nope"}, http.StatusForbidden},
		{"header key", config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"k1", "k2"}}, map[string]string{"X-API-Key": "k2"}, http.StatusNoContent},
		{"bearer token", config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"k1"}}, map[string]string{"Authorization": "Bearer k1"}, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			APIKeyAuth(tt.cfg)(ok).ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestLogger_RecordsStatus(t *testing.T) {
	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("hi"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want first WriteHeader to win", rec.Code)
	}
}
