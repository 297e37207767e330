package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientIP(t *testing.T) {
	resolver := DefaultIPResolver()

	tests := []struct {
		name    string
		remote  string
		headers map[string]string
		want    string
	}{
		{name: "direct", remote: "203.0.113.5:4000", want: "203.0.113.5"},
		{
			name:    "untrusted peer ignores forwarded",
			remote:  "203.0.113.5:4000",
			headers: map[string]string{"X-Forwarded-For": "1.2.3.4"},
			want:    "203.0.113.5",
		},
		{
			name:    "trusted peer uses first forwarded",
			remote:  "10.1.2.3:80",
			headers: map[string]string{"X-Forwarded-For": "198.51.100.7, 10.1.2.3"},
			want:    "198.51.100.7",
		},
		{
			name:    "trusted peer falls back to real ip",
			remote:  "127.0.0.1:80",
			headers: map[string]string{"X-Forwarded-For": "garbage", "X-Real-IP": "198.51.100.8"},
			want:    "198.51.100.8",
		},
		{
			name:    "trusted peer without valid headers",
			remote:  "192.168.1.1:80",
			headers: map[string]string{"X-Real-IP": "nope"},
			want:    "192.168.1.1",
		},
		{name: "unparsable remote", remote: "pipe", want: "pipe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, resolver.ClientIP(req))
		})
	}
}

func TestNewIPResolverRejectsBadCIDR(t *testing.T) {
	_, err := NewIPResolver("10.0.0.0/8", "not-a-cidr")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid CIDR not-a-cidr")
}

func TestHeaders(t *testing.T) {
	h := Headers(APIHeadersConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
	assert.Contains(t, rr.Header().Get("Content-Security-Policy"), "default-src 'none'")
	assert.Empty(t, rr.Header().Get("Strict-Transport-Security"), "no HSTS over plain HTTP")

	req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	req.TLS = &tls.ConnectionState{}
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "max-age=31536000; includeSubDomains", rr.Header().Get("Strict-Transport-Security"))
}

func TestHeadersSkipsEmptyValues(t *testing.T) {
	cfg := APIHeadersConfig()
	cfg.CacheControl = ""
	h := Headers(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	_, present := rr.Header()["Cache-Control"]
	assert.False(t, present)
}
