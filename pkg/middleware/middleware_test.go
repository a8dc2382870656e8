package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/pkg/auth"
)

func identityEcho(t *testing.T, got *auth.Identity) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticateAnonymous(t *testing.T) {
	var id auth.Identity
	rec := httptest.NewRecorder()
	Authenticate(identityEcho(t, &id)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, id.Authenticated())
}

func TestAuthenticateBearer(t *testing.T) {
	token, _, err := auth.GenerateToken(42, true)
	require.NoError(t, err)

	var id auth.Identity
	req := httptest.NewRequest(http.MethodGet, "/carts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	Authenticate(identityEcho(t, &id)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, auth.Identity{UserID: 42, IsStaff: true}, id)
}

func TestAuthenticateQueryToken(t *testing.T) {
	token, _, err := auth.GenerateToken(5, false)
	require.NoError(t, err)

	var id auth.Identity
	rec := httptest.NewRecorder()
	Authenticate(identityEcho(t, &id)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws/orders?token="+token, nil))
	assert.Equal(t, uint(5), id.UserID)
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	var id auth.Identity
	req := httptest.NewRequest(http.MethodGet, "/carts", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	Authenticate(identityEcho(t, &id)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid token.")
}

func TestRequireAuth(t *testing.T) {
	h := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{UserID: 1}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRecovery(t *testing.T) {
	h := Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"status":500,"message":"A server error occurred."}`, rec.Body.String())
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/tags", nil)
		req.RemoteAddr = "10.0.0.9:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	other := httptest.NewRequest(http.MethodGet, "/tags", nil)
	other.RemoteAddr = "10.0.0.10:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitDisabled(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {})
	h := RateLimit(0, time.Minute)(next)
	assert.NotNil(t, h)
}

func TestRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	h := RealIP(nil)(RateLimit(2, time.Minute)(ok))

	codes := make([]int, 0, 3)
	for _, fwd := range []string{"1.1.1.1", "2.2.2.2", "3.3.3.3"} {
		req := httptest.NewRequest(http.MethodGet, "/tags", nil)
		req.RemoteAddr = "10.0.0.9:5555"
		req.Header.Set("X-Forwarded-For", fwd)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)
}

func TestParseProxies(t *testing.T) {
	p, err := ParseProxies([]string{"10.0.0.0/8", " 192.168.1.5 ", "", "::1"})
	require.NoError(t, err)
	require.Len(t, p, 3)
	assert.Equal(t, "192.168.1.5/32", p[1].String())
	assert.Equal(t, "::1/128", p[2].String())

	p, err = ParseProxies([]string{"proxy.local", "10.1.2.3"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "proxy.local")
	assert.Len(t, p, 1)
}

func TestRealIP(t *testing.T) {
	proxies, err := ParseProxies([]string{"10.0.0.0/8"})
	require.NoError(t, err)

	var seen string
	h := RealIP(proxies)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) { seen = r.RemoteAddr }))

	cases := []struct {
		name, peer, fwd, real, want string
	}{
		{"untrusted peer keeps socket address", "203.0.113.7:4000", "1.2.3.4", "", "203.0.113.7:4000"},
		{"trusted peer forwards client", "10.0.0.2:4000", "198.51.100.9", "", "198.51.100.9:4000"},
		{"rightmost untrusted hop wins", "10.0.0.2:4000", "6.6.6.6, 198.51.100.9, 10.0.0.3", "", "198.51.100.9:4000"},
		{"all hops trusted takes the first", "10.0.0.2:4000", "10.0.0.8, 10.0.0.3", "", "10.0.0.8:4000"},
		{"garbage hop is ignored", "10.0.0.2:4000", "not-an-ip", "", "10.0.0.2:4000"},
		{"x-real-ip from trusted peer", "10.0.0.2:4000", "", "198.51.100.1", "198.51.100.1:4000"},
		{"no headers", "10.0.0.2:4000", "", "", "10.0.0.2:4000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.peer
			if tc.fwd != "" {
				req.Header.Set("X-Forwarded-For", tc.fwd)
			}
			if tc.real != "" {
				req.Header.Set("X-Real-Ip", tc.real)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			assert.Equal(t, tc.want, seen)
		})
	}
}

func TestRateLimitBehindTrustedProxy(t *testing.T) {
	proxies, err := ParseProxies([]string{"10.0.0.1"})
	require.NoError(t, err)
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	h := RealIP(proxies)(RateLimit(1, time.Minute)(ok))

	codes := make([]int, 0, 3)
	for _, fwd := range []string{"198.51.100.1", "198.51.100.2", "198.51.100.1"} {
		req := httptest.NewRequest(http.MethodGet, "/tags", nil)
		req.RemoteAddr = "10.0.0.1:443"
		req.Header.Set("X-Forwarded-For", fwd)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)
}

func TestCORSPreflight(t *testing.T) {
	h := CORS(DefaultCORSOptions())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) }))

	req := httptest.NewRequest(http.MethodOptions, "/products", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
