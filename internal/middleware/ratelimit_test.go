// AngelaMos | 2026
// ratelimit_test.go

package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEndpoint(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"/v1/auth/login", "/v1/auth/login"},
		{"/v1/auth/login/", "/v1/auth/login"},
		{"/v1/users/42", "/v1/users/{id}"},
		{"/v1/users/550e8400-e29b-41d4-a716-446655440000", "/v1/users/{id}"},
		{"/", "/"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, normalizeEndpoint(tc.path), "path %s", tc.path)
	}
}

func TestKeyByIP(t *testing.T) {
	t.Run("remote addr", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/v1/auth/login", nil)
		r.RemoteAddr = "203.0.113.9:54321"
		assert.Equal(t, "ratelimit:ip:203.0.113.9", KeyByIP(r))
	})

	t.Run("x-forwarded-for uses last hop", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/v1/auth/login", nil)
		r.Header.Set("X-Forwarded-For", "198.51.100.1, 203.0.113.9")
		assert.Equal(t, "ratelimit:ip:203.0.113.9", KeyByIP(r))
	})
}

func TestKeyByUser(t *testing.T) {
	t.Run("authenticated requests key on the user", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/v1/users/me", nil)
		ctx := withPrincipal(r.Context(), &Principal{
			UserID: "user-1",
			Role:   "basic",
		})
		assert.Equal(t, "ratelimit:user:user-1", KeyByUser(r.WithContext(ctx)))
	})

	t.Run("anonymous requests fall back to IP", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/v1/users/me", nil)
		r.RemoteAddr = "203.0.113.9:54321"
		assert.Equal(t, "ratelimit:ip:203.0.113.9", KeyByUser(r))
	})
}

func TestResolveRoleLimit(t *testing.T) {
	cases := []struct {
		role     string
		wantRole string
		wantRPM  int
	}{
		{"basic", "basic", 60},
		{"premium", "premium", 600},
		{"moderator", "moderator", 600},
		{"admin", "admin", 6000},
		{"", "basic", 60},
		{"no-such-role", "basic", 60},
	}

	for _, tc := range cases {
		limit, role := resolveRoleLimit(DefaultRoleLimits, tc.role)
		assert.Equal(t, tc.wantRole, role, "role %q", tc.role)
		assert.Equal(t, tc.wantRPM, limit.RequestsPerMinute, "role %q", tc.role)
	}
}

func TestCredentialLimiterKeySeparatesEndpoints(t *testing.T) {
	rl := NewCredentialRateLimiter(nil, 10)

	login := httptest.NewRequest("POST", "/v1/auth/login", nil)
	login.RemoteAddr = "203.0.113.9:54321"

	signup := httptest.NewRequest("POST", "/v1/auth/signup", nil)
	signup.RemoteAddr = "203.0.113.9:54321"

	assert.NotEqual(t,
		rl.config.KeyFunc(login),
		rl.config.KeyFunc(signup),
	)
}
