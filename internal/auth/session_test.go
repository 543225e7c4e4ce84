// AngelaMos | 2026
// session_test.go

package auth

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuildAppolis/Nexus-Forge/internal/config"
	"github.com/BuildAppolis/Nexus-Forge/internal/core"
)

func TestSessionManagerValidate(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	user := addUser(t, env, "alice@example.com", "correct-password", true)

	session, err := env.sessions.Create(ctx, user.ID)
	require.NoError(t, err)

	principal, err := env.sessions.Validate(ctx, session.ID)
	require.NoError(t, err)

	assert.Equal(t, user.ID, principal.UserID)
	assert.Equal(t, user.Email, principal.Email)
	assert.True(t, principal.EmailVerified)
	assert.Equal(t, session.ID, principal.SessionID)
	assert.Nil(t, principal.RefreshCookie)
}

func TestSessionManagerValidateUnknown(t *testing.T) {
	env := newTestEnv()

	_, err := env.sessions.Validate(context.Background(), "no-such-session")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrSessionInvalid)
}

func TestSessionManagerValidateExpired(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	user := addUser(t, env, "alice@example.com", "correct-password", true)

	expired := &Session{
		ID:        "expired-session",
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, env.repo.CreateSession(ctx, expired))

	_, err := env.sessions.Validate(ctx, expired.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrSessionExpired)

	// Evicted on sight.
	_, err = env.repo.GetSession(ctx, expired.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSessionManagerValidateOrphaned(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	orphan := &Session{
		ID:        "orphaned-session",
		UserID:    "deleted-user",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, env.repo.CreateSession(ctx, orphan))

	_, err := env.sessions.Validate(ctx, orphan.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrSessionInvalid)

	_, err = env.repo.GetSession(ctx, orphan.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSessionManagerSlidingRenewal(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	user := addUser(t, env, "alice@example.com", "correct-password", true)

	// Past the halfway mark: under 15 of 30 days remaining.
	aging := &Session{
		ID:        "aging-session",
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(10 * 24 * time.Hour),
	}
	require.NoError(t, env.repo.CreateSession(ctx, aging))

	principal, err := env.sessions.Validate(ctx, aging.ID)
	require.NoError(t, err)

	require.NotNil(t, principal.RefreshCookie)
	assert.Equal(t, aging.ID, principal.RefreshCookie.Value)

	extended, err := env.repo.GetSession(ctx, aging.ID)
	require.NoError(t, err)
	assert.Greater(t,
		time.Until(extended.ExpiresAt),
		SessionLifetime-time.Minute,
	)
}

func TestSessionManagerRenewalUsesConfiguredLifetime(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	user := addUser(t, env, "alice@example.com", "correct-password", true)

	short := NewSessionManager(env.repo, env.users, config.SessionConfig{
		Lifetime: time.Hour,
	})

	// More than half of the one-hour lifetime remains: no renewal.
	fresh := &Session{
		ID:        "fresh-short-session",
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(40 * time.Minute),
	}
	require.NoError(t, env.repo.CreateSession(ctx, fresh))

	principal, err := short.Validate(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Nil(t, principal.RefreshCookie)

	// Under the halfway mark the session is extended by the configured
	// hour, not the 30-day default.
	aging := &Session{
		ID:        "aging-short-session",
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(20 * time.Minute),
	}
	require.NoError(t, env.repo.CreateSession(ctx, aging))

	principal, err = short.Validate(ctx, aging.ID)
	require.NoError(t, err)
	require.NotNil(t, principal.RefreshCookie)

	extended, err := env.repo.GetSession(ctx, aging.ID)
	require.NoError(t, err)
	assert.Greater(t, time.Until(extended.ExpiresAt), 59*time.Minute)
	assert.Less(t, time.Until(extended.ExpiresAt), 61*time.Minute)
}

func TestSessionManagerFreshSessionNotRenewed(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	user := addUser(t, env, "alice@example.com", "correct-password", true)

	session, err := env.sessions.Create(ctx, user.ID)
	require.NoError(t, err)

	before, err := env.repo.GetSession(ctx, session.ID)
	require.NoError(t, err)

	principal, err := env.sessions.Validate(ctx, session.ID)
	require.NoError(t, err)
	assert.Nil(t, principal.RefreshCookie)

	after, err := env.repo.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, before.ExpiresAt, after.ExpiresAt)
}

func TestSessionCookie(t *testing.T) {
	env := newTestEnv()
	session := &Session{ID: "cookie-session"}

	cookie := env.sessions.Cookie(session)
	assert.Equal(t, "session", cookie.Name)
	assert.Equal(t, session.ID, cookie.Value)
	assert.Equal(t, "/", cookie.Path)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	// No client-side expiry; lifetime is enforced server-side.
	assert.Zero(t, cookie.MaxAge)
	assert.True(t, cookie.Expires.IsZero())
}

func TestBlankCookie(t *testing.T) {
	env := newTestEnv()

	cookie := env.sessions.BlankCookie()
	assert.Equal(t, "session", cookie.Name)
	assert.Empty(t, cookie.Value)
	assert.Equal(t, -1, cookie.MaxAge)
}

func TestPurgeExpired(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	user := addUser(t, env, "alice@example.com", "correct-password", true)

	live, err := env.sessions.Create(ctx, user.ID)
	require.NoError(t, err)

	expired := &Session{
		ID:        "stale-session",
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, env.repo.CreateSession(ctx, expired))

	purged, err := env.sessions.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	_, err = env.repo.GetSession(ctx, live.ID)
	assert.NoError(t, err)
}
