// AngelaMos | 2026
// session.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/BuildAppolis/Nexus-Forge/internal/config"
	"github.com/BuildAppolis/Nexus-Forge/internal/core"
	"github.com/BuildAppolis/Nexus-Forge/internal/middleware"
)

// SessionManager owns the session lifecycle and the cookie contract:
// name "session", HttpOnly, SameSite=Lax, Secure in production, no
// client-side expiry. The 30-day lifetime lives server-side only.
type SessionManager struct {
	repo  Repository
	users UserProvider
	cfg   config.SessionConfig
}

func NewSessionManager(
	repo Repository,
	users UserProvider,
	cfg config.SessionConfig,
) *SessionManager {
	if cfg.CookieName == "" {
		cfg.CookieName = "session"
	}
	if cfg.Lifetime <= 0 {
		cfg.Lifetime = SessionLifetime
	}
	return &SessionManager{repo: repo, users: users, cfg: cfg}
}

func (m *SessionManager) CookieName() string {
	return m.cfg.CookieName
}

func (m *SessionManager) Create(
	ctx context.Context,
	userID string,
) (*Session, error) {
	id, err := core.GenerateSessionID()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}

	session := &Session{
		ID:        id,
		UserID:    userID,
		ExpiresAt: time.Now().Add(m.cfg.Lifetime),
	}

	if err := m.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// Invalidate deletes the session record. Absent sessions are not an
// error: logout must succeed even when the session already lapsed.
func (m *SessionManager) Invalidate(ctx context.Context, sessionID string) error {
	return m.repo.DeleteSession(ctx, sessionID)
}

// InvalidateAll forces re-authentication everywhere. Used after
// password resets and email verification.
func (m *SessionManager) InvalidateAll(ctx context.Context, userID string) error {
	return m.repo.DeleteUserSessions(ctx, userID)
}

func (m *SessionManager) PurgeExpired(ctx context.Context) (int64, error) {
	return m.repo.DeleteExpiredSessions(ctx)
}

func (m *SessionManager) Cookie(session *Session) *http.Cookie {
	return &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    session.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (m *SessionManager) BlankCookie() *http.Cookie {
	return &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Validate implements middleware.SessionValidator. Expired sessions
// are evicted on sight; sessions past half their lifetime are extended
// and the refreshed cookie is handed back for re-issuance.
func (m *SessionManager) Validate(
	ctx context.Context,
	sessionID string,
) (*middleware.Principal, error) {
	session, err := m.repo.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.SessionInvalidError()
		}
		return nil, err
	}

	if session.IsExpired() {
		//nolint:errcheck // eviction is best-effort; the deny stands either way
		_ = m.repo.DeleteSession(ctx, session.ID)
		return nil, core.SessionExpiredError()
	}

	user, err := m.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // orphaned session, same best-effort eviction
			_ = m.repo.DeleteSession(ctx, session.ID)
			return nil, core.SessionInvalidError()
		}
		return nil, err
	}

	principal := &middleware.Principal{
		UserID:        user.ID,
		Email:         user.Email,
		EmailVerified: user.EmailVerified,
		Role:          user.Role,
		SessionID:     session.ID,
	}

	if session.NeedsRenewal(m.cfg.Lifetime) {
		session.ExpiresAt = time.Now().Add(m.cfg.Lifetime)
		if err := m.repo.ExtendSession(ctx, session.ID, session.ExpiresAt); err == nil {
			principal.RefreshCookie = m.Cookie(session)
		}
	}

	return principal, nil
}
