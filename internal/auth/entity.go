// AngelaMos | 2026
// entity.go

package auth

import (
	"time"
)

const (
	SessionLifetime          = 30 * 24 * time.Hour
	VerificationCodeLifetime = 10 * time.Minute
	VerificationCodeLength   = 8
	ResetTokenLifetime       = 2 * time.Hour
)

// Session authorizes the bearer of its identifier to act as the owning
// user until expiry or invalidation. Invalidation deletes the row.
type Session struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// NeedsRenewal reports whether less than half of the given lifetime
// remains. Validated sessions past that point are extended.
func (s *Session) NeedsRenewal(lifetime time.Duration) bool {
	return time.Until(s.ExpiresAt) < lifetime/2
}

// EmailVerificationCode is a single-use numeric credential proving
// control of an email address. At most one exists per user; issuing a
// new one replaces it, and any verification attempt consumes it.
type EmailVerificationCode struct {
	ID        int64     `db:"id"`
	UserID    string    `db:"user_id"`
	Email     string    `db:"email"`
	Code      string    `db:"code"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

func (c *EmailVerificationCode) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

// PasswordResetToken's identifier is the token itself. Consumed on
// first lookup regardless of whether the reset succeeds.
type PasswordResetToken struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

func (t *PasswordResetToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}
