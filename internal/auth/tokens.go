// AngelaMos | 2026
// tokens.go

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/BuildAppolis/Nexus-Forge/internal/core"
)

// TokenIssuer mints email verification codes and password reset
// tokens. Both operations are invalidate-then-create: at most one
// artifact per user per kind is outstanding at any time, so a stale
// code can never validate after a newer one was requested.
type TokenIssuer struct {
	repo Repository
}

func NewTokenIssuer(repo Repository) *TokenIssuer {
	return &TokenIssuer{repo: repo}
}

func (t *TokenIssuer) IssueVerificationCode(
	ctx context.Context,
	userID, email string,
) (string, error) {
	code, err := core.GenerateNumericCode(VerificationCodeLength)
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}

	record := &EmailVerificationCode{
		UserID:    userID,
		Email:     email,
		Code:      code,
		ExpiresAt: time.Now().Add(VerificationCodeLifetime),
	}

	if err := t.repo.ReplaceVerificationCode(ctx, record); err != nil {
		return "", err
	}

	return code, nil
}

func (t *TokenIssuer) IssueResetToken(
	ctx context.Context,
	userID string,
) (string, error) {
	token, err := core.GenerateResetToken()
	if err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}

	record := &PasswordResetToken{
		ID:        token,
		UserID:    userID,
		ExpiresAt: time.Now().Add(ResetTokenLifetime),
	}

	if err := t.repo.ReplaceResetToken(ctx, record); err != nil {
		return "", err
	}

	return token, nil
}
