// AngelaMos | 2026
// repository.go

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/BuildAppolis/Nexus-Forge/internal/core"
)

type Repository interface {
	CreateSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, id string) (*Session, error)
	ExtendSession(ctx context.Context, id string, expiresAt time.Time) error
	DeleteSession(ctx context.Context, id string) error
	DeleteUserSessions(ctx context.Context, userID string) error
	DeleteExpiredSessions(ctx context.Context) (int64, error)

	ReplaceVerificationCode(
		ctx context.Context,
		code *EmailVerificationCode,
	) error
	LatestVerificationCode(
		ctx context.Context,
		userID string,
	) (*EmailVerificationCode, error)
	ConsumeVerificationCode(
		ctx context.Context,
		userID string,
	) (*EmailVerificationCode, error)

	ReplaceResetToken(ctx context.Context, token *PasswordResetToken) error
	ConsumeResetToken(
		ctx context.Context,
		token string,
	) (*PasswordResetToken, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateSession(
	ctx context.Context,
	session *Session,
) error {
	query := `
		INSERT INTO sessions (id, user_id, expires_at)
		VALUES ($1, $2, $3)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &session.CreatedAt, query,
		session.ID,
		session.UserID,
		session.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

func (r *repository) GetSession(
	ctx context.Context,
	id string,
) (*Session, error) {
	query := `
		SELECT id, user_id, expires_at, created_at
		FROM sessions
		WHERE id = $1`

	var session Session
	err := r.db.GetContext(ctx, &session, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get session: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	return &session, nil
}

func (r *repository) ExtendSession(
	ctx context.Context,
	id string,
	expiresAt time.Time,
) error {
	query := `
		UPDATE sessions
		SET expires_at = $2
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, expiresAt)
	if err != nil {
		return fmt.Errorf("extend session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("extend session: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("extend session: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) DeleteSession(ctx context.Context, id string) error {
	query := `DELETE FROM sessions WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

func (r *repository) DeleteUserSessions(
	ctx context.Context,
	userID string,
) error {
	query := `DELETE FROM sessions WHERE user_id = $1`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("delete user sessions: %w", err)
	}

	return nil
}

func (r *repository) DeleteExpiredSessions(
	ctx context.Context,
) (int64, error) {
	query := `DELETE FROM sessions WHERE expires_at < NOW()`

	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}

	return rows, nil
}

// ReplaceVerificationCode deletes any outstanding code for the user and
// inserts the new one in a single transaction, so a concurrent verify
// attempt can never observe two live codes.
func (r *repository) ReplaceVerificationCode(
	ctx context.Context,
	code *EmailVerificationCode,
) error {
	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		deleteQuery := `DELETE FROM email_verification_codes WHERE user_id = $1`
		if _, err := tx.ExecContext(ctx, deleteQuery, code.UserID); err != nil {
			return fmt.Errorf("delete verification codes: %w", err)
		}

		insertQuery := `
			INSERT INTO email_verification_codes (user_id, email, code, expires_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at`

		row := tx.QueryRowxContext(ctx, insertQuery,
			code.UserID,
			code.Email,
			code.Code,
			code.ExpiresAt,
		)
		if err := row.Scan(&code.ID, &code.CreatedAt); err != nil {
			return fmt.Errorf("insert verification code: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("replace verification code: %w", err)
	}

	return nil
}

func (r *repository) LatestVerificationCode(
	ctx context.Context,
	userID string,
) (*EmailVerificationCode, error) {
	query := `
		SELECT id, user_id, email, code, expires_at, created_at
		FROM email_verification_codes
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	var code EmailVerificationCode
	err := r.db.GetContext(ctx, &code, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("latest verification code: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("latest verification code: %w", err)
	}

	return &code, nil
}

// ConsumeVerificationCode removes and returns the user's outstanding
// code in one statement. DELETE .. RETURNING is atomic: of two
// concurrent attempts, exactly one sees the row.
func (r *repository) ConsumeVerificationCode(
	ctx context.Context,
	userID string,
) (*EmailVerificationCode, error) {
	query := `
		DELETE FROM email_verification_codes
		WHERE user_id = $1
		RETURNING id, user_id, email, code, expires_at, created_at`

	var code EmailVerificationCode
	err := r.db.GetContext(ctx, &code, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("consume verification code: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("consume verification code: %w", err)
	}

	return &code, nil
}

func (r *repository) ReplaceResetToken(
	ctx context.Context,
	token *PasswordResetToken,
) error {
	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		deleteQuery := `DELETE FROM password_reset_tokens WHERE user_id = $1`
		if _, err := tx.ExecContext(ctx, deleteQuery, token.UserID); err != nil {
			return fmt.Errorf("delete reset tokens: %w", err)
		}

		insertQuery := `
			INSERT INTO password_reset_tokens (id, user_id, expires_at)
			VALUES ($1, $2, $3)
			RETURNING created_at`

		row := tx.QueryRowxContext(ctx, insertQuery,
			token.ID,
			token.UserID,
			token.ExpiresAt,
		)
		if err := row.Scan(&token.CreatedAt); err != nil {
			return fmt.Errorf("insert reset token: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("replace reset token: %w", err)
	}

	return nil
}

func (r *repository) ConsumeResetToken(
	ctx context.Context,
	token string,
) (*PasswordResetToken, error) {
	query := `
		DELETE FROM password_reset_tokens
		WHERE id = $1
		RETURNING id, user_id, expires_at, created_at`

	var record PasswordResetToken
	err := r.db.GetContext(ctx, &record, query, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("consume reset token: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("consume reset token: %w", err)
	}

	return &record, nil
}
