// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/BuildAppolis/Nexus-Forge/internal/core"
	"github.com/BuildAppolis/Nexus-Forge/internal/email"
)

// Messages that must stay byte-identical across failure causes so a
// caller cannot distinguish a missing account from a wrong credential.
const (
	msgBadCredentials = "Incorrect email or password"
	msgBadResetEmail  = "Provided email is invalid."
)

type UserInfo struct {
	ID            string
	Email         string
	EmailVerified bool
	PasswordHash  string
	Role          string
}

type UserProvider interface {
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, email, passwordHash string) (*UserInfo, error)
	MarkEmailVerified(ctx context.Context, userID string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

type Mailer interface {
	Send(ctx context.Context, to string, msg email.Message) error
}

// Service orchestrates the auth flows: signup, login, logout, email
// verification and password reset. Validation failures come back as
// structured ActionResponse data; only unexpected store or transport
// faults surface as errors.
type Service struct {
	users    UserProvider
	issuer   *TokenIssuer
	sessions *SessionManager
	mailer   Mailer
	appURL   string
	logger   *slog.Logger
}

func NewService(
	users UserProvider,
	issuer *TokenIssuer,
	sessions *SessionManager,
	mailer Mailer,
	appURL string,
	logger *slog.Logger,
) *Service {
	return &Service{
		users:    users,
		issuer:   issuer,
		sessions: sessions,
		mailer:   mailer,
		appURL:   appURL,
		logger:   logger,
	}
}

func (s *Service) Signup(
	ctx context.Context,
	req SignupRequest,
) (*FlowResult, error) {
	exists, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return &FlowResult{
			Response: formErrorResponse("Cannot create account with that email"),
		}, nil
	}

	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, req.Email, passwordHash)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return &FlowResult{
				Response: formErrorResponse(
					"Cannot create account with that email",
				),
			}, nil
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	code, err := s.issuer.IssueVerificationCode(ctx, user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue verification code: %w", err)
	}

	// The account and code are already committed; a failed send must
	// not strand the signup. The resend endpoint is the recovery path.
	if err := s.mailer.Send(ctx, user.Email, email.VerificationEmail{Code: code}); err != nil {
		s.logger.Error("verification email failed",
			"user_id", user.ID,
			"error", err,
		)
	}

	session, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &FlowResult{
		Response: successResponse(core.PathVerifyEmail),
		Session:  session,
	}, nil
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*FlowResult, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing equalization against user enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return &FlowResult{
				Response: formErrorResponse(msgBadCredentials),
			}, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	// A nil hash (OAuth-only account) still runs the dummy verify, so
	// the response time matches a wrong-password attempt.
	valid, newHash, err := core.VerifyPasswordTimingSafe(
		req.Password,
		&user.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return &FlowResult{
			Response: formErrorResponse(msgBadCredentials),
		}, nil
	}

	if newHash != "" {
		//nolint:errcheck // best-effort rehash upgrade
		_ = s.users.UpdatePassword(ctx, user.ID, newHash)
	}

	session, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &FlowResult{
		Response: successResponse(core.PathDashboard),
		Session:  session,
	}, nil
}

// Logout is idempotent: an absent or already-invalid session still
// yields a cleared cookie and a login redirect.
func (s *Service) Logout(
	ctx context.Context,
	sessionID string,
) (*FlowResult, error) {
	if sessionID == "" {
		return &FlowResult{
			Response: successResponse(core.PathLogin),
		}, nil
	}

	if err := s.sessions.Invalidate(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("invalidate session: %w", err)
	}

	return &FlowResult{
		Response:    successResponse(core.PathLogin),
		ClearCookie: true,
	}, nil
}

// ResendVerification refuses while an unexpired code is outstanding,
// reporting the remaining wait. Issuing early would silently
// invalidate a code the user may be about to type.
func (s *Service) ResendVerification(
	ctx context.Context,
	userID, userEmail string,
) (*ActionResponse, error) {
	last, err := s.repoLatestCode(ctx, userID)
	if err != nil {
		return nil, err
	}

	if last != nil && !last.IsExpired() {
		wait := time.Until(last.ExpiresAt)
		minutes := int(wait.Minutes())
		seconds := int(wait.Seconds()) % 60
		limited := core.NewRateLimitError(fmt.Sprintf(
			"Please wait %dm %ds before resending", minutes, seconds,
		), wait)
		resp := formErrorResponse(limited.Message)
		resp.RetryAfterSecs = int(limited.RetryAfter.Seconds())
		return resp, nil
	}

	code, err := s.issuer.IssueVerificationCode(ctx, userID, userEmail)
	if err != nil {
		return nil, fmt.Errorf("issue verification code: %w", err)
	}

	if err := s.mailer.Send(ctx, userEmail, email.VerificationEmail{Code: code}); err != nil {
		return nil, fmt.Errorf("send verification email: %w", err)
	}

	return &ActionResponse{Success: true}, nil
}

// VerifyEmail consumes the outstanding code on every attempt, matching
// or not. Checks run in order: presence, code match, expiry, email
// snapshot match; each failure is terminal because the code is gone.
func (s *Service) VerifyEmail(
	ctx context.Context,
	userID, userEmail, code string,
) (*FlowResult, error) {
	if len(code) != VerificationCodeLength {
		return &FlowResult{
			Response: formErrorResponse("Invalid code"),
		}, nil
	}

	stored, err := s.issuer.repo.ConsumeVerificationCode(ctx, userID)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("consume verification code: %w", err)
	}

	if stored == nil || stored.Code != code {
		return &FlowResult{
			Response: formErrorResponse("Invalid verification code"),
		}, nil
	}

	if stored.IsExpired() {
		return &FlowResult{
			Response: formErrorResponse("Verification code expired"),
		}, nil
	}

	if stored.Email != userEmail {
		return &FlowResult{
			Response: formErrorResponse("Email does not match"),
		}, nil
	}

	if err := s.sessions.InvalidateAll(ctx, userID); err != nil {
		return nil, fmt.Errorf("invalidate sessions: %w", err)
	}

	if err := s.users.MarkEmailVerified(ctx, userID); err != nil {
		return nil, fmt.Errorf("mark email verified: %w", err)
	}

	session, err := s.sessions.Create(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &FlowResult{
		Response: successResponse(core.PathDashboard),
		Session:  session,
	}, nil
}

// SendPasswordResetLink answers identically for unknown addresses and
// unverified accounts.
func (s *Service) SendPasswordResetLink(
	ctx context.Context,
	reqEmail string,
) (*ActionResponse, error) {
	user, err := s.users.GetByEmail(ctx, reqEmail)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return formErrorResponse(msgBadResetEmail), nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !user.EmailVerified {
		return formErrorResponse(msgBadResetEmail), nil
	}

	token, err := s.issuer.IssueResetToken(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue reset token: %w", err)
	}

	link := s.appURL + core.PathResetPassword + "/" + token

	if err := s.mailer.Send(ctx, user.Email, email.PasswordResetEmail{Link: link}); err != nil {
		s.logger.Error("password reset email failed",
			"user_id", user.ID,
			"error", err,
		)
		return formErrorResponse("Failed to send verification email."), nil
	}

	return &ActionResponse{Success: true}, nil
}

// ResetPassword consumes the token before validating it, so a token is
// spent even when the attempt fails for another reason.
func (s *Service) ResetPassword(
	ctx context.Context,
	req ResetPasswordRequest,
) (*FlowResult, error) {
	stored, err := s.issuer.repo.ConsumeResetToken(ctx, req.Token)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("consume reset token: %w", err)
	}

	if stored == nil {
		return &FlowResult{
			Response: formErrorResponse("Invalid password reset link"),
		}, nil
	}

	if stored.IsExpired() {
		return &FlowResult{
			Response: formErrorResponse("Password reset link expired"),
		}, nil
	}

	if err := s.sessions.InvalidateAll(ctx, stored.UserID); err != nil {
		return nil, fmt.Errorf("invalidate sessions: %w", err)
	}

	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, stored.UserID, passwordHash); err != nil {
		return nil, fmt.Errorf("update password: %w", err)
	}

	session, err := s.sessions.Create(ctx, stored.UserID)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &FlowResult{
		Response: successResponse(core.PathDashboard),
		Session:  session,
	}, nil
}

func (s *Service) repoLatestCode(
	ctx context.Context,
	userID string,
) (*EmailVerificationCode, error) {
	code, err := s.issuer.repo.LatestVerificationCode(ctx, userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest verification code: %w", err)
	}
	return code, nil
}
