// AngelaMos | 2026
// session.go

package middleware

import (
	"context"
	"net/http"

	"github.com/BuildAppolis/Nexus-Forge/internal/core"
)

const (
	UserIDKey        contextKey = "user_id"
	UserEmailKey     contextKey = "user_email"
	UserRoleKey      contextKey = "user_role"
	EmailVerifiedKey contextKey = "email_verified"
	SessionIDKey     contextKey = "session_id"
	PrincipalKey     contextKey = "principal"
)

// Principal is the authenticated identity attached to the request
// context after session validation. RefreshCookie is non-nil when the
// session was extended and the client cookie should be re-issued.
type Principal struct {
	UserID        string
	Email         string
	EmailVerified bool
	Role          string
	SessionID     string
	RefreshCookie *http.Cookie
}

type SessionValidator interface {
	Validate(ctx context.Context, sessionID string) (*Principal, error)
}

func Authenticator(
	validator SessionValidator,
	cookieName string,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				core.JSONError(
					w,
					core.UnauthorizedError("missing session cookie"),
				)
				return
			}

			principal, err := validator.Validate(r.Context(), cookie.Value)
			if err != nil {
				if core.IsAppError(err) {
					core.JSONError(w, err)
					return
				}
				core.JSONError(w, core.SessionInvalidError())
				return
			}

			if principal.RefreshCookie != nil {
				http.SetCookie(w, principal.RefreshCookie)
			}

			next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), principal)))
		})
	}
}

// OptionalAuth attaches a principal when a valid session cookie is
// present but lets anonymous requests through.
func OptionalAuth(
	validator SessionValidator,
	cookieName string,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err == nil && cookie.Value != "" {
				principal, vErr := validator.Validate(r.Context(), cookie.Value)
				if vErr == nil {
					if principal.RefreshCookie != nil {
						http.SetCookie(w, principal.RefreshCookie)
					}
					r = r.WithContext(withPrincipal(r.Context(), principal))
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireVerified gates routes on a verified email address. Must run
// after Authenticator.
func RequireVerified(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUserID(r.Context()) == "" {
			core.JSONError(w, core.UnauthorizedError("authentication required"))
			return
		}

		if !IsEmailVerified(r.Context()) {
			core.JSONError(w, core.ForbiddenError("email not verified"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func RequireRole(roles ...string) func(http.Handler) http.Handler {
	roleSet := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userRole := GetUserRole(r.Context())

			if userRole == "" {
				core.JSONError(
					w,
					core.UnauthorizedError("authentication required"),
				)
				return
			}

			if _, ok := roleSet[userRole]; !ok {
				core.JSONError(
					w,
					core.ForbiddenError("insufficient permissions"),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole("admin")(next)
}

func withPrincipal(ctx context.Context, p *Principal) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, p.UserID)
	ctx = context.WithValue(ctx, UserEmailKey, p.Email)
	ctx = context.WithValue(ctx, UserRoleKey, p.Role)
	ctx = context.WithValue(ctx, EmailVerifiedKey, p.EmailVerified)
	ctx = context.WithValue(ctx, SessionIDKey, p.SessionID)
	ctx = context.WithValue(ctx, PrincipalKey, p)
	return ctx
}

func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(UserIDKey).(string); ok {
		return id
	}
	return ""
}

func GetUserEmail(ctx context.Context) string {
	if email, ok := ctx.Value(UserEmailKey).(string); ok {
		return email
	}
	return ""
}

func GetUserRole(ctx context.Context) string {
	if role, ok := ctx.Value(UserRoleKey).(string); ok {
		return role
	}
	return ""
}

func IsEmailVerified(ctx context.Context) bool {
	if verified, ok := ctx.Value(EmailVerifiedKey).(bool); ok {
		return verified
	}
	return false
}

func GetSessionID(ctx context.Context) string {
	if id, ok := ctx.Value(SessionIDKey).(string); ok {
		return id
	}
	return ""
}

func GetPrincipal(ctx context.Context) *Principal {
	if p, ok := ctx.Value(PrincipalKey).(*Principal); ok {
		return p
	}
	return nil
}

func IsAuthenticated(ctx context.Context) bool {
	return GetUserID(ctx) != ""
}

func IsAdmin(ctx context.Context) bool {
	return GetUserRole(ctx) == "admin"
}
