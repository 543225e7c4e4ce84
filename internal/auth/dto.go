// AngelaMos | 2026
// dto.go

package auth

type SignupRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type VerifyEmailRequest struct {
	Code string `json:"code" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token"    validate:"required,min=20,max=128"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// ActionResponse mirrors the form contract: field-level errors the
// client can attach to inputs, a form-level error for everything else,
// and a redirect target on success. Business failures ride in the body
// with a 200 status; only transport and server faults use error codes.
type ActionResponse struct {
	Success        bool              `json:"success"`
	Redirect       string            `json:"redirect,omitempty"`
	FieldErrors    map[string]string `json:"field_errors,omitempty"`
	FormError      string            `json:"form_error,omitempty"`
	RetryAfterSecs int               `json:"retry_after_seconds,omitempty"`
}

func successResponse(redirect string) *ActionResponse {
	return &ActionResponse{Success: true, Redirect: redirect}
}

func formErrorResponse(message string) *ActionResponse {
	return &ActionResponse{FormError: message}
}

// FlowResult pairs the caller-visible response with the session side
// effects the handler must apply to the cookie jar.
type FlowResult struct {
	Response    *ActionResponse
	Session     *Session
	ClearCookie bool
}
