// AngelaMos | 2026
// handler.go

package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/BuildAppolis/Nexus-Forge/internal/core"
	appmw "github.com/BuildAppolis/Nexus-Forge/internal/middleware"
)

type Handler struct {
	service  *Service
	sessions *SessionManager
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandler(
	service *Service,
	sessions *SessionManager,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		service:  service,
		sessions: sessions,
		validate: validator.New(),
		logger:   logger,
	}
}

// Routes mounts the auth endpoints. Verification endpoints sit behind
// the authenticator because they act on the logged-in user's own
// pending code.
func (h *Handler) Routes(authenticator func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/signup", h.Signup)
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.Post("/forgot-password", h.ForgotPassword)
	r.Post("/reset-password", h.ResetPassword)

	r.Group(func(r chi.Router) {
		r.Use(authenticator)
		r.Post("/verify-email", h.VerifyEmail)
		r.Post("/verify-email/resend", h.ResendVerification)
	})

	return r
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.service.Signup(r.Context(), req)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	h.writeFlowResult(w, result)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.service.Login(r.Context(), req)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	h.writeFlowResult(w, result)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID := ""
	if cookie, err := r.Cookie(h.sessions.CookieName()); err == nil {
		sessionID = cookie.Value
	}

	result, err := h.service.Logout(r.Context(), sessionID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	h.writeFlowResult(w, result)
}

func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req VerifyEmailRequest
	if !h.decode(w, r, &req) {
		return
	}

	userID := appmw.GetUserID(r.Context())
	userEmail := appmw.GetUserEmail(r.Context())

	result, err := h.service.VerifyEmail(r.Context(), userID, userEmail, req.Code)
	if err != nil {
		h.logger.Error("email verification failed",
			"user_id", userID,
			"error", err,
		)
		core.InternalServerError(w, err)
		return
	}

	h.writeFlowResult(w, result)
}

func (h *Handler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	userID := appmw.GetUserID(r.Context())
	userEmail := appmw.GetUserEmail(r.Context())

	resp, err := h.service.ResendVerification(r.Context(), userID, userEmail)
	if err != nil {
		h.logger.Error("resend verification failed",
			"user_id", userID,
			"error", err,
		)
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.SendPasswordResetLink(r.Context(), req.Email)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.service.ResetPassword(r.Context(), req)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	h.writeFlowResult(w, result)
}

// decode parses and validates the body. Malformed JSON is a 400;
// validation failures come back as a 200 ActionResponse with per-field
// messages, matching the form-driven flows.
func (h *Handler) decode(
	w http.ResponseWriter,
	r *http.Request,
	dst any,
) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		core.BadRequest(w, "Invalid request body")
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		core.OK(w, &ActionResponse{
			FieldErrors: core.ValidationFieldErrors(err),
		})
		return false
	}

	return true
}

func (h *Handler) writeFlowResult(w http.ResponseWriter, result *FlowResult) {
	if result.Session != nil {
		http.SetCookie(w, h.sessions.Cookie(result.Session))
	}
	if result.ClearCookie {
		http.SetCookie(w, h.sessions.BlankCookie())
	}
	core.OK(w, result.Response)
}
