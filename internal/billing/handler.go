// AngelaMos | 2026
// handler.go

package billing

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/BuildAppolis/Nexus-Forge/internal/core"
	appmw "github.com/BuildAppolis/Nexus-Forge/internal/middleware"
)

const maxWebhookBody = 64 * 1024

type Handler struct {
	service       *Service
	webhookSecret string
	logger        *slog.Logger
}

func NewHandler(
	service *Service,
	webhookSecret string,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		service:       service,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

// Routes mounts the billing endpoints. The webhook stays outside the
// authenticator; Stripe signs its requests instead of holding a
// session.
func (h *Handler) Routes(authenticator func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/webhook", h.Webhook)

	r.Group(func(r chi.Router) {
		r.Use(authenticator)
		r.Use(appmw.RequireVerified)
		r.Post("/manage", h.Manage)
	})

	return r
}

func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "Webhook Error: unreadable body", http.StatusBadRequest)
		return
	}

	event, err := webhook.ConstructEvent(
		body,
		r.Header.Get("Stripe-Signature"),
		h.webhookSecret,
	)
	if err != nil {
		http.Error(w,
			fmt.Sprintf("Webhook Error: %v", err),
			http.StatusBadRequest,
		)
		return
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			http.Error(w, "Webhook Error: bad payload", http.StatusBadRequest)
			return
		}
		h.dispatch(w, string(event.Type), func() error {
			return h.service.HandleCheckoutCompleted(r.Context(), &session)
		})

	case stripe.EventTypeInvoicePaymentSucceeded:
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			http.Error(w, "Webhook Error: bad payload", http.StatusBadRequest)
			return
		}
		h.dispatch(w, string(event.Type), func() error {
			return h.service.HandleInvoicePaid(r.Context(), &invoice)
		})

	default:
		// Acknowledge everything else so Stripe stops retrying.
		w.WriteHeader(http.StatusOK)
	}
}

func (h *Handler) dispatch(
	w http.ResponseWriter,
	eventType string,
	handle func() error,
) {
	if err := handle(); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			h.logger.Warn("webhook event for unknown user",
				"event_type", eventType,
				"error", err,
			)
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		h.logger.Error("webhook handling failed",
			"event_type", eventType,
			"error", err,
		)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Manage returns the URL the frontend should redirect the user to:
// the billing portal for existing customers, checkout otherwise.
func (h *Handler) Manage(w http.ResponseWriter, r *http.Request) {
	userID := appmw.GetUserID(r.Context())
	userEmail := appmw.GetUserEmail(r.Context())

	url, err := h.service.ManageURL(r.Context(), userID, userEmail)
	if err != nil {
		h.logger.Error("manage billing failed",
			"user_id", userID,
			"error", err,
		)
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, map[string]string{"url": url})
}
