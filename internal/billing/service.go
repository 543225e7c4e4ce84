// AngelaMos | 2026
// service.go

package billing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/stripe/stripe-go/v79"

	"github.com/BuildAppolis/Nexus-Forge/internal/core"
)

// SubscriptionFetcher retrieves the authoritative subscription state
// from Stripe. Webhook payloads carry a subscription reference, not
// the full expanded object, so each event triggers a fresh fetch.
type SubscriptionFetcher interface {
	FetchSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error)
}

// CheckoutProvider creates hosted checkout and billing portal
// sessions.
type CheckoutProvider interface {
	CheckoutURL(ctx context.Context, userID, userEmail, priceID, successURL, cancelURL string) (string, error)
	BillingPortalURL(ctx context.Context, customerID, returnURL string) (string, error)
}

// UserStore is the slice of the user service billing writes through.
type UserStore interface {
	LinkSubscription(ctx context.Context, userID, customerID, subscriptionID, priceID string, currentPeriodEnd time.Time) error
	RenewSubscription(ctx context.Context, userID, priceID string, currentPeriodEnd time.Time) error
	StripeCustomerID(ctx context.Context, userID string) (string, error)
}

type Service struct {
	fetcher  SubscriptionFetcher
	checkout CheckoutProvider
	users    UserStore
	priceID  string
	appURL   string
	logger   *slog.Logger
}

func NewService(
	fetcher SubscriptionFetcher,
	checkout CheckoutProvider,
	users UserStore,
	priceID, appURL string,
	logger *slog.Logger,
) *Service {
	return &Service{
		fetcher:  fetcher,
		checkout: checkout,
		users:    users,
		priceID:  priceID,
		appURL:   appURL,
		logger:   logger,
	}
}

// HandleCheckoutCompleted links a fresh subscription to the user named
// in the session metadata. Re-delivery of the same event rewrites
// identical values, so replays are harmless.
func (s *Service) HandleCheckoutCompleted(
	ctx context.Context,
	session *stripe.CheckoutSession,
) error {
	userID := session.Metadata["userId"]
	if userID == "" {
		return fmt.Errorf("%w: checkout session %s has no userId metadata",
			core.ErrNotFound, session.ID)
	}

	if session.Subscription == nil {
		return fmt.Errorf("checkout session %s has no subscription", session.ID)
	}

	sub, err := s.fetcher.FetchSubscription(ctx, session.Subscription.ID)
	if err != nil {
		return err
	}

	priceID, err := subscriptionPriceID(sub)
	if err != nil {
		return err
	}

	err = s.users.LinkSubscription(
		ctx,
		userID,
		sub.Customer.ID,
		sub.ID,
		priceID,
		time.Unix(sub.CurrentPeriodEnd, 0),
	)
	if err != nil {
		return fmt.Errorf("link subscription: %w", err)
	}

	s.logger.Info("subscription linked",
		"user_id", userID,
		"subscription_id", sub.ID,
	)
	return nil
}

// HandleInvoicePaid advances the paid-through date on renewal. Only
// the price and period end change; the customer and subscription links
// were written at checkout.
func (s *Service) HandleInvoicePaid(
	ctx context.Context,
	invoice *stripe.Invoice,
) error {
	userID := invoice.Metadata["userId"]
	if userID == "" {
		return fmt.Errorf("%w: invoice %s has no userId metadata",
			core.ErrNotFound, invoice.ID)
	}

	if invoice.Subscription == nil {
		return fmt.Errorf("invoice %s has no subscription", invoice.ID)
	}

	sub, err := s.fetcher.FetchSubscription(ctx, invoice.Subscription.ID)
	if err != nil {
		return err
	}

	priceID, err := subscriptionPriceID(sub)
	if err != nil {
		return err
	}

	err = s.users.RenewSubscription(
		ctx,
		userID,
		priceID,
		time.Unix(sub.CurrentPeriodEnd, 0),
	)
	if err != nil {
		return fmt.Errorf("renew subscription: %w", err)
	}

	s.logger.Info("subscription renewed",
		"user_id", userID,
		"subscription_id", sub.ID,
	)
	return nil
}

// ManageURL routes an existing customer to the billing portal and a
// new one to checkout.
func (s *Service) ManageURL(
	ctx context.Context,
	userID, userEmail string,
) (string, error) {
	customerID, err := s.users.StripeCustomerID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("lookup customer: %w", err)
	}

	returnURL := s.appURL + core.PathDashboard

	if customerID != "" {
		return s.checkout.BillingPortalURL(ctx, customerID, returnURL)
	}

	return s.checkout.CheckoutURL(
		ctx,
		userID,
		userEmail,
		s.priceID,
		returnURL,
		returnURL,
	)
}

func subscriptionPriceID(sub *stripe.Subscription) (string, error) {
	if sub.Items == nil || len(sub.Items.Data) == 0 || sub.Items.Data[0].Price == nil {
		return "", fmt.Errorf("subscription %s has no price item", sub.ID)
	}
	return sub.Items.Data[0].Price.ID, nil
}
