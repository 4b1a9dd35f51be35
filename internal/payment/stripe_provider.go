package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"firstlook/internal/interfaces"
	"firstlook/internal/models"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"
)

var _ interfaces.PaymentProvider = (*StripeProvider)(nil)

const (
	metadataUserID    = "userId"
	metadataPackageID = "packageId"
	metadataCoins     = "coins"

	eventCheckoutSessionCompleted      = "checkout.session.completed"
	eventCheckoutAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
)

// Config holds the Stripe credentials and redirect targets.
type Config struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

// StripeProvider implements hosted checkout and the purchase ledger on Stripe.
type StripeProvider struct {
	api    *client.API
	cfg    Config
	logger *zap.Logger
}

func NewStripeProvider(cfg Config, logger *zap.Logger) *StripeProvider {
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)
	return &StripeProvider{
		api:    api,
		cfg:    cfg,
		logger: logger.Named("StripeProvider"),
	}
}

func (p *StripeProvider) CreateCustomer(ctx context.Context, profile models.UserProfile) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(profile.Email),
		Name:  stripe.String(profile.DisplayName),
	}
	params.Context = ctx
	params.AddMetadata(metadataUserID, profile.UserID)

	c, err := p.api.Customers.New(params)
	if err != nil {
		p.logger.Error("Failed to create stripe customer", zap.String("userID", profile.UserID), zap.Error(err))
		return "", fmt.Errorf("%w: failed to create customer: %v", models.ErrExternalService, err)
	}
	p.logger.Info("Stripe customer created", zap.String("userID", profile.UserID), zap.String("customerID", c.ID))
	return c.ID, nil
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, customerID, userID string, pkg models.CoinPackage) (*models.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Customer:          stripe.String(customerID),
		ClientReferenceID: stripe.String(userID),
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(p.cfg.SuccessURL),
		CancelURL:         stripe.String(p.cfg.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(pkg.Currency)),
					UnitAmount: stripe.Int64(pkg.PriceCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(pkg.Name),
					},
				},
			},
		},
	}
	params.Context = ctx
	params.AddMetadata(metadataUserID, userID)
	params.AddMetadata(metadataPackageID, pkg.ID)
	params.AddMetadata(metadataCoins, strconv.Itoa(pkg.Coins))

	s, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		p.logger.Error("Failed to create checkout session",
			zap.String("userID", userID),
			zap.String("packageID", pkg.ID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: failed to create checkout session: %v", models.ErrExternalService, err)
	}
	return &models.CheckoutSession{SessionID: s.ID, URL: s.URL}, nil
}

// ListSuccessfulPurchases walks every checkout session of the customer and
// keeps the paid ones.
func (p *StripeProvider) ListSuccessfulPurchases(ctx context.Context, customerID string) ([]models.Purchase, error) {
	purchases := make([]models.Purchase, 0)
	if customerID == "" {
		return purchases, nil
	}

	params := &stripe.CheckoutSessionListParams{Customer: stripe.String(customerID)}
	params.Context = ctx

	it := p.api.CheckoutSessions.List(params)
	for it.Next() {
		purchase, ok := sessionToPurchase(it.CheckoutSession())
		if !ok {
			continue
		}
		purchases = append(purchases, purchase)
	}
	if err := it.Err(); err != nil {
		p.logger.Error("Failed to list checkout sessions", zap.String("customerID", customerID), zap.Error(err))
		return nil, fmt.Errorf("%w: failed to list checkout sessions: %v", models.ErrExternalService, err)
	}
	return purchases, nil
}

// ParseWebhook returns the paid checkout carried by the event. Completed
// sessions still waiting on an async payment method are ignored until
// checkout.session.async_payment_succeeded arrives.
func (p *StripeProvider) ParseWebhook(payload []byte, signature string) (*models.CheckoutCompleted, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, p.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		p.logger.Warn("Rejected webhook with invalid signature", zap.Error(err))
		return nil, fmt.Errorf("%w: invalid webhook signature", models.ErrUnauthorized)
	}
	eventType := string(event.Type)
	if eventType != eventCheckoutSessionCompleted && eventType != eventCheckoutAsyncPaymentSucceeded {
		p.logger.Debug("Ignoring webhook event", zap.String("type", eventType))
		return nil, nil
	}

	var s stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
		return nil, fmt.Errorf("%w: malformed checkout session: %v", models.ErrInvalidInput, err)
	}
	if s.PaymentStatus == stripe.CheckoutSessionPaymentStatusUnpaid {
		p.logger.Info("Checkout completed with payment pending",
			zap.String("sessionID", s.ID),
			zap.String("type", eventType),
		)
		return nil, nil
	}
	userID := s.Metadata[metadataUserID]
	if userID == "" {
		userID = s.ClientReferenceID
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: checkout session %s has no user", models.ErrInvalidInput, s.ID)
	}
	return &models.CheckoutCompleted{SessionID: s.ID, UserID: userID}, nil
}

func sessionToPurchase(s *stripe.CheckoutSession) (models.Purchase, bool) {
	if s == nil || s.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return models.Purchase{}, false
	}
	coins, err := strconv.Atoi(s.Metadata[metadataCoins])
	if err != nil || coins <= 0 {
		return models.Purchase{}, false
	}
	return models.Purchase{
		SessionID:   s.ID,
		UserID:      s.Metadata[metadataUserID],
		PackageID:   s.Metadata[metadataPackageID],
		Coins:       coins,
		AmountCents: s.AmountTotal,
		Currency:    string(s.Currency),
		Paid:        true,
		CreatedAt:   time.Unix(s.Created, 0).UTC(),
	}, true
}
