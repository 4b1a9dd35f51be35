package interfaces

import (
	"context"

	"firstlook/internal/models"
)

// PurchaseLedger lists purchases recorded by the payment provider.
//
//go:generate mockery --name PurchaseLedger --output ./mocks --outpkg mocks --case=underscore
type PurchaseLedger interface {
	ListSuccessfulPurchases(ctx context.Context, customerID string) ([]models.Purchase, error)
}

// PaymentProvider is the hosted checkout integration.
//
//go:generate mockery --name PaymentProvider --output ./mocks --outpkg mocks --case=underscore
type PaymentProvider interface {
	PurchaseLedger

	CreateCustomer(ctx context.Context, profile models.UserProfile) (string, error)
	CreateCheckoutSession(ctx context.Context, customerID, userID string, pkg models.CoinPackage) (*models.CheckoutSession, error)

	// ParseWebhook verifies the signature and returns the completed checkout,
	// or nil for event types we do not act on.
	ParseWebhook(payload []byte, signature string) (*models.CheckoutCompleted, error)
}
