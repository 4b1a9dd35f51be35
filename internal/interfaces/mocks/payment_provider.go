package mocks

import (
	"context"

	"firstlook/internal/interfaces"
	"firstlook/internal/models"

	"github.com/stretchr/testify/mock"
)

// PaymentProvider is a mock type for the PaymentProvider type
type PaymentProvider struct {
	mock.Mock
}

func (m *PaymentProvider) ListSuccessfulPurchases(ctx context.Context, customerID string) ([]models.Purchase, error) {
	args := m.Called(ctx, customerID)
	var r0 []models.Purchase
	if v := args.Get(0); v != nil {
		r0 = v.([]models.Purchase)
	}
	return r0, args.Error(1)
}

func (m *PaymentProvider) CreateCustomer(ctx context.Context, profile models.UserProfile) (string, error) {
	args := m.Called(ctx, profile)
	return args.String(0), args.Error(1)
}

func (m *PaymentProvider) CreateCheckoutSession(ctx context.Context, customerID, userID string, pkg models.CoinPackage) (*models.CheckoutSession, error) {
	args := m.Called(ctx, customerID, userID, pkg)
	var r0 *models.CheckoutSession
	if v := args.Get(0); v != nil {
		r0 = v.(*models.CheckoutSession)
	}
	return r0, args.Error(1)
}

func (m *PaymentProvider) ParseWebhook(payload []byte, signature string) (*models.CheckoutCompleted, error) {
	args := m.Called(payload, signature)
	var r0 *models.CheckoutCompleted
	if v := args.Get(0); v != nil {
		r0 = v.(*models.CheckoutCompleted)
	}
	return r0, args.Error(1)
}

var _ interfaces.PaymentProvider = (*PaymentProvider)(nil)
