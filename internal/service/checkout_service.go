package service

import (
	"context"
	"fmt"

	"firstlook/internal/interfaces"
	"firstlook/internal/models"

	"go.uber.org/zap"
)

// PackageCatalog lists the coin packages on sale.
type PackageCatalog interface {
	AllPackages() []models.CoinPackage
	Package(id string) (models.CoinPackage, bool)
}

// CheckoutService bridges coin purchases to the payment provider.
type CheckoutService struct {
	users    interfaces.UserRepository
	payments interfaces.PaymentProvider
	packages PackageCatalog
	balances *BalanceService
	logger   *zap.Logger
}

func NewCheckoutService(users interfaces.UserRepository, payments interfaces.PaymentProvider, packages PackageCatalog, balances *BalanceService, logger *zap.Logger) *CheckoutService {
	return &CheckoutService{
		users:    users,
		payments: payments,
		packages: packages,
		balances: balances,
		logger:   logger.Named("CheckoutService"),
	}
}

func (s *CheckoutService) ListPackages() []models.CoinPackage {
	pkgs := s.packages.AllPackages()
	if pkgs == nil {
		return []models.CoinPackage{}
	}
	return pkgs
}

// CreateCheckout opens a hosted checkout session, creating the provider
// customer on the user's first purchase.
func (s *CheckoutService) CreateCheckout(ctx context.Context, userID, packageID string) (*models.CheckoutSession, error) {
	pkg, ok := s.packages.Package(packageID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidPackage, packageID)
	}

	profile, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	customerID := profile.StripeCustomerID
	if customerID == "" {
		customerID, err = s.payments.CreateCustomer(ctx, *profile)
		if err != nil {
			return nil, err
		}
		if err := s.users.SetStripeCustomerID(ctx, userID, customerID); err != nil {
			return nil, fmt.Errorf("failed to store customer id: %w", err)
		}
	}

	session, err := s.payments.CreateCheckoutSession(ctx, customerID, userID, pkg)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Checkout session created",
		zap.String("userID", userID),
		zap.String("packageID", pkg.ID),
		zap.String("sessionID", session.SessionID),
	)
	return session, nil
}

// HandleWebhook verifies the event and resyncs the buyer's balance on a
// completed checkout. Other events return a nil result.
func (s *CheckoutService) HandleWebhook(ctx context.Context, payload []byte, signature string) (*models.ResyncResult, error) {
	completed, err := s.payments.ParseWebhook(payload, signature)
	if err != nil {
		return nil, err
	}
	if completed == nil {
		return nil, nil
	}

	s.logger.Info("Checkout completed", zap.String("userID", completed.UserID), zap.String("sessionID", completed.SessionID))
	return s.balances.Resync(ctx, completed.UserID)
}
