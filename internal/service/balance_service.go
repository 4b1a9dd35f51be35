package service

import (
	"context"
	"fmt"
	"sync"

	"firstlook/internal/interfaces"
	"firstlook/internal/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BalanceService re-derives coin balances from purchase history.
type BalanceService struct {
	users   interfaces.UserRepository
	stories interfaces.StoryRepository
	ledger  interfaces.PurchaseLedger
	logger  *zap.Logger
}

func NewBalanceService(users interfaces.UserRepository, stories interfaces.StoryRepository, ledger interfaces.PurchaseLedger, logger *zap.Logger) *BalanceService {
	return &BalanceService{
		users:   users,
		stories: stories,
		ledger:  ledger,
		logger:  logger.Named("BalanceService"),
	}
}

// Resync sets the stored balance to purchased coins minus the cost of every
// unlocked story. Stories that no longer exist cost nothing.
func (s *BalanceService) Resync(ctx context.Context, userID string) (*models.ResyncResult, error) {
	logFields := []zap.Field{zap.String("userID", userID)}

	profile, err := s.users.GetByID(ctx, userID)
	if err != nil {
		resyncsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	purchased := 0
	if profile.StripeCustomerID != "" {
		purchases, err := s.ledger.ListSuccessfulPurchases(ctx, profile.StripeCustomerID)
		if err != nil {
			resyncsTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("failed to list purchases: %w", err)
		}
		for _, p := range purchases {
			purchased += p.Coins
		}
	}

	unlocked := profile.UnlockedIDs()
	costs, err := s.lookupCosts(ctx, unlocked)
	if err != nil {
		resyncsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	spent := 0
	missing := make([]string, 0)
	for _, id := range unlocked {
		cost, ok := costs[id]
		if !ok {
			s.logger.Warn("Unlocked story no longer exists, counting as free", append(logFields, zap.String("storyID", id))...)
			resyncMissingStories.Inc()
			missing = append(missing, id)
			continue
		}
		spent += cost
	}

	balance := purchased - spent
	if err := s.users.SetCoins(ctx, userID, balance); err != nil {
		resyncsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to store balance: %w", err)
	}

	result := &models.ResyncResult{
		UserID:          userID,
		PreviousBalance: profile.Coins,
		PurchasedCoins:  purchased,
		SpentCoins:      spent,
		Balance:         balance,
		MissingStoryIDs: missing,
	}
	resyncsTotal.WithLabelValues("success").Inc()
	s.logger.Info("Balance resynced",
		append(logFields,
			zap.Int("previous", result.PreviousBalance),
			zap.Int("purchased", purchased),
			zap.Int("spent", spent),
			zap.Int("balance", balance),
			zap.Int("missing", len(missing)),
		)...,
	)
	return result, nil
}

// lookupCosts fetches coin costs in chunks of interfaces.MaxIDsPerQuery,
// all chunks concurrently.
func (s *BalanceService) lookupCosts(ctx context.Context, ids []string) (map[string]int, error) {
	costs := make(map[string]int, len(ids))
	if len(ids) == 0 {
		return costs, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, chunk := range chunkIDs(ids, interfaces.MaxIDsPerQuery) {
		chunk := chunk
		g.Go(func() error {
			found, err := s.stories.GetByIDs(gctx, chunk)
			if err != nil {
				return fmt.Errorf("failed to look up unlocked stories: %w", err)
			}
			mu.Lock()
			defer mu.Unlock()
			for id, st := range found {
				costs[id] = st.CoinCost
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return costs, nil
}

// chunkIDs splits ids into consecutive slices of at most size elements,
// dropping duplicates.
func chunkIDs(ids []string, size int) [][]string {
	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	chunks := make([][]string, 0, (len(unique)+size-1)/size)
	for start := 0; start < len(unique); start += size {
		end := start + size
		if end > len(unique) {
			end = len(unique)
		}
		chunks = append(chunks, unique[start:end])
	}
	return chunks
}
