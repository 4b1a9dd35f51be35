package models

import "time"

// CoinPackage is a purchasable bundle of coins.
type CoinPackage struct {
	ID         string `yaml:"id" json:"id"`
	Name       string `yaml:"name" json:"name"`
	Coins      int    `yaml:"coins" json:"coins"`
	PriceCents int64  `yaml:"priceCents" json:"priceCents"`
	Currency   string `yaml:"currency" json:"currency"`
}

// Purchase is a completed checkout as recorded by the payment provider.
type Purchase struct {
	SessionID   string    `json:"sessionId"`
	UserID      string    `json:"userId"`
	PackageID   string    `json:"packageId"`
	Coins       int       `json:"coins"`
	AmountCents int64     `json:"amountCents"`
	Currency    string    `json:"currency"`
	Paid        bool      `json:"paid"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CheckoutSession is what the client needs to redirect to hosted checkout.
type CheckoutSession struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// CheckoutCompleted is the only part of a provider webhook we act on.
type CheckoutCompleted struct {
	SessionID string
	UserID    string
}

// ResyncResult describes one balance reconciliation.
type ResyncResult struct {
	UserID          string   `json:"userId"`
	PreviousBalance int      `json:"previousBalance"`
	PurchasedCoins  int      `json:"purchasedCoins"`
	SpentCoins      int      `json:"spentCoins"`
	Balance         int      `json:"balance"`
	MissingStoryIDs []string `json:"missingStoryIds"`
}
