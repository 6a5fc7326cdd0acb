package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type LoyaltyTransaction struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description"`
	OrderID     string    `json:"orderId,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// LoyaltyAccount is the user's points balance as last reported by the backend.
type LoyaltyAccount struct {
	AvailablePoints int64                `json:"availablePoints"`
	TotalPoints     int64                `json:"totalPoints"`
	PendingPoints   int64                `json:"pendingPoints"`
	Tier            string               `json:"tier,omitempty"`
	NextTierPoints  int64                `json:"nextTierPoints,omitempty"`
	Transactions    []LoyaltyTransaction `json:"transactions,omitempty"`
	Stale           bool                 `json:"stale"`
}

// PointsRate converts whole blocks of points into a fixed money value.
type PointsRate struct {
	PointsPerBlock int64           `json:"pointsPerBlock"`
	ValuePerBlock  decimal.Decimal `json:"valuePerBlock"`
}

func DefaultPointsRate() PointsRate {
	return PointsRate{PointsPerBlock: 100, ValuePerBlock: decimal.NewFromInt(5)}
}

// Session carries the caller's bearer credential through a request.
type Session struct {
	Token     string
	Subject   string
	ExpiresAt *time.Time
}

func (s Session) Authenticated() bool {
	return s.Token != ""
}
