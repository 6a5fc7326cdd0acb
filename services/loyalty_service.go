package services

import (
	"context"
	"encoding/json"
	"net/http"
	"shop-cart/models"
	"shop-cart/repositories"
	"shop-cart/utils"
	"sync"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const loyaltyCacheKey = "loyalty:v1"

func loyaltyKey(owner string) string {
	if owner == "" {
		return loyaltyCacheKey
	}
	return loyaltyCacheKey + ":" + owner
}

// MaxUsablePoints caps the points a user may apply by both the balance and
// what the order total can absorb in whole blocks.
func MaxUsablePoints(available int64, adjustedTotal decimal.Decimal, rate models.PointsRate) int64 {
	if available <= 0 || !adjustedTotal.IsPositive() || !rate.ValuePerBlock.IsPositive() {
		return 0
	}
	blocks := adjustedTotal.Div(rate.ValuePerBlock).Floor().IntPart()
	absorbable := blocks * rate.PointsPerBlock
	if available < absorbable {
		return available
	}
	return absorbable
}

// PointsDiscount converts points into money. Partial blocks are worth nothing.
func PointsDiscount(pointsUsed int64, rate models.PointsRate) decimal.Decimal {
	if pointsUsed <= 0 || rate.PointsPerBlock <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(pointsUsed / rate.PointsPerBlock).Mul(rate.ValuePerBlock)
}

func FinalTotal(adjustedTotal, pointsDiscount decimal.Decimal) decimal.Decimal {
	total := adjustedTotal.Sub(pointsDiscount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

// PointsEarned grants one point per whole currency unit paid in money.
func PointsEarned(finalTotal decimal.Decimal) int64 {
	if !finalTotal.IsPositive() {
		return 0
	}
	return finalTotal.Floor().IntPart()
}

// NewBalance never lets the balance go below zero; spending is capped at
// what the account holds.
func NewBalance(oldBalance, pointsUsed, pointsEarned int64) int64 {
	if oldBalance < 0 {
		oldBalance = 0
	}
	if pointsUsed > oldBalance {
		pointsUsed = oldBalance
	}
	if pointsUsed < 0 {
		pointsUsed = 0
	}
	return oldBalance - pointsUsed + pointsEarned
}

type LoyaltyService struct {
	backend Backend
	cache   repositories.CartCache
	rate    models.PointsRate
	places  int32
	logger  *zap.Logger
	mu      sync.Mutex
	owner   string
	account *models.LoyaltyAccount
}

func NewLoyaltyService(backend Backend, cache repositories.CartCache, rate models.PointsRate, displayPlaces int32, logger *zap.Logger) *LoyaltyService {
	return &LoyaltyService{
		backend: backend,
		cache:   cache,
		rate:    rate,
		places:  displayPlaces,
		logger:  logger,
	}
}

func (s *LoyaltyService) Rate() models.PointsRate {
	return s.rate
}

// Balance asks the backend for the current account. On any failure it falls
// back to the last known account, marked stale, or to an empty one.
func (s *LoyaltyService) Balance(ctx context.Context, session models.Session) models.LoyaltyAccount {
	if session.Authenticated() {
		s.Bind(session)

		var account models.LoyaltyAccount
		err := s.backend.Do(ctx, session, http.MethodGet, "/loyalty/points", nil, &account)
		if err == nil {
			if account.AvailablePoints < 0 {
				account.AvailablePoints = 0
			}
			s.remember(ctx, account)
			return account
		}
		s.logger.Warn("loyalty balance unavailable, using last known", zap.Error(err))
	}

	account := s.Current(ctx)
	account.Stale = true
	return account
}

// Bind scopes the cached account to the session's user. A different user
// never sees the previous one's balance.
func (s *LoyaltyService) Bind(session models.Session) {
	if !session.Authenticated() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if session.Subject != s.owner {
		s.owner = session.Subject
		s.account = nil
	}
}

// Current returns the last known account without touching the network.
func (s *LoyaltyService) Current(ctx context.Context) models.LoyaltyAccount {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.account != nil {
		return *s.account
	}

	raw, err := s.cache.Get(ctx, loyaltyKey(s.owner))
	if err != nil {
		if !errors.Is(err, repositories.ErrCacheMiss) {
			s.logger.Warn("read cached loyalty account", zap.Error(err))
		}
		return models.LoyaltyAccount{}
	}

	var account models.LoyaltyAccount
	if err := json.Unmarshal(raw, &account); err != nil {
		s.logger.Warn("discarding cached loyalty account", zap.Error(err))
		return models.LoyaltyAccount{}
	}
	s.account = &account
	return account
}

// ApplyCheckout records a confirmed order: spent points leave the balance
// and points earned on the money paid are added.
func (s *LoyaltyService) ApplyCheckout(ctx context.Context, pointsUsed int64, finalTotal decimal.Decimal) (models.LoyaltyAccount, int64) {
	account := s.Current(ctx)
	earned := PointsEarned(finalTotal)
	account.AvailablePoints = NewBalance(account.AvailablePoints, pointsUsed, earned)
	account.TotalPoints += earned
	account.Stale = false
	s.remember(ctx, account)
	return account, earned
}

// Forget drops the cached account on logout.
func (s *LoyaltyService) Forget(ctx context.Context) error {
	s.mu.Lock()
	s.account = nil
	key := loyaltyKey(s.owner)
	s.mu.Unlock()

	if err := s.cache.Delete(ctx, key); err != nil {
		return errors.Wrap(err, "forget loyalty account")
	}
	return nil
}

// Quote prices an intended use of points against an adjusted total.
// Requests above the usable maximum are clamped to it.
func (s *LoyaltyService) Quote(available int64, adjustedTotal decimal.Decimal, requested int64) models.PointsQuote {
	maxUsable := MaxUsablePoints(available, adjustedTotal, s.rate)
	use := requested
	if use > maxUsable {
		use = maxUsable
	}
	if use < 0 {
		use = 0
	}

	discount := PointsDiscount(use, s.rate)
	final := FinalTotal(adjustedTotal, discount)

	return models.PointsQuote{
		AvailablePoints: available,
		MaxUsablePoints: maxUsable,
		PointsToUse:     use,
		PointsDiscount:  utils.DisplayAmount(discount, s.places),
		AdjustedTotal:   utils.DisplayAmount(adjustedTotal, s.places),
		FinalTotal:      utils.DisplayAmount(final, s.places),
		PointsEarned:    PointsEarned(final),
	}
}

func (s *LoyaltyService) remember(ctx context.Context, account models.LoyaltyAccount) {
	s.mu.Lock()
	stored := account
	stored.Stale = false
	s.account = &stored
	key := loyaltyKey(s.owner)
	s.mu.Unlock()

	raw, err := json.Marshal(stored)
	if err == nil {
		err = s.cache.Set(ctx, key, raw)
	}
	if err != nil {
		s.logger.Warn("cache loyalty account", zap.Error(err))
	}
}
