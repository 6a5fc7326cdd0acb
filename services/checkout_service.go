package services

import (
	"context"
	"fmt"
	"net/http"
	"shop-cart/models"
	"shop-cart/utils"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const DefaultPaymentMethod = "credit_card"

var (
	ErrCheckoutInProgress = errors.New("checkout already in progress")
	ErrCheckoutCompleted  = errors.New("checkout already completed")
)

const (
	msgInsufficientPoints = "You don't have enough loyalty points for this purchase. Please reduce the points used or add more items to earn points."
	msgEmptyCart          = "Your cart is empty. Please add items to your cart before checkout."
	msgInsufficientStock  = "Some items in your cart are out of stock. Please review your cart."
	msgCheckoutFailed     = "Order placement failed. Please try again or contact support if the problem persists."
)

// ClassifyCheckoutFailure turns a backend rejection into one of the known
// categories with a user facing message. Network and authorization errors
// pass through untouched.
func ClassifyCheckoutFailure(err error) *models.AppError {
	appErr := models.AsAppError(err)
	if appErr.Kind == models.KindNetwork || appErr.Kind == models.KindAuthorization || appErr.Kind == models.KindValidation {
		return appErr
	}

	reason := appErr.Reason()
	category, message := models.CategoryGeneric, msgCheckoutFailed
	switch {
	case strings.Contains(reason, "Insufficient points"):
		category, message = models.CategoryInsufficientPoints, msgInsufficientPoints
	case strings.Contains(reason, "Cart is empty"):
		category, message = models.CategoryEmptyCart, msgEmptyCart
	case strings.Contains(reason, "stock"):
		category, message = models.CategoryInsufficientStock, msgInsufficientStock
	}

	return &models.AppError{
		Kind:     appErr.Kind,
		Status:   appErr.Status,
		Message:  message,
		Category: category,
		Err:      errors.Wrap(appErr, "checkout rejected"),
	}
}

// NewCheckoutRequest freezes the figures of a checkout. Points beyond what
// the balance and the total allow are clamped.
func NewCheckoutRequest(cart models.Cart, availablePoints int64, in models.CheckoutInput, rate models.PointsRate) models.CheckoutRequest {
	adjusted := cart.Totals.AdjustedTotal
	points := in.PointsToUse
	if maxUsable := MaxUsablePoints(availablePoints, adjusted, rate); points > maxUsable {
		points = maxUsable
	}
	if points < 0 {
		points = 0
	}
	pointsDiscount := PointsDiscount(points, rate)

	method := in.PaymentMethod
	if method == "" {
		method = DefaultPaymentMethod
	}

	return models.CheckoutRequest{
		Subtotal:       cart.Totals.GrossTotal,
		Discount:       CartDiscount(cart),
		PointsToUse:    points,
		PointsDiscount: pointsDiscount,
		Total:          FinalTotal(adjusted, pointsDiscount),
		ItemCount:      cart.Totals.ItemCount,
		Shipping: models.ShippingAddress{
			Street:     in.Street,
			City:       in.City,
			State:      in.State,
			PostalCode: in.ZipCode,
			Country:    in.Country,
		},
		PaymentMethod: method,
		Payment: models.PaymentDetails{
			CardNumber:     in.CardNumber,
			ExpiryDate:     in.ExpiryDate,
			CVV:            in.CVV,
			CardholderName: in.CardholderName,
		},
		Notes: fmt.Sprintf("Order for %s", in.FullName),
	}
}

// CheckoutContext is what a checkout page needs before the user submits.
type CheckoutContext struct {
	Cart    models.Cart           `json:"cart"`
	Account models.LoyaltyAccount `json:"account"`
}

type CheckoutService struct {
	backend   Backend
	store     *CartStore
	cartSync  *CartSyncService
	loyalty   *LoyaltyService
	validator *utils.Validator
	logger    *zap.Logger
	busy      atomic.Bool
	now       func() time.Time
}

func NewCheckoutService(backend Backend, store *CartStore, cartSync *CartSyncService, loyalty *LoyaltyService, validator *utils.Validator, logger *zap.Logger) *CheckoutService {
	return &CheckoutService{
		backend:   backend,
		store:     store,
		cartSync:  cartSync,
		loyalty:   loyalty,
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}
}

// Prepare refreshes the backend cart and the points balance concurrently.
// Both reads degrade to local data on failure.
func (s *CheckoutService) Prepare(ctx context.Context, session models.Session) CheckoutContext {
	s.store.Bind(ctx, session)
	s.loyalty.Bind(session)

	var account models.LoyaltyAccount

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.cartSync.Fetch(gctx, session)
		return nil
	})
	g.Go(func() error {
		account = s.loyalty.Balance(gctx, session)
		return nil
	})
	_ = g.Wait()

	return CheckoutContext{Cart: s.store.View(), Account: account}
}

// Quote previews the checkout figures without validating contact or card data.
func (s *CheckoutService) Quote(ctx context.Context, session models.Session, pointsToUse int64) models.CheckoutRequest {
	cc := s.Prepare(ctx, session)
	return NewCheckoutRequest(cc.Cart, cc.Account.AvailablePoints, models.CheckoutInput{PointsToUse: pointsToUse}, s.loyalty.Rate())
}

// Validate normalizes and checks the contact and card details without
// touching the network.
func (s *CheckoutService) Validate(in models.CheckoutInput) (models.CheckoutInput, error) {
	return s.validator.ValidateCheckout(in)
}

// Begin starts a checkout attempt over the given cart and balance.
func (s *CheckoutService) Begin(cc CheckoutContext) *Checkout {
	return &Checkout{
		svc:       s,
		state:     models.CheckoutIdle,
		cart:      cc.Cart.Clone(),
		available: cc.Account.AvailablePoints,
	}
}

// Checkout is a single attempt moving idle -> validating -> submitting ->
// succeeded. Invalid input and rejected submissions fall back to idle.
type Checkout struct {
	svc       *CheckoutService
	mu        sync.Mutex
	state     models.CheckoutState
	cart      models.Cart
	available int64
	result    *models.CheckoutResult
}

func (c *Checkout) State() models.CheckoutState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Checkout) Result() *models.CheckoutResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

func (c *Checkout) transition(from []models.CheckoutState, to models.CheckoutState) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, state := range from {
		if c.state == state {
			c.state = to
			return nil
		}
	}
	switch c.state {
	case models.CheckoutSucceeded:
		return ErrCheckoutCompleted
	default:
		return ErrCheckoutInProgress
	}
}

func (c *Checkout) setState(state models.CheckoutState) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}

// PlaceOrder validates the input, submits exactly one order and, once the
// backend confirms it, updates the points balance and clears the cart.
func (c *Checkout) PlaceOrder(ctx context.Context, session models.Session, in models.CheckoutInput) (*models.CheckoutResult, error) {
	s := c.svc
	if err := c.transition([]models.CheckoutState{models.CheckoutIdle}, models.CheckoutValidating); err != nil {
		return nil, err
	}

	in, err := s.validator.ValidateCheckout(in)
	if err != nil {
		c.setState(models.CheckoutIdle)
		return nil, err
	}
	if err := utils.RequireSession(session, s.now()); err != nil {
		c.setState(models.CheckoutIdle)
		return nil, err
	}
	if c.cart.IsEmpty() {
		c.setState(models.CheckoutIdle)
		return nil, models.NewDomainError(models.CategoryEmptyCart, msgEmptyCart)
	}

	if !s.busy.CompareAndSwap(false, true) {
		c.setState(models.CheckoutIdle)
		return nil, ErrCheckoutInProgress
	}
	defer s.busy.Store(false)

	request := NewCheckoutRequest(c.cart, c.available, in, s.loyalty.Rate())
	c.setState(models.CheckoutSubmitting)

	log := s.logger.With(
		zap.Int64("points_to_use", request.PointsToUse),
		zap.String("total", request.Total.String()),
		zap.Int("items", request.ItemCount),
	)

	var order models.Order
	err = s.backend.Do(ctx, session, http.MethodPost, "/orders/checkout", models.CheckoutPayload{
		PointsToUse:     request.PointsToUse,
		ShippingAddress: request.Shipping,
		PaymentMethod:   request.PaymentMethod,
		PaymentDetails:  request.Payment,
		Notes:           request.Notes,
	}, &order)
	if err != nil {
		c.setState(models.CheckoutIdle)
		classified := ClassifyCheckoutFailure(err)
		log.Warn("checkout failed", zap.String("category", string(classified.Category)), zap.Error(err))
		return nil, classified
	}

	account, earned := s.loyalty.ApplyCheckout(ctx, request.PointsToUse, request.Total)
	if err := s.store.Clear(ctx); err != nil {
		log.Error("clear cart after checkout", zap.Error(err))
	}

	result := &models.CheckoutResult{
		Order:        order,
		PointsUsed:   request.PointsToUse,
		PointsEarned: earned,
		NewBalance:   account.AvailablePoints,
		FinalTotal:   request.Total,
	}

	c.mu.Lock()
	c.state = models.CheckoutSucceeded
	c.result = result
	c.mu.Unlock()

	log.Info("order placed", zap.String("order_id", order.ID), zap.Int64("points_earned", earned))
	return result, nil
}

// Summary renders the checkout figures for display.
func Summary(r models.CheckoutRequest, places int32) map[string]string {
	return map[string]string{
		"subtotal":       utils.DisplayAmount(r.Subtotal, places),
		"discount":       utils.DisplayAmount(r.Discount, places),
		"pointsDiscount": utils.DisplayAmount(r.PointsDiscount, places),
		"total":          utils.DisplayAmount(r.Total, places),
	}
}
