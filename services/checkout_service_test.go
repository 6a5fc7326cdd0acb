package services

import (
	"context"
	"fmt"
	"net/http"
	"shop-cart/models"
	"shop-cart/utils"
	"sync"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func validCheckoutInput() models.CheckoutInput {
	return models.CheckoutInput{
		ShippingInput: models.ShippingInput{
			FullName: "Jane Doe",
			Email:    "jane@example.com",
			Phone:    "+1 (555) 123-4567",
			Street:   "1 Main St",
			City:     "Springfield",
			State:    "IL",
			ZipCode:  "62701",
		},
		PaymentInput: models.PaymentInput{
			CardholderName: "Jane Doe",
			CardNumber:     "4111 1111 1111 1111",
			ExpiryDate:     "12/29",
			CVV:            "123",
		},
	}
}

func newCheckoutService(ts *testServices) *CheckoutService {
	return NewCheckoutService(ts.backend, ts.store, ts.cartSync, ts.loyalty, utils.NewValidator(), zap.NewNop())
}

func checkoutWith(ts *testServices, cart models.Cart, available int64) *Checkout {
	return newCheckoutService(ts).Begin(CheckoutContext{
		Cart:    cart,
		Account: models.LoyaltyAccount{AvailablePoints: available},
	})
}

func TestCheckout_InvalidZipMakesNoRequest(t *testing.T) {
	ts := newTestServices(t)
	cart, _ := AddLine(emptyCart(), line("P1", "30", 1))
	checkout := checkoutWith(ts, cart, 0)

	in := validCheckoutInput()
	in.ZipCode = "abc"

	_, err := checkout.PlaceOrder(context.Background(), testSession, in)

	appErr := models.AsAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, models.KindValidation, appErr.Kind)
	assert.Equal(t, map[string]string{"zipCode": "ZIP code is invalid"}, appErr.Fields)
	assert.Empty(t, ts.backend.Calls())
	assert.Equal(t, models.CheckoutIdle, checkout.State())
}

func TestCheckout_EmptyCartMakesNoRequest(t *testing.T) {
	ts := newTestServices(t)
	checkout := checkoutWith(ts, emptyCart(), 0)

	_, err := checkout.PlaceOrder(context.Background(), testSession, validCheckoutInput())

	appErr := models.AsAppError(err)
	assert.Equal(t, models.CategoryEmptyCart, appErr.Category)
	assert.Empty(t, ts.backend.Calls())
}

func TestCheckout_RequiresSession(t *testing.T) {
	ts := newTestServices(t)
	cart, _ := AddLine(emptyCart(), line("P1", "30", 1))
	checkout := checkoutWith(ts, cart, 0)

	_, err := checkout.PlaceOrder(context.Background(), models.Session{}, validCheckoutInput())

	assert.Equal(t, models.KindAuthorization, models.KindOf(err))
	assert.Empty(t, ts.backend.Calls())
}

func TestCheckout_Success(t *testing.T) {
	ctx := context.Background()
	ts := newTestServices(t)
	ts.backend.handler = func(method, path string) (any, error) {
		switch path {
		case "/loyalty/points":
			return models.LoyaltyAccount{AvailablePoints: 500}, nil
		case "/orders/checkout":
			return models.Order{ID: "order-1", OrderNumber: "ORD-1001", Status: "pending"}, nil
		}
		return nil, nil
	}

	item := line("P1", "46.20", 2)
	_, err := ts.store.Add(ctx, item)
	require.NoError(t, err)
	ts.loyalty.Balance(ctx, testSession)

	cart := ts.store.Cart()
	checkout := checkoutWith(ts, cart, 500)

	in := validCheckoutInput()
	in.PointsToUse = 100

	result, err := checkout.PlaceOrder(ctx, testSession, in)
	require.NoError(t, err)

	assert.Equal(t, "order-1", result.Order.ID)
	assert.True(t, dec("87.40").Equal(result.FinalTotal), result.FinalTotal.String())
	assert.Equal(t, int64(100), result.PointsUsed)
	assert.Equal(t, int64(87), result.PointsEarned)
	assert.Equal(t, int64(500-100+87), result.NewBalance)
	assert.Equal(t, models.CheckoutSucceeded, checkout.State())
	assert.Same(t, result, checkout.Result())
	assert.True(t, ts.store.Cart().IsEmpty())

	calls := ts.backend.Calls()
	last := calls[len(calls)-1]
	assert.Equal(t, http.MethodPost, last.Method)
	assert.Equal(t, "/orders/checkout", last.Path)
	assert.Contains(t, last.Body, `"pointsToUse":100`)
	assert.Contains(t, last.Body, `"paymentMethod":"credit_card"`)
	assert.Contains(t, last.Body, `"postalCode":"62701"`)
	assert.Contains(t, last.Body, `"country":"USA"`)
	assert.Contains(t, last.Body, `"cardNumber":"4111111111111111"`)
	assert.Contains(t, last.Body, `"notes":"Order for Jane Doe"`)

	_, err = checkout.PlaceOrder(ctx, testSession, in)
	assert.True(t, errors.Is(err, ErrCheckoutCompleted))
}

func TestCheckout_RejectionKeepsCart(t *testing.T) {
	tests := []struct {
		message  string
		category models.FailureCategory
	}{
		{"Insufficient points balance", models.CategoryInsufficientPoints},
		{"Cart is empty", models.CategoryEmptyCart},
		{"Not enough stock for Blue Hoodie", models.CategoryInsufficientStock},
		{"Payment declined", models.CategoryGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			ctx := context.Background()
			ts := newTestServices(t)
			ts.backend.handler = func(method, path string) (any, error) {
				return nil, models.ErrorFromStatus(http.StatusBadRequest, tt.message)
			}
			_, err := ts.store.Add(ctx, line("P1", "30", 1))
			require.NoError(t, err)
			checkout := checkoutWith(ts, ts.store.Cart(), 0)

			_, err = checkout.PlaceOrder(ctx, testSession, validCheckoutInput())

			appErr := models.AsAppError(err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.category, appErr.Category)
			assert.Equal(t, models.CheckoutIdle, checkout.State())
			assert.Len(t, ts.store.Cart().Items, 1)
		})
	}
}

func TestCheckout_NetworkFailurePassesThrough(t *testing.T) {
	ctx := context.Background()
	ts := newTestServices(t)
	ts.backend.handler = func(method, path string) (any, error) {
		return nil, models.NewNetworkError(errors.New("reset by peer"))
	}
	cart, _ := AddLine(emptyCart(), line("P1", "30", 1))

	_, err := checkoutWith(ts, cart, 0).PlaceOrder(ctx, testSession, validCheckoutInput())

	appErr := models.AsAppError(err)
	assert.Equal(t, models.KindNetwork, appErr.Kind)
	assert.Equal(t, models.MsgNetwork, appErr.Message)
}

func TestCheckout_SingleSubmission(t *testing.T) {
	ctx := context.Background()
	ts := newTestServices(t)
	release := make(chan struct{})
	entered := make(chan struct{}, 4)
	ts.backend.handler = func(method, path string) (any, error) {
		entered <- struct{}{}
		<-release
		return models.Order{ID: "order-1"}, nil
	}
	cart, _ := AddLine(emptyCart(), line("P1", "30", 1))
	svc := newCheckoutService(ts)

	first := svc.Begin(CheckoutContext{Cart: cart})
	second := svc.Begin(CheckoutContext{Cart: cart})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := first.PlaceOrder(ctx, testSession, validCheckoutInput())
		assert.NoError(t, err)
	}()
	<-entered

	_, err := first.PlaceOrder(ctx, testSession, validCheckoutInput())
	assert.True(t, errors.Is(err, ErrCheckoutInProgress))

	_, err = second.PlaceOrder(ctx, testSession, validCheckoutInput())
	assert.True(t, errors.Is(err, ErrCheckoutInProgress))
	assert.Equal(t, models.CheckoutIdle, second.State())

	close(release)
	wg.Wait()
	assert.Len(t, ts.backend.Calls(), 1)
}

func TestNewCheckoutRequest(t *testing.T) {
	item := line("P1", "50", 2)
	item.Discount = models.Discount{Percentage: dec("10")}
	cart := Recalculate(models.Cart{Items: []models.LineItem{item}})

	in := validCheckoutInput()
	in.PointsToUse = 5000
	in.PaymentMethod = "paypal"

	req := NewCheckoutRequest(cart, 1000, in, models.DefaultPointsRate())

	assert.True(t, dec("100").Equal(req.Subtotal))
	assert.True(t, dec("10").Equal(req.Discount))
	assert.Equal(t, int64(1000), req.PointsToUse)
	assert.True(t, dec("50").Equal(req.PointsDiscount))
	assert.True(t, dec("40").Equal(req.Total))
	assert.Equal(t, "paypal", req.PaymentMethod)
	assert.Equal(t, 2, req.ItemCount)
	assert.Equal(t, map[string]string{
		"subtotal":       "100.00",
		"discount":       "10.00",
		"pointsDiscount": "50.00",
		"total":          "40.00",
	}, Summary(req, 2))
}

func TestCheckoutService_PrepareAndQuote(t *testing.T) {
	ctx := context.Background()
	ts := newTestServices(t)
	ts.backend.handler = func(method, path string) (any, error) {
		if path == "/loyalty/points" {
			return models.LoyaltyAccount{AvailablePoints: 250}, nil
		}
		return remoteCart(remoteItem("P1", "100", 1)), nil
	}

	cc := newCheckoutService(ts).Prepare(ctx, testSession)
	assert.Equal(t, int64(250), cc.Account.AvailablePoints)
	require.Len(t, cc.Cart.Items, 1)
	assert.True(t, dec("100").Equal(cc.Cart.Totals.AdjustedTotal))

	req := newCheckoutService(ts).Quote(ctx, testSession, 250)
	assert.Equal(t, int64(250), req.PointsToUse)
	assert.True(t, dec("10").Equal(req.PointsDiscount))
	assert.True(t, dec("90").Equal(req.Total))
}

func TestClassifyCheckoutFailure(t *testing.T) {
	validation := models.NewValidationError(map[string]string{"cvv": "CVV is required"})
	assert.Same(t, validation, ClassifyCheckoutFailure(validation))

	auth := models.ErrorFromStatus(http.StatusUnauthorized, "")
	assert.Same(t, auth, ClassifyCheckoutFailure(auth))

	unknown := ClassifyCheckoutFailure(errors.New("boom"))
	assert.Equal(t, models.CategoryGeneric, unknown.Category)
	assert.Equal(t, "Order placement failed. Please try again or contact support if the problem persists.", unknown.Message)
}

func TestClassifyCheckoutFailure_UsesBackendWording(t *testing.T) {
	tests := []struct {
		status   int
		server   string
		category models.FailureCategory
	}{
		{http.StatusBadRequest, "Insufficient points", models.CategoryInsufficientPoints},
		{http.StatusNotFound, "Cart is empty", models.CategoryEmptyCart},
		{http.StatusInternalServerError, "Insufficient stock for product P1", models.CategoryInsufficientStock},
		{http.StatusTooManyRequests, "Insufficient points", models.CategoryInsufficientPoints},
		{http.StatusUnprocessableEntity, "Only 2 left in stock", models.CategoryInsufficientStock},
		{http.StatusInternalServerError, "", models.CategoryGeneric},
		{http.StatusNotFound, "Order route missing", models.CategoryGeneric},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d %s", tt.status, tt.server), func(t *testing.T) {
			got := ClassifyCheckoutFailure(models.ErrorFromStatus(tt.status, tt.server))
			assert.Equal(t, tt.category, got.Category)
			assert.Equal(t, tt.status, got.Status)
		})
	}
}
