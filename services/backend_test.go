package services

import (
	"context"
	"encoding/json"
	"shop-cart/models"
	"shop-cart/repositories"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type backendCall struct {
	Method string
	Path   string
	Body   string
}

// fakeBackend answers every request with the handler's value, copied into
// out through JSON the way the real client decodes responses.
type fakeBackend struct {
	mu      sync.Mutex
	calls   []backendCall
	handler func(method, path string) (any, error)
}

func (f *fakeBackend) Do(_ context.Context, _ models.Session, method, path string, body, out any) error {
	var raw []byte
	if body != nil {
		raw, _ = json.Marshal(body)
	}

	f.mu.Lock()
	f.calls = append(f.calls, backendCall{Method: method, Path: path, Body: string(raw)})
	handler := f.handler
	f.mu.Unlock()

	if handler == nil {
		return nil
	}
	resp, err := handler(method, path)
	if err != nil {
		return err
	}
	if resp == nil || out == nil {
		return nil
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, out)
}

func (f *fakeBackend) Calls() []backendCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]backendCall(nil), f.calls...)
}

var testSession = models.Session{Token: "token-123", Subject: "user-1"}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func line(productID string, price string, qty int, attrs ...string) models.LineItem {
	if attrs == nil {
		attrs = []string{}
	}
	return models.LineItem{
		ProductID:   productID,
		Name:        "Product " + productID,
		UnitPrice:   dec(price),
		Quantity:    qty,
		Attributes:  attrs,
		PaymentType: models.PaymentMoney,
	}
}

func remoteCart(items ...models.RemoteCartItem) *models.RemoteCart {
	if items == nil {
		items = []models.RemoteCartItem{}
	}
	return &models.RemoteCart{ID: "cart-1", UserID: "user-1", Items: items}
}

func remoteItem(productID, price string, qty int) models.RemoteCartItem {
	return models.RemoteCartItem{
		Product:  models.RemoteProduct{ID: productID, Title: "Remote " + productID, Price: dec(price)},
		Quantity: qty,
		Price:    dec(price),
	}
}

type testServices struct {
	backend  *fakeBackend
	store    *CartStore
	cartSync *CartSyncService
	loyalty  *LoyaltyService
	cart     *CartService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()

	backend := &fakeBackend{}
	cache := repositories.NewMemoryCartCache()
	logger := zap.NewNop()
	store := NewCartStore(cache, logger)
	require.NoError(t, store.Rehydrate(context.Background()))

	cartSync := NewCartSyncService(backend, store, logger)
	loyalty := NewLoyaltyService(backend, cache, models.DefaultPointsRate(), 2, logger)

	return &testServices{
		backend:  backend,
		store:    store,
		cartSync: cartSync,
		loyalty:  loyalty,
		cart:     NewCartService(store, cartSync, loyalty, logger),
	}
}

func expiredSession() models.Session {
	past := time.Now().Add(-time.Hour)
	return models.Session{Token: "old", ExpiresAt: &past}
}
