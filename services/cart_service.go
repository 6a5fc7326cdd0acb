package services

import (
	"context"
	"shop-cart/models"
	"shop-cart/utils"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

// CartService applies a change to the local cart first and then mirrors it
// to the backend. When the backend rejects the change the local cart is put
// back the way it was, so a failed write is never left half applied.
type CartService struct {
	store    *CartStore
	cartSync *CartSyncService
	loyalty  *LoyaltyService
	logger   *zap.Logger
	now      func() time.Time
}

func NewCartService(store *CartStore, cartSync *CartSyncService, loyalty *LoyaltyService, logger *zap.Logger) *CartService {
	return &CartService{store: store, cartSync: cartSync, loyalty: loyalty, logger: logger, now: time.Now}
}

func (s *CartService) View(ctx context.Context, session models.Session, refresh bool) models.CartView {
	s.store.Bind(ctx, session)
	if refresh {
		s.cartSync.Fetch(ctx, session)
	}
	return models.CartView{Cart: s.store.View(), Local: s.store.Cart(), Remote: s.store.Remote()}
}

func (s *CartService) AddItem(ctx context.Context, session models.Session, req models.AddItemRequest) (models.CartView, error) {
	if err := utils.RequireSession(session, s.now()); err != nil {
		return models.CartView{}, err
	}

	line := req.LineItem()
	if line.PaymentType == models.PaymentHybrid && req.PayWith != "" {
		var available int64
		if req.PayWith == models.PaymentPoints {
			available = s.loyalty.Balance(ctx, session).AvailablePoints
		}
		selected, err := SelectPaymentType(line, req.PayWith, available)
		if err != nil {
			return models.CartView{}, err
		}
		line = selected
	}

	return s.apply(ctx, session, line.ProductID,
		func(c models.Cart) (models.Cart, error) { return AddLine(c, line) },
		func(int) (*models.RemoteCart, error) {
			return s.cartSync.Add(ctx, session, line.ProductID, line.Quantity)
		},
		nil,
	)
}

func (s *CartService) UpdateItem(ctx context.Context, session models.Session, req models.UpdateItemRequest) (models.CartView, error) {
	if err := utils.RequireSession(session, s.now()); err != nil {
		return models.CartView{}, err
	}
	return s.apply(ctx, session, req.ProductID,
		func(c models.Cart) (models.Cart, error) {
			return UpdateLineQuantity(c, req.ProductID, req.Attributes, req.Quantity)
		},
		func(remaining int) (*models.RemoteCart, error) {
			return s.cartSync.UpdateQuantity(ctx, session, req.ProductID, remaining)
		},
		func(int) (*models.RemoteCart, error) {
			return s.cartSync.UpdateQuantity(ctx, session, req.ProductID, req.Quantity)
		},
	)
}

func (s *CartService) DecrementItem(ctx context.Context, session models.Session, req models.RemoveItemRequest) (models.CartView, error) {
	if err := utils.RequireSession(session, s.now()); err != nil {
		return models.CartView{}, err
	}
	return s.apply(ctx, session, req.ProductID,
		func(c models.Cart) (models.Cart, error) { return DecrementLine(c, req.ProductID, req.Attributes) },
		func(remaining int) (*models.RemoteCart, error) {
			return s.cartSync.UpdateQuantity(ctx, session, req.ProductID, remaining)
		},
		func(held int) (*models.RemoteCart, error) {
			return s.cartSync.UpdateQuantity(ctx, session, req.ProductID, held-1)
		},
	)
}

func (s *CartService) RemoveItem(ctx context.Context, session models.Session, req models.RemoveItemRequest) (models.CartView, error) {
	if err := utils.RequireSession(session, s.now()); err != nil {
		return models.CartView{}, err
	}
	return s.apply(ctx, session, req.ProductID,
		func(c models.Cart) (models.Cart, error) { return RemoveLine(c, req.ProductID, req.Attributes) },
		func(remaining int) (*models.RemoteCart, error) {
			if remaining > 0 {
				return s.cartSync.UpdateQuantity(ctx, session, req.ProductID, remaining)
			}
			return s.cartSync.Remove(ctx, session, req.ProductID)
		},
		func(int) (*models.RemoteCart, error) {
			return s.cartSync.Remove(ctx, session, req.ProductID)
		},
	)
}

func (s *CartService) Clear(ctx context.Context) (models.CartView, error) {
	if err := s.store.Clear(ctx); err != nil {
		return models.CartView{}, err
	}
	return s.View(ctx, models.Session{}, false), nil
}

// Logout forgets the cart and the cached points balance.
func (s *CartService) Logout(ctx context.Context) error {
	if err := s.store.Logout(ctx); err != nil {
		return err
	}
	return s.loyalty.Forget(ctx)
}

// apply runs the local change, then the remote one with the product's
// remaining local quantity. When the backend refuses, only that product's
// lines are put back. A product the backend holds but the local cart has
// never seen, such as one added on another device, goes straight to
// remoteOnly with the backend's quantity.
func (s *CartService) apply(
	ctx context.Context,
	session models.Session,
	productID string,
	change func(models.Cart) (models.Cart, error),
	remote func(remaining int) (*models.RemoteCart, error),
	remoteOnly func(held int) (*models.RemoteCart, error),
) (models.CartView, error) {
	s.store.Bind(ctx, session)
	gen := s.store.Generation()

	before, after, err := s.store.Apply(ctx, change)
	if err != nil {
		held := s.store.Remote().QuantityOf(productID)
		if remoteOnly == nil || !errors.Is(err, ErrLineNotFound) || findProduct(before, productID) || held == 0 {
			return models.CartView{}, err
		}
		if _, err := remoteOnly(held); err != nil {
			return models.CartView{}, err
		}
		return s.View(ctx, session, false), nil
	}

	if _, err := remote(productQuantity(after, productID)); err != nil {
		s.store.Restore(ctx, gen, productID, before)
		s.logger.Warn("backend rejected cart change, product lines restored",
			zap.String("product_id", productID),
			zap.Error(err),
		)
		return models.CartView{}, err
	}

	return s.View(ctx, session, false), nil
}

func productQuantity(cart models.Cart, productID string) int {
	total := 0
	for _, item := range cart.Items {
		if item.ProductID == productID {
			total += item.Quantity
		}
	}
	return total
}
