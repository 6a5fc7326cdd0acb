package services

import (
	"context"
	"encoding/json"
	"fmt"
	"shop-cart/models"
	"shop-cart/repositories"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

const CartSchemaVersion = 1

var cartCacheKey = fmt.Sprintf("cart:v%d", CartSchemaVersion)

// cartKey scopes the persisted cart to a user. The empty subject is the
// device's guest cart.
func cartKey(owner string) string {
	if owner == "" {
		return cartCacheKey
	}
	return cartCacheKey + ":" + owner
}

// CartStore owns the optimistic local cart and the last authoritative
// snapshot from the backend for one user at a time. All methods are safe
// for concurrent use.
type CartStore struct {
	mu         sync.RWMutex
	cache      repositories.CartCache
	logger     *zap.Logger
	owner      string
	local      models.Cart
	remote     *models.RemoteCart
	generation uint64
	now        func() time.Time
}

func NewCartStore(cache repositories.CartCache, logger *zap.Logger) *CartStore {
	return &CartStore{
		cache:  cache,
		logger: logger,
		local:  Recalculate(models.Cart{Items: []models.LineItem{}}),
		now:    time.Now,
	}
}

// Rehydrate loads the persisted cart as is. An entry written under another
// schema version or that no longer decodes is discarded.
func (s *CartStore) Rehydrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rehydrateLocked(ctx)
}

func (s *CartStore) rehydrateLocked(ctx context.Context) error {
	key := cartKey(s.owner)
	raw, err := s.cache.Get(ctx, key)
	if errors.Is(err, repositories.ErrCacheMiss) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "load cart")
	}

	var persisted models.PersistedCart
	if err := json.Unmarshal(raw, &persisted); err != nil || persisted.Version != CartSchemaVersion {
		s.logger.Warn("discarding stale cart cache",
			zap.Int("version", persisted.Version),
			zap.NamedError("decode", err),
		)
		if err := s.cache.Delete(ctx, key); err != nil {
			return errors.Wrap(err, "discard cart")
		}
		return nil
	}

	if persisted.Cart.Items == nil {
		persisted.Cart.Items = []models.LineItem{}
	}
	s.local = Recalculate(persisted.Cart)
	s.logger.Info("cart rehydrated",
		zap.String("user_id", s.owner),
		zap.Int("lines", len(s.local.Items)),
		zap.Time("saved_at", persisted.SavedAt),
	)
	return nil
}

// Owner is the subject the store currently holds the cart for.
func (s *CartStore) Owner() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.owner
}

// Bind hands the store to the session's user. A guest cart is claimed by
// the first user to sign in. Any other change of user drops the in-memory
// cart and backend snapshot and loads that user's persisted cart; the
// previous user's cart stays in the cache under their own key.
func (s *CartStore) Bind(ctx context.Context, session models.Session) {
	if !session.Authenticated() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if session.Subject == s.owner {
		return
	}

	if s.owner == "" && !s.local.IsEmpty() {
		s.owner = session.Subject
		s.remote = nil
		s.generation++
		s.persistLocked(ctx)
		if err := s.cache.Delete(ctx, cartKey("")); err != nil {
			s.logger.Warn("drop guest cart", zap.Error(err))
		}
		s.logger.Info("guest cart claimed", zap.String("user_id", s.owner))
		return
	}

	previous := s.owner
	s.owner = session.Subject
	s.local = Recalculate(models.Cart{Items: []models.LineItem{}})
	s.remote = nil
	s.generation++
	s.logger.Info("cart user changed", zap.String("from", previous), zap.String("to", s.owner))

	if err := s.rehydrateLocked(ctx); err != nil {
		s.logger.Warn("load cart for user", zap.String("user_id", s.owner), zap.Error(err))
	}
}

func (s *CartStore) Cart() models.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.local.Clone()
}

func (s *CartStore) Remote() *models.RemoteCart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRemote(s.remote)
}

// View is the reconciled cart, preferring the backend snapshot when known.
func (s *CartStore) View() models.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Reconcile(s.local, s.remote)
}

// Generation changes every time the cart is cleared or the user logs out.
func (s *CartStore) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// ApplyRemote stores a backend snapshot fetched during generation gen.
// Results that arrive after a clear or logout are dropped.
func (s *CartStore) ApplyRemote(gen uint64, remote *models.RemoteCart) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return false
	}
	s.remote = cloneRemote(remote)
	return true
}

func (s *CartStore) Add(ctx context.Context, line models.LineItem) (models.Cart, error) {
	return s.mutate(ctx, func(c models.Cart) (models.Cart, error) {
		return AddLine(c, line)
	})
}

func (s *CartStore) Remove(ctx context.Context, productID string, attributes []string) (models.Cart, error) {
	return s.mutate(ctx, func(c models.Cart) (models.Cart, error) {
		return RemoveLine(c, productID, attributes)
	})
}

func (s *CartStore) Decrement(ctx context.Context, productID string, attributes []string) (models.Cart, error) {
	return s.mutate(ctx, func(c models.Cart) (models.Cart, error) {
		return DecrementLine(c, productID, attributes)
	})
}

func (s *CartStore) UpdateQuantity(ctx context.Context, productID string, attributes []string, quantity int) (models.Cart, error) {
	return s.mutate(ctx, func(c models.Cart) (models.Cart, error) {
		return UpdateLineQuantity(c, productID, attributes, quantity)
	})
}

// Apply runs fn against the local cart and returns the cart as it was
// right before and right after, both taken under the same lock.
func (s *CartStore) Apply(ctx context.Context, fn func(models.Cart) (models.Cart, error)) (models.Cart, models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.local.Clone()
	next, err := fn(s.local)
	if err != nil {
		return before, s.local.Clone(), err
	}
	s.local = next
	s.persistLocked(ctx)
	return before, next.Clone(), nil
}

// Restore puts back the lines productID had in before, a cart captured
// ahead of a mutation the backend rejected. Lines of other products keep
// whatever changed since. It is a no-op once the generation has moved on.
func (s *CartStore) Restore(ctx context.Context, gen uint64, productID string, before models.Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return
	}
	s.local = restoreProductLines(s.local, before, productID)
	s.persistLocked(ctx)
}

// Clear empties the cart after checkout or on request.
func (s *CartStore) Clear(ctx context.Context) error {
	return s.reset(ctx, "clear")
}

// Logout empties the cart whatever it holds so nothing leaks into the next
// session on a shared device.
func (s *CartStore) Logout(ctx context.Context) error {
	return s.reset(ctx, "logout")
}

func (s *CartStore) reset(ctx context.Context, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.local = Recalculate(models.Cart{Items: []models.LineItem{}})
	s.remote = nil
	s.generation++

	if err := s.cache.Delete(ctx, cartKey(s.owner)); err != nil {
		return errors.Wrapf(err, "%s cart", reason)
	}
	s.logger.Info("cart cleared",
		zap.String("reason", reason),
		zap.String("user_id", s.owner),
		zap.Uint64("generation", s.generation),
	)
	return nil
}

func (s *CartStore) mutate(ctx context.Context, fn func(models.Cart) (models.Cart, error)) (models.Cart, error) {
	_, after, err := s.Apply(ctx, fn)
	return after, err
}

// persistLocked writes the cart through to the cache. Failures are logged:
// the in-memory cart stays authoritative for the running process.
func (s *CartStore) persistLocked(ctx context.Context) {
	raw, err := json.Marshal(models.PersistedCart{
		Version: CartSchemaVersion,
		SavedAt: s.now().UTC(),
		Cart:    s.local,
	})
	if err == nil {
		err = s.cache.Set(ctx, cartKey(s.owner), raw)
	}
	if err != nil {
		s.logger.Error("persist cart failed", zap.Error(err))
	}
}

// restoreProductLines swaps the lines of productID in current for the ones
// it had in before, at the position they held.
func restoreProductLines(current, before models.Cart, productID string) models.Cart {
	var restored []models.LineItem
	anchor, seen := 0, false
	for _, item := range before.Clone().Items {
		if item.ProductID == productID {
			restored = append(restored, item)
			seen = true
		} else if !seen {
			anchor++
		}
	}

	present := findProduct(current, productID)
	items := make([]models.LineItem, 0, len(current.Items)+len(restored))
	kept, inserted := 0, false
	for _, item := range current.Clone().Items {
		if item.ProductID == productID {
			if !inserted {
				items = append(items, restored...)
				inserted = true
			}
			continue
		}
		if !present && !inserted && kept == anchor {
			items = append(items, restored...)
			inserted = true
		}
		items = append(items, item)
		kept++
	}
	if !inserted {
		items = append(items, restored...)
	}
	return Recalculate(models.Cart{Items: items})
}

func findProduct(cart models.Cart, productID string) bool {
	for _, item := range cart.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

func cloneRemote(remote *models.RemoteCart) *models.RemoteCart {
	if remote == nil {
		return nil
	}
	out := *remote
	out.Items = append([]models.RemoteCartItem(nil), remote.Items...)
	return &out
}
