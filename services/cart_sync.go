package services

import (
	"context"
	"net/http"
	"shop-cart/models"
	"shop-cart/utils"
	"sync/atomic"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

// Backend is the REST collaborator. *libs.APIClient implements it.
type Backend interface {
	Do(ctx context.Context, session models.Session, method, path string, body, out any) error
}

var ErrRequestInFlight = errors.New("a request of this kind is already in flight")

type cartOp int

const (
	opFetch cartOp = iota
	opAdd
	opUpdate
	opRemove
	opCount
)

func (o cartOp) String() string {
	return [...]string{"fetch", "add", "update", "remove"}[o]
}

type cartItemBody struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity,omitempty"`
}

// CartSyncService mirrors cart operations to the backend and hands the
// returned snapshot to the store. At most one request per operation kind
// runs at a time and nothing is retried.
type CartSyncService struct {
	backend  Backend
	store    *CartStore
	logger   *zap.Logger
	inFlight [opCount]atomic.Bool
	now      func() time.Time
}

func NewCartSyncService(backend Backend, store *CartStore, logger *zap.Logger) *CartSyncService {
	return &CartSyncService{backend: backend, store: store, logger: logger, now: time.Now}
}

// Fetch never fails: when the backend cannot be reached or refuses, it logs
// and returns nil so callers keep working from the local cart.
func (s *CartSyncService) Fetch(ctx context.Context, session models.Session) *models.RemoteCart {
	if !session.Authenticated() {
		return nil
	}

	gen := s.store.Generation()
	remote, err := s.call(ctx, session, opFetch, http.MethodGet, nil)
	if err != nil {
		if appErr := models.AsAppError(err); appErr.Status == http.StatusNotFound {
			remote = &models.RemoteCart{Items: []models.RemoteCartItem{}}
		} else {
			s.logger.Warn("cart fetch failed, using local cart", zap.Error(err))
			return nil
		}
	}

	if !s.store.ApplyRemote(gen, remote) {
		s.logger.Debug("dropping cart fetched before the session changed")
		return nil
	}
	return remote
}

func (s *CartSyncService) Add(ctx context.Context, session models.Session, productID string, quantity int) (*models.RemoteCart, error) {
	return s.mutate(ctx, session, opAdd, http.MethodPost, &cartItemBody{ProductID: productID, Quantity: quantity})
}

func (s *CartSyncService) UpdateQuantity(ctx context.Context, session models.Session, productID string, quantity int) (*models.RemoteCart, error) {
	if quantity < 1 {
		return s.Remove(ctx, session, productID)
	}
	return s.mutate(ctx, session, opUpdate, http.MethodPatch, &cartItemBody{ProductID: productID, Quantity: quantity})
}

func (s *CartSyncService) Remove(ctx context.Context, session models.Session, productID string) (*models.RemoteCart, error) {
	return s.mutate(ctx, session, opRemove, http.MethodDelete, &cartItemBody{ProductID: productID})
}

func (s *CartSyncService) mutate(ctx context.Context, session models.Session, op cartOp, method string, body *cartItemBody) (*models.RemoteCart, error) {
	if err := utils.RequireSession(session, s.now()); err != nil {
		return nil, err
	}

	gen := s.store.Generation()
	remote, err := s.call(ctx, session, op, method, body)
	if err != nil {
		return nil, err
	}

	s.store.ApplyRemote(gen, remote)
	return remote, nil
}

func (s *CartSyncService) call(ctx context.Context, session models.Session, op cartOp, method string, body *cartItemBody) (*models.RemoteCart, error) {
	if !s.inFlight[op].CompareAndSwap(false, true) {
		return nil, errors.Wrap(ErrRequestInFlight, op.String())
	}
	defer s.inFlight[op].Store(false)

	path := "/cart/items"
	if op == opFetch {
		path = "/cart"
	}

	var remote models.RemoteCart
	var reqBody any
	if body != nil {
		reqBody = body
	}
	if err := s.backend.Do(ctx, session, method, path, reqBody, &remote); err != nil {
		return nil, err
	}
	if remote.Items == nil {
		remote.Items = []models.RemoteCartItem{}
	}
	return &remote, nil
}
