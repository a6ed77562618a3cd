package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dwikikusuma/nomino/internal/auth"
	"github.com/dwikikusuma/nomino/internal/order/domain"
)

type Service struct {
	store Store
	cache OrderCache
	log   *slog.Logger
	now   func() time.Time
	newID func() string
}

type Option func(*Service)

func WithCache(c OrderCache) Option { return func(s *Service) { s.cache = c } }

func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.log = l } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func WithIDGenerator(fn func() string) Option { return func(s *Service) { s.newID = fn } }

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		log:   slog.Default(),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// PlaceOrder converts the cart into a Pending order. Reading the cart,
// snapshotting prices, writing the order and deleting the cart happen in
// one transaction. A retry after the cart is gone fails with NotFound.
func (s *Service) PlaceOrder(ctx context.Context, user auth.User, cartID string) (domain.Order, error) {
	if !isUUID(cartID) {
		return domain.Order{}, newError(KindNotFound, "No cart found with this UUID")
	}

	var placed domain.Order
	err := s.store.InTx(ctx, func(tx Tx) error {
		cart, err := tx.Carts().GetCart(ctx, cartID)
		if errors.Is(err, ErrNotFound) {
			return newError(KindNotFound, "No cart found with this UUID")
		}
		if err != nil {
			return fmt.Errorf("load cart: %w", err)
		}

		if err := Authorize(user, Resource{OwnerID: cart.UserID}, ActionPlace).Err(); err != nil {
			return err
		}

		lines, err := tx.Carts().ListLines(ctx, cartID)
		if err != nil {
			return fmt.Errorf("list cart lines: %w", err)
		}
		if len(lines) == 0 {
			return newError(KindEmptyCart, "Cart is empty!")
		}

		snap, err := resolvePrices(ctx, tx.Catalog(), lines)
		if err != nil {
			return err
		}

		now := s.now()
		placed, err = tx.Orders().CreateOrder(ctx, domain.Order{
			ID:         s.newID(),
			UserID:     cart.UserID,
			Status:     domain.StatusPending,
			TotalPrice: snap.Total,
			Address:    domain.ShippingAddress(user.Address),
			Lines:      snap.Lines,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		if err := tx.Events().Append(ctx, domain.NewEvent(domain.EventPlaced, placed, "", user.ID, now)); err != nil {
			return fmt.Errorf("append event: %w", err)
		}

		if err := tx.Carts().DeleteCart(ctx, cartID); err != nil {
			return fmt.Errorf("delete cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Order{}, s.fail(ctx, "place order", err,
			slog.String("cart_id", cartID), slog.String("user_id", user.ID))
	}

	s.log.InfoContext(ctx, "order placed",
		slog.String("order_id", placed.ID),
		slog.String("user_id", placed.UserID),
		slog.String("total", placed.TotalPrice.StringFixed(2)),
		slog.Int("lines", len(placed.Lines)),
	)
	return placed, nil
}

// CancelOrder is idempotent: canceling a Canceled order succeeds without
// writing anything.
func (s *Service) CancelOrder(ctx context.Context, user auth.User, orderID string) (domain.Order, error) {
	return s.changeStatus(ctx, user, orderID, domain.StatusCanceled, ActionCancel, "cancel order")
}

// UpdateOrderStatus routes cancellation through CancelOrder. Other targets
// need staff and are applied without a state-machine check.
func (s *Service) UpdateOrderStatus(ctx context.Context, user auth.User, orderID string, status domain.Status) (domain.Order, error) {
	if status == domain.StatusCanceled {
		return s.CancelOrder(ctx, user, orderID)
	}
	if _, err := domain.ParseStatus(string(status)); err != nil {
		return domain.Order{}, newError(KindInvalidInput, err.Error())
	}

	// Decided before the lookup so non-staff cannot probe order ids.
	if err := Authorize(user, Resource{}, ActionUpdateStatus).Err(); err != nil {
		return domain.Order{}, s.fail(ctx, "update order status", err,
			slog.String("order_id", orderID), slog.String("user_id", user.ID))
	}

	return s.changeStatus(ctx, user, orderID, status, ActionUpdateStatus, "update order status")
}

func (s *Service) changeStatus(ctx context.Context, user auth.User, orderID string, next domain.Status, act Action, op string) (domain.Order, error) {
	if !isUUID(orderID) {
		return domain.Order{}, newError(KindNotFound, "order not found")
	}

	var result domain.Order
	var changed bool
	err := s.store.InTx(ctx, func(tx Tx) error {
		current, err := tx.Orders().GetOrder(ctx, orderID)
		if errors.Is(err, ErrNotFound) {
			return newError(KindNotFound, "order not found")
		}
		if err != nil {
			return fmt.Errorf("load order: %w", err)
		}

		res := Resource{OwnerID: current.UserID, Status: current.Status}
		if err := Authorize(user, res, act).Err(); err != nil {
			return err
		}

		if current.Status == next {
			result = current
			return nil
		}

		now := s.now()
		result, err = tx.Orders().UpdateStatus(ctx, orderID, next, now)
		if err != nil {
			return fmt.Errorf("update status: %w", err)
		}

		typ := domain.EventStatusChanged
		if next == domain.StatusCanceled {
			typ = domain.EventCanceled
		}
		if err := tx.Events().Append(ctx, domain.NewEvent(typ, result, current.Status, user.ID, now)); err != nil {
			return fmt.Errorf("append event: %w", err)
		}

		changed = true
		return nil
	})
	if err != nil {
		return domain.Order{}, s.fail(ctx, op, err,
			slog.String("order_id", orderID), slog.String("user_id", user.ID))
	}

	if changed {
		s.invalidate(ctx, orderID)
		s.log.InfoContext(ctx, "order status changed",
			slog.String("order_id", orderID),
			slog.String("status", string(result.Status)),
			slog.String("actor_id", user.ID),
		)
	}
	return result, nil
}

// GetOrder hides orders the user may not see behind NotFound.
func (s *Service) GetOrder(ctx context.Context, user auth.User, orderID string) (domain.Order, error) {
	if !isUUID(orderID) {
		return domain.Order{}, newError(KindNotFound, "order not found")
	}

	o, err := s.cachedOrder(ctx, orderID)
	if errors.Is(err, ErrNotFound) {
		return domain.Order{}, newError(KindNotFound, "order not found")
	}
	if err != nil {
		return domain.Order{}, s.fail(ctx, "get order", err, slog.String("order_id", orderID))
	}

	if err := Authorize(user, Resource{OwnerID: o.UserID, Status: o.Status}, ActionView).Err(); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

// ListOrders returns newest first. Staff see every order.
func (s *Service) ListOrders(ctx context.Context, user auth.User) ([]domain.Order, error) {
	owner := user.ID
	if user.IsStaff {
		owner = ""
	}

	orders, err := s.store.ListOrders(ctx, owner)
	if err != nil {
		return nil, s.fail(ctx, "list orders", err, slog.String("user_id", user.ID))
	}
	return orders, nil
}

func (s *Service) cachedOrder(ctx context.Context, orderID string) (domain.Order, error) {
	if s.cache == nil {
		return s.store.GetOrder(ctx, orderID)
	}

	o, err := s.cache.Get(ctx, orderID)
	if err == nil {
		return o, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		s.log.WarnContext(ctx, "order cache get failed", slog.String("order_id", orderID), slog.Any("err", err))
	}

	// Taken before the store read; see OrderCache.
	version, verErr := s.cache.Version(ctx, orderID)
	if verErr != nil {
		s.log.WarnContext(ctx, "order cache version failed", slog.String("order_id", orderID), slog.Any("err", verErr))
	}

	o, err = s.store.GetOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	if verErr == nil {
		if err := s.cache.Set(ctx, o, version); err != nil {
			s.log.WarnContext(ctx, "order cache set failed", slog.String("order_id", orderID), slog.Any("err", err))
		}
	}
	return o, nil
}

func (s *Service) invalidate(ctx context.Context, orderID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, orderID); err != nil {
		s.log.WarnContext(ctx, "order cache delete failed", slog.String("order_id", orderID), slog.Any("err", err))
	}
}

// fail returns expected failures untouched and wraps everything else.
func (s *Service) fail(ctx context.Context, op string, err error, attrs ...slog.Attr) error {
	attrs = append(attrs, slog.String("op", op))

	if kind := KindOf(err); kind != KindInternal {
		s.log.LogAttrs(ctx, slog.LevelInfo, "order request rejected",
			append(attrs, slog.String("kind", kind.String()), slog.String("reason", err.Error()))...)
		return err
	}

	s.log.LogAttrs(ctx, slog.LevelError, "order transaction failed", append(attrs, slog.Any("err", err))...)
	return fmt.Errorf("%s: %w", op, err)
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
