package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	cartapp "github.com/dwikikusuma/nomino/internal/cart/app"
	cartpg "github.com/dwikikusuma/nomino/internal/cart/infra/postgres"
	catalogapp "github.com/dwikikusuma/nomino/internal/catalog/app"
	catalogpg "github.com/dwikikusuma/nomino/internal/catalog/infra/postgres"
	"github.com/dwikikusuma/nomino/internal/order/app"
	"github.com/dwikikusuma/nomino/internal/order/domain"
	"github.com/dwikikusuma/nomino/internal/outbox"
	"github.com/dwikikusuma/nomino/pkg/postgres"
)

// Store runs order transactions on Postgres. The cart row is taken with
// SELECT ... FOR UPDATE, so a second checkout of the same cart waits and
// then finds it deleted.
type Store struct {
	pool   *pgxpool.Pool
	orders *OrderRepo
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, orders: NewOrderRepo(pool)}
}

var _ app.Store = (*Store)(nil)

func (s *Store) InTx(ctx context.Context, fn func(tx app.Tx) error) error {
	return postgres.WithTx(ctx, s.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		return fn(&txScope{
			carts:   cartStore{repo: cartpg.NewCartRepo(tx)},
			catalog: catalogReader{repo: catalogpg.NewProductRepo(tx)},
			orders:  lockingOrders{NewOrderRepo(tx)},
			events:  eventWriter{repo: outbox.NewRepo(tx)},
		})
	})
}

func (s *Store) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	return s.orders.GetOrder(ctx, orderID)
}

func (s *Store) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.orders.ListOrders(ctx, userID)
}

type txScope struct {
	carts   cartStore
	catalog catalogReader
	orders  lockingOrders
	events  eventWriter
}

func (t *txScope) Carts() app.CartStore       { return t.carts }
func (t *txScope) Catalog() app.CatalogReader { return t.catalog }
func (t *txScope) Orders() app.OrderStore     { return t.orders }
func (t *txScope) Events() app.EventWriter    { return t.events }

type cartStore struct {
	repo *cartpg.CartRepo
}

func (c cartStore) GetCart(ctx context.Context, cartID string) (app.Cart, error) {
	cart, err := c.repo.LockByID(ctx, cartID)
	if err != nil {
		return app.Cart{}, mapNotFound(err, cartapp.ErrNotFound)
	}
	return app.Cart{ID: cart.ID, UserID: cart.UserID}, nil
}

func (c cartStore) ListLines(ctx context.Context, cartID string) ([]app.CartLine, error) {
	items, err := c.repo.ListItems(ctx, cartID)
	if err != nil {
		return nil, err
	}
	lines := make([]app.CartLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, app.CartLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return lines, nil
}

func (c cartStore) DeleteCart(ctx context.Context, cartID string) error {
	return mapNotFound(c.repo.Delete(ctx, cartID), cartapp.ErrNotFound)
}

type catalogReader struct {
	repo *catalogpg.ProductRepo
}

// GetPrice reads without locking; a concurrent price change decides which
// price the snapshot gets.
func (c catalogReader) GetPrice(ctx context.Context, productID string) (app.PricedItem, error) {
	p, err := c.repo.Get(ctx, productID)
	if err != nil {
		return app.PricedItem{}, mapNotFound(err, catalogapp.ErrNotFound)
	}
	return app.PricedItem{ProductID: p.ID, Name: p.Name, Price: p.Price}, nil
}

type lockingOrders struct {
	*OrderRepo
}

func (o lockingOrders) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	return o.GetOrderForUpdate(ctx, orderID)
}

type eventWriter struct {
	repo *outbox.Repo
}

func (e eventWriter) Append(ctx context.Context, ev domain.Event) error {
	return e.repo.Append(ctx, ev.OrderID, ev.Type, ev)
}

func mapNotFound(err, notFound error) error {
	if errors.Is(err, notFound) {
		return app.ErrNotFound
	}
	return err
}
