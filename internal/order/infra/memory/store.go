// Package memory is an in-process order store. A transaction holds the
// store lock for its whole duration and works on a private copy of the
// state that replaces the live state only on success.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dwikikusuma/nomino/internal/order/app"
	"github.com/dwikikusuma/nomino/internal/order/domain"
)

type product struct {
	name  string
	price decimal.Decimal
}

type cart struct {
	userID string
	lines  []app.CartLine
}

type state struct {
	products map[string]product
	carts    map[string]cart
	orders   map[string]domain.Order
	events   []domain.Event
}

func (s state) clone() state {
	out := state{
		products: make(map[string]product, len(s.products)),
		carts:    make(map[string]cart, len(s.carts)),
		orders:   make(map[string]domain.Order, len(s.orders)),
		events:   slices.Clone(s.events),
	}
	for k, v := range s.products {
		out.products[k] = v
	}
	for k, v := range s.carts {
		out.carts[k] = cart{userID: v.userID, lines: slices.Clone(v.lines)}
	}
	for k, v := range s.orders {
		out.orders[k] = copyOrder(v)
	}
	return out
}

type Store struct {
	mu    sync.Mutex
	state state

	// failures maps an operation name to the error it returns next.
	failures map[string]error
}

func NewStore() *Store {
	return &Store{
		state: state{
			products: map[string]product{},
			carts:    map[string]cart{},
			orders:   map[string]domain.Order{},
		},
		failures: map[string]error{},
	}
}

var _ app.Store = (*Store)(nil)

func (s *Store) InTx(ctx context.Context, fn func(tx app.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	t := &tx{store: s, st: s.state.clone()}
	if err := fn(t); err != nil {
		return err
	}
	s.state = t.st
	return nil
}

func (s *Store) GetOrder(_ context.Context, orderID string) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.state.orders[orderID]
	if !ok {
		return domain.Order{}, app.ErrNotFound
	}
	return copyOrder(o), nil
}

func (s *Store) ListOrders(_ context.Context, userID string) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Order, 0)
	for _, o := range s.state.orders {
		if userID == "" || o.UserID == userID {
			out = append(out, copyOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// FailNext makes the next call of op inside a transaction return err.
// op is one of GetCart, ListLines, DeleteCart, GetPrice, CreateOrder,
// GetOrder, UpdateStatus, Append.
func (s *Store) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

func (s *Store) PutProduct(id, name string, price decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.products[id] = product{name: name, price: price}
}

func (s *Store) SetPrice(id string, price decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.state.products[id]
	p.price = price
	s.state.products[id] = p
}

// PutCart creates or replaces a cart.
func (s *Store) PutCart(cartID, userID string, lines ...app.CartLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.carts[cartID] = cart{userID: userID, lines: slices.Clone(lines)}
}

func (s *Store) HasCart(cartID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.state.carts[cartID]
	return ok
}

// PutOrder seeds an order, bypassing the engine.
func (s *Store) PutOrder(o domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.orders[o.ID] = copyOrder(o)
}

func (s *Store) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.orders)
}

func (s *Store) Events() []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.state.events)
}

type tx struct {
	store *Store
	st    state
}

func (t *tx) Carts() app.CartStore       { return t }
func (t *tx) Catalog() app.CatalogReader { return t }
func (t *tx) Orders() app.OrderStore     { return t }
func (t *tx) Events() app.EventWriter    { return t }

// injected is called with the store lock held by InTx.
func (t *tx) injected(op string) error {
	err, ok := t.store.failures[op]
	if !ok {
		return nil
	}
	delete(t.store.failures, op)
	return err
}

func (t *tx) GetCart(_ context.Context, cartID string) (app.Cart, error) {
	if err := t.injected("GetCart"); err != nil {
		return app.Cart{}, err
	}
	c, ok := t.st.carts[cartID]
	if !ok {
		return app.Cart{}, app.ErrNotFound
	}
	return app.Cart{ID: cartID, UserID: c.userID}, nil
}

func (t *tx) ListLines(_ context.Context, cartID string) ([]app.CartLine, error) {
	if err := t.injected("ListLines"); err != nil {
		return nil, err
	}
	return slices.Clone(t.st.carts[cartID].lines), nil
}

func (t *tx) DeleteCart(_ context.Context, cartID string) error {
	if err := t.injected("DeleteCart"); err != nil {
		return err
	}
	if _, ok := t.st.carts[cartID]; !ok {
		return app.ErrNotFound
	}
	delete(t.st.carts, cartID)
	return nil
}

func (t *tx) GetPrice(_ context.Context, productID string) (app.PricedItem, error) {
	if err := t.injected("GetPrice"); err != nil {
		return app.PricedItem{}, err
	}
	p, ok := t.st.products[productID]
	if !ok {
		return app.PricedItem{}, app.ErrNotFound
	}
	return app.PricedItem{ProductID: productID, Name: p.name, Price: p.price}, nil
}

func (t *tx) CreateOrder(_ context.Context, o domain.Order) (domain.Order, error) {
	if err := t.injected("CreateOrder"); err != nil {
		return domain.Order{}, err
	}
	if _, dup := t.st.orders[o.ID]; dup {
		return domain.Order{}, fmt.Errorf("order %s already exists", o.ID)
	}
	t.st.orders[o.ID] = copyOrder(o)
	return copyOrder(o), nil
}

func (t *tx) GetOrder(_ context.Context, orderID string) (domain.Order, error) {
	if err := t.injected("GetOrder"); err != nil {
		return domain.Order{}, err
	}
	o, ok := t.st.orders[orderID]
	if !ok {
		return domain.Order{}, app.ErrNotFound
	}
	return copyOrder(o), nil
}

func (t *tx) UpdateStatus(_ context.Context, orderID string, status domain.Status, at time.Time) (domain.Order, error) {
	if err := t.injected("UpdateStatus"); err != nil {
		return domain.Order{}, err
	}
	o, ok := t.st.orders[orderID]
	if !ok {
		return domain.Order{}, app.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = at
	t.st.orders[orderID] = o
	return copyOrder(o), nil
}

func (t *tx) Append(_ context.Context, e domain.Event) error {
	if err := t.injected("Append"); err != nil {
		return err
	}
	t.st.events = append(t.st.events, e)
	return nil
}

func copyOrder(o domain.Order) domain.Order {
	o.Lines = slices.Clone(o.Lines)
	return o
}
