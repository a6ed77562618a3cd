package app

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dwikikusuma/nomino/internal/order/domain"
)

type Cart struct {
	ID     string
	UserID string
}

type CartLine struct {
	ProductID string
	Quantity  int32
}

type PricedItem struct {
	ProductID string
	Name      string
	Price     decimal.Decimal
}

// CatalogReader returns ErrNotFound for unknown products.
type CatalogReader interface {
	GetPrice(ctx context.Context, productID string) (PricedItem, error)
}

// CartStore is only used inside a transaction. GetCart holds the cart row
// until the transaction ends, so two checkouts of one cart serialize.
type CartStore interface {
	GetCart(ctx context.Context, cartID string) (Cart, error)
	ListLines(ctx context.Context, cartID string) ([]CartLine, error)
	DeleteCart(ctx context.Context, cartID string) error
}

// OrderStore.GetOrder locks the row for the rest of the transaction.
type OrderStore interface {
	CreateOrder(ctx context.Context, o domain.Order) (domain.Order, error)
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status domain.Status, at time.Time) (domain.Order, error)
}

type EventWriter interface {
	Append(ctx context.Context, e domain.Event) error
}

type Tx interface {
	Carts() CartStore
	Catalog() CatalogReader
	Orders() OrderStore
	Events() EventWriter
}

// Store commits the work done in fn only when fn returns nil.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)
	// ListOrders returns every order when userID is empty.
	ListOrders(ctx context.Context, userID string) ([]domain.Order, error)
}

var ErrCacheMiss = errors.New("cache miss")

// OrderCache is filled after a store read and emptied after a commit. A fill
// reads Version before the store read and passes it to Set, so a copy read
// before a concurrent Delete is dropped instead of stored.
type OrderCache interface {
	Get(ctx context.Context, orderID string) (domain.Order, error)
	// Version changes every time Delete runs for orderID.
	Version(ctx context.Context, orderID string) (int64, error)
	// Set stores o unless Delete ran for o.ID after version was read.
	Set(ctx context.Context, o domain.Order, version int64) error
	Delete(ctx context.Context, orderID string) error
}
