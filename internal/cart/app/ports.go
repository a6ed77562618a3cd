package app

import (
	"context"

	"github.com/dwikikusuma/nomino/internal/cart/domain"
)

type CartRepo interface {
	GetByID(ctx context.Context, cartID string) (domain.Cart, error)
	GetByUser(ctx context.Context, userID string) (domain.Cart, error)
	GetOrCreate(ctx context.Context, userID string) (domain.Cart, error)
	AddItem(ctx context.Context, cartID string, item domain.CartItem) error
	SetItemQuantity(ctx context.Context, cartID string, item domain.CartItem) error
	RemoveItem(ctx context.Context, cartID string, productID string) error
	ClearCart(ctx context.Context, cartID string) error
}
