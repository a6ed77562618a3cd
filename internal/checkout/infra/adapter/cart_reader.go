package adapter

import (
	"context"
	"errors"

	"github.com/dwikikusuma/nomino/internal/auth"
	cartapp "github.com/dwikikusuma/nomino/internal/cart/app"
	checkoutapp "github.com/dwikikusuma/nomino/internal/checkout/app"
)

type CartServiceReader struct {
	svc *cartapp.Service
}

func NewCartServiceReader(svc *cartapp.Service) *CartServiceReader {
	return &CartServiceReader{svc: svc}
}

// GetCart does not create a cart; quoting a user without one is an empty
// cart.
func (r *CartServiceReader) GetCart(ctx context.Context, userID string) (string, []checkoutapp.CartItem, error) {
	cart, err := r.svc.GetMine(ctx, auth.User{ID: userID})
	if errors.Is(err, cartapp.ErrNotFound) {
		return "", nil, checkoutapp.ErrEmptyCart
	}
	if err != nil {
		return "", nil, err
	}

	items := make([]checkoutapp.CartItem, 0, len(cart.Items))
	for _, it := range cart.Items {
		items = append(items, checkoutapp.CartItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}
	return cart.ID, items, nil
}
