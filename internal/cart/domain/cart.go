package domain

import "time"

type CartItem struct {
	ProductID string
	Quantity  int32
	AddedAt   time.Time
}

// Cart is a user's open basket. A user has at most one; it disappears when
// an order is placed from it.
type Cart struct {
	ID        string
	UserID    string
	Items     []CartItem
	CreatedAt time.Time
}
