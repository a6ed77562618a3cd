package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	IsSpecial   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type NewProduct struct {
	Name        string
	Description string
	Price       decimal.Decimal
	IsSpecial   bool
}

// MaxPrice is the largest price the products table accepts.
var MaxPrice = decimal.RequireFromString("999999.99")
