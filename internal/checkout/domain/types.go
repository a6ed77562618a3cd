package domain

import "github.com/shopspring/decimal"

// QuoteLine prices one cart line at the current catalog price.
type QuoteLine struct {
	ProductID string
	Name      string
	Quantity  int32
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// Quote is a preview only. Prices can change before an order is placed.
type Quote struct {
	CartID string
	Lines  []QuoteLine
	Total  decimal.Decimal
}
