package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "Pending"
	StatusConfirmed Status = "Confirmed"
	StatusDelivered Status = "Delivered"
	StatusCanceled  Status = "Canceled"
)

var statuses = []Status{StatusPending, StatusConfirmed, StatusDelivered, StatusCanceled}

// ParseStatus accepts any letter case.
func ParseStatus(s string) (Status, error) {
	s = strings.TrimSpace(s)
	for _, st := range statuses {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// IsTerminal reports whether no owner-driven transition leaves s.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCanceled
}

// NoAddress is stored when the user has no address on file.
const NoAddress = "User don't have any address yet!"

type Order struct {
	ID         string
	UserID     string
	Status     Status
	TotalPrice decimal.Decimal
	Address    string
	Lines      []Line
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Line is a write-once snapshot of one cart line at checkout.
type Line struct {
	ProductID  string
	Name       string
	Quantity   int32
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}

func NewLine(productID, name string, qty int32, unit decimal.Decimal) Line {
	return Line{
		ProductID:  productID,
		Name:       name,
		Quantity:   qty,
		UnitPrice:  unit,
		TotalPrice: unit.Mul(decimal.NewFromInt32(qty)),
	}
}

func SumLines(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.TotalPrice)
	}
	return total
}

func ShippingAddress(addr string) string {
	if strings.TrimSpace(addr) == "" {
		return NoAddress
	}
	return addr
}
