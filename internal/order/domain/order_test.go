package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus(" Delivered ")
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, st)

	_, err = ParseStatus("shipped")
	assert.Error(t, err)
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
	assert.True(t, StatusDelivered.IsTerminal())
	assert.True(t, StatusCanceled.IsTerminal())
}

func TestNewLineAndSum(t *testing.T) {
	a := NewLine("a", "Nasi Goreng", 2, decimal.RequireFromString("5.00"))
	b := NewLine("b", "Es Teh", 1, decimal.RequireFromString("3.50"))

	assert.True(t, a.TotalPrice.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, SumLines([]Line{a, b}).Equal(decimal.RequireFromString("13.50")))
	assert.True(t, SumLines(nil).IsZero())
}

func TestShippingAddress(t *testing.T) {
	assert.Equal(t, NoAddress, ShippingAddress("  "))
	assert.Equal(t, "Jl. Merdeka 5", ShippingAddress("Jl. Merdeka 5"))
}
