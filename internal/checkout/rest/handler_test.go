package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwikikusuma/nomino/internal/auth"
	"github.com/dwikikusuma/nomino/internal/checkout/app"
)

type stubCart struct{ items []app.CartItem }

func (s stubCart) GetCart(context.Context, string) (string, []app.CartItem, error) {
	if len(s.items) == 0 {
		return "", nil, app.ErrEmptyCart
	}
	return "cart-1", s.items, nil
}

type stubCatalog struct{}

func (stubCatalog) GetProduct(_ context.Context, id string) (app.Product, error) {
	return app.Product{ID: id, Name: "Pecel", Price: decimal.RequireFromString("2.25")}, nil
}

func serve(h *Handler) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, "/cart/quote", nil)
	r = r.WithContext(auth.WithUser(r.Context(), auth.User{ID: "u"}))
	w := httptest.NewRecorder()
	h.Quote(w, r)
	return w
}

func TestQuoteHandler(t *testing.T) {
	h := NewHandler(app.NewService(stubCart{items: []app.CartItem{{ProductID: "p", Quantity: 4}}}, stubCatalog{}, 2))

	w := serve(h)
	require.Equal(t, http.StatusOK, w.Code)

	var body QuoteDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "9.00", body.Total)
	assert.Equal(t, "2.25", body.Lines[0].UnitPrice)
}

func TestQuoteHandlerEmptyCart(t *testing.T) {
	h := NewHandler(app.NewService(stubCart{}, stubCatalog{}, 2))

	w := serve(h)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "empty_cart")
}
