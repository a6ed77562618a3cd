package rest

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dwikikusuma/nomino/internal/auth"
	catalogapp "github.com/dwikikusuma/nomino/internal/catalog/app"
	"github.com/dwikikusuma/nomino/internal/checkout/app"
	"github.com/dwikikusuma/nomino/internal/checkout/domain"
	"github.com/dwikikusuma/nomino/pkg/httpx"
)

type Handler struct {
	svc *app.Service
}

func NewHandler(svc *app.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/cart/quote", h.Quote)
}

type QuoteLineDTO struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int32  `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	LineTotal string `json:"line_total"`
}

type QuoteDTO struct {
	CartID string         `json:"cart_id"`
	Lines  []QuoteLineDTO `json:"lines"`
	Total  string         `json:"total"`
}

// GET /api/v1/cart/quote
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.FromContext(r.Context())

	q, err := h.svc.Quote(r.Context(), user.ID)
	switch {
	case err == nil:
		httpx.JSON(w, http.StatusOK, toDTO(q))
	case errors.Is(err, app.ErrEmptyCart):
		httpx.Error(w, http.StatusBadRequest, "empty_cart", "Cart is empty!")
	case errors.Is(err, catalogapp.ErrNotFound):
		httpx.Error(w, http.StatusNotFound, "not_found", "a product in the cart no longer exists")
	default:
		httpx.Error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func toDTO(q domain.Quote) QuoteDTO {
	lines := make([]QuoteLineDTO, 0, len(q.Lines))
	for _, l := range q.Lines {
		lines = append(lines, QuoteLineDTO{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.StringFixed(2),
			LineTotal: l.LineTotal.StringFixed(2),
		})
	}
	return QuoteDTO{CartID: q.CartID, Lines: lines, Total: q.Total.StringFixed(2)}
}
