package rest

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/dwikikusuma/nomino/internal/auth"
	"github.com/dwikikusuma/nomino/internal/catalog/app"
	"github.com/dwikikusuma/nomino/internal/catalog/domain"
	"github.com/dwikikusuma/nomino/pkg/httpx"
)

type Handler struct {
	svc *app.Service
}

func NewHandler(svc *app.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/products", h.ListProducts)
	r.Post("/products", h.CreateProduct)
	r.Get("/products/{productID}", h.GetProduct)
	r.Patch("/products/{productID}/price", h.UpdatePrice)
}

type ProductDTO struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	IsSpecial   bool      `json:"is_special"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ListProductsResponse struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

type CreateProductRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Price       string `json:"price" validate:"required,numeric"`
	IsSpecial   bool   `json:"is_special"`
}

type UpdatePriceRequest struct {
	Price string `json:"price" validate:"required,numeric"`
}

// GET /api/v1/products?q=&limit=&cursor=
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	products, next, err := h.svc.ListProducts(r.Context(), q.Get("q"), limit, q.Get("cursor"))
	if err != nil {
		writeErr(w, err)
		return
	}

	out := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		out = append(out, toDTO(p))
	}
	httpx.JSON(w, http.StatusOK, ListProductsResponse{Products: out, NextCursor: next})
}

// GET /api/v1/products/{productID}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetProduct(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toDTO(p))
}

// POST /api/v1/products
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.FromContext(r.Context())

	var req CreateProductRequest
	if err := httpx.Decode(w, r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_input", "price must be a decimal number")
		return
	}

	p, err := h.svc.CreateProduct(r.Context(), user, domain.NewProduct{
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		IsSpecial:   req.IsSpecial,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toDTO(p))
}

// PATCH /api/v1/products/{productID}/price
func (h *Handler) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.FromContext(r.Context())

	var req UpdatePriceRequest
	if err := httpx.Decode(w, r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_input", "price must be a decimal number")
		return
	}

	p, err := h.svc.UpdatePrice(r.Context(), user, chi.URLParam(r, "productID"), price)
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toDTO(p))
}

func toDTO(p domain.Product) ProductDTO {
	return ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		IsSpecial:   p.IsSpecial,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		httpx.Error(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, app.ErrNotFound):
		httpx.Error(w, http.StatusNotFound, "not_found", "product not found")
	case errors.Is(err, app.ErrForbidden):
		httpx.Error(w, http.StatusForbidden, "forbidden", "only staff can manage the catalog")
	default:
		httpx.Error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
