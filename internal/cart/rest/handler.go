package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dwikikusuma/nomino/internal/auth"
	"github.com/dwikikusuma/nomino/internal/cart/app"
	"github.com/dwikikusuma/nomino/internal/cart/domain"
	"github.com/dwikikusuma/nomino/pkg/httpx"
)

type Handler struct {
	svc *app.Service
}

func NewHandler(svc *app.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/carts", h.GetOrCreate)
	r.Route("/carts/{cartID}", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Post("/items", h.AddItem)
		r.Delete("/items", h.ClearCart)
		r.Put("/items/{productID}", h.SetItemQuantity)
		r.Delete("/items/{productID}", h.RemoveItem)
	})
}

type CartItemDTO struct {
	ProductID string    `json:"product_id"`
	Quantity  int32     `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

type CartDTO struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	Items     []CartItemDTO `json:"items"`
	CreatedAt time.Time     `json:"created_at"`
}

type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int32  `json:"quantity" validate:"min=1,max=1000"`
}

type SetQuantityRequest struct {
	Quantity int32 `json:"quantity" validate:"min=1,max=1000"`
}

// POST /api/v1/carts
func (h *Handler) GetOrCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.FromContext(r.Context())

	cart, err := h.svc.GetOrCreate(r.Context(), user)
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toDTO(cart))
}

// GET /api/v1/carts/{cartID}
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.FromContext(r.Context())

	cart, err := h.svc.GetCart(r.Context(), user, chi.URLParam(r, "cartID"))
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toDTO(cart))
}

// POST /api/v1/carts/{cartID}/items
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.FromContext(r.Context())

	var req AddItemRequest
	if err := httpx.Decode(w, r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	cartID := chi.URLParam(r, "cartID")
	err := h.svc.AddItemToCart(r.Context(), user, cartID, domain.CartItem{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	h.respondCart(w, r, user, cartID)
}

// PUT /api/v1/carts/{cartID}/items/{productID}
func (h *Handler) SetItemQuantity(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.FromContext(r.Context())

	var req SetQuantityRequest
	if err := httpx.Decode(w, r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	cartID := chi.URLParam(r, "cartID")
	err := h.svc.SetItemQuantity(r.Context(), user, cartID, domain.CartItem{
		ProductID: chi.URLParam(r, "productID"),
		Quantity:  req.Quantity,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	h.respondCart(w, r, user, cartID)
}

// DELETE /api/v1/carts/{cartID}/items/{productID}
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.FromContext(r.Context())

	err := h.svc.RemoveItemFromCart(r.Context(), user, chi.URLParam(r, "cartID"), chi.URLParam(r, "productID"))
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.NoContent(w)
}

// DELETE /api/v1/carts/{cartID}/items
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.FromContext(r.Context())

	if err := h.svc.ClearCart(r.Context(), user, chi.URLParam(r, "cartID")); err != nil {
		writeErr(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) respondCart(w http.ResponseWriter, r *http.Request, user auth.User, cartID string) {
	cart, err := h.svc.GetCart(r.Context(), user, cartID)
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toDTO(cart))
}

func toDTO(c domain.Cart) CartDTO {
	items := make([]CartItemDTO, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, CartItemDTO{ProductID: it.ProductID, Quantity: it.Quantity, AddedAt: it.AddedAt})
	}
	return CartDTO{ID: c.ID, UserID: c.UserID, Items: items, CreatedAt: c.CreatedAt}
}

func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		httpx.Error(w, http.StatusBadRequest, "invalid_input", "invalid cart item")
	case errors.Is(err, app.ErrNotFound):
		httpx.Error(w, http.StatusNotFound, "not_found", "cart or product not found")
	default:
		httpx.Error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
