package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dwikikusuma/nomino/internal/auth"
	"github.com/dwikikusuma/nomino/internal/order/app"
	"github.com/dwikikusuma/nomino/internal/order/domain"
	"github.com/dwikikusuma/nomino/pkg/httpx"
)

type Handler struct {
	svc *app.Service
}

func NewHandler(svc *app.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.PlaceOrder)
		r.Get("/", h.ListOrders)
		r.Get("/{orderID}", h.GetOrder)
		r.Patch("/{orderID}", h.UpdateStatus)
		r.Post("/{orderID}/cancel", h.CancelOrder)
	})
}

type OrderLineDTO struct {
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	Quantity   int32  `json:"quantity"`
	UnitPrice  string `json:"unit_price"`
	TotalPrice string `json:"total_price"`
}

type OrderDTO struct {
	ID         string         `json:"id"`
	UserID     string         `json:"user_id"`
	Status     string         `json:"status"`
	TotalPrice string         `json:"total_price"`
	Address    string         `json:"address"`
	Items      []OrderLineDTO `json:"items"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

type PlaceOrderRequest struct {
	CartID string `json:"cart_id" validate:"required"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// POST /api/v1/orders
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.FromContext(r.Context())

	var req PlaceOrderRequest
	if err := httpx.Decode(w, r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, app.KindInvalidInput.String(), err.Error())
		return
	}

	o, err := h.svc.PlaceOrder(r.Context(), user, req.CartID)
	if err != nil {
		WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toDTO(o))
}

// GET /api/v1/orders
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.FromContext(r.Context())

	orders, err := h.svc.ListOrders(r.Context(), user)
	if err != nil {
		WriteError(w, err)
		return
	}

	out := make([]OrderDTO, 0, len(orders))
	for _, o := range orders {
		out = append(out, toDTO(o))
	}
	httpx.JSON(w, http.StatusOK, out)
}

// GET /api/v1/orders/{orderID}
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.FromContext(r.Context())

	o, err := h.svc.GetOrder(r.Context(), user, chi.URLParam(r, "orderID"))
	if err != nil {
		WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toDTO(o))
}

// POST /api/v1/orders/{orderID}/cancel
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.FromContext(r.Context())

	o, err := h.svc.CancelOrder(r.Context(), user, chi.URLParam(r, "orderID"))
	if err != nil {
		WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toDTO(o))
}

// PATCH /api/v1/orders/{orderID}
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.FromContext(r.Context())

	var req UpdateStatusRequest
	if err := httpx.Decode(w, r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, app.KindInvalidInput.String(), err.Error())
		return
	}

	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, app.KindInvalidInput.String(), err.Error())
		return
	}

	o, err := h.svc.UpdateOrderStatus(r.Context(), user, chi.URLParam(r, "orderID"), status)
	if err != nil {
		WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toDTO(o))
}

func StatusFor(kind app.Kind) int {
	switch kind {
	case app.KindNotFound:
		return http.StatusNotFound
	case app.KindForbidden:
		return http.StatusForbidden
	case app.KindEmptyCart, app.KindInvalidInput:
		return http.StatusBadRequest
	case app.KindInvalidTransition:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteError renders the reason of an expected failure and hides the
// detail of anything else.
func WriteError(w http.ResponseWriter, err error) {
	var e *app.Error
	if !errors.As(err, &e) {
		httpx.Error(w, http.StatusInternalServerError, app.KindInternal.String(), "internal error")
		return
	}
	httpx.Error(w, StatusFor(e.Kind), e.Kind.String(), e.Reason)
}

func toDTO(o domain.Order) OrderDTO {
	items := make([]OrderLineDTO, 0, len(o.Lines))
	for _, l := range o.Lines {
		items = append(items, OrderLineDTO{
			ProductID:  l.ProductID,
			Name:       l.Name,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice.StringFixed(2),
			TotalPrice: l.TotalPrice.StringFixed(2),
		})
	}

	return OrderDTO{
		ID:         o.ID,
		UserID:     o.UserID,
		Status:     string(o.Status),
		TotalPrice: o.TotalPrice.StringFixed(2),
		Address:    o.Address,
		Items:      items,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}
