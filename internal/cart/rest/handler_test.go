package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwikikusuma/nomino/internal/auth"
	"github.com/dwikikusuma/nomino/internal/cart/app"
	"github.com/dwikikusuma/nomino/internal/cart/domain"
)

type memRepo struct {
	mu    sync.Mutex
	carts map[string]*domain.Cart
}

func (m *memRepo) GetByID(_ context.Context, id string) (domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[id]
	if !ok {
		return domain.Cart{}, app.ErrNotFound
	}
	return *c, nil
}

func (m *memRepo) GetByUser(_ context.Context, userID string) (domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.carts {
		if c.UserID == userID {
			return *c, nil
		}
	}
	return domain.Cart{}, app.ErrNotFound
}

func (m *memRepo) GetOrCreate(ctx context.Context, userID string) (domain.Cart, error) {
	if c, err := m.GetByUser(ctx, userID); err == nil {
		return c, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c := &domain.Cart{ID: uuid.NewString(), UserID: userID}
	m.carts[c.ID] = c
	return *c, nil
}

func (m *memRepo) AddItem(_ context.Context, cartID string, item domain.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.carts[cartID]
	for i := range c.Items {
		if c.Items[i].ProductID == item.ProductID {
			c.Items[i].Quantity += item.Quantity
			return nil
		}
	}
	c.Items = append(c.Items, item)
	return nil
}

func (m *memRepo) SetItemQuantity(_ context.Context, cartID string, item domain.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.carts[cartID]
	for i := range c.Items {
		if c.Items[i].ProductID == item.ProductID {
			c.Items[i].Quantity = item.Quantity
			return nil
		}
	}
	return app.ErrNotFound
}

func (m *memRepo) RemoveItem(_ context.Context, cartID, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.carts[cartID]
	out := c.Items[:0]
	for _, it := range c.Items {
		if it.ProductID != productID {
			out = append(out, it)
		}
	}
	c.Items = out
	return nil
}

func (m *memRepo) ClearCart(_ context.Context, cartID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[cartID].Items = nil
	return nil
}

type client struct {
	t      *testing.T
	router http.Handler
	user   auth.User
}

func (c client) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	req = req.WithContext(auth.WithUser(req.Context(), c.user))
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	return w
}

func newRouter() http.Handler {
	r := chi.NewRouter()
	NewHandler(app.NewService(&memRepo{carts: map[string]*domain.Cart{}})).Routes(r)
	return r
}

func TestCartFlow(t *testing.T) {
	router := newRouter()
	alice := client{t: t, router: router, user: auth.User{ID: "alice"}}
	product := uuid.NewString()

	w := alice.do(http.MethodPost, "/carts", "")
	require.Equal(t, http.StatusOK, w.Code)
	var cart CartDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&cart))

	w = alice.do(http.MethodPost, "/carts/"+cart.ID+"/items", `{"product_id":"`+product+`","quantity":2}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = alice.do(http.MethodPost, "/carts/"+cart.ID+"/items", `{"product_id":"`+product+`","quantity":1}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&cart))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int32(3), cart.Items[0].Quantity)

	w = alice.do(http.MethodPut, "/carts/"+cart.ID+"/items/"+product, `{"quantity":5}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&cart))
	assert.Equal(t, int32(5), cart.Items[0].Quantity)

	w = alice.do(http.MethodDelete, "/carts/"+cart.ID+"/items/"+product, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = alice.do(http.MethodGet, "/carts/"+cart.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&cart))
	assert.Empty(t, cart.Items)
}

func TestCartOfAnotherUser(t *testing.T) {
	router := newRouter()
	alice := client{t: t, router: router, user: auth.User{ID: "alice"}}
	bob := client{t: t, router: router, user: auth.User{ID: "bob"}}

	var cart CartDTO
	require.NoError(t, json.NewDecoder(alice.do(http.MethodPost, "/carts", "").Body).Decode(&cart))

	assert.Equal(t, http.StatusNotFound, bob.do(http.MethodGet, "/carts/"+cart.ID, "").Code)
	assert.Equal(t, http.StatusNotFound, bob.do(http.MethodDelete, "/carts/"+cart.ID+"/items", "").Code)
}

func TestAddItemValidation(t *testing.T) {
	router := newRouter()
	alice := client{t: t, router: router, user: auth.User{ID: "alice"}}

	var cart CartDTO
	require.NoError(t, json.NewDecoder(alice.do(http.MethodPost, "/carts", "").Body).Decode(&cart))

	w := alice.do(http.MethodPost, "/carts/"+cart.ID+"/items", `{"product_id":"`+uuid.NewString()+`","quantity":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = alice.do(http.MethodPost, "/carts/"+cart.ID+"/items", `{"product_id":"abc","quantity":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
