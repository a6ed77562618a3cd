package app_test

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/dwikikusuma/nomino/internal/auth"
	"github.com/dwikikusuma/nomino/internal/cart/app"
	"github.com/dwikikusuma/nomino/internal/cart/domain"
	"github.com/dwikikusuma/nomino/internal/cart/infra/postgres"
	"github.com/dwikikusuma/nomino/pkg/postgres/postgrestest"
)

func newTestService(t *testing.T) (*app.Service, *pgxpool.Pool) {
	t.Helper()
	pool := postgrestest.Start(t)
	repo := postgres.NewCartRepo(pool)
	return app.NewService(repo), pool
}

func seedProduct(t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()
	id := uuid.NewString()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO products (id, name, price) VALUES ($1, 'Martabak', 12.00)`, id)
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return id
}

func TestCart_ConcurrentGetOrCreate_SingleCart(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	user := auth.User{ID: uuid.NewString()}

	const N = 50
	ids := make(map[string]struct{})
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < N; i++ {
		g.Go(func() error {
			cart, err := svc.GetOrCreate(ctx, user)
			if err != nil {
				return err
			}
			mu.Lock()
			ids[cart.ID] = struct{}{}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent GetOrCreate failed: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("expected exactly 1 cart id, got %d: %+v", len(ids), ids)
	}
}

func TestCart_ConcurrentAddItemIncrement(t *testing.T) {
	ctx := context.Background()
	svc, pool := newTestService(t)

	user := auth.User{ID: uuid.NewString()}
	productID := seedProduct(t, pool)

	cart, err := svc.GetOrCreate(ctx, user)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	const N = 100
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < N; i++ {
		g.Go(func() error {
			return svc.AddItemToCart(gctx, user, cart.ID, domain.CartItem{
				ProductID: productID,
				Quantity:  1,
			})
		})
	}

	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent AddItem failed: %v", err)
	}

	updated, err := svc.GetCart(ctx, user, cart.ID)
	if err != nil {
		t.Fatalf("GetCart failed: %v", err)
	}

	gotQty := 0
	for _, it := range updated.Items {
		if it.ProductID == productID {
			gotQty = int(it.Quantity)
			break
		}
	}
	if gotQty != N {
		t.Fatalf("expected quantity=%d, got=%d", N, gotQty)
	}
}

func TestCart_UnknownProductIsNotFound(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	user := auth.User{ID: uuid.NewString()}

	cart, err := svc.GetOrCreate(ctx, user)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	err = svc.AddItemToCart(ctx, user, cart.ID, domain.CartItem{ProductID: uuid.NewString(), Quantity: 1})
	if err != app.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCart_AddItemQuantityOverflowIsInvalidInput(t *testing.T) {
	ctx := context.Background()
	svc, pool := newTestService(t)
	user := auth.User{ID: uuid.NewString()}
	productID := seedProduct(t, pool)

	cart, err := svc.GetOrCreate(ctx, user)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	if err := svc.AddItemToCart(ctx, user, cart.ID, domain.CartItem{ProductID: productID, Quantity: math.MaxInt32}); err != nil {
		t.Fatalf("first AddItem failed: %v", err)
	}

	err = svc.AddItemToCart(ctx, user, cart.ID, domain.CartItem{ProductID: productID, Quantity: 1})
	if err != app.ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	updated, err := svc.GetCart(ctx, user, cart.ID)
	if err != nil {
		t.Fatalf("GetCart failed: %v", err)
	}
	if len(updated.Items) != 1 || updated.Items[0].Quantity != math.MaxInt32 {
		t.Fatalf("expected quantity to stay at %d, got %+v", math.MaxInt32, updated.Items)
	}
}
