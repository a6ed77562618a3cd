package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwikikusuma/nomino/internal/catalog/app"
	"github.com/dwikikusuma/nomino/internal/catalog/domain"
	"github.com/dwikikusuma/nomino/pkg/postgres/postgrestest"
)

func TestProductRepo(t *testing.T) {
	pool := postgrestest.Start(t)
	repo := NewProductRepo(pool)
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"Bakso", "Mie Ayam", "Bakso Urat"} {
		p, err := repo.Create(ctx, domain.Product{
			ID:    uuid.NewString(),
			Name:  name,
			Price: decimal.RequireFromString("15.50"),
		})
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}

	t.Run("get", func(t *testing.T) {
		p, err := repo.Get(ctx, ids[0])
		require.NoError(t, err)
		assert.Equal(t, "Bakso", p.Name)
		assert.Equal(t, "15.50", p.Price.StringFixed(2))
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := repo.Get(ctx, uuid.NewString())
		assert.ErrorIs(t, err, app.ErrNotFound)
	})

	t.Run("search", func(t *testing.T) {
		got, next, err := repo.List(ctx, "bakso", 10, "")
		require.NoError(t, err)
		assert.Len(t, got, 2)
		assert.Empty(t, next)
	})

	t.Run("keyset pages", func(t *testing.T) {
		first, next, err := repo.List(ctx, "", 2, "")
		require.NoError(t, err)
		require.Len(t, first, 2)
		require.NotEmpty(t, next)

		second, next, err := repo.List(ctx, "", 2, next)
		require.NoError(t, err)
		require.Len(t, second, 1)
		assert.Empty(t, next)
		assert.Greater(t, second[0].ID, first[1].ID)
	})

	t.Run("bad cursor", func(t *testing.T) {
		_, _, err := repo.List(ctx, "", 2, "zzz")
		assert.ErrorIs(t, err, app.ErrInvalidInput)
	})

	t.Run("update price", func(t *testing.T) {
		p, err := repo.UpdatePrice(ctx, ids[1], decimal.RequireFromString("9.99"))
		require.NoError(t, err)
		assert.Equal(t, "9.99", p.Price.StringFixed(2))

		_, err = repo.UpdatePrice(ctx, uuid.NewString(), decimal.NewFromInt(1))
		assert.ErrorIs(t, err, app.ErrNotFound)
	})
}
