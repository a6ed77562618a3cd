package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dwikikusuma/nomino/internal/cart/app"
	"github.com/dwikikusuma/nomino/internal/cart/domain"
	"github.com/dwikikusuma/nomino/pkg/postgres"
)

type CartRepo struct {
	db postgres.DBTX
}

// NewCartRepo accepts a pool or a transaction.
func NewCartRepo(db postgres.DBTX) *CartRepo {
	return &CartRepo{db: db}
}

func (r *CartRepo) GetByID(ctx context.Context, cartID string) (domain.Cart, error) {
	return r.getWithItems(ctx, `SELECT id, user_id, created_at FROM carts WHERE id = $1`, cartID)
}

func (r *CartRepo) GetByUser(ctx context.Context, userID string) (domain.Cart, error) {
	return r.getWithItems(ctx, `SELECT id, user_id, created_at FROM carts WHERE user_id = $1`, userID)
}

// LockByID reads the cart row with FOR UPDATE. Only meaningful inside a
// transaction; a concurrent locker blocks until this one ends and then
// sees the row gone if it was deleted.
func (r *CartRepo) LockByID(ctx context.Context, cartID string) (domain.Cart, error) {
	row := r.db.QueryRow(ctx, `SELECT id, user_id, created_at FROM carts WHERE id = $1 FOR UPDATE`, cartID)
	return scanCart(row)
}

func (r *CartRepo) ListItems(ctx context.Context, cartID string) ([]domain.CartItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT product_id, quantity, added_at
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY added_at, product_id`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var (
			pid  uuid.UUID
			item domain.CartItem
		)
		if err := rows.Scan(&pid, &item.Quantity, &item.AddedAt); err != nil {
			return nil, err
		}
		item.ProductID = pid.String()
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *CartRepo) Create(ctx context.Context, userID string) (domain.Cart, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO carts (id, user_id) VALUES ($1, $2)
		RETURNING id, user_id, created_at`, uuid.NewString(), userID)
	return scanCart(row)
}

func (r *CartRepo) GetOrCreate(ctx context.Context, userID string) (domain.Cart, error) {
	cart, err := r.GetByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, app.ErrNotFound) {
		return domain.Cart{}, err
	}

	_, createErr := r.Create(ctx, userID)
	if createErr == nil {
		return r.GetByUser(ctx, userID)
	}

	// Lost the race to a concurrent create.
	if postgres.IsUniqueViolation(createErr) {
		return r.GetByUser(ctx, userID)
	}

	return domain.Cart{}, createErr
}

func (r *CartRepo) AddItem(ctx context.Context, cartID string, item domain.CartItem) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
		cartID, item.ProductID, item.Quantity,
	)
	switch {
	case postgres.IsForeignKeyViolation(err):
		return app.ErrNotFound
	case postgres.IsNumericOutOfRange(err):
		// Combined quantity no longer fits the column.
		return app.ErrInvalidInput
	}
	return err
}

func (r *CartRepo) SetItemQuantity(ctx context.Context, cartID string, item domain.CartItem) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE cart_items SET quantity = $3
		WHERE cart_id = $1 AND product_id = $2`,
		cartID, item.ProductID, item.Quantity,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return app.ErrNotFound
	}
	return nil
}

func (r *CartRepo) RemoveItem(ctx context.Context, cartID string, productID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`, cartID, productID)
	return err
}

func (r *CartRepo) ClearCart(ctx context.Context, cartID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	return err
}

// Delete removes the cart and its items.
func (r *CartRepo) Delete(ctx context.Context, cartID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM carts WHERE id = $1`, cartID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return app.ErrNotFound
	}
	return nil
}

func (r *CartRepo) getWithItems(ctx context.Context, query string, arg string) (domain.Cart, error) {
	cart, err := scanCart(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		return domain.Cart{}, err
	}

	items, err := r.ListItems(ctx, cart.ID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("list items: %w", err)
	}
	cart.Items = items
	return cart, nil
}

func scanCart(row pgx.Row) (domain.Cart, error) {
	var (
		id        uuid.UUID
		userID    string
		createdAt time.Time
	)
	err := row.Scan(&id, &userID, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) || postgres.IsInvalidText(err) {
		return domain.Cart{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Cart{}, err
	}
	return domain.Cart{ID: id.String(), UserID: userID, CreatedAt: createdAt}, nil
}
