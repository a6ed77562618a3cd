package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/dwikikusuma/nomino/internal/order/app"
	"github.com/dwikikusuma/nomino/internal/order/domain"
	"github.com/dwikikusuma/nomino/pkg/postgres"
)

type OrderRepo struct {
	db postgres.DBTX
}

func NewOrderRepo(db postgres.DBTX) *OrderRepo {
	return &OrderRepo{db: db}
}

const orderColumns = `id, user_id, status, total_price::text, address, created_at, updated_at`

// CreateOrder writes the order row and every line. Run it inside a
// transaction; a failure part way leaves partial rows otherwise.
func (r *OrderRepo) CreateOrder(ctx context.Context, o domain.Order) (domain.Order, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO orders (id, user_id, status, total_price, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7)
		RETURNING `+orderColumns,
		o.ID, o.UserID, string(o.Status), o.TotalPrice.StringFixed(2), o.Address, o.CreatedAt, o.UpdatedAt,
	)
	created, err := scanOrder(row)
	if err != nil {
		return domain.Order{}, fmt.Errorf("failed to create order: %w", err)
	}

	lines := make([]domain.Line, 0, len(o.Lines))
	for i, l := range o.Lines {
		expected := l.UnitPrice.Mul(decimal.NewFromInt32(l.Quantity))
		if !l.TotalPrice.Equal(expected) {
			return domain.Order{}, fmt.Errorf("item %d: line total mismatch", i)
		}

		_, err := r.db.Exec(ctx, `
			INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price, total_price)
			VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric)`,
			created.ID, l.ProductID, l.Name, l.Quantity, l.UnitPrice.StringFixed(2), l.TotalPrice.StringFixed(2),
		)
		if err != nil {
			return domain.Order{}, fmt.Errorf("failed to insert item %d: %w", i, err)
		}
		lines = append(lines, l)
	}

	created.Lines = lines
	return created, nil
}

func (r *OrderRepo) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID)
}

// GetOrderForUpdate locks the order row until the transaction ends.
func (r *OrderRepo) GetOrderForUpdate(ctx context.Context, orderID string) (domain.Order, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, orderID)
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, orderID string, status domain.Status, at time.Time) (domain.Order, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE orders SET status = $2, updated_at = $3
		WHERE id = $1
		RETURNING `+orderColumns,
		orderID, string(status), at,
	)
	o, err := scanOrder(row)
	if err != nil {
		return domain.Order{}, err
	}

	o.Lines, err = r.lines(ctx, o.ID)
	if err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

// ListOrders returns every order when userID is empty. Newest first.
func (r *OrderRepo) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE $1 = '' OR user_id = $1
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		orders = append(orders, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	lines, err := r.linesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Lines = lines[orders[i].ID]
	}
	return orders, nil
}

func (r *OrderRepo) get(ctx context.Context, query, orderID string) (domain.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, query, orderID))
	if err != nil {
		return domain.Order{}, err
	}

	o.Lines, err = r.lines(ctx, o.ID)
	if err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

func (r *OrderRepo) lines(ctx context.Context, orderID string) ([]domain.Line, error) {
	byOrder, err := r.linesFor(ctx, []string{orderID})
	if err != nil {
		return nil, err
	}
	return byOrder[orderID], nil
}

// linesFor loads the lines of every listed order in one query, grouped by
// order id and kept in insertion order.
func (r *OrderRepo) linesFor(ctx context.Context, orderIDs []string) (map[string][]domain.Line, error) {
	out := make(map[string][]domain.Line, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}

	ids := make([]uuid.UUID, 0, len(orderIDs))
	for _, id := range orderIDs {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("order id %q: %w", id, err)
		}
		ids = append(ids, parsed)
	}

	rows, err := r.db.Query(ctx, `
		SELECT order_id, product_id, product_name, quantity, unit_price::text, total_price::text
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY order_id, id`, ids)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			l           domain.Line
			oid, pid    uuid.UUID
			unit, total string
		)
		if err := rows.Scan(&oid, &pid, &l.Name, &l.Quantity, &unit, &total); err != nil {
			return nil, err
		}
		l.ProductID = pid.String()
		if l.UnitPrice, err = decimal.NewFromString(unit); err != nil {
			return nil, fmt.Errorf("parse unit price: %w", err)
		}
		if l.TotalPrice, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("parse line total: %w", err)
		}
		out[oid.String()] = append(out[oid.String()], l)
	}
	return out, rows.Err()
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var (
		o      domain.Order
		id     uuid.UUID
		status string
		total  string
	)
	err := row.Scan(&id, &o.UserID, &status, &total, &o.Address, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) || postgres.IsInvalidText(err) {
		return domain.Order{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Order{}, err
	}

	o.ID = id.String()
	o.Status = domain.Status(status)
	if o.TotalPrice, err = decimal.NewFromString(total); err != nil {
		return domain.Order{}, fmt.Errorf("parse total: %w", err)
	}
	return o, nil
}
