package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/dwikikusuma/nomino/internal/catalog/app"
	"github.com/dwikikusuma/nomino/internal/catalog/domain"
	"github.com/dwikikusuma/nomino/pkg/postgres"
)

type ProductRepo struct {
	db postgres.DBTX
}

func NewProductRepo(db postgres.DBTX) *ProductRepo {
	return &ProductRepo{db: db}
}

const productColumns = `id, name, description, price::text, is_special, created_at, updated_at`

func (r *ProductRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO products (id, name, description, price, is_special)
		VALUES ($1, $2, $3, $4::numeric, $5)
		RETURNING `+productColumns,
		p.ID, p.Name, p.Description, p.Price.StringFixed(2), p.IsSpecial,
	)

	out, err := scanProduct(row)
	if err != nil {
		return domain.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return out, nil
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)

	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) || postgres.IsInvalidText(err) {
		return domain.Product{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (r *ProductRepo) List(ctx context.Context, query string, limit int, cursor string) ([]domain.Product, string, error) {
	cursor = strings.TrimSpace(cursor)
	if cursor != "" {
		if _, err := uuid.Parse(cursor); err != nil {
			return nil, "", app.ErrInvalidInput
		}
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR id > NULLIF($2, '')::uuid)
		ORDER BY id
		LIMIT $3`,
		strings.TrimSpace(query), cursor, limit,
	)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	out := make([]domain.Product, 0, limit)
	var nextCursor string

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, "", err
		}
		out = append(out, p)
		nextCursor = p.ID
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	if len(out) < limit {
		nextCursor = ""
	}

	return out, nextCursor, nil
}

func (r *ProductRepo) UpdatePrice(ctx context.Context, id string, price decimal.Decimal) (domain.Product, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE products SET price = $2::numeric, updated_at = now()
		WHERE id = $1
		RETURNING `+productColumns,
		id, price.StringFixed(2),
	)

	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var (
		p     domain.Product
		id    uuid.UUID
		price string
	)
	if err := row.Scan(&id, &p.Name, &p.Description, &price, &p.IsSpecial, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return domain.Product{}, err
	}

	d, err := decimal.NewFromString(price)
	if err != nil {
		return domain.Product{}, fmt.Errorf("parse price %q: %w", price, err)
	}

	p.ID = id.String()
	p.Price = d
	return p, nil
}
