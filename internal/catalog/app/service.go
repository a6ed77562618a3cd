package app

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dwikikusuma/nomino/internal/auth"
	"github.com/dwikikusuma/nomino/internal/catalog/domain"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("staff only")
)

type Service struct {
	repo  ProductRepo
	newID func() string
}

func NewService(repo ProductRepo) *Service {
	return &Service{
		repo:  repo,
		newID: uuid.NewString,
	}
}

func (s *Service) CreateProduct(ctx context.Context, user auth.User, in domain.NewProduct) (domain.Product, error) {
	if !user.IsStaff {
		return domain.Product{}, ErrForbidden
	}

	name := strings.TrimSpace(in.Name)
	if name == "" || !validPrice(in.Price) {
		return domain.Product{}, ErrInvalidInput
	}

	p := domain.Product{
		ID:          s.newID(),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price.Round(2),
		IsSpecial:   in.IsSpecial,
	}

	return s.repo.Create(ctx, p)
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Product{}, ErrInvalidInput
	}
	if _, err := uuid.Parse(id); err != nil {
		return domain.Product{}, ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context, query string, limit int, cursor string) ([]domain.Product, string, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.List(ctx, query, limit, cursor)
}

// UpdatePrice only affects carts and future orders; placed orders keep
// their snapshot.
func (s *Service) UpdatePrice(ctx context.Context, user auth.User, id string, price decimal.Decimal) (domain.Product, error) {
	if !user.IsStaff {
		return domain.Product{}, ErrForbidden
	}
	if !validPrice(price) {
		return domain.Product{}, ErrInvalidInput
	}
	if _, err := uuid.Parse(id); err != nil {
		return domain.Product{}, ErrNotFound
	}
	return s.repo.UpdatePrice(ctx, id, price.Round(2))
}

func validPrice(p decimal.Decimal) bool {
	return !p.IsNegative() && p.LessThanOrEqual(domain.MaxPrice)
}
