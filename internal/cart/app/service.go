package app

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/dwikikusuma/nomino/internal/auth"
	"github.com/dwikikusuma/nomino/internal/cart/domain"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

type Service struct {
	repo CartRepo
}

func NewService(repo CartRepo) *Service {
	return &Service{
		repo: repo,
	}
}

func (s *Service) GetOrCreate(ctx context.Context, user auth.User) (domain.Cart, error) {
	if user.ID == "" {
		return domain.Cart{}, ErrInvalidInput
	}
	return s.repo.GetOrCreate(ctx, user.ID)
}

// GetCart hides other users' carts behind ErrNotFound. Staff see all.
func (s *Service) GetCart(ctx context.Context, user auth.User, cartID string) (domain.Cart, error) {
	if _, err := uuid.Parse(cartID); err != nil {
		return domain.Cart{}, ErrNotFound
	}

	cart, err := s.repo.GetByID(ctx, cartID)
	if err != nil {
		return domain.Cart{}, err
	}
	if !user.IsStaff && cart.UserID != user.ID {
		return domain.Cart{}, ErrNotFound
	}
	return cart, nil
}

// GetMine returns the caller's cart, or ErrNotFound if they have none.
func (s *Service) GetMine(ctx context.Context, user auth.User) (domain.Cart, error) {
	return s.repo.GetByUser(ctx, user.ID)
}

// AddItemToCart increments the quantity when the product is already in
// the cart.
func (s *Service) AddItemToCart(ctx context.Context, user auth.User, cartID string, item domain.CartItem) error {
	if err := validItem(item); err != nil {
		return err
	}
	if _, err := s.GetCart(ctx, user, cartID); err != nil {
		return err
	}
	return s.repo.AddItem(ctx, cartID, item)
}

func (s *Service) SetItemQuantity(ctx context.Context, user auth.User, cartID string, item domain.CartItem) error {
	if err := validItem(item); err != nil {
		return err
	}
	if _, err := s.GetCart(ctx, user, cartID); err != nil {
		return err
	}
	return s.repo.SetItemQuantity(ctx, cartID, item)
}

func (s *Service) RemoveItemFromCart(ctx context.Context, user auth.User, cartID string, productID string) error {
	if _, err := uuid.Parse(productID); err != nil {
		return ErrNotFound
	}
	if _, err := s.GetCart(ctx, user, cartID); err != nil {
		return err
	}
	return s.repo.RemoveItem(ctx, cartID, productID)
}

func (s *Service) ClearCart(ctx context.Context, user auth.User, cartID string) error {
	if _, err := s.GetCart(ctx, user, cartID); err != nil {
		return err
	}
	return s.repo.ClearCart(ctx, cartID)
}

func validItem(item domain.CartItem) error {
	if item.Quantity < 1 {
		return ErrInvalidInput
	}
	if _, err := uuid.Parse(item.ProductID); err != nil {
		return ErrInvalidInput
	}
	return nil
}
