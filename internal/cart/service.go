package cart

import (
	"context"
	"errors"
	"strings"

	"labtest-be/internal/labtest"
	"labtest-be/internal/logger"

	"go.uber.org/zap"
)

// Catalog is the part of the lab-test catalog the cart reads.
type Catalog interface {
	GetByID(ctx context.Context, id string, onlyActive bool) (*labtest.Test, error)
}

// Service defines the business logic for carts.
type Service interface {
	GetCart(ctx context.Context, userID string) (*Cart, error)
	AddToCart(ctx context.Context, params AddItemParams) (*Cart, error)
	UpdateQuantity(ctx context.Context, params UpdateQuantityParams) (*Cart, error)
	RemoveFromCart(ctx context.Context, userID, testID string) (*Cart, error)
	ClearCart(ctx context.Context, userID string) error
	ConsumeOrdered(ctx context.Context, userID string, items []Item) error
}

type service struct {
	repo    Repository
	catalog Catalog
}

func NewService(repo Repository, catalog Catalog) Service {
	return &service{repo: repo, catalog: catalog}
}

// GetCart never returns nil: a user without a cart gets an empty one.
func (s *service) GetCart(ctx context.Context, userID string) (*Cart, error) {
	if userID == "" {
		return nil, ErrUserNotAuthenticated
	}
	c, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return &Cart{UserID: userID, Items: []Item{}}, nil
	}
	return c, nil
}

// AddToCart adds a catalog test to the user's cart. Adding a test that is
// already present increments its quantity.
func (s *service) AddToCart(ctx context.Context, params AddItemParams) (*Cart, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AddToCart"),
		zap.String("user_id", params.UserID),
		zap.String("test_id", params.TestID),
	)

	if params.UserID == "" {
		return nil, ErrUserNotAuthenticated
	}
	params.TestID = strings.TrimSpace(params.TestID)
	if params.TestID == "" {
		return nil, ErrMissingTestID
	}
	if params.Quantity == 0 {
		params.Quantity = 1
	}
	if params.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	test, err := s.catalog.GetByID(ctx, params.TestID, true)
	if err != nil {
		log.Error("failed to load lab test", zap.Error(err))
		return nil, err
	}
	if test == nil {
		return nil, ErrTestNotFound
	}

	c, err := s.repo.AddItem(ctx, params.UserID, Item{
		TestID:   test.ID,
		Name:     test.Name,
		Lab:      test.Lab,
		Price:    test.Price,
		Quantity: params.Quantity,
	})
	if err != nil {
		log.Error("failed to add cart item", zap.Error(err))
		return nil, err
	}

	log.Info("item added to cart")
	return c, nil
}

func (s *service) UpdateQuantity(ctx context.Context, params UpdateQuantityParams) (*Cart, error) {
	if params.UserID == "" {
		return nil, ErrUserNotAuthenticated
	}
	if params.TestID == "" {
		return nil, ErrMissingTestID
	}
	if params.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	if err := s.repo.UpdateQuantity(ctx, params.UserID, params.TestID, params.Quantity); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, params.UserID)
}

func (s *service) RemoveFromCart(ctx context.Context, userID, testID string) (*Cart, error) {
	if userID == "" {
		return nil, ErrUserNotAuthenticated
	}
	if testID == "" {
		return nil, ErrMissingTestID
	}

	if err := s.repo.RemoveItem(ctx, userID, testID); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

// ClearCart deletes the cart. Clearing a cart that does not exist is not an error.
func (s *service) ClearCart(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrUserNotAuthenticated
	}

	err := s.repo.Clear(ctx, userID)
	if errors.Is(err, ErrCartNotFound) {
		return nil
	}
	return err
}

// ConsumeOrdered removes what an order took from the cart. Lines added or
// topped up after the order snapshot was taken stay in the cart.
func (s *service) ConsumeOrdered(ctx context.Context, userID string, items []Item) error {
	if userID == "" {
		return ErrUserNotAuthenticated
	}
	if len(items) == 0 {
		return nil
	}
	return s.repo.Consume(ctx, userID, items)
}
