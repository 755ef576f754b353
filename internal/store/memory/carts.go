package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"labtest-be/internal/cart"
)

type CartStore struct {
	mu    sync.Mutex
	carts map[string]*cart.Cart
}

var _ cart.Repository = (*CartStore)(nil)

func NewCartStore() *CartStore {
	return &CartStore{carts: map[string]*cart.Cart{}}
}

func cloneCart(c *cart.Cart) *cart.Cart {
	out := *c
	out.Items = slices.Clone(c.Items)
	return &out
}

func (s *CartStore) Get(ctx context.Context, userID string) (*cart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[userID]
	if !ok {
		return nil, nil
	}
	return cloneCart(c), nil
}

func (s *CartStore) AddItem(ctx context.Context, userID string, item cart.Item) (*cart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	c, ok := s.carts[userID]
	if !ok {
		c = &cart.Cart{UserID: userID, Items: []cart.Item{}, CreatedAt: now}
		s.carts[userID] = c
	}
	c.UpdatedAt = now

	for i := range c.Items {
		if c.Items[i].TestID == item.TestID {
			c.Items[i].Quantity += item.Quantity
			return cloneCart(c), nil
		}
	}
	c.Items = append(c.Items, item)
	return cloneCart(c), nil
}

func (s *CartStore) UpdateQuantity(ctx context.Context, userID, testID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[userID]
	if !ok {
		return cart.ErrCartItemNotFound
	}
	for i := range c.Items {
		if c.Items[i].TestID == testID {
			c.Items[i].Quantity = quantity
			c.UpdatedAt = time.Now()
			return nil
		}
	}
	return cart.ErrCartItemNotFound
}

func (s *CartStore) RemoveItem(ctx context.Context, userID, testID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[userID]
	if !ok {
		return cart.ErrCartItemNotFound
	}
	idx := slices.IndexFunc(c.Items, func(it cart.Item) bool { return it.TestID == testID })
	if idx < 0 {
		return cart.ErrCartItemNotFound
	}
	c.Items = slices.Delete(c.Items, idx, idx+1)
	c.UpdatedAt = time.Now()
	return nil
}

func (s *CartStore) Clear(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.carts[userID]; !ok {
		return cart.ErrCartNotFound
	}
	delete(s.carts, userID)
	return nil
}

func (s *CartStore) Consume(ctx context.Context, userID string, items []cart.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[userID]
	if !ok {
		return nil
	}
	for _, ordered := range items {
		idx := slices.IndexFunc(c.Items, func(it cart.Item) bool { return it.TestID == ordered.TestID })
		if idx < 0 {
			continue
		}
		if c.Items[idx].Quantity <= ordered.Quantity {
			c.Items = slices.Delete(c.Items, idx, idx+1)
			continue
		}
		c.Items[idx].Quantity -= ordered.Quantity
	}
	if len(c.Items) == 0 {
		delete(s.carts, userID)
		return nil
	}
	c.UpdatedAt = time.Now()
	return nil
}
