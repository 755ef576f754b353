// Package memory holds mutex-guarded in-process repositories used when
// STORE_DRIVER=memory and in tests.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"

	"labtest-be/internal/order"
	"labtest-be/internal/slot"
)

// OrderStore implements order.Repository and slot.Repository. Create
// enforces the same partial uniqueness as the Postgres index: one active
// order per slot.
type OrderStore struct {
	mu     sync.RWMutex
	orders map[string]*order.Order
}

var (
	_ order.Repository = (*OrderStore)(nil)
	_ slot.Repository  = (*OrderStore)(nil)
)

func NewOrderStore() *OrderStore {
	return &OrderStore{orders: map[string]*order.Order{}}
}

func cloneOrder(o *order.Order) *order.Order {
	c := *o
	c.Items = slices.Clone(o.Items)
	if c.Items == nil {
		c.Items = []order.Item{}
	}
	if o.Patient.Age != nil {
		age := *o.Patient.Age
		c.Patient.Age = &age
	}
	if o.Report != nil {
		r := *o.Report
		c.Report = &r
	}
	if o.DecidedAt != nil {
		t := *o.DecidedAt
		c.DecidedAt = &t
	}
	return &c
}

func (s *OrderStore) Create(ctx context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[o.ID]; exists {
		return order.ErrConflict
	}
	if o.Status.IsActive() && s.committedLocked(o.Appointment) {
		return order.ErrSlotConflict
	}
	s.orders[o.ID] = cloneOrder(o)
	return nil
}

func (s *OrderStore) committedLocked(sl slot.Slot) bool {
	for _, existing := range s.orders {
		if existing.Status.IsActive() && existing.Appointment == sl {
			return true
		}
	}
	return false
}

func (s *OrderStore) GetByID(ctx context.Context, id string) (*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	return cloneOrder(o), nil
}

func (s *OrderStore) UpdateStatus(ctx context.Context, upd order.StatusUpdate) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[upd.ID]
	if !ok || o.Status != upd.From {
		return nil, order.ErrStaleWrite
	}

	o.Status = upd.To
	o.TechnicianNotes = upd.Notes
	o.UpdatedAt = upd.At
	if upd.DecidedBy != "" && o.DecidedBy == "" {
		o.DecidedBy = upd.DecidedBy
		if upd.DecidedAt != nil {
			t := *upd.DecidedAt
			o.DecidedAt = &t
		}
	}
	if upd.Report != nil {
		r := *upd.Report
		o.Report = &r
	}
	return cloneOrder(o), nil
}

func (s *OrderStore) ListByOwner(ctx context.Context, q order.OwnerQuery) ([]order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []order.Order{}
	if q.UserID == "" && q.Email == "" {
		return out, nil
	}
	for _, o := range s.orders {
		if q.ExcludeSelf && o.Patient.Relation == order.RelationSelf {
			continue
		}
		byID := q.UserID != "" && o.Patient.UserID == q.UserID
		byEmail := q.Email != "" &&
			(strings.EqualFold(o.Patient.UserEmail, q.Email) || strings.EqualFold(o.Patient.Email, q.Email))
		if byID || byEmail {
			out = append(out, *cloneOrder(o))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *OrderStore) filtered(f order.ListFilter) []order.Order {
	out := []order.Order{}
	for _, o := range s.orders {
		if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, o.Status) {
			continue
		}
		if f.ExcludeStatus != "" && o.Status == f.ExcludeStatus {
			continue
		}
		if f.From != nil && o.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && o.CreatedAt.After(*f.To) {
			continue
		}
		out = append(out, *cloneOrder(o))
	}
	sortNewestFirst(out)
	return out
}

func (s *OrderStore) List(ctx context.Context, f order.ListFilter) ([]order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.filtered(f)
	if f.Limit <= 0 {
		return out, nil
	}
	start := min(f.Offset(), len(out))
	end := min(start+f.Limit, len(out))
	return out[start:end], nil
}

func (s *OrderStore) Count(ctx context.Context, f order.ListFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.filtered(f)), nil
}

func (s *OrderStore) BookedWindows(ctx context.Context, date, serviceArea string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := map[string]bool{}
	out := []string{}
	for _, o := range s.orders {
		a := o.Appointment
		if o.Status.IsActive() && a.Date == date && a.ServiceArea == serviceArea && !seen[a.TimeWindow] {
			seen[a.TimeWindow] = true
			out = append(out, a.TimeWindow)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *OrderStore) IsCommitted(ctx context.Context, sl slot.Slot) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.committedLocked(sl), nil
}

func sortNewestFirst(orders []order.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID < orders[j].ID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}
