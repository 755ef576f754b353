package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"labtest-be/internal/labtest"
)

type LabTestStore struct {
	mu    sync.RWMutex
	tests map[string]labtest.Test
}

var _ labtest.Repository = (*LabTestStore)(nil)

// NewLabTestStore seeds the catalog with tests.
func NewLabTestStore(tests ...labtest.Test) *LabTestStore {
	s := &LabTestStore{tests: map[string]labtest.Test{}}
	now := time.Now()
	for _, t := range tests {
		if t.Status == "" {
			t.Status = labtest.StatusActive
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt, t.UpdatedAt = now, now
		}
		s.tests[t.ID] = t
	}
	return s
}

func (s *LabTestStore) GetByID(ctx context.Context, id string, onlyActive bool) (*labtest.Test, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tests[id]
	if !ok || (onlyActive && t.Status != labtest.StatusActive) {
		return nil, nil
	}
	return &t, nil
}

func (s *LabTestStore) List(ctx context.Context, f labtest.ListFilter) ([]labtest.Test, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []labtest.Test{}
	search := strings.ToLower(strings.TrimSpace(f.Search))
	for _, t := range s.tests {
		if f.OnlyActive && t.Status != labtest.StatusActive {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(t.Name), search) {
			continue
		}
		if f.Lab != "" && t.Lab != f.Lab {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	if f.Limit > 0 {
		start := min(f.Offset, len(out))
		end := min(start+f.Limit, len(out))
		out = out[start:end]
	}
	return out, nil
}

func (s *LabTestStore) Update(ctx context.Context, id string, p labtest.UpdateParams) (*labtest.Test, error) {
	if p.IsEmpty() {
		return nil, labtest.ErrNoUpdateField
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tests[id]
	if !ok {
		return nil, labtest.ErrTestNotFound
	}
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Lab != nil {
		t.Lab = *p.Lab
	}
	if p.Price != nil {
		t.Price = *p.Price
	}
	if p.Description != nil {
		d := *p.Description
		t.Description = &d
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	t.UpdatedAt = time.Now()
	s.tests[id] = t
	return &t, nil
}
