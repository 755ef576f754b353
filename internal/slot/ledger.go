package slot

import (
	"context"
	"fmt"
	"slices"
	"time"
)

// Ledger answers availability questions for appointment slots.
//
// IsAvailable is a read and holds nothing. Two checkouts may both see a
// slot as free; the store's unique index on active slots rejects the
// second insert, which surfaces as a slot conflict to the caller.
type Ledger struct {
	repo    Repository
	windows []string
	now     func() time.Time
}

func NewLedger(repo Repository, windows []string) *Ledger {
	return &Ledger{
		repo:    repo,
		windows: slices.Clone(windows),
		now:     time.Now,
	}
}

func (l *Ledger) Windows() []string {
	return slices.Clone(l.windows)
}

// Validate checks the shape of a slot: a real date, a configured window
// and a non-empty service area.
func (l *Ledger) Validate(s Slot) error {
	s = s.Normalize()
	if _, err := s.Day(); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidSlot)
	}
	if !slices.Contains(l.windows, s.TimeWindow) {
		return fmt.Errorf("%w: unknown time window %q", ErrInvalidSlot, s.TimeWindow)
	}
	if s.ServiceArea == "" {
		return fmt.Errorf("%w: service area is required", ErrInvalidSlot)
	}
	return nil
}

func (l *Ledger) IsAvailable(ctx context.Context, s Slot) (bool, error) {
	s = s.Normalize()
	if err := l.Validate(s); err != nil {
		return false, err
	}
	committed, err := l.repo.IsCommitted(ctx, s)
	if err != nil {
		return false, err
	}
	return !committed, nil
}

// AvailableWindows lists the configured windows not yet held on date in area.
func (l *Ledger) AvailableWindows(ctx context.Context, date, serviceArea string) (Availability, error) {
	first := Slot{Date: date, TimeWindow: l.firstWindow(), ServiceArea: serviceArea}.Normalize()
	if err := l.Validate(first); err != nil {
		return Availability{}, err
	}

	day, _ := first.Day()
	now := l.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if day.Before(today) {
		return Availability{}, ErrPastDate
	}

	booked, err := l.repo.BookedWindows(ctx, first.Date, first.ServiceArea)
	if err != nil {
		return Availability{}, err
	}

	out := Availability{
		Date:        first.Date,
		ServiceArea: first.ServiceArea,
		Available:   []string{},
		Booked:      []string{},
	}
	for _, w := range l.windows {
		if slices.Contains(booked, w) {
			out.Booked = append(out.Booked, w)
			continue
		}
		out.Available = append(out.Available, w)
	}
	return out, nil
}

func (l *Ledger) firstWindow() string {
	if len(l.windows) == 0 {
		return ""
	}
	return l.windows[0]
}
