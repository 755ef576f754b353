package labtest

import "time"

const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// Test is a catalog entry. Prices are whole currency units.
type Test struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Lab         string    `json:"lab"`
	Price       int       `json:"price"`
	Description *string   `json:"description,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ListFilter struct {
	Search     string
	Lab        string
	OnlyActive bool
	Limit      int
	Offset     int
}

type UpdateParams struct {
	Name        *string `json:"name"`
	Lab         *string `json:"lab"`
	Price       *int    `json:"price"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

func (p UpdateParams) IsEmpty() bool {
	return p.Name == nil && p.Lab == nil && p.Price == nil && p.Description == nil && p.Status == nil
}
