package cart

import "time"

// Item is a test held in a cart. Name, lab and price are copied from the
// catalog when the item is first added.
type Item struct {
	TestID   string `json:"testId"`
	Name     string `json:"name"`
	Lab      string `json:"lab"`
	Price    int    `json:"price"`
	Quantity int    `json:"quantity"`
}

type Cart struct {
	UserID    string    `json:"userId"`
	Items     []Item    `json:"items"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// Total is Σ price×quantity.
func (c *Cart) Total() int {
	if c == nil {
		return 0
	}
	total := 0
	for _, it := range c.Items {
		total += it.Price * it.Quantity
	}
	return total
}

type AddItemParams struct {
	UserID   string
	TestID   string
	Quantity int
}

type UpdateQuantityParams struct {
	UserID   string
	TestID   string
	Quantity int
}
