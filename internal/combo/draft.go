package combo

import "time"

// Selections maps categoryID -> productID -> quantity. Quantities are
// always > 0; a product that drops to zero is removed, and so is a category
// left without products.
type Selections map[int]map[int]int

// Clone returns a deep copy.
func (s Selections) Clone() Selections {
	out := make(Selections, len(s))
	for cat, products := range s {
		inner := make(map[int]int, len(products))
		for id, qty := range products {
			inner[id] = qty
		}
		out[cat] = inner
	}
	return out
}

// Total sums the quantities recorded under one category.
func (s Selections) Total(categoryID int) int {
	total := 0
	for _, qty := range s[categoryID] {
		total += qty
	}
	return total
}

// Draft is the persisted snapshot of one in-progress builder, keyed by
// session and combo.
type Draft struct {
	SessionID   string     `json:"sessionId"`
	ComboID     int        `json:"comboId"`
	CurrentStep int        `json:"currentStep"`
	Selections  Selections `json:"selections"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
