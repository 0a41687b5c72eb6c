package cart

import (
	"time"

	"empanadas/internal/combo"

	"github.com/shopspring/decimal"
)

// Line is what gets added: a product, or a combo when isCombo is set.
type Line struct {
	ID    int
	Name  string
	Price float64
}

// Options carries the extras of a line. Only combos use ComboDetails.
type Options struct {
	ComboDetails []combo.Detail
}

type Item struct {
	LineID       string         `json:"lineId"`
	ProductID    int            `json:"productId"`
	Name         string         `json:"name"`
	Price        float64        `json:"price"`
	Quantity     int            `json:"quantity"`
	IsCombo      bool           `json:"isCombo"`
	ComboDetails []combo.Detail `json:"comboDetails,omitempty"`
}

// Subtotal is Price * Quantity in exact decimal arithmetic.
func (i Item) Subtotal() decimal.Decimal {
	return decimal.NewFromFloat(i.Price).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Cart struct {
	SessionID string          `json:"sessionId"`
	Items     []Item          `json:"items"`
	Total     decimal.Decimal `json:"total"`
	Count     int             `json:"count"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func (c *Cart) recompute() {
	total := decimal.Zero
	count := 0
	for _, it := range c.Items {
		total = total.Add(it.Subtotal())
		count += it.Quantity
	}
	c.Total = total
	c.Count = count
	c.UpdatedAt = time.Now().UTC()
}

func (c *Cart) clone() *Cart {
	out := *c
	out.Items = make([]Item, len(c.Items))
	copy(out.Items, c.Items)
	return &out
}
