package menu

import "strings"

// Item is one row of an imported menu. Category is matched to the
// catalog by name, case-insensitively.
type Item struct {
	Name        string  `json:"name" csv:"name"`
	Category    string  `json:"category" csv:"category"`
	Price       float64 `json:"price" csv:"price"`
	Description string  `json:"description,omitempty" csv:"description"`
}

func (i *Item) normalize() {
	i.Name = strings.TrimSpace(i.Name)
	i.Category = strings.TrimSpace(i.Category)
	i.Description = strings.TrimSpace(i.Description)
}

func key(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
