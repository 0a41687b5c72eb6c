package catalog

import "time"

type Store struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// Product is immutable for the duration of a builder session.
// Available is resolved per store.
type Product struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	CategoryID  int     `json:"category"`
	Price       float64 `json:"price"`
	Image       string  `json:"image,omitempty"`
	Description string  `json:"description,omitempty"`
	Available   bool    `json:"available"`
}

// Rule requires Units items picked from CategoryID.
type Rule struct {
	CategoryID int `json:"categoryId"`
	Units      int `json:"units"`
}

type CategoryRef struct {
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// SelectionSpec declares what a combo requires.
//
// CategoryIDs and CategoryNames are the legacy index-aligned encoding. They
// are only read on input and folded into Categories by Normalize.
type SelectionSpec struct {
	Categories map[int]CategoryRef `json:"categories"`
	Rules      []Rule              `json:"rules"`

	CategoryIDs   []int    `json:"categoryIds,omitempty"`
	CategoryNames []string `json:"categoryNames,omitempty"`
}

type Combo struct {
	ID            int            `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	Price         float64        `json:"price"`
	Image         string         `json:"image,omitempty"`
	Active        bool           `json:"active"`
	SelectionSpec *SelectionSpec `json:"selectionSpec"`
}

// StoreCatalog is the public read-model a client needs to render a store.
type StoreCatalog struct {
	Store      *Store     `json:"store"`
	Categories []Category `json:"categories"`
	Products   []Product  `json:"products"`
	Combos     []Combo    `json:"combos"`
}

// Normalize folds the legacy parallel arrays into Categories and clears them.
// Entries already present in Categories win. A spec without legacy arrays
// is left untouched, so stored specs can be shared by concurrent readers.
func (s *SelectionSpec) Normalize() {
	if s == nil || (s.CategoryIDs == nil && s.CategoryNames == nil) {
		return
	}
	if s.Categories == nil {
		s.Categories = make(map[int]CategoryRef)
	}
	for i, id := range s.CategoryIDs {
		if _, ok := s.Categories[id]; ok {
			continue
		}
		ref := CategoryRef{}
		if i < len(s.CategoryNames) {
			ref.Name = s.CategoryNames[i]
		}
		s.Categories[id] = ref
	}
	s.CategoryIDs = nil
	s.CategoryNames = nil
}

// CategoryName resolves a category name from the spec, then from cats.
func (s *SelectionSpec) CategoryName(id int, cats []Category) string {
	if s != nil {
		if ref, ok := s.Categories[id]; ok && ref.Name != "" {
			return ref.Name
		}
	}
	for _, c := range cats {
		if c.ID == id {
			return c.Name
		}
	}
	return ""
}

// CategoryIcon mirrors CategoryName for the icon field.
func (s *SelectionSpec) CategoryIcon(id int, cats []Category) string {
	if s != nil {
		if ref, ok := s.Categories[id]; ok && ref.Icon != "" {
			return ref.Icon
		}
	}
	for _, c := range cats {
		if c.ID == id {
			return c.Icon
		}
	}
	return ""
}
