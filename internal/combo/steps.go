package combo

import (
	"sort"
	"strings"

	"empanadas/internal/catalog"
)

// Step is one category-scoped phase of the wizard.
type Step struct {
	CategoryID int    `json:"categoryId"`
	Name       string `json:"name"`
	Icon       string `json:"icon,omitempty"`
	Units      int    `json:"units"`
}

// priority buckets, lowest first
const (
	bucketEmpanadas = iota + 1
	bucketDrinks
	bucketDesserts
	bucketOther
)

func stepPriority(name string) int {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "empanada"),
		strings.Contains(n, "tradicional"),
		strings.Contains(n, "especial"):
		return bucketEmpanadas
	case strings.Contains(n, "bebida"):
		return bucketDrinks
	case strings.Contains(n, "postre"):
		return bucketDesserts
	default:
		return bucketOther
	}
}

// RequiredSteps derives the ordered wizard steps of a combo.
//
// Rules are reduced to distinct categories in rule order (repeated rules for
// one category add up their units), categories without a single product in
// products are dropped, and the rest are stably sorted by priority bucket so
// ties keep rule order. products must already be filtered to what the store
// can sell. A nil result means the combo cannot be built.
func RequiredSteps(c *catalog.Combo, products []catalog.Product, cats []catalog.Category) []Step {
	if c == nil || c.SelectionSpec == nil || len(c.SelectionSpec.Rules) == 0 {
		return nil
	}
	spec := c.SelectionSpec

	units := make(map[int]int)
	var order []int
	for _, rule := range spec.Rules {
		if rule.Units <= 0 {
			continue
		}
		if _, seen := units[rule.CategoryID]; !seen {
			order = append(order, rule.CategoryID)
		}
		units[rule.CategoryID] += rule.Units
	}

	stocked := make(map[int]bool)
	for _, p := range products {
		stocked[p.CategoryID] = true
	}

	var steps []Step
	for _, id := range order {
		if !stocked[id] {
			continue
		}
		steps = append(steps, Step{
			CategoryID: id,
			Name:       spec.CategoryName(id, cats),
			Icon:       spec.CategoryIcon(id, cats),
			Units:      units[id],
		})
	}

	sort.SliceStable(steps, func(i, j int) bool {
		return stepPriority(steps[i].Name) < stepPriority(steps[j].Name)
	})
	return steps
}
