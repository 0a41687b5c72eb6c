package combo

import (
	"errors"
	"sort"
	"time"

	"empanadas/internal/catalog"
)

var (
	ErrNoSteps          = errors.New("combo has no category with available products")
	ErrUnknownProduct   = errors.New("product is not available")
	ErrProductNotInStep = errors.New("product does not belong to the current step")
	ErrStepIncomplete   = errors.New("current step is not complete")
	ErrNoNextStep       = errors.New("already at the last step")
)

// StepProgress is the per-step counter a selector renders.
// Remaining goes negative once the step is over-filled.
type StepProgress struct {
	CategoryID int  `json:"categoryId"`
	Required   int  `json:"required"`
	Selected   int  `json:"selected"`
	Remaining  int  `json:"remaining"`
	Complete   bool `json:"complete"`
	OverLimit  bool `json:"isOverLimit"`
}

// Builder is the selection state machine for one combo.
//
// The per-step cap is soft: Add never refuses a product of the current
// step, it only makes the step over-filled. CanAdd is what a selector uses
// to disable its "+" control. Builder is not safe for concurrent use.
type Builder struct {
	combo      *catalog.Combo
	steps      []Step
	current    int
	selections Selections
	products   map[int]catalog.Product
}

// NewBuilder sequences the combo steps and starts at the first one with no
// selections. products must be the store's available products.
func NewBuilder(c *catalog.Combo, products []catalog.Product, cats []catalog.Category) (*Builder, error) {
	steps := RequiredSteps(c, products, cats)
	if len(steps) == 0 {
		return nil, ErrNoSteps
	}

	byID := make(map[int]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	return &Builder{
		combo:      c,
		steps:      steps,
		selections: make(Selections),
		products:   byID,
	}, nil
}

func (b *Builder) Combo() *catalog.Combo { return b.combo }

func (b *Builder) Steps() []Step {
	out := make([]Step, len(b.steps))
	copy(out, b.steps)
	return out
}

func (b *Builder) CurrentStep() Step { return b.steps[b.current] }

func (b *Builder) CurrentIndex() int { return b.current }

func (b *Builder) IsFirstStep() bool { return b.current == 0 }

func (b *Builder) IsLastStep() bool { return b.current == len(b.steps)-1 }

// Products lists the selectable products by ascending id.
func (b *Builder) Products() []catalog.Product {
	out := make([]catalog.Product, 0, len(b.products))
	for _, p := range b.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Selections returns a copy of the current selections.
func (b *Builder) Selections() Selections { return b.selections.Clone() }

func (b *Builder) step(categoryID int) (Step, bool) {
	for _, s := range b.steps {
		if s.CategoryID == categoryID {
			return s, true
		}
	}
	return Step{}, false
}

// --------------------------------------------------
// Transitions
// --------------------------------------------------

// Add records one more unit of productID under the current step.
func (b *Builder) Add(productID int) error {
	p, ok := b.products[productID]
	if !ok {
		return ErrUnknownProduct
	}
	step := b.steps[b.current]
	if p.CategoryID != step.CategoryID {
		return ErrProductNotInStep
	}

	picked := b.selections[step.CategoryID]
	if picked == nil {
		picked = make(map[int]int)
		b.selections[step.CategoryID] = picked
	}
	picked[productID]++
	return nil
}

// Remove takes one unit of productID off the current step. Removing a
// product that is not selected is a no-op.
func (b *Builder) Remove(productID int) {
	catID := b.steps[b.current].CategoryID
	picked := b.selections[catID]
	if picked[productID] == 0 {
		return
	}

	picked[productID]--
	if picked[productID] == 0 {
		delete(picked, productID)
	}
	if len(picked) == 0 {
		delete(b.selections, catID)
	}
}

// Advance moves to the next step once the current one is satisfied.
func (b *Builder) Advance() error {
	if !b.IsStepComplete(b.steps[b.current].CategoryID) {
		return ErrStepIncomplete
	}
	if b.IsLastStep() {
		return ErrNoNextStep
	}
	b.current++
	return nil
}

// Retreat moves to the previous step. It reports true when called on the
// first step, meaning the wizard should be left.
func (b *Builder) Retreat() (exited bool) {
	if b.current == 0 {
		return true
	}
	b.current--
	return false
}

// --------------------------------------------------
// Predicates
// --------------------------------------------------

func (b *Builder) StepCount(categoryID int) int {
	return b.selections.Total(categoryID)
}

// IsStepComplete is false for categories that are not a step.
func (b *Builder) IsStepComplete(categoryID int) bool {
	s, ok := b.step(categoryID)
	if !ok {
		return false
	}
	return b.StepCount(categoryID) >= s.Units
}

func (b *Builder) IsComboComplete() bool {
	for _, s := range b.steps {
		if b.StepCount(s.CategoryID) < s.Units {
			return false
		}
	}
	return true
}

// CanAdd reports whether the current step still has room.
func (b *Builder) CanAdd() bool {
	s := b.steps[b.current]
	return b.StepCount(s.CategoryID) < s.Units
}

// Progress is the zero StepProgress for categories that are not a step.
func (b *Builder) Progress(categoryID int) StepProgress {
	s, ok := b.step(categoryID)
	if !ok {
		return StepProgress{CategoryID: categoryID}
	}
	selected := b.StepCount(categoryID)
	return StepProgress{
		CategoryID: categoryID,
		Required:   s.Units,
		Selected:   selected,
		Remaining:  s.Units - selected,
		Complete:   selected >= s.Units,
		OverLimit:  selected > s.Units,
	}
}

// --------------------------------------------------
// Persistence
// --------------------------------------------------

// Draft snapshots the builder for sessionID.
func (b *Builder) Draft(sessionID string) *Draft {
	return &Draft{
		SessionID:   sessionID,
		ComboID:     b.combo.ID,
		CurrentStep: b.steps[b.current].CategoryID,
		Selections:  b.selections.Clone(),
		UpdatedAt:   time.Now().UTC(),
	}
}

// Restore loads a draft saved for the same combo. Entries that no longer
// fit (category not a step anymore, product gone or recategorized,
// non-positive quantity) are dropped, and an unknown current step falls
// back to the first one.
func (b *Builder) Restore(d *Draft) {
	if d == nil || d.ComboID != b.combo.ID {
		return
	}

	restored := make(Selections)
	for catID, picked := range d.Selections {
		if _, ok := b.step(catID); !ok {
			continue
		}
		for productID, qty := range picked {
			p, ok := b.products[productID]
			if !ok || p.CategoryID != catID || qty <= 0 {
				continue
			}
			if restored[catID] == nil {
				restored[catID] = make(map[int]int)
			}
			restored[catID][productID] = qty
		}
	}
	b.selections = restored

	b.current = 0
	for i, s := range b.steps {
		if s.CategoryID == d.CurrentStep {
			b.current = i
			break
		}
	}
}

// --------------------------------------------------
// Cart handoff
// --------------------------------------------------

// Detail is one flattened line of a committed combo.
type Detail struct {
	ProductID    int    `json:"productId"`
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	CategoryType string `json:"categoryType"`
}

// Details flattens the selections in step order, products by ascending id.
func (b *Builder) Details() []Detail {
	var out []Detail
	for _, s := range b.steps {
		for _, id := range sortedIDs(b.selections[s.CategoryID]) {
			out = append(out, Detail{
				ProductID:    id,
				Name:         b.products[id].Name,
				Quantity:     b.selections[s.CategoryID][id],
				CategoryType: s.Name,
			})
		}
	}
	return out
}

func sortedIDs(m map[int]int) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
