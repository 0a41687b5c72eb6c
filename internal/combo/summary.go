package combo

type SummaryItem struct {
	ProductID   int    `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
}

type StepSummary struct {
	StepProgress
	Name  string        `json:"name"`
	Icon  string        `json:"icon,omitempty"`
	Items []SummaryItem `json:"items"`
}

// Summary is the read-model behind the progress panel. TotalPrice is the
// combo's flat price whatever products were picked.
type Summary struct {
	ComboID      int           `json:"comboId"`
	ComboName    string        `json:"comboName"`
	CurrentStep  int           `json:"currentStep"`
	CurrentIndex int           `json:"currentIndex"`
	TotalSteps   int           `json:"totalSteps"`
	Steps        []StepSummary `json:"steps"`
	Complete     bool          `json:"complete"`
	CanAdd       bool          `json:"canAdd"`
	CanContinue  bool          `json:"canContinue"`
	CanAddToCart bool          `json:"canAddToCart"`
	IsLastStep   bool          `json:"isLastStep"`
	TotalPrice   float64       `json:"totalPrice"`
}

func (b *Builder) Summary() Summary {
	steps := make([]StepSummary, 0, len(b.steps))
	for _, s := range b.steps {
		items := []SummaryItem{}
		for _, id := range sortedIDs(b.selections[s.CategoryID]) {
			items = append(items, SummaryItem{
				ProductID:   id,
				ProductName: b.products[id].Name,
				Quantity:    b.selections[s.CategoryID][id],
			})
		}
		steps = append(steps, StepSummary{
			StepProgress: b.Progress(s.CategoryID),
			Name:         s.Name,
			Icon:         s.Icon,
			Items:        items,
		})
	}

	complete := b.IsComboComplete()
	current := b.steps[b.current]

	return Summary{
		ComboID:      b.combo.ID,
		ComboName:    b.combo.Name,
		CurrentStep:  current.CategoryID,
		CurrentIndex: b.current,
		TotalSteps:   len(b.steps),
		Steps:        steps,
		Complete:     complete,
		CanAdd:       b.CanAdd(),
		CanContinue:  b.IsStepComplete(current.CategoryID) && !b.IsLastStep(),
		CanAddToCart: complete,
		IsLastStep:   b.IsLastStep(),
		TotalPrice:   b.combo.Price,
	}
}
