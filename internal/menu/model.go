package menu

// ParsedMenu is the validated, normalized content of an uploaded file.
type ParsedMenu struct {
	Items []Item `json:"items"`
}

// ImportReport describes what an import did (or would do on a dry run).
type ImportReport struct {
	DryRun            bool     `json:"dryRun"`
	ArchivedAt        string   `json:"archivedAt,omitempty"`
	Rows              int      `json:"rows"`
	CategoriesCreated []string `json:"categoriesCreated"`
	ProductsCreated   int      `json:"productsCreated"`
	ProductsUpdated   int      `json:"productsUpdated"`
	Skipped           []string `json:"skipped"`
}
