package menu

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var ErrInvalidFile = errors.New("invalid menu file")

var allowedExt = map[string]bool{
	".csv":  true,
	".json": true,
	".xlsx": true,
}

func ValidateFileExtension(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))

	if ext == "" {
		return fmt.Errorf("%w: file extension missing", ErrInvalidFile)
	}

	if !allowedExt[ext] {
		return fmt.Errorf("%w: file type not allowed", ErrInvalidFile)
	}

	return nil
}

// validateItems keeps the usable rows and explains every rejected one.
// Rows are numbered from 1 as a spreadsheet user sees them after the header.
func validateItems(items []Item) ([]Item, []string) {
	var (
		valid   []Item
		skipped []string
		seen    = make(map[string]int)
	)

	for i, it := range items {
		row := i + 1
		it.normalize()

		switch {
		case it.Name == "":
			skipped = append(skipped, fmt.Sprintf("row %d: name is required", row))
			continue
		case it.Category == "":
			skipped = append(skipped, fmt.Sprintf("row %d: category is required", row))
			continue
		case it.Price < 0:
			skipped = append(skipped, fmt.Sprintf("row %d: price must not be negative", row))
			continue
		}

		k := key(it.Category) + "/" + key(it.Name)
		if first, dup := seen[k]; dup {
			skipped = append(skipped, fmt.Sprintf("row %d: duplicate of row %d", row, first))
			continue
		}
		seen[k] = row
		valid = append(valid, it)
	}
	return valid, skipped
}
