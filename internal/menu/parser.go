package menu

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
	"github.com/spf13/cast"
)

// Parse reads a menu file. The format follows the extension:
//   - .json: {"items": [...]} or a bare array of items
//   - .csv: header row with name,category,price,description
//   - .xlsx: first sheet, same header as the CSV
func Parse(filename string, r io.Reader) (*ParsedMenu, error) {
	if err := ValidateFileExtension(filename); err != nil {
		return nil, err
	}

	var (
		items []Item
		err   error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		items, err = parseJSON(r)
	case ".csv":
		items, err = parseCSV(r)
	case ".xlsx":
		items, err = parseXLSX(r)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrInvalidFile)
	}
	return &ParsedMenu{Items: items}, nil
}

func parseJSON(r io.Reader) ([]Item, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)

	if len(data) > 0 && data[0] == '[' {
		var items []Item
		err := json.Unmarshal(data, &items)
		return items, err
	}

	var doc ParsedMenu
	err = json.Unmarshal(data, &doc)
	return doc.Items, err
}

func parseCSV(r io.Reader) ([]Item, error) {
	var rows []*Item
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, *row)
	}
	return items, nil
}

func parseXLSX(r io.Reader) ([]Item, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}

	sheet := firstSheet(book.GetSheetMap())
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows := book.GetRows(sheet)
	if len(rows) < 2 {
		return nil, nil
	}

	cols := make(map[string]int)
	for i, h := range rows[0] {
		cols[key(h)] = i
	}
	for _, required := range []string{"name", "category", "price"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing %q column", required)
		}
	}

	cell := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	items := make([]Item, 0, len(rows)-1)
	for n, row := range rows[1:] {
		price, err := cast.ToFloat64E(strings.TrimSpace(cell(row, "price")))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid price %q", n+1, cell(row, "price"))
		}
		items = append(items, Item{
			Name:        cell(row, "name"),
			Category:    cell(row, "category"),
			Price:       price,
			Description: cell(row, "description"),
		})
	}
	return items, nil
}

func firstSheet(sheets map[int]string) string {
	first, name := 0, ""
	for idx, n := range sheets {
		if name == "" || idx < first {
			first, name = idx, n
		}
	}
	return name
}
