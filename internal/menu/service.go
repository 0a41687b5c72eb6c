package menu

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"empanadas/internal/catalog"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CatalogWriter is the part of the catalog an import touches.
// Satisfied by *catalog.Service.
type CatalogWriter interface {
	ListCategories(ctx context.Context) ([]catalog.Category, error)
	CreateCategory(ctx context.Context, category *catalog.Category) error
	ListProducts(ctx context.Context) ([]catalog.Product, error)
	CreateProduct(ctx context.Context, product *catalog.Product) error
	UpdateProduct(ctx context.Context, product *catalog.Product) error
}

type Service struct {
	catalog CatalogWriter
	storage catalog.Storage
}

// NewService wires the importer. storage may be nil, in which case
// uploaded files are not archived.
func NewService(writer CatalogWriter, storage catalog.Storage) *Service {
	return &Service{catalog: writer, storage: storage}
}

// --------------------------------------------------
// Import uploaded menu file
// --------------------------------------------------
func (s *Service) ImportFile(
	ctx context.Context,
	file multipart.File,
	filename string,
	contentType string,
	dryRun bool,
) (*ImportReport, error) {
	if err := ValidateFileExtension(filename); err != nil {
		return nil, err
	}

	var archived string
	if s.storage != nil && !dryRun {
		key := fmt.Sprintf(
			"menus/%s%s",
			uuid.New().String(),
			strings.ToLower(filepath.Ext(filename)),
		)
		url, err := s.storage.Upload(ctx, key, file, contentType)
		if err != nil {
			return nil, err
		}
		archived = url
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
	}

	parsed, err := Parse(filename, file)
	if err != nil {
		return nil, err
	}

	report, err := s.Apply(ctx, parsed, dryRun)
	if err != nil {
		return nil, err
	}
	report.ArchivedAt = archived
	return report, nil
}

// --------------------------------------------------
// Apply parsed menu to the catalog
// --------------------------------------------------

// Apply creates missing categories and upserts products matched by
// (category, name). Existing products keep their image.
func (s *Service) Apply(ctx context.Context, parsed *ParsedMenu, dryRun bool) (*ImportReport, error) {
	items, skipped := validateItems(parsed.Items)
	report := &ImportReport{
		DryRun:            dryRun,
		Rows:              len(parsed.Items),
		CategoriesCreated: []string{},
		Skipped:           skipped,
	}
	if report.Skipped == nil {
		report.Skipped = []string{}
	}

	cats, err := s.catalog.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	categoryIDs := make(map[string]int, len(cats))
	for _, c := range cats {
		categoryIDs[key(c.Name)] = c.ID
	}

	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	existing := make(map[string]catalog.Product, len(products))
	for _, p := range products {
		existing[fmt.Sprintf("%d/%s", p.CategoryID, key(p.Name))] = p
	}

	for _, it := range items {
		catID, ok := categoryIDs[key(it.Category)]
		if !ok {
			report.CategoriesCreated = append(report.CategoriesCreated, it.Category)
			if dryRun {
				// negative ids keep new categories apart until they exist
				catID = -len(report.CategoriesCreated)
			} else {
				c := &catalog.Category{Name: it.Category}
				if err := s.catalog.CreateCategory(ctx, c); err != nil {
					return nil, err
				}
				catID = c.ID
			}
			categoryIDs[key(it.Category)] = catID
		}

		if p, ok := existing[fmt.Sprintf("%d/%s", catID, key(it.Name))]; ok {
			report.ProductsUpdated++
			if dryRun {
				continue
			}
			p.Price = it.Price
			if it.Description != "" {
				p.Description = it.Description
			}
			if err := s.catalog.UpdateProduct(ctx, &p); err != nil {
				return nil, err
			}
			continue
		}

		report.ProductsCreated++
		if dryRun {
			continue
		}
		p := &catalog.Product{
			Name:        it.Name,
			CategoryID:  catID,
			Price:       it.Price,
			Description: it.Description,
		}
		if err := s.catalog.CreateProduct(ctx, p); err != nil {
			return nil, err
		}
	}

	zap.S().Infow("menu import",
		"dry_run", dryRun,
		"rows", report.Rows,
		"categories_created", len(report.CategoriesCreated),
		"products_created", report.ProductsCreated,
		"products_updated", report.ProductsUpdated,
		"skipped", len(report.Skipped),
	)
	return report, nil
}
