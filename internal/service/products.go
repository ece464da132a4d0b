package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/guttosm/macro-service/internal/domain/model"
	"github.com/guttosm/macro-service/internal/store"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const defaultProductName = "New Product"

// ErrInvalidSortKey is returned for unknown product sort keys.
var ErrInvalidSortKey = errors.New("invalid sort key")

// ProductService manages the product catalog.
type ProductService interface {
	List(ctx context.Context) []model.Product
	Get(ctx context.Context, id model.ID) (model.Product, error)
	Create(ctx context.Context, patch model.ProductPatch) (model.Product, error)
	Update(ctx context.Context, id model.ID, patch model.ProductPatch) (model.Product, error)
	Duplicate(ctx context.Context, id model.ID) (model.Product, error)
	Remove(ctx context.Context, id model.ID) error
	LoadStarter(ctx context.Context) ([]model.Product, error)
	Sort(ctx context.Context, key string) ([]model.Product, error)
	Import(ctx context.Context, product model.Product) (model.Product, error)
}

// ProductServiceImpl implements ProductService on a workspace.
type ProductServiceImpl struct {
	ws *store.Workspace
}

// NewProductService creates a product service.
func NewProductService(ws *store.Workspace) *ProductServiceImpl {
	return &ProductServiceImpl{ws: ws}
}

func (s *ProductServiceImpl) List(_ context.Context) []model.Product {
	return s.ws.Products()
}

func (s *ProductServiceImpl) Get(_ context.Context, id model.ID) (model.Product, error) {
	p, ok := model.FindProduct(s.ws.Products(), id)
	if !ok {
		return model.Product{}, model.ErrProductNotFound
	}
	return *p, nil
}

// Create appends a product built from the defaults plus patch.
func (s *ProductServiceImpl) Create(ctx context.Context, patch model.ProductPatch) (model.Product, error) {
	p := model.Product{
		ID:           model.NewID(),
		Name:         defaultProductName,
		ServingGrams: 100,
		Unit:         model.UnitLabelGrams,
		GramsPerUnit: 1,
	}
	patch.Apply(&p)
	return s.append(ctx, p)
}

// Import appends an externally sourced product under a fresh id.
func (s *ProductServiceImpl) Import(ctx context.Context, product model.Product) (model.Product, error) {
	product.ID = model.NewID()
	if strings.TrimSpace(product.Name) == "" {
		product.Name = importedProductName
	}
	if product.ServingGrams <= 0 {
		product.ServingGrams = 100
	}
	return s.append(ctx, product)
}

func (s *ProductServiceImpl) append(ctx context.Context, p model.Product) (model.Product, error) {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return model.Product{}, err
	}
	_, err := s.ws.UpdateProducts(ctx, func(products []model.Product) ([]model.Product, error) {
		return append(products, p), nil
	})
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (s *ProductServiceImpl) Update(ctx context.Context, id model.ID, patch model.ProductPatch) (model.Product, error) {
	var updated model.Product
	_, err := s.ws.UpdateProducts(ctx, func(products []model.Product) ([]model.Product, error) {
		p, ok := model.FindProduct(products, id)
		if !ok {
			return nil, model.ErrProductNotFound
		}
		next := *p
		patch.Apply(&next)
		next.Normalize()
		if err := next.Validate(); err != nil {
			return nil, err
		}
		*p = next
		updated = next
		return products, nil
	})
	return updated, err
}

// Duplicate appends a copy of a product under a fresh id. The name is kept.
func (s *ProductServiceImpl) Duplicate(ctx context.Context, id model.ID) (model.Product, error) {
	var dup model.Product
	_, err := s.ws.UpdateProducts(ctx, func(products []model.Product) ([]model.Product, error) {
		p, ok := model.FindProduct(products, id)
		if !ok {
			return nil, model.ErrProductNotFound
		}
		dup = *p
		dup.ID = model.NewID()
		return append(products, dup), nil
	})
	return dup, err
}

// Remove deletes a product. Items referencing it keep a dangling id.
func (s *ProductServiceImpl) Remove(ctx context.Context, id model.ID) error {
	_, err := s.ws.UpdateProducts(ctx, func(products []model.Product) ([]model.Product, error) {
		n := len(products)
		products = slices.DeleteFunc(products, func(p model.Product) bool { return p.ID == id })
		if len(products) == n {
			return nil, model.ErrProductNotFound
		}
		return products, nil
	})
	return err
}

// LoadStarter replaces the catalog with the starter pack.
func (s *ProductServiceImpl) LoadStarter(ctx context.Context) ([]model.Product, error) {
	return s.ws.UpdateProducts(ctx, func([]model.Product) ([]model.Product, error) {
		return StarterProducts(), nil
	})
}

// Sort reorders the catalog in place. Keys are "name", "name-asc",
// "name-desc" and "<cal|protein|carbs|fat>-<asc|desc>".
func (s *ProductServiceImpl) Sort(ctx context.Context, key string) ([]model.Product, error) {
	less, err := productOrder(key)
	if err != nil {
		return nil, err
	}
	return s.ws.UpdateProducts(ctx, func(products []model.Product) ([]model.Product, error) {
		slices.SortStableFunc(products, less)
		return products, nil
	})
}

func productOrder(key string) (func(a, b model.Product) int, error) {
	field, dir, _ := strings.Cut(key, "-")
	if dir == "" && field == "name" {
		dir = "asc"
	}
	if dir != "asc" && dir != "desc" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSortKey, key)
	}

	var order func(a, b model.Product) int
	switch field {
	case "name":
		coll := collate.New(language.Und, collate.IgnoreCase)
		order = func(a, b model.Product) int { return coll.CompareString(a.Name, b.Name) }
	case "cal":
		order = func(a, b model.Product) int { return cmp.Compare(a.Calories, b.Calories) }
	case "protein":
		order = func(a, b model.Product) int { return cmp.Compare(a.Protein, b.Protein) }
	case "carbs":
		order = func(a, b model.Product) int { return cmp.Compare(a.Carbs, b.Carbs) }
	case "fat":
		order = func(a, b model.Product) int { return cmp.Compare(a.Fat, b.Fat) }
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidSortKey, key)
	}

	if dir == "desc" {
		return func(a, b model.Product) int { return order(b, a) }, nil
	}
	return order, nil
}
