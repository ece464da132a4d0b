package model

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// ID is a stable string identifier. Documents written by older clients
// carry numeric ids; those are accepted and stringified on decode.
type ID string

// NewID returns a fresh random identifier.
func NewID() ID {
	return ID(uuid.NewString())
}

// UnmarshalJSON accepts both JSON strings and JSON numbers.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*id = IDFromNumber(f)
	return nil
}

// IDFromNumber formats a numeric legacy id the way it is displayed.
func IDFromNumber(f float64) ID {
	return ID(strconv.FormatFloat(f, 'f', -1, 64))
}

// Unit is the display label of a product amount.
type Unit string

const (
	UnitLabelGrams      Unit = "g"
	UnitLabelMillilitre Unit = "ml"
	UnitLabelPiece      Unit = "unit"
	UnitLabelScoop      Unit = "scoop"
)

// Valid reports whether u is one of the known labels.
func (u Unit) Valid() bool {
	switch u {
	case UnitLabelGrams, UnitLabelMillilitre, UnitLabelPiece, UnitLabelScoop:
		return true
	}
	return false
}

// UnitKind selects how an item amount is interpreted by the calculator.
type UnitKind int

const (
	// UnitGrams treats the amount as grams (or millilitres).
	UnitGrams UnitKind = iota
	// UnitCount treats the amount as a count of gramsPerUnit-sized units.
	UnitCount
)

// String returns the config representation of the kind.
func (k UnitKind) String() string {
	if k == UnitCount {
		return "count"
	}
	return "grams"
}

// ParseUnitKind parses "grams" or "count"; anything else is grams.
func ParseUnitKind(s string) UnitKind {
	if s == "count" {
		return UnitCount
	}
	return UnitGrams
}

// Product is a food with macro values per serving.
//
// @Description Food product with per-serving macros
type Product struct {
	ID           ID      `json:"id" example:"1"`
	Name         string  `json:"name" example:"Tofu"`
	ServingGrams float64 `json:"servingGrams" example:"100"`
	Unit         Unit    `json:"unit" example:"g"`
	GramsPerUnit float64 `json:"gramsPerUnit,omitempty" example:"1"`
	Calories     float64 `json:"cal" example:"76"`
	Protein      float64 `json:"protein" example:"8"`
	Carbs        float64 `json:"carbs" example:"2"`
	Fat          float64 `json:"fat" example:"5"`
}

// Serving returns the macro vector of one serving.
func (p Product) Serving() Macros {
	return Macros{Calories: p.Calories, Protein: p.Protein, Carbs: p.Carbs, Fat: p.Fat}
}

// UnitGrams returns gramsPerUnit, falling back to 1 when unset or invalid.
func (p Product) UnitGrams() float64 {
	if p.GramsPerUnit <= 0 {
		return 1
	}
	return p.GramsPerUnit
}

// Normalize fills defaults for fields older documents leave out.
func (p *Product) Normalize() {
	if p.Unit == "" {
		p.Unit = UnitLabelGrams
	}
	if p.GramsPerUnit <= 0 {
		p.GramsPerUnit = 1
	}
}

// FindProduct returns the product with the given id.
func FindProduct(products []Product, id ID) (*Product, bool) {
	for i := range products {
		if products[i].ID == id {
			return &products[i], true
		}
	}
	return nil, false
}

// ProductIndex maps ids to products for repeated lookups.
type ProductIndex map[ID]*Product

// IndexProducts builds a ProductIndex over products.
func IndexProducts(products []Product) ProductIndex {
	idx := make(ProductIndex, len(products))
	for i := range products {
		if _, ok := idx[products[i].ID]; !ok {
			idx[products[i].ID] = &products[i]
		}
	}
	return idx
}

// Lookup returns the product for id or nil.
func (idx ProductIndex) Lookup(id ID) *Product {
	return idx[id]
}

// ErrInvalidProduct is returned for products with impossible values.
var ErrInvalidProduct = errors.New("invalid product")

// Validate checks serving size, unit label and macro signs. Values must be
// finite and small enough that per-gram and per-unit macros stay finite.
func (p Product) Validate() error {
	switch {
	case !IsFinite(p.ServingGrams) || !IsFinite(p.GramsPerUnit) || !p.Serving().IsFinite():
		return fmt.Errorf("%w: values must be finite", ErrInvalidProduct)
	case p.ServingGrams <= 0:
		return fmt.Errorf("%w: servingGrams must be positive", ErrInvalidProduct)
	case p.Unit != "" && !p.Unit.Valid():
		return fmt.Errorf("%w: unknown unit %q", ErrInvalidProduct, p.Unit)
	case p.GramsPerUnit < 0:
		return fmt.Errorf("%w: gramsPerUnit must not be negative", ErrInvalidProduct)
	case p.Calories < 0 || p.Protein < 0 || p.Carbs < 0 || p.Fat < 0:
		return fmt.Errorf("%w: macros must not be negative", ErrInvalidProduct)
	case !p.Serving().Scale(p.UnitGrams() / p.ServingGrams).IsFinite():
		return fmt.Errorf("%w: macros per unit overflow", ErrInvalidProduct)
	}
	return nil
}

// ProductPatch is a partial product update; nil fields are left alone.
//
// @Description Partial product fields
type ProductPatch struct {
	Name         *string  `json:"name,omitempty" example:"Tofu"`
	ServingGrams *float64 `json:"servingGrams,omitempty" example:"100"`
	Unit         *Unit    `json:"unit,omitempty" example:"g"`
	GramsPerUnit *float64 `json:"gramsPerUnit,omitempty" example:"1"`
	Calories     *float64 `json:"cal,omitempty" example:"76"`
	Protein      *float64 `json:"protein,omitempty" example:"8"`
	Carbs        *float64 `json:"carbs,omitempty" example:"2"`
	Fat          *float64 `json:"fat,omitempty" example:"5"`
}

// Apply copies the set fields onto p.
func (patch ProductPatch) Apply(p *Product) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.ServingGrams != nil {
		p.ServingGrams = *patch.ServingGrams
	}
	if patch.Unit != nil {
		p.Unit = *patch.Unit
	}
	if patch.GramsPerUnit != nil {
		p.GramsPerUnit = *patch.GramsPerUnit
	}
	if patch.Calories != nil {
		p.Calories = *patch.Calories
	}
	if patch.Protein != nil {
		p.Protein = *patch.Protein
	}
	if patch.Carbs != nil {
		p.Carbs = *patch.Carbs
	}
	if patch.Fat != nil {
		p.Fat = *patch.Fat
	}
}
