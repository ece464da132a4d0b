package model

import (
	"math"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected ID
		wantErr  bool
	}{
		{name: "string id", input: `"abc"`, expected: "abc"},
		{name: "integer id", input: `1`, expected: "1"},
		{name: "large timestamp id", input: `1718000000000`, expected: "1718000000000"},
		{name: "fractional id", input: `1718000000000.5`, expected: "1718000000000.5"},
		{name: "null id", input: `null`, expected: ""},
		{name: "object id", input: `{}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id ID
			err := json.Unmarshal([]byte(tt.input), &id)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, id)
		})
	}
}

func TestProduct_LegacyDocument(t *testing.T) {
	raw := `{"id":1,"name":"Tofu Scramble","servingGrams":200,"unit":"g","cal":228,"protein":22,"carbs":4,"fat":14}`

	var p Product
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	p.Normalize()

	assert.Equal(t, ID("1"), p.ID)
	assert.Equal(t, 200.0, p.ServingGrams)
	assert.Equal(t, 1.0, p.GramsPerUnit)
	assert.Equal(t, Macros{Calories: 228, Protein: 22, Carbs: 4, Fat: 14}, p.Serving())
}

func TestProduct_UnitGrams(t *testing.T) {
	assert.Equal(t, 1.0, Product{}.UnitGrams())
	assert.Equal(t, 1.0, Product{GramsPerUnit: -3}.UnitGrams())
	assert.Equal(t, 30.0, Product{GramsPerUnit: 30}.UnitGrams())
}

func TestProduct_Normalize(t *testing.T) {
	p := Product{Unit: UnitLabelScoop, GramsPerUnit: 35}
	p.Normalize()
	assert.Equal(t, UnitLabelScoop, p.Unit)
	assert.Equal(t, 35.0, p.GramsPerUnit)

	empty := Product{}
	empty.Normalize()
	assert.Equal(t, UnitLabelGrams, empty.Unit)
	assert.Equal(t, 1.0, empty.GramsPerUnit)
}

func TestUnit_Valid(t *testing.T) {
	for _, u := range []Unit{UnitLabelGrams, UnitLabelMillilitre, UnitLabelPiece, UnitLabelScoop} {
		assert.True(t, u.Valid(), u)
	}
	assert.False(t, Unit("cup").Valid())
}

func TestParseUnitKind(t *testing.T) {
	assert.Equal(t, UnitCount, ParseUnitKind("count"))
	assert.Equal(t, UnitGrams, ParseUnitKind("grams"))
	assert.Equal(t, UnitGrams, ParseUnitKind(""))
	assert.Equal(t, "count", UnitCount.String())
	assert.Equal(t, "grams", UnitGrams.String())
}

func TestIndexProducts_FirstWins(t *testing.T) {
	products := []Product{
		{ID: "1", Name: "first"},
		{ID: "1", Name: "second"},
		{ID: "2", Name: "other"},
	}

	idx := IndexProducts(products)
	assert.Equal(t, "first", idx.Lookup("1").Name)
	assert.Equal(t, "other", idx.Lookup("2").Name)
	assert.Nil(t, idx.Lookup("missing"))

	p, ok := FindProduct(products, "1")
	require.True(t, ok)
	assert.Equal(t, "first", p.Name)

	_, ok = FindProduct(products, "missing")
	assert.False(t, ok)
}

func TestNewID_Unique(t *testing.T) {
	assert.NotEqual(t, NewID(), NewID())
}

func TestProduct_Validate(t *testing.T) {
	valid := Product{ID: "1", Name: "Tofu", ServingGrams: 100, Unit: UnitLabelGrams, Calories: 76}

	tests := []struct {
		name    string
		mutate  func(p *Product)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Product) {}},
		{name: "empty unit allowed", mutate: func(p *Product) { p.Unit = "" }},
		{name: "zero serving", mutate: func(p *Product) { p.ServingGrams = 0 }, wantErr: true},
		{name: "unknown unit", mutate: func(p *Product) { p.Unit = "cup" }, wantErr: true},
		{name: "negative grams per unit", mutate: func(p *Product) { p.GramsPerUnit = -1 }, wantErr: true},
		{name: "negative fat", mutate: func(p *Product) { p.Fat = -0.1 }, wantErr: true},
		{name: "nan protein", mutate: func(p *Product) { p.Protein = math.NaN() }, wantErr: true},
		{name: "infinite serving", mutate: func(p *Product) { p.ServingGrams = math.Inf(1) }, wantErr: true},
		{name: "large but finite", mutate: func(p *Product) { p.Calories = 1e300 }},
		{
			name: "per unit overflow",
			mutate: func(p *Product) {
				p.Calories = 1e300
				p.ServingGrams = 1e-300
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidProduct)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProductPatch_Apply(t *testing.T) {
	name := "Silken Tofu"
	fat := 2.5
	unit := UnitLabelScoop

	p := Product{ID: "1", Name: "Tofu", ServingGrams: 100, Unit: UnitLabelGrams, Fat: 5, Protein: 8}
	ProductPatch{Name: &name, Fat: &fat, Unit: &unit}.Apply(&p)

	assert.Equal(t, "Silken Tofu", p.Name)
	assert.Equal(t, 2.5, p.Fat)
	assert.Equal(t, UnitLabelScoop, p.Unit)
	assert.Equal(t, 8.0, p.Protein)
	assert.Equal(t, ID("1"), p.ID)
}
