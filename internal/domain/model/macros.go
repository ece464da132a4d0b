// Package model defines the core domain entities for the macro service.
package model

import (
	"math"

	"github.com/shopspring/decimal"
)

// MacroKind names one dimension of a macro vector.
type MacroKind string

const (
	Calories MacroKind = "calories"
	Protein  MacroKind = "protein"
	Carbs    MacroKind = "carbs"
	Fat      MacroKind = "fat"
)

// MacroKinds lists every dimension in display order.
var MacroKinds = []MacroKind{Calories, Protein, Carbs, Fat}

// ParseMacroKind converts a raw string into a MacroKind.
func ParseMacroKind(s string) (MacroKind, bool) {
	switch MacroKind(s) {
	case Calories, Protein, Carbs, Fat:
		return MacroKind(s), true
	}
	return "", false
}

// IsPriority reports whether the kind can drive auto-balance.
func (k MacroKind) IsPriority() bool {
	return k == Protein || k == Carbs || k == Fat
}

// Macros is a four-dimensional nutrition vector.
//
// @Description Calories, protein, carbs and fat
type Macros struct {
	Calories float64 `json:"calories" bson:"calories" example:"114"`
	Protein  float64 `json:"protein" bson:"protein" example:"12"`
	Carbs    float64 `json:"carbs" bson:"carbs" example:"3"`
	Fat      float64 `json:"fat" bson:"fat" example:"7.5"`
}

// Add returns the component-wise sum of m and o.
func (m Macros) Add(o Macros) Macros {
	return Macros{
		Calories: m.Calories + o.Calories,
		Protein:  m.Protein + o.Protein,
		Carbs:    m.Carbs + o.Carbs,
		Fat:      m.Fat + o.Fat,
	}
}

// Scale multiplies every field by factor.
func (m Macros) Scale(factor float64) Macros {
	return Macros{
		Calories: m.Calories * factor,
		Protein:  m.Protein * factor,
		Carbs:    m.Carbs * factor,
		Fat:      m.Fat * factor,
	}
}

// Get returns the value of a single dimension.
func (m Macros) Get(k MacroKind) float64 {
	switch k {
	case Calories:
		return m.Calories
	case Protein:
		return m.Protein
	case Carbs:
		return m.Carbs
	case Fat:
		return m.Fat
	}
	return 0
}

// Rounded returns the display form: calories to whole numbers,
// the rest to one decimal place, half away from zero.
func (m Macros) Rounded() Macros {
	return Macros{
		Calories: round(m.Calories, 0),
		Protein:  round(m.Protein, 1),
		Carbs:    round(m.Carbs, 1),
		Fat:      round(m.Fat, 1),
	}
}

// SumMacros adds every vector in ms.
func SumMacros(ms ...Macros) Macros {
	var total Macros
	for _, m := range ms {
		total = total.Add(m)
	}
	return total
}

// IsFinite reports whether every field is a real number.
func (m Macros) IsFinite() bool {
	return IsFinite(m.Calories) && IsFinite(m.Protein) && IsFinite(m.Carbs) && IsFinite(m.Fat)
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Finite maps NaN to 0 and clamps infinities to the largest float.
func Finite(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case math.IsInf(v, 1):
		return math.MaxFloat64
	case math.IsInf(v, -1):
		return -math.MaxFloat64
	}
	return v
}

func round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(Finite(v)).Round(places).Float64()
	return f
}
