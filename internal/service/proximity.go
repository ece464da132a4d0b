package service

import "github.com/guttosm/macro-service/internal/domain/model"

// Proximity bands around a target, inclusive.
const (
	hitLow    = 0.95
	hitHigh   = 1.05
	closeLow  = 0.85
	closeHigh = 1.15
)

// Classify grades actual against target. A non-positive target is neutral.
func Classify(actual, target float64) model.Grade {
	if target <= 0 {
		return model.GradeNeutral
	}
	ratio := actual / target
	switch {
	case ratio >= hitLow && ratio <= hitHigh:
		return model.GradeHit
	case ratio >= closeLow && ratio <= closeHigh:
		return model.GradeClose
	default:
		return model.GradeOff
	}
}

// ClassifyMacros grades every dimension of actual against target.
func ClassifyMacros(actual, target model.Macros) model.Grades {
	return model.Grades{
		Calories: Classify(actual.Calories, target.Calories),
		Protein:  Classify(actual.Protein, target.Protein),
		Carbs:    Classify(actual.Carbs, target.Carbs),
		Fat:      Classify(actual.Fat, target.Fat),
	}
}
