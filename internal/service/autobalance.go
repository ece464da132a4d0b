package service

import (
	"math"

	"github.com/guttosm/macro-service/internal/domain/model"
	"github.com/guttosm/macro-service/internal/metrics"
)

// DefaultBalancePriority is used when neither the request nor the meal names one.
const DefaultBalancePriority = model.Fat

// BalanceOutcome describes what a balance run did.
type BalanceOutcome string

const (
	BalanceApplied    BalanceOutcome = "balanced"
	BalanceNoUnlocked BalanceOutcome = "no_unlocked"
	BalanceNoDensity  BalanceOutcome = "no_density"
)

// AutoBalance redistributes the priority-macro gap left by locked items
// across unlocked items in proportion to each product's per-serving
// density of that macro. Locked items come first in the result. Items
// whose product is unresolved or has no density keep their amount.
// New amounts are expressed per unit (density / servingGrams * gramsPerUnit)
// whatever the aggregator's unit kind.
// Amounts never go negative. It is a single pass; other macros are not
// re-checked.
func (a *Aggregator) AutoBalance(meal model.Meal, target model.Macros, products model.ProductIndex, priority model.MacroKind) (model.Meal, BalanceOutcome) {
	if !priority.IsPriority() {
		priority = DefaultBalancePriority
	}

	var locked, unlocked []model.Item
	for _, it := range meal.Items {
		if it.Locked {
			locked = append(locked, it)
		} else {
			unlocked = append(unlocked, it)
		}
	}

	if len(unlocked) == 0 {
		metrics.RecordAutoBalance(string(priority), string(BalanceNoUnlocked))
		return meal.Clone(), BalanceNoUnlocked
	}

	lockedTotal := a.SumItems(locked, products)
	gap := target.Get(priority) - lockedTotal.Get(priority)

	totalDensity := 0.0
	for _, it := range unlocked {
		if p := products.Lookup(it.ProductID); p != nil && p.ServingGrams > 0 {
			if d := p.Serving().Get(priority); d > 0 {
				totalDensity += d
			}
		}
	}

	out := meal.Clone()
	out.Items = make([]model.Item, 0, len(meal.Items))
	out.Items = append(out.Items, locked...)

	if totalDensity <= 0 {
		out.Items = append(out.Items, unlocked...)
		metrics.RecordAutoBalance(string(priority), string(BalanceNoDensity))
		return out, BalanceNoDensity
	}

	for _, it := range unlocked {
		p := products.Lookup(it.ProductID)
		if p == nil || p.ServingGrams <= 0 {
			out.Items = append(out.Items, it)
			continue
		}
		density := p.Serving().Get(priority)
		if density <= 0 {
			out.Items = append(out.Items, it)
			continue
		}

		share := gap * density / totalDensity
		perUnit := density / p.ServingGrams * p.UnitGrams()
		it.Amount = math.Max(0, share/perUnit)
		out.Items = append(out.Items, it)
	}

	metrics.RecordAutoBalance(string(priority), string(BalanceApplied))
	return out, BalanceApplied
}

// EvenTarget splits a plan profile evenly across its meals.
func EvenTarget(plan model.Plan) model.Macros {
	n := len(plan.Data.Meals)
	if n == 0 {
		return model.Macros{}
	}
	return plan.Data.Profile.Macros().Scale(1 / float64(n))
}
