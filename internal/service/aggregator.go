package service

import (
	"time"

	"github.com/guttosm/macro-service/internal/domain/model"
	"github.com/guttosm/macro-service/internal/metrics"
)

// ItemSummary is one item with its product resolved and its contribution.
type ItemSummary struct {
	model.Item
	ProductName string       `json:"productName,omitempty"`
	Unit        model.Unit   `json:"unit,omitempty"`
	Resolved    bool         `json:"resolved"`
	Macros      model.Macros `json:"macros"`
}

// MealSummary is a meal with per-item and summed contributions.
type MealSummary struct {
	Index    int             `json:"index"`
	Name     string          `json:"name"`
	Priority model.MacroKind `json:"priority,omitempty"`
	Items    []ItemSummary   `json:"items"`
	Totals   model.Macros    `json:"totals"`
}

// PlanSummary carries daily totals, the plan target and per-macro grades.
//
// @Description Plan totals graded against the plan profile
type PlanSummary struct {
	PlanID model.ID      `json:"planId"`
	Name   string        `json:"name"`
	Meals  []MealSummary `json:"meals"`
	Totals model.Macros  `json:"totals"`
	Target model.Macros  `json:"target"`
	Grades model.Grades  `json:"grades"`
}

// Aggregator sums calculator output across items, meals and plans.
type Aggregator struct {
	calc MacroCalculator
	kind model.UnitKind
}

// NewAggregator creates an aggregator interpreting item amounts as kind.
func NewAggregator(calc MacroCalculator, kind model.UnitKind) *Aggregator {
	return &Aggregator{calc: calc, kind: kind}
}

// UnitKind returns the amount interpretation in use.
func (a *Aggregator) UnitKind() model.UnitKind {
	return a.kind
}

// ItemMacros returns the contribution of a single item. Unresolved
// product ids contribute zero.
func (a *Aggregator) ItemMacros(item model.Item, products model.ProductIndex) model.Macros {
	return a.calc.Calculate(products.Lookup(item.ProductID), item.Amount, a.kind)
}

// SumItems adds the contributions of items.
func (a *Aggregator) SumItems(items []model.Item, products model.ProductIndex) model.Macros {
	var total model.Macros
	for _, it := range items {
		total = total.Add(a.ItemMacros(it, products))
	}
	return total
}

// DailyTotals sums every meal of a plan.
func (a *Aggregator) DailyTotals(plan model.Plan, products model.ProductIndex) model.Macros {
	var total model.Macros
	for _, m := range plan.Data.Meals {
		total = total.Add(a.SumItems(m.Items, products))
	}
	return total
}

// Summarize builds rounded per-item, per-meal and daily totals graded
// against the plan profile. Grades use unrounded totals.
func (a *Aggregator) Summarize(plan model.Plan, products []model.Product) PlanSummary {
	start := time.Now()
	defer func() { metrics.RecordPlanSummary(time.Since(start)) }()

	idx := model.IndexProducts(products)
	summary := PlanSummary{
		PlanID: plan.ID,
		Name:   plan.Name,
		Meals:  make([]MealSummary, 0, len(plan.Data.Meals)),
		Target: plan.Data.Profile.Macros(),
	}

	var daily model.Macros
	for i, meal := range plan.Data.Meals {
		ms := MealSummary{
			Index:    i,
			Name:     meal.Name,
			Priority: meal.Priority,
			Items:    make([]ItemSummary, 0, len(meal.Items)),
		}
		var mealTotal model.Macros
		for _, it := range meal.Items {
			p := idx.Lookup(it.ProductID)
			m := a.calc.Calculate(p, it.Amount, a.kind)
			mealTotal = mealTotal.Add(m)

			is := ItemSummary{Item: it, Macros: m.Rounded()}
			if p != nil {
				is.Resolved = true
				is.ProductName = p.Name
				is.Unit = p.Unit
			}
			ms.Items = append(ms.Items, is)
		}
		ms.Totals = mealTotal.Rounded()
		daily = daily.Add(mealTotal)
		summary.Meals = append(summary.Meals, ms)
	}

	summary.Totals = daily.Rounded()
	summary.Grades = ClassifyMacros(daily, summary.Target)
	return summary
}
