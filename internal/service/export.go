package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/guttosm/macro-service/internal/domain/model"
	"github.com/shopspring/decimal"
)

var csvHeader = []string{"Meal", "Product", "Amount", "Unit", "Calories", "Protein", "Carbs", "Fat", "Locked"}

// WritePlanCSV writes one row per item of plan. Items whose product no
// longer exists get an empty product name and zero macros.
func (a *Aggregator) WritePlanCSV(w io.Writer, plan model.Plan, products []model.Product) error {
	idx := model.IndexProducts(products)
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, meal := range plan.Data.Meals {
		for _, it := range meal.Items {
			p := idx.Lookup(it.ProductID)
			m := a.calc.Calculate(p, it.Amount, a.kind)

			var name, unit string
			if p != nil {
				name, unit = p.Name, string(p.Unit)
			}
			locked := "NO"
			if it.Locked {
				locked = "YES"
			}
			row := []string{
				meal.Name,
				name,
				strconv.FormatFloat(it.Amount, 'f', -1, 64),
				unit,
				oneDecimal(m.Calories),
				oneDecimal(m.Protein),
				oneDecimal(m.Carbs),
				oneDecimal(m.Fat),
				locked,
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func oneDecimal(v float64) string {
	return decimal.NewFromFloat(model.Finite(v)).StringFixed(1)
}

// ExportCSV writes the addressed plan as CSV.
func (s *PlannerServiceImpl) ExportCSV(_ context.Context, planID model.ID, w io.Writer) error {
	products, st := s.ws.Snapshot()
	plan, err := resolvePlan(&st, planID)
	if err != nil {
		return err
	}
	if err := s.agg.WritePlanCSV(w, *plan, products); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
