package service

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/guttosm/macro-service/internal/domain/model"
)

// ImportResult is the outcome of checking an imported document. Reason
// explains a rejection; Value is only meaningful when Valid is true.
type ImportResult[T any] struct {
	Value  T
	Valid  bool
	Reason string
}

func rejected[T any](format string, args ...any) ImportResult[T] {
	return ImportResult[T]{Reason: fmt.Sprintf(format, args...)}
}

func accepted[T any](v T) ImportResult[T] {
	return ImportResult[T]{Value: v, Valid: true}
}

// ValidateProducts checks a bare product array.
func ValidateProducts(data []byte) ImportResult[[]model.Product] {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return rejected[[]model.Product]("expected a JSON array of products")
	}
	return validateProductList(raw)
}

func validateProductList(raw []json.RawMessage) ImportResult[[]model.Product] {
	products := make([]model.Product, 0, len(raw))
	for i, r := range raw {
		var p model.Product
		if err := json.Unmarshal(r, &p); err != nil {
			return rejected[[]model.Product]("product %d is not a product object", i)
		}
		if p.ID == "" {
			p.ID = model.NewID()
		}
		p.Normalize()
		if err := p.Validate(); err != nil {
			return rejected[[]model.Product]("product %d (%s): %v", i, p.Name, err)
		}
		products = append(products, p)
	}
	return accepted(products)
}

// ValidatePlanner checks a planner document. It must carry both "plans"
// and "activePlanId" and at least one plan.
func ValidatePlanner(data []byte) ImportResult[model.PlannerState] {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return rejected[model.PlannerState]("expected a JSON object")
	}
	return validatePlannerFields(fields)
}

func validatePlannerFields(fields map[string]json.RawMessage) ImportResult[model.PlannerState] {
	rawPlans, ok := fields["plans"]
	if !ok {
		return rejected[model.PlannerState]("missing plans")
	}
	rawActive, ok := fields["activePlanId"]
	if !ok {
		return rejected[model.PlannerState]("missing activePlanId")
	}

	var state model.PlannerState
	if err := json.Unmarshal(rawPlans, &state.Plans); err != nil {
		return rejected[model.PlannerState]("plans must be an array of plans")
	}
	if err := json.Unmarshal(rawActive, &state.ActivePlanID); err != nil {
		return rejected[model.PlannerState]("activePlanId must be a string or number")
	}
	if len(state.Plans) == 0 {
		return rejected[model.PlannerState]("plans must not be empty")
	}
	for i := range state.Plans {
		if state.Plans[i].ID == "" {
			state.Plans[i].ID = model.NewID()
		}
		if err := state.Plans[i].Data.Profile.Validate(); err != nil {
			return rejected[model.PlannerState]("plan %d: %v", i, err)
		}
		for j := range state.Plans[i].Data.Meals {
			if p := state.Plans[i].Data.Meals[j].Priority; p != "" && !p.IsPriority() {
				return rejected[model.PlannerState]("plan %d meal %d: %v %q", i, j, model.ErrInvalidPriority, p)
			}
			for k := range state.Plans[i].Data.Meals[j].Items {
				it := &state.Plans[i].Data.Meals[j].Items[k]
				if it.ID == "" {
					it.ID = model.NewID()
				}
				if it.Amount < 0 {
					return rejected[model.PlannerState]("plan %d meal %d item %d has a negative amount", i, j, k)
				}
			}
		}
	}
	state.Repair()
	return accepted(state)
}

// ValidateBackup checks a combined document with "products" and "plannerState".
func ValidateBackup(data []byte) ImportResult[model.Backup] {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return rejected[model.Backup]("expected a JSON object")
	}
	rawProducts, ok := fields["products"]
	if !ok {
		return rejected[model.Backup]("missing products")
	}
	rawPlanner, ok := fields["plannerState"]
	if !ok {
		return rejected[model.Backup]("missing plannerState")
	}

	var list []json.RawMessage
	if err := json.Unmarshal(rawProducts, &list); err != nil || list == nil {
		return rejected[model.Backup]("products must be an array")
	}
	products := validateProductList(list)
	if !products.Valid {
		return rejected[model.Backup]("%s", products.Reason)
	}

	var plannerFields map[string]json.RawMessage
	if err := json.Unmarshal(rawPlanner, &plannerFields); err != nil {
		return rejected[model.Backup]("plannerState must be an object")
	}
	planner := validatePlannerFields(plannerFields)
	if !planner.Valid {
		return rejected[model.Backup]("plannerState: %s", planner.Reason)
	}

	return accepted(model.Backup{Products: products.Value, PlannerState: planner.Value})
}
