package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/guttosm/macro-service/internal/domain/model"
	"github.com/guttosm/macro-service/internal/store"
	"github.com/rs/zerolog/log"
)

const newMealName = "New Meal"

var (
	// ErrNoProducts is returned when an item is added to an empty catalog.
	ErrNoProducts = errors.New("no products available")
	// ErrInvalidName is returned for blank plan or meal names.
	ErrInvalidName = errors.New("name must not be empty")
)

// BalanceRequest configures an auto-balance run. A nil Target splits the
// plan profile evenly across meals; an empty Priority falls back to the
// meal's priority and then to fat.
type BalanceRequest struct {
	Target   *model.Macros
	Priority model.MacroKind
}

// BalanceResult is the rebalanced meal and what the solver did.
type BalanceResult struct {
	State    model.PlannerState `json:"state"`
	Meal     model.Meal         `json:"meal"`
	Priority model.MacroKind    `json:"priority"`
	Target   model.Macros       `json:"target"`
	Outcome  BalanceOutcome     `json:"outcome"`
}

// PlannerService edits plans, meals and items. A blank plan id addresses
// the active plan.
type PlannerService interface {
	State(ctx context.Context) model.PlannerState

	AddPlan(ctx context.Context) (model.PlannerState, error)
	RemovePlan(ctx context.Context, planID model.ID) (model.PlannerState, error)
	DuplicatePlan(ctx context.Context, planID model.ID) (model.PlannerState, error)
	RenamePlan(ctx context.Context, planID model.ID, name string) (model.PlannerState, error)
	ResetPlan(ctx context.Context, planID model.ID) (model.PlannerState, error)
	SetActivePlan(ctx context.Context, planID model.ID) (model.PlannerState, error)
	SetProfile(ctx context.Context, planID model.ID, profile model.Profile) (model.PlannerState, error)

	AddMeal(ctx context.Context, planID model.ID, after int) (model.PlannerState, error)
	RemoveMeal(ctx context.Context, planID model.ID, meal int) (model.PlannerState, error)
	DuplicateMeal(ctx context.Context, planID model.ID, meal int) (model.PlannerState, error)
	RenameMeal(ctx context.Context, planID model.ID, meal int, name string) (model.PlannerState, error)
	SetMealPriority(ctx context.Context, planID model.ID, meal int, priority model.MacroKind) (model.PlannerState, error)

	AddItem(ctx context.Context, planID model.ID, meal int) (model.PlannerState, error)
	UpdateItem(ctx context.Context, planID model.ID, meal int, itemID model.ID, patch model.ItemPatch) (model.PlannerState, error)
	RemoveItem(ctx context.Context, planID model.ID, meal int, itemID model.ID) (model.PlannerState, error)

	Summary(ctx context.Context, planID model.ID) (PlanSummary, error)
	AutoBalance(ctx context.Context, planID model.ID, meal int, req BalanceRequest) (BalanceResult, error)
	ExportCSV(ctx context.Context, planID model.ID, w io.Writer) error
}

// PlannerServiceImpl implements PlannerService on a workspace.
type PlannerServiceImpl struct {
	ws  *store.Workspace
	agg *Aggregator
}

// NewPlannerService creates a planner service.
func NewPlannerService(ws *store.Workspace, agg *Aggregator) *PlannerServiceImpl {
	return &PlannerServiceImpl{ws: ws, agg: agg}
}

func resolvePlan(s *model.PlannerState, id model.ID) (*model.Plan, error) {
	if id == "" {
		if p := s.ActivePlan(); p != nil {
			return p, nil
		}
		return nil, model.ErrPlanNotFound
	}
	return s.FindPlan(id)
}

// editPlan runs fn on the addressed plan inside a workspace update.
func (s *PlannerServiceImpl) editPlan(ctx context.Context, planID model.ID, fn func(*model.Plan) error) (model.PlannerState, error) {
	return s.ws.UpdatePlanner(ctx, func(st *model.PlannerState) error {
		plan, err := resolvePlan(st, planID)
		if err != nil {
			return err
		}
		return fn(plan)
	})
}

// editMeal runs fn on one meal of the addressed plan.
func (s *PlannerServiceImpl) editMeal(ctx context.Context, planID model.ID, meal int, fn func(*model.Meal) error) (model.PlannerState, error) {
	return s.editPlan(ctx, planID, func(plan *model.Plan) error {
		m, err := plan.Meal(meal)
		if err != nil {
			return err
		}
		return fn(m)
	})
}

func (s *PlannerServiceImpl) State(_ context.Context) model.PlannerState {
	return s.ws.Planner()
}

// AddPlan appends "Plan N" with empty data and makes it active.
func (s *PlannerServiceImpl) AddPlan(ctx context.Context) (model.PlannerState, error) {
	return s.ws.UpdatePlanner(ctx, func(st *model.PlannerState) error {
		plan := model.Plan{
			ID:   model.NewID(),
			Name: fmt.Sprintf("Plan %d", len(st.Plans)+1),
			Data: model.EmptyPlanData(),
		}
		st.Plans = append(st.Plans, plan)
		st.ActivePlanID = plan.ID
		log.Info().Str("plan_id", string(plan.ID)).Msg("Plan added")
		return nil
	})
}

// RemovePlan deletes a plan and activates the first remaining one. The
// last plan is never removed.
func (s *PlannerServiceImpl) RemovePlan(ctx context.Context, planID model.ID) (model.PlannerState, error) {
	return s.ws.UpdatePlanner(ctx, func(st *model.PlannerState) error {
		plan, err := resolvePlan(st, planID)
		if err != nil {
			return err
		}
		if len(st.Plans) <= 1 {
			return nil
		}
		id := plan.ID
		st.Plans = slices.DeleteFunc(st.Plans, func(p model.Plan) bool { return p.ID == id })
		st.ActivePlanID = st.Plans[0].ID
		log.Info().Str("plan_id", string(id)).Msg("Plan removed")
		return nil
	})
}

// DuplicatePlan appends a deep copy named "<name> copy" and makes it active.
func (s *PlannerServiceImpl) DuplicatePlan(ctx context.Context, planID model.ID) (model.PlannerState, error) {
	return s.ws.UpdatePlanner(ctx, func(st *model.PlannerState) error {
		plan, err := resolvePlan(st, planID)
		if err != nil {
			return err
		}
		dup := plan.Clone()
		dup.ID = model.NewID()
		dup.Name = plan.Name + " copy"
		for i := range dup.Data.Meals {
			dup.Data.Meals[i] = dup.Data.Meals[i].WithFreshItemIDs()
		}
		st.Plans = append(st.Plans, dup)
		st.ActivePlanID = dup.ID
		log.Info().Str("plan_id", string(plan.ID)).Str("copy_id", string(dup.ID)).Msg("Plan duplicated")
		return nil
	})
}

func (s *PlannerServiceImpl) RenamePlan(ctx context.Context, planID model.ID, name string) (model.PlannerState, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.PlannerState{}, ErrInvalidName
	}
	return s.editPlan(ctx, planID, func(p *model.Plan) error {
		p.Name = name
		return nil
	})
}

// ResetPlan replaces the plan data with zero targets and one empty meal.
func (s *PlannerServiceImpl) ResetPlan(ctx context.Context, planID model.ID) (model.PlannerState, error) {
	return s.editPlan(ctx, planID, func(p *model.Plan) error {
		p.Data = model.EmptyPlanData()
		return nil
	})
}

func (s *PlannerServiceImpl) SetActivePlan(ctx context.Context, planID model.ID) (model.PlannerState, error) {
	return s.ws.UpdatePlanner(ctx, func(st *model.PlannerState) error {
		plan, err := st.FindPlan(planID)
		if err != nil {
			return err
		}
		st.ActivePlanID = plan.ID
		return nil
	})
}

func (s *PlannerServiceImpl) SetProfile(ctx context.Context, planID model.ID, profile model.Profile) (model.PlannerState, error) {
	if err := profile.Validate(); err != nil {
		return model.PlannerState{}, err
	}
	return s.editPlan(ctx, planID, func(p *model.Plan) error {
		p.Data.Profile = profile
		return nil
	})
}

// AddMeal inserts "New Meal" after the given index; a negative index appends.
func (s *PlannerServiceImpl) AddMeal(ctx context.Context, planID model.ID, after int) (model.PlannerState, error) {
	return s.editPlan(ctx, planID, func(p *model.Plan) error {
		at := after + 1
		if after < 0 || at > len(p.Data.Meals) {
			at = len(p.Data.Meals)
		}
		p.Data.Meals = slices.Insert(p.Data.Meals, at, model.Meal{Name: newMealName, Items: []model.Item{}})
		return nil
	})
}

// RemoveMeal deletes a meal unless it is the plan's last one.
func (s *PlannerServiceImpl) RemoveMeal(ctx context.Context, planID model.ID, meal int) (model.PlannerState, error) {
	return s.editPlan(ctx, planID, func(p *model.Plan) error {
		if _, err := p.Meal(meal); err != nil {
			return err
		}
		if len(p.Data.Meals) <= 1 {
			return nil
		}
		p.Data.Meals = slices.Delete(p.Data.Meals, meal, meal+1)
		return nil
	})
}

// DuplicateMeal inserts a copy right after the meal. Items get fresh ids.
func (s *PlannerServiceImpl) DuplicateMeal(ctx context.Context, planID model.ID, meal int) (model.PlannerState, error) {
	return s.editPlan(ctx, planID, func(p *model.Plan) error {
		m, err := p.Meal(meal)
		if err != nil {
			return err
		}
		p.Data.Meals = slices.Insert(p.Data.Meals, meal+1, m.WithFreshItemIDs())
		return nil
	})
}

func (s *PlannerServiceImpl) RenameMeal(ctx context.Context, planID model.ID, meal int, name string) (model.PlannerState, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.PlannerState{}, ErrInvalidName
	}
	return s.editMeal(ctx, planID, meal, func(m *model.Meal) error {
		m.Name = name
		return nil
	})
}

// SetMealPriority sets the macro auto-balance targets; empty clears it.
func (s *PlannerServiceImpl) SetMealPriority(ctx context.Context, planID model.ID, meal int, priority model.MacroKind) (model.PlannerState, error) {
	if priority != "" && !priority.IsPriority() {
		return model.PlannerState{}, fmt.Errorf("%w: %q", model.ErrInvalidPriority, priority)
	}
	return s.editMeal(ctx, planID, meal, func(m *model.Meal) error {
		m.Priority = priority
		return nil
	})
}

// AddItem appends an item for the first catalog product at one serving.
func (s *PlannerServiceImpl) AddItem(ctx context.Context, planID model.ID, meal int) (model.PlannerState, error) {
	products := s.ws.Products()
	if len(products) == 0 {
		return model.PlannerState{}, ErrNoProducts
	}
	first := products[0]
	return s.editMeal(ctx, planID, meal, func(m *model.Meal) error {
		m.Items = append(m.Items, model.Item{ID: model.NewID(), ProductID: first.ID, Amount: first.ServingGrams})
		return nil
	})
}

// UpdateItem patches one item. A new product id must exist in the catalog
// or be the placeholder id.
func (s *PlannerServiceImpl) UpdateItem(ctx context.Context, planID model.ID, meal int, itemID model.ID, patch model.ItemPatch) (model.PlannerState, error) {
	if patch.ProductID != nil && *patch.ProductID != model.EmptyProductID {
		if _, ok := model.FindProduct(s.ws.Products(), *patch.ProductID); !ok {
			return model.PlannerState{}, model.ErrProductNotFound
		}
	}
	return s.editMeal(ctx, planID, meal, func(m *model.Meal) error {
		i := m.FindItem(itemID)
		if i < 0 {
			return model.ErrItemNotFound
		}
		return patch.Apply(&m.Items[i])
	})
}

func (s *PlannerServiceImpl) RemoveItem(ctx context.Context, planID model.ID, meal int, itemID model.ID) (model.PlannerState, error) {
	return s.editMeal(ctx, planID, meal, func(m *model.Meal) error {
		i := m.FindItem(itemID)
		if i < 0 {
			return model.ErrItemNotFound
		}
		m.Items = slices.Delete(m.Items, i, i+1)
		return nil
	})
}

// Summary computes totals and grades for a plan.
func (s *PlannerServiceImpl) Summary(_ context.Context, planID model.ID) (PlanSummary, error) {
	products, st := s.ws.Snapshot()
	plan, err := resolvePlan(&st, planID)
	if err != nil {
		return PlanSummary{}, err
	}
	return s.agg.Summarize(*plan, products), nil
}

// AutoBalance rebalances one meal and stores the result.
func (s *PlannerServiceImpl) AutoBalance(ctx context.Context, planID model.ID, meal int, req BalanceRequest) (BalanceResult, error) {
	if req.Priority != "" && !req.Priority.IsPriority() {
		return BalanceResult{}, fmt.Errorf("%w: %q", model.ErrInvalidPriority, req.Priority)
	}

	idx := model.IndexProducts(s.ws.Products())
	var result BalanceResult
	state, err := s.editPlan(ctx, planID, func(p *model.Plan) error {
		m, err := p.Meal(meal)
		if err != nil {
			return err
		}

		target := EvenTarget(*p)
		if req.Target != nil {
			target = *req.Target
		}
		priority := req.Priority
		if priority == "" {
			priority = m.Priority
		}
		if !priority.IsPriority() {
			priority = DefaultBalancePriority
		}

		balanced, outcome := s.agg.AutoBalance(*m, target, idx, priority)
		*m = balanced
		result = BalanceResult{Meal: balanced.Clone(), Priority: priority, Target: target, Outcome: outcome}
		return nil
	})
	if err != nil {
		return BalanceResult{}, err
	}
	result.State = state
	log.Debug().
		Str("priority", string(result.Priority)).
		Str("outcome", string(result.Outcome)).
		Int("meal", meal).
		Msg("Meal auto-balanced")
	return result, nil
}
