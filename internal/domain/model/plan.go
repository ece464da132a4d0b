package model

import (
	"errors"
	"fmt"
)

// EmptyProductID marks placeholder items created by plan presets.
const EmptyProductID ID = "__EMPTY__"

var (
	// ErrPlanNotFound is returned when a plan id does not exist.
	ErrPlanNotFound = errors.New("plan not found")
	// ErrMealNotFound is returned when a meal index is out of range.
	ErrMealNotFound = errors.New("meal not found")
	// ErrItemNotFound is returned when an item id does not exist in a meal.
	ErrItemNotFound = errors.New("item not found")
	// ErrProductNotFound is returned when a product id does not exist.
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidItem is returned for item edits with impossible values.
	ErrInvalidItem = errors.New("invalid item")
	// ErrInvalidPriority is returned for a meal priority other than protein, carbs or fat.
	ErrInvalidPriority = errors.New("invalid meal priority")
	// ErrInvalidProfile is returned for negative profile targets.
	ErrInvalidProfile = errors.New("invalid profile")
)

// Item is a line in a meal referencing a product by id.
//
// @Description Meal line item
type Item struct {
	ID        ID      `json:"id" example:"a1"`
	ProductID ID      `json:"productId" example:"1"`
	Amount    float64 `json:"amount" example:"150"`
	Note      string  `json:"note,omitempty"`
	Locked    bool    `json:"locked,omitempty"`
}

// ItemPatch is a partial item update; nil fields are left alone.
//
// @Description Partial item fields
type ItemPatch struct {
	ProductID *ID      `json:"productId,omitempty" example:"1"`
	Amount    *float64 `json:"amount,omitempty" example:"150"`
	Note      *string  `json:"note,omitempty"`
	Locked    *bool    `json:"locked,omitempty"`
}

// Apply copies the set fields onto it.
func (patch ItemPatch) Apply(it *Item) error {
	if patch.Amount != nil && *patch.Amount < 0 {
		return fmt.Errorf("%w: amount must not be negative", ErrInvalidItem)
	}
	if patch.ProductID != nil {
		it.ProductID = *patch.ProductID
	}
	if patch.Amount != nil {
		it.Amount = *patch.Amount
	}
	if patch.Note != nil {
		it.Note = *patch.Note
	}
	if patch.Locked != nil {
		it.Locked = *patch.Locked
	}
	return nil
}

// Meal is a named ordered list of items.
//
// @Description Named meal with items and an optional balance priority
type Meal struct {
	Name     string    `json:"name" example:"Breakfast"`
	Items    []Item    `json:"items"`
	Priority MacroKind `json:"priority,omitempty" example:"protein"`
}

// Clone returns a deep copy of the meal.
func (m Meal) Clone() Meal {
	out := m
	out.Items = make([]Item, len(m.Items))
	copy(out.Items, m.Items)
	return out
}

// WithFreshItemIDs returns a deep copy whose items carry new ids.
func (m Meal) WithFreshItemIDs() Meal {
	out := m.Clone()
	for i := range out.Items {
		out.Items[i].ID = NewID()
	}
	return out
}

// FindItem returns the index of the item with the given id or -1.
func (m Meal) FindItem(id ID) int {
	for i, it := range m.Items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// Profile is the daily macro target of a plan.
type Profile Macros

// Validate rejects negative targets.
func (p Profile) Validate() error {
	if !p.Macros().IsFinite() {
		return fmt.Errorf("%w: targets must be finite", ErrInvalidProfile)
	}
	if p.Calories < 0 || p.Protein < 0 || p.Carbs < 0 || p.Fat < 0 {
		return fmt.Errorf("%w: targets must not be negative", ErrInvalidProfile)
	}
	return nil
}

// Macros returns the profile as a macro vector.
func (p Profile) Macros() Macros {
	return Macros(p)
}

// PlanData holds a plan's target profile and meals.
type PlanData struct {
	Profile Profile `json:"profile"`
	Meals   []Meal  `json:"meals"`
}

// EmptyPlanData returns zero targets and a single empty meal.
func EmptyPlanData() PlanData {
	return PlanData{
		Meals: []Meal{{Name: "Meal 1", Items: []Item{}}},
	}
}

// Clone returns a deep copy of the plan data.
func (d PlanData) Clone() PlanData {
	out := PlanData{Profile: d.Profile, Meals: make([]Meal, len(d.Meals))}
	for i, m := range d.Meals {
		out.Meals[i] = m.Clone()
	}
	return out
}

// Plan is a named set of meals with a target profile.
//
// @Description Meal plan
type Plan struct {
	ID   ID       `json:"id" example:"p1"`
	Name string   `json:"name" example:"Workout Day"`
	Data PlanData `json:"data"`
}

// Clone returns a deep copy of the plan.
func (p Plan) Clone() Plan {
	return Plan{ID: p.ID, Name: p.Name, Data: p.Data.Clone()}
}

// Meal returns a pointer to the meal at index i.
func (p *Plan) Meal(i int) (*Meal, error) {
	if i < 0 || i >= len(p.Data.Meals) {
		return nil, ErrMealNotFound
	}
	return &p.Data.Meals[i], nil
}

// PlannerState is the ordered list of plans plus the active selection.
//
// @Description Planner state
type PlannerState struct {
	Plans        []Plan `json:"plans"`
	ActivePlanID ID     `json:"activePlanId"`
}

// Clone returns a deep copy of the state.
func (s PlannerState) Clone() PlannerState {
	out := PlannerState{ActivePlanID: s.ActivePlanID, Plans: make([]Plan, len(s.Plans))}
	for i, p := range s.Plans {
		out.Plans[i] = p.Clone()
	}
	return out
}

// FindPlan returns the plan with the given id.
func (s *PlannerState) FindPlan(id ID) (*Plan, error) {
	for i := range s.Plans {
		if s.Plans[i].ID == id {
			return &s.Plans[i], nil
		}
	}
	return nil, ErrPlanNotFound
}

// ActivePlan returns the active plan, or nil when there are no plans.
// Call Repair first to guarantee a non-nil result on a non-empty state.
func (s *PlannerState) ActivePlan() *Plan {
	p, err := s.FindPlan(s.ActivePlanID)
	if err != nil {
		return nil
	}
	return p
}

// Repair points ActivePlanID at the first plan when it references
// nothing, and fills nil meal and item slices. It reports whether
// anything changed.
func (s *PlannerState) Repair() bool {
	changed := false
	for i := range s.Plans {
		if s.Plans[i].Data.Meals == nil {
			s.Plans[i].Data.Meals = []Meal{}
			changed = true
		}
		for j := range s.Plans[i].Data.Meals {
			if s.Plans[i].Data.Meals[j].Items == nil {
				s.Plans[i].Data.Meals[j].Items = []Item{}
				changed = true
			}
		}
	}
	if len(s.Plans) == 0 {
		return changed
	}
	if _, err := s.FindPlan(s.ActivePlanID); err != nil {
		s.ActivePlanID = s.Plans[0].ID
		changed = true
	}
	return changed
}
