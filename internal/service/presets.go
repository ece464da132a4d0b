package service

import "github.com/guttosm/macro-service/internal/domain/model"

const placeholderNote = "Enter an item on the Products tab"

// DefaultProducts is the catalog a brand new workspace starts with.
func DefaultProducts() []model.Product {
	return []model.Product{
		{ID: "1", Name: "Tofu Scramble", ServingGrams: 200, Unit: model.UnitLabelGrams, GramsPerUnit: 1, Calories: 228, Protein: 22, Carbs: 4, Fat: 14},
	}
}

// DefaultPlannerState is a single plan with a 2000 kcal profile and one empty meal.
func DefaultPlannerState() model.PlannerState {
	id := model.NewID()
	return model.PlannerState{
		Plans: []model.Plan{{
			ID:   id,
			Name: "Plan 1",
			Data: model.PlanData{
				Profile: model.Profile{Calories: 2000, Protein: 150, Carbs: 250, Fat: 40},
				Meals:   []model.Meal{{Name: "Meal 1", Items: []model.Item{}}},
			},
		}},
		ActivePlanID: id,
	}
}

// StarterProducts returns the starter pack with fresh ids.
func StarterProducts() []model.Product {
	starter := []model.Product{
		{Name: "White Rice (cooked)", ServingGrams: 100, Unit: model.UnitLabelGrams, Calories: 130, Protein: 2.7, Carbs: 28, Fat: 0.3},
		{Name: "Tofu", ServingGrams: 100, Unit: model.UnitLabelGrams, Calories: 76, Protein: 8, Carbs: 2, Fat: 5},
		{Name: "Broccoli", ServingGrams: 150, Unit: model.UnitLabelGrams, Calories: 45, Protein: 6, Carbs: 8, Fat: 1},
		{Name: "Potatoes (boiled)", ServingGrams: 100, Unit: model.UnitLabelGrams, Calories: 80, Protein: 2.5, Carbs: 18, Fat: 0.2},
		{Name: "Lentils (cooked)", ServingGrams: 100, Unit: model.UnitLabelGrams, Calories: 116, Protein: 9, Carbs: 20, Fat: 0.4},
		{Name: "Chickpeas (cooked)", ServingGrams: 100, Unit: model.UnitLabelGrams, Calories: 164, Protein: 9, Carbs: 27, Fat: 2.6},
		{Name: "Soy Milk", ServingGrams: 200, Unit: model.UnitLabelMillilitre, Calories: 106, Protein: 8.4, Carbs: 3.4, Fat: 14},
		{Name: "Protein Shake", ServingGrams: 35, Unit: model.UnitLabelGrams, Calories: 160, Protein: 25, Carbs: 2, Fat: 3},
	}
	for i := range starter {
		starter[i].ID = model.NewID()
		starter[i].GramsPerUnit = 1
	}
	return starter
}

// StarterPlans returns the Workout Day / Rest Day preset. Items point at
// the placeholder product and carry a hint note.
func StarterPlans() model.PlannerState {
	workout := model.Plan{
		ID:   model.NewID(),
		Name: "Workout Day",
		Data: model.PlanData{Meals: []model.Meal{
			{Name: "Breakfast", Items: placeholderItems(3)},
			{Name: "Lunch", Items: placeholderItems(3)},
			{Name: "Post Workout", Items: placeholderItems(1)},
			{Name: "Dinner", Items: placeholderItems(3)},
		}},
	}
	rest := model.Plan{
		ID:   model.NewID(),
		Name: "Rest Day",
		Data: model.PlanData{Meals: []model.Meal{
			{Name: "Breakfast", Items: placeholderItems(3)},
			{Name: "Lunch", Items: placeholderItems(3)},
			{Name: "Dinner", Items: placeholderItems(3)},
		}},
	}
	return model.PlannerState{Plans: []model.Plan{workout, rest}, ActivePlanID: workout.ID}
}

func placeholderItems(n int) []model.Item {
	items := make([]model.Item, n)
	for i := range items {
		items[i] = model.Item{ID: model.NewID(), ProductID: model.EmptyProductID, Note: placeholderNote}
	}
	return items
}
