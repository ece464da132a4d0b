//go:build !integration

package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/guttosm/macro-service/internal/domain/model"
	"github.com/guttosm/macro-service/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planNames(st model.PlannerState) []string {
	names := make([]string, len(st.Plans))
	for i, p := range st.Plans {
		names[i] = p.Name
	}
	return names
}

func mealNames(p model.Plan) []string {
	names := make([]string, len(p.Data.Meals))
	for i, m := range p.Data.Meals {
		names[i] = m.Name
	}
	return names
}

func TestPlannerService_Plans(t *testing.T) {
	ctx := context.Background()

	t.Run("add makes the new plan active", func(t *testing.T) {
		svc, _ := newTestPlanner(t, sampleProducts(), samplePlan())

		st, err := svc.AddPlan(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Plan 1", "Plan 2"}, planNames(st))
		assert.Equal(t, st.Plans[1].ID, st.ActivePlanID)
		assert.Equal(t, model.EmptyPlanData(), st.Plans[1].Data)
	})

	t.Run("remove activates the first remaining plan", func(t *testing.T) {
		svc, _ := newTestPlanner(t, sampleProducts(), samplePlan())
		st, err := svc.AddPlan(ctx)
		require.NoError(t, err)

		st, err = svc.RemovePlan(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, []string{"Plan 2"}, planNames(st))
		assert.Equal(t, st.Plans[0].ID, st.ActivePlanID)
	})

	t.Run("the last plan is kept", func(t *testing.T) {
		svc, _ := newTestPlanner(t, sampleProducts(), samplePlan())

		st, err := svc.RemovePlan(ctx, "p1")
		require.NoError(t, err)
		assert.Len(t, st.Plans, 1)
	})

	t.Run("duplicate appends a deep copy", func(t *testing.T) {
		svc, ws := newTestPlanner(t, sampleProducts(), samplePlan())

		st, err := svc.DuplicatePlan(ctx, "p1")
		require.NoError(t, err)
		require.Len(t, st.Plans, 2)
		dup := st.Plans[1]
		assert.Equal(t, "Plan 1 copy", dup.Name)
		assert.Equal(t, dup.ID, st.ActivePlanID)
		assert.NotEqual(t, model.ID("p1"), dup.ID)
		assert.Equal(t, st.Plans[0].Data.Profile, dup.Data.Profile)
		assert.NotEqual(t, st.Plans[0].Data.Meals[0].Items[0].ID, dup.Data.Meals[0].Items[0].ID)
		assert.Equal(t, st.Plans[0].Data.Meals[0].Items[0].ProductID, dup.Data.Meals[0].Items[0].ProductID)

		_, err = svc.RenameMeal(ctx, dup.ID, 0, "Brunch")
		require.NoError(t, err)
		assert.Equal(t, "Lunch", ws.Planner().Plans[0].Data.Meals[0].Name)
	})

	t.Run("rename", func(t *testing.T) {
		svc, _ := newTestPlanner(t, sampleProducts(), samplePlan())

		st, err := svc.RenamePlan(ctx, "", "  Cut  ")
		require.NoError(t, err)
		assert.Equal(t, "Cut", st.Plans[0].Name)

		_, err = svc.RenamePlan(ctx, "p1", "   ")
		assert.ErrorIs(t, err, ErrInvalidName)
	})

	t.Run("reset", func(t *testing.T) {
		svc, _ := newTestPlanner(t, sampleProducts(), samplePlan())

		st, err := svc.ResetPlan(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, "Plan 1", st.Plans[0].Name)
		assert.Equal(t, model.EmptyPlanData(), st.Plans[0].Data)
	})

	t.Run("set active", func(t *testing.T) {
		svc, _ := newTestPlanner(t, sampleProducts(), samplePlan())
		st, err := svc.AddPlan(ctx)
		require.NoError(t, err)

		st, err = svc.SetActivePlan(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, model.ID("p1"), st.ActivePlanID)

		_, err = svc.SetActivePlan(ctx, "missing")
		assert.ErrorIs(t, err, model.ErrPlanNotFound)
	})

	t.Run("profile", func(t *testing.T) {
		svc, _ := newTestPlanner(t, sampleProducts(), samplePlan())
		profile := model.Profile{Calories: 2200, Protein: 160, Carbs: 240, Fat: 70}

		st, err := svc.SetProfile(ctx, "", profile)
		require.NoError(t, err)
		assert.Equal(t, profile, st.Plans[0].Data.Profile)

		_, err = svc.SetProfile(ctx, "", model.Profile{Protein: -1})
		assert.ErrorIs(t, err, model.ErrInvalidProfile)
	})
}

func TestPlannerService_Meals(t *testing.T) {
	ctx := context.Background()

	t.Run("add after index", func(t *testing.T) {
		svc, _ := newTestPlanner(t, sampleProducts(), samplePlan())

		st, err := svc.AddMeal(ctx, "", 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"Lunch", "New Meal", "Dinner"}, mealNames(st.Plans[0]))
		assert.NotNil(t, st.Plans[0].Data.Meals[1].Items)

		st, err = svc.AddMeal(ctx, "", -1)
		require.NoError(t, err)
		assert.Equal(t, []string{"Lunch", "New Meal", "Dinner", "New Meal"}, mealNames(st.Plans[0]))
	})

	t.Run("remove keeps the last meal", func(t *testing.T) {
		svc, _ := newTestPlanner(t, sampleProducts(), samplePlan())

		st, err := svc.RemoveMeal(ctx, "", 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"Dinner"}, mealNames(st.Plans[0]))

		st, err = svc.RemoveMeal(ctx, "", 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"Dinner"}, mealNames(st.Plans[0]))

		_, err = svc.RemoveMeal(ctx, "", 3)
		assert.ErrorIs(t, err, model.ErrMealNotFound)
	})

	t.Run("duplicate inserts after the source", func(t *testing.T) {
		svc, _ := newTestPlanner(t, sampleProducts(), samplePlan())

		st, err := svc.DuplicateMeal(ctx, "", 0)
		require.NoError(t, err)
		meals := st.Plans[0].Data.Meals
		assert.Equal(t, []string{"Lunch", "Lunch", "Dinner"}, mealNames(st.Plans[0]))
		assert.NotEqual(t, meals[0].Items[0].ID, meals[1].Items[0].ID)
		assert.Equal(t, meals[0].Items[0].Amount, meals[1].Items[0].Amount)
	})

	t.Run("priority", func(t *testing.T) {
		svc, _ := newTestPlanner(t, sampleProducts(), samplePlan())

		st, err := svc.SetMealPriority(ctx, "", 1, model.Protein)
		require.NoError(t, err)
		assert.Equal(t, model.Protein, st.Plans[0].Data.Meals[1].Priority)

		st, err = svc.SetMealPriority(ctx, "", 1, "")
		require.NoError(t, err)
		assert.Empty(t, st.Plans[0].Data.Meals[1].Priority)

		_, err = svc.SetMealPriority(ctx, "", 1, model.Calories)
		assert.ErrorIs(t, err, model.ErrInvalidPriority)
	})

	t.Run("unknown plan", func(t *testing.T) {
		svc, _ := newTestPlanner(t, sampleProducts(), samplePlan())
		_, err := svc.AddMeal(ctx, "missing", 0)
		assert.ErrorIs(t, err, model.ErrPlanNotFound)
	})
}

func TestPlannerService_Items(t *testing.T) {
	ctx := context.Background()

	t.Run("add uses the first product at one serving", func(t *testing.T) {
		svc, _ := newTestPlanner(t, sampleProducts(), samplePlan())

		st, err := svc.AddItem(ctx, "", 0)
		require.NoError(t, err)
		items := st.Plans[0].Data.Meals[0].Items
		require.Len(t, items, 3)
		assert.Equal(t, model.ID("tofu"), items[2].ProductID)
		assert.Equal(t, 100.0, items[2].Amount)
		assert.NotEmpty(t, items[2].ID)
	})

	t.Run("add without products", func(t *testing.T) {
		svc, _ := newTestPlanner(t, []model.Product{}, samplePlan())
		_, err := svc.AddItem(ctx, "", 0)
		assert.ErrorIs(t, err, ErrNoProducts)
	})

	t.Run("update", func(t *testing.T) {
		svc, _ := newTestPlanner(t, sampleProducts(), samplePlan())

		st, err := svc.UpdateItem(ctx, "", 0, "i1", model.ItemPatch{
			ProductID: ptr(model.ID("rice")),
			Amount:    ptr(75.0),
			Locked:    ptr(true),
		})
		require.NoError(t, err)
		it := st.Plans[0].Data.Meals[0].Items[0]
		assert.Equal(t, model.Item{ID: "i1", ProductID: "rice", Amount: 75, Locked: true}, it)
	})

	t.Run("update rejects unknown product and negative amount", func(t *testing.T) {
		svc, ws := newTestPlanner(t, sampleProducts(), samplePlan())

		_, err := svc.UpdateItem(ctx, "", 0, "i1", model.ItemPatch{ProductID: ptr(model.ID("gone"))})
		assert.ErrorIs(t, err, model.ErrProductNotFound)

		_, err = svc.UpdateItem(ctx, "", 0, "i1", model.ItemPatch{Amount: ptr(-5.0)})
		assert.ErrorIs(t, err, model.ErrInvalidItem)

		_, err = svc.UpdateItem(ctx, "", 0, "nope", model.ItemPatch{Amount: ptr(5.0)})
		assert.ErrorIs(t, err, model.ErrItemNotFound)

		assert.Equal(t, 150.0, ws.Planner().Plans[0].Data.Meals[0].Items[0].Amount)
	})

	t.Run("placeholder product is accepted", func(t *testing.T) {
		svc, _ := newTestPlanner(t, sampleProducts(), samplePlan())
		st, err := svc.UpdateItem(ctx, "", 0, "i1", model.ItemPatch{ProductID: ptr(model.EmptyProductID)})
		require.NoError(t, err)
		assert.Equal(t, model.EmptyProductID, st.Plans[0].Data.Meals[0].Items[0].ProductID)
	})

	t.Run("remove", func(t *testing.T) {
		svc, _ := newTestPlanner(t, sampleProducts(), samplePlan())

		st, err := svc.RemoveItem(ctx, "", 0, "i1")
		require.NoError(t, err)
		require.Len(t, st.Plans[0].Data.Meals[0].Items, 1)
		assert.Equal(t, model.ID("i2"), st.Plans[0].Data.Meals[0].Items[0].ID)

		_, err = svc.RemoveItem(ctx, "", 0, "i1")
		assert.ErrorIs(t, err, model.ErrItemNotFound)
	})
}

func TestPlannerService_Summary(t *testing.T) {
	svc, _ := newTestPlanner(t, sampleProducts(), samplePlan())

	summary, err := svc.Summary(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, model.ID("p1"), summary.PlanID)
	assert.Len(t, summary.Meals, 2)
	assert.InDelta(t, 114+260+38, summary.Totals.Calories, 0.001)

	_, err = svc.Summary(context.Background(), "missing")
	assert.ErrorIs(t, err, model.ErrPlanNotFound)
}

func TestPlannerService_AutoBalance(t *testing.T) {
	ctx := context.Background()

	t.Run("explicit target and priority", func(t *testing.T) {
		svc, ws := newTestPlanner(t, sampleProducts(), samplePlan())
		target := model.Macros{Protein: 24}

		res, err := svc.AutoBalance(ctx, "", 0, BalanceRequest{Target: &target, Priority: model.Protein})
		require.NoError(t, err)
		assert.Equal(t, BalanceApplied, res.Outcome)
		assert.Equal(t, model.Protein, res.Priority)
		assert.Equal(t, target, res.Target)
		assert.Equal(t, res.Meal, ws.Planner().Plans[0].Data.Meals[0])
		assert.Equal(t, res.State, ws.Planner())
	})

	t.Run("falls back to meal priority then fat", func(t *testing.T) {
		plan := samplePlan()
		plan.Data.Meals[0].Priority = model.Carbs
		svc, _ := newTestPlanner(t, sampleProducts(), plan)

		res, err := svc.AutoBalance(ctx, "", 0, BalanceRequest{})
		require.NoError(t, err)
		assert.Equal(t, model.Carbs, res.Priority)
		assert.Equal(t, EvenTarget(plan), res.Target)

		res, err = svc.AutoBalance(ctx, "", 1, BalanceRequest{})
		require.NoError(t, err)
		assert.Equal(t, DefaultBalancePriority, res.Priority)
	})

	t.Run("locked meal", func(t *testing.T) {
		plan := samplePlan()
		for i := range plan.Data.Meals[0].Items {
			plan.Data.Meals[0].Items[i].Locked = true
		}
		svc, _ := newTestPlanner(t, sampleProducts(), plan)

		res, err := svc.AutoBalance(ctx, "", 0, BalanceRequest{})
		require.NoError(t, err)
		assert.Equal(t, BalanceNoUnlocked, res.Outcome)
	})

	t.Run("rejects calories as priority", func(t *testing.T) {
		svc, _ := newTestPlanner(t, sampleProducts(), samplePlan())
		_, err := svc.AutoBalance(ctx, "", 0, BalanceRequest{Priority: model.Calories})
		assert.ErrorIs(t, err, model.ErrInvalidPriority)
	})

	t.Run("meal out of range", func(t *testing.T) {
		svc, _ := newTestPlanner(t, sampleProducts(), samplePlan())
		_, err := svc.AutoBalance(ctx, "", 9, BalanceRequest{})
		assert.ErrorIs(t, err, model.ErrMealNotFound)
	})
}

func TestPlannerService_ExportCSV(t *testing.T) {
	plan := samplePlan()
	plan.Data.Meals[0].Items[1].Locked = true
	svc, _ := newTestPlanner(t, sampleProducts(), plan)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(context.Background(), "", &buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"Meal", "Product", "Amount", "Unit", "Calories", "Protein", "Carbs", "Fat", "Locked"}, rows[0])
	assert.Equal(t, []string{"Lunch", "Tofu", "150", "g", "114.0", "12.0", "3.0", "7.5", "NO"}, rows[1])
	assert.Equal(t, []string{"Lunch", "White Rice (cooked)", "200", "g", "260.0", "5.4", "56.0", "0.6", "YES"}, rows[2])
	assert.Equal(t, []string{"Dinner", "", "300", "", "0.0", "0.0", "0.0", "0.0", "NO"}, rows[3])

	err = svc.ExportCSV(context.Background(), "missing", &bytes.Buffer{})
	assert.ErrorIs(t, err, model.ErrPlanNotFound)
}

func TestPlannerService_PersistsEdits(t *testing.T) {
	ws, repo := newTestWorkspace(t, sampleProducts(), samplePlan())
	svc := NewPlannerService(ws, NewAggregator(NewMacroCalculatorService(), model.UnitGrams))
	ctx := context.Background()

	_, err := svc.RenamePlan(ctx, "", "Bulk")
	require.NoError(t, err)

	reloaded := store.New(repo, store.DefaultKeys(), store.Defaults{})
	reloaded.Load(ctx)
	assert.Equal(t, ws.Planner(), reloaded.Planner())
	assert.Equal(t, "Bulk", reloaded.Planner().Plans[0].Name)
}
