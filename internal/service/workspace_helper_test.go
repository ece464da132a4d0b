//go:build !integration

package service

import (
	"context"
	"slices"
	"testing"

	"github.com/guttosm/macro-service/internal/domain/model"
	"github.com/guttosm/macro-service/internal/repository"
	"github.com/guttosm/macro-service/internal/store"
)

func newTestWorkspace(t *testing.T, products []model.Product, plans ...model.Plan) (*store.Workspace, *repository.MemoryStateRepository) {
	t.Helper()
	if products == nil {
		products = []model.Product{}
	}
	planner := DefaultPlannerState()
	if len(plans) > 0 {
		planner = model.PlannerState{Plans: plans, ActivePlanID: plans[0].ID}
	}

	repo := repository.NewMemoryStateRepository()
	ws := store.New(repo, store.DefaultKeys(), store.Defaults{
		Products: func() []model.Product { return slices.Clone(products) },
		Planner:  func() model.PlannerState { return planner.Clone() },
	})
	ws.Load(context.Background())
	return ws, repo
}

func newTestPlanner(t *testing.T, products []model.Product, plans ...model.Plan) (*PlannerServiceImpl, *store.Workspace) {
	t.Helper()
	ws, _ := newTestWorkspace(t, products, plans...)
	return NewPlannerService(ws, NewAggregator(NewMacroCalculatorService(), model.UnitGrams)), ws
}
