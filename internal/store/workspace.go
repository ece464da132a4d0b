// Package store holds the process-wide workspace: the product catalog, the
// planner state and the first-run flag, loaded once at startup and saved
// after every mutation.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goccy/go-json"
	"github.com/guttosm/macro-service/internal/domain/model"
	"github.com/guttosm/macro-service/internal/metrics"
	"github.com/guttosm/macro-service/internal/repository"
	"github.com/rs/zerolog/log"
)

// Keys are the storage keys of the three persisted blobs.
type Keys struct {
	Products string
	Planner  string
	Visited  string
}

// DefaultKeys returns the keys used when none are configured.
func DefaultKeys() Keys {
	return Keys{
		Products: "greenMacros_products",
		Planner:  "greenMacros_planner",
		Visited:  "gm_hasVisited",
	}
}

// Defaults produce the state used when a blob is missing or unreadable.
type Defaults struct {
	Products func() []model.Product
	Planner  func() model.PlannerState
}

// Workspace is the single-tenant state shared by all requests.
// Mutations are serialized; last write wins.
type Workspace struct {
	repo     repository.StateRepositoryInterface
	keys     Keys
	defaults Defaults

	mu       sync.RWMutex
	products []model.Product
	planner  model.PlannerState
	visited  bool
}

// New creates a workspace on repo. Call Load before serving requests.
func New(repo repository.StateRepositoryInterface, keys Keys, defaults Defaults) *Workspace {
	w := &Workspace{repo: repo, keys: keys, defaults: defaults}
	w.products = w.defaultProducts()
	w.planner = w.defaultPlanner()
	return w
}

func (w *Workspace) defaultProducts() []model.Product {
	if w.defaults.Products == nil {
		return []model.Product{}
	}
	return w.defaults.Products()
}

func (w *Workspace) defaultPlanner() model.PlannerState {
	if w.defaults.Planner == nil {
		return model.PlannerState{Plans: []model.Plan{}}
	}
	return w.defaults.Planner()
}

// Load reads all blobs. Missing or malformed blobs fall back to defaults;
// nothing here is fatal.
func (w *Workspace) Load(ctx context.Context) {
	var products []model.Product
	if err := w.loadBlob(ctx, w.keys.Products, &products); err != nil || products == nil {
		products = w.defaultProducts()
	}
	for i := range products {
		products[i].Normalize()
	}

	var planner model.PlannerState
	if err := w.loadBlob(ctx, w.keys.Planner, &planner); err != nil || len(planner.Plans) == 0 {
		if err == nil {
			log.Warn().Str("key", w.keys.Planner).Msg("Stored planner has no plans, using default")
		}
		planner = w.defaultPlanner()
	}
	if planner.Repair() {
		log.Info().Str("active_plan_id", string(planner.ActivePlanID)).Msg("Planner state repaired on load")
	}

	visited := false
	var raw any
	if err := w.loadBlob(ctx, w.keys.Visited, &raw); err == nil {
		visited = truthy(raw)
	}

	w.mu.Lock()
	w.products = products
	w.planner = planner
	w.visited = visited
	w.mu.Unlock()

	log.Info().
		Int("products", len(products)).
		Int("plans", len(planner.Plans)).
		Bool("visited", visited).
		Msg("Workspace loaded")
}

func (w *Workspace) loadBlob(ctx context.Context, key string, dst any) error {
	data, err := w.repo.Load(ctx, key)
	if errors.Is(err, repository.ErrStateNotFound) {
		log.Debug().Str("key", key).Msg("No stored state, using default")
		return err
	}
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to read stored state, using default")
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Stored state is malformed, using default")
		return err
	}
	return nil
}

// legacy clients stored the flag as the string "1"
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != "" && t != "0" && t != "false"
	case float64:
		return t != 0
	}
	return false
}

// save persists one blob. Failures are logged and counted, never returned:
// in-memory state stays authoritative until the next successful save.
func (w *Workspace) save(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to encode state")
		metrics.RecordStateSave(key, "error")
		return
	}
	if err := w.repo.Save(ctx, key, data); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to save state")
		metrics.RecordStateSave(key, "error")
		return
	}
	metrics.RecordStateSave(key, "success")
}

// Products returns a copy of the catalog.
func (w *Workspace) Products() []model.Product {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return cloneProducts(w.products)
}

// Planner returns a deep copy of the planner state.
func (w *Workspace) Planner() model.PlannerState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.planner.Clone()
}

// Snapshot returns consistent copies of both collections.
func (w *Workspace) Snapshot() ([]model.Product, model.PlannerState) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return cloneProducts(w.products), w.planner.Clone()
}

// UpdateProducts applies fn to a copy of the catalog and commits the result
// when fn succeeds.
func (w *Workspace) UpdateProducts(ctx context.Context, fn func([]model.Product) ([]model.Product, error)) ([]model.Product, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	next, err := fn(cloneProducts(w.products))
	if err != nil {
		return nil, err
	}
	if next == nil {
		next = []model.Product{}
	}
	w.products = next
	w.save(ctx, w.keys.Products, w.products)
	return cloneProducts(w.products), nil
}

// UpdatePlanner applies fn to a copy of the planner state, repairs it and
// commits the result when fn succeeds.
func (w *Workspace) UpdatePlanner(ctx context.Context, fn func(*model.PlannerState) error) (model.PlannerState, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	next := w.planner.Clone()
	if err := fn(&next); err != nil {
		return model.PlannerState{}, err
	}
	if len(next.Plans) == 0 {
		return model.PlannerState{}, fmt.Errorf("update planner: %w", ErrEmptyPlanner)
	}
	next.Repair()
	w.planner = next
	w.save(ctx, w.keys.Planner, w.planner)
	return w.planner.Clone(), nil
}

// ErrEmptyPlanner is returned when an update would leave no plans.
var ErrEmptyPlanner = errors.New("planner must keep at least one plan")

// Replace swaps in whole collections. A nil argument leaves that
// collection untouched.
func (w *Workspace) Replace(ctx context.Context, products []model.Product, planner *model.PlannerState) error {
	if planner != nil && len(planner.Plans) == 0 {
		return ErrEmptyPlanner
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if products != nil {
		w.products = cloneProducts(products)
		for i := range w.products {
			w.products[i].Normalize()
		}
		w.save(ctx, w.keys.Products, w.products)
	}
	if planner != nil {
		next := planner.Clone()
		next.Repair()
		w.planner = next
		w.save(ctx, w.keys.Planner, w.planner)
	}
	return nil
}

// Visited reports whether the first-run choice has been made.
func (w *Workspace) Visited() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.visited
}

// MarkVisited sets the first-run flag.
func (w *Workspace) MarkVisited(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.visited {
		return
	}
	w.visited = true
	w.save(ctx, w.keys.Visited, true)
}

func cloneProducts(in []model.Product) []model.Product {
	out := make([]model.Product, len(in))
	copy(out, in)
	return out
}
