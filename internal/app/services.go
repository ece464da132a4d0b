package app

import (
	"context"
	"time"

	"github.com/guttosm/macro-service/config"
	"github.com/guttosm/macro-service/internal/circuitbreaker"
	"github.com/guttosm/macro-service/internal/domain/model"
	"github.com/guttosm/macro-service/internal/lookup"
	"github.com/guttosm/macro-service/internal/repository"
	"github.com/guttosm/macro-service/internal/service"
	"github.com/guttosm/macro-service/internal/store"
)

const workspaceLoadTimeout = 10 * time.Second

// ServiceComponents holds the workspace and the services operating on it.
type ServiceComponents struct {
	Workspace  *store.Workspace
	Calculator service.MacroCalculator
	Aggregator *service.Aggregator
	Products   service.ProductService
	Planner    service.PlannerService
	Share      service.ShareService
	Session    service.SessionService
	Transfer   service.TransferService
	// Lookup is nil when the food database search is disabled.
	Lookup               lookup.Searcher
	LookupCircuitBreaker *circuitbreaker.CircuitBreaker
}

// InitializeServices loads the workspace from repo and builds the services.
// A nil repo keeps the workspace in memory.
func InitializeServices(cfg config.Config, repo repository.StateRepositoryInterface) *ServiceComponents {
	if repo == nil {
		repo = repository.NewMemoryStateRepository()
	}

	ws := store.New(repo, store.Keys{
		Products: cfg.Storage.ProductsKey,
		Planner:  cfg.Storage.PlannerKey,
		Visited:  cfg.Storage.VisitedKey,
	}, store.Defaults{
		Products: service.DefaultProducts,
		Planner:  service.DefaultPlannerState,
	})
	loadWorkspace(ws)

	calc := newCalculator(cfg.Cache)
	agg := service.NewAggregator(calc, model.ParseUnitKind(cfg.Planner.UnitKind))
	share := service.NewShareService(ws, cfg.Server.PublicBaseURL)

	sc := &ServiceComponents{
		Workspace:  ws,
		Calculator: calc,
		Aggregator: agg,
		Products:   service.NewProductService(ws),
		Planner:    service.NewPlannerService(ws, agg),
		Share:      share,
		Session:    service.NewSessionService(ws, share),
		Transfer:   service.NewTransferService(ws),
	}

	if cfg.Lookup.Enabled {
		sc.LookupCircuitBreaker = newBreaker("openfoodfacts", cfg.Lookup.Breaker)
		sc.Lookup = newLookupClient(cfg.Lookup, sc.LookupCircuitBreaker)
	}

	return sc
}

func loadWorkspace(ws *store.Workspace) {
	ctx, cancel := context.WithTimeout(context.Background(), workspaceLoadTimeout)
	defer cancel()

	ws.Load(ctx)
}

func newCalculator(cfg config.CacheConfig) *service.MacroCalculatorService {
	var opts []service.CalculatorOption
	switch {
	case cfg.Size <= 0:
	case cfg.Shards > 0:
		opts = append(opts, service.WithShardedCache(cfg.Size, cfg.TTL, cfg.Shards))
	default:
		opts = append(opts, service.WithCache(cfg.Size, cfg.TTL))
	}
	return service.NewMacroCalculatorService(opts...)
}

func newLookupClient(cfg config.LookupConfig, cb *circuitbreaker.CircuitBreaker) *lookup.Client {
	var opts []lookup.Option
	if cfg.CacheSize > 0 {
		opts = append(opts, lookup.WithCache(service.NewShardedCache[string, []lookup.Candidate](cfg.CacheSize, cfg.CacheTTL, 0)))
	}
	return lookup.New(lookup.Config{
		BaseURL:   cfg.BaseURL,
		PageSize:  cfg.PageSize,
		Timeout:   cfg.Timeout,
		UserAgent: cfg.UserAgent,
	}, cb, opts...)
}
