package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/macro-service/internal/circuitbreaker"
	"github.com/guttosm/macro-service/internal/domain/dto"
	"github.com/guttosm/macro-service/internal/domain/model"
	"github.com/guttosm/macro-service/internal/lookup"
	"github.com/guttosm/macro-service/internal/middleware"
	"github.com/guttosm/macro-service/internal/repository"
	"github.com/guttosm/macro-service/internal/service"
	"github.com/guttosm/macro-service/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockSearcher struct {
	mock.Mock
}

func (m *mockSearcher) Search(ctx context.Context, query string) ([]lookup.Candidate, error) {
	args := m.Called(ctx, query)
	candidates, _ := args.Get(0).([]lookup.Candidate)
	return candidates, args.Error(1)
}

func tofu() model.Product {
	return model.Product{ID: "tofu", Name: "Tofu", ServingGrams: 100, Unit: model.UnitLabelGrams, GramsPerUnit: 1, Calories: 76, Protein: 8, Carbs: 2, Fat: 5}
}

func workoutPlan() model.Plan {
	return model.Plan{
		ID:   "p1",
		Name: "Workout Day",
		Data: model.PlanData{
			Profile: model.Profile{Calories: 2000, Protein: 150, Carbs: 250, Fat: 40},
			Meals: []model.Meal{{
				Name:  "Breakfast",
				Items: []model.Item{{ID: "i1", ProductID: "tofu", Amount: 150}},
			}},
		},
	}
}

type testAPI struct {
	router   *gin.Engine
	ws       *store.Workspace
	searcher *mockSearcher
}

func newTestAPI(t *testing.T, products []model.Product) *testAPI {
	t.Helper()
	if products == nil {
		products = []model.Product{}
	}
	plan := workoutPlan()
	ws := store.New(repository.NewMemoryStateRepository(), store.DefaultKeys(), store.Defaults{
		Products: func() []model.Product { return append([]model.Product(nil), products...) },
		Planner: func() model.PlannerState {
			return model.PlannerState{Plans: []model.Plan{plan.Clone()}, ActivePlanID: plan.ID}
		},
	})
	ws.Load(context.Background())

	agg := service.NewAggregator(service.NewMacroCalculatorService(), model.UnitGrams)
	shareSvc := service.NewShareService(ws, "https://greenmacros.app/")
	searcher := &mockSearcher{}

	handler := NewHandler(Services{
		Products: service.NewProductService(ws),
		Planner:  service.NewPlannerService(ws, agg),
		Share:    shareSvc,
		Session:  service.NewSessionService(ws, shareSvc),
		Transfer: service.NewTransferService(ws),
		Lookup:   searcher,
	})
	router := NewRouter(handler, NewHealthHandler(), DefaultRouterConfig())
	return &testAPI{router: router, ws: ws, searcher: searcher}
}

func (a *testAPI) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var resp struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp.Data
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestProductHandler(t *testing.T) {
	t.Run("list returns the catalog", func(t *testing.T) {
		api := newTestAPI(t, []model.Product{tofu()})

		w := api.do(http.MethodGet, "/api/products", "")

		require.Equal(t, http.StatusOK, w.Code)
		products := decodeData[[]model.Product](t, w)
		require.Len(t, products, 1)
		assert.Equal(t, "Tofu", products[0].Name)
	})

	t.Run("create applies defaults", func(t *testing.T) {
		api := newTestAPI(t, nil)

		w := api.do(http.MethodPost, "/api/products", "")

		require.Equal(t, http.StatusCreated, w.Code)
		p := decodeData[model.Product](t, w)
		assert.Equal(t, "New Product", p.Name)
		assert.Equal(t, 100.0, p.ServingGrams)
		assert.NotEmpty(t, p.ID)
	})

	t.Run("unknown product is 404", func(t *testing.T) {
		api := newTestAPI(t, nil)

		w := api.do(http.MethodGet, "/api/products/missing", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, dto.ErrCodeNotFound, resp.Error)
		assert.Equal(t, "Product not found", resp.Message)
		assert.NotEmpty(t, resp.RequestID)
	})

	t.Run("invalid update is 422", func(t *testing.T) {
		api := newTestAPI(t, []model.Product{tofu()})

		w := api.do(http.MethodPatch, "/api/products/tofu", `{"servingGrams": 0}`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		p, _ := model.FindProduct(api.ws.Products(), "tofu")
		require.NotNil(t, p)
		assert.Equal(t, 100.0, p.ServingGrams)
	})

	t.Run("remove answers 204", func(t *testing.T) {
		api := newTestAPI(t, []model.Product{tofu()})

		w := api.do(http.MethodDelete, "/api/products/tofu", "")

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, api.ws.Products())
	})

	t.Run("unknown sort key is 400", func(t *testing.T) {
		api := newTestAPI(t, []model.Product{tofu()})

		w := api.do(http.MethodPost, "/api/products/sort", `{"key": "weight-asc"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("sort by protein descending", func(t *testing.T) {
		rice := model.Product{ID: "rice", Name: "Rice", ServingGrams: 100, Calories: 130, Protein: 2.7, Carbs: 28, Fat: 0.3}
		api := newTestAPI(t, []model.Product{rice, tofu()})

		w := api.do(http.MethodPost, "/api/products/sort", `{"key": "protein-desc"}`)

		require.Equal(t, http.StatusOK, w.Code)
		products := decodeData[[]model.Product](t, w)
		require.Len(t, products, 2)
		assert.Equal(t, model.ID("tofu"), products[0].ID)
	})
}

func TestPlannerHandler(t *testing.T) {
	t.Run("state", func(t *testing.T) {
		api := newTestAPI(t, []model.Product{tofu()})

		w := api.do(http.MethodGet, "/api/planner", "")

		require.Equal(t, http.StatusOK, w.Code)
		state := decodeData[model.PlannerState](t, w)
		assert.Equal(t, model.ID("p1"), state.ActivePlanID)
	})

	t.Run("add plan becomes active", func(t *testing.T) {
		api := newTestAPI(t, []model.Product{tofu()})

		w := api.do(http.MethodPost, "/api/planner/plans", "")

		require.Equal(t, http.StatusOK, w.Code)
		state := decodeData[model.PlannerState](t, w)
		require.Len(t, state.Plans, 2)
		assert.Equal(t, "Plan 2", state.Plans[1].Name)
		assert.Equal(t, state.Plans[1].ID, state.ActivePlanID)
	})

	t.Run("removing the only plan is a no-op", func(t *testing.T) {
		api := newTestAPI(t, []model.Product{tofu()})

		w := api.do(http.MethodDelete, "/api/planner/plans/active", "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decodeData[model.PlannerState](t, w).Plans, 1)
	})

	t.Run("unknown plan is 404", func(t *testing.T) {
		api := newTestAPI(t, []model.Product{tofu()})

		w := api.do(http.MethodPost, "/api/planner/plans/nope/duplicate", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("bad meal index is 400", func(t *testing.T) {
		api := newTestAPI(t, []model.Product{tofu()})

		w := api.do(http.MethodDelete, "/api/planner/plans/active/meals/first", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("blank name is rejected", func(t *testing.T) {
		api := newTestAPI(t, []model.Product{tofu()})

		w := api.do(http.MethodPut, "/api/planner/plans/p1/name", `{"name": "   "}`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "Workout Day", api.ws.Planner().Plans[0].Name)
	})

	t.Run("negative profile is rejected", func(t *testing.T) {
		api := newTestAPI(t, []model.Product{tofu()})

		w := api.do(http.MethodPut, "/api/planner/plans/p1/profile", `{"calories": -1, "protein": 0, "carbs": 0, "fat": 0}`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("add item on empty catalog is 409", func(t *testing.T) {
		api := newTestAPI(t, nil)

		w := api.do(http.MethodPost, "/api/planner/plans/active/meals/0/items", "")

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("update item amount", func(t *testing.T) {
		api := newTestAPI(t, []model.Product{tofu()})

		w := api.do(http.MethodPatch, "/api/planner/plans/active/meals/0/items/i1", `{"amount": 50, "locked": true}`)

		require.Equal(t, http.StatusOK, w.Code)
		item := decodeData[model.PlannerState](t, w).Plans[0].Data.Meals[0].Items[0]
		assert.Equal(t, 50.0, item.Amount)
		assert.True(t, item.Locked)
	})

	t.Run("summary totals the plan", func(t *testing.T) {
		api := newTestAPI(t, []model.Product{tofu()})

		w := api.do(http.MethodGet, "/api/planner/plans/active/summary", "")

		require.Equal(t, http.StatusOK, w.Code)
		summary := decodeData[service.PlanSummary](t, w)
		assert.InDelta(t, 114, summary.Totals.Calories, 1e-9)
		assert.InDelta(t, 12, summary.Totals.Protein, 1e-9)
		assert.InDelta(t, 3, summary.Totals.Carbs, 1e-9)
		assert.InDelta(t, 7.5, summary.Totals.Fat, 1e-9)
		assert.Equal(t, model.Profile{Calories: 2000, Protein: 150, Carbs: 250, Fat: 40}.Macros(), summary.Target)
	})

	t.Run("auto-balance scales unlocked items", func(t *testing.T) {
		api := newTestAPI(t, []model.Product{tofu()})

		w := api.do(http.MethodPost, "/api/planner/plans/active/meals/0/balance",
			`{"target": {"calories": 0, "protein": 24, "carbs": 0, "fat": 0}, "priority": "protein"}`)

		require.Equal(t, http.StatusOK, w.Code)
		result := decodeData[service.BalanceResult](t, w)
		assert.Equal(t, service.BalanceApplied, result.Outcome)
		require.Len(t, result.Meal.Items, 1)
		assert.InDelta(t, 300, result.Meal.Items[0].Amount, 1e-9)
	})

	t.Run("auto-balance rejects unknown priority", func(t *testing.T) {
		api := newTestAPI(t, []model.Product{tofu()})

		w := api.do(http.MethodPost, "/api/planner/plans/active/meals/0/balance", `{"priority": "fiber"}`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("csv export", func(t *testing.T) {
		api := newTestAPI(t, []model.Product{tofu()})

		w := api.do(http.MethodGet, "/api/planner/plans/active/export.csv", "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
		assert.Contains(t, w.Header().Get("Content-Disposition"), "meal-plan.csv")
		lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
		require.GreaterOrEqual(t, len(lines), 2)
		assert.True(t, strings.HasPrefix(lines[0], "Meal,Product,Amount"))
		assert.Contains(t, lines[1], "Tofu")
	})
}

func TestShareHandler(t *testing.T) {
	t.Run("link round trip", func(t *testing.T) {
		src := newTestAPI(t, []model.Product{tofu()})
		w := src.do(http.MethodPost, "/api/share/link", "")
		require.Equal(t, http.StatusOK, w.Code)
		link := decodeData[service.ShareLink](t, w)
		assert.True(t, strings.HasPrefix(link.URL, "https://greenmacros.app/?s="))
		assert.Equal(t, len(link.Payload), link.Bytes)

		dst := newTestAPI(t, nil)
		body, _ := json.Marshal(dto.SharePayloadRequest{URL: link.URL})
		w = dst.do(http.MethodPost, "/api/share/import", string(body))

		require.Equal(t, http.StatusOK, w.Code)
		var resp dto.SuccessResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Shared plans imported", resp.Message)
		require.Len(t, dst.ws.Products(), 1)
		assert.Equal(t, "Tofu", dst.ws.Products()[0].Name)
		assert.Equal(t, "Workout Day", dst.ws.Planner().Plans[0].Name)
		assert.True(t, dst.ws.Visited())
	})

	t.Run("preview leaves the workspace alone", func(t *testing.T) {
		src := newTestAPI(t, []model.Product{tofu()})
		link := decodeData[service.ShareLink](t, src.do(http.MethodPost, "/api/share/link", ""))

		dst := newTestAPI(t, nil)
		w := dst.do(http.MethodPost, "/api/share/preview", `{"payload": "`+link.Payload+`"}`)

		require.Equal(t, http.StatusOK, w.Code)
		preview := decodeData[service.SharePreview](t, w)
		assert.True(t, preview.KnownVersion)
		require.Len(t, preview.Plans, 1)
		assert.Equal(t, 1, preview.Plans[0].Items)
		assert.Empty(t, dst.ws.Products())
	})

	t.Run("corrupted link echoes the cleaned address", func(t *testing.T) {
		api := newTestAPI(t, []model.Product{tofu()})

		w := api.do(http.MethodPost, "/api/share/import", `{"url": "https://greenmacros.app/?tab=plan&s=%21%21%21"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, "Invalid or corrupted share link", resp.Message)
		assert.Equal(t, "https://greenmacros.app/?tab=plan", resp.Details["address"])
		assert.Len(t, api.ws.Products(), 1)
	})

	t.Run("missing payload is 400", func(t *testing.T) {
		api := newTestAPI(t, nil)

		w := api.do(http.MethodPost, "/api/share/preview", `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSessionRoutes(t *testing.T) {
	t.Run("status before first visit", func(t *testing.T) {
		api := newTestAPI(t, nil)

		w := api.do(http.MethodGet, "/api/session", "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.False(t, decodeData[service.SessionStatus](t, w).Visited)
	})

	t.Run("preset loads the starter plans", func(t *testing.T) {
		api := newTestAPI(t, nil)

		w := api.do(http.MethodPost, "/api/session/start", `{"mode": "preset"}`)

		require.Equal(t, http.StatusOK, w.Code)
		result := decodeData[service.SessionResult](t, w)
		require.Len(t, result.State.Plans, 2)
		assert.Equal(t, "Workout Day", result.State.Plans[0].Name)
		assert.Equal(t, "Rest Day", result.State.Plans[1].Name)
		assert.True(t, api.ws.Visited())
	})

	t.Run("unknown mode is 400", func(t *testing.T) {
		api := newTestAPI(t, nil)

		w := api.do(http.MethodPost, "/api/session/start", `{"mode": "demo"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, api.ws.Visited())
	})
}

func TestTransferHandler(t *testing.T) {
	t.Run("export products as a download", func(t *testing.T) {
		api := newTestAPI(t, []model.Product{tofu()})

		w := api.do(http.MethodGet, "/api/transfer/products", "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, `attachment; filename="products.json"`, w.Header().Get("Content-Disposition"))
		assert.Contains(t, w.Body.String(), "\n  {")
		var products []model.Product
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &products))
		assert.Equal(t, []model.Product{tofu()}, products)
	})

	t.Run("unknown kind is 404", func(t *testing.T) {
		api := newTestAPI(t, nil)

		w := api.do(http.MethodGet, "/api/transfer/recipes", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("planner without activePlanId is rejected", func(t *testing.T) {
		api := newTestAPI(t, []model.Product{tofu()})

		w := api.do(http.MethodPost, "/api/transfer/planner", `{"plans": []}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, "missing activePlanId", resp.Details["reason"])
		assert.Equal(t, "Workout Day", api.ws.Planner().Plans[0].Name)
	})

	t.Run("multipart upload replaces the catalog", func(t *testing.T) {
		api := newTestAPI(t, []model.Product{tofu()})

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("file", "products.json")
		require.NoError(t, err)
		_, err = fw.Write([]byte(`[{"id": "seitan", "name": "Seitan", "servingGrams": 100, "cal": 370, "protein": 75, "carbs": 14, "fat": 2}]`))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/transfer/products", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		api.router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		summary := decodeData[service.ImportSummary](t, w)
		assert.Equal(t, 1, summary.Products)
		require.Len(t, api.ws.Products(), 1)
		assert.Equal(t, "Seitan", api.ws.Products()[0].Name)
	})
}

func TestLookupHandler(t *testing.T) {
	t.Run("search returns candidates", func(t *testing.T) {
		api := newTestAPI(t, nil)
		api.searcher.On("Search", mock.Anything, "oat milk").Return([]lookup.Candidate{
			{Code: "123", Product: model.Product{Name: "Oat Milk", ServingGrams: 100, Calories: 45}},
		}, nil)

		w := api.do(http.MethodGet, "/api/lookup/products?q=oat+milk", "")

		require.Equal(t, http.StatusOK, w.Code)
		candidates := decodeData[[]lookup.Candidate](t, w)
		require.Len(t, candidates, 1)
		assert.Equal(t, "Oat Milk", candidates[0].Product.Name)
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Remaining"))
		api.searcher.AssertExpectations(t)
	})

	t.Run("open breaker is 503", func(t *testing.T) {
		api := newTestAPI(t, nil)
		api.searcher.On("Search", mock.Anything, "tofu").Return(nil, circuitbreaker.ErrCircuitOpen)

		w := api.do(http.MethodGet, "/api/lookup/products?q=tofu", "")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, dto.ErrCodeUnavailable, decodeError(t, w).Error)
	})

	t.Run("parse label", func(t *testing.T) {
		api := newTestAPI(t, nil)

		w := api.do(http.MethodPost, "/api/labels/parse", `{"text": "Peanut Butter\nServing size 32g\nCalories 190\nTotal Fat 16g\nTotal Carbohydrate 7g\nProtein 8g"}`)

		require.Equal(t, http.StatusOK, w.Code)
		p := decodeData[model.Product](t, w)
		assert.Equal(t, "Peanut Butter", p.Name)
		assert.Equal(t, 32.0, p.ServingGrams)
		assert.Equal(t, 190.0, p.Calories)
	})

	t.Run("missing label text is 400", func(t *testing.T) {
		api := newTestAPI(t, nil)

		w := api.do(http.MethodPost, "/api/labels/parse", `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestIdempotentPlanCreation(t *testing.T) {
	api := newTestAPI(t, []model.Product{tofu()})

	first := api.do(http.MethodPost, "/api/planner/plans", "", middleware.IdempotencyKeyHeader, "plan-1")
	second := api.do(http.MethodPost, "/api/planner/plans", "", middleware.IdempotencyKeyHeader, "plan-1")

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "true", second.Header().Get(middleware.IdempotencyReplayedHeader))
	assert.Len(t, api.ws.Planner().Plans, 2)
}
