//go:build !integration

package service

import (
	"context"
	"testing"

	"github.com/goccy/go-json"
	"github.com/guttosm/macro-service/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateProducts(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		valid  bool
		reason string
	}{
		{name: "array", input: `[{"id":"1","name":"Tofu","servingGrams":100,"cal":76}]`, valid: true},
		{name: "empty array", input: `[]`, valid: true},
		{name: "numeric id", input: `[{"id":7,"name":"Oats","servingGrams":40}]`, valid: true},
		{name: "null", input: `null`, reason: "expected a JSON array of products"},
		{name: "object", input: `{"products":[]}`, reason: "expected a JSON array of products"},
		{name: "not json", input: `nope`, reason: "expected a JSON array of products"},
		{name: "item not an object", input: `[1]`, reason: "product 0 is not a product object"},
		{name: "zero serving", input: `[{"name":"Bad","servingGrams":0}]`},
		{name: "negative macro", input: `[{"name":"Bad","servingGrams":100,"fat":-2}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateProducts([]byte(tt.input))
			assert.Equal(t, tt.valid, res.Valid, res.Reason)
			if tt.reason != "" {
				assert.Equal(t, tt.reason, res.Reason)
			}
			if !tt.valid {
				assert.NotEmpty(t, res.Reason)
			}
		})
	}
}

func TestValidateProducts_FillsDefaults(t *testing.T) {
	res := ValidateProducts([]byte(`[{"name":"Tofu","servingGrams":100},{"id":7,"name":"Oats","servingGrams":40}]`))
	require.True(t, res.Valid, res.Reason)

	assert.NotEmpty(t, res.Value[0].ID)
	assert.Equal(t, model.UnitLabelGrams, res.Value[0].Unit)
	assert.Equal(t, 1.0, res.Value[0].GramsPerUnit)
	assert.Equal(t, model.ID("7"), res.Value[1].ID)
}

func TestValidatePlanner(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		valid  bool
		reason string
	}{
		{
			name:  "valid",
			input: `{"plans":[{"id":"p1","name":"Plan 1","data":{"profile":{"calories":2000},"meals":[{"name":"Lunch","items":[{"id":"i1","productId":"1","amount":100}]}]}}],"activePlanId":"p1"}`,
			valid: true,
		},
		{name: "missing plans", input: `{"activePlanId":"p1"}`, reason: "missing plans"},
		{name: "missing active id", input: `{"plans":[]}`, reason: "missing activePlanId"},
		{name: "empty plans", input: `{"plans":[],"activePlanId":"p1"}`, reason: "plans must not be empty"},
		{name: "plans not an array", input: `{"plans":{},"activePlanId":"p1"}`, reason: "plans must be an array of plans"},
		{name: "array instead of object", input: `[]`, reason: "expected a JSON object"},
		{
			name:   "negative amount",
			input:  `{"plans":[{"id":"p1","name":"P","data":{"meals":[{"name":"M","items":[{"id":"i1","productId":"1","amount":-1}]}]}}],"activePlanId":"p1"}`,
			reason: "plan 0 meal 0 item 0 has a negative amount",
		},
		{
			name:   "negative profile target",
			input:  `{"plans":[{"id":"p1","name":"P","data":{"profile":{"protein":-5},"meals":[]}}],"activePlanId":"p1"}`,
			reason: "plan 0: invalid profile: targets must not be negative",
		},
		{
			name:   "unknown meal priority",
			input:  `{"plans":[{"id":"p1","name":"P","data":{"meals":[{"name":"M","priority":"sugar","items":[]}]}}],"activePlanId":"p1"}`,
			reason: `plan 0 meal 0: invalid meal priority "sugar"`,
		},
		{
			name:  "known meal priority",
			input: `{"plans":[{"id":"p1","name":"P","data":{"meals":[{"name":"M","priority":"carbs","items":[]}]}}],"activePlanId":"p1"}`,
			valid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidatePlanner([]byte(tt.input))
			assert.Equal(t, tt.valid, res.Valid, res.Reason)
			assert.Equal(t, tt.reason, res.Reason)
		})
	}
}

func TestValidatePlanner_RepairsActivePlan(t *testing.T) {
	res := ValidatePlanner([]byte(`{"plans":[{"name":"A","data":{}},{"id":"b","name":"B","data":{"meals":[{"name":"M"}]}}],"activePlanId":"gone"}`))
	require.True(t, res.Valid, res.Reason)

	st := res.Value
	assert.NotEmpty(t, st.Plans[0].ID)
	assert.Equal(t, st.Plans[0].ID, st.ActivePlanID)
	assert.NotNil(t, st.Plans[0].Data.Meals)
	assert.NotNil(t, st.Plans[1].Data.Meals[0].Items)
}

func TestValidateBackup(t *testing.T) {
	planner := `{"plans":[{"id":"p1","name":"P","data":{"meals":[]}}],"activePlanId":"p1"}`

	tests := []struct {
		name   string
		input  string
		valid  bool
		reason string
	}{
		{name: "valid", input: `{"products":[{"id":"1","name":"Tofu","servingGrams":100}],"plannerState":` + planner + `}`, valid: true},
		{name: "missing products", input: `{"plannerState":` + planner + `}`, reason: "missing products"},
		{name: "missing planner", input: `{"products":[]}`, reason: "missing plannerState"},
		{name: "products null", input: `{"products":null,"plannerState":` + planner + `}`, reason: "products must be an array"},
		{name: "planner invalid", input: `{"products":[],"plannerState":{"plans":[]}}`, reason: "plannerState: missing activePlanId"},
		{name: "planner not an object", input: `{"products":[],"plannerState":3}`, reason: "plannerState must be an object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateBackup([]byte(tt.input))
			assert.Equal(t, tt.valid, res.Valid, res.Reason)
			assert.Equal(t, tt.reason, res.Reason)
		})
	}
}

func TestParseTransferKind(t *testing.T) {
	for _, tt := range []struct {
		raw  string
		file string
	}{
		{"products", "products.json"},
		{"planner", "plans.json"},
		{"backup", "full-backup.json"},
	} {
		kind, err := ParseTransferKind(tt.raw)
		require.NoError(t, err)
		assert.Equal(t, tt.file, kind.Filename())
	}

	_, err := ParseTransferKind("settings")
	assert.ErrorIs(t, err, ErrUnknownTransferKind)
}

func TestTransferService_ExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	source, _ := newTestWorkspace(t, sampleProducts(), samplePlan())
	doc, err := NewTransferService(source).Export(ctx, TransferBackup)
	require.NoError(t, err)
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	target, _ := newTestWorkspace(t, nil)
	svc := NewTransferService(target)
	summary, err := svc.Import(ctx, TransferBackup, data)
	require.NoError(t, err)
	assert.Equal(t, ImportSummary{Kind: TransferBackup, Products: 2, Plans: 1}, summary)

	products, planner := target.Snapshot()
	wantProducts, wantPlanner := source.Snapshot()
	assert.Equal(t, wantProducts, products)
	assert.Equal(t, wantPlanner, planner)
}

func TestTransferService_ImportSingleCollection(t *testing.T) {
	ctx := context.Background()

	t.Run("products leave plans alone", func(t *testing.T) {
		ws, _ := newTestWorkspace(t, sampleProducts(), samplePlan())
		before := ws.Planner()

		summary, err := NewTransferService(ws).Import(ctx, TransferProducts, []byte(`[{"id":"x","name":"Seitan","servingGrams":100,"protein":25}]`))
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Products)
		assert.Equal(t, []string{"Seitan"}, productNames(ws.Products()))
		assert.Equal(t, before, ws.Planner())
	})

	t.Run("planner leaves products alone", func(t *testing.T) {
		ws, _ := newTestWorkspace(t, sampleProducts(), samplePlan())

		summary, err := NewTransferService(ws).Import(ctx, TransferPlanner, []byte(`{"plans":[{"id":"a","name":"A","data":{"meals":[]}},{"id":"b","name":"B","data":{"meals":[]}}],"activePlanId":"b"}`))
		require.NoError(t, err)
		assert.Equal(t, 2, summary.Plans)
		assert.Equal(t, model.ID("b"), ws.Planner().ActivePlanID)
		assert.Len(t, ws.Products(), 2)
	})

	t.Run("rejected document changes nothing", func(t *testing.T) {
		ws, _ := newTestWorkspace(t, sampleProducts(), samplePlan())
		products, planner := ws.Snapshot()

		_, err := NewTransferService(ws).Import(ctx, TransferPlanner, []byte(`{"plans":[]}`))
		assert.ErrorIs(t, err, ErrInvalidImport)
		assert.Contains(t, err.Error(), "missing activePlanId")

		gotProducts, gotPlanner := ws.Snapshot()
		assert.Equal(t, products, gotProducts)
		assert.Equal(t, planner, gotPlanner)
	})

	t.Run("unknown kind", func(t *testing.T) {
		ws, _ := newTestWorkspace(t, nil)
		_, err := NewTransferService(ws).Import(ctx, "settings", []byte(`{}`))
		assert.ErrorIs(t, err, ErrUnknownTransferKind)

		_, err = NewTransferService(ws).Export(ctx, "settings")
		assert.ErrorIs(t, err, ErrUnknownTransferKind)
	})
}
