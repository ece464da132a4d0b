// Package share encodes a workspace into a compact URL-safe string and back.
//
// Wire format: a JSON object {"p": products, "m": plans, "v": version} of
// positional tuples, deflate-compressed and encoded with the unpadded
// URL-safe base64 alphabet.
//
//	product: [id, name, cal, protein, carbs, fat, servingGrams]
//	plan:    [id, name, [[mealName, [[itemId, productId, amount, note]]]], [cal, protein, carbs, fat]]
package share

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/guttosm/macro-service/internal/domain/model"
	"github.com/klauspost/compress/flate"
)

const (
	// Version is written into every link.
	Version = "1.6"
	// Param is the query parameter carrying the payload.
	Param = "s"

	defaultServingGrams = 100
	maxDecodedBytes     = 4 << 20
)

var (
	// ErrInvalidLink is returned for any payload that cannot be decoded.
	ErrInvalidLink = errors.New("invalid share link")
	// ErrEmptyLink is returned when the payload string is empty.
	ErrEmptyLink = errors.New("empty share link")
)

// Snapshot is the decoded content of a link.
type Snapshot struct {
	// Products is nil when the link carries no product list.
	Products []model.Product
	Plans    []model.Plan
	Version  string
}

// KnownVersion reports whether the link was written by this codec version.
func (s *Snapshot) KnownVersion() bool {
	return s.Version == Version
}

// PlannerState returns the decoded plans with the first one active, or nil
// when the link carries no plans.
func (s *Snapshot) PlannerState() *model.PlannerState {
	if len(s.Plans) == 0 {
		return nil
	}
	state := model.PlannerState{Plans: s.Plans, ActivePlanID: s.Plans[0].ID}
	state.Repair()
	return &state
}

type envelope struct {
	P []any  `json:"p"`
	M []any  `json:"m"`
	V string `json:"v"`
}

// Encode packs products and plans into a link payload.
func Encode(products []model.Product, plans []model.Plan) (string, error) {
	env := envelope{P: make([]any, 0, len(products)), M: make([]any, 0, len(plans)), V: Version}
	for _, p := range products {
		env.P = append(env.P, productTuple(p))
	}
	for _, p := range plans {
		env.M = append(env.M, planTuple(p))
	}

	raw, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("marshal share payload: %w", err)
	}

	var buf bytes.Buffer
	zw, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return "", err
	}
	if _, err := zw.Write(raw); err != nil {
		return "", err
	}
	if err := zw.Close(); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf.Bytes()), nil
}

func productTuple(p model.Product) []any {
	serving := p.ServingGrams
	if serving <= 0 {
		serving = defaultServingGrams
	}
	return []any{string(p.ID), p.Name, p.Calories, p.Protein, p.Carbs, p.Fat, serving}
}

func planTuple(p model.Plan) []any {
	meals := make([]any, 0, len(p.Data.Meals))
	for _, m := range p.Data.Meals {
		items := make([]any, 0, len(m.Items))
		for _, it := range m.Items {
			items = append(items, []any{string(it.ID), string(it.ProductID), it.Amount, it.Note})
		}
		meals = append(meals, []any{m.Name, items})
	}
	prof := p.Data.Profile
	return []any{string(p.ID), p.Name, meals, []any{prof.Calories, prof.Protein, prof.Carbs, prof.Fat}}
}

// Decode unpacks a link payload. Any malformed input yields an error
// wrapping ErrInvalidLink and no partial result.
func Decode(payload string) (*Snapshot, error) {
	if payload == "" {
		return nil, ErrEmptyLink
	}

	compressed, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", ErrInvalidLink, err)
	}

	zr := flate.NewReader(bytes.NewReader(compressed))
	defer func() {
		_ = zr.Close()
	}()
	raw, err := io.ReadAll(io.LimitReader(zr, maxDecodedBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: inflate: %v", ErrInvalidLink, err)
	}
	if len(raw) > maxDecodedBytes {
		return nil, fmt.Errorf("%w: payload too large", ErrInvalidLink)
	}

	var env struct {
		P []any `json:"p"`
		M []any `json:"m"`
		V any   `json:"v"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: json: %v", ErrInvalidLink, err)
	}
	if env.P == nil && len(env.M) == 0 {
		return nil, fmt.Errorf("%w: no products or plans", ErrInvalidLink)
	}

	snap := &Snapshot{Version: fmt.Sprint(env.V)}
	if env.V == nil {
		snap.Version = ""
	}

	if env.P != nil {
		snap.Products = make([]model.Product, 0, len(env.P))
		for i, t := range env.P {
			p, err := decodeProduct(t)
			if err != nil {
				return nil, fmt.Errorf("%w: product %d: %v", ErrInvalidLink, i, err)
			}
			snap.Products = append(snap.Products, p)
		}
	}

	for i, t := range env.M {
		p, err := decodePlan(t)
		if err != nil {
			return nil, fmt.Errorf("%w: plan %d: %v", ErrInvalidLink, i, err)
		}
		snap.Plans = append(snap.Plans, p)
	}
	return snap, nil
}

func decodeProduct(v any) (model.Product, error) {
	t, err := tuple(v, 2)
	if err != nil {
		return model.Product{}, err
	}
	id, err := idAt(t, 0)
	if err != nil {
		return model.Product{}, err
	}
	name, err := stringAt(t, 1)
	if err != nil {
		return model.Product{}, err
	}

	var nums [5]float64
	for i := range nums {
		if nums[i], err = numberAt(t, 2+i); err != nil {
			return model.Product{}, err
		}
	}
	serving := nums[4]
	if serving <= 0 {
		serving = defaultServingGrams
	}

	p := model.Product{
		ID:           id,
		Name:         name,
		ServingGrams: serving,
		Calories:     nums[0],
		Protein:      nums[1],
		Carbs:        nums[2],
		Fat:          nums[3],
	}
	p.Normalize()
	return p, nil
}

func decodePlan(v any) (model.Plan, error) {
	t, err := tuple(v, 3)
	if err != nil {
		return model.Plan{}, err
	}
	id, err := idAt(t, 0)
	if err != nil {
		return model.Plan{}, err
	}
	if id == "" {
		id = model.NewID()
	}
	name, err := stringAt(t, 1)
	if err != nil {
		return model.Plan{}, err
	}
	rawMeals, err := tuple(t[2], 0)
	if err != nil {
		return model.Plan{}, fmt.Errorf("meals: %w", err)
	}

	meals := make([]model.Meal, 0, len(rawMeals))
	for i, rm := range rawMeals {
		m, err := decodeMeal(rm)
		if err != nil {
			return model.Plan{}, fmt.Errorf("meal %d: %w", i, err)
		}
		meals = append(meals, m)
	}

	// Links written before profiles were shared carry three elements.
	var profile model.Profile
	if len(t) > 3 && t[3] != nil {
		pt, err := tuple(t[3], 0)
		if err != nil {
			return model.Plan{}, fmt.Errorf("profile: %w", err)
		}
		var vals [4]float64
		for i := range vals {
			if vals[i], err = numberAt(pt, i); err != nil {
				return model.Plan{}, fmt.Errorf("profile: %w", err)
			}
		}
		profile = model.Profile{Calories: vals[0], Protein: vals[1], Carbs: vals[2], Fat: vals[3]}
	}

	return model.Plan{ID: id, Name: name, Data: model.PlanData{Profile: profile, Meals: meals}}, nil
}

func decodeMeal(v any) (model.Meal, error) {
	t, err := tuple(v, 1)
	if err != nil {
		return model.Meal{}, err
	}
	name, err := stringAt(t, 0)
	if err != nil {
		return model.Meal{}, err
	}
	meal := model.Meal{Name: name, Items: []model.Item{}}
	if len(t) < 2 || t[1] == nil {
		return meal, nil
	}

	rawItems, err := tuple(t[1], 0)
	if err != nil {
		return model.Meal{}, fmt.Errorf("items: %w", err)
	}
	for i, ri := range rawItems {
		it, err := decodeItem(ri)
		if err != nil {
			return model.Meal{}, fmt.Errorf("item %d: %w", i, err)
		}
		meal.Items = append(meal.Items, it)
	}
	return meal, nil
}

func decodeItem(v any) (model.Item, error) {
	t, err := tuple(v, 3)
	if err != nil {
		return model.Item{}, err
	}
	id, err := idAt(t, 0)
	if err != nil {
		return model.Item{}, err
	}
	if id == "" {
		id = model.NewID()
	}
	productID, err := idAt(t, 1)
	if err != nil {
		return model.Item{}, err
	}
	amount, err := numberAt(t, 2)
	if err != nil {
		return model.Item{}, err
	}
	note, err := stringAt(t, 3)
	if err != nil {
		return model.Item{}, err
	}
	return model.Item{ID: id, ProductID: productID, Amount: amount, Note: note}, nil
}

func tuple(v any, minLen int) ([]any, error) {
	t, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected array, got %T", v)
	}
	if len(t) < minLen {
		return nil, fmt.Errorf("expected at least %d elements, got %d", minLen, len(t))
	}
	return t, nil
}

func idAt(t []any, i int) (model.ID, error) {
	if i >= len(t) || t[i] == nil {
		return "", nil
	}
	switch v := t[i].(type) {
	case string:
		return model.ID(v), nil
	case float64:
		return model.IDFromNumber(v), nil
	}
	return "", fmt.Errorf("element %d: invalid id type %T", i, t[i])
}

func stringAt(t []any, i int) (string, error) {
	if i >= len(t) || t[i] == nil {
		return "", nil
	}
	s, ok := t[i].(string)
	if !ok {
		return "", fmt.Errorf("element %d: expected string, got %T", i, t[i])
	}
	return s, nil
}

func numberAt(t []any, i int) (float64, error) {
	if i >= len(t) || t[i] == nil {
		return 0, nil
	}
	f, ok := t[i].(float64)
	if !ok {
		return 0, fmt.Errorf("element %d: expected number, got %T", i, t[i])
	}
	return f, nil
}
