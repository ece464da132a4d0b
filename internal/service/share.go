package service

import (
	"context"
	"errors"

	"github.com/guttosm/macro-service/internal/domain/model"
	"github.com/guttosm/macro-service/internal/metrics"
	"github.com/guttosm/macro-service/internal/share"
	"github.com/guttosm/macro-service/internal/store"
	"github.com/rs/zerolog/log"
)

// ShareLink is an encoded workspace ready to hand out.
type ShareLink struct {
	URL     string `json:"url"`
	Payload string `json:"payload"`
	Bytes   int    `json:"bytes"`
}

// PlanOutline is a short description of one shared plan.
type PlanOutline struct {
	ID    model.ID `json:"id"`
	Name  string   `json:"name"`
	Meals int      `json:"meals"`
	Items int      `json:"items"`
}

// SharePreview describes a link's content without applying it.
type SharePreview struct {
	Version      string          `json:"version"`
	KnownVersion bool            `json:"knownVersion"`
	Products     []model.Product `json:"products"`
	Plans        []PlanOutline   `json:"plans"`
	// ReplacesProducts is false when the link carries no product list.
	ReplacesProducts bool `json:"replacesProducts"`
	ReplacesPlans    bool `json:"replacesPlans"`
}

// ShareImport is the workspace after a link was applied.
type ShareImport struct {
	Products []model.Product    `json:"products"`
	State    model.PlannerState `json:"state"`
}

// ShareService builds and applies share links.
type ShareService interface {
	Link(ctx context.Context, baseURL string) (ShareLink, error)
	Preview(ctx context.Context, payload string) (SharePreview, error)
	Import(ctx context.Context, payload string) (ShareImport, error)
}

// ShareServiceImpl implements ShareService on a workspace.
type ShareServiceImpl struct {
	ws          *store.Workspace
	defaultBase string
}

// NewShareService creates a share service. defaultBase is used when a
// link request names no base address.
func NewShareService(ws *store.Workspace, defaultBase string) *ShareServiceImpl {
	return &ShareServiceImpl{ws: ws, defaultBase: defaultBase}
}

// Link encodes every product and plan into a URL.
func (s *ShareServiceImpl) Link(_ context.Context, baseURL string) (ShareLink, error) {
	if baseURL == "" {
		baseURL = s.defaultBase
	}
	products, planner := s.ws.Snapshot()

	payload, err := share.Encode(products, planner.Plans)
	if err != nil {
		metrics.RecordShareOperation("encode", "error")
		return ShareLink{}, err
	}
	url, err := share.BuildURL(baseURL, payload)
	if err != nil {
		metrics.RecordShareOperation("encode", "error")
		return ShareLink{}, err
	}

	metrics.RecordShareOperation("encode", "success")
	metrics.RecordShareLinkSize(len(payload))
	return ShareLink{URL: url, Payload: payload, Bytes: len(payload)}, nil
}

func (s *ShareServiceImpl) decode(op, payload string) (*share.Snapshot, error) {
	snap, err := share.Decode(payload)
	if err != nil {
		result := "invalid"
		if errors.Is(err, share.ErrEmptyLink) {
			result = "empty"
		}
		metrics.RecordShareOperation(op, result)
		log.Warn().Err(err).Str("operation", op).Msg("Share link rejected")
		return nil, err
	}
	if !snap.KnownVersion() {
		log.Warn().
			Str("version", snap.Version).
			Str("expected", share.Version).
			Msg("Share link version differs, decoding best effort")
	}
	return snap, nil
}

// Preview decodes a payload without touching the workspace.
func (s *ShareServiceImpl) Preview(_ context.Context, payload string) (SharePreview, error) {
	snap, err := s.decode("preview", payload)
	if err != nil {
		return SharePreview{}, err
	}
	metrics.RecordShareOperation("preview", "success")

	preview := SharePreview{
		Version:          snap.Version,
		KnownVersion:     snap.KnownVersion(),
		Products:         snap.Products,
		Plans:            make([]PlanOutline, 0, len(snap.Plans)),
		ReplacesProducts: snap.Products != nil,
		ReplacesPlans:    len(snap.Plans) > 0,
	}
	if preview.Products == nil {
		preview.Products = []model.Product{}
	}
	for _, p := range snap.Plans {
		o := PlanOutline{ID: p.ID, Name: p.Name, Meals: len(p.Data.Meals)}
		for _, m := range p.Data.Meals {
			o.Items += len(m.Items)
		}
		preview.Plans = append(preview.Plans, o)
	}
	return preview, nil
}

// Import applies a payload: the product list when present, the plans when
// non-empty with the first plan active. The first-run flag is set.
// A payload that fails to decode changes nothing.
func (s *ShareServiceImpl) Import(ctx context.Context, payload string) (ShareImport, error) {
	snap, err := s.decode("import", payload)
	if err != nil {
		return ShareImport{}, err
	}

	if err := s.ws.Replace(ctx, snap.Products, snap.PlannerState()); err != nil {
		metrics.RecordShareOperation("import", "error")
		return ShareImport{}, err
	}
	s.ws.MarkVisited(ctx)
	metrics.RecordShareOperation("import", "success")

	products, state := s.ws.Snapshot()
	log.Info().
		Int("products", len(products)).
		Int("plans", len(state.Plans)).
		Str("version", snap.Version).
		Msg("Workspace imported from share link")
	return ShareImport{Products: products, State: state}, nil
}
