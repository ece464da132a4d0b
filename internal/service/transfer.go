package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/guttosm/macro-service/internal/domain/model"
	"github.com/guttosm/macro-service/internal/metrics"
	"github.com/guttosm/macro-service/internal/store"
	"github.com/rs/zerolog/log"
)

// TransferKind selects which document a file export or import handles.
type TransferKind string

const (
	TransferProducts TransferKind = "products"
	TransferPlanner  TransferKind = "planner"
	TransferBackup   TransferKind = "backup"
)

var (
	// ErrInvalidImport wraps the rejection reason of an import document.
	ErrInvalidImport = errors.New("invalid import file")
	// ErrUnknownTransferKind is returned for kinds other than products, planner and backup.
	ErrUnknownTransferKind = errors.New("unknown transfer kind")
)

// ParseTransferKind validates a raw kind.
func ParseTransferKind(s string) (TransferKind, error) {
	switch k := TransferKind(s); k {
	case TransferProducts, TransferPlanner, TransferBackup:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTransferKind, s)
}

// Filename is the download name of an exported document.
func (k TransferKind) Filename() string {
	switch k {
	case TransferProducts:
		return "products.json"
	case TransferPlanner:
		return "plans.json"
	default:
		return "full-backup.json"
	}
}

// ImportSummary reports what an import replaced.
type ImportSummary struct {
	Kind     TransferKind `json:"kind"`
	Products int          `json:"products"`
	Plans    int          `json:"plans"`
}

// TransferService moves workspace documents in and out as files.
type TransferService interface {
	Export(ctx context.Context, kind TransferKind) (any, error)
	Import(ctx context.Context, kind TransferKind, data []byte) (ImportSummary, error)
}

// TransferServiceImpl implements TransferService on a workspace.
type TransferServiceImpl struct {
	ws *store.Workspace
}

// NewTransferService creates a transfer service.
func NewTransferService(ws *store.Workspace) *TransferServiceImpl {
	return &TransferServiceImpl{ws: ws}
}

// Export returns the document for kind, ready to be marshaled.
func (s *TransferServiceImpl) Export(_ context.Context, kind TransferKind) (any, error) {
	products, planner := s.ws.Snapshot()
	switch kind {
	case TransferProducts:
		return products, nil
	case TransferPlanner:
		return planner, nil
	case TransferBackup:
		return model.Backup{Products: products, PlannerState: planner}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTransferKind, kind)
}

// Import validates data and replaces the matching collections. A rejected
// document leaves the workspace untouched.
func (s *TransferServiceImpl) Import(ctx context.Context, kind TransferKind, data []byte) (ImportSummary, error) {
	summary := ImportSummary{Kind: kind}
	var err error

	switch kind {
	case TransferProducts:
		res := ValidateProducts(data)
		if !res.Valid {
			err = rejectImport(kind, res.Reason)
			break
		}
		err = s.ws.Replace(ctx, res.Value, nil)
		summary.Products = len(res.Value)
	case TransferPlanner:
		res := ValidatePlanner(data)
		if !res.Valid {
			err = rejectImport(kind, res.Reason)
			break
		}
		err = s.ws.Replace(ctx, nil, &res.Value)
		summary.Plans = len(res.Value.Plans)
	case TransferBackup:
		res := ValidateBackup(data)
		if !res.Valid {
			err = rejectImport(kind, res.Reason)
			break
		}
		err = s.ws.Replace(ctx, res.Value.Products, &res.Value.PlannerState)
		summary.Products = len(res.Value.Products)
		summary.Plans = len(res.Value.PlannerState.Plans)
	default:
		return ImportSummary{}, fmt.Errorf("%w: %q", ErrUnknownTransferKind, kind)
	}

	if err != nil {
		metrics.RecordImport(string(kind), "rejected")
		return ImportSummary{}, err
	}
	metrics.RecordImport(string(kind), "success")
	log.Info().
		Str("kind", string(kind)).
		Int("products", summary.Products).
		Int("plans", summary.Plans).
		Msg("File imported")
	return summary, nil
}

func rejectImport(kind TransferKind, reason string) error {
	log.Warn().Str("kind", string(kind)).Str("reason", reason).Msg("Import rejected")
	return fmt.Errorf("%w: %s", ErrInvalidImport, reason)
}
