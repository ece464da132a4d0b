package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/guttosm/macro-service/internal/domain/model"
	"github.com/guttosm/macro-service/internal/store"
	"github.com/rs/zerolog/log"
)

// SessionMode is a first-run choice.
type SessionMode string

const (
	SessionFresh  SessionMode = "fresh"
	SessionPreset SessionMode = "preset"
	SessionImport SessionMode = "import"
)

// ErrInvalidSessionMode is returned for unknown first-run choices.
var ErrInvalidSessionMode = errors.New("invalid session mode")

// SessionStatus tells a client whether to show the first-run choice.
type SessionStatus struct {
	Visited bool `json:"visited"`
}

// SessionResult is the workspace after a first-run choice.
type SessionResult struct {
	Mode     SessionMode        `json:"mode"`
	Products []model.Product    `json:"products"`
	State    model.PlannerState `json:"state"`
}

// SessionService handles the first-run flow.
type SessionService interface {
	Status(ctx context.Context) SessionStatus
	Start(ctx context.Context, mode SessionMode, payload string) (SessionResult, error)
}

// SessionServiceImpl implements SessionService.
type SessionServiceImpl struct {
	ws    *store.Workspace
	share ShareService
}

// NewSessionService creates a session service. Import mode delegates to share.
func NewSessionService(ws *store.Workspace, share ShareService) *SessionServiceImpl {
	return &SessionServiceImpl{ws: ws, share: share}
}

func (s *SessionServiceImpl) Status(_ context.Context) SessionStatus {
	return SessionStatus{Visited: s.ws.Visited()}
}

// Start applies a first-run choice. Fresh keeps the current workspace,
// preset swaps in the starter plans, import applies a share payload.
func (s *SessionServiceImpl) Start(ctx context.Context, mode SessionMode, payload string) (SessionResult, error) {
	switch mode {
	case SessionFresh:
		s.ws.MarkVisited(ctx)
	case SessionPreset:
		plans := StarterPlans()
		if err := s.ws.Replace(ctx, nil, &plans); err != nil {
			return SessionResult{}, err
		}
		s.ws.MarkVisited(ctx)
	case SessionImport:
		if _, err := s.share.Import(ctx, payload); err != nil {
			return SessionResult{}, err
		}
	default:
		return SessionResult{}, fmt.Errorf("%w: %q", ErrInvalidSessionMode, mode)
	}

	log.Info().Str("mode", string(mode)).Msg("Session started")
	products, state := s.ws.Snapshot()
	return SessionResult{Mode: mode, Products: products, State: state}, nil
}
