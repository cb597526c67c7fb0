package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/phishwise/phishwise-api/internal/models"
	appErrors "github.com/phishwise/phishwise-api/pkg/errors"
)

type simulationRepository interface {
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.SimulationRow, int, error)
	FindByID(ctx context.Context, id string) (*models.SimulationEmail, error)
	RecordClick(ctx context.Context, sim *models.SimulationEmail) (bool, error)
	MarkCompleted(ctx context.Context, sim *models.SimulationEmail) (bool, error)
}

const (
	defaultListLimit = 10
	maxListLimit     = 50
)

// ClickResult is returned after recording a click so the caller can route
// to the matching training module.
type ClickResult struct {
	Clicked  bool   `json:"clicked"`
	ModuleID string `json:"moduleId"`
}

// SimulationService handles the simulation ledger workflows.
type SimulationService struct {
	repo   simulationRepository
	logger *zap.Logger
}

// NewSimulationService creates an instance of SimulationService.
func NewSimulationService(repo simulationRepository, logger *zap.Logger) *SimulationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SimulationService{repo: repo, logger: logger}
}

// List returns the caller's simulations newest first plus the total count.
// The limit falls back to 10 and is clamped to 50; negative offsets are
// treated as zero.
func (s *SimulationService) List(ctx context.Context, principal *models.Principal, limit, offset int) ([]models.SimulationDetail, int, error) {
	if principal == nil {
		return nil, 0, appErrors.ErrUnauthorized
	}

	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	rows, total, err := s.repo.ListByUser(ctx, principal.ID, limit, offset)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list simulations")
	}

	details := make([]models.SimulationDetail, 0, len(rows))
	for _, row := range rows {
		details = append(details, row.Detail())
	}

	return details, total, nil
}

// RecordClick marks a simulation clicked and bumps the owner's metrics.
// The operation is idempotent: clicking an already-clicked simulation
// returns the same payload without double-counting.
func (s *SimulationService) RecordClick(ctx context.Context, simulationID string) (*ClickResult, error) {
	simulationID = strings.TrimSpace(simulationID)
	if simulationID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "simulationId is required")
	}

	sim, err := s.repo.FindByID(ctx, simulationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "simulation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load simulation")
	}

	transitioned, err := s.repo.RecordClick(ctx, sim)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record click")
	}
	if !transitioned {
		s.logger.Debug("repeat click ignored", zap.String("simulation_id", sim.ID))
	}

	return &ClickResult{Clicked: true, ModuleID: sim.TemplateID}, nil
}

// Complete records that the caller finished the training module attached to
// one of their clicked simulations. Completing twice is a no-op.
func (s *SimulationService) Complete(ctx context.Context, principal *models.Principal, simulationID string) error {
	if principal == nil {
		return appErrors.ErrUnauthorized
	}
	simulationID = strings.TrimSpace(simulationID)
	if simulationID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "simulationId is required")
	}

	sim, err := s.repo.FindByID(ctx, simulationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "simulation not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load simulation")
	}
	if sim.UserID != principal.ID {
		return appErrors.Clone(appErrors.ErrNotFound, "simulation not found")
	}
	if !sim.Clicked {
		return appErrors.Clone(appErrors.ErrConflict, "training requires a clicked simulation")
	}

	if _, err := s.repo.MarkCompleted(ctx, sim); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record completion")
	}

	return nil
}
