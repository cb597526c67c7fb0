package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/phishwise/phishwise-api/internal/models"
	appErrors "github.com/phishwise/phishwise-api/pkg/errors"
)

type mockSimulationRepo struct {
	rows        []models.SimulationRow
	total       int
	byID        *models.SimulationEmail
	lastLimit   int
	lastOffset  int
	clickCalls  int
	transition  bool
	completions int
}

func (m *mockSimulationRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.SimulationRow, int, error) {
	m.lastLimit = limit
	m.lastOffset = offset
	return m.rows, m.total, nil
}

func (m *mockSimulationRepo) FindByID(ctx context.Context, id string) (*models.SimulationEmail, error) {
	if m.byID == nil || m.byID.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.byID, nil
}

func (m *mockSimulationRepo) RecordClick(ctx context.Context, sim *models.SimulationEmail) (bool, error) {
	m.clickCalls++
	if m.transition {
		m.transition = false
		sim.Clicked = true
		return true, nil
	}
	return false, nil
}

func (m *mockSimulationRepo) MarkCompleted(ctx context.Context, sim *models.SimulationEmail) (bool, error) {
	m.completions++
	return true, nil
}

func TestSimulationListClampsLimit(t *testing.T) {
	repo := &mockSimulationRepo{}
	svc := NewSimulationService(repo, zap.NewNop())
	principal := &models.Principal{ID: "u1"}

	_, _, err := svc.List(context.Background(), principal, 0, -5)
	require.NoError(t, err)
	assert.Equal(t, 10, repo.lastLimit)
	assert.Equal(t, 0, repo.lastOffset)

	_, _, err = svc.List(context.Background(), principal, 500, 20)
	require.NoError(t, err)
	assert.Equal(t, 50, repo.lastLimit)
	assert.Equal(t, 20, repo.lastOffset)
}

func TestSimulationListEmbedsTemplateAndCampaign(t *testing.T) {
	campaignName := "Spring Drill"
	repo := &mockSimulationRepo{
		rows: []models.SimulationRow{
			{
				SimulationEmail:    models.SimulationEmail{ID: "sim-1", TemplateID: "tpl-1"},
				TemplateName:       "Password Reset",
				TemplateSubject:    "Action required",
				TemplateDifficulty: models.DifficultyMedium,
				CampaignName:       &campaignName,
			},
			{
				SimulationEmail: models.SimulationEmail{ID: "sim-2", TemplateID: "tpl-2"},
				TemplateName:    "Prize Draw",
			},
		},
		total: 7,
	}
	svc := NewSimulationService(repo, zap.NewNop())

	details, total, err := svc.List(context.Background(), &models.Principal{ID: "u1"}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	require.Len(t, details, 2)
	assert.Equal(t, "Password Reset", details[0].Template.Name)
	require.NotNil(t, details[0].Campaign)
	assert.Equal(t, "Spring Drill", details[0].Campaign.Name)
	assert.Nil(t, details[1].Campaign)
}

func TestSimulationListUnauthenticated(t *testing.T) {
	svc := NewSimulationService(&mockSimulationRepo{}, zap.NewNop())

	_, _, err := svc.List(context.Background(), nil, 10, 0)
	assert.Equal(t, 401, appErrors.FromError(err).Status)
}

func TestRecordClickFirstTime(t *testing.T) {
	repo := &mockSimulationRepo{
		byID:       &models.SimulationEmail{ID: "sim-1", UserID: "u1", TemplateID: "tpl-9"},
		transition: true,
	}
	svc := NewSimulationService(repo, zap.NewNop())

	result, err := svc.RecordClick(context.Background(), "sim-1")
	require.NoError(t, err)
	assert.True(t, result.Clicked)
	assert.Equal(t, "tpl-9", result.ModuleID)
	assert.Equal(t, 1, repo.clickCalls)
}

func TestRecordClickIsIdempotent(t *testing.T) {
	repo := &mockSimulationRepo{
		byID:       &models.SimulationEmail{ID: "sim-1", UserID: "u1", TemplateID: "tpl-9"},
		transition: true,
	}
	svc := NewSimulationService(repo, zap.NewNop())

	first, err := svc.RecordClick(context.Background(), "sim-1")
	require.NoError(t, err)

	second, err := svc.RecordClick(context.Background(), "sim-1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRecordClickUnknownSimulation(t *testing.T) {
	svc := NewSimulationService(&mockSimulationRepo{}, zap.NewNop())

	_, err := svc.RecordClick(context.Background(), "missing")
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}

func TestRecordClickBlankID(t *testing.T) {
	svc := NewSimulationService(&mockSimulationRepo{}, zap.NewNop())

	_, err := svc.RecordClick(context.Background(), "   ")
	assert.Equal(t, 400, appErrors.FromError(err).Status)
}

func TestCompleteRequiresClick(t *testing.T) {
	repo := &mockSimulationRepo{
		byID: &models.SimulationEmail{ID: "sim-1", UserID: "u1", Clicked: false},
	}
	svc := NewSimulationService(repo, zap.NewNop())

	err := svc.Complete(context.Background(), &models.Principal{ID: "u1"}, "sim-1")
	assert.Equal(t, 409, appErrors.FromError(err).Status)
	assert.Equal(t, 0, repo.completions)
}

func TestCompleteHidesForeignSimulations(t *testing.T) {
	repo := &mockSimulationRepo{
		byID: &models.SimulationEmail{ID: "sim-1", UserID: "someone-else", Clicked: true},
	}
	svc := NewSimulationService(repo, zap.NewNop())

	err := svc.Complete(context.Background(), &models.Principal{ID: "u1"}, "sim-1")
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}

func TestCompleteClickedSimulation(t *testing.T) {
	repo := &mockSimulationRepo{
		byID: &models.SimulationEmail{ID: "sim-1", UserID: "u1", Clicked: true},
	}
	svc := NewSimulationService(repo, zap.NewNop())

	err := svc.Complete(context.Background(), &models.Principal{ID: "u1"}, "sim-1")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.completions)
}
