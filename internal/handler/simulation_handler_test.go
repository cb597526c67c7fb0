package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/phishwise/phishwise-api/internal/middleware"
	"github.com/phishwise/phishwise-api/internal/models"
	"github.com/phishwise/phishwise-api/internal/service"
)

type fakeSimulationRepo struct {
	rows       []models.SimulationRow
	total      int
	byID       *models.SimulationEmail
	lastLimit  int
	lastOffset int
}

func (f *fakeSimulationRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.SimulationRow, int, error) {
	f.lastLimit = limit
	f.lastOffset = offset
	return f.rows, f.total, nil
}

func (f *fakeSimulationRepo) FindByID(ctx context.Context, id string) (*models.SimulationEmail, error) {
	if f.byID == nil || f.byID.ID != id {
		return nil, sql.ErrNoRows
	}
	return f.byID, nil
}

func (f *fakeSimulationRepo) RecordClick(ctx context.Context, sim *models.SimulationEmail) (bool, error) {
	sim.Clicked = true
	return true, nil
}

func (f *fakeSimulationRepo) MarkCompleted(ctx context.Context, sim *models.SimulationEmail) (bool, error) {
	return true, nil
}

func simulationTestContext(t *testing.T, principal *models.Principal) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	if principal != nil {
		c.Set(middleware.ContextPrincipalKey, principal)
	}
	return c, rec
}

func TestSimulationHandlerListShape(t *testing.T) {
	repo := &fakeSimulationRepo{
		rows: []models.SimulationRow{
			{
				SimulationEmail: models.SimulationEmail{ID: "sim-1", TemplateID: "tpl-1"},
				TemplateName:    "Password Reset",
			},
		},
		total: 12,
	}
	handler := NewSimulationHandler(service.NewSimulationService(repo, zap.NewNop()))

	c, rec := simulationTestContext(t, &models.Principal{ID: "u1"})
	c.Request = httptest.NewRequest(http.MethodGet, "/simulations?limit=200&offset=3", nil)

	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 50, repo.lastLimit)
	assert.Equal(t, 3, repo.lastOffset)

	var body struct {
		Simulations []json.RawMessage `json:"simulations"`
		Total       int               `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 12, body.Total)
	assert.Len(t, body.Simulations, 1)
}

func TestSimulationHandlerListUnauthenticated(t *testing.T) {
	handler := NewSimulationHandler(service.NewSimulationService(&fakeSimulationRepo{}, zap.NewNop()))

	c, rec := simulationTestContext(t, nil)
	c.Request = httptest.NewRequest(http.MethodGet, "/simulations", nil)

	handler.List(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])
}

func TestSimulationHandlerRecordClick(t *testing.T) {
	repo := &fakeSimulationRepo{byID: &models.SimulationEmail{ID: "sim-1", UserID: "u1", TemplateID: "tpl-9"}}
	handler := NewSimulationHandler(service.NewSimulationService(repo, zap.NewNop()))

	c, rec := simulationTestContext(t, nil)
	payload := bytes.NewBufferString(`{"simulationId":"sim-1"}`)
	c.Request = httptest.NewRequest(http.MethodPost, "/simulations", payload)
	c.Request.Header.Set("Content-Type", "application/json")

	handler.RecordClick(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Clicked  bool   `json:"clicked"`
		ModuleID string `json:"moduleId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Clicked)
	assert.Equal(t, "tpl-9", body.ModuleID)
}

func TestSimulationHandlerRecordClickUnknown(t *testing.T) {
	handler := NewSimulationHandler(service.NewSimulationService(&fakeSimulationRepo{}, zap.NewNop()))

	c, rec := simulationTestContext(t, nil)
	c.Request = httptest.NewRequest(http.MethodPost, "/simulations", bytes.NewBufferString(`{"simulationId":"ghost"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.RecordClick(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSimulationHandlerComplete(t *testing.T) {
	repo := &fakeSimulationRepo{byID: &models.SimulationEmail{ID: "sim-1", UserID: "u1", Clicked: true}}
	handler := NewSimulationHandler(service.NewSimulationService(repo, zap.NewNop()))

	c, rec := simulationTestContext(t, &models.Principal{ID: "u1"})
	c.Request = httptest.NewRequest(http.MethodPost, "/simulations/sim-1/complete", nil)
	c.Params = gin.Params{{Key: "id", Value: "sim-1"}}

	handler.Complete(c)

	assert.Equal(t, http.StatusOK, rec.Code)
}
