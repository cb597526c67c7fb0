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

type fakeSchoolRepo struct {
	byID         *models.School
	byInviteCode *models.School
}

func (f *fakeSchoolRepo) CreateWithManager(ctx context.Context, school *models.School) error {
	school.ID = "school-1"
	return nil
}

func (f *fakeSchoolRepo) FindByID(ctx context.Context, id string) (*models.School, error) {
	if f.byID == nil {
		return nil, sql.ErrNoRows
	}
	return f.byID, nil
}

func (f *fakeSchoolRepo) FindByInviteCode(ctx context.Context, code string) (*models.School, error) {
	if f.byInviteCode == nil || f.byInviteCode.InviteCode != code {
		return nil, sql.ErrNoRows
	}
	return f.byInviteCode, nil
}

type fakeSchoolUserRepo struct {
	assignResult bool
}

func (f *fakeSchoolUserRepo) AssignSchool(ctx context.Context, userID, schoolID string) (bool, error) {
	return f.assignResult, nil
}

func (f *fakeSchoolUserRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	return nil
}

func schoolTestContext(t *testing.T, principal *models.Principal) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	if principal != nil {
		c.Set(middleware.ContextPrincipalKey, principal)
	}
	return c, rec
}

func TestSchoolHandlerGetReturnsNullWithoutSchool(t *testing.T) {
	handler := NewSchoolHandler(service.NewSchoolService(&fakeSchoolRepo{}, &fakeSchoolUserRepo{}, zap.NewNop()))

	c, rec := schoolTestContext(t, &models.Principal{ID: "u1"})
	c.Request = httptest.NewRequest(http.MethodGet, "/schools", nil)

	handler.Get(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "null", string(body["school"]))
}

func TestSchoolHandlerCreate(t *testing.T) {
	handler := NewSchoolHandler(service.NewSchoolService(&fakeSchoolRepo{}, &fakeSchoolUserRepo{}, zap.NewNop()))

	c, rec := schoolTestContext(t, &models.Principal{ID: "u1", Role: models.RoleUser})
	c.Request = httptest.NewRequest(http.MethodPost, "/schools", bytes.NewBufferString(`{"name":"Northside High"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Create(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var body struct {
		School models.School `json:"school"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Northside High", body.School.Name)
	assert.Len(t, body.School.InviteCode, 8)
}

func TestSchoolHandlerJoinInvalidCode(t *testing.T) {
	handler := NewSchoolHandler(service.NewSchoolService(&fakeSchoolRepo{}, &fakeSchoolUserRepo{}, zap.NewNop()))

	c, rec := schoolTestContext(t, &models.Principal{ID: "u1"})
	c.Request = httptest.NewRequest(http.MethodPost, "/schools/join", bytes.NewBufferString(`{"inviteCode":"DEADBEEF"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Join(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])
}

func TestSchoolHandlerJoinSuccess(t *testing.T) {
	schools := &fakeSchoolRepo{byInviteCode: &models.School{ID: "school-1", Name: "Northside", InviteCode: "A1B2C3D4"}}
	handler := NewSchoolHandler(service.NewSchoolService(schools, &fakeSchoolUserRepo{assignResult: true}, zap.NewNop()))

	c, rec := schoolTestContext(t, &models.Principal{ID: "u2"})
	c.Request = httptest.NewRequest(http.MethodPost, "/schools/join", bytes.NewBufferString(`{"inviteCode":"a1b2c3d4"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Join(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		School models.School `json:"school"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "school-1", body.School.ID)
}
