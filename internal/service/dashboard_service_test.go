package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/phishwise/phishwise-api/internal/models"
	appErrors "github.com/phishwise/phishwise-api/pkg/errors"
)

type memoryCacheRepo struct {
	entries map[string][]byte
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: make(map[string][]byte)}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	for key := range m.entries {
		delete(m.entries, key)
	}
	return nil
}

type mockDashboardUserRepo struct {
	members []models.MemberMetrics
	calls   int
}

func (m *mockDashboardUserRepo) ListMembersWithMetrics(ctx context.Context, schoolID string) ([]models.MemberMetrics, error) {
	m.calls++
	return m.members, nil
}

type mockDashboardSchoolRepo struct {
	school *models.School
}

func (m *mockDashboardSchoolRepo) FindByID(ctx context.Context, id string) (*models.School, error) {
	if m.school == nil {
		return nil, sql.ErrNoRows
	}
	return m.school, nil
}

func dashboardFixture() (*DashboardService, *mockDashboardUserRepo) {
	users := &mockDashboardUserRepo{members: []models.MemberMetrics{
		{ID: "u1", Name: "Alice", TotalSent: 10, TotalClicked: 2, TotalCompleted: 1},
		{ID: "u2", Name: "Bob", TotalSent: 10, TotalClicked: 4, TotalCompleted: 0},
	}}
	schools := &mockDashboardSchoolRepo{school: &models.School{ID: "school-1", Name: "Northside"}}
	cacheSvc := NewCacheService(newMemoryCacheRepo(), nil, time.Minute, zap.NewNop(), true)
	return NewDashboardService(users, schools, cacheSvc, time.Minute, zap.NewNop()), users
}

func managerPrincipal() *models.Principal {
	schoolID := "school-1"
	return &models.Principal{ID: "m1", Role: models.RoleManager, SchoolID: &schoolID}
}

func TestDashboardOverviewComposesStats(t *testing.T) {
	svc, _ := dashboardFixture()

	overview, fromCache, err := svc.Overview(context.Background(), managerPrincipal())
	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, "Northside", overview.School.Name)
	assert.Equal(t, 2, overview.Stats.TotalUsers)
	assert.Equal(t, 20, overview.Stats.TotalSimulations)
	assert.Equal(t, 30, overview.Stats.AvgClickRate)
	assert.Equal(t, 1, overview.Stats.TotalTrainingCompleted)
	require.Len(t, overview.Members, 2)
	assert.Equal(t, models.RiskMedium, overview.Members[0].RiskTier)
	assert.Equal(t, models.RiskHigh, overview.Members[1].RiskTier)
}

func TestDashboardOverviewServesFromCache(t *testing.T) {
	svc, users := dashboardFixture()

	_, fromCache, err := svc.Overview(context.Background(), managerPrincipal())
	require.NoError(t, err)
	assert.False(t, fromCache)

	overview, fromCache, err := svc.Overview(context.Background(), managerPrincipal())
	require.NoError(t, err)
	assert.True(t, fromCache)
	assert.Equal(t, 2, overview.Stats.TotalUsers)
	assert.Equal(t, 1, users.calls)
}

func TestDashboardInvalidateSchoolForcesRecompute(t *testing.T) {
	svc, users := dashboardFixture()

	_, _, err := svc.Overview(context.Background(), managerPrincipal())
	require.NoError(t, err)

	svc.InvalidateSchool(context.Background(), "school-1")

	_, fromCache, err := svc.Overview(context.Background(), managerPrincipal())
	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, 2, users.calls)
}

func TestDashboardOverviewRejectsPlainUser(t *testing.T) {
	svc, _ := dashboardFixture()
	schoolID := "school-1"

	_, _, err := svc.Overview(context.Background(), &models.Principal{ID: "u1", Role: models.RoleUser, SchoolID: &schoolID})
	assert.Equal(t, 403, appErrors.FromError(err).Status)
}

func TestDashboardOverviewRequiresSchool(t *testing.T) {
	svc, _ := dashboardFixture()

	_, _, err := svc.Overview(context.Background(), &models.Principal{ID: "m1", Role: models.RoleManager})
	assert.Equal(t, 409, appErrors.FromError(err).Status)
}
