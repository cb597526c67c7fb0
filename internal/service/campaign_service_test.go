package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/phishwise/phishwise-api/internal/models"
	appErrors "github.com/phishwise/phishwise-api/pkg/errors"
	"github.com/phishwise/phishwise-api/pkg/jobs"
	"github.com/phishwise/phishwise-api/pkg/mailer"
)

type mockCampaignRepo struct {
	templates map[string]*models.EmailTemplate
	created   *models.Campaign
}

func (m *mockCampaignRepo) Create(ctx context.Context, campaign *models.Campaign) error {
	campaign.ID = "camp-1"
	m.created = campaign
	return nil
}

func (m *mockCampaignRepo) ListTemplates(ctx context.Context) ([]models.EmailTemplate, error) {
	out := make([]models.EmailTemplate, 0, len(m.templates))
	for _, tpl := range m.templates {
		out = append(out, *tpl)
	}
	return out, nil
}

func (m *mockCampaignRepo) FindTemplateByID(ctx context.Context, id string) (*models.EmailTemplate, error) {
	tpl, ok := m.templates[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return tpl, nil
}

type mockBatchRepo struct {
	batches [][]models.SimulationEmail
}

func (m *mockBatchRepo) CreateBatch(ctx context.Context, sims []models.SimulationEmail) error {
	m.batches = append(m.batches, sims)
	return nil
}

type mockCampaignUserRepo struct {
	members   []models.MemberMetrics
	auditLogs []*models.AuditLog
}

func (m *mockCampaignUserRepo) ListMembersWithMetrics(ctx context.Context, schoolID string) ([]models.MemberMetrics, error) {
	return m.members, nil
}

func (m *mockCampaignUserRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

type mockInvalidator struct {
	schoolIDs []string
}

func (m *mockInvalidator) InvalidateSchool(ctx context.Context, schoolID string) {
	m.schoolIDs = append(m.schoolIDs, schoolID)
}

type recordingMailer struct {
	mu       sync.Mutex
	messages []mailer.Message
}

func (m *recordingMailer) Send(ctx context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

func campaignFixture(t *testing.T) (*CampaignService, *mockCampaignRepo, *mockBatchRepo, *mockCampaignUserRepo, *mockInvalidator, *recordingMailer) {
	t.Helper()
	campaigns := &mockCampaignRepo{templates: map[string]*models.EmailTemplate{
		"tpl-1": {ID: "tpl-1", Name: "Password Reset", Subject: "Action required", Body: "<p>Reset now</p>", Difficulty: models.DifficultyMedium},
	}}
	sims := &mockBatchRepo{}
	users := &mockCampaignUserRepo{members: []models.MemberMetrics{
		{ID: "u1", Email: "alice@example.com"},
		{ID: "u2", Email: "bob@example.com"},
	}}
	invalidator := &mockInvalidator{}
	mail := &recordingMailer{}

	svc := NewCampaignService(CampaignServiceParams{
		Campaigns:   campaigns,
		Simulations: sims,
		Users:       users,
		Dashboard:   invalidator,
		Mailer:      mail,
		QueueConfig: jobs.QueueConfig{Workers: 1, BufferSize: 8},
		Logger:      zap.NewNop(),
	})
	svc.Start(context.Background())
	t.Cleanup(svc.Stop)
	return svc, campaigns, sims, users, invalidator, mail
}

func TestDispatchCreatesLedgerRowsAndSendsEmails(t *testing.T) {
	svc, campaigns, sims, users, invalidator, mail := campaignFixture(t)

	result, err := svc.Dispatch(context.Background(), managerPrincipal(), DispatchRequest{TemplateID: "tpl-1", Name: "Spring Drill"}, models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Recipients)
	assert.Equal(t, "Spring Drill", result.Campaign.Name)

	require.NotNil(t, campaigns.created)
	assert.Equal(t, "school-1", campaigns.created.SchoolID)

	require.Len(t, sims.batches, 1)
	require.Len(t, sims.batches[0], 2)
	for _, sim := range sims.batches[0] {
		assert.Equal(t, "tpl-1", sim.TemplateID)
		require.NotNil(t, sim.CampaignID)
		assert.Equal(t, "camp-1", *sim.CampaignID)
	}

	assert.Equal(t, []string{"school-1"}, invalidator.schoolIDs)
	require.Len(t, users.auditLogs, 1)
	assert.Equal(t, models.AuditActionCampaignDispatch, users.auditLogs[0].Action)

	assert.Eventually(t, func() bool { return mail.count() == 2 }, time.Second, 10*time.Millisecond)
}

func TestDispatchUnknownTemplate(t *testing.T) {
	svc, _, _, _, _, _ := campaignFixture(t)

	_, err := svc.Dispatch(context.Background(), managerPrincipal(), DispatchRequest{TemplateID: "missing", Name: "Drill"}, models.RequestMeta{})
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}

func TestDispatchRequiresManager(t *testing.T) {
	svc, _, _, _, _, _ := campaignFixture(t)
	schoolID := "school-1"

	_, err := svc.Dispatch(context.Background(), &models.Principal{ID: "u1", Role: models.RoleUser, SchoolID: &schoolID}, DispatchRequest{TemplateID: "tpl-1", Name: "Drill"}, models.RequestMeta{})
	assert.Equal(t, 403, appErrors.FromError(err).Status)
}

func TestDispatchRequiresSchool(t *testing.T) {
	svc, _, _, _, _, _ := campaignFixture(t)

	_, err := svc.Dispatch(context.Background(), &models.Principal{ID: "m1", Role: models.RoleManager}, DispatchRequest{TemplateID: "tpl-1", Name: "Drill"}, models.RequestMeta{})
	assert.Equal(t, 409, appErrors.FromError(err).Status)
}

func TestDispatchValidatesPayload(t *testing.T) {
	svc, _, _, _, _, _ := campaignFixture(t)

	_, err := svc.Dispatch(context.Background(), managerPrincipal(), DispatchRequest{}, models.RequestMeta{})
	assert.Equal(t, 400, appErrors.FromError(err).Status)
}

func TestListTemplatesRequiresAuth(t *testing.T) {
	svc, _, _, _, _, _ := campaignFixture(t)

	_, err := svc.ListTemplates(context.Background(), nil)
	assert.Equal(t, 401, appErrors.FromError(err).Status)

	templates, err := svc.ListTemplates(context.Background(), managerPrincipal())
	require.NoError(t, err)
	assert.Len(t, templates, 1)
}
