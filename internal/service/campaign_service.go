package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/phishwise/phishwise-api/internal/models"
	appErrors "github.com/phishwise/phishwise-api/pkg/errors"
	"github.com/phishwise/phishwise-api/pkg/jobs"
	"github.com/phishwise/phishwise-api/pkg/mailer"
)

type campaignRepository interface {
	Create(ctx context.Context, campaign *models.Campaign) error
	ListTemplates(ctx context.Context) ([]models.EmailTemplate, error)
	FindTemplateByID(ctx context.Context, id string) (*models.EmailTemplate, error)
}

type campaignSimulationRepository interface {
	CreateBatch(ctx context.Context, sims []models.SimulationEmail) error
}

type campaignUserRepository interface {
	ListMembersWithMetrics(ctx context.Context, schoolID string) ([]models.MemberMetrics, error)
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type overviewInvalidator interface {
	InvalidateSchool(ctx context.Context, schoolID string)
}

// DispatchRequest starts a campaign against the caller's school.
type DispatchRequest struct {
	TemplateID string `json:"templateId" validate:"required"`
	Name       string `json:"name" validate:"required"`
}

// DispatchResult summarises a started campaign.
type DispatchResult struct {
	Campaign   models.Campaign `json:"campaign"`
	Recipients int             `json:"recipients"`
}

// emailJob is the queue payload for one outbound simulation email.
type emailJob struct {
	SimulationID string
	To           string
	Subject      string
	HTML         string
}

// CampaignService dispatches simulation campaigns: one ledger row and one
// queued email per school member.
type CampaignService struct {
	campaigns   campaignRepository
	simulations campaignSimulationRepository
	users       campaignUserRepository
	dashboard   overviewInvalidator
	mail        mailer.Mailer
	queue       *jobs.Queue
	validator   *validator.Validate
	logger      *zap.Logger
}

// CampaignServiceParams groups constructor dependencies.
type CampaignServiceParams struct {
	Campaigns   campaignRepository
	Simulations campaignSimulationRepository
	Users       campaignUserRepository
	Dashboard   overviewInvalidator
	Mailer      mailer.Mailer
	QueueConfig jobs.QueueConfig
	Validator   *validator.Validate
	Logger      *zap.Logger
}

// NewCampaignService constructs a CampaignService and its send queue. Call
// Start before dispatching and Stop on shutdown.
func NewCampaignService(params CampaignServiceParams) *CampaignService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}

	s := &CampaignService{
		campaigns:   params.Campaigns,
		simulations: params.Simulations,
		users:       params.Users,
		dashboard:   params.Dashboard,
		mail:        params.Mailer,
		validator:   validate,
		logger:      logger,
	}
	queueCfg := params.QueueConfig
	queueCfg.Logger = logger
	s.queue = jobs.NewQueue("campaign-email", s.handleEmailJob, queueCfg)
	return s
}

// Start launches the send workers.
func (s *CampaignService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the send workers.
func (s *CampaignService) Stop() {
	s.queue.Stop()
}

// ListTemplates returns the available phishing templates.
func (s *CampaignService) ListTemplates(ctx context.Context, principal *models.Principal) ([]models.EmailTemplate, error) {
	if principal == nil {
		return nil, appErrors.ErrUnauthorized
	}
	templates, err := s.campaigns.ListTemplates(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list templates")
	}
	return templates, nil
}

// Dispatch creates the campaign, appends one ledger row per school member
// (bumping their total_sent), and enqueues the sends. Managers and admins
// only.
func (s *CampaignService) Dispatch(ctx context.Context, principal *models.Principal, req DispatchRequest, meta models.RequestMeta) (*DispatchResult, error) {
	if principal == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if RoleView(principal.Role) != ViewManager {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "manager role required")
	}
	if !principal.HasSchool() {
		return nil, appErrors.Clone(appErrors.ErrConflict, "join or create a school first")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid dispatch payload")
	}

	template, err := s.campaigns.FindTemplateByID(ctx, req.TemplateID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "template not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load template")
	}

	members, err := s.users.ListMembersWithMetrics(ctx, *principal.SchoolID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school members")
	}

	campaign := &models.Campaign{
		SchoolID:   *principal.SchoolID,
		TemplateID: template.ID,
		Name:       req.Name,
		CreatedBy:  principal.ID,
	}
	if err := s.campaigns.Create(ctx, campaign); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create campaign")
	}

	sims := make([]models.SimulationEmail, 0, len(members))
	for _, member := range members {
		sims = append(sims, models.SimulationEmail{
			ID:         uuid.NewString(),
			UserID:     member.ID,
			TemplateID: template.ID,
			CampaignID: &campaign.ID,
		})
	}
	if err := s.simulations.CreateBatch(ctx, sims); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to append simulations")
	}

	for i, member := range members {
		job := jobs.Job{
			ID:   sims[i].ID,
			Type: "campaign_email",
			Payload: emailJob{
				SimulationID: sims[i].ID,
				To:           member.Email,
				Subject:      template.Subject,
				HTML:         template.Body,
			},
		}
		if err := s.queue.Enqueue(job); err != nil {
			s.logger.Warn("failed to enqueue campaign email",
				zap.String("simulation_id", sims[i].ID), zap.Error(err))
		}
	}

	if s.dashboard != nil {
		s.dashboard.InvalidateSchool(ctx, *principal.SchoolID)
	}

	payload, _ := json.Marshal(map[string]interface{}{"template_id": template.ID, "recipients": len(members)})
	if err := s.users.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &principal.ID,
		Action:     models.AuditActionCampaignDispatch,
		Resource:   "campaigns",
		ResourceID: &campaign.ID,
		NewValues:  payload,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record campaign audit log", zap.Error(err))
	}

	return &DispatchResult{Campaign: *campaign, Recipients: len(members)}, nil
}

func (s *CampaignService) handleEmailJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(emailJob)
	if !ok {
		s.logger.Error("unexpected campaign email payload", zap.String("job_id", job.ID))
		return nil
	}
	return s.mail.Send(ctx, mailer.Message{
		To:      payload.To,
		Subject: payload.Subject,
		HTML:    payload.HTML,
	})
}
