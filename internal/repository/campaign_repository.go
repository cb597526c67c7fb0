package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/phishwise/phishwise-api/internal/models"
)

// CampaignRepository provides database access for campaigns and templates.
type CampaignRepository struct {
	db *sqlx.DB
}

// NewCampaignRepository creates a new instance of CampaignRepository.
func NewCampaignRepository(db *sqlx.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// Create inserts a campaign record.
func (r *CampaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	if campaign.ID == "" {
		campaign.ID = uuid.NewString()
	}
	if campaign.CreatedAt.IsZero() {
		campaign.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO campaigns (id, school_id, template_id, name, created_by, created_at) VALUES (:id, :school_id, :template_id, :name, :created_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, campaign); err != nil {
		return fmt.Errorf("create campaign: %w", err)
	}
	return nil
}

// ListTemplates returns all phishing templates.
func (r *CampaignRepository) ListTemplates(ctx context.Context) ([]models.EmailTemplate, error) {
	const query = `SELECT id, name, subject, body, difficulty, created_at FROM email_templates ORDER BY name ASC`
	var templates []models.EmailTemplate
	if err := r.db.SelectContext(ctx, &templates, query); err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return templates, nil
}

// FindTemplateByID returns one template.
func (r *CampaignRepository) FindTemplateByID(ctx context.Context, id string) (*models.EmailTemplate, error) {
	const query = `SELECT id, name, subject, body, difficulty, created_at FROM email_templates WHERE id = $1 LIMIT 1`
	var template models.EmailTemplate
	if err := r.db.GetContext(ctx, &template, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find template by id: %w", err)
	}
	return &template, nil
}
