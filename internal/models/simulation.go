package models

import "time"

// TemplateDifficulty grades how hard a phishing template is to spot.
type TemplateDifficulty string

const (
	DifficultyEasy   TemplateDifficulty = "EASY"
	DifficultyMedium TemplateDifficulty = "MEDIUM"
	DifficultyHard   TemplateDifficulty = "HARD"
)

// EmailTemplate is a phishing email template. Subject and body are rendered
// into dispatched simulations; the body content itself carries no logic.
type EmailTemplate struct {
	ID         string             `db:"id" json:"id"`
	Name       string             `db:"name" json:"name"`
	Subject    string             `db:"subject" json:"subject"`
	Body       string             `db:"body" json:"-"`
	Difficulty TemplateDifficulty `db:"difficulty" json:"difficulty"`
	CreatedAt  time.Time          `db:"created_at" json:"createdAt"`
}

// SimulationEmail is one simulated phishing message sent to one user.
// clicked and completed_at mutate at most once each, monotonically.
type SimulationEmail struct {
	ID          string     `db:"id" json:"id"`
	UserID      string     `db:"user_id" json:"userId"`
	TemplateID  string     `db:"template_id" json:"templateId"`
	CampaignID  *string    `db:"campaign_id" json:"campaignId,omitempty"`
	SentAt      time.Time  `db:"sent_at" json:"sentAt"`
	Clicked     bool       `db:"clicked" json:"clicked"`
	CompletedAt *time.Time `db:"completed_at" json:"completedAt"`
}

// SimulationRow is a ledger entry joined with its template and campaign,
// as returned by the list query.
type SimulationRow struct {
	SimulationEmail
	TemplateName       string             `db:"template_name"`
	TemplateSubject    string             `db:"template_subject"`
	TemplateDifficulty TemplateDifficulty `db:"template_difficulty"`
	CampaignName       *string            `db:"campaign_name"`
}

// TemplateInfo is the template summary embedded in simulation listings.
type TemplateInfo struct {
	Name       string             `json:"name"`
	Subject    string             `json:"subject"`
	Difficulty TemplateDifficulty `json:"difficulty"`
}

// CampaignInfo is the campaign summary embedded in simulation listings.
type CampaignInfo struct {
	Name string `json:"name"`
}

// SimulationDetail is the API shape for one ledger entry.
type SimulationDetail struct {
	ID          string        `json:"id"`
	TemplateID  string        `json:"templateId"`
	SentAt      time.Time     `json:"sentAt"`
	Clicked     bool          `json:"clicked"`
	CompletedAt *time.Time    `json:"completedAt"`
	Template    TemplateInfo  `json:"template"`
	Campaign    *CampaignInfo `json:"campaign,omitempty"`
}

// Detail converts a joined row into its API shape.
func (r SimulationRow) Detail() SimulationDetail {
	d := SimulationDetail{
		ID:          r.ID,
		TemplateID:  r.TemplateID,
		SentAt:      r.SentAt,
		Clicked:     r.Clicked,
		CompletedAt: r.CompletedAt,
		Template: TemplateInfo{
			Name:       r.TemplateName,
			Subject:    r.TemplateSubject,
			Difficulty: r.TemplateDifficulty,
		},
	}
	if r.CampaignName != nil {
		d.Campaign = &CampaignInfo{Name: *r.CampaignName}
	}
	return d
}
