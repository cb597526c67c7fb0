package models

import "time"

// Campaign groups the simulations dispatched to a school in one batch.
type Campaign struct {
	ID         string    `db:"id" json:"id"`
	SchoolID   string    `db:"school_id" json:"schoolId"`
	TemplateID string    `db:"template_id" json:"templateId"`
	Name       string    `db:"name" json:"name"`
	CreatedBy  string    `db:"created_by" json:"createdBy"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
