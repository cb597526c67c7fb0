package models

import "time"

// UserMetrics is the per-user aggregate driving dashboards. Counters only
// ever increase; invariants total_clicked <= total_sent and
// total_completed <= total_clicked hold through the single update pathways.
type UserMetrics struct {
	ID             string     `db:"id" json:"id"`
	UserID         string     `db:"user_id" json:"userId"`
	TotalSent      int        `db:"total_sent" json:"totalSent"`
	TotalClicked   int        `db:"total_clicked" json:"totalClicked"`
	TotalCompleted int        `db:"total_completed" json:"totalCompleted"`
	LastActivity   *time.Time `db:"last_activity" json:"lastActivity"`
}

// RiskTier is the coarse classification of a user's susceptibility.
type RiskTier string

const (
	RiskLow    RiskTier = "LOW"
	RiskMedium RiskTier = "MEDIUM"
	RiskHigh   RiskTier = "HIGH"
)

// MemberMetrics is one school member with their aggregate counters, as read
// by the rollup query. Users without a metrics row report zero counters.
type MemberMetrics struct {
	ID             string     `db:"id" json:"id"`
	Name           string     `db:"name" json:"name"`
	Email          string     `db:"email" json:"email"`
	TotalSent      int        `db:"total_sent" json:"totalSent"`
	TotalClicked   int        `db:"total_clicked" json:"totalClicked"`
	TotalCompleted int        `db:"total_completed" json:"totalCompleted"`
	LastActivity   *time.Time `db:"last_activity" json:"lastActivity"`
}

// MemberPerformance is a member row with derived rate and tier, rendered on
// the manager dashboard and in exported reports.
type MemberPerformance struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	TotalSent      int      `json:"totalSent"`
	TotalClicked   int      `json:"totalClicked"`
	TotalCompleted int      `json:"totalCompleted"`
	ClickRate      int      `json:"clickRate"`
	RiskTier       RiskTier `json:"riskTier"`
}

// SchoolStats is the per-school rollup.
type SchoolStats struct {
	TotalUsers             int `json:"totalUsers"`
	TotalSimulations       int `json:"totalSimulations"`
	AvgClickRate           int `json:"avgClickRate"`
	TotalTrainingCompleted int `json:"totalTrainingCompleted"`
}

// SchoolOverview is the manager dashboard payload.
type SchoolOverview struct {
	School  School              `json:"school"`
	Stats   SchoolStats         `json:"stats"`
	Members []MemberPerformance `json:"members"`
}
