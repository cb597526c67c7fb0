package service

import (
	"math"

	"github.com/phishwise/phishwise-api/internal/models"
)

// Pure aggregation over already-fetched counters. No I/O, deterministic.

// ClickRate returns the integer percentage of simulations clicked,
// round-half-up. Zero sent yields zero.
func ClickRate(sent, clicked int) int {
	if sent <= 0 {
		return 0
	}
	return int(math.Round(float64(clicked) / float64(sent) * 100))
}

// AwarenessScore is the fraction of simulations NOT clicked, as an integer
// percentage. The name follows the dashboard label; note the formula does
// not account for training completion.
func AwarenessScore(sent, clicked int) int {
	if sent <= 0 {
		return 0
	}
	return int(math.Round(float64(sent-clicked) / float64(sent) * 100))
}

// ClassifyRisk maps a click rate to a risk tier. Boundaries are inclusive
// on the lower bound of each tier, checked high to low.
func ClassifyRisk(clickRate int) models.RiskTier {
	switch {
	case clickRate >= 30:
		return models.RiskHigh
	case clickRate >= 15:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

// MemberPerformanceFrom derives the dashboard row for one member.
func MemberPerformanceFrom(m models.MemberMetrics) models.MemberPerformance {
	rate := ClickRate(m.TotalSent, m.TotalClicked)
	return models.MemberPerformance{
		ID:             m.ID,
		Name:           m.Name,
		Email:          m.Email,
		TotalSent:      m.TotalSent,
		TotalClicked:   m.TotalClicked,
		TotalCompleted: m.TotalCompleted,
		ClickRate:      rate,
		RiskTier:       ClassifyRisk(rate),
	}
}

// SchoolRollup aggregates member counters into school-level stats. The
// average click rate is the rounded mean of per-user rates, not a pooled
// clicked/sent ratio; members with zero sent contribute zero to the mean.
func SchoolRollup(members []models.MemberMetrics) models.SchoolStats {
	stats := models.SchoolStats{TotalUsers: len(members)}
	if len(members) == 0 {
		return stats
	}

	rateSum := 0
	for _, m := range members {
		stats.TotalSimulations += m.TotalSent
		stats.TotalTrainingCompleted += m.TotalCompleted
		rateSum += ClickRate(m.TotalSent, m.TotalClicked)
	}
	stats.AvgClickRate = int(math.Round(float64(rateSum) / float64(len(members))))

	return stats
}

// ViewKind selects which dashboard a role sees.
type ViewKind string

const (
	ViewManager ViewKind = "manager"
	ViewUser    ViewKind = "user"
)

// RoleView maps a role to its dashboard view. The aggregator itself stays
// role-agnostic; presentation branches on this alone.
func RoleView(role models.UserRole) ViewKind {
	if role == models.RoleManager || role == models.RoleAdmin {
		return ViewManager
	}
	return ViewUser
}
