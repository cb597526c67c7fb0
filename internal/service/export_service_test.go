package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/phishwise/phishwise-api/internal/models"
	appErrors "github.com/phishwise/phishwise-api/pkg/errors"
)

type staticOverviewProvider struct {
	overview *models.SchoolOverview
	err      error
}

func (s *staticOverviewProvider) Overview(ctx context.Context, principal *models.Principal) (*models.SchoolOverview, bool, error) {
	if s.err != nil {
		return nil, false, s.err
	}
	return s.overview, false, nil
}

func exportFixture() *ExportService {
	return NewExportService(&staticOverviewProvider{overview: &models.SchoolOverview{
		School: models.School{ID: "school-1", Name: "Northside"},
		Stats:  models.SchoolStats{TotalUsers: 2},
		Members: []models.MemberPerformance{
			{ID: "u1", Name: "Alice", Email: "alice@example.com", TotalSent: 10, TotalClicked: 2, ClickRate: 20, RiskTier: models.RiskMedium},
			{ID: "u2", Name: "Bob", Email: "bob@example.com", TotalSent: 10, TotalClicked: 4, ClickRate: 40, RiskTier: models.RiskHigh},
		},
	}}, zap.NewNop())
}

func TestSchoolReportCSV(t *testing.T) {
	svc := exportFixture()

	report, err := svc.SchoolReport(context.Background(), managerPrincipal(), FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", report.ContentType)
	assert.True(t, strings.HasSuffix(report.Filename, ".csv"))

	body := string(report.Data)
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Name,Email,Sent,Clicked,Completed,Click Rate %,Risk Tier", lines[0])
	assert.Contains(t, lines[1], "alice@example.com")
	assert.Contains(t, lines[1], "MEDIUM")
	assert.Contains(t, lines[2], "HIGH")
}

func TestSchoolReportDefaultsToCSV(t *testing.T) {
	svc := exportFixture()

	report, err := svc.SchoolReport(context.Background(), managerPrincipal(), "")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", report.ContentType)
}

func TestSchoolReportPDF(t *testing.T) {
	svc := exportFixture()

	report, err := svc.SchoolReport(context.Background(), managerPrincipal(), FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", report.ContentType)
	assert.True(t, strings.HasPrefix(string(report.Data), "%PDF"))
}

func TestSchoolReportRejectsUnknownFormat(t *testing.T) {
	svc := exportFixture()

	_, err := svc.SchoolReport(context.Background(), managerPrincipal(), "xlsx")
	assert.Equal(t, 400, appErrors.FromError(err).Status)
}

func TestSchoolReportPropagatesAuthErrors(t *testing.T) {
	svc := NewExportService(&staticOverviewProvider{err: appErrors.ErrForbidden}, zap.NewNop())

	_, err := svc.SchoolReport(context.Background(), managerPrincipal(), FormatCSV)
	assert.Equal(t, 403, appErrors.FromError(err).Status)
}
