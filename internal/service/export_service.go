package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/phishwise/phishwise-api/internal/models"
	appErrors "github.com/phishwise/phishwise-api/pkg/errors"
	"github.com/phishwise/phishwise-api/pkg/export"
)

// ReportFormat selects the export encoding.
type ReportFormat string

const (
	FormatCSV ReportFormat = "csv"
	FormatPDF ReportFormat = "pdf"
)

// Report is a rendered school risk report ready to stream.
type Report struct {
	Filename    string
	ContentType string
	Data        []byte
}

type overviewProvider interface {
	Overview(ctx context.Context, principal *models.Principal) (*models.SchoolOverview, bool, error)
}

// ExportService renders the school risk report as CSV or PDF.
type ExportService struct {
	dashboard overviewProvider
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	logger    *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(dashboard overviewProvider, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		dashboard: dashboard,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		logger:    logger,
	}
}

var reportHeaders = []string{"Name", "Email", "Sent", "Clicked", "Completed", "Click Rate %", "Risk Tier"}

// SchoolReport renders the caller's school member performance table. The
// authorization rules match the dashboard: managers and admins with a school.
func (s *ExportService) SchoolReport(ctx context.Context, principal *models.Principal, format ReportFormat) (*Report, error) {
	overview, _, err := s.dashboard.Overview(ctx, principal)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{Headers: reportHeaders, Rows: make([]map[string]string, 0, len(overview.Members))}
	for _, m := range overview.Members {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Name":         m.Name,
			"Email":        m.Email,
			"Sent":         strconv.Itoa(m.TotalSent),
			"Clicked":      strconv.Itoa(m.TotalClicked),
			"Completed":    strconv.Itoa(m.TotalCompleted),
			"Click Rate %": strconv.Itoa(m.ClickRate),
			"Risk Tier":    string(m.RiskTier),
		})
	}

	stamp := time.Now().UTC().Format("2006-01-02")
	title := fmt.Sprintf("%s risk report", overview.School.Name)

	switch ReportFormat(strings.ToLower(string(format))) {
	case FormatCSV, "":
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
		}
		return &Report{
			Filename:    fmt.Sprintf("risk-report-%s.csv", stamp),
			ContentType: "text/csv",
			Data:        data,
		}, nil
	case FormatPDF:
		data, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
		}
		return &Report{
			Filename:    fmt.Sprintf("risk-report-%s.pdf", stamp),
			ContentType: "application/pdf",
			Data:        data,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}
