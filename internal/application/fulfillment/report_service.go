package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/orderbridge/backend/internal/domain/shared"
	"github.com/orderbridge/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

var (
	// ErrNoRows is returned when a jobs view has nothing to export.
	ErrNoRows = errors.New("fulfillment: no rows found")
	// ErrUnknownSalesRep is returned for a sales rep without a configured view.
	ErrUnknownSalesRep = errors.New("fulfillment: unknown sales rep")
)

// JobKind selects a jobs report.
type JobKind string

const (
	JobKindOverdue JobKind = "overdue"
	JobKindPending JobKind = "pending"
)

// ReportConfig maps report kinds to ShopVox jobs views.
type ReportConfig struct {
	OverdueView string
	// PendingView is used when no sales rep is given
	PendingView string
	// SalesRepViews maps a lower-case rep name to that rep's pending view
	SalesRepViews map[string]string
}

// ReportService exports ShopVox job reports as PDFs.
type ReportService struct {
	reporter JobReporter
	pages    PageProvider
	archive  ReportArchive
	config   ReportConfig
	logger   *zap.Logger
}

// NewReportService creates a new ReportService. archive may be nil.
func NewReportService(reporter JobReporter, pages PageProvider, archive ReportArchive, cfg ReportConfig, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		reporter: reporter,
		pages:    pages,
		archive:  archive,
		config:   cfg,
		logger:   logger,
	}
}

// Export downloads the report for kind. salesRep only applies to pending jobs.
func (s *ReportService) Export(ctx context.Context, kind JobKind, salesRep string) (*JobExport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reports", "export",
		telemetry.WithAttribute("kind", string(kind)),
		telemetry.WithAttribute("sales_rep", salesRep),
	)
	defer span.End()

	view, err := s.resolveView(kind, salesRep)
	if err != nil {
		return nil, err
	}

	pageCtx, closePage, err := s.pages.NewPage(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("open browser page: %w", err)
	}
	defer closePage()

	export, err := s.reporter.ExportJobs(pageCtx, view)
	if err != nil {
		if !errors.Is(err, ErrNoRows) {
			telemetry.RecordError(span, err)
		}
		return nil, err
	}

	s.archiveExport(ctx, kind, export)
	return export, nil
}

// SalesReps returns the configured rep names, sorted.
func (s *ReportService) SalesReps() []string {
	names := make([]string, 0, len(s.config.SalesRepViews))
	for name := range s.config.SalesRepViews {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *ReportService) resolveView(kind JobKind, salesRep string) (string, error) {
	switch kind {
	case JobKindOverdue:
		return s.config.OverdueView, nil
	case JobKindPending:
		rep := strings.ToLower(strings.TrimSpace(salesRep))
		if rep == "" {
			return s.config.PendingView, nil
		}
		view, ok := s.config.SalesRepViews[rep]
		if !ok {
			return "", shared.WrapDomainError("INVALID_INPUT",
				fmt.Sprintf("Unknown sales_rep '%s'. Allowed: %s", salesRep, strings.Join(s.SalesReps(), ", ")),
				ErrUnknownSalesRep)
		}
		return view, nil
	default:
		return "", shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unknown report kind '%s'", kind))
	}
}

// archiveExport keeps a copy of the export. Failures are logged only.
func (s *ReportService) archiveExport(ctx context.Context, kind JobKind, export *JobExport) {
	if s.archive == nil {
		return
	}
	key := fmt.Sprintf("reports/%s/%s-%s.pdf", kind, time.Now().UTC().Format("20060102T150405Z"), uuid.NewString())
	location, err := s.archive.Upload(ctx, key, export.Data, "application/pdf")
	if err != nil {
		s.logger.Warn("Failed to archive job report", zap.String("key", key), zap.Error(err))
		return
	}
	s.logger.Info("Job report archived",
		zap.String("kind", string(kind)),
		zap.String("location", location),
		zap.Int("bytes", len(export.Data)),
	)
}
