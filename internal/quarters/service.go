package quarters

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kpinetwork/backend-sub000/internal/permissions"
)

// Repository supplies raw period records. Rows arrive filtered and restricted
// to public companies.
type Repository interface {
	// MetricRecordsByQuarters returns one scenario of a reported metric.
	MetricRecordsByQuarters(ctx context.Context, q RecordQuery) ([]PeriodRecord, error)
	// QuartersYearToYearRecords returns Actuals and Budget rows together.
	QuartersYearToYearRecords(ctx context.Context, q RecordQuery) ([]PeriodRecord, error)
	// MetricRecordsWithBaseScenarios returns one scenario of a derived pipeline's base metric.
	MetricRecordsWithBaseScenarios(ctx context.Context, q RecordQuery) ([]PeriodRecord, error)
}

// Permissions resolves visibility and masking.
type Permissions interface {
	CompanyPermissions(ctx context.Context, username string) ([]string, error)
	ProfileRanges(ctx context.Context, metric string) ([]permissions.ProfileRange, error)
	RangeFromValue(v float64, ranges []permissions.ProfileRange) string
	AnonymizedName(companyID string) string
}

// MetricsRecorder observes report builds.
type MetricsRecorder interface {
	ObserveReport(metric, reportType, outcome string, elapsed time.Duration)
}

// DefaultExemptMetrics are never masked by range buckets.
var DefaultExemptMetrics = []string{MetricHeadcount}

// Options tunes a Service.
type Options struct {
	Logger        *slog.Logger
	Metrics       MetricsRecorder
	ExemptMetrics []string
	Now           func() time.Time
}

// Service assembles quarters reports.
type Service struct {
	repo    Repository
	perms   Permissions
	logger  *slog.Logger
	metrics MetricsRecorder
	exempt  map[string]struct{}
	now     func() time.Time
}

// NewService wires a Service.
func NewService(repo Repository, perms Permissions, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	exemptList := opts.ExemptMetrics
	if exemptList == nil {
		exemptList = DefaultExemptMetrics
	}
	exempt := make(map[string]struct{}, len(exemptList))
	for _, m := range exemptList {
		if m = strings.TrimSpace(m); m != "" {
			exempt[m] = struct{}{}
		}
	}
	return &Service{repo: repo, perms: perms, logger: logger, metrics: opts.Metrics, exempt: exempt, now: now}
}

// Sensitive reports whether values of metric are masked for unauthorized viewers.
func (s *Service) Sensitive(metric string) bool {
	_, ok := s.exempt[metric]
	return !ok
}

// Build computes the report for req. Errors from the repository, the
// permission service and pipeline dispatch are returned unchanged.
func (s *Service) Build(ctx context.Context, req Request) (Report, error) {
	if s == nil || s.repo == nil || s.perms == nil {
		return Report{}, errors.New("quarters: service not configured")
	}
	start := s.now()
	report, err := s.build(ctx, req)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		s.logger.Error("quarters report",
			slog.String("metric", req.Metric),
			slog.String("report_type", string(req.ReportType)),
			slog.String("scenario_type", string(req.Scenario)),
			slog.Any("error", err))
	}
	if s.metrics != nil {
		s.metrics.ObserveReport(req.Metric, string(req.ReportType), outcome, s.now().Sub(start))
	}
	return report, err
}

func (s *Service) build(ctx context.Context, req Request) (Report, error) {
	if !req.ReportType.Valid() {
		return Report{}, fmt.Errorf("%w: %q", ErrInvalidReportType, req.ReportType)
	}
	if !req.Scenario.Valid() {
		return Report{}, fmt.Errorf("%w: %q", ErrInvalidScenario, req.Scenario)
	}
	if len(req.Years) == 0 {
		return Report{}, fmt.Errorf("%w: at least one year required", ErrInvalidYear)
	}

	ids, err := s.perms.CompanyPermissions(ctx, req.Username)
	if err != nil {
		return Report{}, err
	}
	allowed := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		allowed[id] = struct{}{}
	}

	years := sortedYears(req.Years)
	asOf, err := ResolveAsOf(req.Period, s.now())
	if err != nil {
		return Report{}, err
	}
	if req.ReportType == LastTwelveMonths {
		years = ExtendYearsForLTM(years, asOf)
	}

	pipeline, err := ResolvePipeline(req.Metric)
	if err != nil {
		return Report{}, err
	}
	p := plan{mode: req.ReportType, asOf: asOf, scenario: req.Scenario, reportYears: years, filters: req.Filters}
	var g *grid
	if pipeline.Derived() {
		g, err = s.runDerived(ctx, pipeline, p)
	} else {
		g, err = s.runStandard(ctx, pipeline, p)
	}
	if err != nil {
		return Report{}, err
	}

	peers := g.series()
	acc := NewAveragesAccumulator()
	acc.AddSeries(peers)
	averages := acc.Finalize()

	if !req.Access {
		b := bucketizer{perms: s.perms, sensitive: s.Sensitive(req.Metric), metric: req.Metric}
		peers, err = b.apply(ctx, peers, allowed, req.CompanyID)
		if err != nil {
			return Report{}, err
		}
	}

	var company *CompanySeries
	if !req.FromMain && req.CompanyID != "" {
		company, peers = extractCompany(peers, req.CompanyID)
	}

	columns := BuildSubheaders(req.ReportType, asOf, years)
	headers, subheaders := flattenColumns(columns)
	return Report{
		Headers:    headers,
		Subheaders: subheaders,
		Company:    company,
		Peers:      peers,
		Averages:   averages.Cells(columns),
	}, nil
}

// extractCompany removes the anchored company from peers when present.
func extractCompany(peers []CompanySeries, id string) (*CompanySeries, []CompanySeries) {
	for i := range peers {
		if peers[i].ID != id {
			continue
		}
		company := peers[i]
		rest := make([]CompanySeries, 0, len(peers)-1)
		rest = append(rest, peers[:i]...)
		rest = append(rest, peers[i+1:]...)
		return &company, rest
	}
	return nil, peers
}
