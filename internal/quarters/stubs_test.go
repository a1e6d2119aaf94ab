package quarters

import (
	"context"
	"time"

	"github.com/kpinetwork/backend-sub000/internal/permissions"
)

type repoCall struct {
	method string
	query  RecordQuery
}

type stubRepo struct {
	records []PeriodRecord
	err     error
	calls   []repoCall
}

func (s *stubRepo) MetricRecordsByQuarters(ctx context.Context, q RecordQuery) ([]PeriodRecord, error) {
	return s.lookup("MetricRecordsByQuarters", q, q.Scenario)
}

func (s *stubRepo) QuartersYearToYearRecords(ctx context.Context, q RecordQuery) ([]PeriodRecord, error) {
	return s.lookup("QuartersYearToYearRecords", q, ScenarioNameActuals, ScenarioNameBudget)
}

func (s *stubRepo) MetricRecordsWithBaseScenarios(ctx context.Context, q RecordQuery) ([]PeriodRecord, error) {
	return s.lookup("MetricRecordsWithBaseScenarios", q, q.Scenario)
}

func (s *stubRepo) lookup(method string, q RecordQuery, scenarios ...string) ([]PeriodRecord, error) {
	s.calls = append(s.calls, repoCall{method: method, query: q})
	if s.err != nil {
		return nil, s.err
	}
	years := make(map[int]struct{}, len(q.Years))
	for _, y := range q.Years {
		years[y] = struct{}{}
	}
	var out []PeriodRecord
	for _, rec := range s.records {
		if rec.Metric != q.Metric {
			continue
		}
		name, year, ok := ParseScenario(rec.Scenario)
		if !ok {
			continue
		}
		if _, ok := years[year]; !ok {
			continue
		}
		for _, sc := range scenarios {
			if sc == name {
				out = append(out, rec)
				break
			}
		}
	}
	return out, nil
}

type stubPerms struct {
	allowed     []string
	err         error
	ranges      []permissions.ProfileRange
	rangesErr   error
	rangeCalls  int
	lastMetric  string
	lastUser    string
	permsCalled int
}

func (s *stubPerms) CompanyPermissions(ctx context.Context, username string) ([]string, error) {
	s.permsCalled++
	s.lastUser = username
	return s.allowed, s.err
}

func (s *stubPerms) ProfileRanges(ctx context.Context, metric string) ([]permissions.ProfileRange, error) {
	s.rangeCalls++
	s.lastMetric = metric
	return s.ranges, s.rangesErr
}

func (s *stubPerms) RangeFromValue(v float64, ranges []permissions.ProfileRange) string {
	return permissions.RangeFromValue(v, ranges)
}

func (s *stubPerms) AnonymizedName(companyID string) string {
	return permissions.AnonymizedName(companyID)
}

func num(v float64) *float64 { return &v }

func count(n int) *int { return &n }

func rec(company, scenario, metric, period string, value *float64) PeriodRecord {
	return PeriodRecord{
		CompanyID:   company,
		CompanyName: "Company " + company,
		Scenario:    scenario,
		Metric:      metric,
		PeriodName:  period,
		Value:       value,
	}
}

// quarterRecords expands four quarter values; nil entries are omitted.
func quarterRecords(company, scenario, metric string, values ...*float64) []PeriodRecord {
	var out []PeriodRecord
	for i, v := range values {
		if v == nil {
			continue
		}
		out = append(out, rec(company, scenario, metric, Quarter(i+1).String(), v))
	}
	return out
}

func fixedClock(year int, month time.Month) func() time.Time {
	return func() time.Time { return time.Date(year, month, 10, 12, 0, 0, 0, time.UTC) }
}
