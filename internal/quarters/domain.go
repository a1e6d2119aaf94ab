// Package quarters builds the quarter-by-year peer comparison report: per
// company grids, full-year rollups under three reporting modes, year over year
// comparisons, derived metrics, peer averages and anonymization.
package quarters

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kpinetwork/backend-sub000/internal/kpi"
)

// Quarter is a calendar quarter, Q1 through Q4.
type Quarter int

// Calendar quarters.
const (
	Q1 Quarter = iota + 1
	Q2
	Q3
	Q4
)

// AllQuarters lists the quarters in calendar order.
var AllQuarters = [4]Quarter{Q1, Q2, Q3, Q4}

func (q Quarter) String() string {
	if q < Q1 || q > Q4 {
		return ""
	}
	return "Q" + strconv.Itoa(int(q))
}

// Valid reports whether q is one of Q1..Q4.
func (q Quarter) Valid() bool { return q >= Q1 && q <= Q4 }

// ParseQuarter accepts "Q1".."Q4", case insensitive.
func ParseQuarter(raw string) (Quarter, error) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if len(raw) == 2 && raw[0] == 'Q' && raw[1] >= '1' && raw[1] <= '4' {
		return Quarter(raw[1] - '0'), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidPeriod, raw)
}

// Report field names as they appear on the wire.
const (
	FieldYear     = "year"
	FieldFullYear = "Full Year"
	FieldVs       = "vs"

	// PeriodFullYear is the period name of annual records.
	PeriodFullYear = "Full-year"
)

// ReportingMode selects how the Full Year column is computed.
type ReportingMode string

// Supported reporting modes.
const (
	YearToYear       ReportingMode = "year_to_year"
	YearToDate       ReportingMode = "year_to_date"
	LastTwelveMonths ReportingMode = "last_twelve_months"
)

// Valid reports whether m is a supported mode.
func (m ReportingMode) Valid() bool {
	switch m {
	case YearToYear, YearToDate, LastTwelveMonths:
		return true
	}
	return false
}

// ScenarioType is the scenario selection of a request.
type ScenarioType string

// Supported scenario selections.
const (
	ScenarioActuals       ScenarioType = "actuals"
	ScenarioBudget        ScenarioType = "budget"
	ScenarioActualsBudget ScenarioType = "actuals_budget"
)

// Scenario names stored with every financial record, suffixed with the year.
const (
	ScenarioNameActuals = "Actuals"
	ScenarioNameBudget  = "Budget"
)

// Valid reports whether s is a supported scenario selection.
func (s ScenarioType) Valid() bool {
	switch s {
	case ScenarioActuals, ScenarioBudget, ScenarioActualsBudget:
		return true
	}
	return false
}

// Blended reports whether s prefers actuals and falls back to budget.
func (s ScenarioType) Blended() bool { return s == ScenarioActualsBudget }

// ScenarioName maps a single-scenario selection to its stored name.
func (s ScenarioType) ScenarioName() string {
	if s == ScenarioBudget {
		return ScenarioNameBudget
	}
	return ScenarioNameActuals
}

// ParseScenario splits a stored scenario such as "Actuals-2021".
func ParseScenario(raw string) (name string, year int, ok bool) {
	idx := strings.LastIndex(raw, "-")
	if idx <= 0 || idx == len(raw)-1 {
		return "", 0, false
	}
	year, err := strconv.Atoi(raw[idx+1:])
	if err != nil {
		return "", 0, false
	}
	return raw[:idx], year, true
}

// PeriodRecord is one raw row returned by the repository.
type PeriodRecord struct {
	CompanyID       string
	CompanyName     string
	Scenario        string
	Metric          string
	PeriodName      string
	Value           *float64
	Average         *float64
	FullYearAverage *float64
	CountPeriods    *int
}

// Filters are peer-selection conditions such as sector or vertical, delegated
// to the repository.
type Filters map[string][]string

// RecordQuery scopes a repository fetch.
type RecordQuery struct {
	Mode     ReportingMode
	Metric   string
	Scenario string
	Years    []int
	AsOf     Quarter
	Filters  Filters
}

// Request carries the inputs of a quarters report.
type Request struct {
	CompanyID  string
	Username   string
	ReportType ReportingMode
	Metric     string
	Scenario   ScenarioType
	Years      []int
	Period     string
	FromMain   bool
	Access     bool
	Filters    Filters
}

// Report is the assembled response.
type Report struct {
	Headers    []string
	Subheaders []string
	Company    *CompanySeries
	Peers      []CompanySeries
	Averages   []AverageCell
}

// AverageCell is one positional entry of the averages row.
type AverageCell struct {
	Field string
	Value kpi.Value
}

var (
	// ErrUnknownMetric indicates a metric with no registered pipeline.
	ErrUnknownMetric = errors.New("quarters: unknown metric")
	// ErrInvalidReportType indicates an unsupported reporting mode.
	ErrInvalidReportType = errors.New("quarters: invalid report type")
	// ErrInvalidScenario indicates an unsupported scenario selection.
	ErrInvalidScenario = errors.New("quarters: invalid scenario type")
	// ErrInvalidYear indicates a missing or malformed year list.
	ErrInvalidYear = errors.New("quarters: invalid years")
	// ErrInvalidPeriod indicates a malformed as-of period.
	ErrInvalidPeriod = errors.New("quarters: invalid period")
	// ErrInvalidFilter indicates a peer filter the repository cannot apply.
	ErrInvalidFilter = errors.New("quarters: invalid filter")
)
