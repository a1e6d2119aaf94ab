package quarters

import (
	"strings"

	"github.com/kpinetwork/backend-sub000/internal/kpi"
)

// normalizer turns raw records into per-company quarter grids.
type normalizer struct {
	mode ReportingMode
	asOf Quarter
}

// normalize builds a grid for years from records of one metric. scenario
// restricts records to a scenario name; empty accepts every scenario.
func (n normalizer) normalize(years []int, records []PeriodRecord, metric, scenario string) *grid {
	g := newGrid(years)
	expected, hasExpected := expectedPeriods(n.mode, n.asOf)
	for _, rec := range records {
		if metric != "" && rec.Metric != "" && rec.Metric != metric {
			continue
		}
		name, year, ok := ParseScenario(rec.Scenario)
		if !ok {
			continue
		}
		if scenario != "" && !strings.EqualFold(name, scenario) {
			continue
		}
		c := g.company(rec.CompanyID, rec.CompanyName)
		row := c.row(year)
		if row == nil {
			continue
		}
		q, err := ParseQuarter(rec.PeriodName)
		if err == nil && rec.Value != nil {
			row.SetQuarter(q, kpi.Num(kpi.Round2(*rec.Value)))
		}
		if hasExpected && n.presetApplies(rec, q, err == nil, expected) {
			row.FullYear = kpi.Num(kpi.Round2(*rec.FullYearAverage))
			row.fullYearPreset = true
		}
	}
	return g
}

// presetApplies reports whether rec carries the aggregate of the active
// window. The annual row only qualifies when the window is the whole year.
func (n normalizer) presetApplies(rec PeriodRecord, q Quarter, isQuarter bool, expected int) bool {
	if rec.FullYearAverage == nil || rec.CountPeriods == nil || *rec.CountPeriods != expected {
		return false
	}
	if n.mode == YearToDate && *rec.FullYearAverage == 0 {
		return false
	}
	if !isQuarter {
		return expected == len(AllQuarters) && strings.EqualFold(rec.PeriodName, PeriodFullYear)
	}
	return int(q) <= expected
}

// blend prefers the actual value of each quarter and falls back to budget.
func blend(actuals, budget *grid) *grid {
	out := newGrid(actuals.years)
	for _, src := range [...]*grid{actuals, budget} {
		for _, c := range src.companies {
			out.company(c.id, c.name)
		}
	}
	for _, c := range out.companies {
		act := actuals.byID[c.id]
		bud := budget.byID[c.id]
		for i := range c.rows {
			year := c.rows[i].Year
			for _, q := range AllQuarters {
				c.rows[i].SetQuarter(q, preferNumeric(quarterOf(act, year, q), quarterOf(bud, year, q)))
			}
		}
	}
	return out
}

func quarterOf(c *companyGrid, year int, q Quarter) kpi.Value {
	if c == nil {
		return kpi.NA()
	}
	row := c.row(year)
	if row == nil {
		return kpi.NA()
	}
	return row.Quarter(q)
}

func preferNumeric(primary, fallback kpi.Value) kpi.Value {
	if primary.IsNumeric() {
		return primary
	}
	if fallback.IsNumeric() {
		return fallback
	}
	return kpi.NA()
}
