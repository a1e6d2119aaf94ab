package quarters

import "github.com/kpinetwork/backend-sub000/internal/kpi"

// rollup computes the Full Year column for a reporting mode.
type rollup struct {
	mode ReportingMode
	asOf Quarter
}

// apply walks every company's rows oldest to newest. Rows with a preset Full
// Year keep it.
func (r rollup) apply(g *grid) {
	for _, c := range g.companies {
		for i := range c.rows {
			row := &c.rows[i]
			if row.fullYearPreset {
				continue
			}
			row.FullYear = r.fullYear(c, *row)
		}
	}
}

func (r rollup) fullYear(c *companyGrid, row YearRow) kpi.Value {
	switch r.mode {
	case YearToDate:
		if !r.asOf.Valid() {
			return kpi.NA()
		}
		sum, ok := sumQuarters(row, AllQuarters[:r.asOf])
		// A zero year-to-date total is indistinguishable from no data.
		if !ok || sum == 0 {
			return kpi.NA()
		}
		return kpi.Num(kpi.Round2(sum))
	case LastTwelveMonths:
		return r.trailing(c, row)
	default:
		sum, ok := sumQuarters(row, AllQuarters[:])
		if !ok {
			return kpi.NA()
		}
		return kpi.Num(kpi.Round2(sum))
	}
}

// trailing sums the current year's quarters through as-of with the previous
// year's quarters after it.
func (r rollup) trailing(c *companyGrid, row YearRow) kpi.Value {
	if !r.asOf.Valid() {
		return kpi.NA()
	}
	current, ok := sumQuarters(row, AllQuarters[:r.asOf])
	if !ok {
		return kpi.NA()
	}
	if r.asOf == Q4 {
		return kpi.Num(kpi.Round2(current))
	}
	prev := c.row(row.Year - 1)
	if prev == nil {
		return kpi.NA()
	}
	earlier, ok := sumQuarters(*prev, AllQuarters[r.asOf:])
	if !ok {
		return kpi.NA()
	}
	return kpi.Num(kpi.Round2(current + earlier))
}

func sumQuarters(row YearRow, quarters []Quarter) (float64, bool) {
	var sum float64
	for _, q := range quarters {
		v, ok := row.Quarter(q).Float()
		if !ok {
			return 0, false
		}
		sum += v
	}
	return sum, true
}
