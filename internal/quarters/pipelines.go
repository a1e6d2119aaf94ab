package quarters

import "context"

// plan is the resolved shape of one report computation.
type plan struct {
	mode        ReportingMode
	asOf        Quarter
	scenario    ScenarioType
	reportYears []int
	filters     Filters
}

// rollupYears are the years whose rows must exist before the rollup runs:
// the reporting years plus, for a trailing window, each year before them.
func (p plan) rollupYears() []int {
	years := append([]int(nil), p.reportYears...)
	if p.mode == LastTwelveMonths && p.asOf != Q4 {
		for _, y := range p.reportYears {
			years = append(years, y-1)
		}
	}
	return sortedYears(years)
}

func (p plan) normalizer() normalizer { return normalizer{mode: p.mode, asOf: p.asOf} }

func (p plan) rollup() rollup { return rollup{mode: p.mode, asOf: p.asOf} }

func (p plan) query(metric string, years []int) RecordQuery {
	return RecordQuery{
		Mode:    p.mode,
		Metric:  metric,
		Years:   years,
		AsOf:    p.asOf,
		Filters: p.filters,
	}
}

// runStandard reports a stored metric: normalize, roll up, compare.
func (s *Service) runStandard(ctx context.Context, pipeline Pipeline, p plan) (*grid, error) {
	years := p.rollupYears()
	var g *grid
	if p.scenario.Blended() {
		records, err := s.repo.QuartersYearToYearRecords(ctx, p.query(pipeline.Metric, years))
		if err != nil {
			return nil, err
		}
		n := p.normalizer()
		g = blend(
			n.normalize(years, records, pipeline.Metric, ScenarioNameActuals),
			n.normalize(years, records, pipeline.Metric, ScenarioNameBudget),
		)
	} else {
		q := p.query(pipeline.Metric, years)
		q.Scenario = p.scenario.ScenarioName()
		records, err := s.repo.MetricRecordsByQuarters(ctx, q)
		if err != nil {
			return nil, err
		}
		g = p.normalizer().normalize(years, records, pipeline.Metric, q.Scenario)
	}
	p.rollup().apply(g)
	out := g.project(p.reportYears)
	compare(out)
	return out, nil
}

// runDerived fetches each base metric in turn, applies the formula quarter by
// quarter against the same quarter of the prior year, then re-derives Full
// Year and vs on the derived rows.
func (s *Service) runDerived(ctx context.Context, pipeline Pipeline, p plan) (*grid, error) {
	derivedYears := p.rollupYears()
	baseYears := append([]int(nil), derivedYears...)
	for _, y := range derivedYears {
		baseYears = append(baseYears, y-1)
	}
	baseYears = sortedYears(baseYears)

	inputs := make(map[string]*grid, len(pipeline.BaseMetrics))
	derived := newGrid(derivedYears)
	for _, metric := range pipeline.BaseMetrics {
		g, err := s.fetchBase(ctx, metric, baseYears, p)
		if err != nil {
			return nil, err
		}
		inputs[metric] = g
		for _, c := range g.companies {
			derived.company(c.id, c.name)
		}
	}

	for _, c := range derived.companies {
		for i := range c.rows {
			year := c.rows[i].Year
			for _, q := range AllQuarters {
				current := make(QuarterInputs, len(inputs))
				prior := make(QuarterInputs, len(inputs))
				for metric, g := range inputs {
					base := g.byID[c.id]
					current[metric] = quarterOf(base, year, q)
					prior[metric] = quarterOf(base, year-1, q)
				}
				c.rows[i].SetQuarter(q, pipeline.Formula(current, prior))
			}
		}
	}

	p.rollup().apply(derived)
	out := derived.project(p.reportYears)
	compare(out)
	return out, nil
}

// fetchBase loads one base metric as a quarter grid, blended when requested.
func (s *Service) fetchBase(ctx context.Context, metric string, years []int, p plan) (*grid, error) {
	n := p.normalizer()
	if p.scenario.Blended() {
		records, err := s.repo.QuartersYearToYearRecords(ctx, p.query(metric, years))
		if err != nil {
			return nil, err
		}
		return blend(
			n.normalize(years, records, metric, ScenarioNameActuals),
			n.normalize(years, records, metric, ScenarioNameBudget),
		), nil
	}
	q := p.query(metric, years)
	q.Scenario = p.scenario.ScenarioName()
	records, err := s.repo.MetricRecordsWithBaseScenarios(ctx, q)
	if err != nil {
		return nil, err
	}
	return n.normalize(years, records, metric, q.Scenario), nil
}
