package quarters

import "github.com/kpinetwork/backend-sub000/internal/kpi"

// AveragesAccumulator collects per (year, field) values across companies.
type AveragesAccumulator struct {
	sums   map[int]map[string]float64
	counts map[int]map[string]int
}

// NewAveragesAccumulator returns an empty accumulator.
func NewAveragesAccumulator() *AveragesAccumulator {
	return &AveragesAccumulator{
		sums:   make(map[int]map[string]float64),
		counts: make(map[int]map[string]int),
	}
}

// Add records v for (year, field). Non-numeric values register the field
// without contributing to the mean.
func (a *AveragesAccumulator) Add(year int, field string, v kpi.Value) {
	if _, ok := a.sums[year]; !ok {
		a.sums[year] = make(map[string]float64)
		a.counts[year] = make(map[string]int)
	}
	num, ok := v.Float()
	if !ok {
		if _, seen := a.counts[year][field]; !seen {
			a.counts[year][field] = 0
		}
		return
	}
	a.sums[year][field] += num
	a.counts[year][field]++
}

// AddSeries records every field of every row.
func (a *AveragesAccumulator) AddSeries(series []CompanySeries) {
	for _, s := range series {
		for _, row := range s.Quarters {
			for _, q := range AllQuarters {
				a.Add(row.Year, q.String(), row.Quarter(q))
			}
			a.Add(row.Year, FieldFullYear, row.FullYear)
			if row.HasVS {
				a.Add(row.Year, FieldVs, row.VS)
			}
		}
	}
}

// Finalize computes the rounded mean of each (year, field).
func (a *AveragesAccumulator) Finalize() Averages {
	out := Averages{values: make(map[int]map[string]kpi.Value, len(a.counts))}
	for year, fields := range a.counts {
		out.values[year] = make(map[string]kpi.Value, len(fields))
		for field, count := range fields {
			if count == 0 {
				out.values[year][field] = kpi.NA()
				continue
			}
			out.values[year][field] = kpi.Num(kpi.Round2(a.sums[year][field] / float64(count)))
		}
	}
	return out
}

// Averages is the finalized cross-company mean per (year, field).
type Averages struct {
	values map[int]map[string]kpi.Value
}

// Value returns the mean at (year, field), NA when nothing numeric was added.
func (a Averages) Value(year int, field string) kpi.Value {
	return a.values[year][field]
}

// Cells lays the averages out positionally along the visible columns.
func (a Averages) Cells(columns []YearColumns) []AverageCell {
	var out []AverageCell
	for _, col := range columns {
		for _, field := range col.Fields {
			out = append(out, AverageCell{Field: field, Value: a.Value(col.Year, field)})
		}
	}
	return out
}
