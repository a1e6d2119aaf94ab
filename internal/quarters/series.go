package quarters

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/kpinetwork/backend-sub000/internal/kpi"
)

// YearRow holds one company's values for one year.
type YearRow struct {
	Year     int
	Quarters [4]kpi.Value
	FullYear kpi.Value
	VS       kpi.Value
	HasVS    bool

	// fullYearPreset marks a Full Year taken from a pre-aggregated record.
	fullYearPreset bool
}

// Quarter returns the value of q.
func (r YearRow) Quarter(q Quarter) kpi.Value {
	if !q.Valid() {
		return kpi.NA()
	}
	return r.Quarters[q-1]
}

// SetQuarter stores v at q.
func (r *YearRow) SetQuarter(q Quarter, v kpi.Value) {
	if q.Valid() {
		r.Quarters[q-1] = v
	}
}

// Field looks up a value by its wire name.
func (r YearRow) Field(name string) (kpi.Value, bool) {
	switch name {
	case FieldFullYear:
		return r.FullYear, true
	case FieldVs:
		return r.VS, r.HasVS
	}
	q, err := ParseQuarter(name)
	if err != nil {
		return kpi.NA(), false
	}
	return r.Quarter(q), true
}

// MarshalJSON keeps the column order year, Q1..Q4, Full Year, vs.
func (r YearRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"year":`)
	year, _ := json.Marshal(r.Year)
	buf.Write(year)
	for _, q := range AllQuarters {
		if err := writeField(&buf, q.String(), r.Quarter(q)); err != nil {
			return nil, err
		}
	}
	if err := writeField(&buf, FieldFullYear, r.FullYear); err != nil {
		return nil, err
	}
	if r.HasVS {
		if err := writeField(&buf, FieldVs, r.VS); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeField(buf *bytes.Buffer, name string, v kpi.Value) error {
	key, _ := json.Marshal(name)
	value, err := v.MarshalJSON()
	if err != nil {
		return err
	}
	buf.WriteByte(',')
	buf.Write(key)
	buf.WriteByte(':')
	buf.Write(value)
	return nil
}

// CompanySeries is one company's rows, ascending by year.
type CompanySeries struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Quarters []YearRow `json:"quarters"`
}

// MarshalJSON writes a single-key object per averages position.
func (c AverageCell) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]kpi.Value{c.Field: c.Value})
}

type reportJSON struct {
	Headers    []string        `json:"headers"`
	Subheaders []string        `json:"subheaders"`
	Company    any             `json:"company_comparison_data"`
	Peers      []CompanySeries `json:"peers_comparison_data"`
	Averages   []AverageCell   `json:"averages"`
}

// MarshalJSON renders an absent company as {}.
func (r Report) MarshalJSON() ([]byte, error) {
	out := reportJSON{
		Headers:    nonNilStrings(r.Headers),
		Subheaders: nonNilStrings(r.Subheaders),
		Company:    struct{}{},
		Peers:      r.Peers,
		Averages:   r.Averages,
	}
	if r.Company != nil {
		out.Company = r.Company
	}
	if out.Peers == nil {
		out.Peers = []CompanySeries{}
	}
	if out.Averages == nil {
		out.Averages = []AverageCell{}
	}
	return json.Marshal(out)
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// companyGrid is the per-company row arena; index maps a year to its row.
type companyGrid struct {
	id    string
	name  string
	rows  []YearRow
	index map[int]int
}

func (c *companyGrid) row(year int) *YearRow {
	i, ok := c.index[year]
	if !ok {
		return nil
	}
	return &c.rows[i]
}

// grid holds every company's rows for a fixed, ascending set of years.
type grid struct {
	years     []int
	companies []*companyGrid
	byID      map[string]*companyGrid
}

func newGrid(years []int) *grid {
	return &grid{years: sortedYears(years), byID: make(map[string]*companyGrid)}
}

// company returns the company's rows, creating all-NA rows on first use.
func (g *grid) company(id, name string) *companyGrid {
	if c, ok := g.byID[id]; ok {
		if c.name == "" {
			c.name = name
		}
		return c
	}
	c := &companyGrid{
		id:    id,
		name:  name,
		rows:  make([]YearRow, len(g.years)),
		index: make(map[int]int, len(g.years)),
	}
	for i, year := range g.years {
		c.rows[i] = YearRow{Year: year}
		c.index[year] = i
	}
	g.companies = append(g.companies, c)
	g.byID[id] = c
	return c
}

// project copies the rows of the given years into a new grid, keeping company order.
func (g *grid) project(years []int) *grid {
	out := newGrid(years)
	for _, c := range g.companies {
		dst := out.company(c.id, c.name)
		for i := range dst.rows {
			if src := c.row(dst.rows[i].Year); src != nil {
				dst.rows[i] = *src
			}
		}
	}
	return out
}

func (g *grid) series() []CompanySeries {
	out := make([]CompanySeries, 0, len(g.companies))
	for _, c := range g.companies {
		rows := make([]YearRow, len(c.rows))
		copy(rows, c.rows)
		out = append(out, CompanySeries{ID: c.id, Name: c.name, Quarters: rows})
	}
	return out
}

func sortedYears(years []int) []int {
	seen := make(map[int]struct{}, len(years))
	out := make([]int, 0, len(years))
	for _, y := range years {
		if _, ok := seen[y]; ok {
			continue
		}
		seen[y] = struct{}{}
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}
