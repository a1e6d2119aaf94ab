package quarters

import "github.com/kpinetwork/backend-sub000/internal/kpi"

// compare fills vs for every row after the first of each company series.
func compare(g *grid) {
	for _, c := range g.companies {
		for i := range c.rows {
			if i == 0 {
				c.rows[i].HasVS = false
				c.rows[i].VS = kpi.NA()
				continue
			}
			c.rows[i].HasVS = true
			c.rows[i].VS = comparison(c.rows[i].FullYear, c.rows[i-1].FullYear)
		}
	}
}

// comparison is round(current/previous, 2) * 100. The ratio is rounded before
// scaling.
func comparison(current, previous kpi.Value) kpi.Value {
	cur, ok := current.Float()
	if !ok {
		return kpi.NA()
	}
	prev, ok := previous.Float()
	if !ok || prev == 0 {
		return kpi.NA()
	}
	return kpi.Num(kpi.Round2(cur/prev) * 100)
}
