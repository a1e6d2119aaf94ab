package quarters

import (
	"context"
	"fmt"

	"github.com/kpinetwork/backend-sub000/internal/kpi"
	"github.com/kpinetwork/backend-sub000/internal/permissions"
)

// bucketizer masks companies outside the caller's permitted set.
type bucketizer struct {
	perms     Permissions
	sensitive bool
	metric    string
}

// apply rewrites names, and for sensitive metrics numeric quarter and Full
// Year values, of every series not permitted and not the anchor company.
// vs is never masked.
func (b bucketizer) apply(ctx context.Context, series []CompanySeries, allowed map[string]struct{}, anchorID string) ([]CompanySeries, error) {
	var ranges []permissions.ProfileRange
	loaded := false
	out := make([]CompanySeries, len(series))
	for i, s := range series {
		out[i] = s
		if _, ok := allowed[s.ID]; ok || (anchorID != "" && s.ID == anchorID) {
			continue
		}
		out[i].Name = b.perms.AnonymizedName(s.ID)
		if !b.sensitive {
			continue
		}
		if !loaded {
			r, err := b.perms.ProfileRanges(ctx, b.metric)
			if err != nil {
				return nil, fmt.Errorf("quarters: profile ranges %s: %w", b.metric, err)
			}
			ranges, loaded = r, true
		}
		rows := make([]YearRow, len(s.Quarters))
		for j, row := range s.Quarters {
			for _, q := range AllQuarters {
				row.SetQuarter(q, b.mask(row.Quarter(q), ranges))
			}
			row.FullYear = b.mask(row.FullYear, ranges)
			rows[j] = row
		}
		out[i].Quarters = rows
	}
	return out, nil
}

func (b bucketizer) mask(v kpi.Value, ranges []permissions.ProfileRange) kpi.Value {
	num, ok := v.Float()
	if !ok {
		return v
	}
	return kpi.Label(b.perms.RangeFromValue(num, ranges))
}
