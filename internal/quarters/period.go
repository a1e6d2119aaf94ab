package quarters

import (
	"strconv"
	"strings"
	"time"
)

// QuarterOfMonth maps Jan-Mar to Q1 through Oct-Dec to Q4.
func QuarterOfMonth(m time.Month) Quarter {
	if m < time.January || m > time.December {
		return 0
	}
	return Quarter((int(m)-1)/3 + 1)
}

// ResolveAsOf returns the as-of quarter: the requested period when given,
// otherwise the quarter of now.
func ResolveAsOf(period string, now time.Time) (Quarter, error) {
	if strings.TrimSpace(period) == "" {
		return QuarterOfMonth(now.Month()), nil
	}
	return ParseQuarter(period)
}

// ExtendYearsForLTM prepends the year before the earliest requested year when
// the trailing window does not end on Q4 and therefore reaches back into it.
func ExtendYearsForLTM(years []int, asOf Quarter) []int {
	sorted := sortedYears(years)
	if len(sorted) == 0 || asOf == Q4 {
		return sorted
	}
	return append([]int{sorted[0] - 1}, sorted...)
}

// YearColumns lists the visible sub-columns of one year.
type YearColumns struct {
	Year   int
	Fields []string
}

// BuildSubheaders computes the visible sub-columns for each year of the window.
// Visibility only; values are computed independently.
func BuildSubheaders(mode ReportingMode, asOf Quarter, years []int) []YearColumns {
	sorted := sortedYears(years)
	if mode == LastTwelveMonths && asOf.Valid() && asOf != Q4 {
		return ltmColumns(asOf, sorted)
	}
	out := make([]YearColumns, 0, len(sorted))
	for i, year := range sorted {
		fields := []string{Q1.String(), Q2.String(), Q3.String(), Q4.String(), FieldFullYear}
		if i > 0 {
			fields = append(fields, FieldVs)
		}
		out = append(out, YearColumns{Year: year, Fields: fields})
	}
	return out
}

func ltmColumns(asOf Quarter, years []int) []YearColumns {
	var head, tail []string
	for _, q := range AllQuarters {
		if q <= asOf {
			head = append(head, q.String())
		} else {
			tail = append(tail, q.String())
		}
	}
	last := len(years) - 1
	out := make([]YearColumns, 0, len(years))
	for i, year := range years {
		var fields []string
		switch {
		case i == last:
			fields = append(fields, head...)
			fields = append(fields, FieldFullYear)
			if i >= 2 {
				fields = append(fields, FieldVs)
			}
		case i == 0:
			fields = append(fields, tail...)
		default:
			fields = append(fields, head...)
			fields = append(fields, FieldFullYear, FieldVs)
			fields = append(fields, tail...)
		}
		out = append(out, YearColumns{Year: year, Fields: fields})
	}
	return out
}

// flattenColumns converts the per-year layout into wire headers and subheaders.
func flattenColumns(columns []YearColumns) (headers, subheaders []string) {
	headers = make([]string, 0, len(columns))
	for _, col := range columns {
		if len(col.Fields) == 0 {
			continue
		}
		headers = append(headers, strconv.Itoa(col.Year))
		subheaders = append(subheaders, col.Fields...)
	}
	return headers, subheaders
}

// expectedPeriods is the number of quarters a complete year holds under mode.
func expectedPeriods(mode ReportingMode, asOf Quarter) (int, bool) {
	switch mode {
	case YearToYear:
		return len(AllQuarters), true
	case YearToDate:
		if !asOf.Valid() {
			return 0, false
		}
		return int(asOf), true
	}
	return 0, false
}

// windowQuarters lists the quarters that feed a calendar-year Full Year.
func windowQuarters(mode ReportingMode, asOf Quarter) []Quarter {
	if mode == YearToDate && asOf.Valid() {
		return AllQuarters[:asOf]
	}
	return AllQuarters[:]
}
