package quarters

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuarterOfMonth(t *testing.T) {
	assert.Equal(t, Q1, QuarterOfMonth(time.March))
	assert.Equal(t, Q2, QuarterOfMonth(time.April))
	assert.Equal(t, Q3, QuarterOfMonth(time.September))
	assert.Equal(t, Q4, QuarterOfMonth(time.December))
}

func TestParseQuarter(t *testing.T) {
	q, err := ParseQuarter(" q3 ")
	require.NoError(t, err)
	assert.Equal(t, Q3, q)

	for _, raw := range []string{"", "Q0", "Q5", "3", "Q12"} {
		_, err := ParseQuarter(raw)
		assert.ErrorIs(t, err, ErrInvalidPeriod, raw)
	}
}

func TestResolveAsOf(t *testing.T) {
	now := time.Date(2023, time.May, 2, 0, 0, 0, 0, time.UTC)
	q, err := ResolveAsOf("", now)
	require.NoError(t, err)
	assert.Equal(t, Q2, q)

	q, err = ResolveAsOf("Q4", now)
	require.NoError(t, err)
	assert.Equal(t, Q4, q)
}

func TestExtendYearsForLTM(t *testing.T) {
	assert.Equal(t, []int{2020, 2021}, ExtendYearsForLTM([]int{2020, 2021}, Q4))
	assert.Equal(t, []int{2020, 2021, 2022}, ExtendYearsForLTM([]int{2022, 2021}, Q1))
	assert.Empty(t, ExtendYearsForLTM(nil, Q2))
}

func TestParseScenario(t *testing.T) {
	name, year, ok := ParseScenario("Actuals-2021")
	require.True(t, ok)
	assert.Equal(t, "Actuals", name)
	assert.Equal(t, 2021, year)

	for _, raw := range []string{"Actuals", "Actuals-", "-2021", "Budget-20x1"} {
		_, _, ok := ParseScenario(raw)
		assert.False(t, ok, raw)
	}
}

func TestBuildSubheadersFixedLayout(t *testing.T) {
	cols := BuildSubheaders(YearToDate, Q2, []int{2021, 2020})
	require.Len(t, cols, 2)
	assert.Equal(t, YearColumns{Year: 2020, Fields: []string{"Q1", "Q2", "Q3", "Q4", "Full Year"}}, cols[0])
	assert.Equal(t, YearColumns{Year: 2021, Fields: []string{"Q1", "Q2", "Q3", "Q4", "Full Year", "vs"}}, cols[1])
}

func TestBuildSubheadersTrailingWindow(t *testing.T) {
	cols := BuildSubheaders(LastTwelveMonths, Q2, []int{2020, 2021})
	require.Len(t, cols, 2)
	assert.Equal(t, []string{"Q3", "Q4"}, cols[0].Fields)
	// A two-year window has no earlier Full Year to compare against.
	assert.Equal(t, []string{"Q1", "Q2", "Full Year"}, cols[1].Fields)

	cols = BuildSubheaders(LastTwelveMonths, Q3, []int{2019, 2020, 2021, 2022})
	require.Len(t, cols, 4)
	assert.Equal(t, []string{"Q4"}, cols[0].Fields)
	assert.Equal(t, []string{"Q1", "Q2", "Q3", "Full Year", "vs", "Q4"}, cols[1].Fields)
	assert.Equal(t, []string{"Q1", "Q2", "Q3", "Full Year", "vs", "Q4"}, cols[2].Fields)
	assert.Equal(t, []string{"Q1", "Q2", "Q3", "Full Year", "vs"}, cols[3].Fields)

	headers, subheaders := flattenColumns(cols)
	assert.Equal(t, []string{"2019", "2020", "2021", "2022"}, headers)
	assert.Len(t, subheaders, 1+6+6+5)
}

func TestBuildSubheadersTrailingWindowEndingQ4(t *testing.T) {
	cols := BuildSubheaders(LastTwelveMonths, Q4, []int{2020, 2021})
	assert.Equal(t, BuildSubheaders(YearToYear, Q4, []int{2020, 2021}), cols)
}

func TestExpectedPeriods(t *testing.T) {
	n, ok := expectedPeriods(YearToYear, Q1)
	assert.True(t, ok)
	assert.Equal(t, 4, n)

	n, ok = expectedPeriods(YearToDate, Q3)
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	_, ok = expectedPeriods(LastTwelveMonths, Q2)
	assert.False(t, ok)
}
