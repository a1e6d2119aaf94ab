package quarters

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpinetwork/backend-sub000/internal/kpi"
)

var recordColumns = []string{"id", "name", "scenario", "metric", "period_name", "value"}

func TestMetricRecordsByQuarters(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	window := 30.0
	periods := int64(2)
	mock.ExpectQuery(`SUM\(m.value\) FILTER \(WHERE m.period_name = ANY\(\$4\)\) OVER \(PARTITION BY s.id\) AS full_year_average,\s+COUNT\(m.value\) FILTER`).
		WithArgs(MetricRevenue, []int{2021}, []string{ScenarioNameActuals}, []string{"Q1", "Q2"}).
		WillReturnRows(pgxmock.NewRows(append(recordColumns, "full_year_average", "count_periods")).
			AddRow("c1", "Acme", "Actuals-2021", MetricRevenue, "Q1", num(10), &window, &periods).
			AddRow("c1", "Acme", "Actuals-2021", MetricRevenue, "Q2", num(20), &window, &periods).
			AddRow("c1", "Acme", "Actuals-2021", MetricRevenue, "Full-year", num(100), &window, &periods))

	records, err := NewPostgresRepository(mock).MetricRecordsByQuarters(context.Background(), RecordQuery{
		Mode:     YearToDate,
		Metric:   MetricRevenue,
		Scenario: ScenarioNameActuals,
		Years:    []int{2021},
		AsOf:     Q2,
	})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "c1", records[0].CompanyID)
	assert.Equal(t, 10.0, *records[0].Value)
	for _, r := range records {
		require.NotNil(t, r.CountPeriods)
		assert.Equal(t, 2, *r.CountPeriods)
		assert.Equal(t, 30.0, *r.FullYearAverage)
	}
	require.NoError(t, mock.ExpectationsWereMet())

	g := normalizer{mode: YearToDate, asOf: Q2}.normalize([]int{2021}, records, MetricRevenue, "")
	assert.Equal(t, kpi.Num(30), g.companies[0].rows[0].FullYear)
}

func TestQuartersYearToYearRecords(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM company c").
		WithArgs(MetricEBITDA, []int{2020, 2021}, []string{ScenarioNameActuals, ScenarioNameBudget}).
		WillReturnRows(pgxmock.NewRows(recordColumns).
			AddRow("c1", "Acme", "Budget-2020", MetricEBITDA, "Q3", (*float64)(nil)))

	records, err := NewPostgresRepository(mock).QuartersYearToYearRecords(context.Background(), RecordQuery{
		Metric: MetricEBITDA,
		Years:  []int{2020, 2021},
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].Value)
	assert.Equal(t, "Budget-2020", records[0].Scenario)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMetricRecordsWithBaseScenariosAppliesFilters(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`c.sector = ANY\(\$4\)\s+AND EXISTS \(SELECT 1 FROM tag_company tc WHERE tc.company_id = c.id AND tc.tag_id = ANY\(\$5\)\)\s+AND c.vertical = ANY\(\$6\)`).
		WithArgs(MetricRevenue, []int{2021}, []string{ScenarioNameBudget}, []string{"SaaS"}, []string{"t1"}, []string{"Fintech", "Health"}).
		WillReturnRows(pgxmock.NewRows(recordColumns))

	records, err := NewPostgresRepository(mock).MetricRecordsWithBaseScenarios(context.Background(), RecordQuery{
		Metric:   MetricRevenue,
		Scenario: ScenarioNameBudget,
		Years:    []int{2021},
		Filters: Filters{
			"vertical": {"Fintech", "Health"},
			"sector":   {"SaaS"},
			"tag":      {"t1"},
			"size":     nil,
		},
	})
	require.NoError(t, err)
	assert.Empty(t, records)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryRejectsUnknownFilter(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = NewPostgresRepository(mock).MetricRecordsWithBaseScenarios(context.Background(), RecordQuery{
		Metric:  MetricRevenue,
		Years:   []int{2021},
		Filters: Filters{"country": {"US"}},
	})
	require.ErrorIs(t, err, ErrInvalidFilter)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryWrapsPgError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	pgErr := &pgconn.PgError{Code: "42P01", Message: `relation "metric" does not exist`}
	mock.ExpectQuery("FROM company c").
		WithArgs(MetricRevenue, []int{2021}, []string{ScenarioNameActuals, ScenarioNameBudget}).
		WillReturnError(pgErr)

	_, err = NewPostgresRepository(mock).QuartersYearToYearRecords(context.Background(), RecordQuery{Metric: MetricRevenue, Years: []int{2021}})
	require.Error(t, err)
	var target *pgconn.PgError
	require.True(t, errors.As(err, &target))
	assert.Contains(t, err.Error(), "42P01")
}

func TestFilterKeys(t *testing.T) {
	assert.Equal(t, []string{"growth_profile", "investor_profile", "margin_group", "sector", "size_profile", "tag", "vertical"}, FilterKeys())
}
