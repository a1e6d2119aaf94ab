package quarters

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx shared by pools and transactions.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresRepository reads period records from the financial tables.
type PostgresRepository struct {
	db Querier
}

// NewPostgresRepository constructs a repository on a pool or transaction.
func NewPostgresRepository(db Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const recordsSelectSQL = `SELECT c.id, c.name, s.name AS scenario, m.name AS metric, m.period_name, m.value`

const recordsFromSQL = `
FROM company c
JOIN financial_scenario s ON s.company_id = c.id
JOIN metric m ON m.scenario_id = s.id
WHERE c.is_public = TRUE
  AND m.name = $1
  AND s.year = ANY($2)
  AND s.type = ANY($3)`

const recordsOrderSQL = `
ORDER BY c.name, c.id, s.year, m.period_name`

const fullYearColumnsSQL = `,
  SUM(m.value) FILTER (WHERE m.period_name = ANY($4)) OVER (PARTITION BY s.id) AS full_year_average,
  COUNT(m.value) FILTER (WHERE m.period_name = ANY($4)) OVER (PARTITION BY s.id) AS count_periods`

var filterColumns = map[string]string{
	"sector":           "c.sector",
	"vertical":         "c.vertical",
	"investor_profile": "c.inves_profile_name",
	"growth_profile":   "c.growth_profile",
	"size_profile":     "c.size_cohort",
	"margin_group":     "c.margin_group",
}

const tagFilter = "tag"

// MetricRecordsByQuarters returns one scenario of a metric. Every row carries
// the sum and the count of the scenario's quarters inside the window.
func (r *PostgresRepository) MetricRecordsByQuarters(ctx context.Context, q RecordQuery) ([]PeriodRecord, error) {
	window := make([]string, 0, 4)
	for _, quarter := range windowQuarters(q.Mode, q.AsOf) {
		window = append(window, quarter.String())
	}
	args := []any{q.Metric, q.Years, []string{q.Scenario}, window}
	return r.fetch(ctx, recordsSelectSQL+fullYearColumnsSQL, args, q.Filters, true)
}

// QuartersYearToYearRecords returns Actuals and Budget rows of a metric.
func (r *PostgresRepository) QuartersYearToYearRecords(ctx context.Context, q RecordQuery) ([]PeriodRecord, error) {
	args := []any{q.Metric, q.Years, []string{ScenarioNameActuals, ScenarioNameBudget}}
	return r.fetch(ctx, recordsSelectSQL, args, q.Filters, false)
}

// MetricRecordsWithBaseScenarios returns one scenario of a base metric.
func (r *PostgresRepository) MetricRecordsWithBaseScenarios(ctx context.Context, q RecordQuery) ([]PeriodRecord, error) {
	args := []any{q.Metric, q.Years, []string{q.Scenario}}
	return r.fetch(ctx, recordsSelectSQL, args, q.Filters, false)
}

func (r *PostgresRepository) fetch(ctx context.Context, selectSQL string, args []any, filters Filters, withFullYear bool) ([]PeriodRecord, error) {
	where, args, err := filterSQL(filters, args)
	if err != nil {
		return nil, err
	}
	sql := selectSQL + recordsFromSQL + where + recordsOrderSQL
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("quarters: query records: %w", describe(err))
	}
	defer rows.Close()

	var records []PeriodRecord
	for rows.Next() {
		var rec PeriodRecord
		dest := []any{&rec.CompanyID, &rec.CompanyName, &rec.Scenario, &rec.Metric, &rec.PeriodName, &rec.Value}
		var count *int64
		if withFullYear {
			dest = append(dest, &rec.FullYearAverage, &count)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("quarters: scan record: %w", err)
		}
		if count != nil {
			n := int(*count)
			rec.CountPeriods = &n
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("quarters: read records: %w", describe(err))
	}
	return records, nil
}

// filterSQL appends peer filter predicates in key order.
func filterSQL(filters Filters, args []any) (string, []any, error) {
	keys := make([]string, 0, len(filters))
	for key, values := range filters {
		if len(values) == 0 {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		args = append(args, filters[key])
		placeholder := "$" + strconv.Itoa(len(args))
		if key == tagFilter {
			b.WriteString("\n  AND EXISTS (SELECT 1 FROM tag_company tc WHERE tc.company_id = c.id AND tc.tag_id = ANY(" + placeholder + "))")
			continue
		}
		column, ok := filterColumns[key]
		if !ok {
			return "", nil, fmt.Errorf("%w: %s", ErrInvalidFilter, key)
		}
		b.WriteString("\n  AND " + column + " = ANY(" + placeholder + ")")
	}
	return b.String(), args, nil
}

// FilterKeys lists the peer filters the repository understands.
func FilterKeys() []string {
	keys := make([]string, 0, len(filterColumns)+1)
	for key := range filterColumns {
		keys = append(keys, key)
	}
	keys = append(keys, tagFilter)
	sort.Strings(keys)
	return keys
}

func describe(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%s (%s): %w", pgErr.Message, pgErr.Code, err)
	}
	return err
}
