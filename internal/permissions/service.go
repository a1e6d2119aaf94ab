package permissions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx shared by pools and transactions.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Service reads permissions and profile ranges from Postgres.
type Service struct {
	db Querier
}

// NewService constructs a Service.
func NewService(db Querier) *Service {
	return &Service{db: db}
}

const companyPermissionsSQL = `SELECT DISTINCT company_id
FROM company_permission
WHERE username = $1
ORDER BY company_id`

// CompanyPermissions lists the company ids the user may see unmasked.
func (s *Service) CompanyPermissions(ctx context.Context, username string) ([]string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrUserRequired
	}
	rows, err := s.db.Query(ctx, companyPermissionsSQL, username)
	if err != nil {
		return nil, fmt.Errorf("permissions: company permissions: %w", describe(err))
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("permissions: scan company permissions: %w", err)
	}
	return ids, nil
}

const fullAccessSQL = `SELECT EXISTS (
	SELECT 1 FROM user_role WHERE username = $1 AND role = $2
)`

// HasFullAccess reports whether the user holds the admin role.
func (s *Service) HasFullAccess(ctx context.Context, username string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return false, ErrUserRequired
	}
	var ok bool
	if err := s.db.QueryRow(ctx, fullAccessSQL, username, AdminRole).Scan(&ok); err != nil {
		return false, fmt.Errorf("permissions: full access: %w", describe(err))
	}
	return ok, nil
}

const profileRangesSQL = `SELECT label, min_value, max_value
FROM value_range
WHERE metric = $1
ORDER BY min_value NULLS FIRST`

// ProfileRanges loads the bucketing table of a metric.
func (s *Service) ProfileRanges(ctx context.Context, metric string) ([]ProfileRange, error) {
	rows, err := s.db.Query(ctx, profileRangesSQL, metric)
	if err != nil {
		return nil, fmt.Errorf("permissions: profile ranges: %w", describe(err))
	}
	defer rows.Close()
	var ranges []ProfileRange
	for rows.Next() {
		var r ProfileRange
		var label *string
		if err := rows.Scan(&label, &r.Min, &r.Max); err != nil {
			return nil, fmt.Errorf("permissions: scan profile range: %w", err)
		}
		if label != nil {
			r.Label = strings.TrimSpace(*label)
		}
		ranges = append(ranges, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("permissions: profile ranges: %w", describe(err))
	}
	return ranges, nil
}

// RangeFromValue buckets v into ranges.
func (s *Service) RangeFromValue(v float64, ranges []ProfileRange) string {
	return RangeFromValue(v, ranges)
}

// AnonymizedName masks a company's display name.
func (s *Service) AnonymizedName(companyID string) string {
	return AnonymizedName(companyID)
}

func describe(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%s (%s): %w", pgErr.Message, pgErr.Code, err)
	}
	return err
}
