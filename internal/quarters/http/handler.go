package quartershttp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/kpinetwork/backend-sub000/internal/platform/httpx"
	"github.com/kpinetwork/backend-sub000/internal/quarters"
	"github.com/kpinetwork/backend-sub000/internal/shared"
)

const (
	// DefaultIdentityHeader carries the caller's username.
	DefaultIdentityHeader = "X-Kpi-User"
	requestTimeout        = 10 * time.Second
	maxYears              = 10
)

// Builder assembles quarters reports.
type Builder interface {
	Build(ctx context.Context, req quarters.Request) (quarters.Report, error)
}

// AccessService decides whether a caller sees every company unmasked.
type AccessService interface {
	HasFullAccess(ctx context.Context, username string) (bool, error)
}

// Handler serves the quarters peer comparison report.
type Handler struct {
	logger         *slog.Logger
	builder        Builder
	access         AccessService
	validator      *validator.Validate
	identityHeader string
	filterKeys     []string
}

// NewHandler wires a Handler. An empty identityHeader selects DefaultIdentityHeader.
func NewHandler(logger *slog.Logger, builder Builder, access AccessService, identityHeader string) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(identityHeader) == "" {
		identityHeader = DefaultIdentityHeader
	}
	return &Handler{
		logger:         logger,
		builder:        builder,
		access:         access,
		validator:      validator.New(),
		identityHeader: identityHeader,
		filterKeys:     quarters.FilterKeys(),
	}
}

// MountRoutes registers the report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/reports/quarters", h.handleQuarters)
	r.Get("/reports/quarters/metrics", h.handleMetrics)
}

type reportQuery struct {
	CompanyID  string `validate:"omitempty,max=64"`
	ReportType string `validate:"required,oneof=year_to_year year_to_date last_twelve_months"`
	Metric     string `validate:"required,max=64"`
	Scenario   string `validate:"required,oneof=actuals budget actuals_budget"`
	Years      []int  `validate:"required,min=1,max=10,dive,min=1900,max=2999"`
	Period     string `validate:"omitempty,oneof=Q1 Q2 Q3 Q4"`
}

func (h *Handler) handleQuarters(w http.ResponseWriter, r *http.Request) {
	if h.builder == nil || h.access == nil {
		http.Error(w, http.StatusText(http.StatusNotImplemented), http.StatusNotImplemented)
		return
	}

	identity, ok := h.identity(r)
	if !ok {
		httpx.RespondError(w, fmt.Errorf("%w: missing %s header", httpx.ErrUnauthorized, h.identityHeader))
		return
	}
	ctx := shared.ContextWithIdentity(r.Context(), identity)

	req, err := h.parseRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	req.Username = identity.Username

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	full, err := h.access.HasFullAccess(ctx, identity.Username)
	if err != nil {
		h.handleServerError(w, "resolve access", err)
		return
	}
	req.Access = full

	report, err := h.builder.Build(ctx, req)
	if err != nil {
		if isRequestError(err) {
			httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
			return
		}
		h.handleServerError(w, "build quarters report", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string][]string{
		"metrics": quarters.Metrics(),
		"filters": h.filterKeys,
	})
}

func (h *Handler) identity(r *http.Request) (shared.Identity, bool) {
	username := strings.TrimSpace(r.Header.Get(h.identityHeader))
	if username == "" {
		return shared.Identity{}, false
	}
	return shared.Identity{Username: username}, true
}

func (h *Handler) parseRequest(r *http.Request) (quarters.Request, error) {
	q := r.URL.Query()
	years, err := parseYears(q["years"])
	if err != nil {
		return quarters.Request{}, err
	}
	form := reportQuery{
		CompanyID:  strings.TrimSpace(q.Get("company_id")),
		ReportType: strings.TrimSpace(q.Get("report_type")),
		Metric:     strings.TrimSpace(q.Get("metric")),
		Scenario:   strings.TrimSpace(q.Get("scenario_type")),
		Years:      years,
		Period:     strings.ToUpper(strings.TrimSpace(q.Get("period"))),
	}
	if err := h.validator.Struct(form); err != nil {
		return quarters.Request{}, validationError(err)
	}

	fromMain := false
	if raw := strings.TrimSpace(q.Get("from_main")); raw != "" {
		fromMain, err = strconv.ParseBool(raw)
		if err != nil {
			return quarters.Request{}, fmt.Errorf("%w: from_main must be a boolean", httpx.ErrValidation)
		}
	}

	filters := quarters.Filters{}
	for _, key := range h.filterKeys {
		if values := splitList(q[key]); len(values) > 0 {
			filters[key] = values
		}
	}

	return quarters.Request{
		CompanyID:  form.CompanyID,
		ReportType: quarters.ReportingMode(form.ReportType),
		Metric:     form.Metric,
		Scenario:   quarters.ScenarioType(form.Scenario),
		Years:      form.Years,
		Period:     form.Period,
		FromMain:   fromMain,
		Filters:    filters,
	}, nil
}

// parseYears accepts repeated and comma-separated years.
func parseYears(raw []string) ([]int, error) {
	values := splitList(raw)
	if len(values) > maxYears {
		return nil, fmt.Errorf("%w: at most %d years", httpx.ErrValidation, maxYears)
	}
	years := make([]int, 0, len(values))
	for _, v := range values {
		year, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid year %q", httpx.ErrValidation, v)
		}
		years = append(years, year)
	}
	return years, nil
}

func splitList(raw []string) []string {
	var out []string
	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field())+" ("+fe.Tag()+")")
	}
	return fmt.Errorf("%w: %s", httpx.ErrValidation, strings.Join(fields, ", "))
}

func isRequestError(err error) bool {
	for _, target := range []error{
		quarters.ErrUnknownMetric,
		quarters.ErrInvalidReportType,
		quarters.ErrInvalidScenario,
		quarters.ErrInvalidYear,
		quarters.ErrInvalidPeriod,
		quarters.ErrInvalidFilter,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (h *Handler) handleServerError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, slog.Any("error", err))
	httpx.RespondError(w, err)
}
