package quarters

import (
	"fmt"
	"sort"

	"github.com/kpinetwork/backend-sub000/internal/kpi"
)

// Base metric names as stored by the repository.
const (
	MetricRevenue             = "revenue"
	MetricEBITDA              = "ebitda"
	MetricRunRateRevenue      = "run_rate_revenue"
	MetricLossesAndDowngrades = "losses_and_downgrades"
	MetricUpsells             = "upsells"
	MetricNewBookings         = "new_bookings"
	MetricHeadcount           = "headcount"
)

// Derived metric names.
const (
	MetricGrowth            = "growth"
	MetricRuleOf40          = "rule_of_40"
	MetricGrossRetention    = "gross_retention"
	MetricNetRetention      = "net_retention"
	MetricNewBookingsGrowth = "new_bookings_growth"
)

// QuarterInputs maps base metric name to the value of one quarter.
type QuarterInputs map[string]kpi.Value

// Formula derives a quarter value from the current and prior year inputs of
// the same quarter.
type Formula func(current, prior QuarterInputs) kpi.Value

// Pipeline describes how a report metric is produced.
type Pipeline struct {
	Metric      string
	BaseMetrics []string
	// Formula is nil for metrics reported as stored.
	Formula Formula
}

// Derived reports whether the pipeline applies a formula.
func (p Pipeline) Derived() bool { return p.Formula != nil }

var standardMetrics = []string{
	MetricRevenue,
	MetricEBITDA,
	"cost_of_goods",
	"gross_profit",
	"sales_and_marketing",
	"general_and_administration",
	"research_and_development",
	"cash_and_equivalents",
	MetricRunRateRevenue,
	MetricLossesAndDowngrades,
	MetricUpsells,
	MetricNewBookings,
	MetricHeadcount,
	"customer_lifetime_value",
	"customer_acquisition_costs",
}

var derivedPipelines = map[string]Pipeline{
	MetricGrowth: {
		Metric:      MetricGrowth,
		BaseMetrics: []string{MetricRevenue},
		Formula: func(cur, prior QuarterInputs) kpi.Value {
			return kpi.GrowthRate(cur[MetricRevenue], prior[MetricRevenue])
		},
	},
	MetricRuleOf40: {
		Metric:      MetricRuleOf40,
		BaseMetrics: []string{MetricRevenue, MetricEBITDA},
		Formula: func(cur, prior QuarterInputs) kpi.Value {
			growth := kpi.GrowthRate(cur[MetricRevenue], prior[MetricRevenue])
			margin := kpi.EBITDAMargin(cur[MetricEBITDA], cur[MetricRevenue])
			return kpi.RuleOf40(growth, margin)
		},
	},
	MetricGrossRetention: {
		Metric:      MetricGrossRetention,
		BaseMetrics: []string{MetricRunRateRevenue, MetricLossesAndDowngrades},
		Formula: func(cur, prior QuarterInputs) kpi.Value {
			return kpi.GrossRetention(prior[MetricRunRateRevenue], cur[MetricLossesAndDowngrades])
		},
	},
	MetricNetRetention: {
		Metric:      MetricNetRetention,
		BaseMetrics: []string{MetricRunRateRevenue, MetricLossesAndDowngrades, MetricUpsells},
		Formula: func(cur, prior QuarterInputs) kpi.Value {
			return kpi.NetRetention(prior[MetricRunRateRevenue], cur[MetricLossesAndDowngrades], cur[MetricUpsells])
		},
	},
	MetricNewBookingsGrowth: {
		Metric:      MetricNewBookingsGrowth,
		BaseMetrics: []string{MetricNewBookings},
		Formula: func(cur, prior QuarterInputs) kpi.Value {
			return kpi.NewBookingsGrowth(cur[MetricNewBookings], prior[MetricNewBookings])
		},
	},
}

var registry = buildRegistry()

func buildRegistry() map[string]Pipeline {
	out := make(map[string]Pipeline, len(standardMetrics)+len(derivedPipelines))
	for _, name := range standardMetrics {
		out[name] = Pipeline{Metric: name, BaseMetrics: []string{name}}
	}
	for name, p := range derivedPipelines {
		out[name] = p
	}
	return out
}

// ResolvePipeline looks up the pipeline of metric.
func ResolvePipeline(metric string) (Pipeline, error) {
	p, ok := registry[metric]
	if !ok {
		return Pipeline{}, fmt.Errorf("%w: %s", ErrUnknownMetric, metric)
	}
	return p, nil
}

// Metrics lists every reportable metric name, sorted.
func Metrics() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
