package kpi

import "math"

// Every formula below returns NA when an operand is not numeric or when the
// computation would divide by zero. Results are rounded to two decimals.

func divide(numerator, denominator Value) (float64, bool) {
	n, ok := numerator.Float()
	if !ok {
		return 0, false
	}
	d, ok := denominator.Float()
	if !ok || d == 0 {
		return 0, false
	}
	return n / d, true
}

// GrowthRate is the percentage change from prior to current.
func GrowthRate(current, prior Value) Value {
	ratio, ok := divide(current, prior)
	if !ok {
		return NA()
	}
	return Num(Round2((ratio - 1) * 100))
}

// EBITDAMargin is EBITDA as a percentage of revenue.
func EBITDAMargin(ebitda, revenue Value) Value {
	ratio, ok := divide(ebitda, revenue)
	if !ok {
		return NA()
	}
	return Num(Round2(ratio * 100))
}

// RuleOf40 adds the revenue growth rate and the EBITDA margin.
func RuleOf40(growth, margin Value) Value {
	g, ok := growth.Float()
	if !ok {
		return NA()
	}
	m, ok := margin.Float()
	if !ok {
		return NA()
	}
	return Num(Round2(g + m))
}

// GrossRetention is the share of the prior run rate kept after losses and downgrades.
func GrossRetention(priorRunRate, losses Value) Value {
	prior, ok := priorRunRate.Float()
	if !ok || prior == 0 {
		return NA()
	}
	lost, ok := losses.Float()
	if !ok {
		return NA()
	}
	return Num(Round2((prior - math.Abs(lost)) / prior * 100))
}

// NetRetention is gross retention plus the upsells booked on the same base.
func NetRetention(priorRunRate, losses, upsells Value) Value {
	prior, ok := priorRunRate.Float()
	if !ok || prior == 0 {
		return NA()
	}
	lost, ok := losses.Float()
	if !ok {
		return NA()
	}
	up, ok := upsells.Float()
	if !ok {
		return NA()
	}
	return Num(Round2((prior - math.Abs(lost) + up) / prior * 100))
}

// NewBookingsGrowth is the growth rate of new bookings.
func NewBookingsGrowth(current, prior Value) Value {
	return GrowthRate(current, prior)
}
