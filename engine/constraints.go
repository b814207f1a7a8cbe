package engine

import (
	"math"

	"finsight/config"
)

// Feasibility ratio bands shared by the constraint model's risk level and
// the explainer's health tag, so the two classifications cannot drift apart.
const (
	ratioLow    = 1.20
	ratioMedium = 0.80
	ratioHigh   = 0.50
)

// ratioBand maps a feasible/required ratio onto a band index 0..3
// (0 = comfortable, 3 = critical).
func ratioBand(ratio float64) int {
	switch {
	case ratio >= ratioLow:
		return 0
	case ratio >= ratioMedium:
		return 1
	case ratio >= ratioHigh:
		return 2
	default:
		return 3
	}
}

var riskLevels = [4]string{RiskLow, RiskMedium, RiskHigh, RiskCritical}
var healthTags = [4]string{HealthOnTrack, HealthTight, HealthBehind, HealthAtRisk}

// BehavioralConstraintModel converts the forecast and the allocated share
// into a capped, realistic monthly saving figure. Four independent bounds
// are computed and the minimum wins:
//
//  1. surplus cap: people do not save their entire surplus
//  2. historical discipline: what positive months actually delivered
//  3. volatility adjustment: spiky cash flow lowers dependable capacity
//  4. liquidity safety: no discretionary saving while the reserve is thin
type BehavioralConstraintModel struct {
	cfg config.EngineConfig
}

// NewBehavioralConstraintModel creates a new constraint model
func NewBehavioralConstraintModel(cfg config.EngineConfig) *BehavioralConstraintModel {
	return &BehavioralConstraintModel{cfg: cfg}
}

// Apply computes the constraint result for one goal given its allocation fraction
func (m *BehavioralConstraintModel) Apply(ctx *FinancialContext, forecast SurplusForecast, fraction float64) ConstraintResult {
	bounds := m.computeBounds(ctx, forecast)

	maxFeasible := math.Max(0, math.Min(
		math.Min(bounds.SurplusCap, bounds.DisciplineCap),
		math.Min(bounds.VolatilityCap, bounds.LiquidityCap),
	))

	feasible := maxFeasible * fraction
	recommended := feasible * ctx.IncomeStability * m.cfg.SafetyFactor

	ratio := feasibilityRatio(feasible, ctx.RequiredMonthly)

	return ConstraintResult{
		MaxFeasibleTotal:   maxFeasible,
		FeasibleMonthly:    feasible,
		RecommendedMonthly: recommended,
		LiquidityOK:        ctx.LiquidityBufferMonths >= m.cfg.LowLiquidityMonths,
		BufferMonths:       ctx.LiquidityBufferMonths,
		RiskLevel:          riskLevels[ratioBand(ratio)],
		Bounds:             bounds,
	}
}

// computeBounds evaluates the four independent bounds
func (m *BehavioralConstraintModel) computeBounds(ctx *FinancialContext, forecast SurplusForecast) BoundSet {
	// Bound 1: behavioral surplus cap
	surplusCap := math.Max(0, m.cfg.SurplusCapRatio*forecast.Predicted)

	// Bound 2: historical discipline. New users without positive-surplus
	// history inherit bound 1 rather than being penalized for having none.
	disciplineCap := ctx.MedianPositiveSurplus
	if disciplineCap <= 0 {
		disciplineCap = surplusCap
	}

	// Bound 3: volatility-adjusted stable capacity, at most a 50% reduction
	penalty := math.Min(m.cfg.MaxVolatilityPenalty, m.cfg.MaxVolatilityPenalty*ctx.VolatilityFactor)
	volatilityCap := math.Max(0, forecast.Stable*(1-penalty))

	// Bound 4: liquidity safety
	liquidityCap := surplusCap
	switch {
	case ctx.LiquidityBufferMonths < m.cfg.CriticalLiquidityMonths:
		// Reserve critically low: saving stops entirely
		liquidityCap = 0
	case ctx.LiquidityBufferMonths < m.cfg.LowLiquidityMonths:
		liquidityCap = surplusCap * m.cfg.LowLiquidityCapRatio
	}

	return BoundSet{
		SurplusCap:    surplusCap,
		DisciplineCap: disciplineCap,
		VolatilityCap: volatilityCap,
		LiquidityCap:  liquidityCap,
	}
}

// feasibilityRatio guards the division when a goal needs nothing per month
// (already funded or no remaining amount): treat as comfortably covered.
func feasibilityRatio(feasible, required float64) float64 {
	if required <= 0 {
		return ratioLow
	}
	return feasible / required
}
