package engine

import (
	"math"

	"finsight/config"
)

// SurplusForecaster turns the financial context into a robust estimate of
// expected monthly surplus. It tries an ordered ladder of strategies and tags
// the result with which one produced it:
//
//  1. history: trimmed statistics over the observed net-surplus series
//  2. declared_income: declared income minus baseline expenses, wide band
//  3. none: conservative zero estimate for users with nothing to go on
//
// It never fails; thin data yields a wide band and low confidence instead.
type SurplusForecaster struct {
	cfg config.EngineConfig
}

// NewSurplusForecaster creates a new surplus forecaster
func NewSurplusForecaster(cfg config.EngineConfig) *SurplusForecaster {
	return &SurplusForecaster{cfg: cfg}
}

// Forecast produces the surplus estimate for a context
func (f *SurplusForecaster) Forecast(ctx *FinancialContext) SurplusForecast {
	if fc, ok := f.fromHistory(ctx); ok {
		return fc
	}
	if fc, ok := f.fromDeclaredIncome(ctx); ok {
		return fc
	}
	return f.empty(ctx)
}

// fromHistory estimates from the observed surplus series using a trimmed
// mean, so a single anomalous month cannot dominate the forecast.
func (f *SurplusForecaster) fromHistory(ctx *FinancialContext) (SurplusForecast, bool) {
	var series []float64
	for i, surplus := range ctx.MonthlySurplus {
		if i < len(ctx.ObservedMask) && ctx.ObservedMask[i] {
			series = append(series, surplus)
		}
	}
	if len(series) < f.cfg.MinMonthsObserved {
		return SurplusForecast{}, false
	}

	predicted := trimmedMean(series)
	std := stdDev(series)
	if math.IsNaN(predicted) || math.IsInf(predicted, 0) {
		return SurplusForecast{}, false
	}

	confidence := 0.55
	if ctx.HasEnoughData {
		confidence = 0.85
	}
	confidence = clamp(confidence-0.2*ctx.VolatilityFactor, 0.3, 0.95)

	return f.assemble(ctx, predicted, std, confidence, ForecastFromHistory), true
}

// fromDeclaredIncome falls back to declared income minus the expense
// baseline, with a deliberately wide band reflecting the missing history.
func (f *SurplusForecaster) fromDeclaredIncome(ctx *FinancialContext) (SurplusForecast, bool) {
	if ctx.MonthlyIncome <= 0 {
		return SurplusForecast{}, false
	}
	predicted := ctx.MonthlyIncome - ctx.AvgExpense6M
	std := 0.25 * ctx.MonthlyIncome
	return f.assemble(ctx, predicted, std, 0.40, ForecastFromDeclared), true
}

// empty is the terminal strategy: no income signal at all. Zero estimate,
// minimal confidence, handled downstream as fully degraded.
func (f *SurplusForecaster) empty(ctx *FinancialContext) SurplusForecast {
	return f.assemble(ctx, 0, 0, 0.15, ForecastEmpty)
}

func (f *SurplusForecaster) assemble(ctx *FinancialContext, predicted, std, confidence float64, source ForecastSource) SurplusForecast {
	stable := predicted
	if predicted > 0 {
		// Volatility dampening: the stable figure is what a spiky spender
		// can actually count on month over month.
		stable = predicted * (1 - 0.25*ctx.VolatilityFactor)
	}

	return SurplusForecast{
		Predicted:         predicted,
		StdDev:            std,
		Stable:            stable,
		PredictedExpenses: ctx.AvgExpense6M,
		ConfidenceLow:     predicted - 1.645*std,
		ConfidenceHigh:    predicted + 1.645*std,
		Confidence:        confidence,
		Source:            source,
	}
}
