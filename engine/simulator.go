package engine

import (
	"math"
	"math/rand"
	"sort"

	"finsight/config"
)

// FeasibilitySimulator runs the Monte Carlo accumulation simulation: many
// independent paths of month-by-month saving under surplus noise, income
// disruption and behavioral caps. Fully deterministic for a given seed.
type FeasibilitySimulator struct {
	cfg config.EngineConfig
}

// NewFeasibilitySimulator creates a new simulator
func NewFeasibilitySimulator(cfg config.EngineConfig) *FeasibilitySimulator {
	return &FeasibilitySimulator{cfg: cfg}
}

// Run simulates accumulation toward the goal target and returns the outcome
// distribution. The allocation fraction scales each month's share of sampled
// capacity; the constraint result supplies the hard monthly ceiling.
func (s *FeasibilitySimulator) Run(ctx *FinancialContext, forecast SurplusForecast, constraint ConstraintResult, fraction float64, seed int64) SimulationResult {
	paths := s.cfg.SimulationPaths
	if paths <= 0 {
		paths = 750
	}

	months := int(math.Ceil(ctx.MonthsLeft))
	if months < 1 {
		months = 1
	}
	if months > s.cfg.MaxSimulationMonths {
		months = s.cfg.MaxSimulationMonths
	}

	result := SimulationResult{Paths: paths, SimulatedMonths: months, Seed: seed}

	// Already funded: nothing to simulate
	if ctx.CurrentAmount >= ctx.TargetAmount {
		result.Probability = 1.0
		result.P5, result.P50, result.P95 = ctx.CurrentAmount, ctx.CurrentAmount, ctx.CurrentAmount
		return result
	}

	surplusMean := forecast.Predicted
	// Never degenerate to zero spread
	surplusStd := math.Max(forecast.StdDev, 0.05*math.Abs(surplusMean))

	rng := rand.New(rand.NewSource(seed))

	finalBalances := make([]float64, paths)
	completionMonths := make([]float64, paths)
	successes := 0
	var shortfallSum float64
	failures := 0

	for p := 0; p < paths; p++ {
		balance := ctx.CurrentAmount
		completed := 0

		for m := 1; m <= months; m++ {
			sample := rng.NormFloat64()*surplusStd + surplusMean
			if sample < 0 {
				sample = 0
			}

			// Income disruption: unstable earners lose part of a month's
			// surplus with probability 1 - stability
			if ctx.IncomeStability < 1.0 && rng.Float64() < 1.0-ctx.IncomeStability {
				sample *= 0.15 + rng.Float64()*0.50
			}

			behavioralCap := s.cfg.SurplusCapRatio * sample
			monthTarget := fraction * sample

			contribution := math.Min(monthTarget, math.Min(behavioralCap, constraint.FeasibleMonthly))
			if contribution < 0 {
				contribution = 0
			}

			balance += contribution
			if completed == 0 && balance >= ctx.TargetAmount {
				completed = m
				// Keep consuming the month loop so every path draws the
				// same random sequence regardless of when it completes.
			}
		}

		finalBalances[p] = balance
		if completed > 0 {
			successes++
			completionMonths[p] = float64(completed)
		} else {
			completionMonths[p] = float64(months)
			failures++
			if ctx.TargetAmount > 0 {
				shortfallSum += (ctx.TargetAmount - balance) / ctx.TargetAmount
			}
		}
	}

	result.Probability = clamp(float64(successes)/float64(paths), 0, 1)

	sort.Float64s(finalBalances)
	result.P5 = percentileSorted(finalBalances, 0.05)
	result.P50 = percentileSorted(finalBalances, 0.50)
	result.P95 = percentileSorted(finalBalances, 0.95)

	result.ExpectedMonths = median(completionMonths)
	if failures > 0 {
		result.AvgShortfall = shortfallSum / float64(failures)
	}

	return result
}
