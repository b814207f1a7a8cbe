package engine

import (
	"fmt"
	"math"
	"strings"

	"finsight/config"
	"finsight/helpers"
)

// maxNoteLength caps the persisted feasibility note
const maxNoteLength = 2000

// ExplanationGenerator derives the human-auditable side of an assessment:
// drivers, a three-tier savings plan, a recalibrated timeline, counterfactual
// scenarios and a plain-text summary. Counterfactuals are evaluated
// analytically through the constraint bounds, not by re-running the
// simulation.
type ExplanationGenerator struct {
	cfg         config.EngineConfig
	constraints *BehavioralConstraintModel
}

// NewExplanationGenerator creates a new explanation generator
func NewExplanationGenerator(cfg config.EngineConfig) *ExplanationGenerator {
	return &ExplanationGenerator{
		cfg:         cfg,
		constraints: NewBehavioralConstraintModel(cfg),
	}
}

// Generate assembles the explanation for one assessment
func (g *ExplanationGenerator) Generate(ctx *FinancialContext, forecast SurplusForecast, fraction float64, constraint ConstraintResult, sim SimulationResult) Explanation {
	ratio := feasibilityRatio(constraint.FeasibleMonthly, ctx.RequiredMonthly)

	expl := Explanation{
		// Same ratio bands as the constraint model's risk level, through the
		// shared ratioBand helper.
		HealthTag: healthTags[ratioBand(ratio)],
		Plan: SavingsPlan{
			RequiredMonthly:    ctx.RequiredMonthly,
			FeasibleMonthly:    constraint.FeasibleMonthly,
			RecommendedMonthly: constraint.RecommendedMonthly,
			AllocatedMonthly:   fraction * forecast.Stable,
		},
		Timeline: g.timeline(ctx, constraint.FeasibleMonthly),
	}

	expl.PositiveDrivers = g.positiveDrivers(ctx, forecast, constraint)
	expl.NegativeDrivers = g.negativeDrivers(ctx, constraint, ratio)
	expl.Scenarios = g.scenarios(ctx, forecast, fraction, constraint, ratio, expl.Timeline)
	expl.Summary = g.summary(ctx, sim, constraint, expl)

	return expl
}

// timeline recomputes the realistic completion schedule from the feasible rate
func (g *ExplanationGenerator) timeline(ctx *FinancialContext, feasible float64) Timeline {
	tl := Timeline{OriginalMonths: ctx.MonthsLeft, RealisticMonths: ctx.MonthsLeft}
	if ctx.RemainingAmount <= 0 || feasible >= ctx.RequiredMonthly {
		return tl
	}
	if feasible > 0 {
		tl.RealisticMonths = ctx.RemainingAmount / feasible
	} else {
		// Nothing can be saved at all; report the simulation horizon
		tl.RealisticMonths = float64(g.cfg.MaxSimulationMonths)
	}
	tl.DelayMonths = math.Max(tl.RealisticMonths-ctx.MonthsLeft, 0)
	return tl
}

func (g *ExplanationGenerator) positiveDrivers(ctx *FinancialContext, forecast SurplusForecast, constraint ConstraintResult) []Driver {
	var drivers []Driver

	if ctx.ContributionStreak >= 2 {
		drivers = append(drivers, Driver{
			Code:  "saving_streak",
			Label: fmt.Sprintf("Saved at the required rate for %d straight months", ctx.ContributionStreak),
		})
	}
	if ctx.LiquidityBufferMonths >= 2 {
		drivers = append(drivers, Driver{
			Code:  "healthy_buffer",
			Label: fmt.Sprintf("Liquidity buffer covers %.1f months of essentials", ctx.LiquidityBufferMonths),
		})
	}
	if ctx.IncomeStability >= 0.9 {
		drivers = append(drivers, Driver{Code: "stable_income", Label: "Stable income"})
	}
	if ctx.Progress >= 0.25 {
		drivers = append(drivers, Driver{
			Code:  "good_progress",
			Label: fmt.Sprintf("Already %.0f%% of the way there", ctx.Progress*100),
		})
	}
	if ctx.RequiredMonthly > 0 && forecast.Predicted >= ctx.RequiredMonthly {
		drivers = append(drivers, Driver{
			Code:  "surplus_covers_rate",
			Label: "Monthly surplus exceeds the required saving rate",
		})
	}
	if ctx.AnomalyCount == 0 && ctx.HasEnoughData {
		drivers = append(drivers, Driver{Code: "no_anomalies", Label: "No unusually large transactions recently"})
	}

	return drivers
}

func (g *ExplanationGenerator) negativeDrivers(ctx *FinancialContext, constraint ConstraintResult, ratio float64) []Driver {
	var drivers []Driver

	if ctx.VolatilityFactor > 0.5 {
		drivers = append(drivers, Driver{Code: "high_volatility", Label: "Monthly expenses are highly volatile"})
	}
	if ctx.AvgExpense6M > 0 && ctx.DiscretionarySpend/ctx.AvgExpense6M > 0.4 {
		drivers = append(drivers, Driver{
			Code:  "high_discretionary",
			Label: "Discretionary spending is a large share of expenses",
		})
	}
	if ctx.MissedMonths >= 3 {
		drivers = append(drivers, Driver{
			Code:  "missed_months",
			Label: fmt.Sprintf("Fell short of the required rate in %d recent months", ctx.MissedMonths),
		})
	}
	if ctx.AnomalyCount >= 3 {
		drivers = append(drivers, Driver{
			Code:  "frequent_anomalies",
			Label: fmt.Sprintf("%d unusually large transactions in the last 3 months", ctx.AnomalyCount),
		})
	}
	if competing := len(ctx.SiblingGoals) - 1; competing >= 2 {
		drivers = append(drivers, Driver{
			Code:  "competing_goals",
			Label: fmt.Sprintf("Competing with %d other active goals for the same surplus", competing),
		})
	}
	if !constraint.LiquidityOK {
		label := "Liquidity buffer is below the safety threshold"
		if ctx.LiquidityBufferMonths < g.cfg.CriticalLiquidityMonths {
			label = "Liquidity buffer is critically low; saving is paused"
		}
		drivers = append(drivers, Driver{Code: "low_liquidity", Label: label})
	}
	if ctx.LifestyleDrift > 0.05 {
		drivers = append(drivers, Driver{Code: "lifestyle_drift", Label: "Discretionary spending is trending upward"})
	}
	if ctx.RequiredMonthly > 0 && ratio < ratioHigh {
		drivers = append(drivers, Driver{
			Code:  "severe_shortfall",
			Label: "Feasible saving covers less than half of the required rate",
		})
	}

	return drivers
}

// scenarios builds up to four counterfactuals by shifting the forecast (or
// the deadline) and re-running the bound formulas.
func (g *ExplanationGenerator) scenarios(ctx *FinancialContext, forecast SurplusForecast, fraction float64, constraint ConstraintResult, ratio float64, tl Timeline) []Scenario {
	var scenarios []Scenario
	baseProb := estimateProbability(ratio)

	// 1. Trim the largest discretionary category by 20%
	if group, avg := topCategory(ctx.CategoryAvg); avg > 0 {
		delta := 0.20 * avg
		scenarios = append(scenarios, g.surplusScenario(
			ctx, forecast, fraction, constraint, baseProb, tl,
			"trim_"+group,
			fmt.Sprintf("Reduce %s spend by 20%% (frees %s/month)", group, helpers.FormatINR(delta)),
			delta,
		))
	}

	// 2. Cut all discretionary spend by 15%
	if ctx.DiscretionarySpend > 0 {
		delta := 0.15 * ctx.DiscretionarySpend
		scenarios = append(scenarios, g.surplusScenario(
			ctx, forecast, fraction, constraint, baseProb, tl,
			"cut_discretionary",
			fmt.Sprintf("Cut all discretionary spend by 15%% (frees %s/month)", helpers.FormatINR(delta)),
			delta,
		))
	}

	// 3. Extend the deadline by 6 months when the plan is badly delayed
	if tl.DelayMonths > 3 {
		newMonths := ctx.MonthsLeft + 6
		newRequired := ctx.RemainingAmount / newMonths
		newRatio := feasibilityRatio(constraint.FeasibleMonthly, newRequired)
		scenarios = append(scenarios, Scenario{
			Name:             "extend_deadline",
			Description:      "Extend the deadline by 6 months",
			NewFeasible:      constraint.FeasibleMonthly,
			ProbabilityDelta: clamp(estimateProbability(newRatio)-baseProb, -1, 1),
			MonthsEarlier:    math.Min(6, tl.DelayMonths),
		})
	}

	// 4. Increase income by 10%
	if ctx.MonthlyIncome > 0 {
		delta := 0.10 * ctx.MonthlyIncome
		scenarios = append(scenarios, g.surplusScenario(
			ctx, forecast, fraction, constraint, baseProb, tl,
			"raise_income",
			"Increase income by 10%",
			delta,
		))
	}

	if len(scenarios) > 4 {
		scenarios = scenarios[:4]
	}
	return scenarios
}

// surplusScenario re-applies the constraint bounds with the monthly surplus
// shifted by delta and reports the analytic effect.
func (g *ExplanationGenerator) surplusScenario(ctx *FinancialContext, forecast SurplusForecast, fraction float64, constraint ConstraintResult, baseProb float64, tl Timeline, name, description string, delta float64) Scenario {
	shifted := forecast
	shifted.Predicted += delta
	// The freed amount is dependable, so the stable figure moves by the
	// dampened delta.
	shifted.Stable += delta * (1 - 0.25*ctx.VolatilityFactor)

	newConstraint := g.constraints.Apply(ctx, shifted, fraction)
	newRatio := feasibilityRatio(newConstraint.FeasibleMonthly, ctx.RequiredMonthly)

	monthsEarlier := 0.0
	if newConstraint.FeasibleMonthly > 0 && constraint.FeasibleMonthly > 0 && ctx.RemainingAmount > 0 {
		monthsEarlier = math.Max(0,
			ctx.RemainingAmount/constraint.FeasibleMonthly-ctx.RemainingAmount/newConstraint.FeasibleMonthly)
	} else if newConstraint.FeasibleMonthly > 0 && constraint.FeasibleMonthly <= 0 {
		monthsEarlier = math.Max(0, tl.RealisticMonths-ctx.RemainingAmount/newConstraint.FeasibleMonthly)
	}

	return Scenario{
		Name:             name,
		Description:      description,
		NewFeasible:      newConstraint.FeasibleMonthly,
		ProbabilityDelta: clamp(estimateProbability(newRatio)-baseProb, -1, 1),
		MonthsEarlier:    monthsEarlier,
	}
}

// estimateProbability is the cheap analytic stand-in for the simulation used
// only to compare scenarios against each other: a logistic curve over the
// feasibility ratio.
func estimateProbability(ratio float64) float64 {
	return 1.0 / (1.0 + math.Exp(-3.0*(ratio-0.9)))
}

func topCategory(categoryAvg map[string]float64) (string, float64) {
	best := ""
	bestAvg := 0.0
	// Fixed iteration order keeps the chosen scenario deterministic
	for _, group := range []string{"dining", "shopping", "entertainment"} {
		if avg := categoryAvg[group]; avg > bestAvg {
			best, bestAvg = group, avg
		}
	}
	return best, bestAvg
}

// summary assembles the multi-line narrative persisted as the feasibility note
func (g *ExplanationGenerator) summary(ctx *FinancialContext, sim SimulationResult, constraint ConstraintResult, expl Explanation) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Goal %q: %s — %.0f%% chance of reaching %s by the deadline.\n",
		ctx.GoalName, expl.HealthTag, sim.Probability*100, helpers.FormatINR(ctx.TargetAmount))
	fmt.Fprintf(&b, "Required %s/month · Feasible %s/month · Recommended %s/month · Allocated %s/month\n",
		helpers.FormatINR(expl.Plan.RequiredMonthly),
		helpers.FormatINR(expl.Plan.FeasibleMonthly),
		helpers.FormatINR(expl.Plan.RecommendedMonthly),
		helpers.FormatINR(expl.Plan.AllocatedMonthly))

	if expl.Timeline.DelayMonths > 0 {
		fmt.Fprintf(&b, "At the feasible rate this takes about %.0f months, %.0f past the deadline.\n",
			expl.Timeline.RealisticMonths, expl.Timeline.DelayMonths)
	} else {
		fmt.Fprintf(&b, "On schedule: expected completion in about %.0f months (deadline allows %.0f).\n",
			sim.ExpectedMonths, ctx.MonthsLeft)
	}

	if len(expl.PositiveDrivers) > 0 {
		b.WriteString("Working for you:\n")
		for _, d := range expl.PositiveDrivers {
			fmt.Fprintf(&b, "  + %s\n", d.Label)
		}
	}
	if len(expl.NegativeDrivers) > 0 {
		b.WriteString("Working against you:\n")
		for _, d := range expl.NegativeDrivers {
			fmt.Fprintf(&b, "  - %s\n", d.Label)
		}
	}
	if len(expl.Scenarios) > 0 {
		b.WriteString("What would help:\n")
		for _, sc := range expl.Scenarios {
			fmt.Fprintf(&b, "  * %s → feasible %s/month (%+.0f%% chance)\n",
				sc.Description, helpers.FormatINR(sc.NewFeasible), sc.ProbabilityDelta*100)
		}
	}

	summary := b.String()
	if len(summary) > maxNoteLength {
		summary = summary[:maxNoteLength]
	}
	return summary
}
