package engine

import (
	"strings"
	"testing"
)

func hasDriver(drivers []Driver, code string) bool {
	for _, d := range drivers {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestGenerateHealthTagBands(t *testing.T) {
	g := NewExplanationGenerator(testConfig())

	tests := []struct {
		name     string
		feasible float64
		expected string
	}{
		{"comfortable", 13000, HealthOnTrack},
		{"tight", 9000, HealthTight},
		{"behind", 6000, HealthBehind},
		{"at risk", 3000, HealthAtRisk},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := &FinancialContext{
				GoalName:        "Trip",
				TargetAmount:    120000,
				RemainingAmount: 120000,
				RequiredMonthly: 10000,
				MonthsLeft:      12,
			}
			constraint := ConstraintResult{FeasibleMonthly: tt.feasible}

			expl := g.Generate(ctx, SurplusForecast{}, 1.0, constraint, SimulationResult{})
			if expl.HealthTag != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, expl.HealthTag)
			}
		})
	}
}

func TestGenerateTimeline(t *testing.T) {
	g := NewExplanationGenerator(testConfig())

	ctx := &FinancialContext{
		GoalName:        "Trip",
		TargetAmount:    60000,
		RemainingAmount: 60000,
		RequiredMonthly: 10000,
		MonthsLeft:      6,
	}
	constraint := ConstraintResult{FeasibleMonthly: 5000}

	expl := g.Generate(ctx, SurplusForecast{}, 1.0, constraint, SimulationResult{})

	if !almostEqual(expl.Timeline.RealisticMonths, 12, 1e-6) {
		t.Errorf("expected realistic 12 months, got %v", expl.Timeline.RealisticMonths)
	}
	if !almostEqual(expl.Timeline.DelayMonths, 6, 1e-6) {
		t.Errorf("expected 6 month delay, got %v", expl.Timeline.DelayMonths)
	}
}

func TestGenerateTimelineOnSchedule(t *testing.T) {
	g := NewExplanationGenerator(testConfig())

	ctx := &FinancialContext{
		GoalName:        "Trip",
		TargetAmount:    60000,
		RemainingAmount: 60000,
		RequiredMonthly: 10000,
		MonthsLeft:      6,
	}
	constraint := ConstraintResult{FeasibleMonthly: 12000}

	expl := g.Generate(ctx, SurplusForecast{}, 1.0, constraint, SimulationResult{})

	if expl.Timeline.DelayMonths != 0 {
		t.Errorf("feasible above required should have no delay, got %v", expl.Timeline.DelayMonths)
	}
}

func TestGenerateTimelineZeroFeasible(t *testing.T) {
	g := NewExplanationGenerator(testConfig())

	ctx := &FinancialContext{
		GoalName:        "Trip",
		TargetAmount:    60000,
		RemainingAmount: 60000,
		RequiredMonthly: 10000,
		MonthsLeft:      6,
	}
	constraint := ConstraintResult{FeasibleMonthly: 0}

	expl := g.Generate(ctx, SurplusForecast{}, 1.0, constraint, SimulationResult{})

	if expl.Timeline.RealisticMonths != 1200 {
		t.Errorf("zero feasible should report the horizon, got %v", expl.Timeline.RealisticMonths)
	}
}

func TestGeneratePositiveDrivers(t *testing.T) {
	g := NewExplanationGenerator(testConfig())

	ctx := &FinancialContext{
		GoalName:              "Emergency Fund",
		TargetAmount:          100000,
		CurrentAmount:         40000,
		RemainingAmount:       60000,
		RequiredMonthly:       5000,
		MonthsLeft:            12,
		Progress:              0.4,
		ContributionStreak:    4,
		LiquidityBufferMonths: 3,
		IncomeStability:       1.0,
		HasEnoughData:         true,
	}
	forecast := SurplusForecast{Predicted: 12000, Stable: 11000}
	constraint := ConstraintResult{FeasibleMonthly: 8000, LiquidityOK: true}

	expl := g.Generate(ctx, forecast, 1.0, constraint, SimulationResult{Probability: 0.9})

	for _, code := range []string{"saving_streak", "healthy_buffer", "stable_income", "good_progress", "surplus_covers_rate", "no_anomalies"} {
		if !hasDriver(expl.PositiveDrivers, code) {
			t.Errorf("missing positive driver %q", code)
		}
	}
	if len(expl.NegativeDrivers) != 0 {
		t.Errorf("expected no negative drivers, got %v", expl.NegativeDrivers)
	}
}

func TestGenerateNegativeDrivers(t *testing.T) {
	g := NewExplanationGenerator(testConfig())

	ctx := &FinancialContext{
		GoalName:              "Car",
		TargetAmount:          500000,
		RemainingAmount:       480000,
		RequiredMonthly:       40000,
		MonthsLeft:            12,
		VolatilityFactor:      0.7,
		AvgExpense6M:          30000,
		DiscretionarySpend:    15000,
		MissedMonths:          4,
		AnomalyCount:          3,
		LifestyleDrift:        0.10,
		LiquidityBufferMonths: 0.3,
		SiblingGoals:          []GoalSnapshot{{GoalID: 1}, {GoalID: 2}, {GoalID: 3}},
	}
	constraint := ConstraintResult{FeasibleMonthly: 0, LiquidityOK: false}

	expl := g.Generate(ctx, SurplusForecast{}, 0.5, constraint, SimulationResult{})

	for _, code := range []string{"high_volatility", "high_discretionary", "missed_months", "frequent_anomalies", "competing_goals", "low_liquidity", "lifestyle_drift", "severe_shortfall"} {
		if !hasDriver(expl.NegativeDrivers, code) {
			t.Errorf("missing negative driver %q", code)
		}
	}

	// Critical buffer gets the stronger wording
	for _, d := range expl.NegativeDrivers {
		if d.Code == "low_liquidity" && !strings.Contains(d.Label, "critically low") {
			t.Errorf("expected critical wording, got %q", d.Label)
		}
	}
}

func TestGenerateScenarios(t *testing.T) {
	g := NewExplanationGenerator(testConfig())

	ctx := &FinancialContext{
		GoalName:              "Trip",
		TargetAmount:          120000,
		RemainingAmount:       120000,
		RequiredMonthly:       10000,
		MonthsLeft:            12,
		MonthlyIncome:         50000,
		IncomeStability:       1.0,
		DiscretionarySpend:    9000,
		LiquidityBufferMonths: 3,
		CategoryAvg:           map[string]float64{"dining": 6000, "shopping": 2000, "entertainment": 1000},
	}
	forecast := SurplusForecast{Predicted: 8000, Stable: 8000}
	constraint := ConstraintResult{FeasibleMonthly: 5600}

	expl := g.Generate(ctx, forecast, 1.0, constraint, SimulationResult{})

	if len(expl.Scenarios) == 0 || len(expl.Scenarios) > 4 {
		t.Fatalf("expected 1..4 scenarios, got %d", len(expl.Scenarios))
	}

	names := map[string]Scenario{}
	for _, sc := range expl.Scenarios {
		names[sc.Name] = sc
	}

	// Largest discretionary category is dining
	trim, ok := names["trim_dining"]
	if !ok {
		t.Fatalf("expected trim_dining, got %v", names)
	}
	if trim.NewFeasible <= constraint.FeasibleMonthly {
		t.Errorf("freeing spend must raise feasible: %v vs %v", trim.NewFeasible, constraint.FeasibleMonthly)
	}
	if trim.ProbabilityDelta <= 0 {
		t.Errorf("expected a positive probability delta, got %v", trim.ProbabilityDelta)
	}

	if _, ok := names["cut_discretionary"]; !ok {
		t.Error("expected cut_discretionary scenario")
	}
	if _, ok := names["raise_income"]; !ok {
		t.Error("expected raise_income scenario")
	}
}

func TestGenerateExtendDeadlineScenario(t *testing.T) {
	g := NewExplanationGenerator(testConfig())

	// Heavily delayed plan: feasible is a fraction of required
	ctx := &FinancialContext{
		GoalName:              "House",
		TargetAmount:          600000,
		RemainingAmount:       600000,
		RequiredMonthly:       50000,
		MonthsLeft:            12,
		IncomeStability:       1.0,
		LiquidityBufferMonths: 3,
	}
	constraint := ConstraintResult{FeasibleMonthly: 20000}

	expl := g.Generate(ctx, SurplusForecast{Predicted: 30000, Stable: 30000}, 1.0, constraint, SimulationResult{})

	found := false
	for _, sc := range expl.Scenarios {
		if sc.Name == "extend_deadline" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected extend_deadline among %v", expl.Scenarios)
	}
}

func TestGenerateSummary(t *testing.T) {
	g := NewExplanationGenerator(testConfig())

	ctx := &FinancialContext{
		GoalName:              "Emergency Fund",
		TargetAmount:          120000,
		CurrentAmount:         60000,
		RemainingAmount:       60000,
		RequiredMonthly:       5000,
		MonthsLeft:            12,
		MonthlyIncome:         50000,
		IncomeStability:       1.0,
		ContributionStreak:    3,
		LiquidityBufferMonths: 3,
		DiscretionarySpend:    5000,
		CategoryAvg:           map[string]float64{"dining": 5000},
		HasEnoughData:         true,
	}
	forecast := SurplusForecast{Predicted: 20000, Stable: 20000}
	constraint := ConstraintResult{FeasibleMonthly: 14000, RecommendedMonthly: 11900, LiquidityOK: true}
	sim := SimulationResult{Probability: 0.93, ExpectedMonths: 5}

	expl := g.Generate(ctx, forecast, 1.0, constraint, sim)

	if len(expl.Summary) > 2000 {
		t.Errorf("summary exceeds the note cap: %d", len(expl.Summary))
	}
	if !strings.Contains(expl.Summary, "Emergency Fund") {
		t.Error("summary should name the goal")
	}
	if !strings.Contains(expl.Summary, "93%") {
		t.Errorf("summary should state the probability:\n%s", expl.Summary)
	}
	if !strings.Contains(expl.Summary, "₹1,20,000") {
		t.Errorf("summary should format the target in Indian grouping:\n%s", expl.Summary)
	}
}

func TestEstimateProbability(t *testing.T) {
	// Logistic curve: monotone, 0.5 at the 0.9 midpoint
	if got := estimateProbability(0.9); !almostEqual(got, 0.5, 1e-9) {
		t.Errorf("expected 0.5 at midpoint, got %v", got)
	}
	if estimateProbability(1.5) <= estimateProbability(0.5) {
		t.Error("curve must be increasing")
	}
	if p := estimateProbability(10); p <= 0.95 || p > 1 {
		t.Errorf("large ratio should approach 1, got %v", p)
	}
}

func TestTopCategoryDeterministic(t *testing.T) {
	group, avg := topCategory(map[string]float64{"dining": 3000, "shopping": 3000})
	// Ties resolve by the fixed iteration order
	if group != "dining" || avg != 3000 {
		t.Errorf("expected dining/3000, got %s/%v", group, avg)
	}

	group, avg = topCategory(map[string]float64{})
	if group != "" || avg != 0 {
		t.Errorf("expected empty, got %s/%v", group, avg)
	}
}
