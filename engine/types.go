// Package engine implements the goal feasibility engine: robust surplus
// forecasting over sparse transaction history, priority-based allocation of
// saving capacity across competing goals, behavioral feasibility caps, Monte
// Carlo achievement simulation, and human-readable explanations.
//
// The pipeline runs strictly forward per assessment:
//
//	FeatureAggregator → SurplusForecaster → AllocationOptimizer →
//	BehavioralConstraintModel → FeasibilitySimulator → ExplanationGenerator
//
// Every stage is a pure function of its inputs; all I/O happens in the
// aggregation and persistence steps of the orchestrator. Missing or broken
// signals degrade to neutral values with a lowered confidence instead of
// failing the assessment.
package engine

import "time"

// Health tags summarizing a goal's feasibility ratio. Closed set; these exact
// strings are persisted on the goal record.
const (
	HealthOnTrack = "On Track"
	HealthTight   = "Tight"
	HealthBehind  = "Behind"
	HealthAtRisk  = "At Risk"
)

// Risk levels produced by the constraint model from the same ratio bands.
const (
	RiskLow      = "LOW"
	RiskMedium   = "MEDIUM"
	RiskHigh     = "HIGH"
	RiskCritical = "CRITICAL"
)

// GoalSnapshot is the slim view of an active goal the allocator works with.
type GoalSnapshot struct {
	GoalID          int64   `json:"goal_id"`
	Name            string  `json:"name"`
	Priority        int     `json:"priority"` // 1=high, 2=medium, 3=low
	TargetAmount    float64 `json:"target_amount"`
	CurrentAmount   float64 `json:"current_amount"`
	MonthsLeft      float64 `json:"months_left"`
	RequiredMonthly float64 `json:"required_monthly"`
}

// FinancialContext is the full feature set for one (user, goal) pair. Built
// fresh for every assessment and discarded afterwards; nothing in here is
// persisted.
type FinancialContext struct {
	// Goal identity and arithmetic
	GoalID          int64   `json:"goal_id"`
	UserID          int64   `json:"user_id"`
	GoalName        string  `json:"goal_name"`
	TargetAmount    float64 `json:"target_amount"`
	CurrentAmount   float64 `json:"current_amount"`
	RemainingAmount float64 `json:"remaining_amount"`
	Priority        int     `json:"priority"`
	MonthsLeft      float64 `json:"months_left"` // floored at 0.1
	RequiredMonthly float64 `json:"required_monthly"`
	Progress        float64 `json:"progress"` // [0,1]

	// Income
	MonthlyIncome   float64 `json:"monthly_income"`
	IncomeType      string  `json:"income_type"`
	IncomeStability float64 `json:"income_stability"` // (0,1]

	// Expense series, oldest month first
	MonthlyExpenses  []float64 `json:"monthly_expenses"`
	AvgExpense3M     float64   `json:"avg_expense_3m"`
	AvgExpense6M     float64   `json:"avg_expense_6m"`
	ExpenseStdDev    float64   `json:"expense_std_dev"`
	VolatilityFactor float64   `json:"volatility_factor"` // [0,1]

	// Net surplus series, oldest month first. ObservedMask marks which
	// buckets actually contained transactions; unobserved buckets are
	// excluded from every statistic.
	MonthlySurplus        []float64 `json:"monthly_surplus"`
	ObservedMask          []bool    `json:"observed_mask"`
	MedianPositiveSurplus float64   `json:"median_positive_surplus"`

	// Spending mix
	DiscretionarySpend float64            `json:"discretionary_spend"` // monthly average
	EssentialSpend     float64            `json:"essential_spend"`     // monthly average
	CategoryAvg        map[string]float64 `json:"category_avg"`        // dining/shopping/entertainment
	LifestyleDrift     float64            `json:"lifestyle_drift"`     // OLS slope / avg expense

	// Saving behavior
	ContributionStreak int `json:"contribution_streak"`
	MissedMonths       int `json:"missed_months"`
	AnomalyCount       int `json:"anomaly_count"`

	// Liquidity
	LiquidBalance         float64 `json:"liquid_balance"`
	LiquidityBufferMonths float64 `json:"liquidity_buffer_months"`

	// Competing goals (includes the goal under assessment)
	SiblingGoals []GoalSnapshot `json:"sibling_goals"`

	// Data sufficiency
	TxCount        int  `json:"tx_count"`
	MonthsObserved int  `json:"months_observed"`
	HasEnoughData  bool `json:"has_enough_data"`
}

// ForecastSource tags which strategy produced a forecast, so downstream
// consumers and auditors can see the provenance instead of inferring it from
// band width.
type ForecastSource string

const (
	ForecastFromHistory  ForecastSource = "history"
	ForecastFromDeclared ForecastSource = "declared_income"
	ForecastEmpty        ForecastSource = "none"
)

// SurplusForecast is the robust monthly surplus estimate and its uncertainty.
type SurplusForecast struct {
	Predicted         float64        `json:"predicted"`
	StdDev            float64        `json:"std_dev"`
	Stable            float64        `json:"stable"` // volatility-dampened
	PredictedExpenses float64        `json:"predicted_expenses"`
	ConfidenceLow     float64        `json:"confidence_low"`
	ConfidenceHigh    float64        `json:"confidence_high"`
	Confidence        float64        `json:"confidence"` // [0,1]
	Source            ForecastSource `json:"source"`
}

// AllocationResult maps goal ids to their fraction of the shared monthly
// pool. Fractions over the goals present in the input sum to 1.0.
type AllocationResult struct {
	Pool      float64           `json:"pool"`
	Fractions map[int64]float64 `json:"fractions"`
}

// FractionFor returns the allocation fraction for a goal. Goals missing from
// the allocated set (e.g. created after the list was fetched) fall back to an
// equal share alongside the allocated ones.
func (a AllocationResult) FractionFor(goalID int64) float64 {
	if f, ok := a.Fractions[goalID]; ok {
		return f
	}
	return 1.0 / float64(len(a.Fractions)+1)
}

// BoundSet holds the four diagnostic bound values the constraint model
// minimized over.
type BoundSet struct {
	SurplusCap    float64 `json:"surplus_cap"`
	DisciplineCap float64 `json:"discipline_cap"`
	VolatilityCap float64 `json:"volatility_cap"`
	LiquidityCap  float64 `json:"liquidity_cap"`
}

// ConstraintResult is the behaviorally realistic saving capacity for one goal.
type ConstraintResult struct {
	MaxFeasibleTotal   float64  `json:"max_feasible_total"` // min of bounds, across all goals
	FeasibleMonthly    float64  `json:"feasible_monthly"`   // this goal's share
	RecommendedMonthly float64  `json:"recommended_monthly"`
	LiquidityOK        bool     `json:"liquidity_ok"`
	BufferMonths       float64  `json:"buffer_months"`
	RiskLevel          string   `json:"risk_level"`
	Bounds             BoundSet `json:"bounds"`
}

// SimulationResult is the outcome distribution of the Monte Carlo run.
type SimulationResult struct {
	Probability     float64 `json:"probability"` // [0,1]
	P5              float64 `json:"p5"`
	P50             float64 `json:"p50"`
	P95             float64 `json:"p95"`
	ExpectedMonths  float64 `json:"expected_months"` // median completion, failures count as the cap
	AvgShortfall    float64 `json:"avg_shortfall"`   // mean deficit fraction among failing paths
	Paths           int     `json:"paths"`
	SimulatedMonths int     `json:"simulated_months"`
	Seed            int64   `json:"seed"`
}

// Driver is one named reason pushing feasibility up or down.
type Driver struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// SavingsPlan is the three-tier monthly plan surfaced to the user.
type SavingsPlan struct {
	RequiredMonthly    float64 `json:"required_monthly"`
	FeasibleMonthly    float64 `json:"feasible_monthly"`
	RecommendedMonthly float64 `json:"recommended_monthly"`
	AllocatedMonthly   float64 `json:"allocated_monthly"`
}

// Timeline compares the deadline-implied schedule with the realistic one.
type Timeline struct {
	OriginalMonths  float64 `json:"original_months"`
	RealisticMonths float64 `json:"realistic_months"`
	DelayMonths     float64 `json:"delay_months"`
}

// Scenario is one counterfactual policy change and its estimated effect,
// derived analytically from the bound formulas rather than a fresh
// simulation.
type Scenario struct {
	Name             string  `json:"name"`
	Description      string  `json:"description"`
	NewFeasible      float64 `json:"new_feasible"`
	ProbabilityDelta float64 `json:"probability_delta"`
	MonthsEarlier    float64 `json:"months_earlier"`
}

// Explanation is the human-auditable assessment narrative.
type Explanation struct {
	HealthTag       string     `json:"health_tag"`
	PositiveDrivers []Driver   `json:"positive_drivers"`
	NegativeDrivers []Driver   `json:"negative_drivers"`
	Plan            SavingsPlan `json:"plan"`
	Timeline        Timeline   `json:"timeline"`
	Scenarios       []Scenario `json:"scenarios"`
	Summary         string     `json:"summary"`
}

// Assessment is the full structured result of one engine run.
type Assessment struct {
	GoalID      int64             `json:"goal_id"`
	UserID      int64             `json:"user_id"`
	GoalName    string            `json:"goal_name"`
	Probability float64           `json:"probability"`
	Confidence  float64           `json:"confidence"`
	HealthTag   string            `json:"health_tag"`
	Context     *FinancialContext `json:"context"`
	Forecast    SurplusForecast   `json:"forecast"`
	Allocation  float64           `json:"allocation_fraction"`
	Constraint  ConstraintResult  `json:"constraint"`
	Simulation  SimulationResult  `json:"simulation"`
	Explanation Explanation       `json:"explanation"`
	GeneratedAt time.Time         `json:"generated_at"`
	LatencyMs   int64             `json:"latency_ms"`
}

// BulkItem is one entry of a bulk assessment: either a result or the error
// that kept this goal from being assessed. One bad goal never aborts the batch.
type BulkItem struct {
	GoalID     int64       `json:"goal_id"`
	GoalName   string      `json:"goal_name,omitempty"`
	Assessment *Assessment `json:"assessment,omitempty"`
	Error      string      `json:"error,omitempty"`
}
