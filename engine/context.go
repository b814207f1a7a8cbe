package engine

import (
	"log"
	"math"
	"strings"
	"time"

	"finsight/config"
	models "finsight/database/models_pkg"
)

// ReadStore is the read-only data access the aggregation stage needs. The
// database facade satisfies it; tests provide an in-memory fake.
type ReadStore interface {
	GetRecentTransactions(userID int64, since time.Time) ([]models.Transaction, error)
	TotalLiquidBalance(userID int64) (float64, error)
	GetActiveGoals(userID int64) ([]models.SavingsGoal, error)
	GetBaselineProfile(userID int64) (*models.BaselineProfile, error)
}

// Discretionary category groups matched by keyword membership against the
// upstream category label.
var discretionaryKeywords = map[string][]string{
	"dining":        {"dining", "food", "restaurant", "cafe", "swiggy", "zomato"},
	"shopping":      {"shopping", "apparel", "clothing", "electronics", "amazon", "flipkart"},
	"entertainment": {"entertainment", "movies", "streaming", "games", "subscription", "netflix"},
}

const daysPerMonth = 30.44

// FeatureAggregator builds a FinancialContext for one (user, goal) pair from
// transaction history, balances, declared income and sibling goals. It never
// fails: every missing or broken signal degrades to a zero or neutral value
// and HasEnoughData reports whether the history was thick enough to trust.
type FeatureAggregator struct {
	store ReadStore
	cfg   config.EngineConfig
}

// NewFeatureAggregator creates a new feature aggregator
func NewFeatureAggregator(store ReadStore, cfg config.EngineConfig) *FeatureAggregator {
	return &FeatureAggregator{store: store, cfg: cfg}
}

// Build assembles the financial context as of now
func (fa *FeatureAggregator) Build(goal *models.SavingsGoal, profile *models.UserProfile) *FinancialContext {
	return fa.BuildAt(goal, profile, time.Now())
}

// BuildAt assembles the financial context as of a fixed reference time.
// Exposed so assessments are reproducible in tests.
func (fa *FeatureAggregator) BuildAt(goal *models.SavingsGoal, profile *models.UserProfile, now time.Time) *FinancialContext {
	lookback := fa.cfg.LookbackMonths
	if lookback <= 0 {
		lookback = 6
	}

	ctx := &FinancialContext{
		GoalID:          goal.ID,
		UserID:          goal.UserID,
		GoalName:        goal.Name,
		TargetAmount:    goal.TargetAmount,
		CurrentAmount:   goal.CurrentAmount,
		Priority:        goal.Priority,
		MonthlyIncome:   profile.MonthlyIncome,
		IncomeType:      profile.IncomeType,
		IncomeStability: incomeStabilityFor(profile.IncomeType),
		CategoryAvg:     map[string]float64{},
	}

	ctx.RemainingAmount = math.Max(0, goal.TargetAmount-goal.CurrentAmount)
	ctx.MonthsLeft = monthsUntil(now, goal.Deadline)
	ctx.RequiredMonthly = ctx.RemainingAmount / ctx.MonthsLeft
	if goal.TargetAmount > 0 {
		ctx.Progress = clamp(goal.CurrentAmount/goal.TargetAmount, 0, 1)
	}

	since := now.AddDate(0, -lookback, 0)
	txns, err := fa.store.GetRecentTransactions(goal.UserID, since)
	if err != nil {
		log.Printf("⚠️  Transaction lookup failed for user %d, degrading to baseline: %v", goal.UserID, err)
		txns = nil
	}
	fa.bucketTransactions(ctx, txns, now, lookback)

	// Baseline-profile fallback when history produced no expense average
	if ctx.AvgExpense6M == 0 {
		if baseline, err := fa.store.GetBaselineProfile(goal.UserID); err != nil {
			log.Printf("⚠️  Baseline profile lookup failed for user %d: %v", goal.UserID, err)
		} else if baseline != nil {
			ctx.AvgExpense6M = baseline.MonthlyExpense
			ctx.AvgExpense3M = baseline.MonthlyExpense
			ctx.EssentialSpend = baseline.EssentialExpense
		}
	}

	balance, err := fa.store.TotalLiquidBalance(goal.UserID)
	if err != nil {
		log.Printf("⚠️  Balance lookup failed for user %d: %v", goal.UserID, err)
		balance = 0
	}
	ctx.LiquidBalance = balance
	ctx.LiquidityBufferMonths = bufferMonths(balance, ctx.EssentialSpend, ctx.AvgExpense6M, lookback)

	fa.attachSiblings(ctx, goal, now)

	ctx.HasEnoughData = ctx.TxCount >= fa.cfg.MinTransactions &&
		ctx.MonthsObserved >= fa.cfg.MinMonthsObserved

	return ctx
}

// bucketTransactions slots debits and credits into calendar-month buckets and
// derives every history-based feature. Months with no transactions at all are
// treated as unobserved and excluded from the statistics.
func (fa *FeatureAggregator) bucketTransactions(ctx *FinancialContext, txns []models.Transaction, now time.Time, lookback int) {
	debits := make([]float64, lookback)
	credits := make([]float64, lookback)
	discretionary := make([]float64, lookback)
	observed := make([]bool, lookback)
	catSums := map[string][]float64{}
	for group := range discretionaryKeywords {
		catSums[group] = make([]float64, lookback)
	}

	nowKey := now.Year()*12 + int(now.Month())
	var recentDebits []float64 // individual debit amounts within the last 3 months

	for _, txn := range txns {
		key := txn.Timestamp.Year()*12 + int(txn.Timestamp.Month())
		age := nowKey - key // 0 = current month
		if age < 0 || age >= lookback {
			continue
		}
		idx := lookback - 1 - age
		observed[idx] = true
		ctx.TxCount++

		switch txn.TxType {
		case "DEBIT":
			debits[idx] += txn.Amount
			if group := discretionaryGroup(txn.Category); group != "" {
				discretionary[idx] += txn.Amount
				catSums[group][idx] += txn.Amount
			}
			if age < 3 {
				recentDebits = append(recentDebits, txn.Amount)
			}
		case "CREDIT":
			credits[idx] += txn.Amount
		}
	}

	for _, seen := range observed {
		if seen {
			ctx.MonthsObserved++
		}
	}

	// Sparse-credit guard: an observed month whose credits fall below 40% of
	// declared income almost always means the salary credit was not captured,
	// so the declared figure stands in.
	income := make([]float64, lookback)
	for i := 0; i < lookback; i++ {
		income[i] = credits[i]
		if observed[i] && credits[i] < 0.4*ctx.MonthlyIncome {
			income[i] = ctx.MonthlyIncome
		}
	}

	ctx.MonthlyExpenses = debits
	ctx.MonthlySurplus = make([]float64, lookback)
	ctx.ObservedMask = observed

	var observedExpenses, observedSurplus, observedDiscretionary, positiveSurplus []float64
	var last3Expenses []float64
	for i := 0; i < lookback; i++ {
		if !observed[i] {
			continue
		}
		surplus := income[i] - debits[i]
		ctx.MonthlySurplus[i] = surplus
		observedExpenses = append(observedExpenses, debits[i])
		observedSurplus = append(observedSurplus, surplus)
		observedDiscretionary = append(observedDiscretionary, discretionary[i])
		if surplus > 0 {
			positiveSurplus = append(positiveSurplus, surplus)
		}
		if i >= lookback-3 {
			last3Expenses = append(last3Expenses, debits[i])
		}
	}

	ctx.AvgExpense3M = mean(last3Expenses)
	ctx.AvgExpense6M = mean(observedExpenses)
	ctx.ExpenseStdDev = stdDev(observedExpenses)
	if ctx.AvgExpense6M > 0 {
		ctx.VolatilityFactor = clamp(ctx.ExpenseStdDev/ctx.AvgExpense6M, 0, 1)
	}

	ctx.MedianPositiveSurplus = median(positiveSurplus)
	ctx.DiscretionarySpend = mean(observedDiscretionary)
	ctx.EssentialSpend = math.Max(0, ctx.AvgExpense6M-ctx.DiscretionarySpend)
	for group, sums := range catSums {
		var observedGroup []float64
		for i, seen := range observed {
			if seen {
				observedGroup = append(observedGroup, sums[i])
			}
		}
		ctx.CategoryAvg[group] = mean(observedGroup)
	}
	if ctx.AvgExpense6M > 0 {
		ctx.LifestyleDrift = olsSlope(observedDiscretionary) / ctx.AvgExpense6M
	}

	// Contribution streak: consecutive most-recent months whose surplus
	// covered the required rate. The current month is usually still in
	// flight, so trailing unobserved buckets are skipped before counting;
	// after that a data gap breaks the streak like a shortfall does.
	streakStart := lookback - 1
	for streakStart >= 0 && !observed[streakStart] {
		streakStart--
	}
	for i := streakStart; i >= 0; i-- {
		if !observed[i] || ctx.MonthlySurplus[i] < ctx.RequiredMonthly {
			break
		}
		ctx.ContributionStreak++
	}
	for i := 0; i < lookback; i++ {
		if observed[i] && ctx.MonthlySurplus[i] < ctx.RequiredMonthly {
			ctx.MissedMonths++
		}
	}

	// Anomalies: debits larger than 3x the recent median debit
	if medianDebit := median(recentDebits); medianDebit > 0 {
		for _, amount := range recentDebits {
			if amount > 3*medianDebit {
				ctx.AnomalyCount++
			}
		}
	}
}

// attachSiblings snapshots the user's active goals for the allocator. The
// goal under assessment is guaranteed to be present even when its status
// flipped between the fetch and the assessment.
func (fa *FeatureAggregator) attachSiblings(ctx *FinancialContext, goal *models.SavingsGoal, now time.Time) {
	actives, err := fa.store.GetActiveGoals(goal.UserID)
	if err != nil {
		log.Printf("⚠️  Active goal lookup failed for user %d: %v", goal.UserID, err)
		actives = nil
	}

	found := false
	for _, g := range actives {
		ctx.SiblingGoals = append(ctx.SiblingGoals, snapshotGoal(&g, now))
		if g.ID == goal.ID {
			found = true
		}
	}
	if !found {
		ctx.SiblingGoals = append(ctx.SiblingGoals, snapshotGoal(goal, now))
	}
}

func snapshotGoal(g *models.SavingsGoal, now time.Time) GoalSnapshot {
	monthsLeft := monthsUntil(now, g.Deadline)
	remaining := math.Max(0, g.TargetAmount-g.CurrentAmount)
	return GoalSnapshot{
		GoalID:          g.ID,
		Name:            g.Name,
		Priority:        g.Priority,
		TargetAmount:    g.TargetAmount,
		CurrentAmount:   g.CurrentAmount,
		MonthsLeft:      monthsLeft,
		RequiredMonthly: remaining / monthsLeft,
	}
}

// monthsUntil returns the months between now and the deadline, floored at 0.1
// so required-rate division can never blow up on an expired deadline.
func monthsUntil(now, deadline time.Time) float64 {
	months := deadline.Sub(now).Hours() / 24 / daysPerMonth
	return math.Max(months, 0.1)
}

// bufferMonths expresses a balance in months of essential spend it covers
func bufferMonths(balance, essential, avgExpense float64, lookback int) float64 {
	divisor := essential
	if divisor <= 0 {
		divisor = avgExpense
	}
	if divisor <= 0 {
		// No spend signal at all: report the full lookback window as a
		// neutral buffer so liquidity bounds do not fire on empty data.
		return float64(lookback)
	}
	return balance / divisor
}

func discretionaryGroup(category string) string {
	c := strings.ToLower(category)
	if c == "" {
		return ""
	}
	for group, keywords := range discretionaryKeywords {
		for _, kw := range keywords {
			if strings.Contains(c, kw) {
				return group
			}
		}
	}
	return ""
}

func incomeStabilityFor(incomeType string) float64 {
	switch strings.ToUpper(incomeType) {
	case "SALARIED":
		return 1.0
	case "MIXED":
		return 0.85
	case "BUSINESS":
		return 0.75
	case "FREELANCE":
		return 0.65
	default:
		return 0.80
	}
}
