package engine

import (
	"log"
	"sort"
	"time"

	"finsight/config"
	models "finsight/database/models_pkg"
)

// Engine identity recorded on every audit run
const (
	EngineName    = "goal-feasibility-engine"
	EngineVersion = "2.1.0"
)

// Store is the full data access the orchestrator needs: the aggregator's
// read surface plus goal/profile lookup and the two best-effort write paths.
type Store interface {
	ReadStore
	GetGoal(id int64) (*models.SavingsGoal, error)
	GetUserProfile(userID int64) (*models.UserProfile, error)
	UpdateGoalAssessment(id int64, score float64, note, healthTag string) error
	UpdateGoalCurrentAmount(id int64, amount float64) error
	InsertAssessmentRun(run *models.AssessmentRun) error
}

// EventSink receives assessment completion events. Optional; nil disables
// broadcasting.
type EventSink interface {
	Broadcast(event string, payload interface{})
}

// Engine orchestrates the feasibility pipeline. Build one at process start
// and share it; it holds no per-assessment state, so concurrent assessments
// of different goals are safe. Concurrent assessments of the same goal race
// on the final write-back (last writer wins, see UpdateGoalAssessment).
type Engine struct {
	store  Store
	cfg    config.EngineConfig
	events EventSink

	aggregator  *FeatureAggregator
	forecaster  *SurplusForecaster
	allocator   *AllocationOptimizer
	constraints *BehavioralConstraintModel
	simulator   *FeasibilitySimulator
	explainer   *ExplanationGenerator
}

// New creates the engine with all pipeline stages wired
func New(store Store, cfg config.EngineConfig, events EventSink) *Engine {
	return &Engine{
		store:       store,
		cfg:         cfg,
		events:      events,
		aggregator:  NewFeatureAggregator(store, cfg),
		forecaster:  NewSurplusForecaster(cfg),
		allocator:   NewAllocationOptimizer(cfg),
		constraints: NewBehavioralConstraintModel(cfg),
		simulator:   NewFeasibilitySimulator(cfg),
		explainer:   NewExplanationGenerator(cfg),
	}
}

// Assess runs the full pipeline for one goal: fetch, aggregate, forecast,
// allocate, constrain, simulate, explain, persist, audit. Persistence and
// audit are best-effort; a storage failure is logged and the computed
// assessment is still returned.
func (e *Engine) Assess(goalID int64) (*Assessment, error) {
	start := time.Now()

	goal, err := e.store.GetGoal(goalID)
	if err != nil {
		return nil, err
	}
	profile, err := e.store.GetUserProfile(goal.UserID)
	if err != nil {
		return nil, err
	}

	ctx := e.aggregator.Build(goal, profile)
	forecast := e.forecaster.Forecast(ctx)

	// The allocator splits gross stable capacity; the behavioral 70% cap is
	// applied exactly once, inside the constraint bounds.
	allocation := e.allocator.Allocate(ctx.SiblingGoals, forecast.Stable)
	fraction := allocation.FractionFor(goal.ID)

	constraint := e.constraints.Apply(ctx, forecast, fraction)
	sim := e.simulator.Run(ctx, forecast, constraint, fraction, e.seedFor(goal.ID, start))
	explanation := e.explainer.Generate(ctx, forecast, fraction, constraint, sim)

	confidence := forecast.Confidence
	if !ctx.HasEnoughData && confidence > 0.5 {
		confidence = 0.5
	}

	assessment := &Assessment{
		GoalID:      goal.ID,
		UserID:      goal.UserID,
		GoalName:    goal.Name,
		Probability: sim.Probability,
		Confidence:  confidence,
		HealthTag:   explanation.HealthTag,
		Context:     ctx,
		Forecast:    forecast,
		Allocation:  fraction,
		Constraint:  constraint,
		Simulation:  sim,
		Explanation: explanation,
		GeneratedAt: start,
		LatencyMs:   time.Since(start).Milliseconds(),
	}

	e.persist(assessment)
	e.audit(assessment)

	if e.events != nil {
		e.events.Broadcast("assessment.completed", map[string]interface{}{
			"goal_id":     assessment.GoalID,
			"probability": assessment.Probability,
			"health_tag":  assessment.HealthTag,
		})
	}

	return assessment, nil
}

// AssessBulk runs the pipeline for every active goal of a user, isolating
// per-goal failures, and returns results sorted ascending by probability so
// the most at-risk goals come first. Failed goals are appended after the
// sorted results.
func (e *Engine) AssessBulk(userID int64) ([]BulkItem, error) {
	goals, err := e.store.GetActiveGoals(userID)
	if err != nil {
		return nil, err
	}

	var ok []BulkItem
	var failed []BulkItem
	for _, goal := range goals {
		assessment, err := e.Assess(goal.ID)
		if err != nil {
			log.Printf("⚠️  Bulk assessment failed for goal %d: %v", goal.ID, err)
			failed = append(failed, BulkItem{GoalID: goal.ID, GoalName: goal.Name, Error: err.Error()})
			continue
		}
		ok = append(ok, BulkItem{GoalID: goal.ID, GoalName: goal.Name, Assessment: assessment})
	}

	sort.SliceStable(ok, func(i, j int) bool {
		return ok[i].Assessment.Probability < ok[j].Assessment.Probability
	})

	return append(ok, failed...), nil
}

// UpdateProgress sets a goal's saved amount and re-runs the assessment.
// Unlike the assessment write-back, the amount update is the caller's
// intent, so its failure is a real error.
func (e *Engine) UpdateProgress(goalID int64, newCurrentAmount float64) (*Assessment, error) {
	if _, err := e.store.GetGoal(goalID); err != nil {
		return nil, err
	}
	if err := e.store.UpdateGoalCurrentAmount(goalID, newCurrentAmount); err != nil {
		return nil, err
	}
	return e.Assess(goalID)
}

// persist writes the three engine-owned fields onto the goal record.
// Best-effort: a failure here must not discard the computed result.
func (e *Engine) persist(a *Assessment) {
	err := e.store.UpdateGoalAssessment(a.GoalID, a.Probability, a.Explanation.Summary, a.HealthTag)
	if err != nil {
		log.Printf("⚠️  Failed to persist assessment for goal %d (result still returned): %v", a.GoalID, err)
	}
}

// audit appends the run record. Best-effort, same as persist.
func (e *Engine) audit(a *Assessment) {
	run := &models.AssessmentRun{
		GoalID:        a.GoalID,
		UserID:        a.UserID,
		EngineName:    EngineName,
		EngineVersion: EngineVersion,
		Probability:   a.Probability,
		Confidence:    a.Confidence,
		HealthTag:     a.HealthTag,
		LatencyMs:     a.LatencyMs,
	}
	if err := e.store.InsertAssessmentRun(run); err != nil {
		log.Printf("⚠️  Failed to write audit record for goal %d: %v", a.GoalID, err)
	}
}

// seedFor picks the simulation seed. Fixed mode keeps repeated assessments
// of unchanged inputs bit-identical; per-goal mode folds the goal id and the
// calendar date in so distinct goals and days diverge while a single day's
// re-runs stay reproducible.
func (e *Engine) seedFor(goalID int64, now time.Time) int64 {
	if e.cfg.SeedMode == "per-goal" {
		day := int64(now.Year()*10000 + int(now.Month())*100 + now.Day())
		return e.cfg.Seed + goalID*1_000_003 + day
	}
	return e.cfg.Seed
}
