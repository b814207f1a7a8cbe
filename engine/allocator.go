package engine

import "finsight/config"

// AllocationOptimizer splits a shared monthly saving pool across a user's
// active goals. Goals group into three priority tiers with base weights
// 0.50/0.30/0.20; weights of empty tiers are dropped and the remainder
// renormalized, then each tier's share splits equally among its members.
type AllocationOptimizer struct {
	cfg config.EngineConfig
}

// NewAllocationOptimizer creates a new allocation optimizer
func NewAllocationOptimizer(cfg config.EngineConfig) *AllocationOptimizer {
	return &AllocationOptimizer{cfg: cfg}
}

// Allocate computes each goal's fraction of the pool. Fractions over the
// supplied goals sum to 1.0; the pool value itself is carried through for
// callers that want amounts instead of fractions.
func (a *AllocationOptimizer) Allocate(goals []GoalSnapshot, pool float64) AllocationResult {
	result := AllocationResult{Pool: pool, Fractions: map[int64]float64{}}
	if len(goals) == 0 {
		return result
	}

	tiers := map[int][]GoalSnapshot{}
	for _, g := range goals {
		priority := g.Priority
		if priority < 1 || priority > 3 {
			priority = 2
		}
		tiers[priority] = append(tiers[priority], g)
	}

	baseWeights := map[int]float64{
		1: a.cfg.HighPriorityWeight,
		2: a.cfg.MediumPriorityWeight,
		3: a.cfg.LowPriorityWeight,
	}

	// Drop weights of empty tiers and renormalize the rest to 1.0
	totalWeight := 0.0
	for tier := range tiers {
		totalWeight += baseWeights[tier]
	}
	if totalWeight <= 0 {
		// Degenerate weight config: fall back to an equal split
		for _, g := range goals {
			result.Fractions[g.GoalID] = 1.0 / float64(len(goals))
		}
		return result
	}

	for tier, members := range tiers {
		tierFraction := baseWeights[tier] / totalWeight
		perGoal := tierFraction / float64(len(members))
		for _, g := range members {
			result.Fractions[g.GoalID] = perGoal
		}
	}

	return result
}

// SIPSurplusSplit is the simpler splitter used for SIP-style monthly
// recommendations: the emergency fund is topped up first and only the
// remainder spreads equally across other goals. It shares nothing with the
// feasibility allocation above and must not be used on that path.
func SIPSurplusSplit(pool, emergencyGap float64, otherGoals int) (emergency, perOther float64) {
	if pool <= 0 {
		return 0, 0
	}
	emergency = pool
	if emergencyGap < pool {
		emergency = emergencyGap
	}
	if emergency < 0 {
		emergency = 0
	}
	remainder := pool - emergency
	if otherGoals > 0 {
		perOther = remainder / float64(otherGoals)
	}
	return emergency, perOther
}
