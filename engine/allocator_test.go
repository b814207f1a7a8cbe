package engine

import (
	"math"
	"testing"
)

func TestAllocateSingleGoalGetsEverything(t *testing.T) {
	opt := NewAllocationOptimizer(testConfig())

	result := opt.Allocate([]GoalSnapshot{{GoalID: 1, Priority: 1}}, 10000)
	if got := result.FractionFor(1); got != 1.0 {
		t.Errorf("expected fraction 1.0, got %v", got)
	}
}

func TestAllocateEmptyTierWeightsRenormalize(t *testing.T) {
	opt := NewAllocationOptimizer(testConfig())

	// High and medium tier occupied, low tier empty: 0.50/0.30 renormalize
	// over 0.80 giving 0.625 and 0.375.
	goals := []GoalSnapshot{
		{GoalID: 1, Priority: 1},
		{GoalID: 2, Priority: 2},
	}
	result := opt.Allocate(goals, 10000)

	if got := result.FractionFor(1); !almostEqual(got, 0.625, 1e-9) {
		t.Errorf("high priority: expected 0.625, got %v", got)
	}
	if got := result.FractionFor(2); !almostEqual(got, 0.375, 1e-9) {
		t.Errorf("medium priority: expected 0.375, got %v", got)
	}

	if amount := result.FractionFor(1) * result.Pool; !almostEqual(amount, 6250, 1e-6) {
		t.Errorf("high priority amount: expected 6250, got %v", amount)
	}
	if amount := result.FractionFor(2) * result.Pool; !almostEqual(amount, 3750, 1e-6) {
		t.Errorf("medium priority amount: expected 3750, got %v", amount)
	}
}

func TestAllocateEqualSplitWithinTier(t *testing.T) {
	opt := NewAllocationOptimizer(testConfig())

	goals := []GoalSnapshot{
		{GoalID: 1, Priority: 2},
		{GoalID: 2, Priority: 2},
		{GoalID: 3, Priority: 2},
	}
	result := opt.Allocate(goals, 9000)

	for _, g := range goals {
		if got := result.FractionFor(g.GoalID); !almostEqual(got, 1.0/3.0, 1e-9) {
			t.Errorf("goal %d: expected 1/3, got %v", g.GoalID, got)
		}
	}
}

func TestAllocateFractionsSumToOne(t *testing.T) {
	opt := NewAllocationOptimizer(testConfig())

	tests := []struct {
		name  string
		goals []GoalSnapshot
	}{
		{"all tiers", []GoalSnapshot{
			{GoalID: 1, Priority: 1}, {GoalID: 2, Priority: 1},
			{GoalID: 3, Priority: 2},
			{GoalID: 4, Priority: 3}, {GoalID: 5, Priority: 3},
		}},
		{"single tier", []GoalSnapshot{
			{GoalID: 1, Priority: 3}, {GoalID: 2, Priority: 3},
		}},
		{"out of range priority defaults to medium", []GoalSnapshot{
			{GoalID: 1, Priority: 0}, {GoalID: 2, Priority: 7},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := opt.Allocate(tt.goals, 10000)
			sum := 0.0
			for _, g := range tt.goals {
				sum += result.Fractions[g.GoalID]
			}
			if math.Abs(sum-1.0) > 1e-9 {
				t.Errorf("fractions sum to %v, want 1.0", sum)
			}
		})
	}
}

func TestAllocateNoGoals(t *testing.T) {
	opt := NewAllocationOptimizer(testConfig())
	result := opt.Allocate(nil, 10000)
	if len(result.Fractions) != 0 {
		t.Errorf("expected no fractions, got %v", result.Fractions)
	}
}

func TestFractionForMissingGoalFallsBack(t *testing.T) {
	result := AllocationResult{Fractions: map[int64]float64{1: 0.6, 2: 0.4}}
	if got := result.FractionFor(99); !almostEqual(got, 1.0/3.0, 1e-9) {
		t.Errorf("expected fallback equal share 1/3, got %v", got)
	}
}

func TestSIPSurplusSplit(t *testing.T) {
	tests := []struct {
		name         string
		pool         float64
		emergencyGap float64
		otherGoals   int
		emergency    float64
		perOther     float64
	}{
		{"emergency absorbs all", 5000, 8000, 2, 5000, 0},
		{"remainder splits", 10000, 4000, 3, 4000, 2000},
		{"no gap", 9000, 0, 3, 0, 3000},
		{"no pool", 0, 5000, 2, 0, 0},
		{"no other goals", 10000, 4000, 0, 4000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emergency, perOther := SIPSurplusSplit(tt.pool, tt.emergencyGap, tt.otherGoals)
			if !almostEqual(emergency, tt.emergency, 1e-9) {
				t.Errorf("emergency: expected %v, got %v", tt.emergency, emergency)
			}
			if !almostEqual(perOther, tt.perOther, 1e-9) {
				t.Errorf("perOther: expected %v, got %v", tt.perOther, perOther)
			}
		})
	}
}
