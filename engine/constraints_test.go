package engine

import (
	"testing"

	"finsight/config"
)

// testConfig returns the engine defaults used across the package tests
func testConfig() config.EngineConfig {
	return config.EngineConfig{
		SimulationPaths:     750,
		MaxSimulationMonths: 1200,
		Seed:                42,
		SeedMode:            "fixed",

		SurplusCapRatio:      0.70,
		SafetyFactor:         0.85,
		MaxVolatilityPenalty: 0.50,

		LowLiquidityMonths:      1.5,
		CriticalLiquidityMonths: 0.5,
		LowLiquidityCapRatio:    0.40,

		HighPriorityWeight:   0.50,
		MediumPriorityWeight: 0.30,
		LowPriorityWeight:    0.20,

		LookbackMonths:    6,
		MinTransactions:   15,
		MinMonthsObserved: 2,

		RefreshHours:              24,
		AssessmentCacheTTLMinutes: 60,
	}
}

func TestApplySurplusCapBinds(t *testing.T) {
	m := NewBehavioralConstraintModel(testConfig())

	ctx := &FinancialContext{
		RequiredMonthly:       5000,
		IncomeStability:       1.0,
		LiquidityBufferMonths: 3,
	}
	forecast := SurplusForecast{Predicted: 10000, Stable: 10000}

	result := m.Apply(ctx, forecast, 1.0)

	// No discipline or volatility signal, healthy buffer: the 70% surplus
	// cap is the binding bound.
	if !almostEqual(result.MaxFeasibleTotal, 7000, 1e-6) {
		t.Errorf("expected max feasible 7000, got %v", result.MaxFeasibleTotal)
	}
	if !almostEqual(result.FeasibleMonthly, 7000, 1e-6) {
		t.Errorf("expected feasible 7000, got %v", result.FeasibleMonthly)
	}
	if !almostEqual(result.RecommendedMonthly, 7000*0.85, 1e-6) {
		t.Errorf("expected recommended %v, got %v", 7000*0.85, result.RecommendedMonthly)
	}
	if !result.LiquidityOK {
		t.Error("expected liquidity OK with a 3 month buffer")
	}
}

func TestApplyDisciplineCapBinds(t *testing.T) {
	m := NewBehavioralConstraintModel(testConfig())

	ctx := &FinancialContext{
		RequiredMonthly:       5000,
		IncomeStability:       1.0,
		MedianPositiveSurplus: 4000,
		LiquidityBufferMonths: 3,
	}
	forecast := SurplusForecast{Predicted: 10000, Stable: 10000}

	result := m.Apply(ctx, forecast, 1.0)

	if !almostEqual(result.MaxFeasibleTotal, 4000, 1e-6) {
		t.Errorf("historical discipline should bind at 4000, got %v", result.MaxFeasibleTotal)
	}
}

func TestApplyVolatilityCapBinds(t *testing.T) {
	m := NewBehavioralConstraintModel(testConfig())

	ctx := &FinancialContext{
		RequiredMonthly:       5000,
		IncomeStability:       1.0,
		VolatilityFactor:      1.0, // maximum penalty: 50% haircut on stable
		LiquidityBufferMonths: 3,
	}
	forecast := SurplusForecast{Predicted: 10000, Stable: 7500}

	result := m.Apply(ctx, forecast, 1.0)

	if !almostEqual(result.MaxFeasibleTotal, 3750, 1e-6) {
		t.Errorf("volatility cap should bind at 3750, got %v", result.MaxFeasibleTotal)
	}
}

func TestApplyLiquidityBounds(t *testing.T) {
	m := NewBehavioralConstraintModel(testConfig())
	forecast := SurplusForecast{Predicted: 10000, Stable: 10000}

	tests := []struct {
		name        string
		buffer      float64
		expected    float64
		liquidityOK bool
	}{
		{"critical buffer stops saving entirely", 0.3, 0, false},
		{"thin buffer caps at 40 percent", 1.0, 0.40 * 7000, false},
		{"healthy buffer leaves the surplus cap", 2.0, 7000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := &FinancialContext{
				RequiredMonthly:       5000,
				IncomeStability:       1.0,
				LiquidityBufferMonths: tt.buffer,
			}
			result := m.Apply(ctx, forecast, 1.0)
			if !almostEqual(result.FeasibleMonthly, tt.expected, 1e-6) {
				t.Errorf("expected feasible %v, got %v", tt.expected, result.FeasibleMonthly)
			}
			if result.LiquidityOK != tt.liquidityOK {
				t.Errorf("expected LiquidityOK=%v, got %v", tt.liquidityOK, result.LiquidityOK)
			}
		})
	}
}

func TestApplyNegativeSurplusFloorsAtZero(t *testing.T) {
	m := NewBehavioralConstraintModel(testConfig())

	ctx := &FinancialContext{
		RequiredMonthly:       5000,
		IncomeStability:       1.0,
		LiquidityBufferMonths: 3,
	}
	forecast := SurplusForecast{Predicted: -2000, Stable: -2000}

	result := m.Apply(ctx, forecast, 1.0)

	if result.FeasibleMonthly != 0 {
		t.Errorf("negative surplus must yield 0 feasible, got %v", result.FeasibleMonthly)
	}
	if result.RiskLevel != RiskCritical {
		t.Errorf("expected CRITICAL, got %s", result.RiskLevel)
	}
}

func TestApplyFractionScalesFeasible(t *testing.T) {
	m := NewBehavioralConstraintModel(testConfig())

	ctx := &FinancialContext{
		RequiredMonthly:       2000,
		IncomeStability:       1.0,
		LiquidityBufferMonths: 3,
	}
	forecast := SurplusForecast{Predicted: 10000, Stable: 10000}

	result := m.Apply(ctx, forecast, 0.375)

	if !almostEqual(result.MaxFeasibleTotal, 7000, 1e-6) {
		t.Errorf("max feasible should stay unscaled at 7000, got %v", result.MaxFeasibleTotal)
	}
	if !almostEqual(result.FeasibleMonthly, 7000*0.375, 1e-6) {
		t.Errorf("expected feasible %v, got %v", 7000*0.375, result.FeasibleMonthly)
	}
}

func TestRatioBand(t *testing.T) {
	tests := []struct {
		ratio    float64
		expected int
	}{
		{1.5, 0},
		{1.2, 0},
		{1.0, 1},
		{0.8, 1},
		{0.6, 2},
		{0.5, 2},
		{0.3, 3},
		{0, 3},
	}

	for _, tt := range tests {
		if got := ratioBand(tt.ratio); got != tt.expected {
			t.Errorf("ratioBand(%v): expected %d, got %d", tt.ratio, tt.expected, got)
		}
	}
}

func TestRiskLevelMatchesHealthTagBand(t *testing.T) {
	// The risk level and the health tag must always come from the same band.
	for band := 0; band < 4; band++ {
		risk := riskLevels[band]
		health := healthTags[band]
		switch band {
		case 0:
			if risk != RiskLow || health != HealthOnTrack {
				t.Errorf("band 0: got %s/%s", risk, health)
			}
		case 3:
			if risk != RiskCritical || health != HealthAtRisk {
				t.Errorf("band 3: got %s/%s", risk, health)
			}
		}
	}
}

func TestFeasibilityRatioZeroRequired(t *testing.T) {
	// Already funded goals have no required rate; treat as comfortably covered.
	if got := feasibilityRatio(0, 0); got != ratioLow {
		t.Errorf("expected %v, got %v", ratioLow, got)
	}
	if got := feasibilityRatio(5000, 2000); !almostEqual(got, 2.5, 1e-9) {
		t.Errorf("expected 2.5, got %v", got)
	}
}
