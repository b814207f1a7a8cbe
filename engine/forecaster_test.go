package engine

import "testing"

func TestForecastFromHistory(t *testing.T) {
	f := NewSurplusForecaster(testConfig())

	ctx := &FinancialContext{
		MonthlySurplus: []float64{1800, 2000, 2200, 2000, 2000, 2000},
		ObservedMask:   []bool{true, true, true, true, true, true},
		HasEnoughData:  true,
	}

	forecast := f.Forecast(ctx)

	if forecast.Source != ForecastFromHistory {
		t.Fatalf("expected history source, got %s", forecast.Source)
	}
	// Trimmed mean drops the 1800 and one 2200 before averaging
	if !almostEqual(forecast.Predicted, 2000, 1e-6) {
		t.Errorf("expected predicted 2000, got %v", forecast.Predicted)
	}
	if !almostEqual(forecast.Confidence, 0.85, 1e-9) {
		t.Errorf("expected confidence 0.85, got %v", forecast.Confidence)
	}
	if forecast.ConfidenceLow >= forecast.ConfidenceHigh {
		t.Errorf("confidence band inverted: [%v, %v]", forecast.ConfidenceLow, forecast.ConfidenceHigh)
	}
}

func TestForecastHistoryIgnoresUnobservedMonths(t *testing.T) {
	f := NewSurplusForecaster(testConfig())

	// Zeros in unobserved buckets must not drag the estimate down
	ctx := &FinancialContext{
		MonthlySurplus: []float64{0, 0, 0, 2000, 2000, 2000},
		ObservedMask:   []bool{false, false, false, true, true, true},
		HasEnoughData:  false,
	}

	forecast := f.Forecast(ctx)

	if forecast.Source != ForecastFromHistory {
		t.Fatalf("expected history source, got %s", forecast.Source)
	}
	if !almostEqual(forecast.Predicted, 2000, 1e-6) {
		t.Errorf("expected predicted 2000, got %v", forecast.Predicted)
	}
	// Thin history keeps confidence low
	if forecast.Confidence > 0.6 {
		t.Errorf("thin history should not be confident, got %v", forecast.Confidence)
	}
}

func TestForecastVolatilityLowersConfidenceAndStable(t *testing.T) {
	f := NewSurplusForecaster(testConfig())

	calm := &FinancialContext{
		MonthlySurplus: []float64{2000, 2000, 2000, 2000},
		ObservedMask:   []bool{true, true, true, true},
		HasEnoughData:  true,
	}
	spiky := &FinancialContext{
		MonthlySurplus:   []float64{2000, 2000, 2000, 2000},
		ObservedMask:     []bool{true, true, true, true},
		HasEnoughData:    true,
		VolatilityFactor: 0.8,
	}

	calmFc := f.Forecast(calm)
	spikyFc := f.Forecast(spiky)

	if spikyFc.Confidence >= calmFc.Confidence {
		t.Errorf("volatility should lower confidence: calm %v, spiky %v", calmFc.Confidence, spikyFc.Confidence)
	}
	if spikyFc.Stable >= calmFc.Stable {
		t.Errorf("volatility should dampen the stable figure: calm %v, spiky %v", calmFc.Stable, spikyFc.Stable)
	}
	if !almostEqual(spikyFc.Stable, 2000*(1-0.25*0.8), 1e-6) {
		t.Errorf("expected stable %v, got %v", 2000*(1-0.25*0.8), spikyFc.Stable)
	}
}

func TestForecastFallsBackToDeclaredIncome(t *testing.T) {
	f := NewSurplusForecaster(testConfig())

	// Only one observed month: below the history threshold
	ctx := &FinancialContext{
		MonthlySurplus: []float64{0, 0, 0, 0, 0, 1500},
		ObservedMask:   []bool{false, false, false, false, false, true},
		MonthlyIncome:  50000,
		AvgExpense6M:   30000,
	}

	forecast := f.Forecast(ctx)

	if forecast.Source != ForecastFromDeclared {
		t.Fatalf("expected declared_income source, got %s", forecast.Source)
	}
	if !almostEqual(forecast.Predicted, 20000, 1e-6) {
		t.Errorf("expected predicted 20000, got %v", forecast.Predicted)
	}
	if !almostEqual(forecast.StdDev, 12500, 1e-6) {
		t.Errorf("expected wide band 12500, got %v", forecast.StdDev)
	}
	if !almostEqual(forecast.Confidence, 0.40, 1e-9) {
		t.Errorf("expected confidence 0.40, got %v", forecast.Confidence)
	}
}

func TestForecastEmptyTerminal(t *testing.T) {
	f := NewSurplusForecaster(testConfig())

	ctx := &FinancialContext{}
	forecast := f.Forecast(ctx)

	if forecast.Source != ForecastEmpty {
		t.Fatalf("expected none source, got %s", forecast.Source)
	}
	if forecast.Predicted != 0 || forecast.Stable != 0 {
		t.Errorf("expected zero estimate, got predicted %v stable %v", forecast.Predicted, forecast.Stable)
	}
	if !almostEqual(forecast.Confidence, 0.15, 1e-9) {
		t.Errorf("expected confidence 0.15, got %v", forecast.Confidence)
	}
}

func TestForecastNegativeSurplusStaysUndamped(t *testing.T) {
	f := NewSurplusForecaster(testConfig())

	ctx := &FinancialContext{
		MonthlySurplus:   []float64{-3000, -3000, -3000},
		ObservedMask:     []bool{true, true, true},
		VolatilityFactor: 0.9,
	}

	forecast := f.Forecast(ctx)

	// Dampening only applies to positive estimates; a deficit stays a deficit
	if !almostEqual(forecast.Stable, forecast.Predicted, 1e-9) {
		t.Errorf("negative predicted should pass through: predicted %v stable %v", forecast.Predicted, forecast.Stable)
	}
	if forecast.Predicted >= 0 {
		t.Errorf("expected a deficit, got %v", forecast.Predicted)
	}
}
