package savings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func referenceInput() Input {
	return Input{
		AnnualGenerationKwh: 4000,
		GridRateDay:         0.35,
		GridRateNight:       0.10,
		ExportRate:          0.20,
		BatteryCapacityKwh:  10,
		BatteryCount:        1,
	}
}

func TestScenarioFor(t *testing.T) {
	assert.Equal(t, SolarOnly, ScenarioFor(false, false))
	assert.Equal(t, SolarOnly, ScenarioFor(false, true))
	assert.Equal(t, SolarPlusBattery, ScenarioFor(true, false))
	assert.Equal(t, SolarPlusBatteryArbitrage, ScenarioFor(true, true))
}

func TestCompute_SolarOnly(t *testing.T) {
	b := Compute(SolarOnly, referenceInput())

	// 4000*0.30*0.35 self-use, 4000*0.70*0.20 export.
	assert.InDelta(t, 420, b.SelfUseSavings, 1e-9)
	assert.InDelta(t, 560, b.ExportIncome, 1e-9)
	assert.InDelta(t, 980, b.Total, 1e-9)
	assert.Zero(t, b.BatterySavings)
}

func TestCompute_SolarPlusBattery(t *testing.T) {
	b := Compute(SolarPlusBattery, referenceInput())

	// 4000*0.70*0.35 self-use, 4000*0.30*0.20 export.
	assert.InDelta(t, 980, b.SelfUseSavings, 1e-9)
	assert.InDelta(t, 240, b.ExportIncome, 1e-9)
	assert.InDelta(t, 1220, b.Total, 1e-9)
}

func TestCompute_TwoBatteriesRaiseSelfUse(t *testing.T) {
	in := referenceInput()
	in.BatteryCount = 2

	b := Compute(SolarPlusBattery, in)

	// 4000*0.90*0.35 self-use, 4000*0.10*0.20 export.
	assert.InDelta(t, 1260, b.SelfUseSavings, 1e-9)
	assert.InDelta(t, 80, b.ExportIncome, 1e-9)
	assert.InDelta(t, 1340, b.Total, 1e-9)
}

func TestCompute_Arbitrage(t *testing.T) {
	b := Compute(SolarPlusBatteryArbitrage, referenceInput())

	// All generation exported; battery earns the day/night spread.
	assert.Zero(t, b.SelfUseSavings)
	assert.InDelta(t, 800, b.ExportIncome, 1e-9)
	assert.InDelta(t, 10*0.9*315*0.25, b.BatterySavings, 1e-9)
	assert.InDelta(t, b.ExportIncome+b.BatterySavings, b.Total, 1e-9)
}

func TestCompute_ArbitrageInvertedSpreadClampsToZero(t *testing.T) {
	in := referenceInput()
	in.GridRateNight = 0.50

	b := Compute(SolarPlusBatteryArbitrage, in)

	assert.Zero(t, b.BatterySavings)
	assert.InDelta(t, b.ExportIncome, b.Total, 1e-9)
}

func TestPayback(t *testing.T) {
	assert.Equal(t, "5.0", Payback(6027, 1205.4))
	assert.Equal(t, "7.5", Payback(9000, 1200))
	assert.Equal(t, "0.0", Payback(6000, 0))
	assert.Equal(t, "0.0", Payback(6000, -100))
}

func TestBillOffsetPercent(t *testing.T) {
	assert.Equal(t, 65.0, BillOffsetPercent(false))
	assert.Equal(t, 94.0, BillOffsetPercent(true))
}

func TestGridIndependencePercent(t *testing.T) {
	assert.Equal(t, 30.0, GridIndependencePercent(0))
	assert.Equal(t, 90.0, GridIndependencePercent(1))
	assert.Equal(t, 95.0, GridIndependencePercent(2))
	assert.Equal(t, 95.0, GridIndependencePercent(3))
}
