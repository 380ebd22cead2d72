// Package savings models annual financial benefit under the three supported
// operating scenarios. The self-use and export fractions are policy
// constants, not fitted values; user-facing figures depend on them staying
// exactly as written.
package savings

import "fmt"

// Scenario selects which savings formula is active.
type Scenario string

const (
	SolarOnly                 Scenario = "solar_only"
	SolarPlusBattery          Scenario = "solar_plus_battery"
	SolarPlusBatteryArbitrage Scenario = "solar_plus_battery_arbitrage"
)

// ScenarioFor maps the battery toggle and the night-charging selector to a
// single scenario, so the two can never disagree downstream.
func ScenarioFor(includeBattery, arbitrageMode bool) Scenario {
	if !includeBattery {
		return SolarOnly
	}
	if arbitrageMode {
		return SolarPlusBatteryArbitrage
	}
	return SolarPlusBattery
}

const (
	selfUseFractionSolarOnly  = 0.30
	selfUseFractionOneBattery = 0.70
	selfUseFractionTwoBattery = 0.90

	roundTripEfficiency = 0.9
	annualBatteryCycles = 315
)

// Input carries the tariff and system figures a savings calculation needs.
type Input struct {
	AnnualGenerationKwh float64
	GridRateDay         float64
	GridRateNight       float64
	ExportRate          float64
	BatteryCapacityKwh  float64
	BatteryCount        int
}

// Breakdown is the annual benefit split by source.
type Breakdown struct {
	SelfUseSavings float64 `json:"selfUseSavings"`
	ExportIncome   float64 `json:"exportIncome"`
	BatterySavings float64 `json:"batterySavings"`
	Total          float64 `json:"total"`
}

// Compute returns the annual savings breakdown for the scenario.
func Compute(scenario Scenario, in Input) Breakdown {
	switch scenario {
	case SolarPlusBattery:
		selfUse := selfUseFractionOneBattery
		if in.BatteryCount >= 2 {
			selfUse = selfUseFractionTwoBattery
		}
		return splitSavings(in, selfUse)
	case SolarPlusBatteryArbitrage:
		// Night-charging mode: all generation is exported, the battery
		// earns the day/night spread over its assumed annual cycles.
		exportIncome := in.AnnualGenerationKwh * in.ExportRate
		spread := in.GridRateDay - in.GridRateNight
		if spread < 0 {
			spread = 0
		}
		batterySavings := in.BatteryCapacityKwh * roundTripEfficiency * annualBatteryCycles * spread
		return Breakdown{
			ExportIncome:   exportIncome,
			BatterySavings: batterySavings,
			Total:          exportIncome + batterySavings,
		}
	default:
		return splitSavings(in, selfUseFractionSolarOnly)
	}
}

func splitSavings(in Input, selfUseFraction float64) Breakdown {
	selfUse := in.AnnualGenerationKwh * selfUseFraction * in.GridRateDay
	export := in.AnnualGenerationKwh * (1 - selfUseFraction) * in.ExportRate
	return Breakdown{
		SelfUseSavings: selfUse,
		ExportIncome:   export,
		Total:          selfUse + export,
	}
}

// Payback returns the simple payback period in years, to one decimal place.
// "0.0" when savings are not positive; that guards the division, it is not a
// payback claim.
func Payback(netInvestment, totalAnnualSavings float64) string {
	if totalAnnualSavings <= 0 {
		return "0.0"
	}
	return fmt.Sprintf("%.1f", netInvestment/totalAnnualSavings)
}

// BillOffsetPercent is the advertised share of the electricity bill covered
// by the system. Policy lookup, not derived from the generation math.
func BillOffsetPercent(hasBattery bool) float64 {
	if hasBattery {
		return 94
	}
	return 65
}

// GridIndependencePercent is the advertised share of annual needs met
// without grid import.
func GridIndependencePercent(batteryCount int) float64 {
	switch {
	case batteryCount >= 2:
		return 95
	case batteryCount == 1:
		return 90
	default:
		return 30
	}
}
