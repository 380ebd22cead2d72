// Package grant computes government incentive amounts for a configured
// system. Eligibility (for example the build-year cutoff) is decided by the
// caller; these functions only turn a size and a policy into an amount.
package grant

import (
	catalogdomain "github.com/sunterra/sunplan/internal/catalog/domain"
)

// ResolveSolarGrant returns the solar subsidy for the configured system.
// In dynamic mode the grant is a step function of nameplate capacity:
// tier A up to 2 kWp, tier B up to 4 kWp, tier C (the cap) above that.
// A system at 2.01 kWp gets the full tier B amount, nothing prorated.
// When dynamic mode is off the brand's static grant applies unconditionally.
func ResolveSolarGrant(panelCount int, panelWattageKw float64, cfg catalogdomain.PricingConfig) float64 {
	if !cfg.DynamicSolarGrant {
		return cfg.StaticSolarGrant
	}

	systemSizeKwp := float64(panelCount) * panelWattageKw
	switch {
	case systemSizeKwp <= 2:
		return cfg.SolarGrantTierA
	case systemSizeKwp <= 4:
		return cfg.SolarGrantTierB
	default:
		return cfg.SolarGrantTierC
	}
}

// ResolveEVChargerGrant returns the charge point subsidy: the charger's own
// grant when defined, else the brand default, else zero. Zero when no charger
// is included.
func ResolveEVChargerGrant(includeCharger bool, charger *catalogdomain.EVCharger, cfg catalogdomain.PricingConfig) float64 {
	if !includeCharger {
		return 0
	}
	if charger != nil && charger.Grant > 0 {
		return charger.Grant
	}
	return cfg.DefaultEVGrant
}
