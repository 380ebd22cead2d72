package domain

// DefaultCatalog is the built-in catalog used when neither the remote
// branding service nor a stored copy is available. Keeping it compiled in
// means a quote can always be produced, whatever the state of the outside
// world.
func DefaultCatalog() *Catalog {
	return &Catalog{
		BrandSlug: "sunterra",
		BrandName: "Sunterra Energy",
		Pricing: PricingConfig{
			Type: PricingTypeSlab,
			SlabTiers: []SlabTier{
				{PanelCount: 8, Price: 6300},
				{PanelCount: 10, Price: 7100},
				{PanelCount: 12, Price: 7900},
				{PanelCount: 14, Price: 8700},
				{PanelCount: 16, Price: 9400},
				{PanelCount: 18, Price: 10100},
			},
			DynamicSolarGrant: true,
			SolarGrantTierA:   900,
			SolarGrantTierB:   1400,
			SolarGrantTierC:   1800,
			DefaultEVGrant:    300,
			PanelWatts:        450,
		},
		Panels: []Panel{
			{ID: "pn-440", Name: "Apex 440", Tier: "standard", WarrantyYears: 25, Wattage: 440, EfficiencyPct: 21.2},
			{ID: "pn-450", Name: "Apex 450", Tier: "standard", WarrantyYears: 25, Wattage: 450, EfficiencyPct: 21.8, Recommended: true},
			{ID: "pn-455-prem", Name: "Apex 455 Black", Tier: "premium", WarrantyYears: 30, Wattage: 455, EfficiencyPct: 22.5, PriceAdjustment: 350},
		},
		Inverters: []Inverter{
			{
				ID: "iv-hybrid-6", Name: "HybridCore 6", Tier: "premium", WarrantyYears: 10,
				PowerKw: 6, Recommended: true,
				CompatibleBatteries: []string{"bat-10"},
				Pricing: &InverterPricing{
					InverterOnly: []SlabTier{
						{PanelCount: 8, Price: 6200},
						{PanelCount: 10, Price: 7000},
						{PanelCount: 12, Price: 7800},
						{PanelCount: 14, Price: 8600},
						{PanelCount: 16, Price: 9300},
						{PanelCount: 18, Price: 10000},
					},
					WithBattery: map[string][]SlabTier{
						"bat-10": {
							{PanelCount: 8, Price: 9200},
							{PanelCount: 10, Price: 10000},
							{PanelCount: 12, Price: 10800},
							{PanelCount: 14, Price: 11600},
							{PanelCount: 16, Price: 12300},
							{PanelCount: 18, Price: 13000},
						},
					},
				},
			},
			{ID: "iv-string-5", Name: "StringMax 5", Tier: "standard", WarrantyYears: 10, PowerKw: 5},
		},
		Batteries: []Battery{
			{ID: "bat-10", Name: "PowerVault 10", Tier: "premium", WarrantyYears: 10, CapacityKwh: 10, Recommended: true},
			{ID: "bat-5", Name: "PowerVault 5", Tier: "standard", WarrantyYears: 10, CapacityKwh: 5.2, AbsolutePrice: 2800},
		},
		EVChargers: []EVCharger{
			{ID: "ev-7kw", Name: "DriveCharge 7", Tier: "standard", WarrantyYears: 3, PowerKw: 7.4, AbsolutePrice: 1099, Grant: 300, Recommended: true},
		},
	}
}
