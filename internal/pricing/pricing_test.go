package pricing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	catalogdomain "github.com/sunterra/sunplan/internal/catalog/domain"
	"go.uber.org/zap"
)

func newTestResolver() *Resolver {
	return NewResolver(zap.NewNop(), nil)
}

func slabConfig() catalogdomain.PricingConfig {
	return catalogdomain.PricingConfig{
		Type: catalogdomain.PricingTypeSlab,
		SlabTiers: []catalogdomain.SlabTier{
			{PanelCount: 8, Price: 6300},
			{PanelCount: 10, Price: 7100},
			{PanelCount: 12, Price: 7900},
			{PanelCount: 14, Price: 8700},
			{PanelCount: 16, Price: 9400},
			{PanelCount: 18, Price: 10100},
		},
	}
}

func hybridInverter() *catalogdomain.Inverter {
	return &catalogdomain.Inverter{
		ID: "iv-hybrid-6",
		Pricing: &catalogdomain.InverterPricing{
			InverterOnly: []catalogdomain.SlabTier{
				{PanelCount: 8, Price: 6200},
				{PanelCount: 10, Price: 7000},
				{PanelCount: 12, Price: 7800},
				{PanelCount: 14, Price: 8600},
				{PanelCount: 16, Price: 9300},
				{PanelCount: 18, Price: 10000},
			},
			WithBattery: map[string][]catalogdomain.SlabTier{
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
	}
}

func TestResolveSystemCost_InverterOverridePrecedence(t *testing.T) {
	r := newTestResolver()

	cost := r.ResolveSystemCost(context.Background(), Input{
		PanelCount: 12,
		Inverter:   hybridInverter(),
		Config:     slabConfig(),
	})

	// The inverter's own table wins over the brand slab (7900 at 12 panels).
	assert.Equal(t, 7800.0, cost)
}

func TestResolveSystemCost_BrandSlabWhenNoOverride(t *testing.T) {
	r := newTestResolver()

	cost := r.ResolveSystemCost(context.Background(), Input{
		PanelCount: 12,
		Inverter:   &catalogdomain.Inverter{ID: "iv-string-5"},
		Config:     slabConfig(),
	})

	assert.Equal(t, 7900.0, cost)
}

func TestResolveSystemCost_SlabRoundsUpToNextTier(t *testing.T) {
	r := newTestResolver()

	// 11 panels has no exact tier; price as the first tier at or above.
	cost := r.ResolveSystemCost(context.Background(), Input{
		PanelCount: 11,
		Config:     slabConfig(),
	})

	assert.Equal(t, 7900.0, cost)
}

func TestResolveSystemCost_BeyondTopTierUsesTopTier(t *testing.T) {
	r := newTestResolver()

	cost := r.ResolveSystemCost(context.Background(), Input{
		PanelCount: 22,
		Config:     slabConfig(),
	})

	// No extrapolation past the highest defined tier.
	assert.Equal(t, 10100.0, cost)
}

func TestResolveSystemCost_Monotonic(t *testing.T) {
	r := newTestResolver()
	cfg := slabConfig()

	prev := 0.0
	for count := 1; count <= 24; count++ {
		cost := r.ResolveSystemCost(context.Background(), Input{PanelCount: count, Config: cfg})
		assert.GreaterOrEqual(t, cost, prev, "cost regressed at %d panels", count)
		prev = cost
	}
}

func TestResolveSystemCost_ThresholdModel(t *testing.T) {
	r := newTestResolver()
	cfg := catalogdomain.PricingConfig{
		Type:                catalogdomain.PricingTypeThreshold,
		BasePanelThreshold:  10,
		BaseSystemPrice:     7000,
		AdditionalPanelCost: 380,
	}

	atThreshold := r.ResolveSystemCost(context.Background(), Input{PanelCount: 10, Config: cfg})
	assert.Equal(t, 7000.0, atThreshold)

	below := r.ResolveSystemCost(context.Background(), Input{PanelCount: 6, Config: cfg})
	assert.Equal(t, 7000.0, below)

	above := r.ResolveSystemCost(context.Background(), Input{PanelCount: 13, Config: cfg})
	assert.Equal(t, 7000.0+3*380, above)
}

func TestResolveSystemCost_AppliesAdjustmentsOnEveryPath(t *testing.T) {
	r := newTestResolver()
	panel := &catalogdomain.Panel{ID: "pn-455-prem", PriceAdjustment: 350}
	inverter := hybridInverter()
	inverter.PriceAdjustment = 120

	withOverride := r.ResolveSystemCost(context.Background(), Input{
		PanelCount: 12, Panel: panel, Inverter: inverter, Config: slabConfig(),
	})
	assert.Equal(t, 7800.0+350+120, withOverride)

	withSlab := r.ResolveSystemCost(context.Background(), Input{
		PanelCount: 12, Panel: panel, Config: slabConfig(),
	})
	assert.Equal(t, 7900.0+350, withSlab)

	withDefault := r.ResolveSystemCost(context.Background(), Input{
		PanelCount: 12, Panel: panel,
	})
	assert.Equal(t, 350.0, withDefault)
}

func TestResolveSystemCost_WithBatteryTable(t *testing.T) {
	r := newTestResolver()

	cost := r.ResolveSystemCost(context.Background(), Input{
		PanelCount:     12,
		Inverter:       hybridInverter(),
		IncludeBattery: true,
		Battery:        &catalogdomain.Battery{ID: "bat-10"},
	})

	assert.Equal(t, 10800.0, cost)
}

func TestResolveSystemCost_MissingBundleFallsBackToInverterOnly(t *testing.T) {
	r := newTestResolver()

	cost := r.ResolveSystemCost(context.Background(), Input{
		PanelCount:     12,
		Inverter:       hybridInverter(),
		IncludeBattery: true,
		Battery:        &catalogdomain.Battery{ID: "bat-unlisted"},
	})

	assert.Equal(t, 7800.0, cost)
}

func TestResolveBatteryPrice_AbsolutePriceWins(t *testing.T) {
	r := newTestResolver()

	price := r.ResolveBatteryPrice(context.Background(),
		&catalogdomain.Battery{ID: "bat-5", AbsolutePrice: 2800},
		hybridInverter(), 12)

	assert.Equal(t, 2800.0, price)
}

func TestResolveBatteryPrice_BundleDifference(t *testing.T) {
	r := newTestResolver()

	price := r.ResolveBatteryPrice(context.Background(),
		&catalogdomain.Battery{ID: "bat-10"},
		hybridInverter(), 12)

	assert.Equal(t, 3000.0, price)
}

func TestResolveBatteryPrice_NeverNegative(t *testing.T) {
	r := newTestResolver()
	inverter := &catalogdomain.Inverter{
		ID: "iv-odd",
		Pricing: &catalogdomain.InverterPricing{
			InverterOnly: []catalogdomain.SlabTier{{PanelCount: 12, Price: 9000}},
			WithBattery: map[string][]catalogdomain.SlabTier{
				"bat-10": {{PanelCount: 12, Price: 8500}},
			},
		},
	}

	price := r.ResolveBatteryPrice(context.Background(),
		&catalogdomain.Battery{ID: "bat-10"}, inverter, 12)

	assert.Equal(t, 0.0, price)
}

func TestResolveBatteryPrice_MissingBundleIsZero(t *testing.T) {
	r := newTestResolver()

	price := r.ResolveBatteryPrice(context.Background(),
		&catalogdomain.Battery{ID: "bat-unlisted"}, hybridInverter(), 12)

	assert.Equal(t, 0.0, price)
}
