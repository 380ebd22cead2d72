// Package pricing resolves system hardware cost from the brand's pricing
// policy. Resolution is an ordered chain of strategies; every chain ends in a
// guaranteed-total default, so pricing never fails: gaps in a brand's tables
// degrade to the nearest defined tier and are counted, not raised.
package pricing

import (
	"context"
	"sort"

	catalogdomain "github.com/sunterra/sunplan/internal/catalog/domain"
	obsmetrics "github.com/sunterra/sunplan/internal/observability/metrics"
	"go.uber.org/zap"
)

// Input carries one cost resolution request.
type Input struct {
	PanelCount     int
	Panel          *catalogdomain.Panel
	Inverter       *catalogdomain.Inverter
	Config         catalogdomain.PricingConfig
	IncludeBattery bool
	Battery        *catalogdomain.Battery
}

// Strategy prices a system under one cost model. The boolean reports whether
// the strategy applies to the input at all.
type Strategy interface {
	Name() string
	Resolve(ctx context.Context, in Input) (float64, bool)
}

// Resolver walks an ordered strategy chain: inverter override first, then the
// brand-level model, terminating at a default that always answers.
type Resolver struct {
	strategies []Strategy
	log        *zap.Logger
	metrics    *obsmetrics.Metrics
}

func NewResolver(log *zap.Logger, metrics *obsmetrics.Metrics) *Resolver {
	r := &Resolver{
		log:     log.Named("pricing"),
		metrics: metrics,
	}
	r.strategies = []Strategy{
		&inverterOverrideStrategy{resolver: r},
		&brandSlabStrategy{resolver: r},
		&thresholdStrategy{},
		&defaultStrategy{},
	}
	return r
}

// Strategies exposes the chain order for inspection.
func (r *Resolver) Strategies() []Strategy {
	return r.strategies
}

// ResolveSystemCost prices the system for the requested panel count. The
// panel and inverter price adjustments are applied on top of whichever
// strategy answered. Out-of-range panel counts are still priced via the edge
// tier; no input is an error.
func (r *Resolver) ResolveSystemCost(ctx context.Context, in Input) float64 {
	base := 0.0
	for _, s := range r.strategies {
		if cost, ok := s.Resolve(ctx, in); ok {
			base = cost
			break
		}
	}

	if in.Panel != nil {
		base += in.Panel.PriceAdjustment
	}
	if in.Inverter != nil {
		base += in.Inverter.PriceAdjustment
	}
	return base
}

// ResolveBatteryPrice prices a single battery unit. Statically priced
// batteries answer directly; bundled batteries are priced as the difference
// between the inverter's with-battery and inverter-only tables at the same
// panel count, floored at zero.
func (r *Resolver) ResolveBatteryPrice(ctx context.Context, battery *catalogdomain.Battery, inverter *catalogdomain.Inverter, panelCount int) float64 {
	if battery == nil {
		return 0
	}
	if battery.AbsolutePrice > 0 {
		return battery.AbsolutePrice
	}
	if inverter == nil || inverter.Pricing == nil {
		return 0
	}

	withBattery, ok := inverter.Pricing.WithBattery[battery.ID]
	if !ok || len(withBattery) == 0 {
		r.observeFallback(ctx, "missing_battery_slab", zap.String("battery_id", battery.ID))
		return 0
	}

	bundled := r.slabPrice(ctx, withBattery, panelCount)
	alone := r.slabPrice(ctx, inverter.Pricing.InverterOnly, panelCount)
	diff := bundled - alone
	if diff < 0 {
		return 0
	}
	return diff
}

// slabPrice looks up the step-function price for a panel count: the first
// tier at or above the count, or the highest tier when the count exceeds
// every defined tier. No interpolation in either direction.
func (r *Resolver) slabPrice(ctx context.Context, tiers []catalogdomain.SlabTier, panelCount int) float64 {
	if len(tiers) == 0 {
		return 0
	}

	sorted := make([]catalogdomain.SlabTier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].PanelCount < sorted[j].PanelCount })

	for _, tier := range sorted {
		if tier.PanelCount >= panelCount {
			return tier.Price
		}
	}

	top := sorted[len(sorted)-1]
	r.observeFallback(ctx, "beyond_top_tier",
		zap.Int("panel_count", panelCount),
		zap.Int("top_tier", top.PanelCount))
	return top.Price
}

func (r *Resolver) observeFallback(ctx context.Context, reason string, fields ...zap.Field) {
	r.metrics.RecordPricingFallback(ctx, reason)
	r.log.Warn("pricing fallback", append([]zap.Field{zap.String("reason", reason)}, fields...)...)
}

type inverterOverrideStrategy struct {
	resolver *Resolver
}

func (s *inverterOverrideStrategy) Name() string { return "inverter_override" }

// Resolve applies when the selected inverter carries its own pricing tables.
// It replaces the brand-level model entirely: with-battery table when a
// battery is in play, inverter-only table otherwise or when the battery has
// no bundle entry.
func (s *inverterOverrideStrategy) Resolve(ctx context.Context, in Input) (float64, bool) {
	if in.Inverter == nil || in.Inverter.Pricing == nil {
		return 0, false
	}

	pricing := in.Inverter.Pricing
	if in.IncludeBattery && in.Battery != nil {
		if tiers, ok := pricing.WithBattery[in.Battery.ID]; ok && len(tiers) > 0 {
			return s.resolver.slabPrice(ctx, tiers, in.PanelCount), true
		}
		s.resolver.observeFallback(ctx, "missing_battery_slab",
			zap.String("battery_id", in.Battery.ID),
			zap.String("inverter_id", in.Inverter.ID))
	}

	if len(pricing.InverterOnly) == 0 {
		return 0, false
	}
	return s.resolver.slabPrice(ctx, pricing.InverterOnly, in.PanelCount), true
}

type brandSlabStrategy struct {
	resolver *Resolver
}

func (s *brandSlabStrategy) Name() string { return "brand_slab" }

func (s *brandSlabStrategy) Resolve(ctx context.Context, in Input) (float64, bool) {
	if in.Config.Type != catalogdomain.PricingTypeSlab || len(in.Config.SlabTiers) == 0 {
		return 0, false
	}
	return s.resolver.slabPrice(ctx, in.Config.SlabTiers, in.PanelCount), true
}

type thresholdStrategy struct{}

func (s *thresholdStrategy) Name() string { return "threshold_increment" }

func (s *thresholdStrategy) Resolve(ctx context.Context, in Input) (float64, bool) {
	if in.Config.Type != catalogdomain.PricingTypeThreshold {
		return 0, false
	}
	cost := in.Config.BaseSystemPrice
	if in.PanelCount > in.Config.BasePanelThreshold {
		cost += float64(in.PanelCount-in.Config.BasePanelThreshold) * in.Config.AdditionalPanelCost
	}
	return cost, true
}

// defaultStrategy terminates the chain so cost resolution is total.
type defaultStrategy struct{}

func (s *defaultStrategy) Name() string { return "default" }

func (s *defaultStrategy) Resolve(ctx context.Context, in Input) (float64, bool) {
	return 0, true
}
