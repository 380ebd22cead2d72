package service

import (
	"context"
	"errors"
	"math"
	"time"

	catalogdomain "github.com/sunterra/sunplan/internal/catalog/domain"
	"github.com/sunterra/sunplan/internal/config"
	"github.com/sunterra/sunplan/internal/geocode"
	"github.com/sunterra/sunplan/internal/grant"
	obsmetrics "github.com/sunterra/sunplan/internal/observability/metrics"
	"github.com/sunterra/sunplan/internal/plan/domain"
	"github.com/sunterra/sunplan/internal/pricing"
	"github.com/sunterra/sunplan/internal/savings"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	minPanelCount = 4
	maxPanelCount = 30

	// A system carries one or two battery units.
	maxBatteries = 2
)

// planVersion stamps every snapshot. The snapshot schema has no migration
// story; a reader that meets an unknown version recomputes from the inputs.
const planVersion = "1"

type Service struct {
	log      *zap.Logger
	catalog  catalogdomain.Service
	resolver *pricing.Resolver
	tariff   *config.TariffConfigHolder
	store    domain.Store
	geocoder geocode.Provider
	metrics  *obsmetrics.Metrics

	brandSlug  string
	panelWatts float64
}

type ServiceParam struct {
	fx.In

	Log      *zap.Logger
	Catalog  catalogdomain.Service
	Resolver *pricing.Resolver
	Tariff   *config.TariffConfigHolder
	Store    domain.Store
	Geocoder geocode.Provider `optional:"true"`
	Metrics  *obsmetrics.Metrics
}

func NewService(p ServiceParam, cfg config.Config) domain.Service {
	return &Service{
		log:        p.Log.Named("plan.service"),
		catalog:    p.Catalog,
		resolver:   p.Resolver,
		tariff:     p.Tariff,
		store:      p.Store,
		geocoder:   p.Geocoder,
		metrics:    p.Metrics,
		brandSlug:  cfg.BrandSlug,
		panelWatts: cfg.PanelWatts,
	}
}

func (s *Service) Recompute(ctx context.Context, sessionID string, in domain.Inputs) (*domain.Snapshot, error) {
	return s.compute(ctx, sessionID, in, true)
}

// Get restores the session's snapshot by recomputing its stored inputs
// against the current catalog. Equipment that no longer exists is replaced by
// the recommended model rather than erroring a returning visitor out of
// their quote.
func (s *Service) Get(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	snapshot, err := s.store.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrPlanNotFound) {
			return s.compute(ctx, sessionID, domain.DefaultInputs(), true)
		}
		return nil, err
	}
	return s.compute(ctx, sessionID, snapshot.Inputs, false)
}

func (s *Service) compute(ctx context.Context, sessionID string, in domain.Inputs, persist bool) (*domain.Snapshot, error) {
	in = normalize(in)

	catalog, err := s.catalog.Catalog(ctx, s.brandSlug)
	if err != nil {
		return nil, err
	}

	equipment := s.resolveEquipment(catalog, &in)
	s.resolveLocation(ctx, &in)

	tariff := s.tariff.Get()
	cfg := catalog.Pricing
	scenario := savings.ScenarioFor(in.IncludeBattery, in.NightCharging)

	specs := s.deriveSpecs(in, equipment, cfg, tariff, scenario)
	costs := s.deriveCosts(ctx, in, equipment, cfg, specs)
	summary := deriveSavings(in, specs, costs, tariff)

	snapshot := &domain.Snapshot{
		SessionID: sessionID,
		BrandSlug: catalog.BrandSlug,
		Inputs:    in,
		Specs:     specs,
		Costs:     costs,
		Savings:   summary,
		Equipment: equipment,
		Financing: deriveFinancing(costs.NetTotal, tariff.Finance),
		Property:  deriveProperty(in.IncludeBattery),

		PlanVersion: planVersion,
		ComputedAt:  time.Now().UTC(),
	}

	if persist {
		if err := s.store.Save(ctx, snapshot); err != nil {
			return nil, err
		}
	}

	s.metrics.RecordPlanRecompute(ctx, snapshot.BrandSlug, string(scenario))
	s.log.Debug("plan recomputed",
		zap.String("session_id", sessionID),
		zap.String("scenario", string(scenario)),
		zap.Int("panel_count", in.PanelCount),
		zap.Float64("net_total", costs.NetTotal))

	return snapshot, nil
}

// normalize clamps the inputs into the supported ranges. Bad input shapes the
// quote toward the defaults instead of failing the request.
func normalize(in domain.Inputs) domain.Inputs {
	if in.PanelCount <= 0 {
		in.PanelCount = domain.DefaultInputs().PanelCount
	}
	if in.PanelCount < minPanelCount {
		in.PanelCount = minPanelCount
	}
	if in.PanelCount > maxPanelCount {
		in.PanelCount = maxPanelCount
	}

	if in.IncludeBattery {
		if in.BatteryCount < 1 {
			in.BatteryCount = 1
		}
		if in.BatteryCount > maxBatteries {
			in.BatteryCount = maxBatteries
		}
	} else {
		in.BatteryCount = 0
		in.NightCharging = false
	}

	if in.MonthlyBill < 0 {
		in.MonthlyBill = 0
	}
	return in
}

// resolveEquipment maps the selected IDs onto catalog models, substituting
// the recommended model for anything missing, and rewrites the inputs with
// the IDs actually used.
func (s *Service) resolveEquipment(catalog *catalogdomain.Catalog, in *domain.Inputs) domain.Equipment {
	var eq domain.Equipment

	eq.Panel = catalog.PanelByID(in.PanelID)
	if eq.Panel == nil {
		if in.PanelID != "" {
			s.log.Info("panel not in catalog, substituting recommended", zap.String("panel_id", in.PanelID))
		}
		eq.Panel = catalog.RecommendedPanel()
	}

	eq.Inverter = catalog.InverterByID(in.InverterID)
	if eq.Inverter == nil {
		if in.InverterID != "" {
			s.log.Info("inverter not in catalog, substituting recommended", zap.String("inverter_id", in.InverterID))
		}
		eq.Inverter = catalog.RecommendedInverter()
	}

	if in.IncludeBattery {
		eq.Battery = catalog.BatteryByID(in.BatteryID)
		if eq.Battery == nil {
			eq.Battery = catalog.RecommendedBattery()
		}
		if eq.Battery != nil && !eq.Inverter.SupportsBattery(eq.Battery.ID) {
			if replacement := firstCompatibleBattery(catalog, eq.Inverter); replacement != nil {
				s.log.Info("battery incompatible with inverter, substituting",
					zap.String("battery_id", eq.Battery.ID),
					zap.String("inverter_id", eq.Inverter.ID),
					zap.String("replacement_id", replacement.ID))
				eq.Battery = replacement
			}
		}
	}

	if in.IncludeEVCharger || in.IncludeEVChargerEquipment {
		eq.EVCharger = catalog.EVChargerByID(in.EVChargerID)
		if eq.EVCharger == nil {
			eq.EVCharger = catalog.RecommendedEVCharger()
		}
	}

	if eq.Panel != nil {
		in.PanelID = eq.Panel.ID
	}
	if eq.Inverter != nil {
		in.InverterID = eq.Inverter.ID
	}
	if eq.Battery != nil {
		in.BatteryID = eq.Battery.ID
	}
	if eq.EVCharger != nil {
		in.EVChargerID = eq.EVCharger.ID
	}
	return eq
}

func firstCompatibleBattery(catalog *catalogdomain.Catalog, inverter *catalogdomain.Inverter) *catalogdomain.Battery {
	for i := range catalog.Batteries {
		if inverter.SupportsBattery(catalog.Batteries[i].ID) {
			return &catalog.Batteries[i]
		}
	}
	return nil
}

func (s *Service) resolveLocation(ctx context.Context, in *domain.Inputs) {
	if s.geocoder == nil || in.Location.Address == "" {
		return
	}
	if in.Location.Lat != 0 || in.Location.Lon != 0 {
		return
	}
	result, err := s.geocoder.Geocode(ctx, in.Location.Address)
	if err != nil {
		s.log.Warn("geocode failed", zap.Error(err))
		return
	}
	if result != nil {
		in.Location.Lat = result.Lat
		in.Location.Lon = result.Lon
	}
}

func (s *Service) deriveSpecs(in domain.Inputs, eq domain.Equipment, cfg catalogdomain.PricingConfig, tariff config.TariffConfig, scenario savings.Scenario) domain.SystemSpecs {
	panelWatts := s.panelWatts
	if cfg.PanelWatts > 0 {
		panelWatts = cfg.PanelWatts
	}
	if eq.Panel != nil && eq.Panel.Wattage > 0 {
		panelWatts = eq.Panel.Wattage
	}
	wattageKw := panelWatts / 1000

	perPanelKwh := tariff.PerPanelGenerationKwh
	if cfg.PerPanelGenerationKwh > 0 {
		perPanelKwh = cfg.PerPanelGenerationKwh
	}

	specs := domain.SystemSpecs{
		PanelCount:          in.PanelCount,
		PanelWattageKw:      wattageKw,
		SystemSizeKwp:       float64(in.PanelCount) * wattageKw,
		AnnualGenerationKwh: float64(in.PanelCount) * perPanelKwh,
		Scenario:            scenario,
	}
	if in.IncludeBattery && eq.Battery != nil {
		specs.BatteryCount = in.BatteryCount
		specs.BatteryCapacityKwh = eq.Battery.CapacityKwh * float64(in.BatteryCount)
	}
	return specs
}

// deriveCosts prices the order. The system line is always priced without a
// battery; the battery line carries the per-unit bundle difference, so the
// two sum to the bundled table price at one battery.
func (s *Service) deriveCosts(ctx context.Context, in domain.Inputs, eq domain.Equipment, cfg catalogdomain.PricingConfig, specs domain.SystemSpecs) domain.CostBreakdown {
	var costs domain.CostBreakdown

	costs.SystemBase = s.resolver.ResolveSystemCost(ctx, pricing.Input{
		PanelCount: in.PanelCount,
		Panel:      eq.Panel,
		Inverter:   eq.Inverter,
		Config:     cfg,
	})

	if in.IncludeBattery && eq.Battery != nil {
		unit := s.resolver.ResolveBatteryPrice(ctx, eq.Battery, eq.Inverter, in.PanelCount)
		costs.Battery = unit * float64(in.BatteryCount)
	}

	if in.IncludeEVChargerEquipment && eq.EVCharger != nil {
		costs.EVCharger = eq.EVCharger.AbsolutePrice
	}

	costs.TotalBeforeGrants = costs.SystemBase + costs.Battery + costs.EVCharger

	if in.GrantEligible {
		costs.SolarGrant = grant.ResolveSolarGrant(in.PanelCount, specs.PanelWattageKw, cfg)
	}
	costs.EVChargerGrant = grant.ResolveEVChargerGrant(in.IncludeEVCharger, eq.EVCharger, cfg)
	costs.TotalGrants = costs.SolarGrant + costs.EVChargerGrant

	costs.NetTotal = costs.TotalBeforeGrants - costs.TotalGrants
	if costs.NetTotal < 0 {
		costs.NetTotal = 0
	}
	return costs
}

func deriveSavings(in domain.Inputs, specs domain.SystemSpecs, costs domain.CostBreakdown, tariff config.TariffConfig) domain.SavingsSummary {
	input := savings.Input{
		AnnualGenerationKwh: specs.AnnualGenerationKwh,
		GridRateDay:         tariff.GridRateDay,
		GridRateNight:       tariff.GridRateNight,
		ExportRate:          tariff.ExportRate,
		BatteryCapacityKwh:  specs.BatteryCapacityKwh,
		BatteryCount:        specs.BatteryCount,
	}
	breakdown := savings.Compute(specs.Scenario, input)

	batteryContribution := 0.0
	if in.IncludeBattery {
		baseline := savings.Compute(savings.SolarOnly, input)
		batteryContribution = breakdown.Total - baseline.Total
		if batteryContribution < 0 {
			batteryContribution = 0
		}
	}

	batteryCount := 0
	if in.IncludeBattery {
		batteryCount = specs.BatteryCount
	}

	return domain.SavingsSummary{
		SelfUseSavings:      breakdown.SelfUseSavings,
		ExportIncome:        breakdown.ExportIncome,
		BatteryContribution: batteryContribution,
		TotalAnnual:         breakdown.Total,

		AnnualBill:              in.MonthlyBill * 12,
		BillOffsetPercent:       savings.BillOffsetPercent(in.IncludeBattery),
		GridIndependencePercent: savings.GridIndependencePercent(batteryCount),
		PaybackYears:            savings.Payback(costs.NetTotal, breakdown.Total),
	}
}

// deriveFinancing computes an amortized monthly repayment for the net total.
func deriveFinancing(principal float64, fin config.FinanceConfig) domain.Financing {
	financing := domain.Financing{
		TermYears:  fin.TermYears,
		AnnualRate: fin.AnnualRate,
	}
	if principal <= 0 || fin.TermYears <= 0 {
		return financing
	}

	months := float64(fin.TermYears * 12)
	monthlyRate := fin.AnnualRate / 12
	if monthlyRate <= 0 {
		financing.MonthlyPayment = principal / months
		return financing
	}
	financing.MonthlyPayment = principal * monthlyRate / (1 - math.Pow(1+monthlyRate, -months))
	return financing
}

func deriveProperty(hasBattery bool) domain.PropertyImpact {
	if hasBattery {
		return domain.PropertyImpact{
			ValueUpliftPercent: 3.5,
			BERImprovement:     "up to two ratings",
		}
	}
	return domain.PropertyImpact{
		ValueUpliftPercent: 2.0,
		BERImprovement:     "up to one rating",
	}
}
