package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	catalogdomain "github.com/sunterra/sunplan/internal/catalog/domain"
	"github.com/sunterra/sunplan/internal/config"
	"github.com/sunterra/sunplan/internal/plan/domain"
	"github.com/sunterra/sunplan/internal/plan/store"
	"github.com/sunterra/sunplan/internal/pricing"
	"github.com/sunterra/sunplan/internal/savings"
	"github.com/sunterra/sunplan/pkg/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type staticCatalog struct {
	catalog *catalogdomain.Catalog
}

func (s *staticCatalog) Catalog(ctx context.Context, slug string) (*catalogdomain.Catalog, error) {
	return s.catalog, nil
}

func (s *staticCatalog) Refresh(ctx context.Context, slug string) (*catalogdomain.Catalog, error) {
	return s.catalog, nil
}

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&domain.PlanRecord{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	planStore := store.Provide(store.StoreParam{
		Log:   zap.NewNop(),
		Repo:  repository.ProvideStore[domain.PlanRecord](gdb),
		GenID: node,
	})

	return NewService(ServiceParam{
		Log:      zap.NewNop(),
		Catalog:  &staticCatalog{catalog: catalogdomain.DefaultCatalog()},
		Resolver: pricing.NewResolver(zap.NewNop(), nil),
		Tariff:   config.NewStaticTariffConfigHolder(config.DefaultTariffConfig()),
		Store:    planStore,
	}, config.Config{BrandSlug: "sunterra", PanelWatts: 450})
}

func TestRecompute_Defaults(t *testing.T) {
	svc := newTestService(t)

	snapshot, err := svc.Recompute(context.Background(), "sess-defaults", domain.DefaultInputs())
	require.NoError(t, err)

	assert.Equal(t, savings.SolarOnly, snapshot.Specs.Scenario)
	assert.Equal(t, 12, snapshot.Specs.PanelCount)
	assert.InDelta(t, 0.45, snapshot.Specs.PanelWattageKw, 1e-9)
	assert.InDelta(t, 5.4, snapshot.Specs.SystemSizeKwp, 1e-9)
	assert.InDelta(t, 4920, snapshot.Specs.AnnualGenerationKwh, 1e-9)

	// Recommended inverter carries its own table: 7800 at 12 panels.
	assert.InDelta(t, 7800, snapshot.Costs.SystemBase, 1e-9)
	assert.InDelta(t, 1800, snapshot.Costs.SolarGrant, 1e-9)
	assert.InDelta(t, 6000, snapshot.Costs.NetTotal, 1e-9)

	assert.InDelta(t, 1205.4, snapshot.Savings.TotalAnnual, 1e-9)
	assert.Equal(t, "5.0", snapshot.Savings.PaybackYears)
	assert.InDelta(t, 65, snapshot.Savings.BillOffsetPercent, 1e-9)
	assert.InDelta(t, 30, snapshot.Savings.GridIndependencePercent, 1e-9)
	assert.InDelta(t, 2160, snapshot.Savings.AnnualBill, 1e-9)

	assert.Equal(t, 7, snapshot.Financing.TermYears)
	assert.Greater(t, snapshot.Financing.MonthlyPayment, 0.0)

	assert.Equal(t, "pn-450", snapshot.Equipment.Panel.ID)
	assert.Equal(t, "iv-hybrid-6", snapshot.Equipment.Inverter.ID)
	assert.Nil(t, snapshot.Equipment.Battery)

	assert.Equal(t, "1", snapshot.PlanVersion)
}

func TestRecompute_WithBattery(t *testing.T) {
	svc := newTestService(t)
	in := domain.DefaultInputs()
	in.IncludeBattery = true

	snapshot, err := svc.Recompute(context.Background(), "sess-battery", in)
	require.NoError(t, err)

	assert.Equal(t, savings.SolarPlusBattery, snapshot.Specs.Scenario)
	assert.Equal(t, 1, snapshot.Specs.BatteryCount)
	assert.InDelta(t, 10, snapshot.Specs.BatteryCapacityKwh, 1e-9)

	// Battery line is the bundle difference at 12 panels.
	assert.InDelta(t, 3000, snapshot.Costs.Battery, 1e-9)
	assert.InDelta(t, 10800, snapshot.Costs.TotalBeforeGrants, 1e-9)

	assert.InDelta(t, 1500.6, snapshot.Savings.TotalAnnual, 1e-9)
	assert.InDelta(t, 295.2, snapshot.Savings.BatteryContribution, 1e-9)
	assert.InDelta(t, 94, snapshot.Savings.BillOffsetPercent, 1e-9)
	assert.InDelta(t, 90, snapshot.Savings.GridIndependencePercent, 1e-9)
}

func TestRecompute_Arbitrage(t *testing.T) {
	svc := newTestService(t)
	in := domain.DefaultInputs()
	in.IncludeBattery = true
	in.NightCharging = true

	snapshot, err := svc.Recompute(context.Background(), "sess-arbitrage", in)
	require.NoError(t, err)

	assert.Equal(t, savings.SolarPlusBatteryArbitrage, snapshot.Specs.Scenario)
	assert.InDelta(t, 984, snapshot.Savings.ExportIncome, 1e-9)
	// 10 kWh at 90% efficiency, 315 cycles, 0.27 spread.
	assert.InDelta(t, 765.45, snapshot.Savings.TotalAnnual-snapshot.Savings.ExportIncome, 1e-9)
	assert.Zero(t, snapshot.Savings.SelfUseSavings)
}

func TestRecompute_EVChargerGrantAndEquipmentAreIndependent(t *testing.T) {
	svc := newTestService(t)

	grantOnly := domain.DefaultInputs()
	grantOnly.IncludeEVCharger = true
	snapshot, err := svc.Recompute(context.Background(), "sess-ev-grant", grantOnly)
	require.NoError(t, err)
	assert.InDelta(t, 300, snapshot.Costs.EVChargerGrant, 1e-9)
	assert.Zero(t, snapshot.Costs.EVCharger)

	equipmentOnly := domain.DefaultInputs()
	equipmentOnly.IncludeEVChargerEquipment = true
	snapshot, err = svc.Recompute(context.Background(), "sess-ev-equipment", equipmentOnly)
	require.NoError(t, err)
	assert.InDelta(t, 1099, snapshot.Costs.EVCharger, 1e-9)
	assert.Zero(t, snapshot.Costs.EVChargerGrant)
}

func TestRecompute_GrantIneligible(t *testing.T) {
	svc := newTestService(t)
	in := domain.DefaultInputs()
	in.GrantEligible = false

	snapshot, err := svc.Recompute(context.Background(), "sess-ineligible", in)
	require.NoError(t, err)

	assert.Zero(t, snapshot.Costs.SolarGrant)
	assert.InDelta(t, snapshot.Costs.TotalBeforeGrants, snapshot.Costs.NetTotal, 1e-9)
}

func TestRecompute_Idempotent(t *testing.T) {
	svc := newTestService(t)
	in := domain.DefaultInputs()
	in.IncludeBattery = true
	in.BatteryCount = 2

	first, err := svc.Recompute(context.Background(), "sess-idempotent", in)
	require.NoError(t, err)
	second, err := svc.Recompute(context.Background(), "sess-idempotent", in)
	require.NoError(t, err)

	assert.Equal(t, first.Specs, second.Specs)
	assert.Equal(t, first.Costs, second.Costs)
	assert.Equal(t, first.Savings, second.Savings)
	assert.Equal(t, first.Inputs, second.Inputs)
}

func TestRecompute_SubstitutesDiscontinuedEquipment(t *testing.T) {
	svc := newTestService(t)
	in := domain.DefaultInputs()
	in.PanelID = "pn-discontinued"

	snapshot, err := svc.Recompute(context.Background(), "sess-substitute", in)
	require.NoError(t, err)

	assert.Equal(t, "pn-450", snapshot.Equipment.Panel.ID)
	assert.Equal(t, "pn-450", snapshot.Inputs.PanelID)
}

func TestGet_NewSessionComputesDefaults(t *testing.T) {
	svc := newTestService(t)

	snapshot, err := svc.Get(context.Background(), "sess-fresh")
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultInputs().PanelCount, snapshot.Specs.PanelCount)
	assert.Equal(t, savings.SolarOnly, snapshot.Specs.Scenario)
}

func TestGet_RestoresPersistedPlan(t *testing.T) {
	svc := newTestService(t)
	in := domain.DefaultInputs()
	in.PanelCount = 16
	in.IncludeBattery = true

	saved, err := svc.Recompute(context.Background(), "sess-restore", in)
	require.NoError(t, err)

	restored, err := svc.Get(context.Background(), "sess-restore")
	require.NoError(t, err)

	assert.Equal(t, saved.Specs, restored.Specs)
	assert.Equal(t, saved.Costs, restored.Costs)
}

func TestGet_RestoresPersonalizationAnswers(t *testing.T) {
	svc := newTestService(t)
	in := domain.DefaultInputs()
	in.Answers = map[string]string{
		"roof_type":  "slate",
		"motivation": "bills",
	}

	saved, err := svc.Recompute(context.Background(), "sess-answers", in)
	require.NoError(t, err)
	assert.Equal(t, "slate", saved.Inputs.Answers["roof_type"])

	restored, err := svc.Get(context.Background(), "sess-answers")
	require.NoError(t, err)
	assert.Equal(t, in.Answers, restored.Inputs.Answers)
	assert.Equal(t, saved.PlanVersion, restored.PlanVersion)
}

func TestNormalizeClampsInputs(t *testing.T) {
	in := normalize(domain.Inputs{PanelCount: 100, IncludeBattery: true, BatteryCount: 9})
	assert.Equal(t, 30, in.PanelCount)
	assert.Equal(t, 2, in.BatteryCount)

	in = normalize(domain.Inputs{PanelCount: 1, BatteryCount: 2, NightCharging: true})
	assert.Equal(t, 4, in.PanelCount)
	assert.Zero(t, in.BatteryCount)
	assert.False(t, in.NightCharging)
}
