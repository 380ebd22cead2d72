// Package domain contains the quote plan models: the wizard inputs and the
// derived snapshot computed from them.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/sunterra/sunplan/internal/catalog/domain"
	"github.com/sunterra/sunplan/internal/savings"
	"gorm.io/datatypes"
)

// Location is the property address captured by the wizard. Coordinates are
// optional; they are filled by the geocoder when one is configured.
type Location struct {
	Address string  `json:"address,omitempty"`
	Eircode string  `json:"eircode,omitempty"`
	Lat     float64 `json:"lat,omitempty"`
	Lon     float64 `json:"lon,omitempty"`
}

// Inputs is the full wizard state. Every field has a usable zero-adjacent
// default; a recompute never rejects an input combination.
type Inputs struct {
	PanelCount int    `json:"panelCount"`
	PanelID    string `json:"panelId,omitempty"`
	InverterID string `json:"inverterId,omitempty"`

	IncludeBattery bool   `json:"includeBattery"`
	BatteryID      string `json:"batteryId,omitempty"`
	BatteryCount   int    `json:"batteryCount,omitempty"`

	// NightCharging selects arbitrage mode: charge from the night rate, export
	// all generation. Only meaningful with a battery.
	NightCharging bool `json:"nightCharging"`

	// IncludeEVCharger expresses grant interest; IncludeEVChargerEquipment
	// adds the charge point hardware to the order. The two are independent.
	IncludeEVCharger          bool   `json:"includeEvCharger"`
	IncludeEVChargerEquipment bool   `json:"includeEvChargerEquipment"`
	EVChargerID               string `json:"evChargerId,omitempty"`

	// GrantEligible reflects the build-year rule the applicant self-declares.
	GrantEligible bool `json:"grantEligible"`

	MonthlyBill float64  `json:"monthlyBill"`
	Location    Location `json:"location"`
	FirstName   string   `json:"firstName,omitempty"`

	// Answers holds the wizard's free-form questionnaire responses, keyed by
	// question ID. They personalize the proposal copy; nothing here feeds the
	// calculations.
	Answers map[string]string `json:"personalizationAnswers,omitempty"`
}

// DefaultInputs is the wizard's starting state before the user touches
// anything.
func DefaultInputs() Inputs {
	return Inputs{
		PanelCount:    12,
		GrantEligible: true,
		MonthlyBill:   180,
	}
}

// SystemSpecs are the physical figures derived from the inputs.
type SystemSpecs struct {
	PanelCount          int              `json:"panelCount"`
	PanelWattageKw      float64          `json:"panelWattageKw"`
	SystemSizeKwp       float64          `json:"systemSizeKwp"`
	AnnualGenerationKwh float64          `json:"annualGenerationKwh"`
	BatteryCount        int              `json:"batteryCount"`
	BatteryCapacityKwh  float64          `json:"batteryCapacityKwh"`
	Scenario            savings.Scenario `json:"scenario"`
}

// CostBreakdown is the priced order, before and after grants.
type CostBreakdown struct {
	SystemBase        float64 `json:"systemBase"`
	Battery           float64 `json:"battery"`
	EVCharger         float64 `json:"evCharger"`
	TotalBeforeGrants float64 `json:"totalBeforeGrants"`

	SolarGrant     float64 `json:"solarGrant"`
	EVChargerGrant float64 `json:"evChargerGrant"`
	TotalGrants    float64 `json:"totalGrants"`

	NetTotal float64 `json:"netTotal"`
}

// SavingsSummary is the annual benefit alongside the headline figures shown
// on the quote.
type SavingsSummary struct {
	SelfUseSavings float64 `json:"selfUseSavings"`
	ExportIncome   float64 `json:"exportIncome"`
	// BatteryContribution is the uplift over the solar-only scenario, so the
	// quote can attribute a euro figure to the battery toggle.
	BatteryContribution float64 `json:"batteryContribution"`
	TotalAnnual         float64 `json:"totalAnnual"`

	AnnualBill              float64 `json:"annualBill"`
	BillOffsetPercent       float64 `json:"billOffsetPercent"`
	GridIndependencePercent float64 `json:"gridIndependencePercent"`
	PaybackYears            string  `json:"paybackYears"`
}

// Financing is the indicative repayment estimate, not a credit offer.
type Financing struct {
	MonthlyPayment float64 `json:"monthlyPayment"`
	TermYears      int     `json:"termYears"`
	AnnualRate     float64 `json:"annualRate"`
}

// PropertyImpact carries the advertised effect on the property itself.
type PropertyImpact struct {
	ValueUpliftPercent float64 `json:"valueUpliftPercent"`
	BERImprovement     string  `json:"berImprovement"`
}

// Equipment is the resolved hardware selection. Full models are embedded so
// the quote renders without a second catalog lookup, and so a later catalog
// change cannot silently reprice an already-presented snapshot.
type Equipment struct {
	Panel     *catalogdomain.Panel     `json:"panel,omitempty"`
	Inverter  *catalogdomain.Inverter  `json:"inverter,omitempty"`
	Battery   *catalogdomain.Battery   `json:"battery,omitempty"`
	EVCharger *catalogdomain.EVCharger `json:"evCharger,omitempty"`
}

// Snapshot is the fully derived plan for one wizard session.
type Snapshot struct {
	SessionID string `json:"sessionId"`
	BrandSlug string `json:"brandSlug"`

	Inputs    Inputs         `json:"inputs"`
	Specs     SystemSpecs    `json:"specs"`
	Costs     CostBreakdown  `json:"costs"`
	Savings   SavingsSummary `json:"savings"`
	Equipment Equipment      `json:"equipment"`
	Financing Financing      `json:"financing"`
	Property  PropertyImpact `json:"property"`

	PlanVersion string    `json:"planVersion"`
	ComputedAt  time.Time `json:"computedAt"`
}

// PlanRecord is the persisted snapshot row. The payload is stored as JSON so
// the schema does not chase the snapshot shape.
type PlanRecord struct {
	ID        snowflake.ID   `gorm:"primaryKey"`
	SessionID string         `gorm:"type:text;not null;uniqueIndex"`
	BrandSlug string         `gorm:"type:text;not null;index"`
	Snapshot  datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (PlanRecord) TableName() string { return "plan_snapshots" }
