// Package domain contains the equipment catalog and pricing policy models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// PricingType selects the brand-level cost model. Exactly one model is
// authoritative per brand.
type PricingType string

const (
	PricingTypeSlab      PricingType = "slab"
	PricingTypeThreshold PricingType = "threshold"
)

// SlabTier is one step of a slab price table. A system of up to PanelCount
// panels costs Price.
type SlabTier struct {
	PanelCount int     `json:"panelCount"`
	Price      float64 `json:"price"`
}

// PricingConfig is the brand-level pricing and grant policy.
type PricingConfig struct {
	Type PricingType `json:"type"`

	// Threshold model: BaseSystemPrice covers up to BasePanelThreshold
	// panels; each panel beyond adds AdditionalPanelCost.
	BasePanelThreshold  int     `json:"basePanelThreshold,omitempty"`
	BaseSystemPrice     float64 `json:"baseSystemPrice,omitempty"`
	AdditionalPanelCost float64 `json:"additionalPanelCost,omitempty"`

	// Slab model: ordered price steps keyed by panel count.
	SlabTiers []SlabTier `json:"slabTiers,omitempty"`

	// Solar grant policy. When DynamicSolarGrant is false the static amount
	// applies unconditionally.
	DynamicSolarGrant bool    `json:"dynamicSolarGrant"`
	StaticSolarGrant  float64 `json:"staticSolarGrant,omitempty"`
	SolarGrantTierA   float64 `json:"solarGrantTierA,omitempty"`
	SolarGrantTierB   float64 `json:"solarGrantTierB,omitempty"`
	SolarGrantTierC   float64 `json:"solarGrantTierC,omitempty"`

	DefaultEVGrant float64 `json:"defaultEVGrant,omitempty"`

	// PanelWatts overrides the instance-wide nameplate wattage when set.
	PanelWatts float64 `json:"panelWatts,omitempty"`

	// PerPanelGenerationKwh overrides the tariff policy's assumed annual
	// yield per panel when set.
	PerPanelGenerationKwh float64 `json:"perPanelGenerationKwh,omitempty"`
}

// InverterPricing is an inverter-specific pricing override. When present it
// replaces the brand-level model entirely: the inverter-only table prices the
// system without a battery, and WithBattery carries one table per bundled
// battery ID. Bundle prices are not additive; the battery's price is defined
// as the difference between the two tables at the same panel count.
type InverterPricing struct {
	InverterOnly []SlabTier            `json:"inverterOnly"`
	WithBattery  map[string][]SlabTier `json:"withBattery,omitempty"`
}

// Panel is a purchasable solar panel model.
type Panel struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Tier            string  `json:"tier"`
	WarrantyYears   int     `json:"warrantyYears"`
	Wattage         float64 `json:"wattage"`
	EfficiencyPct   float64 `json:"efficiencyPct"`
	PriceAdjustment float64 `json:"priceAdjustment,omitempty"`
	Recommended     bool    `json:"recommended,omitempty"`
}

// Inverter is a purchasable inverter model.
type Inverter struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Tier            string   `json:"tier"`
	WarrantyYears   int      `json:"warrantyYears"`
	PowerKw         float64  `json:"powerKw"`
	PriceAdjustment float64  `json:"priceAdjustment,omitempty"`
	Recommended     bool     `json:"recommended,omitempty"`
	// CompatibleBatteries restricts pairing when non-empty; an empty list
	// means compatible with all batteries.
	CompatibleBatteries []string         `json:"compatibleBatteries,omitempty"`
	Pricing             *InverterPricing `json:"pricing,omitempty"`
}

// SupportsBattery reports whether the inverter may be paired with the given
// battery ID.
func (i *Inverter) SupportsBattery(batteryID string) bool {
	if i == nil {
		return false
	}
	if len(i.CompatibleBatteries) == 0 {
		return true
	}
	for _, id := range i.CompatibleBatteries {
		if id == batteryID {
			return true
		}
	}
	return false
}

// Battery is a purchasable storage battery model. AbsolutePrice of zero means
// the price is derived from the paired inverter's bundle tables.
type Battery struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Tier          string  `json:"tier"`
	WarrantyYears int     `json:"warrantyYears"`
	CapacityKwh   float64 `json:"capacityKwh"`
	AbsolutePrice float64 `json:"absolutePrice,omitempty"`
	Recommended   bool    `json:"recommended,omitempty"`
}

// EVCharger is a purchasable EV charge point model.
type EVCharger struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Tier          string  `json:"tier"`
	WarrantyYears int     `json:"warrantyYears"`
	PowerKw       float64 `json:"powerKw"`
	AbsolutePrice float64 `json:"absolutePrice,omitempty"`
	Grant         float64 `json:"grant,omitempty"`
	Recommended   bool    `json:"recommended,omitempty"`
}

// Catalog is a brand's full equipment and pricing dataset.
type Catalog struct {
	BrandSlug  string        `json:"brandSlug"`
	BrandName  string        `json:"brandName"`
	Pricing    PricingConfig `json:"pricing"`
	Panels     []Panel       `json:"panels"`
	Inverters  []Inverter    `json:"inverters"`
	Batteries  []Battery     `json:"batteries"`
	EVChargers []EVCharger   `json:"evChargers"`
}

func (c *Catalog) PanelByID(id string) *Panel {
	for i := range c.Panels {
		if c.Panels[i].ID == id {
			return &c.Panels[i]
		}
	}
	return nil
}

func (c *Catalog) InverterByID(id string) *Inverter {
	for i := range c.Inverters {
		if c.Inverters[i].ID == id {
			return &c.Inverters[i]
		}
	}
	return nil
}

func (c *Catalog) BatteryByID(id string) *Battery {
	for i := range c.Batteries {
		if c.Batteries[i].ID == id {
			return &c.Batteries[i]
		}
	}
	return nil
}

func (c *Catalog) EVChargerByID(id string) *EVCharger {
	for i := range c.EVChargers {
		if c.EVChargers[i].ID == id {
			return &c.EVChargers[i]
		}
	}
	return nil
}

// RecommendedPanel returns the flagged panel, or the first one.
func (c *Catalog) RecommendedPanel() *Panel {
	for i := range c.Panels {
		if c.Panels[i].Recommended {
			return &c.Panels[i]
		}
	}
	if len(c.Panels) > 0 {
		return &c.Panels[0]
	}
	return nil
}

// RecommendedInverter returns the flagged inverter, or the first one.
func (c *Catalog) RecommendedInverter() *Inverter {
	for i := range c.Inverters {
		if c.Inverters[i].Recommended {
			return &c.Inverters[i]
		}
	}
	if len(c.Inverters) > 0 {
		return &c.Inverters[0]
	}
	return nil
}

// RecommendedBattery returns the flagged battery, or the first one.
func (c *Catalog) RecommendedBattery() *Battery {
	for i := range c.Batteries {
		if c.Batteries[i].Recommended {
			return &c.Batteries[i]
		}
	}
	if len(c.Batteries) > 0 {
		return &c.Batteries[0]
	}
	return nil
}

// RecommendedEVCharger returns the flagged charger, or the first one.
func (c *Catalog) RecommendedEVCharger() *EVCharger {
	for i := range c.EVChargers {
		if c.EVChargers[i].Recommended {
			return &c.EVChargers[i]
		}
	}
	if len(c.EVChargers) > 0 {
		return &c.EVChargers[0]
	}
	return nil
}

// Brand is the persisted catalog row. The catalog payload is stored as JSON
// so a remote refresh replaces it atomically.
type Brand struct {
	ID        snowflake.ID   `gorm:"primaryKey"`
	Slug      string         `gorm:"type:text;not null;uniqueIndex"`
	Name      string         `gorm:"type:text;not null"`
	Catalog   datatypes.JSON `gorm:"not null"`
	Source    string         `gorm:"type:text;not null"`
	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Brand) TableName() string { return "brands" }

const (
	BrandSourceRemote = "remote"
	BrandSourceSeed   = "seed"
)
