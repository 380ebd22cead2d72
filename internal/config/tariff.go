package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// TariffConfig carries the electricity tariff and finance policy used by the
// savings and payback calculations. Rates are EUR per kWh.
type TariffConfig struct {
	GridRateDay   float64 `mapstructure:"gridRateDay"`
	GridRateNight float64 `mapstructure:"gridRateNight"`
	ExportRate    float64 `mapstructure:"exportRate"`

	// PerPanelGenerationKwh is the assumed annual yield of a single panel,
	// derived from the business proposal dataset (total annual generation
	// divided by the proposal's panel count) and treated as a constant.
	PerPanelGenerationKwh float64 `mapstructure:"perPanelGenerationKwh"`

	Finance FinanceConfig `mapstructure:"finance"`
}

// FinanceConfig drives the indicative monthly-repayment estimate shown on a
// plan. It is a sales illustration, not a credit offer.
type FinanceConfig struct {
	AnnualRate float64 `mapstructure:"annualRate"`
	TermYears  int     `mapstructure:"termYears"`
}

func DefaultTariffConfig() TariffConfig {
	return TariffConfig{
		GridRateDay:           0.35,
		GridRateNight:         0.08,
		ExportRate:            0.20,
		PerPanelGenerationKwh: 410,
		Finance: FinanceConfig{
			AnnualRate: 0.049,
			TermYears:  7,
		},
	}
}

// TariffConfigHolder exposes the current tariff policy with hot reload.
type TariffConfigHolder struct {
	current atomic.Value // holds TariffConfig
}

func NewTariffConfigHolder() (*TariffConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("tariff")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/sunplan/config")
	v.AddConfigPath("/etc/sunplan")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SUNPLAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultTariffConfig()
		v.SetDefault("tariff.gridRateDay", defaults.GridRateDay)
		v.SetDefault("tariff.gridRateNight", defaults.GridRateNight)
		v.SetDefault("tariff.exportRate", defaults.ExportRate)
		v.SetDefault("tariff.perPanelGenerationKwh", defaults.PerPanelGenerationKwh)
		v.SetDefault("tariff.finance", defaults.Finance)
	}

	var cfg TariffConfig
	if err := v.UnmarshalKey("tariff", &cfg); err != nil {
		return nil, err
	}
	if err := validateTariffConfig(cfg); err != nil {
		return nil, err
	}

	holder := &TariffConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated TariffConfig
		if err := v.UnmarshalKey("tariff", &updated); err != nil {
			log.Printf("[tariff-config] reload failed: %v", err)
			return
		}
		if err := validateTariffConfig(updated); err != nil {
			log.Printf("[tariff-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[tariff-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticTariffConfigHolder returns a holder pinned to cfg, with no file
// watching. For tests and one-shot tools.
func NewStaticTariffConfigHolder(cfg TariffConfig) *TariffConfigHolder {
	holder := &TariffConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *TariffConfigHolder) Get() TariffConfig {
	return h.current.Load().(TariffConfig)
}

func validateTariffConfig(cfg TariffConfig) error {
	if cfg.GridRateDay <= 0 {
		return errors.New("tariff.gridRateDay must be positive")
	}
	if cfg.ExportRate < 0 || cfg.GridRateNight < 0 {
		return errors.New("tariff rates cannot be negative")
	}
	if cfg.GridRateNight > cfg.GridRateDay {
		return errors.New("tariff.gridRateNight cannot exceed gridRateDay")
	}
	if cfg.PerPanelGenerationKwh <= 0 {
		return errors.New("tariff.perPanelGenerationKwh must be positive")
	}
	if cfg.Finance.TermYears <= 0 {
		return errors.New("tariff.finance.termYears must be positive")
	}
	return nil
}
