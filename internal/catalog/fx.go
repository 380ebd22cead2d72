package catalog

import (
	"github.com/sunterra/sunplan/internal/catalog/repository"
	"github.com/sunterra/sunplan/internal/catalog/service"
	"github.com/sunterra/sunplan/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(provideConfig),
	fx.Provide(service.NewService),
)

func provideConfig(cfg config.Config) service.Config {
	return service.Config{BrandingURL: cfg.BrandingURL}
}
