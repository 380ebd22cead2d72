package plan

import (
	"github.com/sunterra/sunplan/internal/plan/domain"
	"github.com/sunterra/sunplan/internal/plan/service"
	"github.com/sunterra/sunplan/internal/plan/store"
	"github.com/sunterra/sunplan/internal/pricing"
	"github.com/sunterra/sunplan/pkg/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("plan.service",
	fx.Provide(pricing.NewResolver),
	fx.Provide(repository.ProvideStore[domain.PlanRecord]),
	fx.Provide(store.Provide),
	fx.Provide(service.NewService),
)
