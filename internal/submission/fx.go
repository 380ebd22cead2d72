package submission

import (
	"github.com/sunterra/sunplan/internal/submission/domain"
	"github.com/sunterra/sunplan/internal/submission/service"
	"github.com/sunterra/sunplan/pkg/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("submission.service",
	fx.Provide(repository.ProvideStore[domain.Lead]),
	fx.Provide(service.NewService),
)
