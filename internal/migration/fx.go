package migration

import (
	catalogdomain "github.com/sunterra/sunplan/internal/catalog/domain"
	"github.com/sunterra/sunplan/internal/config"
	plandomain "github.com/sunterra/sunplan/internal/plan/domain"
	"github.com/sunterra/sunplan/internal/seed"
	submissiondomain "github.com/sunterra/sunplan/internal/submission/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			if err := conn.AutoMigrate(
				&catalogdomain.Brand{},
				&plandomain.PlanRecord{},
				&submissiondomain.Lead{},
			); err != nil {
				return err
			}
		}

		return seed.EnsureDefaultBrand(conn)
	}),
)
