// Package seed bootstraps the default brand so a fresh install quotes from
// the compiled-in catalog without any remote branding service.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/sunterra/sunplan/internal/catalog/domain"
	"gorm.io/gorm"
)

// EnsureDefaultBrand inserts the built-in catalog if no row exists for its
// slug. An existing row is left alone, remote-sourced or not.
func EnsureDefaultBrand(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	catalog := catalogdomain.DefaultCatalog()
	payload, err := json.Marshal(catalog)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing catalogdomain.Brand
		err := tx.Where("slug = ?", catalog.BrandSlug).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now().UTC()
		return tx.Create(&catalogdomain.Brand{
			ID:        node.Generate(),
			Slug:      catalog.BrandSlug,
			Name:      catalog.BrandName,
			Catalog:   payload,
			Source:    catalogdomain.BrandSourceSeed,
			CreatedAt: now,
			UpdatedAt: now,
		}).Error
	})
}
