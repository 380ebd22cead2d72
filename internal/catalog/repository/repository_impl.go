package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sunterra/sunplan/internal/catalog/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) FindBySlug(ctx context.Context, slug string) (*domain.Brand, error) {
	var brand domain.Brand
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&brand).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &brand, nil
}

func (r *repo) Upsert(ctx context.Context, brand *domain.Brand) error {
	brand.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "catalog", "source", "updated_at"}),
	}).Create(brand).Error
}
