package domain

import "context"

type Repository interface {
	FindBySlug(ctx context.Context, slug string) (*Brand, error)
	Upsert(ctx context.Context, brand *Brand) error
}
