package domain

import (
	"context"
	"errors"
)

type Service interface {
	// Catalog returns the brand's current catalog, preferring the freshest
	// available source: remote branding service, then the stored copy, then
	// the built-in defaults. It never fails on a remote outage.
	Catalog(ctx context.Context, slug string) (*Catalog, error)

	// Refresh forces a remote fetch and stores the result.
	Refresh(ctx context.Context, slug string) (*Catalog, error)
}

var (
	ErrInvalidSlug   = errors.New("invalid_brand_slug")
	ErrBrandNotFound = errors.New("brand_not_found")
)
