package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/sunterra/sunplan/internal/catalog/domain"
	obsmetrics "github.com/sunterra/sunplan/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Service struct {
	log     *zap.Logger
	repo    domain.Repository
	genID   *snowflake.Node
	metrics *obsmetrics.Metrics

	brandingURL string
	client      *http.Client
}

type ServiceParam struct {
	fx.In

	Log     *zap.Logger
	Repo    domain.Repository
	GenID   *snowflake.Node
	Metrics *obsmetrics.Metrics
}

// Config narrows the application config to what the catalog service needs.
type Config struct {
	BrandingURL string
}

func NewService(p ServiceParam, cfg Config) domain.Service {
	return &Service{
		log:         p.Log.Named("catalog.service"),
		repo:        p.Repo,
		genID:       p.GenID,
		metrics:     p.Metrics,
		brandingURL: strings.TrimRight(cfg.BrandingURL, "/"),
		client:      &http.Client{Timeout: 5 * time.Second},
	}
}

func (s *Service) Catalog(ctx context.Context, rawSlug string) (*domain.Catalog, error) {
	brandSlug := slug.Make(strings.TrimSpace(rawSlug))
	if brandSlug == "" {
		return nil, domain.ErrInvalidSlug
	}

	if s.brandingURL != "" {
		catalog, err := s.fetchRemote(ctx, brandSlug)
		if err == nil {
			s.store(ctx, catalog, domain.BrandSourceRemote)
			return catalog, nil
		}
		s.log.Warn("remote catalog fetch failed, degrading to local copy",
			zap.String("brand", brandSlug), zap.Error(err))
		s.metrics.RecordCatalogFallback(ctx, brandSlug)
	}

	stored, err := s.repo.FindBySlug(ctx, brandSlug)
	if err != nil {
		s.log.Warn("stored catalog lookup failed", zap.String("brand", brandSlug), zap.Error(err))
	}
	if stored != nil {
		var catalog domain.Catalog
		if err := json.Unmarshal(stored.Catalog, &catalog); err == nil {
			return &catalog, nil
		}
		s.log.Warn("stored catalog payload invalid", zap.String("brand", brandSlug), zap.Error(err))
	}

	defaults := domain.DefaultCatalog()
	if brandSlug != defaults.BrandSlug {
		// Unknown brand still gets a quote path, under the default catalog.
		s.log.Info("unknown brand, serving default catalog", zap.String("brand", brandSlug))
	}
	return defaults, nil
}

func (s *Service) Refresh(ctx context.Context, rawSlug string) (*domain.Catalog, error) {
	brandSlug := slug.Make(strings.TrimSpace(rawSlug))
	if brandSlug == "" {
		return nil, domain.ErrInvalidSlug
	}
	if s.brandingURL == "" {
		return nil, domain.ErrBrandNotFound
	}

	catalog, err := s.fetchRemote(ctx, brandSlug)
	if err != nil {
		return nil, err
	}
	s.store(ctx, catalog, domain.BrandSourceRemote)
	return catalog, nil
}

func (s *Service) fetchRemote(ctx context.Context, brandSlug string) (*domain.Catalog, error) {
	url := fmt.Sprintf("%s/api/brands/%s", s.brandingURL, brandSlug)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrBrandNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("branding service returned %d", resp.StatusCode)
	}

	var catalog domain.Catalog
	if err := json.NewDecoder(resp.Body).Decode(&catalog); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if catalog.BrandSlug == "" {
		catalog.BrandSlug = brandSlug
	}
	return &catalog, nil
}

// store persists the fetched catalog so later outages degrade to it instead
// of the compiled-in defaults. Failures are logged, never surfaced.
func (s *Service) store(ctx context.Context, catalog *domain.Catalog, source string) {
	payload, err := json.Marshal(catalog)
	if err != nil {
		s.log.Warn("catalog marshal failed", zap.Error(err))
		return
	}
	brand := &domain.Brand{
		ID:        s.genID.Generate(),
		Slug:      catalog.BrandSlug,
		Name:      catalog.BrandName,
		Catalog:   payload,
		Source:    source,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.repo.Upsert(ctx, brand); err != nil {
		s.log.Warn("catalog store failed", zap.String("brand", catalog.BrandSlug), zap.Error(err))
	}
}
