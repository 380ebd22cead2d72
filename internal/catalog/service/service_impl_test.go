package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sunterra/sunplan/internal/catalog/domain"
	"github.com/sunterra/sunplan/internal/catalog/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestRepo(t *testing.T) domain.Repository {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&domain.Brand{}))
	return repository.Provide(gdb)
}

func newCatalogService(t *testing.T, repo domain.Repository, brandingURL string) domain.Service {
	t.Helper()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(ServiceParam{
		Log:   zap.NewNop(),
		Repo:  repo,
		GenID: node,
	}, Config{BrandingURL: brandingURL})
}

func TestCatalog_DefaultsWithoutRemoteOrStored(t *testing.T) {
	svc := newCatalogService(t, newTestRepo(t), "")

	catalog, err := svc.Catalog(context.Background(), "sunterra")
	require.NoError(t, err)

	assert.Equal(t, "sunterra", catalog.BrandSlug)
	assert.NotEmpty(t, catalog.Panels)
	assert.NotEmpty(t, catalog.Inverters)
}

func TestCatalog_RejectsEmptySlug(t *testing.T) {
	svc := newCatalogService(t, newTestRepo(t), "")

	_, err := svc.Catalog(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidSlug)
}

func TestCatalog_FetchesRemoteAndStores(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/brands/acme-solar", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"brandSlug":"acme-solar","brandName":"Acme Solar","pricing":{"type":"slab","slabTiers":[{"panelCount":10,"price":8000}]}}`)
	}))
	defer remote.Close()

	repo := newTestRepo(t)
	svc := newCatalogService(t, repo, remote.URL)

	catalog, err := svc.Catalog(context.Background(), "Acme Solar")
	require.NoError(t, err)
	assert.Equal(t, "acme-solar", catalog.BrandSlug)
	assert.Equal(t, "Acme Solar", catalog.BrandName)

	stored, err := repo.FindBySlug(context.Background(), "acme-solar")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, domain.BrandSourceRemote, stored.Source)
}

func TestCatalog_DegradesToStoredCopyOnRemoteFailure(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer remote.Close()

	repo := newTestRepo(t)
	require.NoError(t, repo.Upsert(context.Background(), &domain.Brand{
		ID:      snowflake.ID(1),
		Slug:    "acme-solar",
		Name:    "Acme Solar",
		Catalog: []byte(`{"brandSlug":"acme-solar","brandName":"Acme Solar"}`),
		Source:  domain.BrandSourceRemote,
	}))

	svc := newCatalogService(t, repo, remote.URL)

	catalog, err := svc.Catalog(context.Background(), "acme-solar")
	require.NoError(t, err)
	assert.Equal(t, "acme-solar", catalog.BrandSlug)
}

func TestCatalog_UnknownBrandServesDefaults(t *testing.T) {
	svc := newCatalogService(t, newTestRepo(t), "")

	catalog, err := svc.Catalog(context.Background(), "nobody-home")
	require.NoError(t, err)

	assert.Equal(t, "sunterra", catalog.BrandSlug)
}

func TestRefresh_RequiresBrandingService(t *testing.T) {
	svc := newCatalogService(t, newTestRepo(t), "")

	_, err := svc.Refresh(context.Background(), "sunterra")
	assert.ErrorIs(t, err, domain.ErrBrandNotFound)
}
