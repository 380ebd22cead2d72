package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	catalogdomain "github.com/sunterra/sunplan/internal/catalog/domain"
	"github.com/sunterra/sunplan/internal/config"
	"github.com/sunterra/sunplan/internal/geocode"
	plandomain "github.com/sunterra/sunplan/internal/plan/domain"
	submissiondomain "github.com/sunterra/sunplan/internal/submission/domain"
	"go.uber.org/zap"
)

type fakeCatalogService struct {
	refreshCalls int
}

func (f *fakeCatalogService) Catalog(ctx context.Context, slug string) (*catalogdomain.Catalog, error) {
	return catalogdomain.DefaultCatalog(), nil
}

func (f *fakeCatalogService) Refresh(ctx context.Context, slug string) (*catalogdomain.Catalog, error) {
	f.refreshCalls++
	return catalogdomain.DefaultCatalog(), nil
}

type fakePlanService struct {
	lastInputs plandomain.Inputs
	getErr     error
}

func (f *fakePlanService) Recompute(ctx context.Context, sessionID string, in plandomain.Inputs) (*plandomain.Snapshot, error) {
	f.lastInputs = in
	return &plandomain.Snapshot{SessionID: sessionID, BrandSlug: "sunterra", Inputs: in}, nil
}

func (f *fakePlanService) Get(ctx context.Context, sessionID string) (*plandomain.Snapshot, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &plandomain.Snapshot{SessionID: sessionID, BrandSlug: "sunterra"}, nil
}

type fakeSubmissionService struct {
	submitErr error
}

func (f *fakeSubmissionService) Submit(ctx context.Context, sessionID string, req submissiondomain.Request) (*submissiondomain.Lead, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return &submissiondomain.Lead{SessionID: sessionID, Email: req.Email}, nil
}

type noopGeocoder struct{}

func (noopGeocoder) Geocode(context.Context, string) (*geocode.Result, error) { return nil, nil }

func newTestServer(t *testing.T) (*Server, *fakePlanService, *fakeSubmissionService, *fakeCatalogService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	plans := &fakePlanService{}
	submissions := &fakeSubmissionService{}
	catalogs := &fakeCatalogService{}

	srv := NewServer(ServerParams{
		Gin:           engine,
		Cfg:           config.Config{BrandSlug: "sunterra"},
		Log:           zap.NewNop(),
		CatalogSvc:    catalogs,
		PlanSvc:       plans,
		SubmissionSvc: submissions,
		Geocoder:      noopGeocoder{},
	})
	return srv, plans, submissions, catalogs
}

func do(srv *Server, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)
	return w
}

func TestGetPlan_SetsSessionCookie(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	w := do(srv, http.MethodGet, "/v1/plan", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, sessionCookie, cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
}

func TestUpdatePlan_PassesInputsThrough(t *testing.T) {
	srv, plans, _, _ := newTestServer(t)

	payload, err := json.Marshal(plandomain.Inputs{PanelCount: 14, IncludeBattery: true})
	require.NoError(t, err)

	w := do(srv, http.MethodPut, "/v1/plan", payload)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 14, plans.lastInputs.PanelCount)
	assert.True(t, plans.lastInputs.IncludeBattery)
}

func TestUpdatePlan_RejectsMalformedBody(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	w := do(srv, http.MethodPut, "/v1/plan", []byte("{not json"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation_error")
}

func TestGetPlan_MapsNotFound(t *testing.T) {
	srv, plans, _, _ := newTestServer(t)
	plans.getErr = plandomain.ErrPlanNotFound

	w := do(srv, http.MethodGet, "/v1/plan", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not_found")
}

func TestGetCatalog(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	w := do(srv, http.MethodGet, "/v1/catalog", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sunterra")
}

func TestRefreshCatalog(t *testing.T) {
	srv, _, _, catalogs := newTestServer(t)

	w := do(srv, http.MethodPost, "/v1/catalog/refresh", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, catalogs.refreshCalls)
}

func TestSubmit(t *testing.T) {
	srv, _, submissions, _ := newTestServer(t)

	payload, err := json.Marshal(submissiondomain.Request{FirstName: "Aoife", Email: "aoife@example.com"})
	require.NoError(t, err)

	w := do(srv, http.MethodPost, "/v1/submission", payload)
	assert.Equal(t, http.StatusCreated, w.Code)

	submissions.submitErr = submissiondomain.ErrInvalidEmail
	w = do(srv, http.MethodPost, "/v1/submission", payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_email")
}

func TestGeocode_RequiresQuery(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	w := do(srv, http.MethodGet, "/v1/geocode", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
