package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/ReviewPulse/internal/application/analytics"
	"github.com/turtacn/ReviewPulse/internal/testutil"
	"github.com/turtacn/ReviewPulse/pkg/errors"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// MockService mocks analytics.Service.
type MockService struct {
	mock.Mock
}

func (m *MockService) Query(ctx context.Context, q analytics.Query) (*analytics.QueryResult, error) {
	args := m.Called(ctx, q)
	if r := args.Get(0); r != nil {
		return r.(*analytics.QueryResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) Validate(ctx context.Context, q analytics.Query) error {
	return m.Called(ctx, q).Error(0)
}

func (m *MockService) Meta(ctx context.Context) analytics.Meta {
	return m.Called(ctx).Get(0).(analytics.Meta)
}

type DashboardHandlerTestSuite struct {
	suite.Suite
	svc    *MockService
	router *gin.Engine
}

func (s *DashboardHandlerTestSuite) SetupTest() {
	s.svc = new(MockService)
	s.router = gin.New()
	NewDashboardHandler(s.svc, testutil.NewMockLogger(), 512).RegisterRoutes(s.router.Group("/api/v1"))
}

func (s *DashboardHandlerTestSuite) TearDownTest() {
	s.svc.AssertExpectations(s.T())
}

func (s *DashboardHandlerTestSuite) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *DashboardHandlerTestSuite) decodeError(w *httptest.ResponseRecorder) ErrorResponse {
	var resp ErrorResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

const entityQuery = `{"groups": [{"kind": "entity", "entities": ["A"]}]}`

func (s *DashboardHandlerTestSuite) TestQuery_OK() {
	want := analytics.Query{Groups: []analytics.GroupSelection{{Kind: analytics.SelectionEntity, Entities: []string{"A"}}}}
	s.svc.On("Query", mock.Anything, want).Return(&analytics.QueryResult{
		Fingerprint: "fp",
		Groups:      []string{"A"},
		Summary:     analytics.Summary{AverageLabel: "4.0", Respondents: 3},
	}, nil)

	w := s.do(http.MethodPost, "/api/v1/dashboard/query", entityQuery)
	s.Equal(http.StatusOK, w.Code)

	var res analytics.QueryResult
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	s.Equal("fp", res.Fingerprint)
	s.Equal([]string{"A"}, res.Groups)
	s.Equal(3, res.Summary.Respondents)
}

func (s *DashboardHandlerTestSuite) TestQuery_SchemaViolation() {
	w := s.do(http.MethodPost, "/api/v1/dashboard/query", `{"groups": "A"}`)
	s.Equal(http.StatusBadRequest, w.Code)
	resp := s.decodeError(w)
	s.Equal("ANA_008", resp.Code)
	s.Contains(resp.Detail, "groups")
}

func (s *DashboardHandlerTestSuite) TestQuery_BodyTooLarge() {
	w := s.do(http.MethodPost, "/api/v1/dashboard/query", `{"groups": [`+strings.Repeat(" ", 600)+`]}`)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(string(errors.ErrCodeBadRequest), s.decodeError(w).Code)
}

func (s *DashboardHandlerTestSuite) TestQuery_ValidationErrorKeepsCode() {
	s.svc.On("Query", mock.Anything, mock.Anything).
		Return(nil, errors.New(errors.ErrCodeInvalidPercentThresh, "percent threshold out of range").WithDetail("99"))

	w := s.do(http.MethodPost, "/api/v1/dashboard/query", entityQuery)
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	resp := s.decodeError(w)
	s.Equal("ANA_003", resp.Code)
	s.Equal("percent threshold out of range", resp.Message)
	s.Equal("99", resp.Detail)
}

func (s *DashboardHandlerTestSuite) TestQuery_InternalErrorIsMasked() {
	s.svc.On("Query", mock.Anything, mock.Anything).
		Return(nil, errors.New(errors.ErrCodeDatabaseError, "pq: relation reviews does not exist"))

	w := s.do(http.MethodPost, "/api/v1/dashboard/query", entityQuery)
	s.Equal(http.StatusInternalServerError, w.Code)
	resp := s.decodeError(w)
	s.Equal("COMMON_012", resp.Code)
	s.NotContains(resp.Message, "pq:")
	s.Empty(resp.Detail)
}

func (s *DashboardHandlerTestSuite) TestQuery_PlainErrorIsInternal() {
	s.svc.On("Query", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	w := s.do(http.MethodPost, "/api/v1/dashboard/query", entityQuery)
	s.Equal(http.StatusInternalServerError, w.Code)
	s.Equal("COMMON_001", s.decodeError(w).Code)
}

func (s *DashboardHandlerTestSuite) TestValidate() {
	s.svc.On("Validate", mock.Anything, mock.Anything).Return(nil).Once()
	w := s.do(http.MethodPost, "/api/v1/dashboard/validate", entityQuery)
	s.Equal(http.StatusNoContent, w.Code)

	s.svc.On("Validate", mock.Anything, mock.Anything).
		Return(errors.New(errors.ErrCodeUnknownTopic, "unknown topic").WithDetail("Parking")).Once()
	w = s.do(http.MethodPost, "/api/v1/dashboard/validate", entityQuery)
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Equal("ANA_005", s.decodeError(w).Code)
}

func (s *DashboardHandlerTestSuite) TestMeta() {
	s.svc.On("Meta", mock.Anything).Return(analytics.Meta{
		Fingerprint: "fp",
		Records:     10,
		Entities:    []string{"A", "B"},
		Topics:      []string{"Service"},
	})

	w := s.do(http.MethodGet, "/api/v1/dashboard/meta", "")
	s.Equal(http.StatusOK, w.Code)
	var meta analytics.Meta
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &meta))
	s.Equal(10, meta.Records)
	s.Equal([]string{"A", "B"}, meta.Entities)
}

func TestDashboardHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(DashboardHandlerTestSuite))
}

// ─── Health ─────────────────────────────────────────────────────────────────

func newHealthRouter(checkers ...HealthChecker) *gin.Engine {
	r := gin.New()
	NewHealthHandler("v-test", checkers...).RegisterRoutes(r)
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealthHandler_Liveness(t *testing.T) {
	w := get(newHealthRouter(CheckerFunc("db", func(context.Context) error { return assert.AnError })), "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp LivenessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "alive", resp.Status)
	assert.Equal(t, "v-test", resp.Version)
}

func TestHealthHandler_Readiness(t *testing.T) {
	ok := CheckerFunc("dataset", func(context.Context) error { return nil })
	down := CheckerFunc("cache", func(context.Context) error { return assert.AnError })

	assert.Equal(t, http.StatusOK, get(newHealthRouter(), "/readyz").Code)
	assert.Equal(t, http.StatusOK, get(newHealthRouter(ok), "/readyz").Code)

	w := get(newHealthRouter(ok, down), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp ReadinessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "not_ready", resp.Status)
	assert.Equal(t, "healthy", resp.Components["dataset"].Status)
	assert.Equal(t, "unhealthy", resp.Components["cache"].Status)
	assert.NotEmpty(t, resp.Components["cache"].Error)
}

func TestHealthHandler_Detailed(t *testing.T) {
	w := get(newHealthRouter(CheckerFunc("dataset", func(context.Context) error { return nil })), "/healthz/detail")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
	assert.Contains(t, w.Body.String(), `"version":"v-test"`)
}

//Personal.AI order the ending
