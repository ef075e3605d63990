package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/ReviewPulse/internal/application/analytics"
	httpapi "github.com/turtacn/ReviewPulse/internal/interfaces/http"
	"github.com/turtacn/ReviewPulse/internal/interfaces/http/handlers"
	"github.com/turtacn/ReviewPulse/internal/testutil"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// DashboardClientTestSuite runs the SDK against the real router and engine.
type DashboardClientTestSuite struct {
	suite.Suite
	server *httptest.Server
	client *Client
}

func (s *DashboardClientTestSuite) SetupTest() {
	log := testutil.NewMockLogger()
	svc := analytics.NewService(analytics.NewEngine(testutil.ServiceScenario(s.T())), log)
	router := httpapi.NewRouter(httpapi.RouterConfig{
		Dashboard: handlers.NewDashboardHandler(svc, log, 0),
		Health:    handlers.NewHealthHandler("sdk-test"),
		Logger:    log,
	})
	s.server = httptest.NewServer(router)

	c, err := NewClient(s.server.URL, WithRetryMax(0))
	s.Require().NoError(err)
	s.client = c
}

func (s *DashboardClientTestSuite) TearDownTest() {
	s.server.Close()
}

func (s *DashboardClientTestSuite) TestQuery() {
	res, err := s.client.Dashboard().Query(context.Background(), Query{
		Groups: []GroupSelection{{Kind: analytics.SelectionCompetitors, Entities: []string{"A", "B"}}},
		Detail: &DetailQuery{Topic: "Service", RatingBound: &RatingBound{Mode: analytics.BoundBelow, Upper: 6}},
	})
	s.Require().NoError(err)
	s.Equal([]string{"A", "B"}, res.Groups)
	s.Equal(10, res.Ratings.Total)
	s.Len(res.Reviews.Rows, 4)
	s.Require().Len(res.PerGroup, 2)
	s.Equal("B", res.PerGroup[1].Group)
	s.Equal("1.0", res.PerGroup[1].AverageLabel)
	s.Equal(5, res.PerGroup[1].Respondents)

	s.Require().NotEmpty(res.TopicShares.Rows)
	var service *analytics.AggregateRow
	for i := range res.TopicShares.Rows {
		if res.TopicShares.Rows[i].Label == "Service" {
			service = &res.TopicShares.Rows[i]
		}
	}
	s.Require().NotNil(service)
	total, ok := service.Total.Float()
	s.True(ok)
	s.InDelta(40.0, total, 1e-9)
}

func (s *DashboardClientTestSuite) TestValidate() {
	ctx := context.Background()
	s.NoError(s.client.Dashboard().Validate(ctx, Query{
		Groups: []GroupSelection{{Kind: analytics.SelectionEntity, Entities: []string{"A"}}},
	}))

	pct := 31.0
	err := s.client.Dashboard().Validate(ctx, Query{
		Groups:           []GroupSelection{{Kind: analytics.SelectionEntity, Entities: []string{"A"}}},
		PercentThreshold: &pct,
	})
	var apiErr *APIError
	s.Require().ErrorAs(err, &apiErr)
	s.Equal(http.StatusUnprocessableEntity, apiErr.StatusCode)
	s.Equal("ANA_003", apiErr.Code)
	s.NotEmpty(apiErr.RequestID)
}

func (s *DashboardClientTestSuite) TestSchemaViolation() {
	_, err := s.client.Dashboard().Query(context.Background(), Query{})
	var apiErr *APIError
	s.Require().ErrorAs(err, &apiErr)
	s.Equal(http.StatusBadRequest, apiErr.StatusCode)
	s.Equal("ANA_008", apiErr.Code)
	s.True(apiErr.IsInvalidQuery())
}

func (s *DashboardClientTestSuite) TestMeta() {
	m, err := s.client.Dashboard().Meta(context.Background())
	s.Require().NoError(err)
	s.Equal(10, m.Records)
	s.Equal([]string{"A", "B"}, m.Entities)
	s.NotEmpty(m.Fingerprint)
}

func (s *DashboardClientTestSuite) TestHealth() {
	ctx := context.Background()
	live, err := s.client.Health().Liveness(ctx)
	s.Require().NoError(err)
	s.Equal("alive", live.Status)
	s.Equal("sdk-test", live.Version)

	ready, err := s.client.Health().Readiness(ctx)
	s.Require().NoError(err)
	s.Equal("ready", ready.Status)
}

func TestDashboardClientTestSuite(t *testing.T) {
	suite.Run(t, new(DashboardClientTestSuite))
}

func TestHealthClient_NotReady(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"not_ready","components":{"redis":{"status":"unhealthy","error":"dial tcp"}}}`))
	})

	ready, err := c.Health().Readiness(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "not_ready", ready.Status)
	assert.Equal(t, "unhealthy", ready.Components["redis"].Status)
}

func TestHealthClient_UnexpectedStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	_, err := c.Health().Readiness(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsNotFound())
}

//Personal.AI order the ending
