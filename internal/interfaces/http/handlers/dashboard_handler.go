package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ReviewPulse/internal/application/analytics"
	"github.com/turtacn/ReviewPulse/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ReviewPulse/pkg/errors"
)

// DefaultMaxBodySize caps query bodies when no limit is configured.
const DefaultMaxBodySize int64 = 1 << 20

// DashboardHandler serves the dashboard query API.
type DashboardHandler struct {
	svc         analytics.Service
	logger      logging.Logger
	maxBodySize int64
}

// NewDashboardHandler creates a DashboardHandler.  maxBodySize <= 0 selects
// DefaultMaxBodySize.
func NewDashboardHandler(svc analytics.Service, logger logging.Logger, maxBodySize int64) *DashboardHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if maxBodySize <= 0 {
		maxBodySize = DefaultMaxBodySize
	}
	return &DashboardHandler{svc: svc, logger: logger.Named("dashboard"), maxBodySize: maxBodySize}
}

// RegisterRoutes mounts the handler under rg.
func (h *DashboardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	d := rg.Group("/dashboard")
	d.POST("/query", h.Query)
	d.POST("/validate", h.Validate)
	d.GET("/meta", h.Meta)
}

// Query handles POST /api/v1/dashboard/query.
func (h *DashboardHandler) Query(c *gin.Context) {
	q, ok := h.decode(c)
	if !ok {
		return
	}
	res, err := h.svc.Query(c.Request.Context(), q)
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Validate handles POST /api/v1/dashboard/validate.  A valid query yields
// 204 without running the engine.
func (h *DashboardHandler) Validate(c *gin.Context) {
	q, ok := h.decode(c)
	if !ok {
		return
	}
	if err := h.svc.Validate(c.Request.Context(), q); err != nil {
		writeAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Meta handles GET /api/v1/dashboard/meta.
func (h *DashboardHandler) Meta(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Meta(c.Request.Context()))
}

func (h *DashboardHandler) decode(c *gin.Context) (analytics.Query, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodySize))
	if err != nil {
		writeAppError(c, errors.Wrap(err, errors.ErrCodeBadRequest, "request body could not be read").
			WithDetailf("limit is %d bytes", h.maxBodySize))
		return analytics.Query{}, false
	}
	q, err := analytics.DecodeQuery(body)
	if err != nil {
		h.logger.WithContext(c.Request.Context()).Debug("Rejected query body", logging.Err(err))
		writeAppError(c, err)
		return analytics.Query{}, false
	}
	return q, true
}

//Personal.AI order the ending
