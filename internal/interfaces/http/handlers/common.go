// Package handlers holds the gin handlers of the dashboard API.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ReviewPulse/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ReviewPulse/pkg/errors"
)

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// writeAppError maps application-level errors to HTTP status codes.  Server
// side failures are masked; client errors keep their code and detail.
func writeAppError(c *gin.Context, err error) {
	_ = c.Error(err)
	resp := ErrorResponse{RequestID: logging.RequestIDFromContext(c.Request.Context())}

	var appErr *errors.AppError
	if !errors.As(err, &appErr) {
		resp.Code = string(errors.ErrCodeInternal)
		resp.Message = errors.DefaultMessageForCode(errors.ErrCodeInternal)
		c.JSON(http.StatusInternalServerError, resp)
		return
	}

	status := appErr.HTTPStatus()
	resp.Code = string(appErr.Code)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		resp.Message = errors.DefaultMessageForCode(appErr.Code)
	} else {
		resp.Message = appErr.Message
		resp.Detail = appErr.Detail
	}
	c.JSON(status, resp)
}

//Personal.AI order the ending
