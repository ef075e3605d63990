package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ReviewPulse/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ReviewPulse/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ReviewPulse/pkg/errors"
)

// Recovery turns a handler panic into a 500 response and an error log.
func Recovery(logger logging.Logger, metrics *prometheus.AppMetrics) gin.HandlerFunc {
	if metrics == nil {
		metrics = prometheus.NewNoopAppMetrics()
	}
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logger.WithContext(c.Request.Context()).Error("Recovered from handler panic",
				logging.String("panic", fmt.Sprint(rec)),
				logging.String("path", c.Request.URL.Path),
				logging.String("stack", string(debug.Stack())),
			)
			prometheus.RecordError(metrics, "http", string(errors.ErrCodeInternal))
			abortJSON(c, http.StatusInternalServerError, string(errors.ErrCodeInternal), "internal server error")
		}()
		c.Next()
	}
}

//Personal.AI order the ending
