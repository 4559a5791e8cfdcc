package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apperrors "github.com/hospiq/scheduling-api/pkg/errors"
	"github.com/hospiq/scheduling-api/pkg/httputil"
)

// ErrorResponse is the envelope for errors raised outside the handlers
// (timeouts, panics, middleware aborts).
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	TraceID string `json:"trace_id,omitempty"`
}

// ErrorHandler logs errors attached to the context and, when no handler
// has written a response yet, renders the last one with its mapped
// status. Handlers normally respond directly; this is the safety net.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		requestID := c.GetString(ContextRequestID)
		for _, e := range c.Errors {
			log.Error().
				Err(e.Err).
				Str("request_id", requestID).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Msg("request error")
		}

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last().Err
		status := httputil.StatusOf(lastErr)
		message := "internal server error"
		var appErr *apperrors.AppError
		if apperrors.AsAppError(lastErr, &appErr) && appErr.Code != apperrors.ErrInternal {
			message = appErr.Message
		}

		c.JSON(status, ErrorResponse{
			Code:    status,
			Message: message,
			TraceID: requestID,
		})
	}
}
