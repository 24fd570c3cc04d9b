package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/endosim/pk-api/internal/handler"
	apperrors "github.com/endosim/pk-api/pkg/errors"
)

// ErrorHandler turns errors pushed with c.Error into JSON responses.
// Application errors map to their HTTP status and expose only their
// message; anything else becomes a 500 with the detail kept in the
// logs.
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
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Str("client_ip", c.ClientIP()).
				Msg("Request error")
		}

		last := c.Errors.Last().Err

		status := http.StatusInternalServerError
		message := "internal server error"
		switch appErr, ok := apperrors.AsAppError(last); {
		case ok:
			status = appErr.StatusCode()
			message = appErr.Message
		case errors.Is(last, context.DeadlineExceeded):
			status = http.StatusGatewayTimeout
			message = "request timed out"
		}

		c.JSON(status, handler.NewErrorResponse(message))
	}
}
