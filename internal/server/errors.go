package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leofalp/sqlcopilot/core/copilot"
	"github.com/leofalp/sqlcopilot/core/history"
	"github.com/leofalp/sqlcopilot/core/messaging"
	"github.com/leofalp/sqlcopilot/providers/ai"
)

// msgCheckSettings is returned when a saved configuration fails the live
// test call.
const msgCheckSettings = "please check your settings"

// statusFor maps façade errors to bridge status codes. Anything that went
// wrong talking to the provider is a bad gateway.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ai.ErrConfigMissing),
		errors.Is(err, ai.ErrEndpointMissing),
		errors.Is(err, copilot.ErrUnknownProvider):
		return http.StatusPreconditionFailed
	case errors.Is(err, copilot.ErrInvalidConfig),
		errors.Is(err, messaging.ErrEmptySQL),
		errors.Is(err, messaging.ErrUnknownAction),
		errors.Is(err, messaging.ErrUnknownCommand):
		return http.StatusBadRequest
	case errors.Is(err, history.ErrMessageNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

// errorBody is the JSON error payload. Upstream failures also carry the
// provider's status code.
func errorBody(err error) gin.H {
	body := gin.H{"error": err.Error()}
	if code := ai.StatusCode(err); code != 0 {
		body["status"] = code
	}
	return body
}

func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusFor(err), errorBody(err))
}
