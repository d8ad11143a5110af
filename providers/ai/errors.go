package ai

import (
	"errors"

	"github.com/leofalp/sqlcopilot/internal/utils"
)

var (
	// ErrConfigMissing is returned when no configuration has ever been saved.
	ErrConfigMissing = errors.New("API configuration is not set")

	// ErrEndpointMissing is returned by the custom adapter when the
	// configuration has no endpoint.
	ErrEndpointMissing = errors.New("custom API endpoint is not configured")
)

// HTTPError is the failure returned for every non-2xx provider response. It
// carries the numeric StatusCode, the Status text and a body preview.
type HTTPError = utils.StatusError

// StatusCode returns the HTTP status carried by err, or 0 when err is not an
// HTTP failure.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}
