package upstream

import (
	"fmt"

	platformerrors "github.com/jmgilman/go/errors"
)

// Upstream failures. Callers match them with errors.Is.
var (
	ErrInvalidURL      = platformerrors.New(platformerrors.CodeInvalidInput, "the URL provided is invalid")
	ErrRequestFailed   = platformerrors.New(platformerrors.CodeNetwork, "the network request failed")
	ErrInvalidResponse = platformerrors.New(platformerrors.CodeInvalidInput, "the server returned an invalid response")
	ErrDecoding        = platformerrors.New(platformerrors.CodeInvalidInput, "failed to decode response")
	ErrNoData          = platformerrors.New(platformerrors.CodeInvalidInput, "no data was returned from the server")
	ErrUnauthorized    = platformerrors.New(platformerrors.CodeUnauthorized, "authentication failed, check the API key")
	ErrServer          = platformerrors.New(platformerrors.CodeUnavailable, "server error")
)

// serverError wraps ErrServer with the HTTP status code of the response
func serverError(statusCode int) error {
	return platformerrors.WrapWithContext(
		ErrServer,
		platformerrors.CodeUnavailable,
		fmt.Sprintf("server error occurred with code: %d", statusCode),
		map[string]interface{}{"status_code": statusCode},
	)
}

// StatusCode returns the HTTP status carried by a server error
func StatusCode(err error) (int, bool) {
	var platformErr platformerrors.PlatformError
	if !platformerrors.As(err, &platformErr) {
		return 0, false
	}
	code, ok := platformErr.Context()["status_code"].(int)
	return code, ok
}
