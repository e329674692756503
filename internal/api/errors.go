package api

import "errors"

// AuthError indicates that the backend rejected the request as
// unauthenticated (HTTP 401). Session restore treats it as an expired
// token; everything else treats it as a fatal auth failure.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// APIError carries the backend's human-readable error message for a
// non-2xx response. The message is propagated verbatim so callers can
// display exactly what the server said.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}
