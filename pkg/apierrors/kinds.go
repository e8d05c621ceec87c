package apierrors

import "net/http"

// The four taxonomy kinds. ErrBadRequest, ErrForbidden and ErrNotFound are
// derived from ErrAPI, so errors.Is(err, ErrAPI) holds for every error the
// client raises. ErrAPI on its own covers transport-level failures, malformed
// or unexpected response bodies, and mapped statuses whose body lacks the
// expected "message" attribute.
var (
	ErrAPI        = New("API request failed")
	ErrBadRequest = ErrAPI.New("bad request").SetStatusCode(http.StatusBadRequest)
	ErrForbidden  = ErrAPI.New("forbidden").SetStatusCode(http.StatusForbidden)
	ErrNotFound   = ErrAPI.New("not found").SetStatusCode(http.StatusNotFound)
)

// ForStatus returns the taxonomy member mapped to the given HTTP status code.
// The switch is closed over the protocol's mapped codes; every other status,
// including all 2xx and 5xx, returns false and is left to the caller to
// interpret.
func ForStatus(code int) (Error, bool) {
	switch code {
	case http.StatusBadRequest:
		return ErrBadRequest, true
	case http.StatusForbidden:
		return ErrForbidden, true
	case http.StatusNotFound:
		return ErrNotFound, true
	default:
		return nil, false
	}
}
