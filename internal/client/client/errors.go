package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/cloudstore/internal/common"
)

var (
	ErrUnavailable = errors.New("server unavailable")
	ErrNotLoggedIn = fmt.Errorf("%w: not logged in", common.ErrUnauthenticated)
)

// APIError is a non-2xx answer of the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server answered %d", e.Status)
	}
	return fmt.Sprintf("server answered %d: %s", e.Status, e.Message)
}

// Unwrap maps the status back onto the sentinel the server started from.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return common.ErrInvalidArgument
	case http.StatusUnauthorized:
		return common.ErrUnauthenticated
	case http.StatusForbidden:
		return common.ErrAccessDenied
	case http.StatusNotFound:
		return common.ErrorNotFound
	case http.StatusConflict:
		return common.ErrConflict
	case http.StatusRequestEntityTooLarge:
		return common.ErrSizeExceeded
	default:
		return common.ErrorInternal
	}
}
