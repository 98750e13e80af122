// Package client talks to the cloudstore HTTP API.
//
// CloudClient keeps the access token returned by Login and sends it in the
// auth-token header of every later request. Non-2xx answers become *APIError
// values that unwrap to the matching sentinel from internal/common, so
// callers can use errors.Is(err, common.ErrorNotFound) and friends. Network
// failures wrap ErrUnavailable.
package client
