package auth

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/cloudstore/internal/common"
)

// CredentialFromHeader picks the bearer credential from h.
//
// common.CredentialHeaderNames is walked in order and the first value with
// the "Bearer " prefix is returned. If no candidate has the prefix, the
// first non-empty candidate is returned as is, so that StripBearer reports
// it as malformed. An empty result means no credential was sent.
func CredentialFromHeader(h http.Header) string {
	var fallback string
	for _, name := range common.CredentialHeaderNames {
		v := h.Get(name)
		if v == "" {
			continue
		}
		if strings.HasPrefix(v, common.BearerPrefix) {
			return v
		}
		if fallback == "" {
			fallback = v
		}
	}
	return fallback
}

// StripBearer removes the "Bearer " prefix from credential. A missing prefix
// or an empty token is common.ErrMalformedToken.
func StripBearer(credential string) (string, error) {
	token, ok := strings.CutPrefix(credential, common.BearerPrefix)
	if !ok {
		return "", common.ErrMalformedToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", common.ErrMalformedToken
	}
	return token, nil
}
