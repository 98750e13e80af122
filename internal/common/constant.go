package common

// CredentialHeaderNames lists the request headers that may carry the bearer
// credential, in lookup order.
var CredentialHeaderNames = []string{"auth-token", "Authorization"}

// BearerPrefix precedes the token inside a credential header value.
const BearerPrefix = "Bearer "
