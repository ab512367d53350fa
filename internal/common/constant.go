package common

// AuthorizationHeaderName is the HTTP header carrying the access token.
const AuthorizationHeaderName = "Authorization"

// BearerScheme prefixes the access token in the Authorization header.
const BearerScheme = "Bearer"

// ReservedUserName can never be registered: it is the alias used by the
// self-service user endpoint.
const ReservedUserName = "me"
