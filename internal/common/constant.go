package common

// AuthorizationHeaderName carries the bearer token on protected requests.
const AuthorizationHeaderName = "Authorization"

// TokenType is reported to clients alongside issued access tokens.
const TokenType = "bearer"

// RequestIDHeaderName is echoed on every response.
const RequestIDHeaderName = "X-Request-ID"
