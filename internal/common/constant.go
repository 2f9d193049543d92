package common

// AuthorizationHeaderName is the HTTP header that carries a bearer credential.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the credential in the authorization header.
const BearerPrefix = "Bearer "

// SessionTokenBytes is the number of random bytes in a session token. The hex
// encoded token is twice as long.
const SessionTokenBytes = 32
