package transport

import "errors"

// ErrUnauthorized is returned when a request carries no or an invalid
// bearer token while one is required.
var ErrUnauthorized = errors.New("transport: unauthorized")

// ErrUnknownCall is returned when a request names a callId the server
// has no session for and the operation cannot create one implicitly.
var ErrUnknownCall = errors.New("transport: unknown call")

// ErrMalformedRequest is returned when a snapshot submission body
// fails to decode.
var ErrMalformedRequest = errors.New("transport: malformed request body")
