// Package client talks to the gophgram backend.
//
// # Overview
//
// Client is the transport-agnostic API contract used by the CLI. HTTPClient
// implements it over the REST API: the session cookie set at login lives in
// a cookie jar and is sent with every later request, including the websocket
// handshake made by Listen.
//
// # Error Handling
//
// Failed calls return an *APIError carrying the HTTP status and the server's
// message. It matches the sentinels ErrUnauthorized, ErrNotFound, ErrConflict
// and ErrBadRequest through errors.Is. Network failures match ErrUnavailable.
package client
