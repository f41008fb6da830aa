package common

import "time"

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "token"

// AuthorizationHeaderName carries "Bearer <token>" and takes precedence over the cookie.
const AuthorizationHeaderName = "Authorization"

// SessionTokenValidity is the fixed lifetime of a session token and its cookie.
const SessionTokenValidity = 24 * time.Hour
