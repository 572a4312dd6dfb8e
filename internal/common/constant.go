// Package common contains constants shared across flipbook client packages.
package common

// RequestIDHeaderName is the HTTP header carrying the per-request
// correlation ID on outbound API calls.
const RequestIDHeaderName = "X-Request-ID"
