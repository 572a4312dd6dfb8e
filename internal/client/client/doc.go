// Package client is the flipbook backend API client.
//
// # Overview
//
// Client is the transport-agnostic contract used by the controllers:
// ListRecent, GetFlipbook, Upload and Delete. HTTPClient implements it over
// net/http and JSON. Every request carries a fresh X-Request-ID. Upload
// streams a multipart body ("pdf" file part and "title" field) with a
// precomputed Content-Length and reports progress as the transport reads it.
//
// Assets builds direct-reference URLs for thumbnails, page images and the
// original document.
//
// # Error Handling
//
// Failures are exposed as sentinels for errors.Is:
//   - ErrUnavailable: transport failure or a 5xx answer
//   - ErrNotFound: 404, or a flipbook lookup with an empty body
//   - ErrRequestFailed: any other non-2xx answer
//
// Non-2xx answers are *APIError values carrying the server's "message"
// field; ServerMessage extracts it. Context cancellation is
// returned unwrapped so callers can tell it apart from a failure.
package client
