// Package controllers holds the three client session state machines: the
// recent list, the upload pipeline and the viewer.
//
// Each controller owns a session.Store. Activate opens a new generation and
// starts its network work on tracked goroutines; Deactivate cancels that work
// and any result that arrives later is dropped. Views read state through
// State or Subscribe and never mutate it.
//
// Failures never escape a controller as panics. They become inline state
// (State().Error) plus a notification, and the returned errors can be
// matched against ErrTransport, ErrNotFound and ErrValidation.
package controllers
