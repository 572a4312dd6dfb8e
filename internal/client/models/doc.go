// Package models defines the client-side view of flipbook resources and the
// few value types shared by controllers, transport and rendering.
package models
