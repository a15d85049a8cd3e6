// Package handler implements the ops HTTP surface of the bot: health and
// readiness probes, a read-only view of stored tags, metrics, and the
// OpenAPI document.
// Handlers are methods on Server, split into files by concern, so they all
// share the same dependencies.
package handler

import (
	"context"
)

// TagServicer defines the read operations the tag endpoints depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type TagServicer interface {
	ListNames(ctx context.Context, guildID int64) ([]string, error)
	Content(ctx context.Context, guildID int64, name string) (string, error)
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the dependencies of every HTTP handler.
type Server struct {
	tags TagServicer
	db   Pinger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(tags TagServicer, db Pinger) *Server {
	return &Server{tags: tags, db: db}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil)
}
