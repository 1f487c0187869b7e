// Package server runs the long-lived components of a service (HTTP server,
// file watchers) under one start/stop lifecycle.
package server

import "context"

// Lifecycle defines the lifecycle interface for servers.
type Lifecycle interface {
	// Start starts the server. It must not block.
	Start(ctx context.Context) error
	// Stop stops the server gracefully.
	Stop(ctx context.Context) error
}

// Runnable represents a component that can be started and stopped.
type Runnable interface {
	Lifecycle
	// Name returns the server name for identification.
	Name() string
}

// Failer is implemented by runnables that can fail after a successful Start.
type Failer interface {
	// Err delivers at most one error once the runnable stops unexpectedly.
	Err() <-chan error
}
