// Package event provides the at-least-once domain event publisher used by
// the like path.
//
// The publisher is a one-way sink: it owns no state the rest of the system
// reads back. Delivery is fire-and-forget at-least-once — consumers must
// tolerate duplicates — and ordering is independent of store/cache ordering.
// A publish failure is surfaced to the caller but never causes a committed
// mutation to be rolled back.
package event

import "context"

// Publisher is the outbound event contract consumed by the service layer.
//
// Implementations share a single lazily-established connection for the
// whole process. Connect is idempotent and safe under concurrent first use;
// Publish connects implicitly if needed.
type Publisher interface {
	// Connect establishes the shared outbound channel. Calling it more
	// than once never creates a duplicate connection.
	Connect(ctx context.Context) error

	// Publish sends payload to the named topic with at-least-once
	// semantics.
	Publish(ctx context.Context, topic string, payload []byte) error

	// Close drains in-flight sends best-effort and releases the connection.
	Close() error
}
