package event

import (
	"context"
	"log/slog"
)

// NopPublisher drops every event, logging at debug level. Used when no
// broker is configured (local development, tests that don't care about
// events) so the like path still works end to end.
type NopPublisher struct {
	logger *slog.Logger
}

// NewNopPublisher creates a publisher that discards everything.
func NewNopPublisher(logger *slog.Logger) *NopPublisher {
	return &NopPublisher{logger: logger}
}

func (p *NopPublisher) Connect(_ context.Context) error { return nil }

func (p *NopPublisher) Publish(_ context.Context, topic string, payload []byte) error {
	p.logger.Debug("event dropped (no broker configured)",
		slog.String("topic", topic),
		slog.Int("bytes", len(payload)),
	)
	return nil
}

func (p *NopPublisher) Close() error { return nil }

var _ Publisher = (*NopPublisher)(nil)
