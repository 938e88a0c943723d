package events

import (
	"context"
	"log/slog"
	"sync"
)

// Publisher emits events for committed operations. Emit must be cheap enough
// to call inline from services; slow sinks buffer internally.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// Sink receives events drained from a Feed. The history store and the Kafka
// publisher both implement it.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Feed is the in-process publisher: Emit enqueues onto a buffered channel
// that the Worker drains into sinks. A full buffer drops the event with a
// warning rather than stalling the committing operation.
type Feed struct {
	inbox  chan Event
	logger *slog.Logger

	closeOnce sync.Once
}

// FeedOption configures a Feed.
type FeedOption func(*Feed)

// WithFeedLogger sets the logger used for drop warnings.
func WithFeedLogger(logger *slog.Logger) FeedOption {
	return func(f *Feed) { f.logger = logger }
}

// NewFeed creates a feed with the given buffer size.
func NewFeed(buffer int, opts ...FeedOption) *Feed {
	if buffer <= 0 {
		buffer = 256
	}
	f := &Feed{inbox: make(chan Event, buffer)}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Emit implements Publisher.
func (f *Feed) Emit(ctx context.Context, event Event) error {
	select {
	case f.inbox <- event:
		return nil
	default:
		if f.logger != nil {
			f.logger.WarnContext(ctx, "event feed full, dropping event",
				"action", event.Action,
				"account", event.Account,
			)
		}
		return nil
	}
}

// Inbox exposes the receive side for the Worker.
func (f *Feed) Inbox() <-chan Event { return f.inbox }

// Close stops accepting events. The worker drains what remains.
func (f *Feed) Close() {
	f.closeOnce.Do(func() { close(f.inbox) })
}

// Multi fans one Emit out to several publishers; the first error wins but all
// publishers are attempted.
type Multi []Publisher

func (m Multi) Emit(ctx context.Context, event Event) error {
	var firstErr error
	for _, p := range m {
		if err := p.Emit(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Nop discards all events. Useful default when no sink is configured.
type Nop struct{}

func (Nop) Emit(context.Context, Event) error { return nil }
