package events

import (
	"context"
	"log/slog"
)

// Worker drains a Feed into one or more sinks. It is the only background
// goroutine that touches persistent state, and it only ever appends — domain
// records are never mutated outside a request.
type Worker struct {
	inbox  <-chan Event
	sinks  []Sink
	logger *slog.Logger
}

// NewWorker builds a worker reading from inbox and appending to sinks.
func NewWorker(inbox <-chan Event, logger *slog.Logger, sinks ...Sink) *Worker {
	return &Worker{inbox: inbox, sinks: sinks, logger: logger}
}

// Run processes events until the context is cancelled or the inbox closes.
// Sink failures are logged, not fatal: event delivery is best-effort and the
// committed domain state is the source of truth.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.inbox:
			if !ok {
				return nil
			}
			for _, sink := range w.sinks {
				if err := sink.Append(ctx, event); err != nil && w.logger != nil {
					w.logger.ErrorContext(ctx, "event sink append failed",
						"action", event.Action,
						"account", event.Account,
						"error", err,
					)
				}
			}
		}
	}
}
