package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "coffer/pkg/domain"
)

// memSink collects appended events for assertions.
type memSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *memSink) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *memSink) snapshot() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

func TestFeedWorker_DeliversToSink(t *testing.T) {
	feed := NewFeed(16)
	sink := &memSink{}
	worker := NewWorker(feed.Inbox(), nil, sink)

	done := make(chan error, 1)
	go func() { done <- worker.Run(context.Background()) }()

	err := feed.Emit(context.Background(), Event{
		Action:  ActionSpendRecorded,
		Account: id.AccountID("acc1"),
		Amount:  60,
		At:      time.Now(),
	})
	require.NoError(t, err)

	feed.Close()
	require.NoError(t, <-done)

	got := sink.snapshot()
	require.Len(t, got, 1)
	assert.Equal(t, ActionSpendRecorded, got[0].Action)
	assert.Equal(t, int64(60), got[0].Amount)
}

func TestFeed_FullBufferDropsNotBlocks(t *testing.T) {
	feed := NewFeed(1)

	// No worker draining: second emit must not block.
	require.NoError(t, feed.Emit(context.Background(), Event{Action: ActionBudgetSet}))

	doneCh := make(chan struct{})
	go func() {
		_ = feed.Emit(context.Background(), Event{Action: ActionBudgetSet})
		close(doneCh)
	}()

	select {
	case <-doneCh:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on a full feed")
	}
}

func TestMulti_AttemptsAll(t *testing.T) {
	a := &memSink{}
	b := &memSink{}
	multi := Multi{sinkPublisher{a}, sinkPublisher{b}}

	require.NoError(t, multi.Emit(context.Background(), Event{Action: ActionVaultOpened}))
	assert.Len(t, a.snapshot(), 1)
	assert.Len(t, b.snapshot(), 1)
}

// sinkPublisher adapts a Sink into a Publisher for the Multi test.
type sinkPublisher struct{ sink Sink }

func (p sinkPublisher) Emit(ctx context.Context, event Event) error {
	return p.sink.Append(ctx, event)
}
