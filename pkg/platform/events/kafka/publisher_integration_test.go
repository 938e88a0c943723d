//go:build integration

package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"coffer/pkg/platform/events"
	"coffer/pkg/testutil/containers"
)

func TestPublisherRoundTrip(t *testing.T) {
	rp := containers.NewRedpandaContainer(t)
	ctx := context.Background()

	const topic = "coffer.policy.events.test"
	publisher, err := New(ctx, rp.Brokers, topic)
	require.NoError(t, err)
	defer publisher.Close()

	event := events.Event{
		Action:  events.ActionSpendRecorded,
		Account: "alice",
		Amount:  42,
		At:      time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, publisher.Emit(ctx, event))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(rp.Brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	fetches := consumer.PollFetches(fetchCtx)
	require.NoError(t, fetches.Err())

	records := fetches.Records()
	require.Len(t, records, 1)
	require.Equal(t, "alice", string(records[0].Key), "records are keyed by account")

	var got events.Event
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	require.Equal(t, event.Action, got.Action)
	require.Equal(t, event.Amount, got.Amount)
}

func TestPublisherIdempotentTopicCreation(t *testing.T) {
	rp := containers.NewRedpandaContainer(t)
	ctx := context.Background()

	const topic = "coffer.policy.events.exists"
	first, err := New(ctx, rp.Brokers, topic)
	require.NoError(t, err)
	first.Close()

	second, err := New(ctx, rp.Brokers, topic)
	require.NoError(t, err, "existing topic is not an error")
	second.Close()
}
