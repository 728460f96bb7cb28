//go:build integration

package stream_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"assetcore/internal/ledger"
	"assetcore/internal/ledger/stream"
	"assetcore/internal/platform/config"
	"assetcore/internal/platform/kafka"
	"assetcore/pkg/testutil/containers"
)

func TestPublishToBroker(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	rp := containers.GetManager().GetRedpanda(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	const topic = "assetcore.ledger.events.it"
	producer, err := kafka.NewProducer(ctx, config.KafkaConfig{Brokers: []string{rp.Broker}, Topic: topic})
	require.NoError(t, err)
	defer producer.Close()
	require.NoError(t, kafka.EnsureTopic(ctx, producer, topic, 1, 1))
	// Second call must tolerate the existing topic.
	require.NoError(t, kafka.EnsureTopic(ctx, producer, topic, 1, 1))

	ev := ledger.Event{
		EventID:     "evt_stream",
		AssetID:     "asset-s",
		Type:        ledger.EventTransferRecorded,
		OccurredAt:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Actor:       ledger.Actor{Kind: ledger.ActorUser, ID: "ops-1"},
		PayloadHash: "p",
		EventHash:   "h",
		Payload:     ledger.TransferRecorded{FromOwner: "a", ToOwner: "b"},
	}
	require.NoError(t, stream.NewPublisher(producer, topic).Publish(ctx, ev))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(rp.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.NoError(t, fetches.Err())
	records := fetches.Records()
	require.NotEmpty(t, records)

	got, err := stream.Decode(records[0])
	require.NoError(t, err)
	require.Equal(t, "asset-s", string(records[0].Key))
	require.Equal(t, ev.EventID, got.EventID)
	require.Equal(t, ev.Payload, got.Payload)
}
