package service

import (
	"context"
	"testing"
	"time"

	"fellowship-chat-be/internal/pkg/logger"
	"fellowship-chat-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type channelSink struct {
	got chan events.Event
}

func (s *channelSink) Publish(_ context.Context, event events.Event) error {
	s.got <- event
	return nil
}

func TestConsumerForwardsEventsToSink(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	sink := &channelSink{got: make(chan events.Event, 1)}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := NewConsumerService(pubSub, "chat_events", sink, logger.NewNopLogger())
	require.NoError(t, consumer.Consume(ctx))

	publisher := NewPublisherService("chat_events", pubSub)
	require.NoError(t, publisher.Publish(ctx, events.NewChatTurn("s-1", "Sam", "default", false, time.Second)))

	select {
	case ev := <-sink.got:
		assert.Equal(t, events.TypeChatTurn, ev.EventType())
		assert.Equal(t, "Sam", ev.Payload()["character"])
	case <-time.After(2 * time.Second):
		t.Fatal("event was not forwarded")
	}
}
