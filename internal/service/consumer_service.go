package service

import (
	"context"
	"encoding/json"

	"fellowship-chat-be/internal/dto"
	"fellowship-chat-be/internal/pkg/logger"
	"fellowship-chat-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

// EventSink receives events that leave the process. pkg/nats.Publisher is one.
type EventSink interface {
	Publish(ctx context.Context, event events.Event) error
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	sink       EventSink
	logger     logger.ILogger
}

// NewConsumerService drains the in-process topic. sink may be nil, in which
// case events are only logged.
func NewConsumerService(subscriber message.Subscriber, topicName string, sink EventSink, logger logger.ILogger) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		sink:       sink,
		logger:     logger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var envelope dto.EventEnvelope
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		cs.logger.Error("CONSUMER", "Failed to unmarshal event", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	event := events.FromPayload(envelope.Type, envelope.Payload)
	cs.logger.Info("CONSUMER", "Event received", map[string]interface{}{
		"type":    event.EventType(),
		"payload": event.Data,
	})

	if cs.sink == nil {
		msg.Ack()
		return
	}

	if err := cs.sink.Publish(ctx, event); err != nil {
		// The bus is best effort. A Nack would redeliver in a tight loop while NATS is down.
		cs.logger.Warn("CONSUMER", "Failed to forward event, dropping", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
	msg.Ack()
}
