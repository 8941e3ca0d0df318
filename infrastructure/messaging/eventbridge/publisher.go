package eventbridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"

	"github.com/tradestreak/wall-street-service/application/ports"
)

// eventSource identifies this service on the bus.
const eventSource = "wall-street-service"

// Publisher sends application events to an EventBridge bus. It implements
// ports.EventPublisher.
type Publisher struct {
	client       *eventbridge.Client
	eventBusName string
	logger       *zap.Logger
}

// NewPublisher creates an EventBridge publisher.
func NewPublisher(client *eventbridge.Client, eventBusName string, logger *zap.Logger) *Publisher {
	return &Publisher{
		client:       client,
		eventBusName: eventBusName,
		logger:       logger,
	}
}

// Publish sends one event. The event type becomes the detail-type and the
// payload marshals to the detail document.
func (p *Publisher) Publish(ctx context.Context, event ports.Event) error {
	detail, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.Type, err)
	}

	input := &eventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{{
			EventBusName: aws.String(p.eventBusName),
			Source:       aws.String(eventSource),
			DetailType:   aws.String(event.Type),
			Detail:       aws.String(string(detail)),
		}},
	}

	result, err := p.client.PutEvents(ctx, input)
	if err != nil {
		return fmt.Errorf("put events: %w", err)
	}
	if result.FailedEntryCount > 0 {
		entry := result.Entries[0]
		return fmt.Errorf("event %s rejected: %s %s",
			event.Type, aws.ToString(entry.ErrorCode), aws.ToString(entry.ErrorMessage))
	}

	p.logger.Debug("Published event",
		zap.String("type", event.Type),
		zap.String("eventBus", p.eventBusName))
	return nil
}

// NopPublisher drops every event. Used when no event bus is configured,
// typically local development.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ports.Event) error { return nil }
