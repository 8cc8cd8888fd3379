// Package eventbridge publishes catalogue change notifications to an AWS
// EventBridge bus, where downstream consumers (search indexers, cache
// warmers in other processes) pick them up.
package eventbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"

	"scentbase-backend/application/ports"
)

const (
	eventSource      = "scentbase.catalog"
	detailTypeChange = "CatalogChanged"
)

// catalogChangedDetail is the JSON payload carried on the event
type catalogChangedDetail struct {
	Collection string `json:"collection"`
	DocumentID string `json:"documentId"`
	Action     string `json:"action"`
	Timestamp  string `json:"timestamp"`
}

// Publisher implements ports.EventPublisher using AWS EventBridge
type Publisher struct {
	client       *eventbridge.Client
	eventBusName string
	logger       *zap.Logger
}

// NewPublisher creates a new EventBridge publisher
func NewPublisher(client *eventbridge.Client, eventBusName string, logger *zap.Logger) ports.EventPublisher {
	return &Publisher{
		client:       client,
		eventBusName: eventBusName,
		logger:       logger,
	}
}

// PublishCatalogChanged announces that a catalogue document was created,
// updated, or deleted
func (p *Publisher) PublishCatalogChanged(ctx context.Context, collection, docID, action string) error {
	detail, err := json.Marshal(catalogChangedDetail{
		Collection: collection,
		DocumentID: docID,
		Action:     action,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event detail: %w", err)
	}

	entry := types.PutEventsRequestEntry{
		EventBusName: aws.String(p.eventBusName),
		Source:       aws.String(eventSource),
		DetailType:   aws.String(detailTypeChange),
		Detail:       aws.String(string(detail)),
	}

	result, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{entry},
	})
	if err != nil {
		return fmt.Errorf("failed to publish event to EventBridge: %w", err)
	}

	if result.FailedEntryCount > 0 {
		for _, e := range result.Entries {
			if e.ErrorCode != nil {
				p.logger.Error("Event entry rejected",
					zap.String("errorCode", *e.ErrorCode),
					zap.String("errorMessage", aws.ToString(e.ErrorMessage)),
				)
			}
		}
		return fmt.Errorf("%d events failed to publish", result.FailedEntryCount)
	}

	p.logger.Debug("Catalog change event published",
		zap.String("collection", collection),
		zap.String("documentID", docID),
		zap.String("action", action),
	)
	return nil
}
