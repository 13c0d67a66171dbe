package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"example/chess-ingest/app/models"
)

// IngestEventStream receives one entry per finished ingestion job, typed
// ingest.completed or ingest.failed.
const IngestEventStream = "chess.ingest.events"

// EventPublisher announces finished ingestion jobs to downstream consumers.
type EventPublisher interface {
	PublishIngestEvent(ctx context.Context, ev models.IngestEvent) error
}

type streamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
	Close() error
}

// StreamPublisher publishes ingest events to a Redis stream.
type StreamPublisher struct {
	client streamAdder
}

func NewStreamPublisher(client *redis.Client) *StreamPublisher {
	return &StreamPublisher{client: client}
}

// NewStreamPublisherFromURL parses a redis:// URL and pings the server.
func NewStreamPublisherFromURL(ctx context.Context, redisURL string) (*StreamPublisher, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewStreamPublisher(client), nil
}

func (p *StreamPublisher) PublishIngestEvent(ctx context.Context, ev models.IngestEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshaling ingest event: %w", err)
	}
	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: IngestEventStream,
		Values: map[string]interface{}{
			"data":   string(data),
			"type":   ev.Type,
			"job_id": ev.JobID,
			"status": ev.Status,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish to stream %s: %w", IngestEventStream, err)
	}
	return nil
}

func (p *StreamPublisher) Close() error {
	return p.client.Close()
}
