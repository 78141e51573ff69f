package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Event types published after a successful run.
const (
	EventTournamentChecked         = "tournament.checked"
	EventTournamentReviewed        = "tournament.reviewed"
	EventTournamentStatsCalculated = "tournament.stats_calculated"
)

// Event announces a committed automation result.
type Event struct {
	Type         string    `json:"type"`
	RunID        string    `json:"run_id"`
	TournamentID int64     `json:"tournament_id"`
	Status       string    `json:"status"`
	Summary      any       `json:"summary,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// EventPublisher delivers events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) error { return nil }

const defaultEventStream = "tournament-archive.automation"

// StreamPublisher appends events to a Redis stream.
type StreamPublisher struct {
	client redis.UniversalClient
	stream string
}

// NewStreamPublisher creates a publisher for stream.
func NewStreamPublisher(client redis.UniversalClient, stream string) *StreamPublisher {
	if stream == "" {
		stream = defaultEventStream
	}
	return &StreamPublisher{client: client, stream: stream}
}

// Publish appends event as a JSON payload with its type and tournament id as
// stream fields.
func (p *StreamPublisher) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}
	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"data":          string(data),
			"type":          event.Type,
			"tournament_id": event.TournamentID,
			"run_id":        event.RunID,
		},
	}).Err()
}
