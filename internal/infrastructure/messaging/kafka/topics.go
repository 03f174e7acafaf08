package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/molsearch/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Topics and event envelope
// ─────────────────────────────────────────────────────────────────────────────

// TopicSearchRecorded carries one event per recorded molecule search.
const TopicSearchRecorded = "molecule.search.recorded"

const schemaVersion = "1.0"

// EventEnvelope is the common wrapper for every published event.
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	SchemaVersion string          `json:"schema_version"`
	Payload       json.RawMessage `json:"payload"`
}

// SearchRecordedPayload describes one completed search.
type SearchRecordedPayload struct {
	RecordID    string    `json:"record_id"`
	Query       string    `json:"query"`
	SearchType  string    `json:"search_type"`
	ResultCount int       `json:"result_count"`
	DurationMS  int64     `json:"duration_ms"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// NewEnvelope wraps a payload for publication.
func NewEnvelope(eventType string, payload interface{}) (*EventEnvelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode event payload")
	}
	return &EventEnvelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		Source:        "molsearch",
		Timestamp:     time.Now().UTC(),
		SchemaVersion: schemaVersion,
		Payload:       raw,
	}, nil
}

// PublishSearchRecorded publishes a search-recorded event keyed by record ID
// so events for the same record land on the same partition.
func (p *Producer) PublishSearchRecorded(ctx context.Context, payload SearchRecordedPayload) error {
	env, err := NewEnvelope(TopicSearchRecorded, payload)
	if err != nil {
		return err
	}
	value, err := json.Marshal(env)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode event envelope")
	}
	return p.Publish(ctx, TopicSearchRecorded, []byte(payload.RecordID), value)
}
