package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvelope(t *testing.T) {
	env, err := NewEnvelope(TopicSearchRecorded, SearchRecordedPayload{Query: "aspirin"})
	require.NoError(t, err)

	assert.NotEmpty(t, env.EventID)
	assert.Equal(t, TopicSearchRecorded, env.EventType)
	assert.Equal(t, "molsearch", env.Source)
	assert.Equal(t, "1.0", env.SchemaVersion)
	assert.WithinDuration(t, time.Now(), env.Timestamp, time.Minute)

	var payload SearchRecordedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, "aspirin", payload.Query)
}

func TestPublishSearchRecorded(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter(w, nil)

	payload := SearchRecordedPayload{
		RecordID:    "rec-1",
		Query:       "benzene",
		SearchType:  "name",
		ResultCount: 3,
		DurationMS:  120,
		RecordedAt:  time.Now().UTC(),
	}
	require.NoError(t, p.PublishSearchRecorded(context.Background(), payload))

	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, TopicSearchRecorded, msg.Topic)
	assert.Equal(t, []byte("rec-1"), msg.Key)

	var env EventEnvelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.Equal(t, TopicSearchRecorded, env.EventType)

	var got SearchRecordedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &got))
	assert.Equal(t, "benzene", got.Query)
	assert.Equal(t, 3, got.ResultCount)
	assert.Equal(t, int64(120), got.DurationMS)
}

func TestPublishSearchRecorded_ClosedProducer(t *testing.T) {
	p := NewProducerWithWriter(&fakeWriter{}, nil)
	require.NoError(t, p.Close())

	err := p.PublishSearchRecorded(context.Background(), SearchRecordedPayload{RecordID: "rec-1"})
	assert.Equal(t, ErrProducerClosed, err)
}
