package nats

import (
	"encoding/json"
	"testing"
	"time"

	"tradie-recovery-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTrimsSubjectPrefix(t *testing.T) {
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	raw, err := json.Marshal(envelope{Data: map[string]interface{}{"case_id": "abc"}, OccurredAt: at})
	require.NoError(t, err)

	event, err := decode(SubjectPrefix+events.CaseCreated, raw)
	require.NoError(t, err)
	assert.Equal(t, events.CaseCreated, event.EventType())
	assert.Equal(t, "abc", event.Payload()["case_id"])
	assert.True(t, event.Timestamp().Equal(at))
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := decode("events.X", []byte("{not json"))
	assert.Error(t, err)
}
