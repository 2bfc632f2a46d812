package events

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalBusDeliversToAllHandlersBeforePublishReturns(t *testing.T) {
	bus := NewLocalBus(nil)
	t.Cleanup(func() { _ = bus.Close() })

	var (
		mu   sync.Mutex
		seen []string
		data map[string]interface{}
	)
	require.NoError(t, bus.Subscribe(context.Background(), func(_ context.Context, e Event) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, "a:"+e.EventType())
		return errors.New("first fails")
	}))
	require.NoError(t, bus.Subscribe(context.Background(), func(_ context.Context, e Event) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, "b:"+e.EventType())
		data = e.Payload()
		return nil
	}))

	err := bus.Publish(context.Background(), New(DocumentReady, map[string]interface{}{"case_id": "1", "pages": 3}))
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	sort.Strings(seen)
	assert.Equal(t, []string{"a:" + DocumentReady, "b:" + DocumentReady}, seen)
	assert.Equal(t, "1", data["case_id"])
	assert.Equal(t, float64(3), data["pages"])
}

func TestLocalBusWithoutSubscribersDropsEvents(t *testing.T) {
	bus := NewLocalBus(nil)
	assert.NoError(t, bus.Publish(context.Background(), New(CaseCreated, nil)))

	require.NoError(t, bus.Close())
	assert.Error(t, bus.Publish(context.Background(), New(CaseCreated, nil)))
}
