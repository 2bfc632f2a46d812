package websocket

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"tradie-recovery-be/internal/model"
	"tradie-recovery-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	return NewHub(nil, logger.NewIsolatedLogger(filepath.Join(t.TempDir(), "ws.log")))
}

func TestSendReachesEveryDevice(t *testing.T) {
	hub := newTestHub(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	userID := uuid.New()
	phone := &Client{Hub: hub, UserID: userID, Send: make(chan []byte, 1)}
	laptop := &Client{Hub: hub, UserID: userID, Send: make(chan []byte, 1)}
	require.True(t, hub.Register(phone))
	require.True(t, hub.Register(laptop))
	require.Eventually(t, func() bool { return hub.ConnectedClients(userID) == 2 }, time.Second, 5*time.Millisecond)

	hub.Send(userID, model.Notification{ID: uuid.New(), UserID: userID, Title: "Strategy pack ready"})

	for _, c := range []*Client{phone, laptop} {
		select {
		case raw := <-c.Send:
			var msg struct {
				Type string             `json:"type"`
				Data model.Notification `json:"data"`
			}
			require.NoError(t, json.Unmarshal(raw, &msg))
			assert.Equal(t, "notification", msg.Type)
			assert.Equal(t, "Strategy pack ready", msg.Data.Title)
		case <-time.After(time.Second):
			t.Fatal("notification not delivered")
		}
	}
}

func TestFullBufferDropsClient(t *testing.T) {
	hub := newTestHub(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	userID := uuid.New()
	slow := &Client{Hub: hub, UserID: userID, Send: make(chan []byte)}
	require.True(t, hub.Register(slow))
	require.Eventually(t, func() bool { return hub.ConnectedClients(userID) == 1 }, time.Second, 5*time.Millisecond)

	hub.Send(userID, model.Notification{ID: uuid.New(), UserID: userID})

	assert.Zero(t, hub.ConnectedClients(userID))
	_, open := <-slow.Send
	assert.False(t, open)
}

func TestRegisterAfterStopReturns(t *testing.T) {
	hub := newTestHub(t)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	client := &Client{Hub: hub, UserID: uuid.New(), Send: make(chan []byte, 1)}
	registered := make(chan bool, 1)
	go func() { registered <- hub.Register(client) }()

	select {
	case ok := <-registered:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Register blocked after the hub stopped")
	}

	for i := 0; i < 100; i++ {
		hub.Unregister(client)
	}
}
