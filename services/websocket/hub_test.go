package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"thaitour_go/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.Run(ctx)
	return h
}

func TestHubPublishReachesClients(t *testing.T) {
	h := startHub(t)
	a := &Client{hub: h, send: make(chan []byte, 1), userID: 1}
	b := &Client{hub: h, send: make(chan []byte, 1), userID: 2}
	h.register <- a
	h.register <- b
	require.Eventually(t, func() bool { return h.GetClientCount() == 2 }, time.Second, 10*time.Millisecond)

	h.Publish(services.ChangeEvent{Type: "update", Resource: "trips", ResourceID: 7})

	for _, c := range []*Client{a, b} {
		select {
		case raw := <-c.send:
			var msg struct {
				Type string              `json:"type"`
				Data services.ChangeEvent `json:"data"`
			}
			require.NoError(t, json.Unmarshal(raw, &msg))
			assert.Equal(t, "catalog.changed", msg.Type)
			assert.Equal(t, "trips", msg.Data.Resource)
			assert.Equal(t, uint(7), msg.Data.ResourceID)
		case <-time.After(time.Second):
			t.Fatalf("client %d got no message", c.userID)
		}
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	h := startHub(t)
	slow := &Client{hub: h, send: make(chan []byte), userID: 3}
	h.register <- slow
	require.Eventually(t, func() bool { return h.GetClientCount() == 1 }, time.Second, 10*time.Millisecond)

	h.Broadcast(Message{Type: "ping"})
	require.Eventually(t, func() bool { return h.GetClientCount() == 0 }, time.Second, 10*time.Millisecond)

	_, open := <-slow.send
	assert.False(t, open)
}

func TestHubUnregisterClosesSend(t *testing.T) {
	h := startHub(t)
	c := &Client{hub: h, send: make(chan []byte, 1), userID: 4}
	h.register <- c
	h.unregister <- c
	// a second unregister must be harmless
	h.unregister <- c

	_, open := <-c.send
	assert.False(t, open)
	assert.Equal(t, 0, h.GetClientCount())
}
