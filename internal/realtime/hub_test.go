package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func runHub(t *testing.T) (*Hub, func()) {
	t.Helper()
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()
	return hub, func() {
		cancel()
		<-done
	}
}

func TestHubDeliversToUser(t *testing.T) {
	hub, stop := runHub(t)
	defer stop()

	alice, bob := uuid.New(), uuid.New()
	a := NewClient(alice, nil)
	b := NewClient(bob, nil)
	hub.RegisterClient(a)
	hub.RegisterClient(b)
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	HubNotifier{Hub: hub}.Notify(context.Background(), alice, Notice{Type: "activity", Activity: map[string]string{"title": "x"}})

	select {
	case msg := <-a.Send:
		var n Notice
		require.NoError(t, json.Unmarshal(msg, &n))
		assert.Equal(t, "activity", n.Type)
	case <-time.After(time.Second):
		t.Fatal("alice got nothing")
	}
	assert.Empty(t, b.Send)

	hub.UnregisterClient(a)
	_, open := <-a.Send
	assert.False(t, open)
}

func TestHubClosesClientsOnStop(t *testing.T) {
	hub, stop := runHub(t)
	c := NewClient(uuid.New(), nil)
	hub.RegisterClient(c)
	stop()

	_, open := <-c.Send
	assert.False(t, open)
	assert.Zero(t, hub.ClientCount())
}

func TestChannel(t *testing.T) {
	id := uuid.MustParse("7d9e2f0a-4b1c-4c7e-9a55-0f1e2d3c4b5a")
	assert.Equal(t, "notifications:7d9e2f0a-4b1c-4c7e-9a55-0f1e2d3c4b5a", Channel(id))
}

func TestSendToUserSkipsFullBuffer(t *testing.T) {
	hub, stop := runHub(t)
	defer stop()

	c := &Client{ID: "c1", UserID: uuid.New(), Send: make(chan []byte, 1)}
	hub.RegisterClient(c)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	hub.SendRaw(c.UserID, []byte("1"))
	hub.SendRaw(c.UserID, []byte("2"))
	assert.Equal(t, []byte("1"), <-c.Send)
	assert.Empty(t, c.Send)
}

func TestRegisterAfterStop(t *testing.T) {
	hub, stop := runHub(t)
	stop()

	c := NewClient(uuid.New(), nil)
	hub.RegisterClient(c)
	_, open := <-c.Send
	assert.False(t, open)
	hub.UnregisterClient(c)
}
