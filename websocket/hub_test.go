package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/HSouheill/skillnera_mlm/models"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func receive(t *testing.T, c *Client) (Notification, bool) {
	t.Helper()
	select {
	case n, ok := <-c.send:
		return n, ok
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for notification")
		return Notification{}, false
	}
}

func TestHubDeliversCommissionNotifications(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	hub := NewHub(log, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	a := NewClient(primitive.NewObjectID(), nil)
	b := NewClient(primitive.NewObjectID(), nil)
	hub.Register(a)
	hub.Register(b)
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	commission := models.Commission{ID: primitive.NewObjectID(), EarnerID: primitive.NewObjectID(), Amount: 50}
	hub.NotifyCommissionCreated(commission)

	for _, c := range []*Client{a, b} {
		n, ok := receive(t, c)
		require.True(t, ok)
		assert.Equal(t, NotificationTypeCommissionCreated, n.Type)
		assert.Equal(t, commission.EarnerID.Hex(), n.UserID)
		assert.Equal(t, commission, n.Data)
	}

	hub.Unregister(a)
	_, ok := receive(t, a)
	assert.False(t, ok)
	assert.Equal(t, 1, hub.ClientCount())
}

func TestHubStopsWithContext(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	hub := NewHub(log, nil)
	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	c := NewClient(primitive.NewObjectID(), nil)
	hub.Register(c)
	cancel()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	_, ok := receive(t, c)
	assert.False(t, ok)
	assert.Equal(t, 0, hub.ClientCount())

	// no-ops once stopped
	hub.Register(NewClient(primitive.NewObjectID(), nil))
	hub.Unregister(c)
}

func TestHubDropsSlowClient(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	hub := NewHub(log, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	slow := NewClient(primitive.NewObjectID(), nil)
	hub.Register(slow)

	for i := 0; i < clientSendBuffer+1; i++ {
		hub.NotifyCommissionCreated(models.Commission{EarnerID: primitive.NewObjectID()})
		time.Sleep(time.Millisecond)
	}

	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
	assert.NotEmpty(t, hook.AllEntries())
}
