package websocket_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/anjiri1684/school_admin/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	frames chan []byte
	fail   bool

	mu     sync.Mutex
	closed bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{frames: make(chan []byte, 16)}
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	if c.fail {
		return errors.New("broken pipe")
	}
	c.frames <- data
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) next(t *testing.T) websocket.Frame {
	t.Helper()
	select {
	case data := <-c.frames:
		var f websocket.Frame
		require.NoError(t, json.Unmarshal(data, &f))
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("no frame received")
		return websocket.Frame{}
	}
}

func (c *fakeConn) none(t *testing.T) {
	t.Helper()
	select {
	case data := <-c.frames:
		t.Fatalf("unexpected frame %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_PublishReachesEverySocketOfRecipient(t *testing.T) {
	hub := websocket.NewHub(zerolog.Nop())
	alice, bob := uuid.New(), uuid.New()

	phone, laptop, other := newFakeConn(), newFakeConn(), newFakeConn()
	hub.Register(websocket.NewClient(alice, phone))
	hub.Register(websocket.NewClient(alice, laptop))
	hub.Register(websocket.NewClient(bob, other))
	require.True(t, hub.Connected(alice))

	err := hub.Publish(context.Background(), []uuid.UUID{alice, alice}, websocket.EventMessageCreated, map[string]string{"content": "hi"})
	require.NoError(t, err)

	for _, conn := range []*fakeConn{phone, laptop} {
		f := conn.next(t)
		require.Equal(t, websocket.EventMessageCreated, f.Type)
		require.Equal(t, map[string]any{"content": "hi"}, f.Data)
		conn.none(t)
	}
	other.none(t)
}

func TestHub_Unregister(t *testing.T) {
	hub := websocket.NewHub(zerolog.Nop())
	alice := uuid.New()
	conn := newFakeConn()
	client := websocket.NewClient(alice, conn)

	hub.Register(client)
	hub.Unregister(client)
	hub.Unregister(client)

	require.False(t, hub.Connected(alice))
	require.True(t, conn.isClosed())
	require.ErrorIs(t, client.Send(websocket.EventPong, nil), websocket.ErrClientClosed)
	require.NoError(t, hub.Publish(context.Background(), []uuid.UUID{alice}, websocket.EventNotificationCreated, nil))
}

func TestHub_WriteFailureClosesClient(t *testing.T) {
	hub := websocket.NewHub(zerolog.Nop())
	alice := uuid.New()
	conn := newFakeConn()
	conn.fail = true
	hub.Register(websocket.NewClient(alice, conn))

	require.NoError(t, hub.Publish(context.Background(), []uuid.UUID{alice}, websocket.EventMessageCreated, "x"))
	require.Eventually(t, conn.isClosed, 2*time.Second, 10*time.Millisecond)
}

type memoryRelay struct {
	ch chan []byte
}

func (r *memoryRelay) Publish(_ context.Context, data []byte) error {
	r.ch <- data
	return nil
}

func (r *memoryRelay) Subscribe(ctx context.Context, deliver func([]byte)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case data := <-r.ch:
			deliver(data)
		}
	}
}

func TestHub_RelayDeliversAcrossInstances(t *testing.T) {
	relay := &memoryRelay{ch: make(chan []byte, 4)}
	sender := websocket.NewHub(zerolog.Nop()).WithRelay(relay)
	receiver := websocket.NewHub(zerolog.Nop()).WithRelay(relay)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- receiver.Run(ctx) }()

	bob := uuid.New()
	conn := newFakeConn()
	receiver.Register(websocket.NewClient(bob, conn))

	require.NoError(t, sender.Publish(ctx, []uuid.UUID{bob}, websocket.EventNotificationCreated, map[string]string{"title": "Reminder"}))
	f := conn.next(t)
	require.Equal(t, websocket.EventNotificationCreated, f.Type)
	require.Equal(t, map[string]any{"title": "Reminder"}, f.Data)

	cancel()
	require.NoError(t, <-done)
}

func TestClient_SendQueuesFrame(t *testing.T) {
	hub := websocket.NewHub(zerolog.Nop())
	conn := newFakeConn()
	client := websocket.NewClient(uuid.New(), conn)
	hub.Register(client)

	require.NoError(t, client.Send(websocket.EventError, map[string]string{"message": "Unknown frame type"}))
	f := conn.next(t)
	require.Equal(t, websocket.EventError, f.Type)
	require.Equal(t, map[string]any{"message": "Unknown frame type"}, f.Data)
}
