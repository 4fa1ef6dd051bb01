package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/anjiri1684/school_admin/metrics"
	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

const (
	EventMessageCreated      = "message.created"
	EventNotificationCreated = "notification.created"
	EventError               = "error"
	EventPong                = "pong"

	sendBuffer = 64
)

var ErrClientClosed = errors.New("websocket client closed")

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Frame is the JSON document pushed to clients.
type Frame struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Relay carries frames between hub instances.
type Relay interface {
	Publish(ctx context.Context, data []byte) error
	Subscribe(ctx context.Context, deliver func([]byte)) error
}

type relayEnvelope struct {
	Recipients []uuid.UUID     `json:"recipients"`
	Frame      json.RawMessage `json:"frame"`
}

// Client is one authenticated socket. Writes go through a buffered queue
// drained by a single goroutine, so a slow reader never blocks a publisher.
type Client struct {
	UserID uuid.UUID

	conn Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func NewClient(userID uuid.UUID, conn Conn) *Client {
	return &Client{
		UserID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
}

func (c *Client) enqueue(payload []byte) error {
	select {
	case <-c.done:
		return ErrClientClosed
	case c.send <- payload:
		return nil
	default:
		c.Close()
		return errors.New("client send buffer full")
	}
}

// Send queues a frame for this client only.
func (c *Client) Send(event string, payload any) error {
	frame, err := json.Marshal(Frame{Type: event, Data: payload})
	if err != nil {
		return err
	}
	return c.enqueue(frame)
}

func (c *Client) writeLoop(log zerolog.Logger) {
	for {
		select {
		case <-c.done:
			return
		case payload := <-c.send:
			if err := c.conn.WriteMessage(websocketcontrib.TextMessage, payload); err != nil {
				log.Warn().Err(err).Str("user_id", c.UserID.String()).Msg("Error sending frame to client")
				c.Close()
				return
			}
		}
	}
}

func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// Hub tracks the connected clients of this process, keyed by user. A user
// may hold several sockets at once.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]map[*Client]struct{}

	relay Relay
	log   zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[uuid.UUID]map[*Client]struct{}),
		log:     log,
	}
}

// WithRelay routes every publish through relay so other instances see it.
func (h *Hub) WithRelay(relay Relay) *Hub {
	h.relay = relay
	return h
}

// Run consumes the relay until ctx is done. Without a relay it only waits.
func (h *Hub) Run(ctx context.Context) error {
	if h.relay == nil {
		<-ctx.Done()
		return nil
	}
	return h.relay.Subscribe(ctx, func(data []byte) {
		var env relayEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			h.log.Warn().Err(err).Msg("Dropping malformed relay frame")
			return
		}
		h.deliverLocal(env.Recipients, env.Frame)
	})
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	set := h.clients[c.UserID]
	if set == nil {
		set = make(map[*Client]struct{})
		h.clients[c.UserID] = set
	}
	set[c] = struct{}{}
	h.mu.Unlock()

	metrics.WebsocketClients.Inc()
	go c.writeLoop(h.log)
	h.log.Debug().Str("user_id", c.UserID.String()).Msg("Client registered")
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	removed := false
	if set, ok := h.clients[c.UserID]; ok {
		if _, ok := set[c]; ok {
			delete(set, c)
			removed = true
		}
		if len(set) == 0 {
			delete(h.clients, c.UserID)
		}
	}
	h.mu.Unlock()

	c.Close()
	if removed {
		metrics.WebsocketClients.Dec()
		h.log.Debug().Str("user_id", c.UserID.String()).Msg("Client unregistered")
	}
}

// Connected reports whether userID has at least one socket on this instance.
func (h *Hub) Connected(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

// Publish pushes an event to every socket held by recipients.
func (h *Hub) Publish(ctx context.Context, recipients []uuid.UUID, event string, payload any) error {
	recipients = lo.Uniq(recipients)
	if len(recipients) == 0 {
		return nil
	}
	frame, err := json.Marshal(Frame{Type: event, Data: payload})
	if err != nil {
		return err
	}
	metrics.EventsRelayed.WithLabelValues(event).Inc()

	if h.relay == nil {
		h.deliverLocal(recipients, frame)
		return nil
	}
	data, err := json.Marshal(relayEnvelope{Recipients: recipients, Frame: frame})
	if err != nil {
		return err
	}
	return h.relay.Publish(ctx, data)
}

func (h *Hub) deliverLocal(recipients []uuid.UUID, frame []byte) {
	var stale []*Client

	h.mu.RLock()
	for _, id := range recipients {
		for c := range h.clients[id] {
			if err := c.enqueue(frame); err != nil {
				stale = append(stale, c)
			}
		}
	}
	h.mu.RUnlock()

	for _, c := range stale {
		h.Unregister(c)
	}
}
