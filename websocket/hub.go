package websocket

import (
	"context"
	"sync"

	"github.com/HSouheill/skillnera_mlm/models"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Define notification types
const (
	NotificationTypeConnected         = "connected"
	NotificationTypeCommissionCreated = "commission_created"
)

const clientSendBuffer = 32

// Notification represents a message sent over WebSocket
type Notification struct {
	Type    string      `json:"type"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	UserID  string      `json:"userID,omitempty"`
}

// Client represents a connected admin dashboard
type Client struct {
	UserID primitive.ObjectID
	Conn   *websocket.Conn
	send   chan Notification
}

// NewClient wraps conn for userID; conn may be nil in tests
func NewClient(userID primitive.ObjectID, conn *websocket.Conn) *Client {
	return &Client{
		UserID: userID,
		Conn:   conn,
		send:   make(chan Notification, clientSendBuffer),
	}
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan Notification
	done       chan struct{}
	mu         sync.RWMutex
	upgrader   websocket.Upgrader
	log        logrus.FieldLogger
}

// NewHub creates a new Hub instance. Browser upgrades are accepted from the
// same host or from one of allowedOrigins.
func NewHub(log logrus.FieldLogger, allowedOrigins []string) *Hub {
	return &Hub{
		upgrader:   websocket.Upgrader{CheckOrigin: originChecker(allowedOrigins)},
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Notification, clientSendBuffer),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run starts the hub's event loop and returns when ctx is done
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for client := range h.clients {
				h.drop(client)
			}
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				h.drop(client)
			}
			h.mu.Unlock()
		case notification := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- notification:
				default:
					// too slow to keep up with the feed
					h.log.WithField("user", client.UserID.Hex()).Warn("websocket client dropped")
					h.drop(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// drop must be called with mu held
func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
}

// Register subscribes client; it is a no-op once the hub stopped
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister removes client and closes its send queue
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues notification for every connected client without blocking
func (h *Hub) Broadcast(notification Notification) {
	select {
	case h.broadcast <- notification:
	default:
		h.log.WithField("type", notification.Type).Warn("websocket broadcast queue full, notification dropped")
	}
}

// NotifyCommissionCreated publishes a freshly inserted ledger entry to admins
func (h *Hub) NotifyCommissionCreated(c models.Commission) {
	h.Broadcast(Notification{
		Type:    NotificationTypeCommissionCreated,
		Message: "New commission created",
		Data:    c,
		UserID:  c.EarnerID.Hex(),
	})
}
