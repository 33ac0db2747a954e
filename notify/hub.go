package notify

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/food-delivery-web/models"
	"github.com/yeremiapane/food-delivery-web/utils"
)

// Event types pushed to the browser
const (
	EventToast              = "toast"
	EventGeolocationWatch   = "geolocation_watch"
	EventDriverUpdate       = "driver_update"
	EventAvailabilityUpdate = "availability_update"
	EventStorefrontUpdate   = "storefront_update"
)

const (
	WriteWait  = 10 * time.Second
	PongWait   = 60 * time.Second
	PingPeriod = (PongWait * 9) / 10

	// messages queued per connection before it counts as stalled
	SendBuffer = 32
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Conn is the part of *websocket.Conn the hub writes through.
type Conn interface {
	WriteJSON(v interface{}) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type Subscriber struct {
	UserID string
	Role   models.Role
}

// Notifier delivers messages to open dashboards.
type Notifier interface {
	// Notify reaches every open tab of one user.
	Notify(userID string, msg Message)
	Toast(userID string, kind models.ToastKind, text string)
	BroadcastRole(role models.Role, msg Message)
}

type client struct {
	conn Conn
	sub  Subscriber
	send chan Message
	done chan struct{}
	once sync.Once
}

func (c *client) stop() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// Hub holds every connected dashboard. Each connection has its own queue and writer
// goroutine, so a stalled browser never holds up the others.
type Hub struct {
	writeWait  time.Duration
	pingPeriod time.Duration

	mu      sync.Mutex
	clients map[Conn]*client
}

func NewHub() *Hub {
	return &Hub{
		writeWait:  WriteWait,
		pingPeriod: PingPeriod,
		clients:    make(map[Conn]*client),
	}
}

// Register starts the writer for conn. The connection belongs to the hub until
// Unregister, DisconnectUser or a failed write closes it.
func (h *Hub) Register(conn Conn, sub Subscriber) {
	c := &client{
		conn: conn,
		sub:  sub,
		send: make(chan Message, SendBuffer),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	if old, ok := h.clients[conn]; ok {
		old.stop()
	}
	h.clients[conn] = c
	h.mu.Unlock()

	go h.writePump(c)
}

func (h *Hub) Unregister(conn Conn) {
	h.mu.Lock()
	c, ok := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()

	if ok {
		c.stop()
	}
}

// DisconnectUser closes every connection of userID, e.g. after logout.
func (h *Hub) DisconnectUser(userID string) {
	h.mu.Lock()
	var gone []*client
	for conn, c := range h.clients {
		if c.sub.UserID == userID {
			delete(h.clients, conn)
			gone = append(gone, c)
		}
	}
	h.mu.Unlock()

	for _, c := range gone {
		c.stop()
	}
}

func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) Notify(userID string, msg Message) {
	h.send(msg, func(s Subscriber) bool { return s.UserID == userID })
}

func (h *Hub) BroadcastRole(role models.Role, msg Message) {
	h.send(msg, func(s Subscriber) bool { return s.Role == role })
}

// Toast is a shorthand for the most common message.
func (h *Hub) Toast(userID string, kind models.ToastKind, text string) {
	h.Notify(userID, Message{Event: EventToast, Data: models.Toast{Kind: kind, Message: text}})
}

// send queues msg without blocking. A client whose queue is full is dropped.
func (h *Hub) send(msg Message, match func(Subscriber) bool) {
	h.mu.Lock()
	var stalled []*client
	for conn, c := range h.clients {
		if !match(c.sub) {
			continue
		}
		select {
		case c.send <- msg:
		default:
			delete(h.clients, conn)
			stalled = append(stalled, c)
		}
	}
	h.mu.Unlock()

	for _, c := range stalled {
		utils.ErrorLogger.Errorf("Dropping stalled websocket for user %s", c.sub.UserID)
		c.stop()
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if h.clients[c.conn] == c {
		delete(h.clients, c.conn)
	}
	h.mu.Unlock()
	c.stop()
}

// writePump is the only goroutine writing to c.conn.
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(h.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(h.writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				utils.ErrorLogger.Errorf("Error sending %s to user %s: %v", msg.Event, c.sub.UserID, err)
				h.drop(c)
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(h.writeWait)); err != nil {
				h.drop(c)
				return
			}
		case <-c.done:
			return
		}
	}
}
