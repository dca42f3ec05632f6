package hub

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/vanish-chat/backend/internal/model/room"
)

// Client wraps one websocket connection. A client is bound to at most
// one room at a time; the binding lives and dies with the connection.
type Client struct {
	conn *websocket.Conn
	mu   sync.Mutex
	hook func(room.Frame)
}

func NewClient(conn *websocket.Conn) *Client { return &Client{conn: conn} }

// SetSendHook replaces the default WebSocket sender (used in tests).
func (c *Client) SetSendHook(fn func(room.Frame)) {
	c.mu.Lock()
	c.hook = fn
	c.mu.Unlock()
}

// Send delivers one frame, best effort. Write errors are dropped: a dead
// peer is noticed by its own read loop, which unbinds it.
func (c *Client) Send(frame room.Frame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hook != nil {
		c.hook(frame)
		return
	}
	if c.conn == nil {
		return
	}
	_ = c.conn.WriteJSON(frame)
}
