package room

import "time"

// Event types carried over the realtime channel, both directions.
const (
	EventJoinSession    = "join-session"
	EventSendMessage    = "send-message"
	EventCloseSession   = "close-session"
	EventUserJoined     = "user-joined"
	EventUserLeft       = "user-left"
	EventReceiveMessage = "receive-message"
	EventSessionClosed  = "session-closed"
	EventError          = "error"
)

// Frame is the envelope for every websocket event.
type Frame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Presence is the payload of user-joined and user-left frames.
type Presence struct {
	UserID string `json:"userId"`
}

// JoinRequest binds the sending connection to a room.
type JoinRequest struct {
	Code   string `json:"code"`
	UserID string `json:"userId"`
}

// SendRequest posts a message into a room.
type SendRequest struct {
	Code   string `json:"code"`
	UserID string `json:"userId"`
	Text   string `json:"text"`
}

// CloseRequest asks to tear a room down. Honored only for the owner.
type CloseRequest struct {
	Code   string `json:"code"`
	UserID string `json:"userId"`
}

// Delivery is the payload of receive-message frames.
type Delivery struct {
	SenderID  string    `json:"senderId"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
