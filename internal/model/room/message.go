package room

import "time"

// Message is one room message. Its TTL runs independently of the owning
// session's remaining lifetime: a message outlives neither its own
// ExpiresAt nor an owner-initiated close, whichever comes first.
type Message struct {
	ID          string    `json:"id"`
	SessionCode string    `json:"sessionCode"`
	SenderID    string    `json:"senderId"`
	Text        string    `json:"text"`
	Timestamp   time.Time `json:"timestamp"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Expired reports whether the message is logically absent at now.
func (m Message) Expired(now time.Time) bool {
	return !now.Before(m.ExpiresAt)
}
