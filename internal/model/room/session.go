package room

import "time"

// Session is a short-lived anonymous room addressed by its shareable code.
// Once now reaches ExpiresAt the session is logically absent even if the
// stored record has not been physically removed yet.
type Session struct {
	Code      string    `json:"code"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session is logically absent at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
