package hub

import (
	"sync"

	"github.com/vanish-chat/backend/internal/model/room"
)

// Room tracks the connections currently bound to one session code. Its
// mutex is the room's serialization domain: membership changes and the
// persist-then-broadcast sequence all run under it, so two racing joins
// cannot lose a binding and no member can observe an unpersisted message.
// Rooms are independent of each other.
type Room struct {
	Code    string
	mu      sync.Mutex
	members map[*Client]string
}

func NewRoom(code string) *Room {
	return &Room{Code: code, members: make(map[*Client]string)}
}

// Join binds c as userID and announces it to the members already present.
func (r *Room) Join(c *Client, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	frame := room.Frame{Type: room.EventUserJoined, Data: room.Presence{UserID: userID}}
	for member := range r.members {
		member.Send(frame)
	}
	r.members[c] = userID
}

// Leave removes c and announces it to the remaining members. It returns
// the bound user id, whether c actually was a member, and how many
// members remain. A connection that never joined produces no broadcast.
func (r *Room) Leave(c *Client) (string, bool, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	userID, ok := r.members[c]
	if !ok {
		return "", false, len(r.members)
	}
	delete(r.members, c)
	frame := room.Frame{Type: room.EventUserLeft, Data: room.Presence{UserID: userID}}
	for member := range r.members {
		member.Send(frame)
	}
	return userID, true, len(r.members)
}

// Publish runs persist inside the room's serialization domain and fans
// frame out to every member, sender included, only if persist succeeded.
func (r *Room) Publish(persist func() error, frame room.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := persist(); err != nil {
		return err
	}
	for member := range r.members {
		member.Send(frame)
	}
	return nil
}

// CloseAll delivers frame to every member and clears the membership table.
func (r *Room) CloseAll(frame room.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for member := range r.members {
		member.Send(frame)
	}
	r.members = make(map[*Client]string)
}

// Size reports the current member count.
func (r *Room) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}
