package hub

import "sync"

// Hub is the table of live rooms, keyed by session code. It only knows
// about connections; session records live in the store and are managed
// elsewhere.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewHub() *Hub { return &Hub{rooms: make(map[string]*Room)} }

func (h *Hub) GetOrCreate(code string) *Room {
	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.rooms[code]; ok {
		return r
	}
	r := NewRoom(code)
	h.rooms[code] = r
	return r
}

// Get returns the room only if some connection is currently bound to it.
func (h *Hub) Get(code string) (*Room, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.rooms[code]
	return r, ok
}

func (h *Hub) Delete(code string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms, code)
}
