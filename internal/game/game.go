package game

import "sync"

// room is the exclusive section for one game id. Commands for the same game
// hold mu from admission until their messages are queued; refs counts the
// commands holding or waiting for it. A room exists only while refs > 0.
type room struct {
	mu   sync.Mutex
	refs int
}

// acquire locks the room for gameID, creating it on first use.
func (h *Hub) acquire(gameID int) *room {
	h.mu.Lock()
	r, ok := h.rooms[gameID]
	if !ok {
		r = &room{}
		h.rooms[gameID] = r
	}
	r.refs++
	h.mu.Unlock()

	r.mu.Lock()
	return r
}

// release unlocks r and drops it once nobody holds or waits for it.
func (h *Hub) release(gameID int, r *room) {
	r.mu.Unlock()

	h.mu.Lock()
	r.refs--
	if r.refs == 0 && h.rooms[gameID] == r {
		delete(h.rooms, gameID)
	}
	h.mu.Unlock()
}

func (h *Hub) roomCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms)
}
