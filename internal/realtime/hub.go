package realtime

import (
	"log"
	"sync"

	"github.com/google/uuid"
)

// Hub routes events to the connections currently subscribed to a board
// channel, plus a personal channel per user. It holds no business state;
// a connection that drops simply leaves all its channels.
type Hub struct {
	mu     sync.RWMutex
	boards map[uuid.UUID]map[*Client]struct{}
	users  map[uuid.UUID]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		boards: make(map[uuid.UUID]map[*Client]struct{}),
		users:  make(map[uuid.UUID]map[*Client]struct{}),
	}
}

var _ Publisher = (*Hub)(nil)

// ToBoard delivers the event to every connection in the board's channel.
func (h *Hub) ToBoard(boardID uuid.UUID, event string, data interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.boards[boardID] {
		client.deliver(Event{Name: event, Data: data})
	}
}

// ToUser delivers the event to every connection of one user, regardless
// of which boards those connections are viewing.
func (h *Hub) ToUser(userID uuid.UUID, event string, data interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.users[userID] {
		client.deliver(Event{Name: event, Data: data})
	}
}

// toBoardExcept delivers to the board channel minus the originating
// connection. Used for presence and typing relays.
func (h *Hub) toBoardExcept(sender *Client, boardID uuid.UUID, event string, data interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.boards[boardID] {
		if client == sender {
			continue
		}
		client.deliver(Event{Name: event, Data: data})
	}
}

// register places the connection into its user channel.
func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.users[c.userID] == nil {
		h.users[c.userID] = make(map[*Client]struct{})
	}
	h.users[c.userID][c] = struct{}{}
	log.Printf("🔌 User connected: %s", c.userName)
}

// unregister removes the connection from every channel it was in and
// returns the board ids it left so presence can be announced.
func (h *Hub) unregister(c *Client) []uuid.UUID {
	h.mu.Lock()
	defer h.mu.Unlock()

	left := make([]uuid.UUID, 0, len(c.boards))
	for boardID := range c.boards {
		h.removeFromBoard(c, boardID)
		left = append(left, boardID)
	}
	c.boards = make(map[uuid.UUID]struct{})

	if conns, ok := h.users[c.userID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.users, c.userID)
		}
	}
	log.Printf("🔌 User disconnected: %s", c.userName)
	return left
}

// join subscribes the connection to a board channel. Joining twice is a
// no-op; the return value reports whether membership actually changed.
func (h *Hub) join(c *Client, boardID uuid.UUID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := c.boards[boardID]; ok {
		return false
	}
	if h.boards[boardID] == nil {
		h.boards[boardID] = make(map[*Client]struct{})
	}
	h.boards[boardID][c] = struct{}{}
	c.boards[boardID] = struct{}{}
	return true
}

// leave unsubscribes the connection from a board channel, idempotently.
func (h *Hub) leave(c *Client, boardID uuid.UUID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := c.boards[boardID]; !ok {
		return false
	}
	delete(c.boards, boardID)
	h.removeFromBoard(c, boardID)
	return true
}

// removeFromBoard must be called with h.mu held.
func (h *Hub) removeFromBoard(c *Client, boardID uuid.UUID) {
	if conns, ok := h.boards[boardID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.boards, boardID)
		}
	}
}

// boardSize reports the number of connections in a board channel.
func (h *Hub) boardSize(boardID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.boards[boardID])
}
