package realtime

import (
	"log"
	"time"

	"taskboard/internal/model"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 256
)

// Client is one live websocket connection of an authenticated user.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan Event
	userID   uuid.UUID
	userName string
	avatar   string

	// board channels this connection has joined; guarded by hub.mu
	boards map[uuid.UUID]struct{}
}

func newClient(hub *Hub, conn *websocket.Conn, user *model.User) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan Event, sendBufferSize),
		userID:   user.ID,
		userName: user.Name,
		avatar:   user.Avatar,
		boards:   make(map[uuid.UUID]struct{}),
	}
}

// deliver queues an event without blocking the publisher. A full buffer
// drops the event: subscribers treat events as hints and can refetch.
func (c *Client) deliver(ev Event) {
	select {
	case c.send <- ev:
	default:
		log.Printf("⚠️  Dropping %s event for slow client %s", ev.Name, c.userName)
	}
}

// inboundMessage is what clients may send: channel management and the
// ephemeral typing relay. Everything else is server-pushed.
type inboundMessage struct {
	Type    string `json:"type"`
	BoardID string `json:"board_id"`
	TaskID  string `json:"task_id,omitempty"`
}

func (c *Client) readPump() {
	defer func() {
		left := c.hub.unregister(c)
		for _, boardID := range left {
			c.hub.ToBoard(boardID, "user:left", presence{UserID: c.userID, Name: c.userName})
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg inboundMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		boardID, err := uuid.Parse(msg.BoardID)
		if err != nil {
			continue
		}

		switch msg.Type {
		case "board:join":
			if c.hub.join(c, boardID) {
				c.hub.toBoardExcept(c, boardID, "user:joined", presence{
					UserID: c.userID,
					Name:   c.userName,
					Avatar: c.avatar,
				})
			}
		case "board:leave":
			if c.hub.leave(c, boardID) {
				c.hub.toBoardExcept(c, boardID, "user:left", presence{
					UserID: c.userID,
					Name:   c.userName,
				})
			}
		case "task:typing":
			// fire-and-forget, never persisted
			c.hub.toBoardExcept(c, boardID, "task:typing", presence{
				UserID: c.userID,
				Name:   c.userName,
				TaskID: msg.TaskID,
			})
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
