package realtime

import "github.com/google/uuid"

// Event is the wire envelope pushed to connected clients.
type Event struct {
	Name string      `json:"event"`
	Data interface{} `json:"data"`
}

// Publisher delivers mutation events to live viewers. The mutation
// handlers depend on this interface rather than on the Hub itself so
// tests can substitute a recording double.
type Publisher interface {
	ToBoard(boardID uuid.UUID, event string, data interface{})
	ToUser(userID uuid.UUID, event string, data interface{})
}

// presence is the payload for user:joined, user:left and task:typing.
type presence struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Avatar string    `json:"avatar,omitempty"`
	TaskID string    `json:"task_id,omitempty"`
}
