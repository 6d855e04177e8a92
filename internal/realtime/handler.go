package realtime

import (
	"context"
	"net/http"

	"taskboard/internal/auth"
	"taskboard/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// UserFinder resolves the identity carried by the handshake token.
type UserFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// Handler upgrades authenticated HTTP requests to hub connections.
type Handler struct {
	hub       *Hub
	users     UserFinder
	jwtSecret string
}

func NewHandler(hub *Hub, users UserFinder, jwtSecret string) *Handler {
	return &Handler{
		hub:       hub,
		users:     users,
		jwtSecret: jwtSecret,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Serve authenticates the handshake and hands the connection to the hub.
// An unauthenticated connection is rejected before it can join anything.
func (h *Handler) Serve(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	userIDStr, err := auth.ParseToken(h.jwtSecret, token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID in token"})
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response
		return
	}

	client := newClient(h.hub, conn, user)
	h.hub.register(client)

	go client.writePump()
	go client.readPump()
}
