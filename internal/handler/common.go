package handler

import (
	"context"
	"net/http"
	"strconv"

	"taskboard/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Pagination caps per query surface
const (
	DefaultPage      = 1
	DefaultLimit     = 20
	MaxLimit         = 100
	MaxActivityLimit = 50
)

// ActivityRecorder is the post-commit audit hook the mutation handlers
// call after the authoritative write. Implementations must never fail the
// caller; see internal/activity.
type ActivityRecorder interface {
	Record(ctx context.Context, boardID, actorID uuid.UUID, action, entityType string, entityID uuid.UUID, entityTitle string, details map[string]interface{})
}

// currentUserID pulls the authenticated caller's id set by the auth
// middleware. On failure it writes the error response itself.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return uuid.Nil, false
	}
	userID, ok := v.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return uuid.Nil, false
	}
	return userID, true
}

func parsePagination(c *gin.Context, maxLimit int) (page, limit, offset int) {
	page = DefaultPage
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		page = v
	}
	limit = DefaultLimit
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit, (page - 1) * limit
}

func respondPaginated(c *gin.Context, items interface{}, page, limit int, total int64) {
	pages := (total + int64(limit) - 1) / int64(limit)
	c.JSON(http.StatusOK, gin.H{
		"data": items,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": pages,
		},
	})
}
