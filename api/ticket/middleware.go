// Package ticket guards the protected routes with player tickets.
package ticket

import (
	"net/http"
	"strings"

	"github.com/beka-birhanu/vinom-haunt/service"
	"github.com/beka-birhanu/vinom-haunt/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// ContextPlayerID is the key used to store the ticket holder in the Gin context.
	ContextPlayerID = "playerID"
)

// Authoriz accepts requests carrying a valid "Bearer <ticket>" Authorization header.
func Authoriz(ts i.Tokenizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		playerID, err := service.TicketHolder(ts, parts[1])
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Set(ContextPlayerID, playerID)
		c.Next()
	}
}

// PlayerID returns the ticket holder of an authorized request.
func PlayerID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextPlayerID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
