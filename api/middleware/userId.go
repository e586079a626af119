package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iamail/mailgate/internal/utils"
)

// OwnerUserIdMiddleware extracts the owner user id from the request headers.
// Every credential operation is scoped to this id.
func OwnerUserIdMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerUserId := ""
		for _, header := range utils.UserIdHeaders {
			if value := c.GetHeader(header); value != "" {
				ownerUserId = value
				break
			}
		}

		if ownerUserId == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user id header is required"})
			c.Abort()
			return
		}

		// Store in gin context for later use
		c.Set("OwnerUserId", ownerUserId)
		c.Next()
	}
}
