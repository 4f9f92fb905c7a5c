package httpapi

import (
	"net/http"

	"rawmart-be/internal/utils"

	"github.com/gin-gonic/gin"
)

// requireRole rejects anonymous callers with 401 and, when roles are given,
// callers outside them with 403.
func requireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if _, ok := utils.GetUserIDFromContext(ctx); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if len(roles) > 0 && !utils.HasRole(ctx, roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

func accountID(c *gin.Context) uint {
	id, _ := utils.GetUserIDFromContext(c.Request.Context())
	return id
}

// pathID parses a positive numeric path parameter, writing 400 otherwise.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, ok := utils.ParseID(c.Param(name))
	if !ok {
		badRequest(c, "invalid "+name)
	}
	return id, ok
}
