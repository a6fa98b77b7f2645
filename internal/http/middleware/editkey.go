package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	EditKeyHeader = "X-Edit-Key"
	CanEditKey    = "can_edit"
)

// EditPermission records whether the caller holds the page-level edit
// permission. An empty required key means everyone may edit (dev mode).
func EditPermission(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		canEdit := required == "" || c.GetHeader(EditKeyHeader) == required
		c.Set(CanEditKey, canEdit)
		c.Next()
	}
}

// RequireEdit guards mutating routes; read routes render non-editable cells
// instead of failing.
func RequireEdit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(CanEditKey) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "Edit permission required",
				},
			})
			return
		}
		c.Next()
	}
}
