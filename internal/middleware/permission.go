package middleware

import (
	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/cse-council-api/internal/errors"
	"github.com/yukikurage/cse-council-api/internal/permissions"
)

// RequirePermission rejects the request unless the current user's role
// grants action. It must run after LoadCurrentUser.
func RequirePermission(action permissions.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetCurrentUser(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		if !permissions.HasPermission(user.Role, action) {
			apierrors.Forbidden(c, "Your role does not allow this action")
			c.Abort()
			return
		}

		c.Next()
	}
}
