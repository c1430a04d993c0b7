package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/multielectric/mesupply/internal/auth"
)

// sessionCookie carries the signed employee token.
const sessionCookie = "employee_token"

const identityKey = "identity"

// requireAuth verifies the session cookie and attaches the identity to the
// request context.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(sessionCookie)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		me, err := s.tokens.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Set(identityKey, me)
		c.Next()
	}
}

// requirePermission gates a route on one permission of the authenticated
// identity. Must run after requireAuth.
func (s *Server) requirePermission(allowed func(auth.Permissions) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		me := currentIdentity(c)
		if me == nil || !allowed(me.Permissions) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}

func currentIdentity(c *gin.Context) *auth.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	me, _ := v.(*auth.Identity)
	return me
}
