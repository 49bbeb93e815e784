package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/dwikikusuma/storefront/internal/session"
	"github.com/dwikikusuma/storefront/pkg/identity"
	"github.com/gin-gonic/gin"
)

const userKey = "user"

// requireUser reads the opaque user id set by the session layer in front
// of the gateway.
func (s *Server) requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := identity.User{ID: strings.TrimSpace(c.GetHeader(identity.Header))}
		if !u.Valid() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Code: "UNAUTHENTICATED", Message: "missing " + identity.Header})
			return
		}
		c.Set(userKey, u)
		c.Request = c.Request.WithContext(identity.WithUser(c.Request.Context(), u))
		c.Next()
	}
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func currentUser(c *gin.Context) identity.User {
	u, _ := c.Get(userKey)
	user, _ := u.(identity.User)
	return user
}

// session resolves the caller's session or writes the error.
func (s *Server) session(c *gin.Context) (*session.Session, bool) {
	sess, err := s.deps.Sessions.Get(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		s.writeError(c, err)
		return nil, false
	}
	return sess, true
}
