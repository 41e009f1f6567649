package httpserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
)

func (s *Server) authRoutes(r *gin.Engine) {
	r.POST("/api/auth/login", func(c *gin.Context) {
		if s.users == nil || s.jwtMgr == nil {
			s.respondError(c, http.StatusServiceUnavailable, "auth disabled")
			return
		}
		var in struct{ Username, Password string }
		if err := c.BindJSON(&in); err != nil {
			s.respondError(c, http.StatusBadRequest, "invalid payload")
			return
		}
		ip := c.ClientIP()
		if !s.allowLogin(ip, in.Username) {
			s.audit(in.Username, "login.rate_limited", "warning", ip, "")
			s.respondError(c, http.StatusTooManyRequests, "too many login attempts")
			return
		}
		ur, err := s.users.Verify(c, in.Username, in.Password)
		if err != nil {
			// don't disclose whether the user exists
			s.audit(in.Username, "login.failed", "warning", ip, "")
			s.respondError(c, http.StatusUnauthorized, "invalid credentials")
			return
		}
		roles, _ := s.users.ListUserRoles(c, ur.ID)
		tok, err := s.jwtMgr.Sign(in.Username, roles, 8*time.Hour)
		if err != nil {
			s.respondError(c, http.StatusInternalServerError, "failed to issue token")
			return
		}
		s.audit(in.Username, "login", "info", ip, "")
		c.JSON(http.StatusOK, gin.H{"token": tok, "user": gin.H{"username": in.Username, "roles": roles}})
	})

	r.GET("/api/auth/me", func(c *gin.Context) {
		user, roles, ok := s.auth(c.Request)
		if !ok {
			s.respondError(c, http.StatusUnauthorized, "unauthorized")
			return
		}
		c.JSON(http.StatusOK, gin.H{"username": user, "roles": roles})
	})
}
