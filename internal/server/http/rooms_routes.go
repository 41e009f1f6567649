package httpserver

import (
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"github.com/parlaygames/pitboss/internal/rooms"
)

func (s *Server) roomRoutes(r *gin.Engine) {
	r.GET("/api/rooms", func(c *gin.Context) {
		if _, _, ok := s.require(c, "rooms:read", "rooms:manage"); !ok {
			return
		}
		if s.rooms == nil {
			s.respondError(c, http.StatusServiceUnavailable, "room registry unavailable")
			return
		}
		p := parseListParams(c)
		page, total := s.rooms.List(rooms.ListOptions{
			Page:     p.Page,
			PageSize: p.PageSize,
			Game:     strings.TrimSpace(c.Query("game")),
			Region:   strings.TrimSpace(c.Query("region")),
			Search:   p.Search,
		})
		c.JSON(http.StatusOK, pageEnvelope(page, int64(total), p.Page, p.PageSize))
	})

	r.GET("/api/rooms/:id", func(c *gin.Context) {
		if _, _, ok := s.require(c, "rooms:read", "rooms:manage"); !ok {
			return
		}
		if s.rooms == nil {
			s.respondError(c, http.StatusServiceUnavailable, "room registry unavailable")
			return
		}
		room, ok := s.rooms.Get(c.Param("id"))
		if !ok {
			s.respondError(c, http.StatusNotFound, "room not found")
			return
		}
		c.JSON(http.StatusOK, room)
	})

	// room hosts report in; gated by a shared reporter token, not user auth
	r.POST("/api/rooms/heartbeat", func(c *gin.Context) {
		if s.reporterToken != "" && c.GetHeader("X-Reporter-Token") != s.reporterToken {
			s.respondError(c, http.StatusUnauthorized, "unauthorized")
			return
		}
		if s.rooms == nil {
			s.respondError(c, http.StatusServiceUnavailable, "room registry unavailable")
			return
		}
		var in rooms.Room
		if err := c.BindJSON(&in); err != nil || strings.TrimSpace(in.ID) == "" {
			s.respondError(c, http.StatusBadRequest, "invalid payload")
			return
		}
		s.rooms.Heartbeat(&in)
		c.Status(http.StatusNoContent)
	})

	r.DELETE("/api/rooms/:id", func(c *gin.Context) {
		actor, _, ok := s.require(c, "rooms:delete", "rooms:manage")
		if !ok {
			return
		}
		if s.rooms == nil {
			s.respondError(c, http.StatusServiceUnavailable, "room registry unavailable")
			return
		}
		if !s.rooms.Close(c.Param("id")) {
			s.respondError(c, http.StatusNotFound, "room not found")
			return
		}
		s.audit(actor, "room.close", "warning", c.ClientIP(), c.Param("id"))
		s.notify("rooms", "delete", c.Param("id"))
		c.Status(http.StatusNoContent)
	})
}
