package httpserver

import (
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"github.com/parlaygames/pitboss/internal/secevents"
)

func (s *Server) securityRoutes(r *gin.Engine) {
	r.GET("/api/security/events", func(c *gin.Context) {
		if _, _, ok := s.require(c, "security-events:read", "security:manage"); !ok {
			return
		}
		if s.sec == nil {
			s.respondError(c, http.StatusServiceUnavailable, "event store unavailable")
			return
		}
		p := parseListParams(c)
		events, total, err := s.sec.List(secevents.ListOptions{
			Page:     p.Page,
			PageSize: p.PageSize,
			Search:   p.Search,
			Severity: strings.TrimSpace(c.Query("severity")),
			Actor:    strings.TrimSpace(c.Query("actor")),
			SortAsc:  p.SortBy == "time" && !p.SortDesc,
		})
		if err != nil {
			s.respondError(c, http.StatusInternalServerError, "failed to list events")
			return
		}
		c.JSON(http.StatusOK, pageEnvelope(events, total, p.Page, p.PageSize))
	})

	// ingest from platform services
	r.POST("/api/security/events", func(c *gin.Context) {
		if _, _, ok := s.require(c, "security-events:create", "security:manage"); !ok {
			return
		}
		if s.sec == nil {
			s.respondError(c, http.StatusServiceUnavailable, "event store unavailable")
			return
		}
		var in secevents.Event
		if err := c.BindJSON(&in); err != nil || strings.TrimSpace(in.Action) == "" {
			s.respondError(c, http.StatusBadRequest, "invalid payload")
			return
		}
		if err := s.sec.Insert(in); err != nil {
			s.respondError(c, http.StatusInternalServerError, "failed to store event")
			return
		}
		s.notify("security-events", "create")
		c.Status(http.StatusCreated)
	})
}
