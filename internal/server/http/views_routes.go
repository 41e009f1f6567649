package httpserver

import (
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"github.com/parlaygames/pitboss/internal/views"
)

// viewPayload is a view definition plus the actions the requesting user may
// perform on its resource, so clients can hide management affordances.
type viewPayload struct {
	views.ViewDef
	Capabilities []string `json:"capabilities"`
}

func (s *Server) viewCapabilities(user string, roles []string, v views.ViewDef) []string {
	resource := v.Name
	if pre, _, found := strings.Cut(v.Permission, ":"); found && pre != "" {
		resource = pre
	}
	caps := []string{}
	for _, act := range []string{"read", "create", "update", "delete"} {
		if s.policy == nil || s.policy.Can(user, roles, resource+":"+act) {
			caps = append(caps, act)
		}
	}
	return caps
}

func (s *Server) viewRoutes(r *gin.Engine) {
	// view definitions the dashboard renders tables from; each user only
	// sees the views their permissions allow
	r.GET("/api/views", func(c *gin.Context) {
		user, roles, ok := s.require(c)
		if !ok {
			return
		}
		if s.views == nil {
			s.respondError(c, http.StatusServiceUnavailable, "view registry unavailable")
			return
		}
		all := s.views.All()
		visible := make([]viewPayload, 0, len(all))
		for _, v := range all {
			if v.Permission != "" && s.policy != nil && !s.policy.Can(user, roles, v.Permission) {
				continue
			}
			visible = append(visible, viewPayload{ViewDef: v, Capabilities: s.viewCapabilities(user, roles, v)})
		}
		c.JSON(http.StatusOK, gin.H{"views": visible})
	})

	r.GET("/api/views/:name", func(c *gin.Context) {
		user, roles, ok := s.require(c)
		if !ok {
			return
		}
		if s.views == nil {
			s.respondError(c, http.StatusServiceUnavailable, "view registry unavailable")
			return
		}
		v, found := s.views.Get(c.Param("name"))
		if !found {
			s.respondError(c, http.StatusNotFound, "view not found")
			return
		}
		if v.Permission != "" && s.policy != nil && !s.policy.Can(user, roles, v.Permission) {
			s.respondError(c, http.StatusForbidden, "forbidden")
			return
		}
		c.JSON(http.StatusOK, viewPayload{ViewDef: v, Capabilities: s.viewCapabilities(user, roles, v)})
	})
}
