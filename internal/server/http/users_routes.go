package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	usersgorm "github.com/parlaygames/pitboss/internal/repo/gorm/users"
)

func userJSON(u *usersgorm.UserAccount) gin.H {
	return gin.H{
		"id":          strconv.FormatUint(uint64(u.ID), 10),
		"username":    u.Username,
		"displayName": u.DisplayName,
		"email":       u.Email,
		"status":      u.Status,
		"balance":     u.Balance,
		"metadata":    u.Metadata,
		"createdAt":   u.CreatedAt,
	}
}

func parseID(raw string) (uint, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

func (s *Server) userRoutes(r *gin.Engine) {
	r.GET("/api/users", func(c *gin.Context) {
		if _, _, ok := s.require(c, "users:read", "users:manage"); !ok {
			return
		}
		if s.users == nil {
			s.respondError(c, http.StatusServiceUnavailable, "user repo unavailable")
			return
		}
		p := parseListParams(c)
		list, total, err := s.users.List(c, usersgorm.ListOptions{
			Page:     p.Page,
			PageSize: p.PageSize,
			SortBy:   p.SortBy,
			SortDesc: p.SortDesc,
			Search:   p.Search,
			Status:   strings.TrimSpace(c.Query("status")),
		})
		if err != nil {
			s.respondError(c, http.StatusInternalServerError, "failed to list users")
			return
		}
		items := make([]gin.H, 0, len(list))
		for _, u := range list {
			items = append(items, userJSON(u))
		}
		c.JSON(http.StatusOK, pageEnvelope(items, total, p.Page, p.PageSize))
	})

	r.POST("/api/users", func(c *gin.Context) {
		actor, _, ok := s.require(c, "users:create", "users:manage")
		if !ok {
			return
		}
		if s.users == nil {
			s.respondError(c, http.StatusServiceUnavailable, "user repo unavailable")
			return
		}
		body, err := c.GetRawData()
		if err != nil {
			s.respondError(c, http.StatusBadRequest, "invalid payload")
			return
		}
		if s.schemas != nil {
			if err := s.schemas.Validate("users", body); err != nil {
				s.respondError(c, http.StatusBadRequest, err.Error())
				return
			}
		}
		var in struct {
			Username    string          `json:"username"`
			DisplayName string          `json:"displayName"`
			Email       string          `json:"email"`
			Status      string          `json:"status"`
			Balance     int64           `json:"balance"`
			Password    string          `json:"password"`
			Metadata    json.RawMessage `json:"metadata"`
		}
		if err := json.Unmarshal(body, &in); err != nil || strings.TrimSpace(in.Username) == "" {
			s.respondError(c, http.StatusBadRequest, "invalid payload")
			return
		}
		u := &usersgorm.UserAccount{
			Username:    strings.TrimSpace(in.Username),
			DisplayName: in.DisplayName,
			Email:       in.Email,
			Status:      in.Status,
			Balance:     in.Balance,
		}
		if u.Status == "" {
			u.Status = "active"
		}
		if len(in.Metadata) > 0 {
			u.Metadata = []byte(in.Metadata)
		}
		if err := s.users.Create(c, u); err != nil {
			s.respondError(c, http.StatusConflict, "failed to create user")
			return
		}
		if in.Password != "" {
			// a user without working credentials must not survive the create
			if err := s.users.SetPassword(c, u.ID, in.Password); err != nil {
				_ = s.users.Delete(c, u.ID)
				s.respondError(c, http.StatusBadRequest, "failed to set password")
				return
			}
		}
		s.audit(actor, "user.create", "info", c.ClientIP(), u.Username)
		s.notify("users", "create", strconv.FormatUint(uint64(u.ID), 10))
		c.JSON(http.StatusCreated, userJSON(u))
	})

	r.PUT("/api/users/:id", func(c *gin.Context) {
		actor, _, ok := s.require(c, "users:update", "users:manage")
		if !ok {
			return
		}
		if s.users == nil {
			s.respondError(c, http.StatusServiceUnavailable, "user repo unavailable")
			return
		}
		id, ok := parseID(c.Param("id"))
		if !ok {
			s.respondError(c, http.StatusBadRequest, "invalid id")
			return
		}
		u, err := s.users.Get(c, id)
		if err != nil {
			s.respondError(c, http.StatusNotFound, "user not found")
			return
		}
		body, err := c.GetRawData()
		if err != nil {
			s.respondError(c, http.StatusBadRequest, "invalid payload")
			return
		}
		if s.schemas != nil {
			if err := s.schemas.Validate("users", body); err != nil {
				s.respondError(c, http.StatusBadRequest, err.Error())
				return
			}
		}
		var in struct {
			DisplayName *string         `json:"displayName"`
			Email       *string         `json:"email"`
			Status      *string         `json:"status"`
			Balance     *int64          `json:"balance"`
			Metadata    json.RawMessage `json:"metadata"`
		}
		if err := json.Unmarshal(body, &in); err != nil {
			s.respondError(c, http.StatusBadRequest, "invalid payload")
			return
		}
		if in.DisplayName != nil {
			u.DisplayName = *in.DisplayName
		}
		if in.Email != nil {
			u.Email = *in.Email
		}
		if in.Status != nil {
			u.Status = *in.Status
		}
		if in.Balance != nil {
			u.Balance = *in.Balance
		}
		if len(in.Metadata) > 0 {
			u.Metadata = []byte(in.Metadata)
		}
		if err := s.users.Update(c, u); err != nil {
			s.respondError(c, http.StatusInternalServerError, "failed to update user")
			return
		}
		s.audit(actor, "user.update", "info", c.ClientIP(), u.Username)
		s.notify("users", "update", c.Param("id"))
		c.JSON(http.StatusOK, userJSON(u))
	})

	r.DELETE("/api/users/:id", func(c *gin.Context) {
		actor, _, ok := s.require(c, "users:delete", "users:manage")
		if !ok {
			return
		}
		if s.users == nil {
			s.respondError(c, http.StatusServiceUnavailable, "user repo unavailable")
			return
		}
		id, ok := parseID(c.Param("id"))
		if !ok {
			s.respondError(c, http.StatusBadRequest, "invalid id")
			return
		}
		if err := s.users.Delete(c, id); err != nil {
			s.respondError(c, http.StatusInternalServerError, "failed to delete user")
			return
		}
		s.audit(actor, "user.delete", "warning", c.ClientIP(), c.Param("id"))
		s.notify("users", "delete", c.Param("id"))
		c.Status(http.StatusNoContent)
	})

	// one request per batch, whatever the selection size
	r.POST("/api/users/bulk", func(c *gin.Context) {
		actor, _, ok := s.require(c, "users:update", "users:manage")
		if !ok {
			return
		}
		if s.users == nil {
			s.respondError(c, http.StatusServiceUnavailable, "user repo unavailable")
			return
		}
		var in struct {
			IDs []string `json:"ids"`
			Op  struct {
				Field string `json:"field"`
				Value string `json:"value"`
			} `json:"op"`
		}
		if err := c.BindJSON(&in); err != nil || len(in.IDs) == 0 || in.Op.Field == "" {
			s.respondError(c, http.StatusBadRequest, "invalid payload")
			return
		}
		ids := make([]uint, 0, len(in.IDs))
		for _, raw := range in.IDs {
			id, ok := parseID(raw)
			if !ok {
				s.respondError(c, http.StatusBadRequest, "invalid id: "+raw)
				return
			}
			ids = append(ids, id)
		}
		n, err := s.users.BulkSet(c, ids, in.Op.Field, in.Op.Value)
		if err != nil {
			s.respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		s.audit(actor, "user.bulk_update", "warning", c.ClientIP(),
			in.Op.Field+"="+in.Op.Value+" on "+strconv.Itoa(len(ids))+" users")
		s.notify("users", "bulk-update", in.IDs...)
		c.JSON(http.StatusOK, gin.H{"updated": n})
	})
}
