package httpserver

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	gin "github.com/gin-gonic/gin"

	usersgorm "github.com/parlaygames/pitboss/internal/repo/gorm/users"
)

const exportPageSize = 1000

func (s *Server) reportRoutes(r *gin.Engine) {
	// snapshot the users table to CSV in object storage and hand back a
	// download link
	r.POST("/api/reports/export", func(c *gin.Context) {
		actor, _, ok := s.require(c, "reports:create", "reports:manage")
		if !ok {
			return
		}
		if s.users == nil || s.exports == nil {
			s.respondError(c, http.StatusServiceUnavailable, "export unavailable")
			return
		}
		var in struct {
			Resource string `json:"resource"`
			Status   string `json:"status"`
			Search   string `json:"search"`
		}
		if err := c.BindJSON(&in); err != nil || in.Resource != "users" {
			s.respondError(c, http.StatusBadRequest, "unsupported export resource")
			return
		}

		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		_ = w.Write([]string{"id", "username", "displayName", "email", "status", "balance", "createdAt"})
		for page := 1; ; page++ {
			batch, _, err := s.users.List(c, usersgorm.ListOptions{
				Page:     page,
				PageSize: exportPageSize,
				Status:   in.Status,
				Search:   in.Search,
			})
			if err != nil {
				s.respondError(c, http.StatusInternalServerError, "failed to read users")
				return
			}
			for _, u := range batch {
				_ = w.Write([]string{
					strconv.FormatUint(uint64(u.ID), 10),
					u.Username,
					u.DisplayName,
					u.Email,
					u.Status,
					strconv.FormatInt(u.Balance, 10),
					u.CreatedAt.Format(time.RFC3339),
				})
			}
			if len(batch) < exportPageSize {
				break
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			s.respondError(c, http.StatusInternalServerError, "failed to build csv")
			return
		}

		key := fmt.Sprintf("reports/users-%s.csv", time.Now().UTC().Format("20060102-150405"))
		if err := s.exports.Put(c, key, bytes.NewReader(buf.Bytes()), int64(buf.Len()), "text/csv"); err != nil {
			s.respondError(c, http.StatusInternalServerError, "failed to store export")
			return
		}
		u, err := s.exports.SignedURL(c, key, "GET", 0)
		if err != nil {
			s.respondError(c, http.StatusInternalServerError, "failed to sign export url")
			return
		}
		s.audit(actor, "report.export", "info", c.ClientIP(), key)
		c.JSON(http.StatusCreated, gin.H{"key": key, "url": u})
	})

	r.GET("/api/reports", func(c *gin.Context) {
		if _, _, ok := s.require(c, "reports:read", "reports:manage"); !ok {
			return
		}
		if s.exports == nil {
			s.respondError(c, http.StatusServiceUnavailable, "export unavailable")
			return
		}
		objs, err := s.exports.List(c, "reports/")
		if err != nil {
			s.respondError(c, http.StatusInternalServerError, "failed to list exports")
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": objs})
	})
}
