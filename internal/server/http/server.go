// Package httpserver is the admin API: authenticated, RBAC-guarded list
// and mutation endpoints for every dashboard table, plus the SSE stream
// that pushes list invalidations to connected sessions.
package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/zeromicro/go-zero/core/logx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/parlaygames/pitboss/internal/auth/rbac"
	"github.com/parlaygames/pitboss/internal/auth/token"
	"github.com/parlaygames/pitboss/internal/cli/common"
	"github.com/parlaygames/pitboss/internal/feed"
	"github.com/parlaygames/pitboss/internal/objstore"
	usersgorm "github.com/parlaygames/pitboss/internal/repo/gorm/users"
	"github.com/parlaygames/pitboss/internal/rooms"
	"github.com/parlaygames/pitboss/internal/secevents"
	"github.com/parlaygames/pitboss/internal/validation"
	"github.com/parlaygames/pitboss/internal/views"
	"github.com/parlaygames/pitboss/pkg/listcache"
)

type Server struct {
	users   *usersgorm.Repo
	rooms   *rooms.Store
	sec     secevents.Store
	views   *views.Registry
	policy  *rbac.Policy
	jwtMgr  *token.Manager
	bus     feed.Bus
	cache   listcache.Store
	exports objstore.Store
	schemas *validation.Registry

	reporterToken string

	startedAt time.Time
	httpSrv   *http.Server

	// login rate limiting (in-memory): key = ip|username -> attempt times within window
	loginAttempts map[string][]time.Time
	loginMu       sync.Mutex
}

// Deps carries the server's collaborators; optional ones may be nil and the
// matching endpoints degrade to 503.
type Deps struct {
	Users   *usersgorm.Repo
	Rooms   *rooms.Store
	Sec     secevents.Store
	Views   *views.Registry
	Policy  *rbac.Policy
	JWT     *token.Manager
	Bus     feed.Bus
	Cache   listcache.Store
	Exports objstore.Store
	Schemas *validation.Registry

	// ReporterToken gates the room heartbeat endpoint. Empty disables the
	// check (dev setups).
	ReporterToken string
}

func NewServer(d Deps) *Server {
	return &Server{
		users:         d.Users,
		rooms:         d.Rooms,
		sec:           d.Sec,
		views:         d.Views,
		policy:        d.Policy,
		jwtMgr:        d.JWT,
		bus:           d.Bus,
		cache:         d.Cache,
		exports:       d.Exports,
		schemas:       d.Schemas,
		reporterToken: d.ReporterToken,
		startedAt:     time.Now(),
		loginAttempts: map[string][]time.Time{},
	}
}

func (s *Server) ginEngine() *gin.Engine {
	r := gin.New()
	r.Use(s.ginLogger(), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"uptime": time.Since(s.startedAt).String(),
			"log":    common.GetLogCounters(),
		})
	})

	s.authRoutes(r)
	s.viewRoutes(r)
	s.userRoutes(r)
	s.roomRoutes(r)
	s.securityRoutes(r)
	s.reportRoutes(r)
	s.streamRoutes(r)
	return r
}

// Start serves until Shutdown.
func (s *Server) Start(addr string) error {
	s.httpSrv = &http.Server{Addr: addr, Handler: otelhttp.NewHandler(s.ginEngine(), "admin-api")}
	logx.Infow("admin api listening", logx.Field("addr", addr))
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// Handler exposes the assembled engine, used by tests.
func (s *Server) Handler() http.Handler { return s.ginEngine() }

func (s *Server) ginLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logx.Infow("http",
			logx.Field("method", c.Request.Method),
			logx.Field("path", c.Request.URL.Path),
			logx.Field("status", c.Writer.Status()),
			logx.Field("duration", time.Since(start).String()),
		)
	}
}

// respondError emits the uniform error envelope every client decodes.
func (s *Server) respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"message": message, "statusCode": status})
}

// auth extracts and verifies the Bearer token.
func (s *Server) auth(r *http.Request) (string, []string, bool) {
	authz := r.Header.Get("Authorization")
	if strings.HasPrefix(authz, "Bearer ") && s.jwtMgr != nil {
		user, roles, err := s.jwtMgr.Verify(strings.TrimPrefix(authz, "Bearer "))
		if err == nil {
			return user, roles, true
		}
	}
	return "", nil, false
}

// require authenticates and checks that the user holds any of the given
// permissions. On failure it has already written the error response.
func (s *Server) require(c *gin.Context, anyOf ...string) (string, []string, bool) {
	user, roles, ok := s.auth(c.Request)
	if !ok {
		s.respondError(c, http.StatusUnauthorized, "unauthorized")
		return "", nil, false
	}
	if len(anyOf) == 0 || s.policy == nil {
		return user, roles, true
	}
	for _, p := range anyOf {
		if s.policy.Can(user, roles, p) {
			return user, roles, true
		}
	}
	s.audit(user, "permission.denied", "warning", c.ClientIP(), strings.Join(anyOf, ","))
	s.respondError(c, http.StatusForbidden, "forbidden")
	return user, roles, false
}

// allowLogin performs simple in-memory rate limiting for login attempts per ip|username.
func (s *Server) allowLogin(ip, username string) bool {
	key := fmt.Sprintf("%s|%s", strings.TrimSpace(ip), strings.TrimSpace(username))
	now := time.Now()
	window := now.Add(-5 * time.Minute)
	s.loginMu.Lock()
	defer s.loginMu.Unlock()
	arr := s.loginAttempts[key]
	kept := arr[:0]
	for _, t := range arr {
		if t.After(window) {
			kept = append(kept, t)
		}
	}
	if len(kept) >= 10 {
		s.loginAttempts[key] = kept
		return false
	}
	s.loginAttempts[key] = append(kept, now)
	return true
}

// audit records a security event; failures only log.
func (s *Server) audit(actor, action, severity, ip, detail string) {
	if s.sec == nil {
		return
	}
	err := s.sec.Insert(secevents.Event{
		Actor:    actor,
		Action:   action,
		Severity: severity,
		IP:       ip,
		Detail:   detail,
	})
	if err != nil {
		logx.Errorw("audit insert failed", logx.Field("err", err))
	}
}

// notify publishes a list invalidation and drops the resource's cached
// pages. Mutation handlers call it after every successful write.
func (s *Server) notify(resource, action string, ids ...string) {
	if s.cache != nil {
		if err := s.cache.InvalidateView(context.Background(), resource); err != nil {
			logx.Errorw("cache invalidate failed", logx.Field("resource", resource), logx.Field("err", err))
		}
	}
	if s.bus != nil {
		err := s.bus.Publish(feed.Event{Resource: resource, Action: action, IDs: ids, At: time.Now()})
		if err != nil {
			logx.Errorw("feed publish failed", logx.Field("resource", resource), logx.Field("err", err))
		}
	}
}
