package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"

	gin "github.com/gin-gonic/gin"
)

func (s *Server) streamRoutes(r *gin.Engine) {
	// invalidation events as SSE; EventSource can't set headers, so the
	// token may ride as a query param
	r.GET("/api/events/stream", func(c *gin.Context) {
		_, _, ok := s.auth(c.Request)
		if !ok {
			if tok := c.Query("token"); tok != "" && s.jwtMgr != nil {
				if _, _, err := s.jwtMgr.Verify(tok); err == nil {
					ok = true
				}
			}
		}
		if !ok {
			s.respondError(c, http.StatusUnauthorized, "unauthorized")
			return
		}
		if s.bus == nil {
			s.respondError(c, http.StatusServiceUnavailable, "event feed unavailable")
			return
		}

		w := c.Writer
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		flusher, okf := w.(http.Flusher)
		if !okf {
			s.respondError(c, http.StatusInternalServerError, "stream unsupported")
			return
		}

		events, cancel, err := s.bus.Subscribe()
		if err != nil {
			s.respondError(c, http.StatusServiceUnavailable, "subscribe failed")
			return
		}
		defer cancel()

		fmt.Fprintf(w, "event: ready\ndata: {}\n\n")
		flusher.Flush()

		done := c.Request.Context().Done()
		for {
			select {
			case <-done:
				return
			case evt, open := <-events:
				if !open {
					return
				}
				b, err := json.Marshal(evt)
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "event: invalidate\ndata: %s\n\n", b)
				flusher.Flush()
			}
		}
	})
}
