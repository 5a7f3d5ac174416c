// Package webapi exposes an admin surface over the running daemon: cache
// occupancy, session listing, and per-context log level control, matching
// the teacher's own echo-based admin routes pattern.
package webapi

import (
	"net/http"

	"github.com/cohortfs/rgwfs/pkg/clog"
	"github.com/cohortfs/rgwfs/pkg/fhcache"
	"github.com/cohortfs/rgwfs/pkg/sessionmap"
	"github.com/labstack/echo/v4"
)

// Server bundles the references admin handlers need.
type Server struct {
	Mount       *fhcache.Mount
	SessionMap  *sessionmap.SessionMap
	ShutdownFn  func()
}

// SetupRoutes registers the admin routes on e, matching the teacher's
// setupRoutes wiring one echo instance per daemon.
func SetupRoutes(e *echo.Echo, s *Server) {
	e.GET("/healthz", s.healthz)
	e.GET("/cache/stats", s.cacheStats)
	e.GET("/sessions", s.listSessions)
	e.GET("/sessions/:clientID", s.getSession)
	e.POST("/log/:context/:level", s.setLogLevel)
	e.POST("/shutdown", s.shutdown)
}

func (s *Server) healthz(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

type cacheStatsResponse struct {
	HandleCount int `json:"handle_count"`
	LRUCount    int `json:"lru_count"`
}

func (s *Server) cacheStats(c echo.Context) error {
	stats := s.Mount.Stats()
	return c.JSON(http.StatusOK, cacheStatsResponse{
		HandleCount: stats.HandleCount,
		LRUCount:    stats.LRUCount,
	})
}

type sessionResponse struct {
	ClientID           string `json:"client_id"`
	State              string `json:"state"`
	PreallocRemaining  uint64 `json:"prealloc_remaining"`
}

func (s *Server) listSessions(c echo.Context) error {
	var resp []sessionResponse
	s.SessionMap.Sessions(func(sess *sessionmap.Session) bool {
		resp = append(resp, sessionResponse{
			ClientID:          sess.ClientID,
			State:             sess.State().String(),
			PreallocRemaining: sess.PreallocRemaining(),
		})
		return true
	})
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) getSession(c echo.Context) error {
	clientID := c.Param("clientID")
	sess := s.SessionMap.GetSession(clientID)
	if sess == nil {
		return c.String(http.StatusNotFound, "no such session")
	}
	return c.JSON(http.StatusOK, sessionResponse{
		ClientID:          sess.ClientID,
		State:             sess.State().String(),
		PreallocRemaining: sess.PreallocRemaining(),
	})
}

func (s *Server) setLogLevel(c echo.Context) error {
	ctxName := c.Param("context")
	level := c.Param("level")
	if err := clog.SetLevelFromString(ctxName, level); err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) shutdown(c echo.Context) error {
	if s.ShutdownFn != nil {
		go s.ShutdownFn()
	}
	return c.NoContent(http.StatusAccepted)
}
