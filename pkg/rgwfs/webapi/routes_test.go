package webapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cohortfs/rgwfs/pkg/fhcache"
	"github.com/cohortfs/rgwfs/pkg/sessionmap"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer() (*echo.Echo, *Server) {
	mount := fhcache.NewMount(fhcache.Options{Partitions: 2, Lanes: 2, LaneHiwat: 10})
	sm := sessionmap.NewSessionMap()
	e := echo.New()
	s := &Server{Mount: mount, SessionMap: sm}
	SetupRoutes(e, s)
	return e, s
}

func TestHealthz(t *testing.T) {
	e, _ := testServer()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestCacheStatsReportsHandleCount(t *testing.T) {
	e, s := testServer()
	_, err := s.Mount.LookupFH(s.Mount.Root(), "bucket-a", fhcache.KindBucket, fhcache.RootKey("bucket-a"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/cache/stats", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"handle_count":1`)
}

func TestListSessionsIncludesEverySession(t *testing.T) {
	e, s := testServer()
	s.SessionMap.GetOrAddOpenSession("client-a")
	s.SessionMap.GetOrAddOpenSession("client-b")

	req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "client-a")
	assert.Contains(t, rec.Body.String(), "client-b")
}

func TestGetSessionNotFound(t *testing.T) {
	e, _ := testServer()
	req := httptest.NewRequest(http.MethodGet, "/sessions/missing", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSetLogLevelRejectsBadLevel(t *testing.T) {
	e, _ := testServer()
	req := httptest.NewRequest(http.MethodPost, "/log/global/notalevel", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetLogLevelAcceptsValidLevel(t *testing.T) {
	e, _ := testServer()
	req := httptest.NewRequest(http.MethodPost, "/log/global/debug", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
