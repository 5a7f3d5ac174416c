package cmd

import (
	"github.com/cohortfs/rgwfs/pkg/fhcache"
	"github.com/cohortfs/rgwfs/pkg/rgwfs/webapi"
	"github.com/cohortfs/rgwfs/pkg/sessionmap"
	"github.com/labstack/echo/v4"
)

// RouteDependencies bundles what setupRoutes needs to wire the admin
// surface, matching the teacher's own RouteDependencies struct.
type RouteDependencies struct {
	e        *echo.Echo
	mount    *fhcache.Mount
	sessions *sessionmap.SessionMap
	shutdown func()
}

func setupRoutes(deps RouteDependencies) {
	webapi.SetupRoutes(deps.e, &webapi.Server{
		Mount:      deps.mount,
		SessionMap: deps.sessions,
		ShutdownFn: deps.shutdown,
	})
}
