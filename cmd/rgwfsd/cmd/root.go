package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/apex/log"
	"github.com/cohortfs/rgwfs/pkg/config"
	"github.com/cohortfs/rgwfs/pkg/fhcache"
	"github.com/cohortfs/rgwfs/pkg/objstore"
	"github.com/cohortfs/rgwfs/pkg/sessionmap"
	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "rgwfsd",
	Short: "Daemon for the rgwfs file system",
	Long:  `Daemon for the rgwfs file system`,
	Run: func(cmd *cobra.Command, args []string) {
		c := config.MustLoadRGWFSConfig()
		if dsn := viper.GetString("db-dsn"); dsn != "" {
			c.DBDSN = dsn
		}
		if path := viper.GetString("mount"); path != "" {
			c.MountPath = path
		}
		if err := Run(args, c); err != nil {
			log.Fatalf("rgwfsd: %s", err)
		}
	},
}

func init() {
	rootCmd.Flags().String("mount", "", "mount point, overrides "+config.EnvMountPath)
	rootCmd.Flags().String("db-dsn", "", "object store DSN, overrides "+config.EnvDBDSN)
	_ = viper.BindPFlag("mount", rootCmd.Flags().Lookup("mount"))
	_ = viper.BindPFlag("db-dsn", rootCmd.Flags().Lookup("db-dsn"))
}

// Run wires a Mount, a SessionMap, a backing Store, the admin echo server,
// and the go-fuse mount together, then blocks until the mount is torn down.
// Matches the teacher's own Run: config in, everything else built and
// started from it.
func Run(args []string, c *config.RGWFSConfig) error {
	mountPath := c.MountPath
	if len(args) == 1 {
		mountPath = args[0]
	}
	if mountPath == "" {
		return fmt.Errorf("no path specified for mount")
	}

	db := objstore.MustConnectToDB(c.DBDriver, c.DBDSN)
	store := objstore.NewGormStore(db)

	mount := fhcache.NewMount(fhcache.Options{
		Partitions: c.FHCachePartitions,
		Lanes:      c.LRULanes,
		LaneHiwat:  c.LRULaneHiwat,
	})
	sessions := sessionmap.NewSessionMap()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	setupRoutes(RouteDependencies{
		e:        e,
		mount:    mount,
		sessions: sessions,
		shutdown: mount.Close,
	})

	go func() {
		if err := e.Start(c.AdminAddr); err != nil {
			log.Warnf("rgwfsd: admin server stopped: %s", err)
		}
	}()

	fuseServer, err := createFS(FSDependencies{
		mount:     mount,
		store:     store,
		mountPath: mountPath,
	})
	if err != nil {
		return err
	}

	go fuseServer.Serve()
	if err := fuseServer.WaitMount(); err != nil {
		log.Fatalf("rgwfsd: mount failed: %s", err)
	}

	go unmountOnSignal(fuseServer, mountPath, mount)

	fuseServer.Wait()
	return nil
}

func unmountOnSignal(server *fuse.Server, path string, mount *fhcache.Mount) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	log.Infof("rgwfsd: got %s signal, unmounting %q...", s, path)
	mount.Close()
	if err := server.Unmount(); err != nil {
		log.Errorf("rgwfsd: unmount failed: %s, trying umount...", err)
		cmd := exec.Command("/usr/bin/umount", path)
		if err := cmd.Run(); err != nil {
			log.Errorf("rgwfsd: /usr/bin/umount failed: %s", err)
		}
	}
	os.Exit(0)
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once by main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
