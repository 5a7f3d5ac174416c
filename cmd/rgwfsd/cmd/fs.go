package cmd

import (
	"fmt"

	"github.com/cohortfs/rgwfs/pkg/fhcache"
	"github.com/cohortfs/rgwfs/pkg/objstore"
	"github.com/cohortfs/rgwfs/pkg/rgwfs/fuseglue"
	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// FSDependencies bundles what createFS needs to build the go-fuse mount,
// matching the teacher's own FSDependencies struct.
type FSDependencies struct {
	mount     *fhcache.Mount
	store     objstore.Store
	mountPath string
}

func createFS(deps FSDependencies) (*fuse.Server, error) {
	root := fuseglue.NewRoot(&fuseglue.RootData{
		Mount: deps.mount,
		Store: deps.store,
	})

	rawfs := fs.NewNodeFS(root, &fs.Options{})
	fuseServer, err := fuse.NewServer(rawfs, deps.mountPath, &fuse.MountOptions{Name: "rgwfs"})
	if err != nil {
		return nil, fmt.Errorf("unable to create fuse server: %s", err)
	}

	return fuseServer, nil
}
