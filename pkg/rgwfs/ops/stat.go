package ops

import (
	"context"

	"github.com/cohortfs/rgwfs/pkg/fhcache"
	"github.com/cohortfs/rgwfs/pkg/objstore"
)

// StatBucketOp reports whether a bucket exists and its handle-cache stat,
// matching RGWStatBucketRequest. original_source implements this as a
// single-entry-early-exit directory listing rather than a dedicated HEAD
// call; this adapter keeps that shape by doing a one-entry ListBucket
// probe instead of requiring the Store interface to grow a HeadBucket
// method no other adapter needs.
type StatBucketOp struct {
	Mount *fhcache.Mount
	Store objstore.Store
}

func (op *StatBucketOp) Exec(ctx context.Context, name string) (*fhcache.FileHandle, error) {
	// An empty bucket is still a bucket; ListBucket returning ErrNotFound
	// is what distinguishes "doesn't exist" from "exists but empty" since
	// the Store interface has no dedicated bucket-existence probe.
	err := op.Store.ListBucket(ctx, name, "", 1, func(string) bool { return false })
	if err == objstore.ErrNotFound {
		return nil, fhcache.ErrNotFound
	}
	if err != nil {
		return nil, fhcache.ErrBackend
	}

	return op.Mount.LookupFH(op.Mount.Root(), name, fhcache.KindBucket, fhcache.RootKey(name))
}

// StatLeafOp resolves a single named entry under dir without materializing
// a full directory listing, matching RGWStatLeafRequest's early-exit scan:
// it walks the store's listing starting at name and stops as soon as it
// either matches exactly or passes it.
type StatLeafOp struct {
	Store objstore.Store
}

func (op *StatLeafOp) Exec(ctx context.Context, bucket string, dir *fhcache.FileHandle, name string) (objstore.ObjectInfo, bool, error) {
	prefix := dir.FullObjectName()
	if prefix != "" {
		prefix += "/"
	}
	full := prefix + name

	info, err := op.Store.StatObject(ctx, bucket, full)
	if err == nil {
		return info, true, nil
	}
	if err != objstore.ErrNotFound {
		return objstore.ObjectInfo{}, false, fhcache.ErrBackend
	}

	// Not a leaf object; it may still be a pseudo-directory, which exists
	// only implicitly as a shared prefix of deeper keys. One key starting
	// with full+"/" is enough to confirm it, so the scan stops immediately
	// on the first hit (or first miss) rather than listing the whole
	// subtree, matching RGWStatLeafRequest's early-exit shape.
	childPrefix := full + "/"
	isDir := false
	err = op.Store.ListBucket(ctx, bucket, full, 1, func(key string) bool {
		if len(key) >= len(childPrefix) && key[:len(childPrefix)] == childPrefix {
			isDir = true
		}
		return false
	})
	if err != nil && err != objstore.ErrNotFound {
		return objstore.ObjectInfo{}, false, fhcache.ErrBackend
	}
	if isDir {
		return objstore.ObjectInfo{Bucket: bucket, Key: full}, true, nil
	}
	return objstore.ObjectInfo{}, false, nil
}
