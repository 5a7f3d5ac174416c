package ops

import (
	"context"
	"sort"

	"github.com/cohortfs/rgwfs/pkg/fhcache"
	"github.com/cohortfs/rgwfs/pkg/objstore"
)

// ListBucketsOp lists every bucket visible at the mount root, matching
// RGWListBucketsRequest. The backing Store has no first-class notion of
// "all buckets" beyond what ListBucket already tracks per-bucket, so this
// walks the mount's cached bucket handles instead of querying the store
// directly — buckets the store knows about but that have never been
// looked up through this Mount won't appear, which is consistent with the
// handle cache's "namespace entries are discovered by lookup" contract.
type ListBucketsOp struct {
	Mount *fhcache.Mount
}

// BucketEntry is one row of a bucket listing.
type BucketEntry struct {
	Name string
	Stat fhcache.Stat
}

// Exec reports every bucket-kind handle currently resident in the mount's
// index, in key order for stable pagination across calls.
func (op *ListBucketsOp) Exec(ctx context.Context, yield func(BucketEntry) bool) error {
	var buckets []*fhcache.FileHandle
	op.Mount.Handles(func(fh *fhcache.FileHandle) bool {
		if fh.Kind() == fhcache.KindBucket {
			buckets = append(buckets, fh)
		}
		return true
	})
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Key().Less(buckets[j].Key()) })
	for _, fh := range buckets {
		if !yield(BucketEntry{Name: fh.Name(), Stat: fh.Stat()}) {
			break
		}
	}
	return nil
}

// CreateBucketOp creates a new bucket in the backing store and primes the
// mount's handle cache with its root handle, matching
// RGWCreateBucketRequest.
type CreateBucketOp struct {
	Mount *fhcache.Mount
	Store objstore.Store
}

func (op *CreateBucketOp) Exec(ctx context.Context, name string) (*fhcache.FileHandle, error) {
	if err := op.Store.CreateBucket(ctx, name); err != nil {
		if err == objstore.ErrAlreadyExists {
			return nil, fhcache.ErrAlreadyExists
		}
		return nil, fhcache.ErrBackend
	}
	return op.Mount.LookupFH(op.Mount.Root(), name, fhcache.KindBucket, fhcache.RootKey(name))
}

// DeleteBucketOp removes a bucket from the backing store and drops its
// handle from the cache, matching RGWDeleteBucketRequest.
type DeleteBucketOp struct {
	Mount *fhcache.Mount
	Store objstore.Store
}

func (op *DeleteBucketOp) Exec(ctx context.Context, name string) error {
	if err := op.Store.DeleteBucket(ctx, name); err != nil {
		if err == objstore.ErrNotFound {
			return fhcache.ErrNotFound
		}
		return fhcache.ErrBackend
	}
	op.Mount.Forget(fhcache.RootKey(name))
	return nil
}
