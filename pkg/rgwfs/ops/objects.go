package ops

import (
	"context"

	"github.com/cohortfs/rgwfs/pkg/fhcache"
	"github.com/cohortfs/rgwfs/pkg/objstore"
)

// PutObjOp writes a single, already-buffered object in one call, matching
// RGWPutObjRequest's non-streaming path (small objects created atomically
// rather than through the WriteOp continuation).
type PutObjOp struct {
	Store objstore.Store
}

func (op *PutObjOp) Exec(ctx context.Context, bucket, key string, data []byte) (objstore.ObjectInfo, error) {
	if err := op.Store.PutObject(ctx, bucket, key, data); err != nil {
		return objstore.ObjectInfo{}, err
	}
	return op.Store.StatObject(ctx, bucket, key)
}

// ReadOp streams an object's bytes in the half-open range [off, off+length)
// to yield, matching RGWReadRequest.
type ReadOp struct {
	Store objstore.Store
}

func (op *ReadOp) Exec(ctx context.Context, bucket, key string, off, length int64, yield func([]byte) error) error {
	end := int64(-1)
	if length > 0 {
		end = off + length
	}
	return op.Store.GetObject(ctx, bucket, key, off, end, yield)
}

// DeleteObjOp removes an object from the store and forgets its cached
// handle, matching RGWDeleteObjRequest.
type DeleteObjOp struct {
	Mount *fhcache.Mount
	Store objstore.Store
}

func (op *DeleteObjOp) Exec(ctx context.Context, bucket, key string, handleKey fhcache.HandleKey) error {
	if err := op.Store.DeleteObject(ctx, bucket, key); err != nil {
		if err == objstore.ErrNotFound {
			return fhcache.ErrNotFound
		}
		return fhcache.ErrBackend
	}
	op.Mount.Forget(handleKey)
	return nil
}

// StatObjOp reports an object's bucket, key and size, matching
// RGWStatObjRequest. Neither bundled Store fills in ETag.
type StatObjOp struct {
	Store objstore.Store
}

func (op *StatObjOp) Exec(ctx context.Context, bucket, key string) (objstore.ObjectInfo, error) {
	info, err := op.Store.StatObject(ctx, bucket, key)
	if err != nil {
		if err == objstore.ErrNotFound {
			return objstore.ObjectInfo{}, fhcache.ErrNotFound
		}
		return objstore.ObjectInfo{}, fhcache.ErrBackend
	}
	return info, nil
}
