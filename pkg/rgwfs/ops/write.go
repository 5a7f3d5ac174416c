package ops

import (
	"context"

	"github.com/cohortfs/rgwfs/pkg/fhcache"
	"github.com/cohortfs/rgwfs/pkg/objstore"
)

// WriteOp is the streaming write continuation for a FileHandle, matching
// RGWWriteRequest / rgw_file.h's write_req: callers make repeated PutData
// calls at increasing offsets, then a single Finish commits the whole
// object to the store and clears the handle's write state. The handle's
// own WriteState tracks offsets and a running MD5 for stat/integrity
// purposes; the bytes themselves are relayed straight through to the
// store's own chunked-put sequence rather than buffered twice.
type WriteOp struct {
	Store objstore.Store
	FH    *fhcache.FileHandle

	bucket string
	key    string
	putID  string
}

// Open starts the write continuation, failing if one is already open.
func (op *WriteOp) Open(ctx context.Context, bucket, key string) error {
	if _, err := op.FH.OpenWrite(); err != nil {
		return err
	}
	id, err := op.Store.BeginPut(ctx, bucket, key)
	if err != nil {
		op.FH.CloseWrite()
		return err
	}
	op.bucket, op.key, op.putID = bucket, key, id
	return nil
}

// PutData appends bytes at off to the handle's active write, matching
// put_data's monotone-offset contract.
func (op *WriteOp) PutData(ctx context.Context, off uint64, data []byte) error {
	w := op.FH.ActiveWrite()
	if w == nil {
		return fhcache.ErrInvalidArgument
	}
	if err := w.PutData(off, data); err != nil {
		return err
	}
	return op.Store.PutChunk(ctx, op.putID, int64(off), data)
}

// Finish commits the accumulated bytes and clears the handle's write
// continuation, matching write_finish()'s call into
// RGWPutObjRequest::exec_finish.
func (op *WriteOp) Finish(ctx context.Context) (objstore.ObjectInfo, error) {
	w := op.FH.ActiveWrite()
	if w == nil {
		return objstore.ObjectInfo{}, fhcache.ErrInvalidArgument
	}
	defer op.FH.CloseWrite()

	// The running digest is computed here but neither passed to the Store
	// nor verified against the committed object.
	_ = w.MD5()

	info, err := op.Store.FinishPut(ctx, op.putID)
	if err != nil {
		_ = op.Store.AbortPut(ctx, op.putID)
		return objstore.ObjectInfo{}, err
	}
	return info, nil
}
