// Package objstore defines the storage contract the namespace layer reads
// and writes bucket and object bytes through (C7's concrete collaborator),
// plus two implementations: an in-memory store for tests and a gorm-backed
// store for a runnable daemon.
package objstore

import "context"

// ObjectInfo is the metadata StatObject and FinishPut report: the object's
// bucket, key, size and an ETag slot. No modification time is carried.
type ObjectInfo struct {
	Bucket string
	Key    string
	Size   int64
	ETag   string
}

// Store is the object-store contract: (bucket, key) addressed blobs, with
// bucket-level create/delete and a marker-based listing, matching the
// external C7 boundary spec.md leaves unspecified beyond its method shapes.
type Store interface {
	CreateBucket(ctx context.Context, bucket string) error
	DeleteBucket(ctx context.Context, bucket string) error

	// PutChunk appends bytes at a monotonically increasing offset within an
	// in-progress put, and FinishPut commits it under key. Both calls share
	// putID, an opaque token BeginPut returns to start the sequence.
	BeginPut(ctx context.Context, bucket, key string) (putID string, err error)
	PutChunk(ctx context.Context, putID string, offset int64, data []byte) error
	FinishPut(ctx context.Context, putID string) (ObjectInfo, error)
	AbortPut(ctx context.Context, putID string) error

	// GetObject streams data in the half-open byte range [start, end) to
	// yield, in order, stopping early if yield returns an error.
	GetObject(ctx context.Context, bucket, key string, start, end int64, yield func(data []byte) error) error

	DeleteObject(ctx context.Context, bucket, key string) error
	StatObject(ctx context.Context, bucket, key string) (ObjectInfo, error)

	// ListBucket calls yield once per key in ascending order starting
	// after marker (empty marker means from the beginning), stopping early
	// if yield returns false. Matches the original's (name, marker)
	// pagination contract.
	ListBucket(ctx context.Context, bucket, marker string, limit int, yield func(key string) bool) error

	// PutObject is a non-streaming convenience wrapper over
	// BeginPut/PutChunk/FinishPut for callers with the full payload
	// already in memory, such as the session map's persistence path.
	PutObject(ctx context.Context, bucket, key string, data []byte) error
	// GetObjectAll reads the full object into memory, for the same
	// small-payload callers PutObject serves.
	GetObjectAll(ctx context.Context, bucket, key string) ([]byte, error)
}
