package objstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cohortfs/rgwfs/pkg/lock"
	"github.com/hashicorp/go-uuid"
	"gorm.io/gorm"
)

// GormStore persists buckets and blobs through gorm, using sqlite by
// default and mysql when configured, both already in the teacher's
// dependency set. Concurrent FinishPut calls on the same (bucket, key) are
// serialized through a KeyLocker so two writers finishing the same key
// can't interleave their chunk assembly and row write.
type GormStore struct {
	db *gorm.DB

	keyLock *lock.KeyLocker[string]

	mu      sync.Mutex
	pending map[string]*pendingPut
}

// NewGormStore wraps an already-migrated *gorm.DB, typically constructed
// via MustConnectToDB.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db:      db,
		keyLock: lock.NewKeyLocker[string](),
		pending: make(map[string]*pendingPut),
	}
}

func (s *GormStore) CreateBucket(_ context.Context, bucket string) error {
	var existing bucketRow
	err := s.db.First(&existing, "name = ?", bucket).Error
	if err == nil {
		return ErrAlreadyExists
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	return s.db.Create(&bucketRow{Name: bucket, CreatedAt: time.Now()}).Error
}

func (s *GormStore) DeleteBucket(_ context.Context, bucket string) error {
	res := s.db.Delete(&bucketRow{}, "name = ?", bucket)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.db.Delete(&blobRow{}, "bucket = ?", bucket)
	return nil
}

func (s *GormStore) BeginPut(_ context.Context, bucket, key string) (string, error) {
	id, err := uuid.GenerateUUID()
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.pending[id] = &pendingPut{bucket: bucket, key: key, chunks: make(map[int64][]byte)}
	s.mu.Unlock()
	return id, nil
}

func (s *GormStore) PutChunk(_ context.Context, putID string, offset int64, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[putID]
	if !ok {
		return ErrNotFound
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	p.chunks[offset] = buf
	return nil
}

func (s *GormStore) FinishPut(_ context.Context, putID string) (ObjectInfo, error) {
	s.mu.Lock()
	p, ok := s.pending[putID]
	s.mu.Unlock()
	if !ok {
		return ObjectInfo{}, ErrNotFound
	}

	var info ObjectInfo
	err := s.keyLock.WithLock(p.bucket+"/"+p.key, func() error {
		s.mu.Lock()
		delete(s.pending, putID)
		s.mu.Unlock()

		offsets := make([]int64, 0, len(p.chunks))
		for off := range p.chunks {
			offsets = append(offsets, off)
		}
		sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })

		var data []byte
		for _, off := range offsets {
			data = append(data, p.chunks[off]...)
		}

		row := blobRow{Bucket: p.bucket, Key: p.key, Data: data, Size: int64(len(data)), UpdatedAt: time.Now()}
		if err := s.db.Save(&row).Error; err != nil {
			return err
		}
		info = ObjectInfo{Bucket: p.bucket, Key: p.key, Size: row.Size}
		return nil
	})
	return info, err
}

func (s *GormStore) AbortPut(_ context.Context, putID string) error {
	s.mu.Lock()
	delete(s.pending, putID)
	s.mu.Unlock()
	return nil
}

func (s *GormStore) GetObject(_ context.Context, bucket, key string, start, end int64, yield func([]byte) error) error {
	var row blobRow
	if err := s.db.First(&row, "bucket = ? AND key = ?", bucket, key).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrNotFound
		}
		return err
	}

	data := row.Data
	if end <= 0 || end > int64(len(data)) {
		end = int64(len(data))
	}
	if start < 0 {
		start = 0
	}
	if start >= end {
		return nil
	}
	return yield(data[start:end])
}

func (s *GormStore) DeleteObject(_ context.Context, bucket, key string) error {
	res := s.db.Delete(&blobRow{}, "bucket = ? AND key = ?", bucket, key)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) StatObject(_ context.Context, bucket, key string) (ObjectInfo, error) {
	var row blobRow
	err := s.db.Select("bucket", "key", "size").First(&row, "bucket = ? AND key = ?", bucket, key).Error
	if err == gorm.ErrRecordNotFound {
		return ObjectInfo{}, ErrNotFound
	}
	if err != nil {
		return ObjectInfo{}, err
	}
	return ObjectInfo{Bucket: row.Bucket, Key: row.Key, Size: row.Size}, nil
}

func (s *GormStore) ListBucket(_ context.Context, bucket, marker string, limit int, yield func(string) bool) error {
	q := s.db.Model(&blobRow{}).Where("bucket = ? AND key > ?", bucket, marker).Order("key asc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []blobRow
	if err := q.Select("key").Find(&rows).Error; err != nil {
		return err
	}
	for _, r := range rows {
		if !yield(r.Key) {
			break
		}
	}
	return nil
}

func (s *GormStore) PutObject(ctx context.Context, bucket, key string, data []byte) error {
	id, err := s.BeginPut(ctx, bucket, key)
	if err != nil {
		return err
	}
	if len(data) > 0 {
		if err := s.PutChunk(ctx, id, 0, data); err != nil {
			return err
		}
	}
	_, err = s.FinishPut(ctx, id)
	return err
}

func (s *GormStore) GetObjectAll(ctx context.Context, bucket, key string) ([]byte, error) {
	var out []byte
	err := s.GetObject(ctx, bucket, key, 0, -1, func(data []byte) error {
		out = append(out, data...)
		return nil
	})
	return out, err
}
