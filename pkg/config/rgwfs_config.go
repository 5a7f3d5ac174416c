package config

import "github.com/apex/log"

// Environment variable names for the handle-cache and namespace-layer knobs
// enumerated in the design (partition/lane counts, eviction watermark, and
// the two adapter-level size thresholds).
const (
	EnvFHCachePartitions = "RGWFS_FHCACHE_PARTITIONS"
	EnvFHCacheSize       = "RGWFS_FHCACHE_SIZE"
	EnvLRULanes          = "RGWFS_LRU_LANES"
	EnvLRULaneHiwat      = "RGWFS_LRU_LANE_HIWAT"
	EnvMaxPutSize        = "RGWFS_MAX_PUT_SIZE"
	EnvObjStripeSize     = "RGWFS_OBJ_STRIPE_SIZE"

	EnvDBDriver = "RGWFS_DB_DRIVER"
	EnvDBDSN    = "RGWFS_DB_DSN"

	EnvMountPath = "RGWFS_MOUNT_DIR"
	EnvAdminAddr = "RGWFS_ADMIN_ADDR"
)

// Defaults mirror the orders of magnitude called out in the design notes:
// a handful of partitions/lanes is enough to spread latch contention across
// cores without fragmenting the cache into lanes too small to hold a
// working set.
const (
	DefaultFHCachePartitions = 16
	DefaultFHCacheSize       = 32768
	DefaultLRULanes          = 8
	DefaultLRULaneHiwat      = 1024
	DefaultMaxPutSize        = 16 << 20
	DefaultObjStripeSize     = 4 << 20
)

// RGWFSConfig is the resolved set of handle-cache and adapter knobs, loaded
// once at daemon startup from a Configer.
type RGWFSConfig struct {
	FHCachePartitions int
	FHCacheSize       int
	LRULanes          int
	LRULaneHiwat      int
	MaxPutSize        int64
	ObjStripeSize     int64

	DBDriver string
	DBDSN    string

	MountPath string
	AdminAddr string
}

// MustLoadRGWFSConfig loads the daemon configuration from the global
// Configer. Every key falls back to its default except the mount path, which
// is left empty when unset; values are not otherwise validated and this
// function never fails.
func MustLoadRGWFSConfig() *RGWFSConfig {
	c := GetConfig()
	if err := c.Load(); err != nil {
		log.Debugf("config: no .env loaded, relying on process environment: %s", err)
	}

	return &RGWFSConfig{
		FHCachePartitions: c.GetIntKeyWithDefault(EnvFHCachePartitions, DefaultFHCachePartitions),
		FHCacheSize:       c.GetIntKeyWithDefault(EnvFHCacheSize, DefaultFHCacheSize),
		LRULanes:          c.GetIntKeyWithDefault(EnvLRULanes, DefaultLRULanes),
		LRULaneHiwat:      c.GetIntKeyWithDefault(EnvLRULaneHiwat, DefaultLRULaneHiwat),
		MaxPutSize:        int64(c.GetIntKeyWithDefault(EnvMaxPutSize, DefaultMaxPutSize)),
		ObjStripeSize:     int64(c.GetIntKeyWithDefault(EnvObjStripeSize, DefaultObjStripeSize)),

		DBDriver: c.GetKeyWithDefault(EnvDBDriver, "sqlite"),
		DBDSN:    c.GetKeyWithDefault(EnvDBDSN, "rgwfs.db"),

		MountPath: c.GetKey(EnvMountPath),
		AdminAddr: c.GetKeyWithDefault(EnvAdminAddr, "localhost:1350"),
	}
}
