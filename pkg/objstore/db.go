package objstore

import (
	"fmt"
	"time"

	"github.com/apex/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const maxDBRetries = 5

// MustConnectToDB opens driver/dsn, retrying with a growing backoff before
// giving up, matching the teacher's connection bootstrap for its own
// gorm-backed stores. driver is "sqlite" or "mysql"; anything else is a
// configuration error the caller should have caught earlier.
func MustConnectToDB(driver, dsn string) *gorm.DB {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		log.Fatalf("objstore: unknown db driver %q", driver)
	}

	var db *gorm.DB
	var err error
	for attempt := 1; attempt <= maxDBRetries; attempt++ {
		db, err = gorm.Open(dialector, &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err == nil {
			break
		}
		log.Warnf("objstore: db connect attempt %d/%d failed: %s", attempt, maxDBRetries, err)
		time.Sleep(time.Duration(attempt) * 500 * time.Millisecond)
	}
	if err != nil {
		log.Fatalf("objstore: could not connect to %s db after %d attempts: %s", driver, maxDBRetries, err)
	}

	if err := db.AutoMigrate(&bucketRow{}, &blobRow{}); err != nil {
		log.Fatalf("objstore: automigrate failed: %s", err)
	}

	return db
}

// MakeSQLiteDSN builds a file-backed sqlite DSN from a plain path, matching
// the teacher's MakeDSNFromEnv convenience for its mysql equivalent.
func MakeSQLiteDSN(path string) string {
	if path == "" {
		path = "rgwfs.db"
	}
	return fmt.Sprintf("%s?_pragma=busy_timeout(5000)", path)
}
