package db

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/mattn/go-isatty"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Snapshot reads run concurrently with log writes, so the journal is WAL and
// writers wait on the busy timeout instead of failing.
var sqlitePragmas = []string{
	"foreign_keys(1)",
	"busy_timeout(5000)",
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
}

// OpenSQLite opens (creating if needed) the database file and brings its
// schema up to date.
func OpenSQLite(dbPath string) (*gorm.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	database, err := gorm.Open(sqlite.Open(sqliteDSN(dbPath)), &gorm.Config{
		Logger: newQueryLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	if err := applyMigrations(database); err != nil {
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return database, nil
}

func sqliteDSN(dbPath string) string {
	query := url.Values{}
	for _, pragma := range sqlitePragmas {
		query.Add("_pragma", pragma)
	}
	return dbPath + "?" + query.Encode()
}

// Slow queries and real errors only; not-found lookups are normal control flow.
func newQueryLogger() gormlogger.Interface {
	return gormlogger.New(
		log.New(os.Stderr, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  isatty.IsTerminal(os.Stderr.Fd()),
		},
	)
}
