package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hpungsan/jetstorage/internal/config"
	_ "modernc.org/sqlite"
)

// FileName is the database file created inside the base directory.
const FileName = "jetstorage.db"

// pragmas apply to every pooled connection.
const pragmas = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// migrations[i] moves the schema from user_version i to i+1.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY,
		value      BLOB NOT NULL,
		version    INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	// Deleted keys keep their row so versions never repeat.
	`ALTER TABLE kv ADD COLUMN deleted INTEGER NOT NULL DEFAULT 0`,
}

// CurrentSchemaVersion is the user_version after all migrations.
var CurrentSchemaVersion = len(migrations)

// Init opens baseDir/jetstorage.db, creating the directory (0700) and
// file (0600) as needed, and brings the schema up to date.
func Init(baseDir string) (*sql.DB, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create %s: %w", baseDir, err)
	}
	_ = os.Chmod(baseDir, 0700)

	path := filepath.Join(baseDir, FileName)
	db, err := sql.Open("sqlite", path+pragmas)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := prepare(db); err != nil {
		db.Close()
		return nil, err
	}
	_ = os.Chmod(path, 0600)
	return db, nil
}

func prepare(db *sql.DB) error {
	var mode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		return fmt.Errorf("read journal_mode: %w", err)
	}
	if mode != "wal" {
		return fmt.Errorf("journal_mode is %s, want wal", mode)
	}
	return migrate(db)
}

// ConfigurePool applies the non-zero pool limits from cfg.
func ConfigurePool(db *sql.DB, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
}

func migrate(db *sql.DB) error {
	from, err := GetUserVersion(db)
	if err != nil {
		return err
	}
	for v := from; v < len(migrations); v++ {
		if _, err := db.Exec(migrations[v]); err != nil {
			return fmt.Errorf("migration %d: %w", v+1, err)
		}
		if err := SetUserVersion(db, v+1); err != nil {
			return err
		}
	}
	return nil
}

// GetUserVersion returns the schema version stored in user_version.
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("read user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion records the schema version in user_version.
func SetUserVersion(db *sql.DB, version int) error {
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}
