package database

import "gorm.io/gorm"

// Driver defines the database driver interface. Only SQLite is implemented.
type Driver interface {
	// Name returns the driver name (e.g., "sqlite")
	Name() string

	// Open opens a database connection and returns a GORM dialector
	Open(dsn string) (gorm.Dialector, error)

	// PreMigrationConfig applies connection pool and journal settings.
	// Foreign key constraints must not be enabled here.
	PreMigrationConfig(db *gorm.DB) error

	// PostMigrationConfig applies settings that need the migrated schema
	PostMigrationConfig(db *gorm.DB) error
}
