// Package store provides data access layer interfaces and implementations.
// It keeps GORM queries out of the HTTP handlers and the generation pipeline.
package store

import "gorm.io/gorm"

// Store aggregates all data store interfaces.
type Store interface {
	Generation() GenerationStore

	// DB returns the underlying database connection for advanced operations.
	DB() *gorm.DB

	// Transaction executes operations within a database transaction.
	Transaction(fn func(Store) error) error
}

// gormStore implements Store interface using GORM.
type gormStore struct {
	db              *gorm.DB
	generationStore GenerationStore
}

// NewStore creates a new Store instance with GORM backend.
func NewStore(db *gorm.DB) Store {
	return &gormStore{
		db:              db,
		generationStore: newGenerationStore(db),
	}
}

func (s *gormStore) Generation() GenerationStore {
	return s.generationStore
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) Transaction(fn func(Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
