package repository

import (
	"context"

	"gorm.io/gorm"
)

// GormStore is a GORM implementation of Store
type GormStore struct {
	db *gorm.DB
}

// NewStore creates a new Store
func NewStore(db *gorm.DB) Store {
	return &GormStore{db: db}
}

// Users returns the user repository bound to this store's handle
func (s *GormStore) Users() UserRepository {
	return NewUserRepository(s.db)
}

// Tasks returns the task repository bound to this store's handle
func (s *GormStore) Tasks() TaskRepository {
	return NewTaskRepository(s.db)
}

// Transaction runs fn inside a database transaction
func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
