package repository

import (
	"context"

	"github.com/yukikurage/task-manager-api/internal/models"
	"github.com/yukikurage/task-manager-api/internal/utils"
)

// Store groups the repositories that share one database handle. Inside
// Transaction every repository obtained from the callback's Store runs on
// the same transaction.
type Store interface {
	Users() UserRepository
	Tasks() TaskRepository

	// Transaction runs fn in a transaction, committing when fn returns nil
	// and rolling back otherwise.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

// UserRepository defines the interface for user data access.
// Soft-deleted users are invisible to every method.
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// UsernameTaken reports whether another user already uses username
	UsernameTaken(ctx context.Context, username string, excludeID uint64) (bool, error)

	// EmailTaken reports whether another user already uses email
	EmailTaken(ctx context.Context, email string, excludeID uint64) (bool, error)

	// Update updates a user
	Update(ctx context.Context, user *models.User) error

	// SoftDelete marks a user as deleted
	SoftDelete(ctx context.Context, id uint64) error

	// List retrieves users with search and pagination
	List(ctx context.Context, filter UserFilter) ([]models.User, int64, error)

	// Count counts users
	Count(ctx context.Context) (int64, error)
}

// UserFilter holds filtering options for listing users
type UserFilter struct {
	Search     utils.SearchTerm
	Role       *models.Role
	Pagination utils.PaginationParams
}

// TaskRepository defines the interface for task data access.
// Soft-deleted tasks are invisible to every method.
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID with its owner loaded
	FindByID(ctx context.Context, id uint64) (*models.Task, error)

	// FindOwned finds a task by ID that belongs to ownerID
	FindOwned(ctx context.Context, id, ownerID uint64) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task
	Update(ctx context.Context, task *models.Task) error

	// SoftDelete stamps updated_by and marks the task as deleted
	SoftDelete(ctx context.Context, id, actorID uint64) error

	// CountByOwner counts tasks owned by ownerID
	CountByOwner(ctx context.Context, ownerID uint64) (int64, error)

	// Count counts tasks
	Count(ctx context.Context) (int64, error)

	// CountByStatus counts tasks grouped by status
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	OwnerID  *uint64
	Status   *string
	Priority *models.TaskPriority
	Search   utils.SearchTerm
	// SearchOwner extends the text search to the owner's username and email.
	SearchOwner bool
	// NewestFirst orders by creation time descending instead of by id.
	NewestFirst bool
	Pagination  utils.PaginationParams
}
