package repository

import (
	"context"
	"errors"

	"github.com/yukikurage/taskboard-api/internal/models"
)

var (
	// ErrNotFound is returned when no record matches the lookup.
	ErrNotFound = errors.New("repository: record not found")
	// ErrDuplicateKey is returned when a unique constraint is violated.
	ErrDuplicateKey = errors.New("repository: duplicate key")
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID regardless of owner
	FindByID(ctx context.Context, id string) (*models.Task, error)

	// List retrieves the owner's tasks matching the query, plus the total match count
	List(ctx context.Context, query TaskQuery) ([]models.Task, int64, error)

	// Update persists all mutable fields of a task
	Update(ctx context.Context, task *models.Task) error

	// Delete permanently removes a task
	Delete(ctx context.Context, id string) error

	// CountByField groups the owner's tasks by the given field
	CountByField(ctx context.Context, ownerID string, field TaskGroupField) (map[string]int64, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindByEmail finds a user by normalized email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// Update persists all mutable fields of a user
	Update(ctx context.Context, user *models.User) error
}
