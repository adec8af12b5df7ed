package services

import (
	"context"
	"fmt"

	"github.com/yukikurage/task-manager-api/internal/models"
	"github.com/yukikurage/task-manager-api/internal/policy"
	"github.com/yukikurage/task-manager-api/internal/repository"
	"github.com/yukikurage/task-manager-api/internal/utils"
)

// UserService implements the administrator user-management operations.
// Every method re-checks that actor is an administrator.
type UserService struct {
	store  repository.Store
	hasher PasswordHasher
}

// NewUserService creates a new UserService.
func NewUserService(store repository.Store, hasher PasswordHasher) *UserService {
	return &UserService{
		store:  store,
		hasher: hasher,
	}
}

// ListUsersInput represents filters for listing users.
type ListUsersInput struct {
	Search     utils.SearchTerm
	Role       *string
	Pagination utils.PaginationParams
}

// List returns a page of active users ordered by id.
func (s *UserService) List(ctx context.Context, actor *models.User, input ListUsersInput) ([]models.User, int64, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, 0, err
	}

	filter := repository.UserFilter{
		Search:     input.Search,
		Pagination: input.Pagination,
	}
	if input.Role != nil {
		role, err := policy.ValidateRole(*input.Role)
		if err != nil {
			return nil, 0, err
		}
		filter.Role = &role
	}

	var (
		users []models.User
		total int64
	)
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		users, total, err = tx.Users().List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// Get returns one active user.
func (s *UserService) Get(ctx context.Context, actor *models.User, id uint64) (*models.User, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	user, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// CreateUserInput represents input for creating a user.
type CreateUserInput struct {
	Username string
	Email    string
	Password string
	// Role defaults to user when empty.
	Role string
}

// Create adds a new user after checking that username and email are free
// among active users.
func (s *UserService) Create(ctx context.Context, actor *models.User, input CreateUserInput) (*models.User, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	username, err := normalizeUsername(input.Username)
	if err != nil {
		return nil, err
	}
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}

	role := models.RoleUser
	if input.Role != "" {
		if role, err = policy.ValidateRole(input.Role); err != nil {
			return nil, err
		}
	}

	hash, err := hashPassword(s.hasher, input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := ensureAccountAvailable(ctx, tx.Users(), username, email, 0); err != nil {
			return err
		}
		if err := tx.Users().Create(ctx, user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, resolveDuplicate(ctx, s.store.Users(), err, username, email, 0)
	}
	return user, nil
}

// UpdateUserInput holds an administrator edit of a user. Fields lists every
// key present in the request body.
type UpdateUserInput struct {
	Fields   []string
	Username *string
	Email    *string
	Password *string
	Role     *string
}

// Update modifies a user. An administrator cannot drop their own admin role,
// and a user who still owns tasks cannot be promoted.
func (s *UserService) Update(ctx context.Context, actor *models.User, id uint64, input UpdateUserInput) (*models.User, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if err := policy.CheckUserUpdateFields(input.Fields); err != nil {
		return nil, err
	}

	var role *models.Role
	if hasField(input.Fields, policy.FieldRole) {
		if input.Role == nil {
			return nil, policy.ErrInvalidRole
		}
		parsed, err := policy.ValidateRole(*input.Role)
		if err != nil {
			return nil, err
		}
		role = &parsed
	}

	changes, err := buildAccountChanges(s.hasher, input.Fields, input.Username, input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	var updated *models.User
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		target, err := tx.Users().FindByID(ctx, id)
		if err != nil {
			if isNotFound(err) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to find user: %w", err)
		}

		if role != nil {
			owned, err := tx.Tasks().CountByOwner(ctx, target.ID)
			if err != nil {
				return fmt.Errorf("failed to count owned tasks: %w", err)
			}
			if err := policy.CheckRoleChange(actor, target, *role, owned); err != nil {
				return err
			}
			target.Role = *role
		}

		if err := applyAccountChanges(ctx, tx.Users(), target, changes); err != nil {
			return err
		}
		if err := tx.Users().Update(ctx, target); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		updated = target
		return nil
	})
	if err != nil {
		return nil, resolveDuplicate(ctx, s.store.Users(), err, deref(changes.Username), deref(changes.Email), id)
	}
	return updated, nil
}

// Delete soft-deletes a user. Their tasks are left in place.
func (s *UserService) Delete(ctx context.Context, actor *models.User, id uint64) error {
	if err := policy.RequireAdmin(actor); err != nil {
		return err
	}
	if err := policy.CheckUserDeletion(actor, id); err != nil {
		return err
	}

	return s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Users().SoftDelete(ctx, id); err != nil {
			if isNotFound(err) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
}

func ensureAccountAvailable(ctx context.Context, users repository.UserRepository, username, email string, excludeID uint64) error {
	taken, err := users.UsernameTaken(ctx, username, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return ErrUsernameTaken
	}

	taken, err = users.EmailTaken(ctx, email, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return ErrEmailTaken
	}
	return nil
}
