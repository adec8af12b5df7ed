package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/yukikurage/task-manager-api/internal/constants"
	"github.com/yukikurage/task-manager-api/internal/models"
	"github.com/yukikurage/task-manager-api/internal/repository"
	"gorm.io/gorm"
)

var validate = validator.New()

func normalizeUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	n := utf8.RuneCountInString(username)
	if n < constants.MinUsernameLength || n > constants.MaxUsernameLength {
		return "", ErrInvalidUsername
	}
	return username, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if err := validate.Var(email, "required,email"); err != nil {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func hashPassword(hasher PasswordHasher, password string) (string, error) {
	if utf8.RuneCountInString(password) < constants.MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	hash, err := hasher.Hash(password)
	if err != nil {
		return "", ErrFailedToHash
	}
	return hash, nil
}

// accountChanges carries the already-validated identity fields to write.
// Nil fields are left untouched.
type accountChanges struct {
	Username     *string
	Email        *string
	PasswordHash *string
}

// applyAccountChanges checks uniqueness against other active users and
// writes the changes onto user.
func applyAccountChanges(ctx context.Context, users repository.UserRepository, user *models.User, changes accountChanges) error {
	if changes.Username != nil && *changes.Username != user.Username {
		taken, err := users.UsernameTaken(ctx, *changes.Username, user.ID)
		if err != nil {
			return fmt.Errorf("failed to check username: %w", err)
		}
		if taken {
			return ErrUsernameTaken
		}
		user.Username = *changes.Username
	}

	if changes.Email != nil && *changes.Email != user.Email {
		taken, err := users.EmailTaken(ctx, *changes.Email, user.ID)
		if err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if taken {
			return ErrEmailTaken
		}
		user.Email = *changes.Email
	}

	if changes.PasswordHash != nil {
		user.PasswordHash = *changes.PasswordHash
	}
	return nil
}

// resolveDuplicate turns a unique-constraint violation that slipped past the
// pre-checks into the same error the pre-checks would have produced. It runs
// after the failed transaction has rolled back.
func resolveDuplicate(ctx context.Context, users repository.UserRepository, err error, username, email string, excludeID uint64) error {
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}

	if username != "" {
		if taken, lookupErr := users.UsernameTaken(ctx, username, excludeID); lookupErr == nil && taken {
			return ErrUsernameTaken
		}
	}
	if email != "" {
		if taken, lookupErr := users.EmailTaken(ctx, email, excludeID); lookupErr == nil && taken {
			return ErrEmailTaken
		}
	}
	return ErrDuplicateAccount
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
