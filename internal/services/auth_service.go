package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/yukikurage/task-manager-api/internal/metrics"
	"github.com/yukikurage/task-manager-api/internal/models"
	"github.com/yukikurage/task-manager-api/internal/policy"
	"github.com/yukikurage/task-manager-api/internal/repository"
)

// AuthService handles login, caller resolution and self-service profile edits.
type AuthService struct {
	store  repository.Store
	hasher PasswordHasher
	tokens TokenIssuer

	decoyOnce sync.Once
	decoyHash string
}

// NewAuthService creates a new AuthService.
func NewAuthService(store repository.Store, hasher PasswordHasher, tokens TokenIssuer) *AuthService {
	return &AuthService{
		store:  store,
		hasher: hasher,
		tokens: tokens,
	}
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string
	Password string
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	AccessToken string
	User        *models.User
}

// Login verifies credentials and issues an access token. Unknown users,
// deleted users and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.store.Users().FindByUsername(ctx, input.Username)
	if err != nil {
		if isNotFound(err) {
			// Pay the same hashing cost as a wrong password.
			s.hasher.Verify(input.Password, s.decoy())
			metrics.LoginAttemptsTotal.WithLabelValues(metrics.LoginFailure).Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.LoginFailure).Inc()
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(strconv.FormatUint(user.ID, 10))
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	metrics.LoginAttemptsTotal.WithLabelValues(metrics.LoginSuccess).Inc()
	return &LoginResult{AccessToken: token, User: user}, nil
}

// decoy returns a hash of a throwaway password made with the configured cost.
func (s *AuthService) decoy() string {
	s.decoyOnce.Do(func() {
		if hash, err := s.hasher.Hash("decoy-password-never-issued"); err == nil {
			s.decoyHash = hash
		}
	})
	return s.decoyHash
}

// ResolveCaller maps a bearer token to the active user it was issued for.
// Tampered, expired or malformed tokens and tokens of deleted users all
// yield ErrUnauthorized.
func (s *AuthService) ResolveCaller(ctx context.Context, token string) (*models.User, error) {
	subject, err := s.tokens.Validate(token)
	if err != nil {
		return nil, ErrUnauthorized
	}

	id, err := strconv.ParseUint(subject, 10, 64)
	if err != nil || id == 0 {
		return nil, ErrUnauthorized
	}

	user, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to resolve caller: %w", err)
	}
	return user, nil
}

// RequireAdmin resolves the caller and additionally requires the admin role.
func (s *AuthService) RequireAdmin(ctx context.Context, token string) (*models.User, error) {
	user, err := s.ResolveCaller(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireAdmin(user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfileInput holds a self-service profile edit. Fields lists every
// key present in the request body, including ones with null values.
type UpdateProfileInput struct {
	Fields   []string
	Username *string
	Email    *string
	Password *string
}

// UpdateProfile lets any caller change their own username, email or password.
func (s *AuthService) UpdateProfile(ctx context.Context, caller *models.User, input UpdateProfileInput) (*models.User, error) {
	if err := policy.CheckProfileUpdateFields(input.Fields); err != nil {
		return nil, err
	}

	changes, err := buildAccountChanges(s.hasher, input.Fields, input.Username, input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	var updated *models.User
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		user, err := tx.Users().FindByID(ctx, caller.ID)
		if err != nil {
			if isNotFound(err) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to find user: %w", err)
		}

		if err := applyAccountChanges(ctx, tx.Users(), user, changes); err != nil {
			return err
		}
		if err := tx.Users().Update(ctx, user); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, resolveDuplicate(ctx, s.store.Users(), err, deref(changes.Username), deref(changes.Email), caller.ID)
	}
	return updated, nil
}

// buildAccountChanges validates the identity fields present in a payload.
// A null username or email is rejected; a null password leaves it unchanged.
func buildAccountChanges(hasher PasswordHasher, fields []string, username, email, password *string) (accountChanges, error) {
	var changes accountChanges

	if hasField(fields, policy.FieldUsername) {
		if username == nil {
			return changes, ErrInvalidUsername
		}
		normalized, err := normalizeUsername(*username)
		if err != nil {
			return changes, err
		}
		changes.Username = &normalized
	}

	if hasField(fields, policy.FieldEmail) {
		if email == nil {
			return changes, ErrInvalidEmail
		}
		normalized, err := normalizeEmail(*email)
		if err != nil {
			return changes, err
		}
		changes.Email = &normalized
	}

	if password != nil {
		hash, err := hashPassword(hasher, *password)
		if err != nil {
			return changes, err
		}
		changes.PasswordHash = &hash
	}

	return changes, nil
}

func hasField(fields []string, name string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
