package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/task-manager-api/internal/models"
	"github.com/yukikurage/task-manager-api/internal/policy"
	"github.com/yukikurage/task-manager-api/internal/repository"
	"github.com/yukikurage/task-manager-api/internal/testutil"
	"github.com/yukikurage/task-manager-api/internal/utils"
)

type UserServiceTestSuite struct {
	serviceSuite
}

func (s *UserServiceTestSuite) TestCreateDefaultsToUserRole() {
	user, err := s.users.Create(s.ctx, s.admin, CreateUserInput{
		Username: "bob",
		Email:    "bob@x.com",
		Password: "password123",
	})
	s.Require().NoError(err)
	s.Equal(models.RoleUser, user.Role)
	s.NotEqual("password123", user.PasswordHash)
}

func (s *UserServiceTestSuite) TestCreateDuplicateEmail() {
	_, err := s.users.Create(s.ctx, s.admin, CreateUserInput{
		Username: "bob",
		Email:    "a@x.com",
		Password: "password123",
	})
	s.ErrorIs(err, ErrEmailTaken)
	s.Equal("email already exists", err.Error())
}

func (s *UserServiceTestSuite) TestCreateValidation() {
	cases := []struct {
		name  string
		input CreateUserInput
		want  error
	}{
		{"short username", CreateUserInput{Username: "ab", Email: "b@x.com", Password: "password123"}, ErrInvalidUsername},
		{"bad email", CreateUserInput{Username: "bob", Email: "nope", Password: "password123"}, ErrInvalidEmail},
		{"short password", CreateUserInput{Username: "bob", Email: "b@x.com", Password: "short"}, ErrPasswordTooShort},
		{"bad role", CreateUserInput{Username: "bob", Email: "b@x.com", Password: "password123", Role: "root"}, policy.ErrInvalidRole},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := s.users.Create(s.ctx, s.admin, tc.input)
			s.ErrorIs(err, tc.want)
		})
	}
}

func (s *UserServiceTestSuite) TestNonAdminIsRejected() {
	_, err := s.users.Create(s.ctx, s.alice, CreateUserInput{Username: "bob", Email: "b@x.com", Password: "password123"})
	s.ErrorIs(err, policy.ErrAdminRequired)

	_, _, err = s.users.List(s.ctx, s.alice, ListUsersInput{Pagination: s.page()})
	s.ErrorIs(err, policy.ErrAdminRequired)
}

func (s *UserServiceTestSuite) TestAdminCannotDeleteSelf() {
	err := s.users.Delete(s.ctx, s.admin, s.admin.ID)
	s.ErrorIs(err, policy.ErrCannotDeleteSelf)
}

func (s *UserServiceTestSuite) TestDeleteMissingUser() {
	s.ErrorIs(s.users.Delete(s.ctx, s.admin, 9999), ErrUserNotFound)
}

func (s *UserServiceTestSuite) TestDeletedUserLeavesListButKeepsTasks() {
	task := testutil.CreateTask(s.T(), s.db, s.alice, "keep me", "pending")
	s.Require().NoError(s.users.Delete(s.ctx, s.admin, s.alice.ID))

	users, total, err := s.users.List(s.ctx, s.admin, ListUsersInput{Pagination: s.page()})
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Equal("admin", users[0].Username)

	tasks, total, err := s.tasks.Search(s.ctx, s.admin, SearchTasksInput{
		ListTasksInput: ListTasksInput{Pagination: s.page()},
		OwnerID:        &s.alice.ID,
	})
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Equal(task.ID, tasks[0].ID)

	_, err = s.users.Get(s.ctx, s.admin, s.alice.ID)
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *UserServiceTestSuite) TestAdminCannotDemoteSelf() {
	_, err := s.users.Update(s.ctx, s.admin, s.admin.ID, UpdateUserInput{
		Fields: []string{"role"},
		Role:   ptr("user"),
	})
	s.ErrorIs(err, policy.ErrCannotDemoteSelf)
}

func (s *UserServiceTestSuite) TestPromotingTaskOwnerIsRejected() {
	testutil.CreateTask(s.T(), s.db, s.alice, "mine", "pending")

	_, err := s.users.Update(s.ctx, s.admin, s.alice.ID, UpdateUserInput{
		Fields: []string{"role"},
		Role:   ptr("admin"),
	})
	s.ErrorIs(err, policy.ErrOwnerHasTasks)
}

func (s *UserServiceTestSuite) TestUpdateUser() {
	updated, err := s.users.Update(s.ctx, s.admin, s.alice.ID, UpdateUserInput{
		Fields: []string{"email", "role"},
		Email:  ptr("alice@new.com"),
		Role:   ptr("admin"),
	})
	s.Require().NoError(err)
	s.Equal("alice@new.com", updated.Email)
	s.Equal(models.RoleAdmin, updated.Role)

	_, err = s.users.Update(s.ctx, s.admin, s.alice.ID, UpdateUserInput{
		Fields:   []string{"username"},
		Username: ptr("admin"),
	})
	s.ErrorIs(err, ErrUsernameTaken)

	_, err = s.users.Update(s.ctx, s.admin, s.alice.ID, UpdateUserInput{
		Fields: []string{"nickname"},
	})
	var unknown *policy.UnknownFieldsError
	s.ErrorAs(err, &unknown)
}

func (s *UserServiceTestSuite) TestListSearchByRole() {
	users, total, err := s.users.List(s.ctx, s.admin, ListUsersInput{
		Search:     utils.ParseSearchTerm("A", true),
		Role:       ptr("user"),
		Pagination: s.page(),
	})
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Equal("alice", users[0].Username)
}

// A concurrent writer can take the username between the pre-check and the
// insert. The store below hides existing rows from checks made inside the
// transaction to reproduce that window.
func (s *UserServiceTestSuite) TestDuplicateRaceIsReportedAsTaken() {
	racy := NewUserService(racyStore{Store: s.store}, s.hasher)

	_, err := racy.Create(s.ctx, s.admin, CreateUserInput{
		Username: "alice",
		Email:    "fresh@x.com",
		Password: "password123",
	})
	s.ErrorIs(err, ErrUsernameTaken)

	_, err = racy.Create(s.ctx, s.admin, CreateUserInput{
		Username: "fresh",
		Email:    "a@x.com",
		Password: "password123",
	})
	s.ErrorIs(err, ErrEmailTaken)
}

type racyStore struct {
	repository.Store
}

func (r racyStore) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	return r.Store.Transaction(ctx, func(tx repository.Store) error {
		return fn(blindStore{Store: tx})
	})
}

type blindStore struct {
	repository.Store
}

func (b blindStore) Users() repository.UserRepository {
	return blindUsers{UserRepository: b.Store.Users()}
}

type blindUsers struct {
	repository.UserRepository
}

func (blindUsers) UsernameTaken(context.Context, string, uint64) (bool, error) { return false, nil }
func (blindUsers) EmailTaken(context.Context, string, uint64) (bool, error)    { return false, nil }

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
