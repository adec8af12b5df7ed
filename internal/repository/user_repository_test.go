package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/task-manager-api/internal/models"
	"github.com/yukikurage/task-manager-api/internal/testutil"
	"github.com/yukikurage/task-manager-api/internal/utils"
	"gorm.io/gorm"
)

type UserRepositoryTestSuite struct {
	suite.Suite
	db   *gorm.DB
	repo UserRepository
	ctx  context.Context
}

func (suite *UserRepositoryTestSuite) SetupTest() {
	suite.db = testutil.NewDB(suite.T())
	suite.repo = NewUserRepository(suite.db)
	suite.ctx = context.Background()
}

func (suite *UserRepositoryTestSuite) page(page, limit int) utils.PaginationParams {
	params, err := utils.NewPaginationParams(page, limit)
	suite.Require().NoError(err)
	return params
}

func (suite *UserRepositoryTestSuite) TestSoftDeletedUserIsInvisible() {
	user := testutil.CreateUser(suite.T(), suite.db, "alice", "a@x.com", models.RoleUser)

	suite.Require().NoError(suite.repo.SoftDelete(suite.ctx, user.ID))

	_, err := suite.repo.FindByID(suite.ctx, user.ID)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)
	_, err = suite.repo.FindByUsername(suite.ctx, "alice")
	suite.ErrorIs(err, gorm.ErrRecordNotFound)

	count, err := suite.repo.Count(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(int64(0), count)

	var stored models.User
	suite.Require().NoError(suite.db.Unscoped().First(&stored, user.ID).Error)
	suite.True(stored.IsDeleted())
}

func (suite *UserRepositoryTestSuite) TestSoftDeleteMissingUser() {
	suite.ErrorIs(suite.repo.SoftDelete(suite.ctx, 999), gorm.ErrRecordNotFound)
}

func (suite *UserRepositoryTestSuite) TestUsernameReusableAfterDelete() {
	user := testutil.CreateUser(suite.T(), suite.db, "alice", "a@x.com", models.RoleUser)
	suite.Require().NoError(suite.repo.SoftDelete(suite.ctx, user.ID))

	taken, err := suite.repo.UsernameTaken(suite.ctx, "alice", 0)
	suite.Require().NoError(err)
	suite.False(taken)

	again := &models.User{Username: "alice", Email: "a@x.com", PasswordHash: "x", Role: models.RoleUser}
	suite.NoError(suite.repo.Create(suite.ctx, again))
}

func (suite *UserRepositoryTestSuite) TestDuplicateActiveUsernameIsTranslated() {
	testutil.CreateUser(suite.T(), suite.db, "alice", "a@x.com", models.RoleUser)

	dup := &models.User{Username: "alice", Email: "other@x.com", PasswordHash: "x", Role: models.RoleUser}
	suite.ErrorIs(suite.repo.Create(suite.ctx, dup), gorm.ErrDuplicatedKey)
}

func (suite *UserRepositoryTestSuite) TestTakenExcludesSelf() {
	user := testutil.CreateUser(suite.T(), suite.db, "alice", "a@x.com", models.RoleUser)

	taken, err := suite.repo.EmailTaken(suite.ctx, "a@x.com", user.ID)
	suite.Require().NoError(err)
	suite.False(taken)

	taken, err = suite.repo.EmailTaken(suite.ctx, "a@x.com", 0)
	suite.Require().NoError(err)
	suite.True(taken)
}

func (suite *UserRepositoryTestSuite) TestListSearchAndPagination() {
	testutil.CreateUser(suite.T(), suite.db, "alice", "alice@x.com", models.RoleUser)
	testutil.CreateUser(suite.T(), suite.db, "bob", "bob@example.com", models.RoleUser)
	testutil.CreateUser(suite.T(), suite.db, "carol", "carol@x.com", models.RoleAdmin)

	users, total, err := suite.repo.List(suite.ctx, UserFilter{
		Search:     utils.ParseSearchTerm("X.COM", true),
		Pagination: suite.page(1, 10),
	})
	suite.Require().NoError(err)
	suite.Equal(int64(2), total)
	suite.Require().Len(users, 2)
	suite.Equal("alice", users[0].Username)
	suite.Equal("carol", users[1].Username)

	users, total, err = suite.repo.List(suite.ctx, UserFilter{
		Search:     utils.ParseSearchTerm("", false),
		Pagination: suite.page(2, 2),
	})
	suite.Require().NoError(err)
	suite.Equal(int64(3), total)
	suite.Require().Len(users, 1)
	suite.Equal("carol", users[0].Username)

	users, total, err = suite.repo.List(suite.ctx, UserFilter{
		Search:     utils.ParseSearchTerm("   ", true),
		Pagination: suite.page(1, 10),
	})
	suite.Require().NoError(err)
	suite.Equal(int64(0), total)
	suite.Empty(users)

	admin := models.RoleAdmin
	users, total, err = suite.repo.List(suite.ctx, UserFilter{
		Role:       &admin,
		Search:     utils.ParseSearchTerm("*", true),
		Pagination: suite.page(1, 10),
	})
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Equal("carol", users[0].Username)
}

func (suite *UserRepositoryTestSuite) TestSearchEscapesWildcards() {
	testutil.CreateUser(suite.T(), suite.db, "under_score", "u@x.com", models.RoleUser)
	testutil.CreateUser(suite.T(), suite.db, "underXscore", "v@x.com", models.RoleUser)

	users, total, err := suite.repo.List(suite.ctx, UserFilter{
		Search:     utils.ParseSearchTerm("r_s", true),
		Pagination: suite.page(1, 10),
	})
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Equal("under_score", users[0].Username)
}

func TestUserRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(UserRepositoryTestSuite))
}
