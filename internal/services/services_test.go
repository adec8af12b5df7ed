package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/task-manager-api/internal/auth"
	"github.com/yukikurage/task-manager-api/internal/models"
	"github.com/yukikurage/task-manager-api/internal/repository"
	"github.com/yukikurage/task-manager-api/internal/testutil"
	"github.com/yukikurage/task-manager-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// serviceSuite wires every service against a fresh in-memory database.
type serviceSuite struct {
	suite.Suite
	ctx    context.Context
	db     *gorm.DB
	store  repository.Store
	hasher *auth.PasswordHasher
	tokens *auth.TokenManager

	auth  *AuthService
	users *UserService
	tasks *TaskService
	stats *StatsService

	admin *models.User
	alice *models.User
}

func (s *serviceSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = testutil.NewDB(s.T())
	s.store = repository.NewStore(s.db)
	s.hasher = auth.NewPasswordHasher(bcrypt.MinCost)
	s.tokens = auth.NewTokenManager("test-secret", time.Hour)

	s.auth = NewAuthService(s.store, s.hasher, s.tokens)
	s.users = NewUserService(s.store, s.hasher)
	s.tasks = NewTaskService(s.store)
	s.stats = NewStatsService(s.store)

	s.admin = testutil.CreateUser(s.T(), s.db, "admin", "admin@x.com", models.RoleAdmin)
	s.alice = testutil.CreateUser(s.T(), s.db, "alice", "a@x.com", models.RoleUser)
}

func (s *serviceSuite) page() utils.PaginationParams {
	params, err := utils.NewPaginationParams(1, 10)
	s.Require().NoError(err)
	return params
}

func ptr[T any](v T) *T { return &v }
