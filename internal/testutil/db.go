// Package testutil provides database fixtures for tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-manager-api/internal/database"
	"github.com/yukikurage/task-manager-api/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory SQLite database that is closed when
// the test ends. It holds a single connection, so code running inside a
// transaction must only use the transaction handle.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(database.SQLiteDialector(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// CreateUser inserts an active user whose password is "password123".
func CreateUser(t testing.TB, db *gorm.DB, username, email string, role models.Role) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// DefaultPassword is the password of users created by CreateUser.
const DefaultPassword = "password123"

// CreateTask inserts a task owned by owner.
func CreateTask(t testing.TB, db *gorm.DB, owner *models.User, title, status string) *models.Task {
	t.Helper()

	task := &models.Task{
		Title:     title,
		Status:    status,
		Priority:  models.PriorityMedium,
		OwnerID:   owner.ID,
		CreatedBy: owner.ID,
		UpdatedBy: owner.ID,
	}
	require.NoError(t, db.Omit("Owner").Create(task).Error)
	return task
}
