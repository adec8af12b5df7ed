package models

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is an account. Username and email are unique among rows that are not
// soft-deleted, so a deleted user's username may be taken again.
type User struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	Username     string         `gorm:"type:varchar(50);not null;uniqueIndex:idx_users_username_active,where:deleted_at IS NULL" json:"username"`
	Email        string         `gorm:"type:varchar(255);not null;uniqueIndex:idx_users_email_active,where:deleted_at IS NULL" json:"email"`
	PasswordHash string         `gorm:"type:varchar(255);not null" json:"-"`
	Role         Role           `gorm:"type:varchar(20);not null" json:"role"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsDeleted reports whether the user has been soft-deleted.
func (u User) IsDeleted() bool {
	return u.DeletedAt.Valid
}
