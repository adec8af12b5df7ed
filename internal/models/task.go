package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

// Priorities lists the accepted priority values in ascending order.
var Priorities = []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// Valid reports whether p is one of the enumerated priorities.
func (p TaskPriority) Valid() bool {
	for _, v := range Priorities {
		if p == v {
			return true
		}
	}
	return false
}

type Task struct {
	ID                 uint64         `gorm:"primarykey" json:"id"`
	Title              string         `gorm:"type:varchar(255);not null" json:"title"`
	Description        *string        `gorm:"type:text" json:"description"`
	Status             string         `gorm:"type:varchar(50);not null;index" json:"status"`
	Priority           TaskPriority   `gorm:"type:varchar(20);not null" json:"priority"`
	StartDatetime      *time.Time     `json:"start_datetime"`
	EndDatetime        *time.Time     `json:"end_datetime"`
	DueDatetime        *time.Time     `json:"due_datetime"`
	CompletionDatetime *time.Time     `json:"completion_datetime"`
	OwnerID            uint64         `gorm:"not null;index" json:"owner_id"`
	CreatedBy          uint64         `gorm:"not null" json:"created_by"`
	UpdatedBy          uint64         `gorm:"not null" json:"updated_by"`
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Owner *User `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
}

// IsDeleted reports whether the task has been soft-deleted.
func (t Task) IsDeleted() bool {
	return t.DeletedAt.Valid
}
