package dto

import (
	"time"

	"github.com/yukikurage/task-manager-api/internal/models"
	"github.com/yukikurage/task-manager-api/internal/utils"
)

// CreateTaskRequest is the payload for creating a task
type CreateTaskRequest struct {
	Title         string     `json:"title" binding:"required,max=255"`
	Description   *string    `json:"description"`
	Status        *string    `json:"status" binding:"omitempty,max=50"`
	Priority      *string    `json:"priority" binding:"omitempty,priority"`
	StartDatetime *time.Time `json:"start_datetime"`
	EndDatetime   *time.Time `json:"end_datetime"`
	DueDatetime   *time.Time `json:"due_datetime"`
}

// UpdateTaskRequest is the payload for updating a task. Which keys were
// present, including explicit nulls, is read from the raw body.
type UpdateTaskRequest struct {
	Title         *string    `json:"title" binding:"omitempty,max=255"`
	Description   *string    `json:"description"`
	Status        *string    `json:"status" binding:"omitempty,max=50"`
	Priority      *string    `json:"priority" binding:"omitempty,priority"`
	StartDatetime *time.Time `json:"start_datetime"`
	EndDatetime   *time.Time `json:"end_datetime"`
	DueDatetime   *time.Time `json:"due_datetime"`
	OwnerID       *uint64    `json:"owner_id"`
}

// OwnerDTO is the embedded owner summary of a task
type OwnerDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID                 uint64     `json:"id"`
	Title              string     `json:"title"`
	Description        *string    `json:"description"`
	Status             string     `json:"status"`
	Priority           string     `json:"priority"`
	StartDatetime      *time.Time `json:"start_datetime"`
	EndDatetime        *time.Time `json:"end_datetime"`
	DueDatetime        *time.Time `json:"due_datetime"`
	CompletionDatetime *time.Time `json:"completion_datetime"`
	OwnerID            uint64     `json:"owner_id"`
	CreatedBy          uint64     `json:"created_by"`
	UpdatedBy          uint64     `json:"updated_by"`
	IsDeleted          bool       `json:"is_deleted"`
	DeletedAt          *time.Time `json:"deleted_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	Owner              *OwnerDTO  `json:"owner,omitempty"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO                `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// StatsResponse is the administrator statistics payload
type StatsResponse struct {
	TotalUsers    int64            `json:"total_users"`
	TotalTasks    int64            `json:"total_tasks"`
	TasksByStatus map[string]int64 `json:"tasks_by_status"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:                 task.ID,
		Title:              task.Title,
		Description:        task.Description,
		Status:             task.Status,
		Priority:           string(task.Priority),
		StartDatetime:      task.StartDatetime,
		EndDatetime:        task.EndDatetime,
		DueDatetime:        task.DueDatetime,
		CompletionDatetime: task.CompletionDatetime,
		OwnerID:            task.OwnerID,
		CreatedBy:          task.CreatedBy,
		UpdatedBy:          task.UpdatedBy,
		IsDeleted:          task.IsDeleted(),
		CreatedAt:          task.CreatedAt,
		UpdatedAt:          task.UpdatedAt,
	}
	if task.DeletedAt.Valid {
		deletedAt := task.DeletedAt.Time
		dto.DeletedAt = &deletedAt
	}

	// Include owner if preloaded
	if task.Owner != nil && task.Owner.ID != 0 {
		dto.Owner = &OwnerDTO{
			ID:       task.Owner.ID,
			Username: task.Owner.Username,
			Email:    task.Owner.Email,
		}
	}

	return dto
}

// ToTaskListResponse converts a page of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, params utils.PaginationParams, total int64) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}
	return TaskListResponse{
		Tasks:      items,
		Pagination: utils.NewPaginationResponse(params, total),
	}
}
