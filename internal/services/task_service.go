package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/task-manager-api/internal/constants"
	"github.com/yukikurage/task-manager-api/internal/metrics"
	"github.com/yukikurage/task-manager-api/internal/models"
	"github.com/yukikurage/task-manager-api/internal/policy"
	"github.com/yukikurage/task-manager-api/internal/repository"
	"github.com/yukikurage/task-manager-api/internal/utils"
)

// TaskService handles task business logic
type TaskService struct {
	store repository.Store
	now   func() time.Time
}

// NewTaskService creates a new TaskService
func NewTaskService(store repository.Store) *TaskService {
	return &TaskService{
		store: store,
		now:   time.Now,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	Search     utils.SearchTerm
	Status     *string
	Priority   *string
	Pagination utils.PaginationParams
}

// SearchTasksInput represents filters for the administrator task search
type SearchTasksInput struct {
	ListTasksInput
	OwnerID *uint64
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title         string
	Description   *string
	Status        *string
	Priority      *string
	StartDatetime *time.Time
	EndDatetime   *time.Time
	DueDatetime   *time.Time
}

// UpdateTaskInput represents input for updating a task. Fields lists every
// key present in the request body; a listed field with a nil value clears
// it where the column is nullable.
type UpdateTaskInput struct {
	Fields        []string
	Title         *string
	Description   *string
	Status        *string
	Priority      *string
	StartDatetime *time.Time
	EndDatetime   *time.Time
	DueDatetime   *time.Time
	OwnerID       *uint64
}

// ListOwn returns the caller's tasks, newest first.
func (s *TaskService) ListOwn(ctx context.Context, caller *models.User, input ListTasksInput) ([]models.Task, int64, error) {
	filter, err := buildTaskFilter(input)
	if err != nil {
		return nil, 0, err
	}
	filter.OwnerID = &caller.ID
	filter.NewestFirst = true

	return s.list(ctx, filter)
}

// Search lets an administrator search across every active task. The text
// search also matches the owner's username and email.
func (s *TaskService) Search(ctx context.Context, actor *models.User, input SearchTasksInput) ([]models.Task, int64, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, 0, err
	}

	filter, err := buildTaskFilter(input.ListTasksInput)
	if err != nil {
		return nil, 0, err
	}
	filter.OwnerID = input.OwnerID
	filter.SearchOwner = true

	return s.list(ctx, filter)
}

func (s *TaskService) list(ctx context.Context, filter repository.TaskFilter) ([]models.Task, int64, error) {
	var (
		tasks []models.Task
		total int64
	)
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		tasks, total, err = tx.Tasks().List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

func buildTaskFilter(input ListTasksInput) (repository.TaskFilter, error) {
	filter := repository.TaskFilter{
		Search:     input.Search,
		Status:     input.Status,
		Pagination: input.Pagination,
	}
	if input.Priority != nil {
		priority, err := policy.ValidatePriority(*input.Priority)
		if err != nil {
			return filter, err
		}
		filter.Priority = &priority
	}
	return filter, nil
}

// Get returns a task the caller may access. Other users' tasks are
// reported as not found.
func (s *TaskService) Get(ctx context.Context, caller *models.User, id uint64) (*models.Task, error) {
	return findAccessibleTask(ctx, s.store, caller, id)
}

// Create adds a task owned by the caller. Administrators cannot own tasks.
func (s *TaskService) Create(ctx context.Context, caller *models.User, input CreateTaskInput) (*models.Task, error) {
	if err := policy.CheckAssignableOwner(caller); err != nil {
		return nil, err
	}

	task, err := s.newTask(input, caller.ID, caller.ID)
	if err != nil {
		return nil, err
	}

	created, err := s.insert(ctx, task, nil)
	if err != nil {
		return nil, err
	}
	metrics.TasksCreatedTotal.WithLabelValues(metrics.SourceSelf).Inc()
	return created, nil
}

// CreateForUser lets an administrator create a task owned by another user.
func (s *TaskService) CreateForUser(ctx context.Context, actor *models.User, ownerID uint64, input CreateTaskInput) (*models.Task, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	task, err := s.newTask(input, ownerID, actor.ID)
	if err != nil {
		return nil, err
	}

	created, err := s.insert(ctx, task, func(tx repository.Store) error {
		return checkOwner(ctx, tx.Users(), ownerID)
	})
	if err != nil {
		return nil, err
	}
	metrics.TasksCreatedTotal.WithLabelValues(metrics.SourceAdmin).Inc()
	return created, nil
}

func (s *TaskService) newTask(input CreateTaskInput, ownerID, actorID uint64) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	status := constants.DefaultTaskStatus
	if input.Status != nil {
		status = strings.TrimSpace(*input.Status)
		if status == "" {
			return nil, ErrStatusRequired
		}
	}

	priority := models.PriorityMedium
	if input.Priority != nil {
		var err error
		if priority, err = policy.ValidatePriority(*input.Priority); err != nil {
			return nil, err
		}
	}

	task := &models.Task{
		Title:         title,
		Description:   input.Description,
		Priority:      priority,
		StartDatetime: input.StartDatetime,
		EndDatetime:   input.EndDatetime,
		DueDatetime:   input.DueDatetime,
		OwnerID:       ownerID,
		CreatedBy:     actorID,
		UpdatedBy:     actorID,
	}
	policy.ApplyStatus(task, status, s.now())
	return task, nil
}

// insert creates task after running check inside the same transaction and
// returns the stored row with its owner loaded.
func (s *TaskService) insert(ctx context.Context, task *models.Task, check func(tx repository.Store) error) (*models.Task, error) {
	var created *models.Task
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if check != nil {
			if err := check(tx); err != nil {
				return err
			}
		}
		if err := tx.Tasks().Create(ctx, task); err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}

		var err error
		created, err = tx.Tasks().FindByID(ctx, task.ID)
		if err != nil {
			return fmt.Errorf("failed to reload task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update modifies a task. Regular users may only touch status and the
// start/end datetimes of their own tasks; administrators may edit any task.
func (s *TaskService) Update(ctx context.Context, caller *models.User, id uint64, input UpdateTaskInput) (*models.Task, error) {
	if err := policy.CheckTaskUpdateFields(caller.Role, input.Fields); err != nil {
		return nil, err
	}

	var (
		updated    *models.Task
		statusMove string
	)
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		task, err := findAccessibleTask(ctx, tx, caller, id)
		if err != nil {
			return err
		}
		before := task.Status

		if err := s.applyUpdate(ctx, tx, task, input); err != nil {
			return err
		}
		task.UpdatedBy = caller.ID
		task.Owner = nil

		if err := tx.Tasks().Update(ctx, task); err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}

		updated, err = tx.Tasks().FindByID(ctx, task.ID)
		if err != nil {
			return fmt.Errorf("failed to reload task: %w", err)
		}
		if updated.Status != before {
			statusMove = updated.Status
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if statusMove != "" {
		metrics.TaskStatusChangesTotal.WithLabelValues(statusMove).Inc()
	}
	return updated, nil
}

func (s *TaskService) applyUpdate(ctx context.Context, tx repository.Store, task *models.Task, input UpdateTaskInput) error {
	has := func(name string) bool { return hasField(input.Fields, name) }

	if has(policy.FieldTitle) {
		if input.Title == nil || strings.TrimSpace(*input.Title) == "" {
			return ErrTitleRequired
		}
		task.Title = strings.TrimSpace(*input.Title)
	}
	if has(policy.FieldDescription) {
		task.Description = input.Description
	}
	if has(policy.FieldPriority) {
		if input.Priority == nil {
			return policy.ErrInvalidPriority
		}
		priority, err := policy.ValidatePriority(*input.Priority)
		if err != nil {
			return err
		}
		task.Priority = priority
	}
	if has(policy.FieldStartDatetime) {
		task.StartDatetime = input.StartDatetime
	}
	if has(policy.FieldEndDatetime) {
		task.EndDatetime = input.EndDatetime
	}
	if has(policy.FieldDueDatetime) {
		task.DueDatetime = input.DueDatetime
	}
	if has(policy.FieldOwnerID) {
		if input.OwnerID == nil {
			return ErrOwnerRequired
		}
		if *input.OwnerID != task.OwnerID {
			if err := checkOwner(ctx, tx.Users(), *input.OwnerID); err != nil {
				return err
			}
			task.OwnerID = *input.OwnerID
		}
	}
	if has(policy.FieldStatus) {
		if input.Status == nil || strings.TrimSpace(*input.Status) == "" {
			return ErrStatusRequired
		}
		policy.ApplyStatus(task, strings.TrimSpace(*input.Status), s.now())
	}
	return nil
}

// Delete soft-deletes a task the caller may access.
func (s *TaskService) Delete(ctx context.Context, caller *models.User, id uint64) error {
	return s.store.Transaction(ctx, func(tx repository.Store) error {
		task, err := findAccessibleTask(ctx, tx, caller, id)
		if err != nil {
			return err
		}
		if err := tx.Tasks().SoftDelete(ctx, task.ID, caller.ID); err != nil {
			if isNotFound(err) {
				return ErrTaskNotFound
			}
			return fmt.Errorf("failed to delete task: %w", err)
		}
		return nil
	})
}

// findAccessibleTask loads a task the caller may act on. Administrators see
// every active task, users only their own.
func findAccessibleTask(ctx context.Context, store repository.Store, caller *models.User, id uint64) (*models.Task, error) {
	var (
		task *models.Task
		err  error
	)
	if caller.IsAdmin() {
		task, err = store.Tasks().FindByID(ctx, id)
	} else {
		task, err = store.Tasks().FindOwned(ctx, id, caller.ID)
	}
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if !policy.CanAccessTask(caller, task) {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

// checkOwner requires the prospective owner to be an active, non-admin user.
func checkOwner(ctx context.Context, users repository.UserRepository, ownerID uint64) error {
	owner, err := users.FindByID(ctx, ownerID)
	if err != nil {
		if isNotFound(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find owner: %w", err)
	}
	return policy.CheckAssignableOwner(owner)
}
