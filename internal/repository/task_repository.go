package repository

import (
	"context"

	"github.com/yukikurage/task-manager-api/internal/database"
	"github.com/yukikurage/task-manager-api/internal/models"
	"github.com/yukikurage/task-manager-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error
}

// FindByID finds a task by ID. The owner is nil when it has been deleted.
func (r *GormTaskRepository) FindByID(ctx context.Context, id uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).Preload("Owner").First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// FindOwned finds a task by ID that belongs to ownerID
func (r *GormTaskRepository) FindOwned(ctx context.Context, id, ownerID uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("owner_id = ?", ownerID).
		First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Task{})

	// Apply filters
	if filter.OwnerID != nil {
		query = query.Where("tasks.owner_id = ?", *filter.OwnerID)
	}
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}

	columns := []string{"tasks.title", "tasks.description"}
	if filter.SearchOwner && filter.Search.Mode == utils.SearchContains {
		query = query.Joins("LEFT JOIN users AS owners ON owners.id = tasks.owner_id AND owners.deleted_at IS NULL")
		columns = append(columns, "owners.username", "owners.email")
	}
	query = query.Scopes(database.Search(filter.Search, columns...)).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Select("tasks.*")
	if filter.NewestFirst {
		listQuery = listQuery.Order("tasks.created_at DESC").Order("tasks.id DESC")
	} else {
		listQuery = listQuery.Order("tasks.id ASC")
	}

	tasks := []models.Task{}
	if err := listQuery.
		Scopes(database.Paginate(filter.Pagination)).
		Preload("Owner").
		Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(task).Error
}

// SoftDelete records who deleted the task and marks it as deleted in one transaction
func (r *GormTaskRepository) SoftDelete(ctx context.Context, id, actorID uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Task{}).Where("id = ?", id).Update("updated_by", actorID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Delete(&models.Task{}, id).Error
	})
}

// CountByOwner counts tasks owned by ownerID
func (r *GormTaskRepository) CountByOwner(ctx context.Context, ownerID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Task{}).Where("owner_id = ?", ownerID).Count(&count).Error
	return count, err
}

// Count counts tasks
func (r *GormTaskRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Task{}).Count(&count).Error
	return count, err
}

// CountByStatus counts tasks grouped by status
func (r *GormTaskRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Total  int64
	}
	if err := r.db.WithContext(ctx).Model(&models.Task{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}
