package services

import (
	"context"
	"fmt"

	"github.com/yukikurage/task-manager-api/internal/models"
	"github.com/yukikurage/task-manager-api/internal/policy"
	"github.com/yukikurage/task-manager-api/internal/repository"
)

// Stats summarises the active rows in the system.
type Stats struct {
	TotalUsers    int64
	TotalTasks    int64
	TasksByStatus map[string]int64
}

// StatsService computes administrator statistics.
type StatsService struct {
	store repository.Store
}

// NewStatsService creates a new StatsService.
func NewStatsService(store repository.Store) *StatsService {
	return &StatsService{store: store}
}

// Get returns the current counts. Soft-deleted users and tasks are excluded.
func (s *StatsService) Get(ctx context.Context, actor *models.User) (*Stats, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	stats := &Stats{}
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		if stats.TotalUsers, err = tx.Users().Count(ctx); err != nil {
			return err
		}
		if stats.TotalTasks, err = tx.Tasks().Count(ctx); err != nil {
			return err
		}
		stats.TasksByStatus, err = tx.Tasks().CountByStatus(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}
	return stats, nil
}
