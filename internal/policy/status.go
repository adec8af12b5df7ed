package policy

import (
	"time"

	"github.com/yukikurage/task-manager-api/internal/constants"
	"github.com/yukikurage/task-manager-api/internal/models"
)

// ApplyStatus moves task to newStatus, keeping completion_datetime set
// exactly while the status is completed. The comparison is against the
// persisted status held in task, so re-completing a completed task leaves
// its completion time unchanged.
func ApplyStatus(task *models.Task, newStatus string, now time.Time) {
	if newStatus == constants.CompletedTaskStatus {
		if task.Status != constants.CompletedTaskStatus || task.CompletionDatetime == nil {
			completed := now
			task.CompletionDatetime = &completed
		}
	} else {
		task.CompletionDatetime = nil
	}
	task.Status = newStatus
}
