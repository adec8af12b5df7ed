// Package policy holds the authorization rules: which role may touch which
// rows and fields, the administrator self-protection rules, and the
// validation of enumerated values.
package policy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/task-manager-api/internal/models"
)

var (
	ErrAdminRequired    = errors.New("not enough permissions")
	ErrCannotDeleteSelf = errors.New("administrators cannot delete their own account")
	ErrCannotDemoteSelf = errors.New("administrators cannot remove their own admin role")
	ErrOwnerIsAdmin     = errors.New("tasks cannot be assigned to admin users")
	ErrOwnerHasTasks    = errors.New("cannot promote a user who still owns tasks")
	ErrInvalidPriority  = fmt.Errorf("priority must be one of: %s", joinPriorities())
	ErrInvalidRole      = fmt.Errorf("role must be one of: %s, %s", models.RoleUser, models.RoleAdmin)
)

func joinPriorities() string {
	names := make([]string, len(models.Priorities))
	for i, p := range models.Priorities {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

// RequireAdmin passes only administrators.
func RequireAdmin(user *models.User) error {
	if user == nil || !user.IsAdmin() {
		return ErrAdminRequired
	}
	return nil
}

// CanAccessTask reports whether caller may read, modify, or delete task.
// Administrators may act on any task, everyone else only on their own.
func CanAccessTask(caller *models.User, task *models.Task) bool {
	if caller == nil || task == nil {
		return false
	}
	return caller.IsAdmin() || task.OwnerID == caller.ID
}

// ValidatePriority parses a priority value.
func ValidatePriority(value string) (models.TaskPriority, error) {
	p := models.TaskPriority(value)
	if !p.Valid() {
		return "", ErrInvalidPriority
	}
	return p, nil
}

// ValidateRole parses a role value.
func ValidateRole(value string) (models.Role, error) {
	r := models.Role(value)
	if !r.Valid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

// CheckAssignableOwner rejects owners that cannot hold tasks.
func CheckAssignableOwner(owner *models.User) error {
	if owner.IsAdmin() {
		return ErrOwnerIsAdmin
	}
	return nil
}

// CheckUserDeletion enforces that an administrator never deletes their own account.
func CheckUserDeletion(actor *models.User, targetID uint64) error {
	if actor.ID == targetID {
		return ErrCannotDeleteSelf
	}
	return nil
}

// CheckRoleChange validates moving target to newRole on behalf of actor.
// ownedTasks is the number of active tasks target owns.
func CheckRoleChange(actor, target *models.User, newRole models.Role, ownedTasks int64) error {
	if actor.ID == target.ID && actor.IsAdmin() && newRole != models.RoleAdmin {
		return ErrCannotDemoteSelf
	}
	if newRole == models.RoleAdmin && !target.IsAdmin() && ownedTasks > 0 {
		return ErrOwnerHasTasks
	}
	return nil
}
