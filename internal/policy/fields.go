package policy

import (
	"errors"
	"sort"
	"strings"

	"github.com/yukikurage/task-manager-api/internal/models"
)

// Task payload fields
const (
	FieldTitle         = "title"
	FieldDescription   = "description"
	FieldStatus        = "status"
	FieldPriority      = "priority"
	FieldStartDatetime = "start_datetime"
	FieldEndDatetime   = "end_datetime"
	FieldDueDatetime   = "due_datetime"
	FieldOwnerID       = "owner_id"
)

// User payload fields
const (
	FieldUsername = "username"
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldRole     = "role"
)

var (
	ErrRestrictedFields = errors.New("not allowed to modify fields")
	ErrUnknownFields    = errors.New("unknown fields")
)

type fieldSet map[string]struct{}

func newFieldSet(fields ...string) fieldSet {
	set := make(fieldSet, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// outside returns the sorted, de-duplicated fields that are not in s.
func (s fieldSet) outside(fields []string) []string {
	seen := make(map[string]struct{}, len(fields))
	var rejected []string
	for _, f := range fields {
		if _, ok := s[f]; ok {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		rejected = append(rejected, f)
	}
	sort.Strings(rejected)
	return rejected
}

var (
	taskFields = newFieldSet(
		FieldTitle, FieldDescription, FieldStatus, FieldPriority,
		FieldStartDatetime, FieldEndDatetime, FieldDueDatetime, FieldOwnerID,
	)
	userTaskFields  = newFieldSet(FieldStatus, FieldStartDatetime, FieldEndDatetime)
	profileFields   = newFieldSet(FieldUsername, FieldEmail, FieldPassword)
	adminUserFields = newFieldSet(FieldUsername, FieldEmail, FieldPassword, FieldRole)
)

// RestrictedFieldsError lists fields the caller is not allowed to modify.
type RestrictedFieldsError struct {
	Fields []string
}

func (e *RestrictedFieldsError) Error() string {
	return ErrRestrictedFields.Error() + ": " + strings.Join(e.Fields, ", ")
}

func (e *RestrictedFieldsError) Unwrap() error {
	return ErrRestrictedFields
}

// UnknownFieldsError lists payload fields that do not exist on the resource.
type UnknownFieldsError struct {
	Fields []string
}

func (e *UnknownFieldsError) Error() string {
	return ErrUnknownFields.Error() + ": " + strings.Join(e.Fields, ", ")
}

func (e *UnknownFieldsError) Unwrap() error {
	return ErrUnknownFields
}

// CheckTaskUpdateFields validates the fields of a task update against the
// caller's role. Regular users may only change status and the start/end
// datetimes; administrators may change every task field.
func CheckTaskUpdateFields(role models.Role, fields []string) error {
	if role == models.RoleAdmin {
		if unknown := taskFields.outside(fields); len(unknown) > 0 {
			return &UnknownFieldsError{Fields: unknown}
		}
		return nil
	}

	if restricted := userTaskFields.outside(fields); len(restricted) > 0 {
		return &RestrictedFieldsError{Fields: restricted}
	}
	return nil
}

// CheckProfileUpdateFields validates a self-service profile update.
func CheckProfileUpdateFields(fields []string) error {
	if restricted := profileFields.outside(fields); len(restricted) > 0 {
		return &RestrictedFieldsError{Fields: restricted}
	}
	return nil
}

// CheckUserUpdateFields validates an administrator's update of a user.
func CheckUserUpdateFields(fields []string) error {
	if unknown := adminUserFields.outside(fields); len(unknown) > 0 {
		return &UnknownFieldsError{Fields: unknown}
	}
	return nil
}
