package handlers

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/rs/zerolog"
	apierrors "github.com/yukikurage/task-manager-api/internal/errors"
	"github.com/yukikurage/task-manager-api/internal/middleware"
	"github.com/yukikurage/task-manager-api/internal/models"
	"github.com/yukikurage/task-manager-api/internal/policy"
	"github.com/yukikurage/task-manager-api/internal/services"
	"github.com/yukikurage/task-manager-api/internal/utils"
)

// respondError maps service and policy errors onto the API error envelope.
// Anything unrecognised is logged and reported as an internal error.
func respondError(c *gin.Context, err error) {
	var (
		restricted *policy.RestrictedFieldsError
		unknown    *policy.UnknownFieldsError
	)

	switch {
	case errors.As(err, &restricted):
		apierrors.ForbiddenWithDetails(c, message(err), gin.H{"fields": restricted.Fields})
	case errors.As(err, &unknown):
		apierrors.ValidationErrorWithDetails(c, message(err), gin.H{"fields": unknown.Fields})

	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrUnauthorized):
		apierrors.Unauthorized(c, message(err))

	case errors.Is(err, policy.ErrAdminRequired),
		errors.Is(err, policy.ErrCannotDeleteSelf),
		errors.Is(err, policy.ErrCannotDemoteSelf):
		apierrors.Forbidden(c, message(err))

	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, message(err))

	case errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrDuplicateAccount),
		errors.Is(err, services.ErrInvalidUsername),
		errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrStatusRequired),
		errors.Is(err, services.ErrOwnerRequired),
		errors.Is(err, policy.ErrOwnerIsAdmin),
		errors.Is(err, policy.ErrOwnerHasTasks),
		errors.Is(err, policy.ErrInvalidPriority),
		errors.Is(err, policy.ErrInvalidRole),
		utils.IsPaginationError(err):
		apierrors.ValidationError(c, message(err))

	default:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("request failed")
		apierrors.InternalError(c, "")
	}
}

// respondBindError reports a request body that failed to decode or validate.
func respondBindError(c *gin.Context, err error) {
	if msgs, ok := validationMessages(err); ok {
		apierrors.ValidationErrorWithDetails(c, message(errors.New(msgs[0])), gin.H{"errors": msgs})
		return
	}
	apierrors.ValidationError(c, "Invalid request body")
}

// message renders an error as a client-facing sentence.
func message(err error) string {
	msg := err.Error()
	r, size := utf8.DecodeRuneInString(msg)
	if r == utf8.RuneError {
		return msg
	}
	return string(unicode.ToUpper(r)) + msg[size:]
}

func currentUser(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
	}
	return user, ok
}

func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		apierrors.ValidationError(c, "Invalid "+strings.ReplaceAll(name, "_", " "))
		return 0, false
	}
	return id, true
}

// optionalQuery returns a pointer to a non-blank query value.
func optionalQuery(c *gin.Context, key string) *string {
	value, ok := c.GetQuery(key)
	value = strings.TrimSpace(value)
	if !ok || value == "" {
		return nil
	}
	return &value
}

// bindPatch decodes a partial-update body into req and returns the keys
// present in it, including keys whose value is null.
func bindPatch(c *gin.Context, req any) ([]string, bool) {
	var raw map[string]json.RawMessage
	if err := c.ShouldBindBodyWith(&raw, binding.JSON); err != nil {
		apierrors.ValidationError(c, "Invalid request body")
		return nil, false
	}
	if err := c.ShouldBindBodyWith(req, binding.JSON); err != nil {
		respondBindError(c, err)
		return nil, false
	}

	fields := make([]string, 0, len(raw))
	for key := range raw {
		fields = append(fields, key)
	}
	return fields, true
}
