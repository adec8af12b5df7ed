package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yukikurage/task-manager-api/internal/constants"
	apierrors "github.com/yukikurage/task-manager-api/internal/errors"
	"github.com/yukikurage/task-manager-api/internal/models"
	"github.com/yukikurage/task-manager-api/internal/policy"
	"github.com/yukikurage/task-manager-api/internal/services"
)

// CallerResolver maps a bearer token to the active user it belongs to.
type CallerResolver interface {
	ResolveCaller(ctx context.Context, token string) (*models.User, error)
}

// RequireAuth resolves the bearer token in the Authorization header and
// stores the caller in the context.
func RequireAuth(resolver CallerResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			apierrors.Unauthorized(c, "Not authenticated")
			return
		}

		user, err := resolver.ResolveCaller(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, services.ErrUnauthorized) {
				apierrors.Unauthorized(c, "")
				return
			}
			zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("failed to resolve caller")
			apierrors.InternalError(c, "")
			return
		}

		c.Set(constants.ContextKeyCurrentUser, user)
		c.Next()
	}
}

// RequireAdmin rejects callers without the admin role. It must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			apierrors.Unauthorized(c, "Not authenticated")
			return
		}
		if err := policy.RequireAdmin(user); err != nil {
			apierrors.Forbidden(c, "Not enough permissions")
			return
		}
		c.Next()
	}
}

// CurrentUser retrieves the authenticated caller from context
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(constants.ContextKeyCurrentUser)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok && user != nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, constants.BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
