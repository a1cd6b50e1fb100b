package serverutils

import (
	"context"

	"noteshare-be/internal/entity"
	"noteshare-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// IdentityResolver turns an Authorization header value into a caller identity.
type IdentityResolver interface {
	Authenticate(ctx context.Context, authorizationHeader string) (*entity.User, error)
}

const (
	LocalCurrentUser = "current_user"
	LocalUserID      = "user_id"
)

// RequireAuth rejects the request with a generic 401 unless a valid bearer
// token resolves to a user. The stage-specific failure is logged, never sent.
func RequireAuth(resolver IdentityResolver, log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		user, err := resolver.Authenticate(ctx.Context(), ctx.Get(fiber.HeaderAuthorization))
		if err != nil {
			log.Info("auth", "bearer authentication rejected", map[string]interface{}{
				"path":   ctx.Path(),
				"reason": err.Error(),
			})
			return NewUnauthorized()
		}

		ctx.Locals(LocalCurrentUser, user)
		ctx.Locals(LocalUserID, user.Id)
		return ctx.Next()
	}
}

// OptionalAuth treats a missing Authorization header as anonymous but still
// rejects a token that is present and invalid.
func OptionalAuth(resolver IdentityResolver, log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		header := ctx.Get(fiber.HeaderAuthorization)
		if header == "" {
			return ctx.Next()
		}

		user, err := resolver.Authenticate(ctx.Context(), header)
		if err != nil {
			log.Info("auth", "bearer authentication rejected", map[string]interface{}{
				"path":   ctx.Path(),
				"reason": err.Error(),
			})
			return NewUnauthorized()
		}

		ctx.Locals(LocalCurrentUser, user)
		ctx.Locals(LocalUserID, user.Id)
		return ctx.Next()
	}
}

// CurrentUser returns the authenticated user set by the middleware, or nil for
// anonymous requests.
func CurrentUser(ctx *fiber.Ctx) *entity.User {
	user, _ := ctx.Locals(LocalCurrentUser).(*entity.User)
	return user
}
