package serverutils

import (
	"errors"

	"noteshare-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware translates errors bubbling out of handlers into the
// response taxonomy. Unclassified errors become a generic 500; the detail goes
// to the log only.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var appErr *AppError
		if errors.As(err, &appErr) {
			if appErr.Code >= fiber.StatusInternalServerError {
				log.Error("http", "request failed", map[string]interface{}{
					"path":  ctx.Path(),
					"error": appErr.Error(),
				})
			}
			body := fiber.Map{
				"success": false,
				"code":    appErr.Code,
				"message": appErr.Message,
			}
			if len(appErr.Fields) > 0 {
				body["errors"] = appErr.Fields
			}
			return ctx.Status(appErr.Code).JSON(body)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		log.Error("http", "unhandled error", map[string]interface{}{
			"path":  ctx.Path(),
			"error": err.Error(),
		})
		return ctx.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse(fiber.StatusInternalServerError, "Internal server error"))
	}
}

// RequireJSON rejects non-JSON bodies on mutating endpoints.
func RequireJSON() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		switch ctx.Method() {
		case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch:
			if len(ctx.Body()) > 0 && !ctx.Is("json") {
				return NewUnsupportedMediaType()
			}
		}
		return ctx.Next()
	}
}
