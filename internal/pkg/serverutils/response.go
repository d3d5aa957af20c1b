package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// SuccessResponse wraps payloads in the {ok, data} envelope the frontend expects.
func SuccessResponse(data interface{}) fiber.Map {
	return fiber.Map{"ok": true, "data": data}
}

// ErrorHandlerMiddleware recovers handler errors into a JSON envelope.
// Core-path failures never reach here (they degrade to answer text); this
// catches caller input errors and init-time collaborator failures.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := fiber.StatusInternalServerError
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
		}

		return ctx.Status(code).JSON(fiber.Map{
			"ok":    false,
			"error": err.Error(),
		})
	}
}
