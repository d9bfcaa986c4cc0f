package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/krishkalaria12/snap-upload/apperror"
	"go.uber.org/zap"
)

// ErrorHandler translates every error returned by a handler into the
// {success:false, error} body. Raw causes are included as details only
// outside production.
func ErrorHandler(production bool, log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := "Internal server error"
		var cause error = err

		var appErr *apperror.Error
		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &appErr):
			status = appErr.Kind.StatusCode()
			message = appErr.Message
			cause = appErr.Err
		case errors.As(err, &fiberErr):
			status = fiberErr.Code
			message = fiberErr.Message
			cause = nil
			if status == fiber.StatusRequestEntityTooLarge {
				status = fiber.StatusBadRequest
				message = "File too large"
			}
		}

		if status >= fiber.StatusInternalServerError {
			log.Error("Request failed",
				zap.String("method", utils.CopyString(c.Method())),
				zap.String("path", utils.CopyString(c.Path())),
				zap.Int("status", status),
				zap.Error(err))
		}

		body := fiber.Map{
			"success": false,
			"error":   message,
		}
		if !production && cause != nil {
			body["details"] = cause.Error()
		}

		return c.Status(status).JSON(body)
	}
}

// NotFound answers any request that matched no route.
func NotFound(c *fiber.Ctx) error {
	return apperror.NotFound("Route not found")
}
