package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
)

// RequestLogger writes one structured line per request. Errors from the
// chain are resolved through the app's error handler first so the logged
// status matches what the client sees. Request strings are copied since
// fiber reuses their buffers once the handler returns.
func RequestLogger(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if chainErr := c.Next(); chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		level := zap.InfoLevel
		switch {
		case status >= fiber.StatusInternalServerError:
			level = zap.ErrorLevel
		case status >= fiber.StatusBadRequest:
			level = zap.WarnLevel
		}

		if ce := log.Check(level, "HTTP Request"); ce != nil {
			ce.Write(
				zap.String("method", utils.CopyString(c.Method())),
				zap.String("path", utils.CopyString(c.Path())),
				zap.Int("status", status),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", utils.CopyString(c.IP())),
			)
		}
		return nil
	}
}
