package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/krishkalaria12/snap-upload/apperror"
)

func CORS(origins []string) fiber.Handler {
	allow := strings.Join(origins, ",")
	if allow == "" {
		allow = "*"
	}
	return cors.New(cors.Config{
		AllowOrigins:  allow,
		AllowMethods:  strings.Join([]string{fiber.MethodGet, fiber.MethodPost, fiber.MethodOptions}, ","),
		AllowHeaders:  "Origin, Content-Type, Accept",
		ExposeHeaders: "Content-Length",
		MaxAge:        int((12 * time.Hour).Seconds()),
	})
}

// SecurityHeaders sets the usual hardening headers. Stored images must be
// embeddable from the allowed front-end origins, so the resource policy is
// cross-origin.
func SecurityHeaders() fiber.Handler {
	return helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	})
}

// RateLimit allows max requests per client IP in every window.
func RateLimit(max int, window time.Duration) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		LimitReached: func(c *fiber.Ctx) error {
			return apperror.New(apperror.KindRateLimited, "Too many requests, please try again later", nil)
		},
	})
}
