package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/krishkalaria12/snap-upload/config"
	"github.com/krishkalaria12/snap-upload/database"
	handler "github.com/krishkalaria12/snap-upload/handlers"
	"github.com/krishkalaria12/snap-upload/middleware"
	"github.com/krishkalaria12/snap-upload/storage"
	"go.uber.org/zap"
)

// multipartOverhead leaves room for boundaries and part headers on top of
// the file itself, so an oversized file is rejected by the handler with a
// 400 instead of by the server.
const multipartOverhead = 1 << 20

type Deps struct {
	Config    *config.Config
	Store     database.ImageStore
	Files     *storage.Local
	Logger    *zap.Logger
	StartedAt time.Time
}

// NewApp builds the fiber application with all middleware and routes.
func NewApp(deps Deps) *fiber.App {
	cfg := deps.Config
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	startedAt := deps.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}

	app := fiber.New(fiber.Config{
		AppName:               "snap-serve",
		BodyLimit:             int(cfg.MaxUploadSize) + multipartOverhead,
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		IdleTimeout:           cfg.IdleTimeout,
		ErrorHandler:          middleware.ErrorHandler(cfg.IsProduction(), log),
		DisableStartupMessage: true,
	})

	app.Use(middleware.RequestLogger(log))
	app.Use(recover.New())
	app.Use(middleware.SecurityHeaders())
	app.Use(middleware.CORS(cfg.CORSOrigins))

	SetupRoutes(app, deps, log, startedAt)

	app.Use(middleware.NotFound)
	return app
}

func SetupRoutes(app *fiber.App, deps Deps, log *zap.Logger, startedAt time.Time) {
	images := handler.NewImageHandler(deps.Store, deps.Files, log)
	health := handler.NewHealthHandler(deps.Store, startedAt)

	api := app.Group("/api", middleware.RateLimit(deps.Config.RateLimitMax, deps.Config.RateLimitWindow))
	api.Get("/health", health.Health)
	api.Post("/upload", images.UploadImage)
	api.Get("/images", images.ListImages)

	app.Static(handler.UploadsRoute, deps.Files.Dir(), fiber.Static{
		Browse:         false,
		ModifyResponse: handler.StoredFileHeaders,
	})
}
