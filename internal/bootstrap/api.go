package bootstrap

import (
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/rs/zerolog"

	"inboxcore/adapter/in/http"
	"inboxcore/config"
	"inboxcore/infra/middleware"
)

// NewAPI builds the Fiber app with all routes and middleware mounted.
func NewAPI(cfg *config.Config, log zerolog.Logger) (*fiber.App, func(), error) {
	deps, cleanup, err := NewDependencies(cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize dependencies")
		return nil, nil, err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(log),
		DisableStartupMessage: cfg.IsProduction(),

		ReadBufferSize:  16384,
		WriteBufferSize: 16384,

		// go-json is faster than encoding/json on the hot path.
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,

		BodyLimit: 10 * 1024 * 1024,
	})

	// Global middleware stack (order matters)
	app.Use(middleware.Recover(log))
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger(log))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Health check (no auth required)
	healthHandler := http.NewHealthHandler(deps.Mongo, deps.Redis)
	healthHandler.Register(app)

	// Engine routes
	api := app.Group("/api/v1")
	api.Use(middleware.JWTAuth(cfg.JWTSecret))

	engineHandler := http.NewEngineHandler(
		deps.SearchService,
		deps.ThreadService,
		deps.AttachmentService,
		deps.Pipeline,
		deps.IngestService,
		deps.InvocationLog,
		log,
	)
	engineHandler.Register(api)

	log.Info().Msg("API server initialized")

	return app, cleanup, nil
}
