package server

import (
	"strings"

	"tradie-recovery-be/internal/bootstrap"
	"tradie-recovery-be/internal/config"
	"tradie-recovery-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// multipart framing on top of the largest accepted file
const bodyOverhead = 1 << 20

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	bodyLimit := int(container.UploadMaxBytes) + bodyOverhead
	if container.UploadMaxBytes <= 0 {
		bodyLimit = 10*1024*1024 + bodyOverhead
	}

	app := fiber.New(fiber.Config{
		BodyLimit:    bodyLimit,
		ErrorHandler: serverutils.NewErrorHandler(container.Logger),
	})

	// Middleware
	app.Use(cors.New(corsConfig(cfg.App.CorsAllowedOrigins)))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware(container.Logger))

	app.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.JSON(serverutils.SuccessResponse("ok", fiber.Map{"status": "up"}))
	})

	registerRoutes(app, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

// corsConfig only allows credentials for an explicit origin list; fiber's cors
// panics when credentials are combined with the wildcard origin.
func corsConfig(origins string) cors.Config {
	origins = strings.TrimSpace(origins)
	wildcard := origins == "" || origins == "*"
	if wildcard {
		origins = "*"
	}
	return cors.Config{
		AllowOrigins:     origins,
		AllowCredentials: !wildcard,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Idempotency-Key",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type, Content-Disposition",
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	s.container.Logger.Info("Server", "Server is running", map[string]interface{}{"port": s.cfg.App.Port})
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	api := app.Group("/api")

	c.AuthController.RegisterRoutes(api)
	c.UserController.RegisterRoutes(api)
	c.AdminController.RegisterRoutes(api)

	c.ApplicationController.RegisterRoutes(api)
	c.CaseController.RegisterRoutes(api)
	c.ContractController.RegisterRoutes(api)
	c.DocumentController.RegisterRoutes(api)

	c.PaymentController.RegisterRoutes(api)
	c.CalendarController.RegisterRoutes(api)

	c.NotificationHandler.RegisterRoutes(api)
}
