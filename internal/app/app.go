package app

import (
	"fmt"
	"time"

	"userrecords/internal/config"
	"userrecords/internal/database"
	"userrecords/internal/handlers"
	"userrecords/internal/repositories"
	"userrecords/internal/services"
	"userrecords/internal/validation"
	"userrecords/internal/views"
	"userrecords/pkg/logger"
	"userrecords/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App bundles the HTTP server with the resources it owns.
type App struct {
	Fiber  *fiber.App
	Events *rabbitmq.Client // nil when RABBITMQ_URL is empty
	db     *gorm.DB
	logger *logrus.Logger
}

// New wires the store, services, handlers and views described by cfg.
func New(cfg config.Config, log *logrus.Logger) (*App, error) {
	a := &App{logger: log}

	repo, err := a.openRepository(cfg)
	if err != nil {
		return nil, err
	}

	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, log)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Events = client
		publisher = client
	}

	userService := services.NewUserService(
		repo,
		services.NewBcryptHasher(cfg.BcryptCost),
		validation.New(),
		publisher,
		log,
	)
	userHandler := handlers.NewUserHandler(userService, log)

	app := fiber.New(fiber.Config{
		Views:        views.NewEngine(),
		ErrorHandler: errorHandler(log),
	})

	app.Use(recover.New())
	// Access lines keep fiber's format and go straight to the logger's destination.
	app.Use(fiberlogger.New(fiberlogger.Config{Output: log.Out}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect(handlers.UsersPath)
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	userHandler.RegisterRoutes(app)

	a.Fiber = app
	return a, nil
}

func (a *App) openRepository(cfg config.Config) (repositories.UserRepository, error) {
	if cfg.DBDriver == "memory" {
		return repositories.NewMockUserRepository(), nil
	}

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	a.db = db
	return repositories.NewGORMUserRepository(db), nil
}

// Close releases the broker connection and the database pool.
func (a *App) Close() error {
	var errs []error
	if a.Events != nil {
		if err := a.Events.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.db != nil {
		sqlDB, err := a.db.DB()
		if err == nil {
			err = sqlDB.Close()
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}
	return nil
}

// errorHandler logs errors returned by handlers and answers with fiber's default response.
func errorHandler(log logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		logger.LogError(log, "request failed", err, logrus.Fields{
			"method": c.Method(),
			"path":   c.Path(),
		})
		return fiber.DefaultErrorHandler(c, err)
	}
}
