package main

import (
	"os"
	"os/signal"
	"syscall"

	"userrecords/internal/app"
	"userrecords/internal/config"
	"userrecords/pkg/logger"
	"userrecords/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg := config.Load()
	log := logger.New(cfg.Env, cfg.LogLevel)

	// --- Application ---
	application, err := app.New(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize application")
	}

	// --- User events consumer ---
	if application.Events != nil {
		if err := application.Events.ConsumeUserEvents(rabbitmq.LogUserEvent(log)); err != nil {
			log.WithError(err).Error("failed to start user events consumer")
		}
	}

	// --- HTTP server ---
	log.WithField("addr", cfg.AppPort).Info("starting server")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := application.Fiber.Listen(cfg.AppPort); err != nil {
			log.WithError(err).Fatal("server failed to start")
		}
	}()

	<-quit
	log.Info("shutting down server")

	if err := application.Fiber.Shutdown(); err != nil {
		log.WithError(err).Error("error during fiber shutdown")
	}
	if err := application.Close(); err != nil {
		log.WithError(err).Error("error releasing resources")
	}

	log.Info("server gracefully stopped")
}
