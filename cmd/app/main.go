package main

import (
	"os"
	"os/signal"
	"syscall"

	"FaceRec/internal/config"
	"FaceRec/pkg/log"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.NewLogger().Warnf("Error loading .env file: %v", err)
	}
	logger := log.NewLogger()

	fiberApp := config.NewFiber(logger, config.BodyLimit())
	validator := config.NewValidator()

	server, err := config.NewServer(
		config.WithFiber(fiberApp),
		config.WithLogger(logger),
		config.WithValidator(validator),
		config.WithMiddleware(config.RateLimit()),
		config.WithRekognition(),
		config.WithStaticAssets(config.StaticDir()),
		config.WithPort(config.Port()),
	)
	if err != nil {
		logger.Fatal(err)
	}

	logger.Infof("Running in %s...", os.Getenv("APP_ENV"))
	server.RegisterHandler()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Run(); err != nil {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	<-sigChan
	logger.Info("Shutting down server...")
	if err := server.Shutdown(); err != nil {
		logger.Errorf("Error during shutdown: %v", err)
	}
}
