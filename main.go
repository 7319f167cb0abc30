package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/medisave/alternatives-api/classifier"
	"github.com/medisave/alternatives-api/config"
	"github.com/medisave/alternatives-api/data"
	"github.com/medisave/alternatives-api/health"
	"github.com/medisave/alternatives-api/logging"
	"github.com/medisave/alternatives-api/medicines"
	"github.com/medisave/alternatives-api/recommend"
	"github.com/medisave/alternatives-api/scheduler"
	"github.com/medisave/alternatives-api/server"
	"github.com/medisave/alternatives-api/validation"
)

func main() {
	// .env is optional; environment variables take precedence
	if err := godotenv.Load(); err != nil {
		logging.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Error("Configuration error", "error", err)
		os.Exit(1)
	}

	logging.InitLogger("logs", cfg.LogRetentionWeeks, cfg.MaxLogFileSize)

	// The model and the initial catalog load are both fatal: the server
	// must not come up unable to answer queries.
	model, err := classifier.Load(cfg.ModelDir)
	if err != nil {
		logging.Error("Failed to load classifier model", "error", err, "model_dir", cfg.ModelDir)
		os.Exit(1)
	}

	dataContainer := data.NewDataContainer()
	dataContainer.SetServerStartTime(time.Now())

	loader := medicines.NewLoader()
	sched := scheduler.NewScheduler(dataContainer, loader, cfg.DatasetPath)
	if err := sched.Start(); err != nil {
		logging.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	engine := recommend.NewEngine(dataContainer, model)
	validator := validation.NewQueryValidator()
	healthChecker := health.NewHealthChecker(dataContainer)

	srv := server.NewServer(cfg, dataContainer, engine, validator, healthChecker)

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	logging.Info("Server started",
		"address", cfg.Address,
		"port", cfg.Port,
		"env", cfg.Env,
		"dataset", cfg.DatasetPath,
		"model_dir", cfg.ModelDir,
	)

	// Block until a signal is received
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Shutdown error", "error", err)
		os.Exit(1)
	}
}
