// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"food-tracker/internal/config"
	"food-tracker/internal/logging"
	"food-tracker/internal/nutrition"
	"food-tracker/internal/server"
	"food-tracker/internal/storage"
	"food-tracker/internal/tracker"
)

const logFileName = "food-tracker.log"

// App is the layer between the CLI and tracker.Service. It builds every
// dependency from config and owns their lifecycle. Call Close when done.
type App struct {
	cfg     *config.Config
	store   *storage.SQLiteStorage
	service *tracker.Service
	logger  logging.Logger
	logFile *os.File
}

// New wires an App from cfg. stderr receives log output alongside the log
// file in cfg.LogDir.
func New(cfg *config.Config, stderr io.Writer) (*App, error) {
	logger, logFile, err := newLogger(cfg, stderr)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	store, err := storage.NewStoreFromConfig(cfg.Database)
	if err != nil {
		closeFile(logFile)
		return nil, fmt.Errorf("creating store: %w", err)
	}

	if err := store.CheckMigrations(); err != nil {
		store.Close()
		closeFile(logFile)
		return nil, fmt.Errorf("database schema out of date: %w", err)
	}

	if cfg.Nutrition.APIKey == "" {
		logger.Debug(context.Background(), "no nutrition API key configured")
	}
	client := nutrition.New(nutrition.Config{
		APIKey:  cfg.Nutrition.APIKey,
		BaseURL: cfg.Nutrition.BaseURL,
		Timeout: cfg.Nutrition.Timeout.Duration,
	}, nutrition.WithLogger(logger))

	svc := tracker.NewService(store, client, logger, tracker.RealClock{}, tracker.UUIDGenerator{})

	return &App{
		cfg:     cfg,
		store:   store,
		service: svc,
		logger:  logger,
		logFile: logFile,
	}, nil
}

func (a *App) Service() *tracker.Service { return a.service }

func (a *App) Logger() logging.Logger { return a.logger }

// NewServer builds the HTTP tool server. host and port override the config
// when set.
func (a *App) NewServer(host string, port int) *server.FoodTrackerServer {
	cfg := &server.Config{Host: a.cfg.Server.Host, Port: a.cfg.Server.Port}
	if host != "" {
		cfg.Host = host
	}
	if port > 0 {
		cfg.Port = port
	}
	return server.NewFoodTrackerServer(cfg, a.service, a.logger)
}

func (a *App) Close() error {
	err := a.store.Close()
	closeFile(a.logFile)
	return err
}

func newLogger(cfg *config.Config, stderr io.Writer) (logging.Logger, *os.File, error) {
	w := stderr
	var f *os.File
	if cfg.LogDir != "" {
		if err := os.MkdirAll(cfg.LogDir, 0755); err != nil {
			return nil, nil, fmt.Errorf("creating log directory: %w", err)
		}
		var err error
		f, err = os.OpenFile(filepath.Join(cfg.LogDir, logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		w = io.MultiWriter(f, stderr)
	}

	logger, err := logging.New(w, cfg.Logging.Level)
	if err != nil {
		closeFile(f)
		return nil, nil, err
	}
	return logger, f, nil
}

func closeFile(f *os.File) {
	if f != nil {
		f.Close()
	}
}
