package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"campus-find/lostfound-backend/internal/config"
	"campus-find/lostfound-backend/internal/database"
	"campus-find/lostfound-backend/internal/items"
)

// The worker binary runs the scheduled maintenance jobs separately from the
// API so a slow pass never competes with request traffic.
func main() {
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		panic(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	db, err := database.Connect(&cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	cleaner := items.NewCleaner(items.NewRepository(db), cfg.Cleanup, logger)
	if err := cleaner.Start(); err != nil {
		logger.Fatal("failed to start cleanup worker", zap.Error(err))
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cleaner.Stop()
}
