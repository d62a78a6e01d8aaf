package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/bracula/campus/pkg/config"
	"github.com/bracula/campus/pkg/database"
	"github.com/bracula/campus/pkg/logger"
)

func main() {
	cfg := config.MustLoad()
	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	opts := database.DefaultOptions()
	opts.Verbose = true
	db, err := database.OpenPostgres(context.Background(), cfg.DatabaseURL, opts)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := runMigrations(db); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	fmt.Fprintln(os.Stdout, "migrations completed")
}
