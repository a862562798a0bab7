// Command casematch-seed imports a catalog file into the key-value store.
package main

import (
	"context"
	"flag"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/casematch/internal/config"
	dbRedis "github.com/kailas-cloud/casematch/internal/db/redis"
	"github.com/kailas-cloud/casematch/internal/loader"
	logpkg "github.com/kailas-cloud/casematch/internal/logger"
	catalogrepo "github.com/kailas-cloud/casematch/internal/repository/catalog"
	"github.com/kailas-cloud/casematch/internal/version"
)

func main() {
	path := flag.String("file", "", "catalog file to import (default: catalog.path from config)")
	format := flag.String("format", "", "csv or yaml (default: by extension)")
	keep := flag.Bool("keep", false, "upsert without deleting records missing from the file")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		panic("failed to load .env: " + err.Error())
	}
	env := config.GetEnv()
	cfg := config.MustLoad(env)

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("Starting casematch-seed", zap.String("version", version.String()))

	if *path == "" {
		*path = cfg.Catalog.Path
		if *format == "" {
			*format = cfg.Catalog.Format
		}
	}

	schema, err := cfg.BuildSchema()
	if err != nil {
		logger.Fatal("Invalid attribute schema", zap.Error(err))
	}

	recs, err := loader.ReadFile(*path, *format, schema)
	if err != nil {
		logger.Fatal("Failed to read catalog", zap.String("path", *path), zap.Error(err))
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}

	repo := catalogrepo.New(store, schema, cfg.Database.KeyPrefix)
	if *keep {
		if err := repo.SaveAll(ctx, recs); err != nil {
			logger.Fatal("Failed to save catalog", zap.Error(err))
		}
		logger.Info("Catalog upserted", zap.Int("records", len(recs)))
		return
	}

	deleted, err := repo.ReplaceAll(ctx, recs)
	if err != nil {
		logger.Fatal("Failed to replace catalog", zap.Error(err))
	}
	logger.Info("Catalog replaced",
		zap.String("path", *path),
		zap.Int("records", len(recs)),
		zap.Int("deleted", deleted),
	)
}
