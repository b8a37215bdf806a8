package data

import (
	"context"
	"fmt"
	"time"

	"github.com/dixithak/FileInsights/internal/conf"
	"github.com/dixithak/FileInsights/internal/pkg/database"
	"github.com/dixithak/FileInsights/internal/pkg/logger"
	"github.com/dixithak/FileInsights/internal/pkg/minio"
	"github.com/dixithak/FileInsights/internal/pkg/redis"
	"github.com/dixithak/FileInsights/internal/pkg/s3"
	"github.com/dixithak/FileInsights/internal/tracker/biz"
	trackerdata "github.com/dixithak/FileInsights/internal/tracker/data"
	"go.uber.org/zap"
)

// Data infrastructure clients built from configuration. Clients a
// configuration does not need stay nil.
type Data struct {
	DB          *database.DB
	Redis       *redis.Client
	MinIO       *minio.Client
	S3          *s3.Client
	Tables      *biz.Tables
	ObjectStore biz.ObjectStore
	Logger      *logger.Logger
}

func NewData(config *conf.Config, log *logger.Logger) (*Data, func(), error) {
	d := &Data{Logger: log}

	cleanup := func() {
		log.Info("cleaning up data resources")
		if d.DB != nil {
			d.DB.Close()
		}
		if d.Redis != nil {
			d.Redis.Close()
		}
		if d.MinIO != nil {
			d.MinIO.Close()
		}
	}

	if config.UsesDatabase() {
		db, err := database.New(&config.Database, log)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to init database: %w", err)
		}
		d.DB = db
	}

	if config.UsesRedis() {
		rdb, err := redis.New(&config.Redis, log)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		d.Redis = rdb
	}

	switch config.Tracker.ObjectStore {
	case trackerdata.ObjectStoreS3:
		sc, err := s3.NewClient(&config.S3, log.Logger)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to init s3: %w", err)
		}
		d.S3 = sc
	default:
		mc, err := minio.NewClient(&config.MinIO, log.Logger)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to init minio: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := mc.Ping(ctx); err != nil {
			log.Warn("minio is not reachable yet", zap.Error(err))
		}
		cancel()
		d.MinIO = mc
	}

	objects, err := trackerdata.NewObjectStore(config.Tracker.ObjectStore, d.MinIO, d.S3)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	d.ObjectStore = objects

	tables, err := trackerdata.NewTables(config.Tracker.Backend, config.Tracker.Tables, d.Redis, d.DB)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to init tables: %w", err)
	}
	d.Tables = tables

	log.Info("data layer initialized",
		zap.String("backend", config.Tracker.Backend),
		zap.String("object_store", config.Tracker.ObjectStore),
	)
	return d, cleanup, nil
}
