package main

import (
	"context"
	"fmt"

	"github.com/R3E-Network/nft_layer/internal/config"
	"github.com/R3E-Network/nft_layer/internal/storage"
	"github.com/R3E-Network/nft_layer/internal/storage/memory"
	"github.com/R3E-Network/nft_layer/internal/storage/migrations"
	"github.com/R3E-Network/nft_layer/internal/storage/postgres"
	"github.com/R3E-Network/nft_layer/internal/storage/redis"
	"github.com/R3E-Network/nft_layer/pkg/logger"
)

func openStore(ctx context.Context, cfg config.StorageConfig, log *logger.Logger) (storage.Store, func() error, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		s, err := postgres.Open(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		if cfg.AutoMigrate {
			if err := migrations.Apply(ctx, s.DB()); err != nil {
				_ = s.Close()
				return nil, nil, err
			}
			log.WithField("migrations", migrations.Count()).Debug("schema up to date")
		}
		return s, s.Close, nil

	case config.DriverRedis:
		s, err := redis.Dial(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, redis.WithPrefix(cfg.RedisPrefix))
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil

	case config.DriverMemory, "":
		log.Debug("using in-memory store; state is discarded on exit")
		return memory.New(), func() error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
