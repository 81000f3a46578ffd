// Package storage provides the interchangeable backends behind event.Store.
// One backend is chosen at start-up and used for the life of the process.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/citycal/citycal/internal/config"
	"github.com/citycal/citycal/internal/database"
	"github.com/citycal/citycal/pkg/event"
	log "github.com/sirupsen/logrus"
)

type Backend string

const (
	BackendFile     Backend = "file"
	BackendRedis    Backend = "redis"
	BackendPostgres Backend = "postgres"
)

type Store interface {
	event.Store
	Backend() Backend
	Close() error
}

// SelectBackend honours an explicit storage.backend and otherwise uses Redis
// when a Redis URL is configured, falling back to the local file.
func SelectBackend(cfg config.Storage) (Backend, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(cfg.Backend))) {
	case "":
		if cfg.Redis.URL != "" {
			return BackendRedis, nil
		}
		return BackendFile, nil
	case BackendFile:
		return BackendFile, nil
	case BackendRedis:
		if cfg.Redis.URL == "" {
			return "", fmt.Errorf("storage backend redis requires a redis url")
		}
		return BackendRedis, nil
	case BackendPostgres:
		return BackendPostgres, nil
	default:
		return "", fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// New opens the configured backend. Remote backends are pinged before use.
func New(ctx context.Context, cfg config.Application) (Store, error) {
	backend, err := SelectBackend(cfg.Storage)
	if err != nil {
		return nil, err
	}

	switch backend {
	case BackendRedis:
		client, err := NewRedisClient(cfg.Storage.Redis.URL)
		if err != nil {
			return nil, err
		}
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.Infof("Storing events in redis key %s", cfg.Storage.Redis.Key)
		return NewRedisStore(client, cfg.Storage.Redis.Key), nil
	case BackendPostgres:
		if err := database.Migrate(cfg.Database); err != nil {
			return nil, err
		}
		pool, err := database.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		log.Infof("Storing events in postgres kv_store key %s", cfg.Storage.Postgres.Key)
		return NewPostgresStore(pool, cfg.Storage.Postgres.Key), nil
	default:
		log.Infof("Storing events in file %s", cfg.Storage.File.Path)
		return NewFileStore(cfg.Storage.File.Path), nil
	}
}
