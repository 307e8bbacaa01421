package backend

import (
	"context"
	"errors"
	"fmt"

	"pocketbook/internal/amqp"
	applog "pocketbook/internal/log"
	"pocketbook/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	kv, err := f.createKV(ctx, config)
	if err != nil {
		return nil, err
	}

	result := &BackendResult{
		Store:   storage.NewRepository(kv),
		Cleanup: kv.Close,
	}

	// Publishing is optional; a broker outage must not keep the app down.
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without receipt sync",
				applog.FieldError, err)
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			result.Publisher = client
			result.Cleanup = func() error {
				return errors.Join(client.Close(), kv.Close())
			}
		}
	}

	return result, nil
}

func (f *DefaultFactory) createKV(ctx context.Context, config Config) (storage.KV, error) {
	switch config.Type {
	case SQLiteBackend:
		kv, err := storage.NewSQLiteKV(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return kv, nil

	case PostgresBackend:
		kv, err := storage.NewPostgresKV(ctx, config.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres store: %w", err)
		}
		f.logger.Info("Initialized Postgres backend")
		return kv, nil

	case MemoryBackend:
		dataDir := config.DataDirectory
		if dataDir == "" {
			dataDir = "data"
		}
		f.logger.Info("Initialized memory backend", "data_directory", dataDir)
		return storage.NewMemoryKVFromDir(dataDir), nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
