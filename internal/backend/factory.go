package backend

import (
	"context"
	"fmt"
	"log/slog"

	"ledger/internal/amqp"
	applog "ledger/internal/log"
	"ledger/internal/services"
	"ledger/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	adapter, err := f.createStorage(config)
	if err != nil {
		return nil, err
	}

	var publisher services.Publisher
	if client := f.createPublisher(ctx, config); client != nil {
		publisher = client
	}

	service := services.NewLedgerService(adapter, publisher, f.logger)

	applog.WithComponent(f.logger, applog.ComponentBackend).DebugContext(ctx, "Initialized ledger backend",
		applog.FieldBackend, config.Type.String(),
		"amqp_enabled", publisher != nil)

	return &BackendResult{
		Service: service,
		Cleanup: service.Close,
	}, nil
}

func (f *DefaultFactory) createStorage(config Config) (storage.Adapter, error) {
	switch config.Type {
	case CSVBackend:
		return storage.NewCSVFile(config.LedgerFile, f.logger), nil
	case SQLiteBackend:
		repo, err := storage.NewSQLite(config.SQLiteDBPath, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite storage: %w", err)
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

// createPublisher connects to AMQP when configured. A broker that cannot be
// reached disables notifications instead of failing the command.
func (f *DefaultFactory) createPublisher(ctx context.Context, config Config) *amqp.Client {
	if config.AMQPURL == "" {
		return nil
	}
	logger := applog.WithComponent(f.logger, applog.ComponentBackend)
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
	if err != nil {
		logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without notifications",
			applog.FieldError, err)
		return nil
	}
	logger.DebugContext(ctx, "Initialized AMQP client",
		applog.FieldExchange, config.AMQPExchange,
		applog.FieldQueue, config.AMQPQueue)
	return client
}
