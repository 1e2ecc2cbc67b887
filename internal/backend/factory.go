package backend

import (
	"context"
	"errors"
	"fmt"

	"lexify/internal/amqp"
	"lexify/internal/cache"
	"lexify/internal/calendar"
	"lexify/internal/core"
	"lexify/internal/live"
	"lexify/internal/log"
	"lexify/internal/services"
	gsheet "lexify/internal/sheets/google"
	"lexify/internal/sheets/memory"
	"lexify/internal/state"
	"lexify/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Default()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend. AMQP is optional: when the
// broker cannot be reached the backend runs without publishing changes.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	repo, err := storage.NewSQLiteRepository(config.DBPath, config.Location)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	cal := calendar.New(config.Location, config.labels(), config.Now)
	hub := live.NewHub()
	daily := cache.NewLRUCache[core.Money](config.cacheSize(), config.cacheTTL())

	var (
		amqpClient *amqp.Client
		publisher  services.ChangePublisher
	)
	if config.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without change events", log.FieldError, err)
			amqpClient = nil
		} else {
			publisher = amqpClient
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	b := &Backend{
		Store:     repo,
		Calendar:  cal,
		Hub:       hub,
		Tasks:     services.NewTaskService(repo, cal, hub, publisher, f.logger),
		Ledger:    services.NewLedgerService(repo, cal, daily, hub, publisher, f.logger),
		Executor:  state.NewExecutor(config.workers()),
		Publisher: amqpClient,
		Logger:    f.logger,
	}

	f.logger.InfoContext(ctx, "Initialized backend",
		"db_path", config.DBPath,
		"timezone", cal.Location().String(),
		"amqp_enabled", amqpClient != nil)

	cleanup := func() error {
		b.Executor.Wait()
		var errs []error
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close amqp client: %w", err))
			}
		}
		if err := repo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close repository: %w", err))
		}
		return errors.Join(errs...)
	}

	return &BackendResult{Backend: b, Cleanup: cleanup}, nil
}

// CreateMirror implements Factory.CreateMirror
func (f *DefaultFactory) CreateMirror(ctx context.Context, config Config) (Mirror, error) {
	switch config.Mirror {
	case SheetsMirror:
		client, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:      config.GoogleSpreadsheetID,
			ServiceAccountJSON: config.GoogleServiceAccountJSON,
			ServiceAccountFile: config.GoogleServiceAccountFile,
		}, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized Google Sheets mirror")
		return client, nil
	case MemoryMirror, "":
		f.logger.InfoContext(ctx, "Initialized memory mirror")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported mirror type: %s", config.Mirror)
	}
}
