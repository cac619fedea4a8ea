package backend

import (
	"fmt"
	"log/slog"

	"ledger/internal/amqp"
	"ledger/internal/config"
	"ledger/internal/ledger/jsonfile"
	"ledger/internal/ledger/memory"
	"ledger/internal/services"
	"ledger/internal/storage"
)

// Factory creates backends from application configuration.
type Factory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// Create builds the backend named by cfg.DataBackend.
func (f *Factory) Create(cfg *config.Config) (*Result, error) {
	t := Type(cfg.DataBackend)
	if !t.IsValid() {
		return nil, fmt.Errorf("invalid backend type %q (valid: %v)", cfg.DataBackend, Types())
	}

	switch t {
	case SQLiteBackend:
		return f.createSQLite(cfg)
	case JSONFileBackend:
		return f.createJSONFile(cfg)
	default:
		return f.createMemory()
	}
}

func (f *Factory) createSQLite(cfg *config.Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize SQLite repository: %w", err)
	}

	// AMQP is optional: without it the ledger is purely local and the
	// export worker's sweep does all the work.
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			publisher = client
			f.logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	svc := services.NewLedgerService(repo, publisher)

	f.logger.Info("Initialized SQLite backend",
		"db_path", cfg.SQLiteDBPath,
		"amqp_enabled", publisher != nil)

	return &Result{Backend: svc, Cleanup: svc.Close}, nil
}

func (f *Factory) createJSONFile(cfg *config.Config) (*Result, error) {
	store, err := jsonfile.Open(cfg.DataFile)
	if err != nil {
		return nil, fmt.Errorf("open ledger file: %w", err)
	}

	f.logger.Info("Initialized JSON file backend", "data_file", cfg.DataFile)

	return &Result{Backend: store, Cleanup: nil}, nil
}

func (f *Factory) createMemory() (*Result, error) {
	f.logger.Info("Initialized memory backend")
	return &Result{Backend: memory.New(), Cleanup: nil}, nil
}
