package backend

import (
	"fmt"
	"log/slog"

	"spendtrack/internal/amqp"
	"spendtrack/internal/store/memory"
	"spendtrack/internal/store/sqlite"
)

// Factory creates expense stores based on configuration.
type Factory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// CreateBackend builds the store named by the config and, when an AMQP URL is
// set, the broker client. A failing broker is logged and skipped so the
// application still runs with inline export processing.
func (f *Factory) CreateBackend(cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	result, err := f.createStore(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, exports run inline", "error", err)
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
			result.AMQP = client
		}
	}

	return result, nil
}

func (f *Factory) createStore(cfg Config) (*Result, error) {
	switch cfg.Type {
	case SQLiteBackend:
		repo, err := sqlite.NewRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite store: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return &Result{Store: repo, Cleanup: repo.Close}, nil

	case MemoryBackend:
		var st *memory.Store
		if cfg.SeedFile != "" {
			st = memory.NewFromFile(cfg.SeedFile)
			f.logger.Info("Initialized memory backend", "seed_file", cfg.SeedFile)
		} else {
			st = memory.New()
			f.logger.Info("Initialized empty memory backend")
		}
		return &Result{Store: st, Cleanup: st.Close}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}
