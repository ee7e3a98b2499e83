// Package container wires the application's dependencies: logging,
// configuration, LLM client selection with a reachability probe, the
// category store, and the processor variant.
package container

import (
	"context"
	"time"

	"finlens/statement-pipeline/internal/config"
	"finlens/statement-pipeline/internal/llm"
	"finlens/statement-pipeline/internal/logging"
	"finlens/statement-pipeline/internal/pdftable"
	"finlens/statement-pipeline/internal/processor"
	"finlens/statement-pipeline/internal/store"
)

const pingTimeout = 5 * time.Second

// Container holds the application's wired services.
type Container struct {
	Config       *config.Config
	Logger       logging.Logger
	Categories   *store.CategoryStore
	Client       llm.Client
	Processor    processor.DataProcessor
	PDFExtractor pdftable.Extractor
}

// NewContainer wires all services from configuration. The LLM client is
// chosen by provider and probed; when no backend answers, or LLM use is
// disabled, the rule-based processor takes its place.
func NewContainer(cfg *config.Config) *Container {
	logger := logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	logging.SetDefaultLogger(logger)

	client := buildClient(cfg, logger)
	return newContainer(cfg, logger, client)
}

// NewContainerWithClient wires the container around a caller-supplied LLM
// client. Tests use this to drive the pipeline with scripted responses.
func NewContainerWithClient(cfg *config.Config, client llm.Client, logger logging.Logger) *Container {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return newContainer(cfg, logger, client)
}

func newContainer(cfg *config.Config, logger logging.Logger, client llm.Client) *Container {
	categoriesPath := cfg.Storage.CategoriesFile
	if found := store.FindConfigFile(categoriesPath); found != "" {
		categoriesPath = found
	}
	categories := store.NewCategoryStore(categoriesPath, logger)

	c := &Container{
		Config:       cfg,
		Logger:       logger,
		Categories:   categories,
		Client:       client,
		PDFExtractor: pdftable.NewPopplerExtractor(logger),
	}
	c.Processor = c.selectProcessor()
	return c
}

// buildClient constructs the configured LLM client, or nil when LLM use is
// disabled or the provider cannot be constructed.
func buildClient(cfg *config.Config, logger logging.Logger) llm.Client {
	if !cfg.LLM.Enabled {
		logger.Info("LLM processing disabled by configuration")
		return nil
	}

	switch cfg.LLM.Provider {
	case "gemini":
		if cfg.LLM.APIKey == "" {
			logger.Warn("Gemini provider selected but no API key is set")
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		defer cancel()
		client, err := llm.NewGeminiClient(ctx, cfg.LLM.APIKey, cfg.LLM.Model, logger)
		if err != nil {
			logger.WithError(err).Warn("Failed to create Gemini client")
			return nil
		}
		return client
	default:
		timeout := time.Duration(cfg.LLM.TimeoutSeconds) * time.Second
		return llm.NewOllamaClient(cfg.LLM.BaseURL, cfg.LLM.Model, timeout, logger)
	}
}

// selectProcessor probes the LLM backend and picks the pipeline variant.
func (c *Container) selectProcessor() processor.DataProcessor {
	if c.Client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		defer cancel()
		if err := c.Client.Ping(ctx); err == nil {
			c.Logger.WithField("provider", c.Config.LLM.Provider).Info("LLM backend reachable, using AI processor")
			return processor.NewAIProcessor(c.Client, c.Categories, c.Logger,
				processor.WithSampleSizes(
					c.Config.Pipeline.HeadSampleSize,
					c.Config.Pipeline.RandomSampleSize,
					c.Config.Pipeline.TailSampleSize,
				),
				processor.WithBatchSize(c.Config.Pipeline.BatchSize),
				processor.WithMaxRetries(c.Config.Pipeline.MaxRetries),
			)
		} else {
			c.Logger.WithError(err).Warn("LLM backend unreachable, falling back to rule-based processing")
		}
	}
	return processor.NewRuleBasedProcessor(c.Categories, c.Logger)
}

// OpenTransactionStore opens the configured SQLite database.
func (c *Container) OpenTransactionStore() (*store.TransactionStore, error) {
	return store.OpenTransactionStore(c.Config.Storage.DatabasePath, c.Logger)
}
