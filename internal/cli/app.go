package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/wgomg/aura/internal/config"
	"github.com/wgomg/aura/internal/corpus"
	"github.com/wgomg/aura/internal/dispatch"
	"github.com/wgomg/aura/internal/embedstore"
	"github.com/wgomg/aura/internal/lexical"
	"github.com/wgomg/aura/internal/semantic"
	"github.com/wgomg/aura/internal/utils"
)

// app owns everything built at startup; it is read-only once returned.
type app struct {
	cfg     *config.Config
	logger  *utils.Logger
	corpus  *corpus.Corpus
	store   *embedstore.Store
	encoder *semantic.CachedEncoder
	service *dispatch.Service
}

func loadConfig(cmd *cobra.Command) (*config.Config, *utils.Logger, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	var logger *utils.Logger
	if cfg.App.Env == config.Production {
		logger = utils.NewProductionLogger(cfg.App.LogLevel, cfg.App.RawBodyLog)
	} else {
		logger = utils.NewLogger(cfg.App.LogLevel, cfg.App.RawBodyLog)
	}
	return cfg, logger, nil
}

func newApp(ctx context.Context, cfg *config.Config, logger *utils.Logger) (_ *app, err error) {
	a := &app{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	a.corpus, err = corpus.Open(cfg.Corpus.Path)
	if err != nil {
		return nil, err
	}
	logger.Info(nil, "Loaded %d commands from %s corpus", a.corpus.Len(), a.corpus.Source())

	var store semantic.Store
	if cfg.Semantic.CachePath != "" {
		a.store, err = embedstore.Open(cfg.Semantic.CachePath, semantic.ModelName(&cfg.Semantic))
		if err != nil {
			return nil, fmt.Errorf("failed to open embedding cache: %w", err)
		}
		store = a.store
		logger.Info(nil, "Using embedding cache at %s", cfg.Semantic.CachePath)
	}

	a.encoder, err = semantic.NewEncoder(ctx, logger, &cfg.Semantic, store)
	if err != nil {
		return nil, fmt.Errorf("failed to create encoder: %w", err)
	}

	sem, err := semantic.NewMatcher(ctx, logger, a.corpus, a.encoder, semantic.Options{
		BatchSize:   cfg.Semantic.BatchSize,
		Concurrency: cfg.Semantic.WorkerCount,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build semantic index: %w", err)
	}

	lex := lexical.NewMatcher(a.corpus, cfg.Lexical.FuzzyThreshold)
	logger.Info(nil, "Lexical index: %d Tamil phrases, threshold %.1f", lex.Size(), lex.Threshold())

	stats := a.encoder.Stats()
	logger.Debug(nil, "Embedding cache: size=%d hits=%d misses=%d", stats.Size, stats.Hits, stats.Misses)

	timeout := time.Duration(cfg.Semantic.TimeoutMs) * time.Millisecond
	a.service = dispatch.NewService(logger, a.corpus, lex, sem, timeout)
	return a, nil
}

func (a *app) Close() {
	if a.encoder != nil {
		if err := a.encoder.Close(); err != nil {
			a.logger.Error(nil, "Failed to close encoder: %v", err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Error(nil, "Failed to close embedding cache: %v", err)
		}
	}
	a.logger.Sync()
}
