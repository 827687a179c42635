package semantic

import (
	"context"
	"fmt"

	"github.com/wgomg/aura/internal/config"
	"github.com/wgomg/aura/internal/utils"
)

// NewEncoder builds the encoder named by cfg.Provider, wrapped in an
// in-memory cache. A non-nil store adds persistence underneath the cache.
func NewEncoder(ctx context.Context, logger *utils.Logger, cfg *config.SemanticConfig, store Store) (*CachedEncoder, error) {
	var inner Encoder

	switch cfg.Provider {
	case config.ProviderHashing:
		logger.Info(nil, "Using hashing encoder (dimension %d)", cfg.HashingDimension)
		inner = NewHashingEncoder(cfg.HashingDimension)

	case config.ProviderGemini:
		logger.Info(nil, "Using Gemini encoder %s", cfg.Gemini.Model)
		enc, err := NewGeminiEncoder(ctx, logger, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			return nil, err
		}
		inner = enc

	case config.ProviderPython:
		logger.Info(nil, "Using sentence-transformers encoder %s", cfg.Model)
		pool := NewPythonEncoder(logger, cfg)
		if err := pool.Initialize(ctx); err != nil {
			return nil, fmt.Errorf("failed to initialize python encoder: %w", err)
		}
		if err := pool.HealthCheck(ctx); err != nil {
			_ = pool.Close()
			return nil, fmt.Errorf("python encoder is not healthy: %w", err)
		}
		inner = pool

	default:
		return nil, fmt.Errorf("unknown semantic provider %q", cfg.Provider)
	}

	return NewCachedEncoder(logger, inner, store), nil
}

// ModelName identifies the vectors a provider produces, for keying
// persisted embeddings.
func ModelName(cfg *config.SemanticConfig) string {
	switch cfg.Provider {
	case config.ProviderHashing:
		return fmt.Sprintf("hashing-%d", cfg.HashingDimension)
	case config.ProviderGemini:
		return "gemini/" + cfg.Gemini.Model
	default:
		return "st/" + cfg.Model
	}
}
