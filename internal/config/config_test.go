package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("APP_LOG_LEVEL", "")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, Development, cfg.App.Env)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, "5000", cfg.App.ServerPort)
	assert.Equal(t, []string{"*"}, cfg.App.AllowedOrigins)
	assert.Equal(t, "", cfg.Corpus.Path)
	assert.Equal(t, 85.0, cfg.Lexical.FuzzyThreshold)
	assert.Equal(t, ProviderPython, cfg.Semantic.Provider)
	assert.Equal(t, "paraphrase-multilingual-MiniLM-L12-v2", cfg.Semantic.Model)
	assert.Positive(t, cfg.Semantic.WorkerCount)
	assert.LessOrEqual(t, cfg.Semantic.WorkerCount, 4)
	assert.Equal(t, 13.064, cfg.Geo.CommandCenterLat)
	assert.Equal(t, 80.180, cfg.Geo.CommandCenterLon)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "PRODUCTION")
	t.Setenv("APP_LOG_LEVEL", "")
	t.Setenv("APP_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("LEXICAL_FUZZY_THRESHOLD", "90.5")
	t.Setenv("SEMANTIC_PROVIDER", "Hashing")
	t.Setenv("SEMANTIC_HASHING_DIMENSION", "256")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, Production, cfg.App.Env)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.App.AllowedOrigins)
	assert.Equal(t, 90.5, cfg.Lexical.FuzzyThreshold)
	assert.Equal(t, ProviderHashing, cfg.Semantic.Provider)
	assert.Equal(t, 256, cfg.Semantic.HashingDimension)
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("APP_SERVER_PORT", "7000")
	t.Setenv("SEMANTIC_PROVIDER", "python")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("port", "", "")
	flags.String("provider", "", "")
	flags.Float64("threshold", 0, "")
	require.NoError(t, flags.Parse([]string{"--provider=hashing"}))

	cfg, err := Load(flags)
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.App.ServerPort, "unset flags leave the environment alone")
	assert.Equal(t, ProviderHashing, cfg.Semantic.Provider)
	assert.Equal(t, 85.0, cfg.Lexical.FuzzyThreshold)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App:     AppConfig{ServerPort: "5000"},
			Lexical: LexicalConfig{FuzzyThreshold: 85},
			Semantic: SemanticConfig{
				Provider:         ProviderHashing,
				TimeoutMs:        1000,
				WorkerCount:      1,
				BatchSize:        8,
				HashingDimension: 64,
			},
		}
	}

	testCases := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "threshold too high", mutate: func(c *Config) { c.Lexical.FuzzyThreshold = 101 }, errMsg: "LEXICAL_FUZZY_THRESHOLD"},
		{name: "threshold negative", mutate: func(c *Config) { c.Lexical.FuzzyThreshold = -1 }, errMsg: "LEXICAL_FUZZY_THRESHOLD"},
		{name: "unknown provider", mutate: func(c *Config) { c.Semantic.Provider = "tfidf" }, errMsg: "SEMANTIC_PROVIDER"},
		{name: "gemini without key", mutate: func(c *Config) { c.Semantic.Provider = ProviderGemini }, errMsg: "SEMANTIC_GEMINI_API_KEY"},
		{name: "gemini with key", mutate: func(c *Config) {
			c.Semantic.Provider = ProviderGemini
			c.Semantic.Gemini.APIKey = "k"
		}},
		{name: "zero timeout", mutate: func(c *Config) { c.Semantic.TimeoutMs = 0 }, errMsg: "SEMANTIC_TIMEOUT_MS"},
		{name: "zero batch", mutate: func(c *Config) { c.Semantic.BatchSize = 0 }, errMsg: "SEMANTIC_BATCH_SIZE"},
		{name: "zero workers", mutate: func(c *Config) { c.Semantic.WorkerCount = 0 }, errMsg: "SEMANTIC_WORKER_COUNT"},
		{name: "zero hashing dimension", mutate: func(c *Config) { c.Semantic.HashingDimension = 0 }, errMsg: "SEMANTIC_HASHING_DIMENSION"},
		{name: "negative rate", mutate: func(c *Config) { c.App.RateLimitRPS = -1 }, errMsg: "APP_RATE_LIMIT"},
		{name: "bad port", mutate: func(c *Config) { c.App.ServerPort = "http" }, errMsg: "APP_SERVER_PORT"},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}
