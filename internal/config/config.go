package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flagKeys maps command-line flag names to the settings they override.
var flagKeys = map[string]string{
	"port":      "APP_SERVER_PORT",
	"log-level": "APP_LOG_LEVEL",
	"corpus":    "CORPUS_PATH",
	"provider":  "SEMANTIC_PROVIDER",
	"threshold": "LEXICAL_FUZZY_THRESHOLD",
	"cache":     "SEMANTIC_CACHE_PATH",
}

type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

const (
	ProviderPython  = "python"
	ProviderGemini  = "gemini"
	ProviderHashing = "hashing"
)

type AppConfig struct {
	Env                Environment
	LogLevel           string
	ServerPort         string
	RawBodyLog         bool
	HttpTimeoutSeconds int
	RateLimitRPS       float64
	RateLimitBurst     int
	AllowedOrigins     []string
}

type CorpusConfig struct {
	// Path to a JSON corpus file; empty selects the embedded corpus.
	Path string
}

type LexicalConfig struct {
	FuzzyThreshold float64
}

type PythonConfig struct {
	ConfigDir              string
	ProcessReadyTimeout    int
	ProcessShutdownTimeout int
	ProcessKillTimeout     int
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type SemanticConfig struct {
	Provider         string
	Model            string
	TimeoutMs        int
	WorkerCount      int
	BatchSize        int
	CachePath        string
	HashingDimension int
	Python           PythonConfig
	Gemini           GeminiConfig
}

type GeoConfig struct {
	CommandCenterLat float64
	CommandCenterLon float64
}

type Config struct {
	App      AppConfig
	Corpus   CorpusConfig
	Lexical  LexicalConfig
	Semantic SemanticConfig
	Geo      GeoConfig
}

// Load reads .env, then the environment, then any of flags that were set
// explicitly. flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	env := parseEnvironment(v.GetString("APP_ENV"))

	logLevel := v.GetString("APP_LOG_LEVEL")
	if logLevel == "" {
		logLevel = defaultLogLevel(env)
	}

	cfg := &Config{
		App: AppConfig{
			Env:                env,
			LogLevel:           logLevel,
			ServerPort:         v.GetString("APP_SERVER_PORT"),
			RawBodyLog:         v.GetBool("APP_RAW_BODY_LOG"),
			HttpTimeoutSeconds: v.GetInt("APP_HTTP_TIMEOUT_SECONDS"),
			RateLimitRPS:       v.GetFloat64("APP_RATE_LIMIT_RPS"),
			RateLimitBurst:     v.GetInt("APP_RATE_LIMIT_BURST"),
			AllowedOrigins:     splitList(v.GetString("APP_ALLOWED_ORIGINS")),
		},
		Corpus: CorpusConfig{
			Path: v.GetString("CORPUS_PATH"),
		},
		Lexical: LexicalConfig{
			FuzzyThreshold: v.GetFloat64("LEXICAL_FUZZY_THRESHOLD"),
		},
		Semantic: SemanticConfig{
			Provider:         strings.ToLower(v.GetString("SEMANTIC_PROVIDER")),
			Model:            v.GetString("SEMANTIC_MODEL_NAME"),
			TimeoutMs:        v.GetInt("SEMANTIC_TIMEOUT_MS"),
			WorkerCount:      v.GetInt("SEMANTIC_WORKER_COUNT"),
			BatchSize:        v.GetInt("SEMANTIC_BATCH_SIZE"),
			CachePath:        v.GetString("SEMANTIC_CACHE_PATH"),
			HashingDimension: v.GetInt("SEMANTIC_HASHING_DIMENSION"),
			Python: PythonConfig{
				ConfigDir:              v.GetString("SEMANTIC_PYTHON_CONFIG_DIR"),
				ProcessReadyTimeout:    v.GetInt("SEMANTIC_PYTHON_PROCESS_READY_TIMEOUT"),
				ProcessShutdownTimeout: v.GetInt("SEMANTIC_PYTHON_PROCESS_SHUTDOWN_TIMEOUT"),
				ProcessKillTimeout:     v.GetInt("SEMANTIC_PYTHON_PROCESS_KILL_TIMEOUT"),
			},
			Gemini: GeminiConfig{
				APIKey: v.GetString("SEMANTIC_GEMINI_API_KEY"),
				Model:  v.GetString("SEMANTIC_GEMINI_MODEL"),
			},
		},
		Geo: GeoConfig{
			CommandCenterLat: v.GetFloat64("GEO_COMMAND_CENTER_LAT"),
			CommandCenterLon: v.GetFloat64("GEO_COMMAND_CENTER_LON"),
		},
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	v.SetDefault("APP_ENV", string(Development))
	v.SetDefault("APP_SERVER_PORT", "5000")
	v.SetDefault("APP_RAW_BODY_LOG", false)
	v.SetDefault("APP_HTTP_TIMEOUT_SECONDS", 30)
	v.SetDefault("APP_RATE_LIMIT_RPS", 20.0)
	v.SetDefault("APP_RATE_LIMIT_BURST", 40)
	v.SetDefault("APP_ALLOWED_ORIGINS", "*")

	v.SetDefault("CORPUS_PATH", "")

	v.SetDefault("LEXICAL_FUZZY_THRESHOLD", 85.0)

	v.SetDefault("SEMANTIC_PROVIDER", ProviderPython)
	v.SetDefault("SEMANTIC_MODEL_NAME", "paraphrase-multilingual-MiniLM-L12-v2")
	v.SetDefault("SEMANTIC_TIMEOUT_MS", 10000)
	v.SetDefault("SEMANTIC_WORKER_COUNT", calculateDefaultWorkerCount())
	v.SetDefault("SEMANTIC_BATCH_SIZE", 32)
	v.SetDefault("SEMANTIC_CACHE_PATH", "")
	v.SetDefault("SEMANTIC_HASHING_DIMENSION", 512)
	v.SetDefault("SEMANTIC_PYTHON_CONFIG_DIR", filepath.Join(homeDir, ".config", "aura"))
	v.SetDefault("SEMANTIC_PYTHON_PROCESS_READY_TIMEOUT", 300)
	v.SetDefault("SEMANTIC_PYTHON_PROCESS_SHUTDOWN_TIMEOUT", 5)
	v.SetDefault("SEMANTIC_PYTHON_PROCESS_KILL_TIMEOUT", 2)
	v.SetDefault("SEMANTIC_GEMINI_MODEL", "text-embedding-004")

	// Chennai International Airport, where the command center sits.
	v.SetDefault("GEO_COMMAND_CENTER_LAT", 13.064)
	v.SetDefault("GEO_COMMAND_CENTER_LON", 80.180)
}

func (c *Config) Validate() error {
	if c.Lexical.FuzzyThreshold < 0 || c.Lexical.FuzzyThreshold > 100 {
		return fmt.Errorf("LEXICAL_FUZZY_THRESHOLD must be within [0, 100], got %v", c.Lexical.FuzzyThreshold)
	}

	switch c.Semantic.Provider {
	case ProviderPython, ProviderHashing:
	case ProviderGemini:
		if c.Semantic.Gemini.APIKey == "" {
			return fmt.Errorf("SEMANTIC_GEMINI_API_KEY is required for the gemini provider")
		}
	default:
		return fmt.Errorf("unknown SEMANTIC_PROVIDER %q", c.Semantic.Provider)
	}

	if c.Semantic.TimeoutMs <= 0 {
		return fmt.Errorf("SEMANTIC_TIMEOUT_MS must be positive")
	}
	if c.Semantic.BatchSize <= 0 {
		return fmt.Errorf("SEMANTIC_BATCH_SIZE must be positive")
	}
	if c.Semantic.WorkerCount <= 0 {
		return fmt.Errorf("SEMANTIC_WORKER_COUNT must be positive")
	}
	if c.Semantic.Provider == ProviderHashing && c.Semantic.HashingDimension <= 0 {
		return fmt.Errorf("SEMANTIC_HASHING_DIMENSION must be positive")
	}
	if c.App.RateLimitRPS < 0 || c.App.RateLimitBurst < 0 {
		return fmt.Errorf("APP_RATE_LIMIT_RPS and APP_RATE_LIMIT_BURST must not be negative")
	}
	if _, err := strconv.Atoi(c.App.ServerPort); err != nil {
		return fmt.Errorf("APP_SERVER_PORT must be numeric: %w", err)
	}
	return nil
}

func parseEnvironment(envStr string) Environment {
	env := Environment(strings.ToLower(envStr))

	switch env {
	case Development, Production:
		return env
	default:
		return Development
	}
}

func calculateDefaultWorkerCount() int {
	cpuCores := runtime.NumCPU()

	// paraphrase-multilingual-MiniLM-L12-v2 needs roughly 500MB per process
	modelMemoryMB := 500

	var availableMemoryMB int64 = 4096

	if memInfo, err := os.ReadFile("/proc/meminfo"); err == nil {
		lines := strings.Split(string(memInfo), "\n")
		for _, line := range lines {
			if strings.HasPrefix(line, "MemTotal:") {
				fields := strings.Fields(line)
				if len(fields) >= 2 {
					if kb, err := strconv.ParseInt(fields[1], 10, 64); err == nil {
						availableMemoryMB = kb / 1024
						break
					}
				}
			}
		}
	}

	workersByCPU := min(cpuCores, 4)

	// leave 2GB for the system and the Go process
	systemReservedMB := 2048
	usableMemoryMB := int(availableMemoryMB) - systemReservedMB
	if usableMemoryMB < 0 {
		usableMemoryMB = 2048
	}

	workersByMemory := max(min(usableMemoryMB/modelMemoryMB, 4), 1)
	return min(max(min(workersByMemory, workersByCPU), 1), 4)
}

func defaultLogLevel(env Environment) string {
	if env == Production {
		return "info"
	}
	return "debug"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
