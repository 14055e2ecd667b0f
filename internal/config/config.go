package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/localrivet/configurator"
)

// Config represents the SummaRead configuration
type Config struct {
	// Remote holds the endpoints and credential of the hosted models.
	Remote struct {
		// APIToken is the bearer credential sent to every remote endpoint.
		APIToken string `json:"api_token" env:"API_TOKEN"`

		// ChatURL is the base URL of the OpenAI-compatible chat completion API.
		ChatURL string `json:"chat_url" env:"CHAT_URL" validate:"required"`

		// ChatModel is the instruction-following model used for headings and key facts.
		ChatModel string `json:"chat_model" env:"CHAT_MODEL" validate:"required"`

		// SummarizationURL is the sequence-to-sequence summarization endpoint.
		SummarizationURL string `json:"summarization_url" env:"SUMMARIZATION_URL" validate:"required"`

		// EmbeddingURL is the sentence embedding endpoint.
		EmbeddingURL string `json:"embedding_url" env:"EMBEDDING_URL" validate:"required"`

		// Timeout bounds every remote call.
		Timeout time.Duration `json:"timeout" env:"REMOTE_TIMEOUT"`
	} `json:"remote"`

	// Tokenizer selects the token counter used by the body summarizer.
	Tokenizer struct {
		// Path is the location of a tokenizer.json; empty selects whitespace tokens.
		Path string `json:"path" env:"TOKENIZER_PATH"`
	} `json:"tokenizer"`

	// Pipeline contains summarization pipeline tuning.
	Pipeline struct {
		ChunkConcurrency int           `json:"chunk_concurrency" env:"CHUNK_CONCURRENCY" validate:"min:1"`
		TaskConcurrency  int           `json:"task_concurrency" env:"TASK_CONCURRENCY" validate:"min:1"`
		MinWords         int           `json:"min_words" env:"MIN_WORDS" validate:"min:1"`
		CacheCapacity    int           `json:"cache_capacity" env:"CACHE_CAPACITY"`
		CacheTTL         time.Duration `json:"cache_ttl" env:"CACHE_TTL"`
	} `json:"pipeline"`

	// Embedder contains embedding-related configuration.
	Embedder struct {
		// Provider is "hf" for the remote endpoint or "mock" for offline use.
		Provider string `json:"provider" env:"EMBEDDER_PROVIDER" validate:"required"`

		// Dimensions is the number of dimensions for mock embeddings.
		Dimensions int `json:"dimensions" env:"EMBEDDER_DIMENSIONS" validate:"min:1"`
	} `json:"embedder"`

	// Store contains session storage configuration.
	Store struct {
		// Driver is "sqlite" or "redis".
		Driver        string        `json:"driver" env:"STORE_DRIVER" validate:"required"`
		SQLitePath    string        `json:"sqlite_path" env:"SQLITE_PATH"`
		RedisAddr     string        `json:"redis_addr" env:"REDIS_ADDR"`
		RedisPassword string        `json:"redis_password" env:"REDIS_PASSWORD"`
		RedisDB       int           `json:"redis_db" env:"REDIS_DB"`
		SessionTTL    time.Duration `json:"session_ttl" env:"SESSION_TTL"`
	} `json:"store"`

	// HTTP configures the JSON API. An empty address disables it.
	HTTP struct {
		Addr string `json:"addr" env:"HTTP_ADDR"`
	} `json:"http"`

	// PDF holds the unipdf license key used for reading and writing PDFs.
	PDF struct {
		LicenseKey string `json:"license_key" env:"PDF_LICENSE_KEY"`
	} `json:"pdf"`

	// Logging contains logging-related configuration.
	Logging struct {
		// Level is the minimum log level to display ("debug", "info", "warn", "error").
		Level string `json:"level" env:"LOG_LEVEL" validate:"required"`

		// Format is the log format to use ("text", "json").
		Format string `json:"format" env:"LOG_FORMAT"`
	} `json:"logging"`

	configPath string     `json:"-"`
	mutex      sync.Mutex `json:"-"`
}

// Default configuration values
const (
	DefaultConfigFilename   = ".summareadconfig"
	DefaultEnvPrefix        = "SUMMAREAD"
	DefaultChatURL          = "https://router.huggingface.co/v1/"
	DefaultChatModel        = "moonshotai/Kimi-K2-Instruct:novita"
	DefaultSummarizationURL = "https://router.huggingface.co/hf-inference/models/facebook/bart-large-cnn"
	DefaultEmbeddingURL     = "https://router.huggingface.co/hf-inference/models/BAAI/bge-small-en-v1.5/pipeline/feature-extraction"
	DefaultRemoteTimeout    = 60 * time.Second
	DefaultSQLitePath       = ".summaread.db"
	DefaultSessionTTL       = 24 * time.Hour
	DefaultCacheTTL         = time.Hour
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
)

// NewConfig creates a new Config instance with default values
func NewConfig() *Config {
	cfg := &Config{}
	cfg.Remote.ChatURL = DefaultChatURL
	cfg.Remote.ChatModel = DefaultChatModel
	cfg.Remote.SummarizationURL = DefaultSummarizationURL
	cfg.Remote.EmbeddingURL = DefaultEmbeddingURL
	cfg.Remote.Timeout = DefaultRemoteTimeout
	cfg.Pipeline.ChunkConcurrency = 4
	cfg.Pipeline.TaskConcurrency = 4
	cfg.Pipeline.MinWords = 400
	cfg.Pipeline.CacheCapacity = 256
	cfg.Pipeline.CacheTTL = DefaultCacheTTL
	cfg.Embedder.Provider = "hf"
	cfg.Embedder.Dimensions = 384 // bge-small-en-v1.5
	cfg.Store.Driver = "sqlite"
	cfg.Store.SQLitePath = DefaultSQLitePath
	cfg.Store.SessionTTL = DefaultSessionTTL
	cfg.Logging.Level = DefaultLogLevel
	cfg.Logging.Format = DefaultLogFormat
	return cfg
}

// LoadConfig loads the configuration from the default path
func LoadConfig() (*Config, error) {
	return LoadConfigWithPath(DefaultConfigFilename)
}

// LoadConfigWithPath loads the configuration from a specific path. A
// missing file yields the defaults, still overlaid with the environment.
func LoadConfigWithPath(configPath string) (*Config, error) {
	// Logs go to stderr so the stdio MCP transport is never polluted.
	bootLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg := NewConfig()

	if configPath == "" {
		configPath = DefaultConfigFilename
	}
	if configPath == DefaultConfigFilename {
		if foundPath, err := configurator.FindConfigFile(configPath); err == nil {
			configPath = foundPath
			bootLogger.Debug("Found config file", "path", foundPath)
		}
	}

	loader := configurator.New(bootLogger).
		WithProvider(configurator.NewDefaultProvider())

	if _, err := os.Stat(configPath); err == nil {
		bootLogger.Info("Loading configuration", "path", configPath)
		loader = loader.WithProvider(configurator.NewFileProvider(configPath))
	} else {
		bootLogger.Info("Config file not found, using defaults and environment", "path", configPath)
	}

	loader = loader.
		WithProvider(configurator.NewEnvProvider(DefaultEnvPrefix)).
		WithValidator(configurator.NewDefaultValidator())

	if err := loader.Load(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	cfg.configPath = configPath

	return cfg, nil
}

// Validate checks cross-field constraints the struct tags cannot express.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "sqlite":
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("store.sqlite_path is required for the sqlite driver")
		}
	case "redis":
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("store.redis_addr is required for the redis driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	switch c.Embedder.Provider {
	case "hf", "mock":
	default:
		return fmt.Errorf("unknown embedder provider %q", c.Embedder.Provider)
	}

	if c.Remote.Timeout <= 0 {
		return fmt.Errorf("remote.timeout must be positive")
	}
	return nil
}

// SaveToFile writes the configuration as JSON, creating parent directories.
func (c *Config) SaveToFile(path string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := configurator.SaveToFile(c, path, configurator.FormatJSON); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	c.configPath = path
	return nil
}

// GetConfigPath returns the path of the currently loaded configuration file
func (c *Config) GetConfigPath() string {
	return c.configPath
}
