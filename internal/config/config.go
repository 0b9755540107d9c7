package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/docex-labs/stakeholder-cli/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	OpenAI     OpenAIConfig     `yaml:"openai" mapstructure:"openai"`
	Ollama     OllamaConfig     `yaml:"ollama" mapstructure:"ollama"`
	Extraction ExtractionConfig `yaml:"extraction" mapstructure:"extraction"`
	Query      QueryConfig      `yaml:"query" mapstructure:"query"`
	Vector     VectorConfig     `yaml:"vector" mapstructure:"vector"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the graph and document database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	SonnetModel string `yaml:"sonnet_model" mapstructure:"sonnet_model"`
	HaikuModel  string `yaml:"haiku_model" mapstructure:"haiku_model"`
}

// OpenAIConfig holds OpenAI-compatible API settings. DeepSeek and other
// providers that speak the chat completions protocol share this block.
type OpenAIConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// OllamaConfig holds local model server settings.
type OllamaConfig struct {
	BaseURL      string `yaml:"base_url" mapstructure:"base_url"`
	DefaultModel string `yaml:"default_model" mapstructure:"default_model"`
}

// ExtractionConfig configures fallback chain behavior.
type ExtractionConfig struct {
	AttemptTimeoutSecs int     `yaml:"attempt_timeout_secs" mapstructure:"attempt_timeout_secs"`
	RequestsPerSecond  float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Preference         string  `yaml:"preference" mapstructure:"preference"`
}

// QueryConfig configures the hybrid query orchestrator.
type QueryConfig struct {
	TopK            int     `yaml:"top_k" mapstructure:"top_k"`
	SimilarityFloor float64 `yaml:"similarity_floor" mapstructure:"similarity_floor"`
	VocabPath       string  `yaml:"vocab_path" mapstructure:"vocab_path"`
	AnswerProvider  string  `yaml:"answer_provider" mapstructure:"answer_provider"`
	AnswerModel     string  `yaml:"answer_model" mapstructure:"answer_model"`
}

// VectorConfig configures the semantic document index.
type VectorConfig struct {
	Path              string `yaml:"path" mapstructure:"path"`
	Collection        string `yaml:"collection" mapstructure:"collection"`
	EmbeddingProvider string `yaml:"embedding_provider" mapstructure:"embedding_provider"`
	EmbeddingModel    string `yaml:"embedding_model" mapstructure:"embedding_model"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("STAKEHOLDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "stakeholders.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("anthropic.sonnet_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.haiku_model", "claude-haiku-4-5-20251001")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("ollama.base_url", "http://localhost:11434")
	v.SetDefault("ollama.default_model", "llama3.1:8b-instruct-q8_0")
	v.SetDefault("extraction.attempt_timeout_secs", 90)
	v.SetDefault("extraction.requests_per_second", 2.0)
	v.SetDefault("extraction.preference", "quality")
	v.SetDefault("query.top_k", 5)
	v.SetDefault("query.similarity_floor", 0.5)
	v.SetDefault("query.answer_provider", "ollama")
	v.SetDefault("query.answer_model", "llama3.1:8b-instruct-q8_0")
	v.SetDefault("vector.path", "vectors")
	v.SetDefault("vector.collection", "documents")
	v.SetDefault("vector.embedding_provider", "ollama")
	v.SetDefault("vector.embedding_model", "nomic-embed-text")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the configuration is usable for the given mode.
// Modes: "extract" (LLM extraction), "ask" (hybrid query), "serve" (HTTP API).
func (c *Config) Validate(mode string) error {
	var problems []string

	switch c.Store.Driver {
	case "sqlite":
		if c.Store.SQLitePath == "" {
			problems = append(problems, "store.sqlite_path is required for the sqlite driver")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required for the postgres driver")
		}
	default:
		problems = append(problems, "store.driver must be sqlite or postgres")
	}

	switch mode {
	case "extract":
		problems = append(problems, c.validateExtraction()...)
	case "ask":
		problems = append(problems, c.validateQuery()...)
	case "serve":
		problems = append(problems, c.validateExtraction()...)
		problems = append(problems, c.validateQuery()...)
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			problems = append(problems, "server.port must be > 0 and <= 65535")
		}
	case "ingest":
		// Store checks above are enough.
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) validateExtraction() []string {
	var problems []string
	if c.Extraction.AttemptTimeoutSecs <= 0 {
		problems = append(problems, "extraction.attempt_timeout_secs must be > 0")
	}
	if c.Extraction.RequestsPerSecond <= 0 {
		problems = append(problems, "extraction.requests_per_second must be > 0")
	}
	if !model.ValidPreference(model.Preference(c.Extraction.Preference)) {
		problems = append(problems, "extraction.preference must be cost, quality, speed, or privacy")
	}
	return problems
}

func (c *Config) validateQuery() []string {
	var problems []string
	if c.Query.TopK < 1 || c.Query.TopK > 50 {
		problems = append(problems, "query.top_k must be between 1 and 50")
	}
	if c.Query.SimilarityFloor < 0 || c.Query.SimilarityFloor > 1 {
		problems = append(problems, "query.similarity_floor must be between 0 and 1")
	}
	switch c.Query.AnswerProvider {
	case "ollama", "openai":
	default:
		problems = append(problems, fmt.Sprintf("query.answer_provider %q is not one of: ollama, openai", c.Query.AnswerProvider))
	}
	return problems
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
