package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the configuration for the breed assistant service
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Corpus  CorpusConfig  `yaml:"corpus"`
	Search  SearchConfig  `yaml:"search"`
	LLM     LLMConfig     `yaml:"llm"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// CorpusConfig describes where the breed records come from
type CorpusConfig struct {
	Path          string        `yaml:"path"`
	URL           string        `yaml:"url"`
	StripMarkup   bool          `yaml:"strip_markup"`
	UserAgent     string        `yaml:"user_agent"`
	FetchTimeout  time.Duration `yaml:"fetch_timeout"`
	RespectRobots bool          `yaml:"respect_robots"`
}

// SearchConfig holds retrieval settings
type SearchConfig struct {
	TopK          int                `yaml:"top_k"`
	TextFields    []string           `yaml:"text_fields"`
	KeywordFields []string           `yaml:"keyword_fields"`
	Boosts        map[string]float64 `yaml:"boosts"`
}

type LLMConfig struct {
	Provider string        `yaml:"provider"`
	BaseURL  string        `yaml:"base_url"`
	Model    string        `yaml:"model"`
	APIKey   string        `yaml:"api_key"`
	Timeout  time.Duration `yaml:"timeout"`

	// Generation limits, 0 disables
	MaxConcurrency int           `yaml:"max_concurrency"`
	MinInterval    time.Duration `yaml:"min_interval"`
}

// StorageConfig selects the conversation storage backend
type StorageConfig struct {
	Driver string `yaml:"driver"` // file, sqlite
	Dir    string `yaml:"dir"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text, json
}

var defaultTextFields = []string{
	"breed_name", "history", "health", "description",
	"characteristics", "appearance", "temperament",
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":5000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    90 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Corpus: CorpusConfig{
			Path:          "../data/rag_dataset.csv",
			UserAgent:     "PawfectMate-Corpus/1.0",
			FetchTimeout:  30 * time.Second,
			RespectRobots: true,
		},
		Search: SearchConfig{
			TopK:          5,
			TextFields:    append([]string(nil), defaultTextFields...),
			KeywordFields: []string{"id"},
		},
		LLM: LLMConfig{
			Provider: "ollama",
			Model:    "qwen3:1.7b",
			Timeout:  60 * time.Second,

			MaxConcurrency: 2,
		},
		Storage: StorageConfig{
			Driver: "file",
			Dir:    "./data",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from environment variables with defaults.
// When CONFIG_FILE is set the YAML file is applied first and the environment
// still wins.
func Load() (*Config, error) {
	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads a YAML configuration on top of the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.mergeFile(path); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Addr = GetStringEnv("SERVER_ADDR", c.Server.Addr)
	c.Server.ReadTimeout = GetDurationEnv("SERVER_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = GetDurationEnv("SERVER_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.ShutdownTimeout = GetDurationEnv("SERVER_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)

	c.Corpus.Path = GetStringEnv("DATA_PATH", c.Corpus.Path)
	c.Corpus.URL = GetStringEnv("CORPUS_URL", c.Corpus.URL)
	c.Corpus.StripMarkup = GetBoolEnv("CORPUS_STRIP_MARKUP", c.Corpus.StripMarkup)
	c.Corpus.UserAgent = GetStringEnv("CORPUS_USER_AGENT", c.Corpus.UserAgent)
	c.Corpus.FetchTimeout = GetDurationEnv("CORPUS_FETCH_TIMEOUT", c.Corpus.FetchTimeout)
	c.Corpus.RespectRobots = GetBoolEnv("CORPUS_RESPECT_ROBOTS", c.Corpus.RespectRobots)

	c.Search.TopK = GetIntEnv("SEARCH_TOP_K", c.Search.TopK)
	c.Search.TextFields = GetListEnv("SEARCH_TEXT_FIELDS", c.Search.TextFields)
	c.Search.KeywordFields = GetListEnv("SEARCH_KEYWORD_FIELDS", c.Search.KeywordFields)
	c.Search.Boosts = GetWeightsEnv("SEARCH_FIELD_BOOSTS", c.Search.Boosts)

	c.LLM.Provider = GetStringEnv("LLM_PROVIDER", c.LLM.Provider)
	c.LLM.BaseURL = GetStringEnv("LLM_BASE_URL", c.LLM.BaseURL)
	c.LLM.Model = GetStringEnv("LLM_MODEL", c.LLM.Model)
	c.LLM.APIKey = GetStringEnv("LLM_API_KEY", c.LLM.APIKey)
	c.LLM.Timeout = GetDurationEnv("LLM_TIMEOUT", c.LLM.Timeout)
	c.LLM.MaxConcurrency = GetIntEnv("LLM_MAX_CONCURRENCY", c.LLM.MaxConcurrency)
	c.LLM.MinInterval = GetDurationEnv("LLM_MIN_INTERVAL", c.LLM.MinInterval)

	c.Storage.Driver = GetStringEnv("STORAGE_DRIVER", c.Storage.Driver)
	c.Storage.Dir = GetStringEnv("STORAGE_DIR", c.Storage.Dir)

	c.Log.Level = GetStringEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = GetStringEnv("LOG_FORMAT", c.Log.Format)
}

// Validate rejects settings the service cannot start with
func (c *Config) Validate() error {
	if c.Corpus.Path == "" {
		return fmt.Errorf("corpus path is required")
	}
	if c.Search.TopK <= 0 {
		return fmt.Errorf("search top_k must be positive, got %d", c.Search.TopK)
	}
	if len(c.Search.TextFields) == 0 {
		return fmt.Errorf("at least one search text field is required")
	}
	for field, weight := range c.Search.Boosts {
		if !isFinite(weight) {
			return fmt.Errorf("search boost for %s must be finite", field)
		}
	}
	switch c.Storage.Driver {
	case "file", "sqlite":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

func GetStringEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func GetBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func GetDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// GetListEnv reads a comma separated list, e.g. "breed_name,history".
func GetListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var list []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	if len(list) == 0 {
		return defaultValue
	}
	return list
}

// GetWeightsEnv reads "field=weight" pairs, e.g. "breed_name=3,temperament=1.5".
// The whole value is ignored if any pair is malformed.
func GetWeightsEnv(key string, defaultValue map[string]float64) map[string]float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	weights, err := ParseWeights(value)
	if err != nil {
		return defaultValue
	}
	return weights
}

// ParseWeights parses comma separated "field=weight" pairs.
func ParseWeights(value string) (map[string]float64, error) {
	weights := make(map[string]float64)
	for _, pair := range strings.Split(value, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		field, raw, ok := strings.Cut(pair, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid weight %q, expected field=weight", pair)
		}
		weight, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid weight for %s: %w", field, err)
		}
		if !isFinite(weight) {
			return nil, fmt.Errorf("invalid weight for %s: must be finite", field)
		}
		weights[field] = weight
	}
	return weights, nil
}

func isFinite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}
