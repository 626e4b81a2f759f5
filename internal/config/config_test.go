package config_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawfect-mate/backend/internal/config"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, ":5000", cfg.Server.Addr)
	assert.Equal(t, "../data/rag_dataset.csv", cfg.Corpus.Path)
	assert.Equal(t, 5, cfg.Search.TopK)
	assert.Len(t, cfg.Search.TextFields, 7)
	assert.Equal(t, []string{"id"}, cfg.Search.KeywordFields)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, 2, cfg.LLM.MaxConcurrency)
	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":9090")
	t.Setenv("DATA_PATH", "/srv/breeds.csv")
	t.Setenv("SEARCH_TOP_K", "3")
	t.Setenv("SEARCH_TEXT_FIELDS", "breed_name, temperament ,")
	t.Setenv("SEARCH_FIELD_BOOSTS", "breed_name=2.5")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("LLM_TIMEOUT", "5s")
	t.Setenv("LLM_MAX_CONCURRENCY", "1")
	t.Setenv("LLM_MIN_INTERVAL", "250ms")
	t.Setenv("CORPUS_RESPECT_ROBOTS", "false")
	t.Setenv("STORAGE_DRIVER", "sqlite")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "/srv/breeds.csv", cfg.Corpus.Path)
	assert.Equal(t, 3, cfg.Search.TopK)
	assert.Equal(t, []string{"breed_name", "temperament"}, cfg.Search.TextFields)
	assert.Equal(t, map[string]float64{"breed_name": 2.5}, cfg.Search.Boosts)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 1, cfg.LLM.MaxConcurrency)
	assert.Equal(t, 250*time.Millisecond, cfg.LLM.MinInterval)
	assert.False(t, cfg.Corpus.RespectRobots)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
}

func TestLoadIgnoresMalformedEnv(t *testing.T) {
	t.Setenv("SEARCH_TOP_K", "many")
	t.Setenv("LLM_TIMEOUT", "soon")
	t.Setenv("SEARCH_FIELD_BOOSTS", "breed_name=heavy")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Search.TopK)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.Nil(t, cfg.Search.Boosts)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("SEARCH_TOP_K", "0")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":7000"
corpus:
  path: ./breeds.csv
  strip_markup: true
search:
  top_k: 10
  boosts:
    breed_name: 3
    temperament: 1.5
llm:
  provider: openai
  model: gpt-4o-mini
  timeout: 30s
storage:
  driver: sqlite
  dir: /var/lib/pawfect
`), 0644))

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "./breeds.csv", cfg.Corpus.Path)
	assert.True(t, cfg.Corpus.StripMarkup)
	assert.Equal(t, 10, cfg.Search.TopK)
	assert.Equal(t, map[string]float64{"breed_name": 3, "temperament": 1.5}, cfg.Search.Boosts)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "/var/lib/pawfect", cfg.Storage.Dir)
	// Untouched sections keep their defaults.
	assert.Len(t, cfg.Search.TextFields, 7)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search:\n  top_k: 10\nserver:\n  addr: \":7000\"\n"), 0644))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SERVER_ADDR", ":8000")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Search.TopK)
	assert.Equal(t, ":8000", cfg.Server.Addr)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := config.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search: [unclosed"), 0644))
	_, err = config.LoadFile(path)
	assert.Error(t, err)

	path = filepath.Join(t.TempDir(), "invalid.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  driver: postgres\n"), 0644))
	_, err = config.LoadFile(path)
	assert.Error(t, err)
}

func TestParseWeights(t *testing.T) {
	weights, err := config.ParseWeights("breed_name=3, temperament = 1.5,")
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"breed_name": 3, "temperament": 1.5}, weights)

	weights, err = config.ParseWeights("")
	require.NoError(t, err)
	assert.Empty(t, weights)

	_, err = config.ParseWeights("breed_name")
	assert.Error(t, err)

	_, err = config.ParseWeights("=2")
	assert.Error(t, err)

	_, err = config.ParseWeights("breed_name=x")
	assert.Error(t, err)

	for _, weight := range []string{"Inf", "+Inf", "-Inf", "NaN"} {
		_, err = config.ParseWeights("breed_name=" + weight)
		assert.Error(t, err, weight)
	}
}

func TestLoadIgnoresNonFiniteBoostEnv(t *testing.T) {
	t.Setenv("SEARCH_FIELD_BOOSTS", "breed_name=Inf")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Nil(t, cfg.Search.Boosts)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Config)
	}{
		{"empty corpus path", func(c *config.Config) { c.Corpus.Path = "" }},
		{"negative top k", func(c *config.Config) { c.Search.TopK = -1 }},
		{"no text fields", func(c *config.Config) { c.Search.TextFields = nil }},
		{"unknown storage", func(c *config.Config) { c.Storage.Driver = "redis" }},
		{"unknown log format", func(c *config.Config) { c.Log.Format = "xml" }},
		{"infinite boost", func(c *config.Config) { c.Search.Boosts = map[string]float64{"history": math.Inf(1)} }},
		{"NaN boost", func(c *config.Config) { c.Search.Boosts = map[string]float64{"history": math.NaN()} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
