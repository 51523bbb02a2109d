// Package config loads lectern CLI configuration from defaults, an
// optional TOML file, and LECTERN_* environment variables (env wins).
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/lectern-ai/lectern/chunk"
)

type Config struct {
	Chunking  ChunkingConfig  `toml:"chunking"`
	LLM       LLMConfig       `toml:"llm"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Database  DatabaseConfig  `toml:"database"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Observer  ObserverConfig  `toml:"observer"`
}

type ChunkingConfig struct {
	MaxChars      int  `toml:"max_chars"`
	MinChars      int  `toml:"min_chars"`
	OverlapChars  int  `toml:"overlap_chars"`
	SentenceSplit bool `toml:"sentence_split"`
}

type LLMConfig struct {
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
}

type EmbeddingConfig struct {
	BaseURL    string `toml:"base_url"`
	Model      string `toml:"model"`
	Dimensions int    `toml:"dimensions"`
}

type DatabaseConfig struct {
	// Backend is "sqlite" or "postgres".
	Backend     string `toml:"backend"`
	Path        string `toml:"path"`         // sqlite file path
	PostgresURL string `toml:"postgres_url"` // pgx connection string
}

type RetrievalConfig struct {
	TopK int `toml:"top_k"`
}

type ObserverConfig struct {
	Enabled bool `toml:"enabled"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Chunking: ChunkingConfig{
			MaxChars:      1200,
			MinChars:      200,
			OverlapChars:  150,
			SentenceSplit: true,
		},
		LLM:       LLMConfig{Model: "llama3.2"},
		Embedding: EmbeddingConfig{Model: "nomic-embed-text", Dimensions: 768},
		Database:  DatabaseConfig{Backend: "sqlite", Path: "lectern.db"},
		Retrieval: RetrievalConfig{TopK: 5},
	}
}

// Load reads config: defaults -> TOML file -> env vars (env wins).
func Load(path string) Config {
	cfg := Default()

	if path == "" {
		path = "lectern.toml"
	}

	if data, err := os.ReadFile(path); err == nil {
		_ = toml.Unmarshal(data, &cfg)
	}

	// Env overrides
	if v := os.Getenv("LECTERN_LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LECTERN_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LECTERN_EMBEDDING_BASE_URL"); v != "" {
		cfg.Embedding.BaseURL = v
	}
	if v := os.Getenv("LECTERN_EMBEDDING_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}
	if v := os.Getenv("LECTERN_EMBEDDING_DIMENSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Embedding.Dimensions = n
		}
	}
	if v := os.Getenv("LECTERN_DB_BACKEND"); v != "" {
		cfg.Database.Backend = v
	}
	if v := os.Getenv("LECTERN_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("LECTERN_POSTGRES_URL"); v != "" {
		cfg.Database.PostgresURL = v
	}
	if v := os.Getenv("LECTERN_TOP_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Retrieval.TopK = n
		}
	}
	if v := os.Getenv("LECTERN_OBSERVER_ENABLED"); v == "true" || v == "1" {
		cfg.Observer.Enabled = true
	}

	// Embedding defaults follow the LLM endpoint when not set separately.
	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = cfg.LLM.BaseURL
	}

	return cfg
}

// ChunkConfig converts the chunking section to the engine's config type.
func (c Config) ChunkConfig() chunk.Config {
	return chunk.Config{
		MaxChars:      c.Chunking.MaxChars,
		MinChars:      c.Chunking.MinChars,
		OverlapChars:  c.Chunking.OverlapChars,
		SentenceSplit: c.Chunking.SentenceSplit,
	}
}

// Validate checks cross-field constraints that TOML decoding cannot.
func (c Config) Validate() error {
	if err := c.ChunkConfig().Validate(); err != nil {
		return fmt.Errorf("chunking: %w", err)
	}
	switch c.Database.Backend {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database: path required for sqlite backend")
		}
	case "postgres":
		if c.Database.PostgresURL == "" {
			return fmt.Errorf("database: postgres_url required for postgres backend")
		}
	default:
		return fmt.Errorf("database: unknown backend %q", c.Database.Backend)
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding: dimensions must be positive")
	}
	return nil
}
