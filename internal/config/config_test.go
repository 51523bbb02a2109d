package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	if cfg.Chunking.MaxChars != 1200 {
		t.Errorf("expected max_chars 1200, got %d", cfg.Chunking.MaxChars)
	}
	if cfg.Chunking.OverlapChars != 150 {
		t.Errorf("expected overlap_chars 150, got %d", cfg.Chunking.OverlapChars)
	}
	if !cfg.Chunking.SentenceSplit {
		t.Error("expected sentence_split enabled by default")
	}
	if cfg.Embedding.Dimensions != 768 {
		t.Errorf("expected 768, got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Database.Backend != "sqlite" {
		t.Errorf("expected sqlite, got %s", cfg.Database.Backend)
	}
	if cfg.Retrieval.TopK != 5 {
		t.Errorf("expected top_k 5, got %d", cfg.Retrieval.TopK)
	}
}

func TestLoadFromTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.toml")
	os.WriteFile(path, []byte(`
[chunking]
max_chars = 800
overlap_chars = 100

[llm]
base_url = "http://gpu-box:11434"
model = "mistral"
`), 0644)

	cfg := Load(path)
	if cfg.Chunking.MaxChars != 800 {
		t.Errorf("expected 800, got %d", cfg.Chunking.MaxChars)
	}
	if cfg.LLM.Model != "mistral" {
		t.Errorf("expected mistral, got %s", cfg.LLM.Model)
	}
	// Defaults preserved
	if cfg.Embedding.Model != "nomic-embed-text" {
		t.Errorf("default should be preserved, got %s", cfg.Embedding.Model)
	}
	if cfg.Database.Backend != "sqlite" {
		t.Errorf("default should be preserved, got %s", cfg.Database.Backend)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("LECTERN_LLM_MODEL", "env-model")
	t.Setenv("LECTERN_DB_BACKEND", "postgres")
	t.Setenv("LECTERN_POSTGRES_URL", "postgres://localhost/lectern")
	t.Setenv("LECTERN_EMBEDDING_DIMENSIONS", "1024")

	cfg := Load("/nonexistent/path.toml")
	if cfg.LLM.Model != "env-model" {
		t.Errorf("expected env-model, got %s", cfg.LLM.Model)
	}
	if cfg.Database.Backend != "postgres" {
		t.Errorf("expected postgres, got %s", cfg.Database.Backend)
	}
	if cfg.Database.PostgresURL != "postgres://localhost/lectern" {
		t.Errorf("unexpected postgres url %s", cfg.Database.PostgresURL)
	}
	if cfg.Embedding.Dimensions != 1024 {
		t.Errorf("expected 1024, got %d", cfg.Embedding.Dimensions)
	}
}

func TestEmbeddingBaseURLFallback(t *testing.T) {
	t.Setenv("LECTERN_LLM_BASE_URL", "http://gpu-box:11434")

	cfg := Load("/nonexistent/path.toml")
	if cfg.Embedding.BaseURL != "http://gpu-box:11434" {
		t.Errorf("expected embedding base URL to follow LLM, got %s", cfg.Embedding.BaseURL)
	}

	t.Setenv("LECTERN_EMBEDDING_BASE_URL", "http://embed-box:11434")
	cfg = Load("/nonexistent/path.toml")
	if cfg.Embedding.BaseURL != "http://embed-box:11434" {
		t.Errorf("explicit embedding base URL should win, got %s", cfg.Embedding.BaseURL)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}

	bad := Default()
	bad.Chunking.MaxChars = 0
	if err := bad.Validate(); err == nil {
		t.Error("expected error for zero max_chars")
	}

	bad = Default()
	bad.Database.Backend = "mysql"
	if err := bad.Validate(); err == nil {
		t.Error("expected error for unknown backend")
	}

	bad = Default()
	bad.Database.Path = ""
	if err := bad.Validate(); err == nil {
		t.Error("expected error for sqlite without path")
	}

	bad = Default()
	bad.Database.Backend = "postgres"
	if err := bad.Validate(); err == nil {
		t.Error("expected error for postgres without url")
	}

	bad = Default()
	bad.Embedding.Dimensions = 0
	if err := bad.Validate(); err == nil {
		t.Error("expected error for zero dimensions")
	}
}
