/*-------------------------------------------------------------------------
 *
 * pgEdge Natural Language Agent
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.HTTP.Address != ":8080" {
		t.Errorf("Expected default address ':8080', got %s", cfg.HTTP.Address)
	}
	if cfg.HTTP.TLS.Enabled {
		t.Error("Expected TLS to be disabled by default")
	}
	if cfg.Embedding.Provider != "tei" || cfg.Embedding.Model != "BAAI/bge-small-en" {
		t.Errorf("Unexpected embedding defaults: %s/%s", cfg.Embedding.Provider, cfg.Embedding.Model)
	}
	if cfg.Embedding.MaxTokens != 512 {
		t.Errorf("Expected 512 max tokens, got %d", cfg.Embedding.MaxTokens)
	}
	if cfg.VectorStore.Collection != "Master_Metadata" {
		t.Errorf("Expected Master_Metadata collection, got %s", cfg.VectorStore.Collection)
	}
	if cfg.LLM.Temperature != 0.1 || cfg.LLM.MaxTokens != 400 {
		t.Errorf("Unexpected LLM defaults: %v/%d", cfg.LLM.Temperature, cfg.LLM.MaxTokens)
	}
	if cfg.Retrieval.Limit != 5 {
		t.Errorf("Expected retrieval limit 5, got %d", cfg.Retrieval.Limit)
	}
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "agent.yaml", `
http:
  address: ":9090"
embedding:
  provider: ollama
vector_store:
  backend: sqlite
  path: /var/lib/nl2sql/index.db
  collection: Finance_Metadata
llm:
  provider: openai
  model: gpt-4o-mini
  temperature: 0.2
retrieval:
  limit: 8
databases:
  - name: fin
    url: oracle://scott:tiger@db:1521/FINPDB
  - name: reporting
    driver: postgres
    user: report
    database: reports
    max_rows: 50
log_level: debug
`)

	cfg, err := LoadConfig(path, CLIFlags{ConfigFileSet: true, ConfigFile: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HTTP.Address != ":9090" {
		t.Errorf("Expected :9090, got %s", cfg.HTTP.Address)
	}
	if cfg.Embedding.Provider != "ollama" || cfg.Embedding.Model != "" {
		t.Errorf("Expected ollama with provider default model, got %s/%q", cfg.Embedding.Provider, cfg.Embedding.Model)
	}
	if cfg.VectorStore.Backend != "sqlite" || cfg.VectorStore.Collection != "Finance_Metadata" {
		t.Errorf("Unexpected vector store config: %+v", cfg.VectorStore)
	}
	if cfg.LLM.Provider != "openai" || cfg.LLM.Temperature != 0.2 || cfg.LLM.MaxTokens != 400 {
		t.Errorf("Unexpected LLM config: %+v", cfg.LLM)
	}
	if cfg.Retrieval.Limit != 8 {
		t.Errorf("Expected limit 8, got %d", cfg.Retrieval.Limit)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected debug log level, got %s", cfg.LogLevel)
	}

	if len(cfg.Databases) != 2 {
		t.Fatalf("Expected 2 databases, got %d", len(cfg.Databases))
	}
	fin := cfg.FindDatabase("fin")
	if fin == nil || fin.Driver != "oracle" || fin.Port != 1521 || fin.MaxRows != 1000 {
		t.Errorf("Unexpected fin database: %+v", fin)
	}
	reporting := cfg.FindDatabase("reporting")
	if reporting == nil || reporting.Port != 5432 || reporting.MaxRows != 50 || reporting.QueryTimeout != "30s" {
		t.Errorf("Unexpected reporting database: %+v", reporting)
	}
	if cfg.FindDatabase("missing") != nil {
		t.Error("Expected nil for unknown database")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	if _, err := LoadConfig(missing, CLIFlags{}); err != nil {
		t.Errorf("Expected defaults when implicit file is missing, got %v", err)
	}
	if _, err := LoadConfig(missing, CLIFlags{ConfigFileSet: true}); err == nil {
		t.Error("Expected error when explicit file is missing")
	}
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "agent.yaml", `
vector_store:
  host: file-host
  collection: FromFile
llm:
  provider: anthropic
`)

	t.Setenv("QDRANT_HOST", "10.0.0.5")
	t.Setenv("QDRANT_PORT", "6336")
	t.Setenv("QDRANT_COLLECTION", "FromEnv")
	t.Setenv("AZURE_OPENAI_DEPLOYMENT_NAME", "gpt4o-sql")
	t.Setenv("AZURE_OPENAI_ENDPOINT", "https://example.openai.azure.com")
	t.Setenv("NL2SQL_LLM_TEMPERATURE", "0.3")

	cfg, err := LoadConfig(path, CLIFlags{
		ConfigFileSet:  true,
		LLMProvider:    "azure",
		LLMProviderSet: true,
		Collection:     "FromFlag",
		CollectionSet:  true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.VectorStore.Host != "10.0.0.5" || cfg.VectorStore.Port != 6336 {
		t.Errorf("Expected env to override file, got %s:%d", cfg.VectorStore.Host, cfg.VectorStore.Port)
	}
	if cfg.VectorStore.Collection != "FromFlag" {
		t.Errorf("Expected flag to override env, got %s", cfg.VectorStore.Collection)
	}
	if cfg.LLM.Provider != "azure" {
		t.Errorf("Expected flag provider, got %s", cfg.LLM.Provider)
	}
	if cfg.LLM.AzureDeployment != "gpt4o-sql" || cfg.LLM.AzureEndpoint != "https://example.openai.azure.com" {
		t.Errorf("Unexpected Azure settings: %+v", cfg.LLM)
	}
	if cfg.LLM.Temperature != 0.3 {
		t.Errorf("Expected temperature 0.3, got %v", cfg.LLM.Temperature)
	}
}

func TestLoadConfig_APIKeyFile(t *testing.T) {
	dir := t.TempDir()
	keyFile := writeFile(t, dir, "azure.key", "  azure-secret-key\n")
	path := writeFile(t, dir, "agent.yaml", "llm:\n  azure_api_key: direct-value\n  azure_api_key_file: "+keyFile+"\n")

	t.Setenv("NL2SQL_AZURE_API_KEY", "")
	t.Setenv("AZURE_OPENAI_API_KEY", "")

	cfg, err := LoadConfig(path, CLIFlags{ConfigFileSet: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Direct value is kept when no env var is set
	if cfg.LLM.AzureAPIKey != "direct-value" {
		t.Errorf("Expected direct value, got %q", cfg.LLM.AzureAPIKey)
	}

	path = writeFile(t, dir, "agent2.yaml", "llm:\n  azure_api_key_file: "+keyFile+"\n")
	cfg, err = LoadConfig(path, CLIFlags{ConfigFileSet: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LLM.AzureAPIKey != "azure-secret-key" {
		t.Errorf("Expected key from file, got %q", cfg.LLM.AzureAPIKey)
	}

	t.Setenv("AZURE_OPENAI_API_KEY", "env-key")
	cfg, err = LoadConfig(path, CLIFlags{ConfigFileSet: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LLM.AzureAPIKey != "env-key" {
		t.Errorf("Expected env key to win, got %q", cfg.LLM.AzureAPIKey)
	}
}

func TestLoadConfig_DatabaseFromEnv(t *testing.T) {
	t.Setenv("NL2SQL_DATABASE_URL", "postgres://app@localhost/app")

	cfg, err := LoadConfig("", CLIFlags{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	db := cfg.FindDatabase("default")
	if db == nil {
		t.Fatal("Expected default database from environment")
	}
	if db.Driver != "postgres" {
		t.Errorf("Expected driver inferred from URL, got %q", db.Driver)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.VectorStore.Backend = "chroma" }},
		{"sqlite without path", func(c *Config) { c.VectorStore.Backend = "sqlite" }},
		{"zero limit", func(c *Config) { c.Retrieval.Limit = 0 }},
		{"tls without cert", func(c *Config) {
			c.HTTP.TLS.Enabled = true
			c.HTTP.TLS.CertFile = ""
		}},
		{"unnamed database", func(c *Config) {
			c.Databases = []DatabaseConfig{{Driver: "oracle", URL: "oracle://a@b/c"}}
		}},
		{"duplicate database", func(c *Config) {
			c.Databases = []DatabaseConfig{
				{Name: "a", Driver: "oracle", URL: "oracle://a@b/c"},
				{Name: "a", Driver: "oracle", URL: "oracle://a@b/c"},
			}
		}},
		{"unknown driver", func(c *Config) {
			c.Databases = []DatabaseConfig{{Name: "a", Driver: "mysql", URL: "mysql://x"}}
		}},
		{"no url and no user", func(c *Config) {
			c.Databases = []DatabaseConfig{{Name: "a", Driver: "postgres"}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := validateConfig(cfg); err == nil {
				t.Error("Expected validation error")
			}
		})
	}

	if err := validateConfig(defaultConfig()); err != nil {
		t.Errorf("Expected defaults to validate, got %v", err)
	}
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", "NL2SQL_TEST_DOTENV=from-file\nNL2SQL_TEST_PRESET=from-file\n")

	t.Setenv("NL2SQL_TEST_PRESET", "from-env")
	t.Setenv("NL2SQL_TEST_DOTENV", "")
	os.Unsetenv("NL2SQL_TEST_DOTENV")

	if err := LoadEnvFiles(envFile, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv("NL2SQL_TEST_DOTENV"); got != "from-file" {
		t.Errorf("Expected value from .env, got %q", got)
	}
	if got := os.Getenv("NL2SQL_TEST_PRESET"); got != "from-env" {
		t.Errorf("Expected existing env to win, got %q", got)
	}
}
