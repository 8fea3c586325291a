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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the complete agent configuration
type Config struct {
	// HTTP server configuration
	HTTP HTTPConfig `yaml:"http"`

	// Embedding configuration
	Embedding EmbeddingConfig `yaml:"embedding"`

	// Vector store holding the table metadata
	VectorStore VectorStoreConfig `yaml:"vector_store"`

	// LLM used for SQL synthesis and result summaries
	LLM LLMConfig `yaml:"llm"`

	// Retrieval settings
	Retrieval RetrievalConfig `yaml:"retrieval"`

	// Named databases queries can be executed against
	Databases []DatabaseConfig `yaml:"databases"`

	// Log level: debug, info, warn or error
	LogLevel string `yaml:"log_level"`
}

// HTTPConfig holds HTTP/HTTPS server settings
type HTTPConfig struct {
	Address string    `yaml:"address"`
	TLS     TLSConfig `yaml:"tls"`
}

// TLSConfig holds TLS/HTTPS settings
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// EmbeddingConfig holds embedding generation settings
type EmbeddingConfig struct {
	Provider         string `yaml:"provider"`            // "tei", "openai", or "ollama"
	Model            string `yaml:"model"`               // Provider-specific model name
	MaxTokens        int    `yaml:"max_tokens"`          // Input token ceiling (default: 512)
	OpenAIAPIKey     string `yaml:"openai_api_key"`      // API key for OpenAI (direct - discouraged, use api_key_file or env var)
	OpenAIAPIKeyFile string `yaml:"openai_api_key_file"` // Path to file containing OpenAI API key
	OpenAIBaseURL    string `yaml:"openai_base_url"`     // OpenAI-compatible endpoint (default: public API)
	OllamaURL        string `yaml:"ollama_url"`          // URL for Ollama service (default: http://localhost:11434)
	TEIURL           string `yaml:"tei_url"`             // URL for text-embeddings-inference (default: http://localhost:8080)
}

// VectorStoreConfig holds the similarity index settings
type VectorStoreConfig struct {
	Backend    string `yaml:"backend"`      // "qdrant" or "sqlite"
	Host       string `yaml:"host"`         // Qdrant host
	Port       int    `yaml:"port"`         // Qdrant gRPC port (default: 6334)
	APIKey     string `yaml:"api_key"`      // Qdrant API key (optional)
	APIKeyFile string `yaml:"api_key_file"` // Path to file containing the Qdrant API key
	UseTLS     bool   `yaml:"use_tls"`      // Use TLS for the Qdrant connection
	Path       string `yaml:"path"`         // SQLite index path
	Collection string `yaml:"collection"`   // Collection holding table metadata
}

// LLMConfig holds completion model settings
type LLMConfig struct {
	Provider            string  `yaml:"provider"`               // "azure", "openai", "anthropic", or "ollama"
	Model               string  `yaml:"model"`                  // Provider-specific model name
	AnthropicAPIKey     string  `yaml:"anthropic_api_key"`      // API key for Anthropic (direct - discouraged, use api_key_file or env var instead)
	AnthropicAPIKeyFile string  `yaml:"anthropic_api_key_file"` // Path to file containing Anthropic API key
	OpenAIAPIKey        string  `yaml:"openai_api_key"`         // API key for OpenAI (direct - discouraged, use api_key_file or env var instead)
	OpenAIAPIKeyFile    string  `yaml:"openai_api_key_file"`    // Path to file containing OpenAI API key
	OpenAIBaseURL       string  `yaml:"openai_base_url"`        // OpenAI-compatible endpoint
	AzureAPIKey         string  `yaml:"azure_api_key"`          // API key for Azure OpenAI
	AzureAPIKeyFile     string  `yaml:"azure_api_key_file"`     // Path to file containing Azure OpenAI API key
	AzureEndpoint       string  `yaml:"azure_endpoint"`         // https://<resource>.openai.azure.com
	AzureDeployment     string  `yaml:"azure_deployment"`       // Deployment name
	AzureAPIVersion     string  `yaml:"azure_api_version"`      // API version (default: 2024-08-01-preview)
	OllamaURL           string  `yaml:"ollama_url"`             // URL for Ollama service (default: http://localhost:11434)
	MaxTokens           int     `yaml:"max_tokens"`             // Maximum tokens for LLM response (default: 400)
	Temperature         float64 `yaml:"temperature"`            // Temperature for LLM sampling (default: 0.1)
}

// RetrievalConfig holds metadata retrieval settings
type RetrievalConfig struct {
	Limit int `yaml:"limit"` // Tables retrieved per question (default: 5)
}

// DatabaseConfig describes one named execution target
type DatabaseConfig struct {
	Name     string `yaml:"name"`     // Name used in requests
	Driver   string `yaml:"driver"`   // "oracle" or "postgres"
	URL      string `yaml:"url"`      // Full connection URL; overrides the fields below
	Host     string `yaml:"host"`     // Database host (default: localhost)
	Port     int    `yaml:"port"`     // Database port (default: 1521 for oracle, 5432 for postgres)
	Database string `yaml:"database"` // Oracle service name or Postgres database
	User     string `yaml:"user"`     // Database user
	Password string `yaml:"password"` // Database password
	SSLMode  string `yaml:"sslmode"`  // Postgres SSL mode

	MaxRows      int    `yaml:"max_rows"`      // Row cap per execution (default: 1000)
	AllowWrites  bool   `yaml:"allow_writes"`  // Disable the SELECT/WITH guard
	QueryTimeout string `yaml:"query_timeout"` // Per-statement timeout (default: 30s)

	// Connection pool settings
	PoolMaxConns        int    `yaml:"pool_max_conns"`          // Maximum number of connections (default: 4)
	PoolMaxConnIdleTime string `yaml:"pool_max_conn_idle_time"` // Max time a connection can be idle before being closed (default: 30m)
}

// LoadConfig loads configuration with proper priority:
// 1. Command line flags (highest priority)
// 2. Environment variables (including .env files)
// 3. Configuration file
// 4. Hard-coded defaults (lowest priority)
func LoadConfig(configPath string, cliFlags CLIFlags) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Load config file if it exists
	if configPath != "" {
		fileCfg, err := loadConfigFile(configPath)
		if err != nil {
			// If file was explicitly specified, error out
			if cliFlags.ConfigFileSet {
				return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
			}
		} else {
			mergeConfig(cfg, fileCfg)
		}
	}

	// Override with environment variables
	applyEnvironmentVariables(cfg)

	// Override with command line flags (highest priority)
	applyCLIFlags(cfg, cliFlags)

	applyDatabaseDefaults(cfg)

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadEnvFiles loads .env files into the process environment. Variables
// already set are not overridden. Missing files are ignored.
func LoadEnvFiles(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// CLIFlags represents command line flag values and whether they were explicitly set
type CLIFlags struct {
	ConfigFileSet bool
	ConfigFile    string

	// HTTP flags
	HTTPAddr    string
	HTTPAddrSet bool

	// TLS flags
	TLSEnabled    bool
	TLSEnabledSet bool
	TLSCertFile   string
	TLSCertSet    bool
	TLSKeyFile    string
	TLSKeySet     bool

	// Provider flags
	LLMProvider          string
	LLMProviderSet       bool
	EmbeddingProvider    string
	EmbeddingProviderSet bool

	// Vector store flags
	VectorBackend    string
	VectorBackendSet bool
	Collection       string
	CollectionSet    bool

	// Logging
	LogLevel    string
	LogLevelSet bool
}

// defaultConfig returns configuration with hard-coded defaults
func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address: ":8080",
			TLS: TLSConfig{
				Enabled:  false,
				CertFile: "./server.crt",
				KeyFile:  "./server.key",
			},
		},
		Embedding: EmbeddingConfig{
			Provider:  "tei",
			Model:     "BAAI/bge-small-en",
			MaxTokens: 512,
			OllamaURL: "http://localhost:11434",
			TEIURL:    "http://localhost:8080",
		},
		VectorStore: VectorStoreConfig{
			Backend:    "qdrant",
			Host:       "localhost",
			Port:       6334,
			Collection: "Master_Metadata",
		},
		LLM: LLMConfig{
			Provider:        "azure",
			AzureAPIVersion: "2024-08-01-preview",
			OllamaURL:       "http://localhost:11434",
			MaxTokens:       400,
			Temperature:     0.1,
		},
		Retrieval: RetrievalConfig{
			Limit: 5,
		},
		LogLevel: "",
	}
}

// loadConfigFile loads configuration from a YAML file
func loadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &cfg, nil
}

// mergeConfig merges source config into dest, only overriding non-zero values
func mergeConfig(dest, src *Config) {
	// HTTP
	if src.HTTP.Address != "" {
		dest.HTTP.Address = src.HTTP.Address
	}
	if src.HTTP.TLS.Enabled {
		dest.HTTP.TLS.Enabled = src.HTTP.TLS.Enabled
	}
	if src.HTTP.TLS.CertFile != "" {
		dest.HTTP.TLS.CertFile = src.HTTP.TLS.CertFile
	}
	if src.HTTP.TLS.KeyFile != "" {
		dest.HTTP.TLS.KeyFile = src.HTTP.TLS.KeyFile
	}

	// Embedding
	if src.Embedding.Provider != "" {
		dest.Embedding.Provider = src.Embedding.Provider
		// A provider switch drops the default model of the old provider
		if src.Embedding.Model == "" && src.Embedding.Provider != "tei" {
			dest.Embedding.Model = ""
		}
	}
	if src.Embedding.Model != "" {
		dest.Embedding.Model = src.Embedding.Model
	}
	if src.Embedding.MaxTokens != 0 {
		dest.Embedding.MaxTokens = src.Embedding.MaxTokens
	}
	if src.Embedding.OpenAIAPIKey != "" {
		dest.Embedding.OpenAIAPIKey = src.Embedding.OpenAIAPIKey
	}
	if src.Embedding.OpenAIAPIKeyFile != "" {
		dest.Embedding.OpenAIAPIKeyFile = src.Embedding.OpenAIAPIKeyFile
	}
	if src.Embedding.OpenAIBaseURL != "" {
		dest.Embedding.OpenAIBaseURL = src.Embedding.OpenAIBaseURL
	}
	if src.Embedding.OllamaURL != "" {
		dest.Embedding.OllamaURL = src.Embedding.OllamaURL
	}
	if src.Embedding.TEIURL != "" {
		dest.Embedding.TEIURL = src.Embedding.TEIURL
	}

	// Vector store
	if src.VectorStore.Backend != "" {
		dest.VectorStore.Backend = src.VectorStore.Backend
	}
	if src.VectorStore.Host != "" {
		dest.VectorStore.Host = src.VectorStore.Host
	}
	if src.VectorStore.Port != 0 {
		dest.VectorStore.Port = src.VectorStore.Port
	}
	if src.VectorStore.APIKey != "" {
		dest.VectorStore.APIKey = src.VectorStore.APIKey
	}
	if src.VectorStore.APIKeyFile != "" {
		dest.VectorStore.APIKeyFile = src.VectorStore.APIKeyFile
	}
	if src.VectorStore.UseTLS {
		dest.VectorStore.UseTLS = src.VectorStore.UseTLS
	}
	if src.VectorStore.Path != "" {
		dest.VectorStore.Path = src.VectorStore.Path
	}
	if src.VectorStore.Collection != "" {
		dest.VectorStore.Collection = src.VectorStore.Collection
	}

	// LLM
	if src.LLM.Provider != "" {
		dest.LLM.Provider = src.LLM.Provider
	}
	if src.LLM.Model != "" {
		dest.LLM.Model = src.LLM.Model
	}
	if src.LLM.AnthropicAPIKey != "" {
		dest.LLM.AnthropicAPIKey = src.LLM.AnthropicAPIKey
	}
	if src.LLM.AnthropicAPIKeyFile != "" {
		dest.LLM.AnthropicAPIKeyFile = src.LLM.AnthropicAPIKeyFile
	}
	if src.LLM.OpenAIAPIKey != "" {
		dest.LLM.OpenAIAPIKey = src.LLM.OpenAIAPIKey
	}
	if src.LLM.OpenAIAPIKeyFile != "" {
		dest.LLM.OpenAIAPIKeyFile = src.LLM.OpenAIAPIKeyFile
	}
	if src.LLM.OpenAIBaseURL != "" {
		dest.LLM.OpenAIBaseURL = src.LLM.OpenAIBaseURL
	}
	if src.LLM.AzureAPIKey != "" {
		dest.LLM.AzureAPIKey = src.LLM.AzureAPIKey
	}
	if src.LLM.AzureAPIKeyFile != "" {
		dest.LLM.AzureAPIKeyFile = src.LLM.AzureAPIKeyFile
	}
	if src.LLM.AzureEndpoint != "" {
		dest.LLM.AzureEndpoint = src.LLM.AzureEndpoint
	}
	if src.LLM.AzureDeployment != "" {
		dest.LLM.AzureDeployment = src.LLM.AzureDeployment
	}
	if src.LLM.AzureAPIVersion != "" {
		dest.LLM.AzureAPIVersion = src.LLM.AzureAPIVersion
	}
	if src.LLM.OllamaURL != "" {
		dest.LLM.OllamaURL = src.LLM.OllamaURL
	}
	if src.LLM.MaxTokens != 0 {
		dest.LLM.MaxTokens = src.LLM.MaxTokens
	}
	if src.LLM.Temperature != 0 {
		dest.LLM.Temperature = src.LLM.Temperature
	}

	// Retrieval
	if src.Retrieval.Limit != 0 {
		dest.Retrieval.Limit = src.Retrieval.Limit
	}

	// Databases are replaced as a whole
	if len(src.Databases) > 0 {
		dest.Databases = src.Databases
	}

	if src.LogLevel != "" {
		dest.LogLevel = src.LogLevel
	}
}

// setStringFromEnv sets a string config value from an environment variable if it exists
func setStringFromEnv(dest *string, key string) {
	if val := os.Getenv(key); val != "" {
		*dest = val
	}
}

// setStringFromEnvWithFallback sets a string config value from an environment variable,
// checking multiple environment variable names in priority order
func setStringFromEnvWithFallback(dest *string, keys ...string) {
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			*dest = val
			return
		}
	}
}

// setBoolFromEnv sets a boolean config value from an environment variable if it exists
// Accepts "true", "1", or "yes" as true values
func setBoolFromEnv(dest *bool, key string) {
	if val := os.Getenv(key); val != "" {
		*dest = val == "true" || val == "1" || val == "yes"
	}
}

// setIntFromEnv sets an integer config value from an environment variable if it exists
func setIntFromEnv(dest *int, keys ...string) {
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			var intVal int
			if _, err := fmt.Sscanf(val, "%d", &intVal); err == nil {
				*dest = intVal
				return
			}
		}
	}
}

// setAPIKeyFromFile fills dest from file when no key has been set yet.
// Errors are ignored; the file may not exist.
func setAPIKeyFromFile(dest *string, file string) {
	if *dest != "" || file == "" {
		return
	}
	if key, err := readAPIKeyFromFile(file); err == nil && key != "" {
		*dest = key
	}
}

// applyEnvironmentVariables overrides config with environment variables if they exist.
// Agent settings use the NL2SQL_ prefix; the Qdrant and Azure OpenAI
// variables of the Python agent are honoured too.
func applyEnvironmentVariables(cfg *Config) {
	// HTTP
	setStringFromEnv(&cfg.HTTP.Address, "NL2SQL_HTTP_ADDRESS")
	setBoolFromEnv(&cfg.HTTP.TLS.Enabled, "NL2SQL_TLS_ENABLED")
	setStringFromEnv(&cfg.HTTP.TLS.CertFile, "NL2SQL_TLS_CERT_FILE")
	setStringFromEnv(&cfg.HTTP.TLS.KeyFile, "NL2SQL_TLS_KEY_FILE")

	// Embedding
	setStringFromEnv(&cfg.Embedding.Provider, "NL2SQL_EMBEDDING_PROVIDER")
	setStringFromEnv(&cfg.Embedding.Model, "NL2SQL_EMBEDDING_MODEL")
	setIntFromEnv(&cfg.Embedding.MaxTokens, "NL2SQL_EMBEDDING_MAX_TOKENS")
	// API key loading priority: env vars > api_key_file > direct config value
	setStringFromEnvWithFallback(&cfg.Embedding.OpenAIAPIKey, "NL2SQL_OPENAI_API_KEY", "OPENAI_API_KEY")
	setAPIKeyFromFile(&cfg.Embedding.OpenAIAPIKey, cfg.Embedding.OpenAIAPIKeyFile)
	setStringFromEnv(&cfg.Embedding.OpenAIBaseURL, "NL2SQL_EMBEDDING_BASE_URL")
	setStringFromEnv(&cfg.Embedding.OllamaURL, "NL2SQL_OLLAMA_URL")
	setStringFromEnv(&cfg.Embedding.TEIURL, "NL2SQL_TEI_URL")

	// Vector store
	setStringFromEnv(&cfg.VectorStore.Backend, "NL2SQL_VECTOR_BACKEND")
	setStringFromEnvWithFallback(&cfg.VectorStore.Host, "NL2SQL_QDRANT_HOST", "QDRANT_HOST")
	setIntFromEnv(&cfg.VectorStore.Port, "NL2SQL_QDRANT_PORT", "QDRANT_PORT")
	setStringFromEnvWithFallback(&cfg.VectorStore.APIKey, "NL2SQL_QDRANT_API_KEY", "QDRANT_API_KEY")
	setAPIKeyFromFile(&cfg.VectorStore.APIKey, cfg.VectorStore.APIKeyFile)
	setBoolFromEnv(&cfg.VectorStore.UseTLS, "NL2SQL_QDRANT_USE_TLS")
	setStringFromEnv(&cfg.VectorStore.Path, "NL2SQL_VECTOR_PATH")
	setStringFromEnvWithFallback(&cfg.VectorStore.Collection, "NL2SQL_COLLECTION", "QDRANT_COLLECTION")

	// LLM
	setStringFromEnv(&cfg.LLM.Provider, "NL2SQL_LLM_PROVIDER")
	setStringFromEnv(&cfg.LLM.Model, "NL2SQL_LLM_MODEL")
	setStringFromEnvWithFallback(&cfg.LLM.AnthropicAPIKey, "NL2SQL_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	setAPIKeyFromFile(&cfg.LLM.AnthropicAPIKey, cfg.LLM.AnthropicAPIKeyFile)
	setStringFromEnvWithFallback(&cfg.LLM.OpenAIAPIKey, "NL2SQL_OPENAI_API_KEY", "OPENAI_API_KEY")
	setAPIKeyFromFile(&cfg.LLM.OpenAIAPIKey, cfg.LLM.OpenAIAPIKeyFile)
	setStringFromEnv(&cfg.LLM.OpenAIBaseURL, "NL2SQL_LLM_BASE_URL")
	setStringFromEnvWithFallback(&cfg.LLM.AzureAPIKey, "NL2SQL_AZURE_API_KEY", "AZURE_OPENAI_API_KEY")
	setAPIKeyFromFile(&cfg.LLM.AzureAPIKey, cfg.LLM.AzureAPIKeyFile)
	setStringFromEnvWithFallback(&cfg.LLM.AzureEndpoint, "NL2SQL_AZURE_ENDPOINT", "AZURE_OPENAI_ENDPOINT")
	setStringFromEnvWithFallback(&cfg.LLM.AzureDeployment, "NL2SQL_AZURE_DEPLOYMENT", "AZURE_OPENAI_DEPLOYMENT_NAME")
	setStringFromEnvWithFallback(&cfg.LLM.AzureAPIVersion, "NL2SQL_AZURE_API_VERSION", "AZURE_OPENAI_API_VERSION")
	setStringFromEnv(&cfg.LLM.OllamaURL, "NL2SQL_OLLAMA_URL")
	setIntFromEnv(&cfg.LLM.MaxTokens, "NL2SQL_LLM_MAX_TOKENS")
	// Temperature is a float, but we'll handle it specially
	if val := os.Getenv("NL2SQL_LLM_TEMPERATURE"); val != "" {
		var floatVal float64
		if _, err := fmt.Sscanf(val, "%f", &floatVal); err == nil {
			cfg.LLM.Temperature = floatVal
		}
	}

	// Retrieval
	setIntFromEnv(&cfg.Retrieval.Limit, "NL2SQL_RETRIEVAL_LIMIT")

	// A single database may be defined from the environment
	if url := os.Getenv("NL2SQL_DATABASE_URL"); url != "" {
		db := DatabaseConfig{
			Name:   os.Getenv("NL2SQL_DATABASE_NAME"),
			Driver: os.Getenv("NL2SQL_DATABASE_DRIVER"),
			URL:    url,
		}
		if db.Name == "" {
			db.Name = "default"
		}
		cfg.Databases = append([]DatabaseConfig{db}, removeDatabase(cfg.Databases, db.Name)...)
	}

	setStringFromEnv(&cfg.LogLevel, "NL2SQL_LOG_LEVEL")
}

func removeDatabase(dbs []DatabaseConfig, name string) []DatabaseConfig {
	out := make([]DatabaseConfig, 0, len(dbs))
	for _, db := range dbs {
		if db.Name != name {
			out = append(out, db)
		}
	}
	return out
}

// applyCLIFlags overrides config with CLI flags if they were explicitly set
func applyCLIFlags(cfg *Config, flags CLIFlags) {
	// HTTP
	if flags.HTTPAddrSet {
		cfg.HTTP.Address = flags.HTTPAddr
	}

	// TLS
	if flags.TLSEnabledSet {
		cfg.HTTP.TLS.Enabled = flags.TLSEnabled
	}
	if flags.TLSCertSet {
		cfg.HTTP.TLS.CertFile = flags.TLSCertFile
	}
	if flags.TLSKeySet {
		cfg.HTTP.TLS.KeyFile = flags.TLSKeyFile
	}

	// Providers
	if flags.LLMProviderSet {
		cfg.LLM.Provider = flags.LLMProvider
	}
	if flags.EmbeddingProviderSet {
		cfg.Embedding.Provider = flags.EmbeddingProvider
	}

	// Vector store
	if flags.VectorBackendSet {
		cfg.VectorStore.Backend = flags.VectorBackend
	}
	if flags.CollectionSet {
		cfg.VectorStore.Collection = flags.Collection
	}

	if flags.LogLevelSet {
		cfg.LogLevel = flags.LogLevel
	}
}

// applyDatabaseDefaults fills per-database defaults and infers the driver
// from the URL scheme when it is not set
func applyDatabaseDefaults(cfg *Config) {
	for i := range cfg.Databases {
		db := &cfg.Databases[i]
		if db.Driver == "" {
			db.Driver = driverFromURL(db.URL)
		}
		db.Driver = strings.ToLower(db.Driver)
		if db.Host == "" {
			db.Host = "localhost"
		}
		if db.Port == 0 {
			switch db.Driver {
			case "oracle":
				db.Port = 1521
			case "postgres":
				db.Port = 5432
			}
		}
		if db.MaxRows == 0 {
			db.MaxRows = 1000
		}
		if db.QueryTimeout == "" {
			db.QueryTimeout = "30s"
		}
		if db.PoolMaxConns == 0 {
			db.PoolMaxConns = 4
		}
		if db.PoolMaxConnIdleTime == "" {
			db.PoolMaxConnIdleTime = "30m"
		}
	}
}

func driverFromURL(url string) string {
	switch {
	case strings.HasPrefix(url, "oracle://"):
		return "oracle"
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return "postgres"
	default:
		return ""
	}
}

// validateConfig checks if the configuration is valid
func validateConfig(cfg *Config) error {
	// If HTTPS is enabled, cert and key are required
	if cfg.HTTP.TLS.Enabled {
		if cfg.HTTP.TLS.CertFile == "" {
			return fmt.Errorf("TLS certificate file is required when HTTPS is enabled")
		}
		if cfg.HTTP.TLS.KeyFile == "" {
			return fmt.Errorf("TLS key file is required when HTTPS is enabled")
		}
	}

	switch cfg.VectorStore.Backend {
	case "qdrant":
		if cfg.VectorStore.Host == "" {
			return fmt.Errorf("vector_store.host is required for the qdrant backend")
		}
	case "sqlite":
		if cfg.VectorStore.Path == "" {
			return fmt.Errorf("vector_store.path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("unsupported vector_store.backend: %s (supported: qdrant, sqlite)", cfg.VectorStore.Backend)
	}

	if cfg.Retrieval.Limit <= 0 {
		return fmt.Errorf("retrieval.limit must be greater than 0")
	}

	seen := make(map[string]bool, len(cfg.Databases))
	for i, db := range cfg.Databases {
		if db.Name == "" {
			return fmt.Errorf("databases[%d]: name is required", i)
		}
		if seen[db.Name] {
			return fmt.Errorf("databases[%d]: duplicate name %q", i, db.Name)
		}
		seen[db.Name] = true

		if db.Driver != "oracle" && db.Driver != "postgres" {
			return fmt.Errorf("database %q: unsupported driver %q (supported: oracle, postgres)", db.Name, db.Driver)
		}
		if db.URL == "" && db.User == "" {
			return fmt.Errorf("database %q: user is required when url is not set", db.Name)
		}
		if db.MaxRows < 0 {
			return fmt.Errorf("database %q: max_rows must not be negative", db.Name)
		}
	}

	return nil
}

// readAPIKeyFromFile reads an API key from a file
// Returns the key with whitespace trimmed, or empty string if file doesn't exist or is empty
func readAPIKeyFromFile(filePath string) (string, error) {
	if filePath == "" {
		return "", nil
	}

	// Expand tilde to home directory
	if filePath[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		filePath = filepath.Join(homeDir, filePath[1:])
	}

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return "", nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read API key file %s: %w", filePath, err)
	}

	return strings.TrimSpace(string(data)), nil
}

// GetDefaultConfigPath returns the default config file path
// Searches /etc/nl2sql-agent/ first, then binary directory
func GetDefaultConfigPath(binaryPath string) string {
	systemPath := "/etc/nl2sql-agent/nl2sql-agent.yaml"
	if _, err := os.Stat(systemPath); err == nil {
		return systemPath
	}

	dir := filepath.Dir(binaryPath)
	return filepath.Join(dir, "nl2sql-agent.yaml")
}

// ConfigFileExists checks if a config file exists at the given path
func ConfigFileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// FindDatabase returns the named database configuration, or nil
func (c *Config) FindDatabase(name string) *DatabaseConfig {
	for i := range c.Databases {
		if c.Databases[i].Name == name {
			return &c.Databases[i]
		}
	}
	return nil
}
