// Package config provides configuration loading for docvec.
//
// Configuration is an explicit struct constructed once at process start and
// threaded through every component. Nothing reads ambient globals: bucket,
// region, model, and cache paths all live here.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config represents the complete docvec configuration.
type Config struct {
	Version    int              `yaml:"version" json:"version"`
	Storage    StorageConfig    `yaml:"storage" json:"storage"`
	Embeddings EmbeddingsConfig `yaml:"embeddings" json:"embeddings"`
	Extract    ExtractConfig    `yaml:"extract" json:"extract"`
	Checkpoint CheckpointConfig `yaml:"checkpoint" json:"checkpoint"`
	Cache      CacheConfig      `yaml:"cache" json:"cache"`
	Log        LogConfig        `yaml:"log" json:"log"`
}

// StorageConfig configures the remote object storage layout.
type StorageConfig struct {
	// Bucket is the S3 bucket holding both source PDFs and checkpoints.
	Bucket string `yaml:"bucket" json:"bucket"`

	// Region is the AWS region.
	Region string `yaml:"region" json:"region"`

	// Endpoint overrides the S3 endpoint (MinIO, localstack). Empty = AWS.
	Endpoint string `yaml:"endpoint" json:"endpoint"`

	// SourcePrefix is the key prefix under which source PDFs are listed.
	SourcePrefix string `yaml:"source_prefix" json:"source_prefix"`

	// CheckpointPrefix is the key prefix checkpoint files are uploaded under.
	// Each checkpoint overwrites the previous one's files unless
	// checkpoint.keep_history is set.
	CheckpointPrefix string `yaml:"checkpoint_prefix" json:"checkpoint_prefix"`
}

// EmbeddingsConfig configures the embedding provider.
type EmbeddingsConfig struct {
	// Provider selects the backend: "bedrock" (default), "ollama", "static".
	Provider string `yaml:"provider" json:"provider"`

	// Model is the provider model identifier.
	Model string `yaml:"model" json:"model"`

	// Dimensions is the embedding dimension (0 = provider default).
	Dimensions int `yaml:"dimensions" json:"dimensions"`

	// CacheSize is the LRU embedding cache size (entries).
	CacheSize int `yaml:"cache_size" json:"cache_size"`

	// MaxRetries is the retry budget for transient provider failures.
	MaxRetries int `yaml:"max_retries" json:"max_retries"`

	// OllamaHost is the Ollama API endpoint (provider "ollama").
	OllamaHost string `yaml:"ollama_host" json:"ollama_host"`
}

// ExtractConfig configures PDF text extraction.
type ExtractConfig struct {
	// MaxPageTokens truncates a page's text to this many tokens before
	// embedding, mirroring provider input limits. 0 disables truncation.
	MaxPageTokens int `yaml:"max_page_tokens" json:"max_page_tokens"`

	// Encoding is the tiktoken encoding used for truncation.
	Encoding string `yaml:"encoding" json:"encoding"`
}

// CheckpointConfig configures checkpoint cadence and layout.
type CheckpointConfig struct {
	// Every is the number of successfully appended documents between
	// checkpoints. The final document always triggers one.
	Every int `yaml:"every" json:"every"`

	// KeepHistory uploads each run's checkpoints under a timestamped
	// sub-prefix instead of overwriting the fixed prefix.
	KeepHistory bool `yaml:"keep_history" json:"keep_history"`

	// WorkDir is the local directory for the recovered artifact and
	// timestamped checkpoint directories. Stale checkpoint directories
	// accumulate here and are never pruned.
	WorkDir string `yaml:"work_dir" json:"work_dir"`
}

// CacheConfig configures the local source-document cache.
type CacheConfig struct {
	// Dir is the directory fetched PDFs are cached in, keyed by file name.
	// A cached copy is never refreshed, even if the remote object changes.
	Dir string `yaml:"dir" json:"dir"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
}

// Default values.
const (
	DefaultRegion           = "us-east-1"
	DefaultSourcePrefix     = "data/"
	DefaultCheckpointPrefix = "vector-index/"
	DefaultBedrockModel     = "amazon.titan-embed-text-v1"
	DefaultCheckpointEvery  = 10
	DefaultMaxPageTokens    = 8000
	DefaultEncoding         = "cl100k_base"
	DefaultCacheSize        = 1000
	DefaultMaxRetries       = 3
)

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Storage: StorageConfig{
			Region:           DefaultRegion,
			SourcePrefix:     DefaultSourcePrefix,
			CheckpointPrefix: DefaultCheckpointPrefix,
		},
		Embeddings: EmbeddingsConfig{
			Provider:   "bedrock",
			Model:      DefaultBedrockModel,
			CacheSize:  DefaultCacheSize,
			MaxRetries: DefaultMaxRetries,
		},
		Extract: ExtractConfig{
			MaxPageTokens: DefaultMaxPageTokens,
			Encoding:      DefaultEncoding,
		},
		Checkpoint: CheckpointConfig{
			Every:   DefaultCheckpointEvery,
			WorkDir: filepath.Join(os.TempDir(), "docvec", "index"),
		},
		Cache: CacheConfig{
			Dir: filepath.Join(os.TempDir(), "docvec", "pdfs"),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the specified directory.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. Project config (.docvec.yaml in dir)
//  3. Environment variables (DOCVEC_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFromFile attempts to load configuration from .docvec.yaml or .docvec.yml.
func (c *Config) loadFromFile(dir string) error {
	yamlPath := filepath.Join(dir, ".docvec.yaml")
	if _, err := os.Stat(yamlPath); err == nil {
		return c.loadYAML(yamlPath)
	}

	ymlPath := filepath.Join(dir, ".docvec.yml")
	if _, err := os.Stat(ymlPath); err == nil {
		return c.loadYAML(ymlPath)
	}

	// No config file is fine - use defaults
	return nil
}

// loadYAML loads and merges configuration from a YAML file.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	if other.Storage.Bucket != "" {
		c.Storage.Bucket = other.Storage.Bucket
	}
	if other.Storage.Region != "" {
		c.Storage.Region = other.Storage.Region
	}
	if other.Storage.Endpoint != "" {
		c.Storage.Endpoint = other.Storage.Endpoint
	}
	if other.Storage.SourcePrefix != "" {
		c.Storage.SourcePrefix = other.Storage.SourcePrefix
	}
	if other.Storage.CheckpointPrefix != "" {
		c.Storage.CheckpointPrefix = other.Storage.CheckpointPrefix
	}

	if other.Embeddings.Provider != "" {
		c.Embeddings.Provider = other.Embeddings.Provider
	}
	if other.Embeddings.Model != "" {
		c.Embeddings.Model = other.Embeddings.Model
	}
	if other.Embeddings.Dimensions != 0 {
		c.Embeddings.Dimensions = other.Embeddings.Dimensions
	}
	if other.Embeddings.CacheSize != 0 {
		c.Embeddings.CacheSize = other.Embeddings.CacheSize
	}
	if other.Embeddings.MaxRetries != 0 {
		c.Embeddings.MaxRetries = other.Embeddings.MaxRetries
	}
	if other.Embeddings.OllamaHost != "" {
		c.Embeddings.OllamaHost = other.Embeddings.OllamaHost
	}

	if other.Extract.MaxPageTokens != 0 {
		c.Extract.MaxPageTokens = other.Extract.MaxPageTokens
	}
	if other.Extract.Encoding != "" {
		c.Extract.Encoding = other.Extract.Encoding
	}

	if other.Checkpoint.Every != 0 {
		c.Checkpoint.Every = other.Checkpoint.Every
	}
	if other.Checkpoint.KeepHistory {
		c.Checkpoint.KeepHistory = true
	}
	if other.Checkpoint.WorkDir != "" {
		c.Checkpoint.WorkDir = other.Checkpoint.WorkDir
	}

	if other.Cache.Dir != "" {
		c.Cache.Dir = other.Cache.Dir
	}

	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
}

// applyEnvOverrides applies DOCVEC_* environment variables (highest precedence).
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DOCVEC_BUCKET"); v != "" {
		c.Storage.Bucket = v
	}
	if v := os.Getenv("DOCVEC_REGION"); v != "" {
		c.Storage.Region = v
	}
	if v := os.Getenv("DOCVEC_ENDPOINT"); v != "" {
		c.Storage.Endpoint = v
	}
	if v := os.Getenv("DOCVEC_SOURCE_PREFIX"); v != "" {
		c.Storage.SourcePrefix = v
	}
	if v := os.Getenv("DOCVEC_CHECKPOINT_PREFIX"); v != "" {
		c.Storage.CheckpointPrefix = v
	}
	if v := os.Getenv("DOCVEC_EMBED_PROVIDER"); v != "" {
		c.Embeddings.Provider = v
	}
	if v := os.Getenv("DOCVEC_EMBED_MODEL"); v != "" {
		c.Embeddings.Model = v
	}
	if v := os.Getenv("DOCVEC_OLLAMA_HOST"); v != "" {
		c.Embeddings.OllamaHost = v
	}
	if v := os.Getenv("DOCVEC_CHECKPOINT_EVERY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Checkpoint.Every = n
		}
	}
	if v := os.Getenv("DOCVEC_KEEP_HISTORY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Checkpoint.KeepHistory = b
		}
	}
	if v := os.Getenv("DOCVEC_WORK_DIR"); v != "" {
		c.Checkpoint.WorkDir = v
	}
	if v := os.Getenv("DOCVEC_CACHE_DIR"); v != "" {
		c.Cache.Dir = v
	}
	if v := os.Getenv("DOCVEC_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate checks the configuration for invalid combinations.
func (c *Config) Validate() error {
	if c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required (set DOCVEC_BUCKET or .docvec.yaml)")
	}
	if c.Checkpoint.Every <= 0 {
		return fmt.Errorf("checkpoint.every must be positive, got %d", c.Checkpoint.Every)
	}
	switch c.Embeddings.Provider {
	case "bedrock", "ollama", "static":
	default:
		return fmt.Errorf("embeddings.provider must be bedrock, ollama, or static, got %q", c.Embeddings.Provider)
	}
	if c.Extract.MaxPageTokens < 0 {
		return fmt.Errorf("extract.max_page_tokens must not be negative, got %d", c.Extract.MaxPageTokens)
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
