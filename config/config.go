// Package config provides configuration loading and management for
// ontolearner.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sciknoworg/OntoLearner-sub000/llm"
)

// Config represents the complete ontolearner configuration
type Config struct {
	Extraction ExtractionConfig `yaml:"extraction"`
	Hub        HubConfig        `yaml:"hub"`
	Split      SplitConfig      `yaml:"split"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	LLM        LLMConfig        `yaml:"llm"`
}

// ExtractionConfig configures loading and extraction
type ExtractionConfig struct {
	// Language is the preferred rdfs:label language (default: en)
	Language string `yaml:"language"`
	// BaseDir resolves local owl:imports (default: directory of the input)
	BaseDir string `yaml:"base_dir"`
	// Imports forces owl:imports resolution on or off; unset follows the
	// catalogue entry
	Imports *bool `yaml:"imports,omitempty"`
}

// HubConfig configures the remote dataset hub
type HubConfig struct {
	// Endpoint is the hub base URL
	Endpoint string `yaml:"endpoint"`
	// Revision is the dataset revision to resolve (default: main)
	Revision string `yaml:"revision"`
	// CacheDir is where artifacts are cached (default: user cache dir)
	CacheDir string `yaml:"cache_dir"`
	// Token authenticates gated downloads. Prefer HF_TOKEN over storing it.
	Token string `yaml:"token,omitempty"`
	// Timeout bounds one download
	Timeout time.Duration `yaml:"timeout"`
}

// SplitConfig configures train/test splitting
type SplitConfig struct {
	// TestSize is the test fraction, exclusive of 0 and 1 (default: 0.2)
	TestSize float64 `yaml:"test_size"`
	// Seed drives the sampler (default: 42)
	Seed int64 `yaml:"seed"`
}

// MetricsConfig configures topology metrics
type MetricsConfig struct {
	// ComputePaths enables all-pairs shortest paths and the diameter
	ComputePaths bool `yaml:"compute_paths"`
}

// LLMConfig configures the generator used by LLM and RAG learners
type LLMConfig struct {
	// BaseURL is the OpenAI-compatible API endpoint
	BaseURL string `yaml:"base_url"`
	// Model is the model name sent with each request
	Model string `yaml:"model"`
	// Temperature controls randomness (0.0-2.0, default: 0)
	Temperature float64 `yaml:"temperature"`
	// MaxTokens bounds each completion
	MaxTokens int `yaml:"max_tokens"`
	// Timeout is the maximum time to wait for one response
	Timeout time.Duration `yaml:"timeout"`
	// Retry configures retries on transient failures
	Retry llm.RetryConfig `yaml:"retry"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Extraction: ExtractionConfig{
			Language: "en",
		},
		Hub: HubConfig{
			Endpoint: "https://huggingface.co",
			Revision: "main",
			CacheDir: "", // User cache dir
			Timeout:  10 * time.Minute,
		},
		Split: SplitConfig{
			TestSize: 0.2,
			Seed:     42,
		},
		LLM: LLMConfig{
			BaseURL:   "http://localhost:11434/v1",
			Model:     "qwen2.5:7b",
			MaxTokens: 512,
			Timeout:   2 * time.Minute,
			Retry:     llm.DefaultRetryConfig(),
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Hub.Endpoint == "" {
		return fmt.Errorf("hub.endpoint is required")
	}
	if c.Hub.Revision == "" {
		return fmt.Errorf("hub.revision is required")
	}
	if c.Split.TestSize <= 0 || c.Split.TestSize >= 1 {
		return fmt.Errorf("split.test_size must be between 0 and 1 (exclusive)")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2")
	}
	if c.LLM.MaxTokens < 0 {
		return fmt.Errorf("llm.max_tokens must not be negative")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Overlay decodes the YAML file at path on top of c. Only keys present in
// the file change c, so explicit zero values such as `seed: 0` apply.
func (c *Config) Overlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for
// non-zero values). Zero values in other cannot be expressed; layered file
// loading uses Overlay instead.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Extraction
	if other.Extraction.Language != "" {
		c.Extraction.Language = other.Extraction.Language
	}
	if other.Extraction.BaseDir != "" {
		c.Extraction.BaseDir = other.Extraction.BaseDir
	}
	if other.Extraction.Imports != nil {
		c.Extraction.Imports = other.Extraction.Imports
	}

	// Hub
	if other.Hub.Endpoint != "" {
		c.Hub.Endpoint = other.Hub.Endpoint
	}
	if other.Hub.Revision != "" {
		c.Hub.Revision = other.Hub.Revision
	}
	if other.Hub.CacheDir != "" {
		c.Hub.CacheDir = other.Hub.CacheDir
	}
	if other.Hub.Token != "" {
		c.Hub.Token = other.Hub.Token
	}
	if other.Hub.Timeout != 0 {
		c.Hub.Timeout = other.Hub.Timeout
	}

	// Split
	if other.Split.TestSize != 0 {
		c.Split.TestSize = other.Split.TestSize
	}
	if other.Split.Seed != 0 {
		c.Split.Seed = other.Split.Seed
	}

	// Metrics
	if other.Metrics.ComputePaths {
		c.Metrics.ComputePaths = true
	}

	// LLM
	if other.LLM.BaseURL != "" {
		c.LLM.BaseURL = other.LLM.BaseURL
	}
	if other.LLM.Model != "" {
		c.LLM.Model = other.LLM.Model
	}
	if other.LLM.Temperature != 0 {
		c.LLM.Temperature = other.LLM.Temperature
	}
	if other.LLM.MaxTokens != 0 {
		c.LLM.MaxTokens = other.LLM.MaxTokens
	}
	if other.LLM.Timeout != 0 {
		c.LLM.Timeout = other.LLM.Timeout
	}
	if other.LLM.Retry.MaxAttempts != 0 {
		c.LLM.Retry = other.LLM.Retry
	}
}
