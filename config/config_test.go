package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Extraction.Language != "en" {
		t.Errorf("expected default language en, got %s", cfg.Extraction.Language)
	}
	if cfg.Hub.Endpoint != "https://huggingface.co" {
		t.Errorf("expected default endpoint https://huggingface.co, got %s", cfg.Hub.Endpoint)
	}
	if cfg.Hub.Revision != "main" {
		t.Errorf("expected default revision main, got %s", cfg.Hub.Revision)
	}
	if cfg.Split.TestSize != 0.2 || cfg.Split.Seed != 42 {
		t.Errorf("expected split 0.2/42, got %v/%d", cfg.Split.TestSize, cfg.Split.Seed)
	}
	if cfg.Metrics.ComputePaths {
		t.Error("expected all-pairs paths disabled by default")
	}
	if cfg.LLM.Retry.MaxAttempts != 3 {
		t.Errorf("expected 3 retry attempts, got %d", cfg.LLM.Retry.MaxAttempts)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing hub endpoint",
			modify:  func(c *Config) { c.Hub.Endpoint = "" },
			wantErr: true,
		},
		{
			name:    "missing revision",
			modify:  func(c *Config) { c.Hub.Revision = "" },
			wantErr: true,
		},
		{
			name:    "test size zero",
			modify:  func(c *Config) { c.Split.TestSize = 0 },
			wantErr: true,
		},
		{
			name:    "test size one",
			modify:  func(c *Config) { c.Split.TestSize = 1 },
			wantErr: true,
		},
		{
			name:    "temperature too high",
			modify:  func(c *Config) { c.LLM.Temperature = 2.5 },
			wantErr: true,
		},
		{
			name:    "negative max tokens",
			modify:  func(c *Config) { c.LLM.MaxTokens = -1 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
extraction:
  language: "de"
  imports: false
hub:
  endpoint: "http://hub.test"
  cache_dir: "/tmp/cache"
  timeout: 30s
split:
  test_size: 0.3
  seed: 7
metrics:
  compute_paths: true
llm:
  model: "test-model"
  temperature: 0.5
  timeout: 10m
  retry:
    max_attempts: 5
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Extraction.Language != "de" {
		t.Errorf("expected language de, got %s", cfg.Extraction.Language)
	}
	if cfg.Extraction.Imports == nil || *cfg.Extraction.Imports {
		t.Errorf("expected imports explicitly disabled, got %v", cfg.Extraction.Imports)
	}
	if cfg.Hub.Endpoint != "http://hub.test" {
		t.Errorf("expected endpoint http://hub.test, got %s", cfg.Hub.Endpoint)
	}
	if cfg.Hub.Revision != "main" {
		t.Errorf("expected default revision to survive, got %s", cfg.Hub.Revision)
	}
	if cfg.Hub.Timeout != 30*time.Second {
		t.Errorf("expected hub timeout 30s, got %v", cfg.Hub.Timeout)
	}
	if cfg.Split.TestSize != 0.3 || cfg.Split.Seed != 7 {
		t.Errorf("expected split 0.3/7, got %v/%d", cfg.Split.TestSize, cfg.Split.Seed)
	}
	if !cfg.Metrics.ComputePaths {
		t.Error("expected compute_paths true")
	}
	if cfg.LLM.Model != "test-model" {
		t.Errorf("expected model test-model, got %s", cfg.LLM.Model)
	}
	if cfg.LLM.Timeout != 10*time.Minute {
		t.Errorf("expected timeout 10m, got %v", cfg.LLM.Timeout)
	}
	if cfg.LLM.Retry.MaxAttempts != 5 {
		t.Errorf("expected 5 attempts, got %d", cfg.LLM.Retry.MaxAttempts)
	}
}

func TestConfigMerge(t *testing.T) {
	base := DefaultConfig()
	override := &Config{
		Hub: HubConfig{
			CacheDir: "/override/cache",
		},
		LLM: LLMConfig{
			Model: "override-model",
		},
	}

	base.Merge(override)

	if base.LLM.Model != "override-model" {
		t.Errorf("expected model override-model, got %s", base.LLM.Model)
	}
	// Endpoint should remain from base since override didn't set it
	if base.Hub.Endpoint != "https://huggingface.co" {
		t.Errorf("expected endpoint to remain default, got %s", base.Hub.Endpoint)
	}
	if base.Hub.CacheDir != "/override/cache" {
		t.Errorf("expected cache dir /override/cache, got %s", base.Hub.CacheDir)
	}
	if base.Split.Seed != 42 {
		t.Errorf("expected seed to remain 42, got %d", base.Split.Seed)
	}
}

func TestConfigSaveToFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "subdir", "config.yaml")

	cfg := DefaultConfig()
	cfg.LLM.Model = "saved-model"

	if err := cfg.SaveToFile(configPath); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("config file was not created")
	}

	loaded, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}
	if loaded.LLM.Model != "saved-model" {
		t.Errorf("expected model saved-model, got %s", loaded.LLM.Model)
	}
	if loaded.Hub.Timeout != 10*time.Minute {
		t.Errorf("expected hub timeout to round-trip, got %v", loaded.Hub.Timeout)
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range append([]string{EnvCacheDir, EnvEndpoint, EnvSeed, EnvLLMURL, EnvLLMModel}, TokenEnvVars...) {
		t.Setenv(name, "")
	}
}

func TestLoaderLayers(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	user := DefaultConfig()
	user.Split.Seed = 1
	user.LLM.Model = "user-model"
	if err := user.SaveToFile(filepath.Join(home, UserConfigDir, UserConfigFile)); err != nil {
		t.Fatalf("write user config: %v", err)
	}

	project := t.TempDir()
	nested := filepath.Join(project, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	projectYAML := "split:\n  seed: 2\n"
	if err := os.WriteFile(filepath.Join(project, ProjectConfigFile), []byte(projectYAML), 0644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(nested)

	t.Setenv("HUGGING_FACE_HUB_TOKEN", "hf_secret")
	t.Setenv(EnvCacheDir, "/env/cache")

	cfg, err := NewLoader(nil).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Split.Seed != 2 {
		t.Errorf("expected project seed 2 to win over user seed, got %d", cfg.Split.Seed)
	}
	if cfg.LLM.Model != "user-model" {
		t.Errorf("expected user model, got %s", cfg.LLM.Model)
	}
	if cfg.Hub.Token != "hf_secret" {
		t.Errorf("expected token from env, got %q", cfg.Hub.Token)
	}
	if cfg.Hub.CacheDir != "/env/cache" {
		t.Errorf("expected cache dir from env, got %s", cfg.Hub.CacheDir)
	}
}

func TestLoaderProjectZeroSeed(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	userYAML := "split:\n  seed: 7\nllm:\n  model: user-model\n"
	userPath := filepath.Join(home, UserConfigDir, UserConfigFile)
	if err := os.MkdirAll(filepath.Dir(userPath), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(userPath, []byte(userYAML), 0644); err != nil {
		t.Fatal(err)
	}

	project := t.TempDir()
	if err := os.WriteFile(filepath.Join(project, ProjectConfigFile), []byte("split:\n  seed: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(project)

	cfg, err := NewLoader(nil).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Split.Seed != 0 {
		t.Errorf("expected project seed 0, got %d", cfg.Split.Seed)
	}
	if cfg.LLM.Model != "user-model" {
		t.Errorf("expected user model to survive the project layer, got %s", cfg.LLM.Model)
	}
	if cfg.Split.TestSize != 0.2 {
		t.Errorf("expected default test size, got %v", cfg.Split.TestSize)
	}
}

func TestOverlayKeepsUnsetKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layer.yaml")
	if err := os.WriteFile(path, []byte("hub:\n  revision: v2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.LLM.Model = "custom"
	if err := cfg.Overlay(path); err != nil {
		t.Fatalf("Overlay() error = %v", err)
	}
	if cfg.Hub.Revision != "v2" {
		t.Errorf("expected revision v2, got %s", cfg.Hub.Revision)
	}
	if cfg.Hub.Endpoint != "https://huggingface.co" {
		t.Errorf("expected default endpoint, got %s", cfg.Hub.Endpoint)
	}
	if cfg.LLM.Model != "custom" {
		t.Errorf("expected model to stay custom, got %s", cfg.LLM.Model)
	}
}

func TestLoaderInvalidSeedIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv(EnvSeed, "not-a-number")

	cfg, err := NewLoader(nil).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Split.Seed != 42 {
		t.Errorf("expected default seed, got %d", cfg.Split.Seed)
	}
}

func TestEnsureUserConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if err := NewLoader(nil).EnsureUserConfig(); err != nil {
		t.Fatalf("EnsureUserConfig() error = %v", err)
	}
	if _, err := LoadFromFile(filepath.Join(home, UserConfigDir, UserConfigFile)); err != nil {
		t.Errorf("expected a readable user config: %v", err)
	}
}
