package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
)

const (
	// ProjectConfigFile is the name of the project-level config file
	ProjectConfigFile = "ontolearner.yaml"
	// UserConfigDir is the directory for user-level config
	UserConfigDir = ".config/ontolearner"
	// UserConfigFile is the name of the user-level config file
	UserConfigFile = "config.yaml"
)

// Environment variables consulted after the config files.
const (
	EnvCacheDir = "ONTOLEARNER_CACHE_DIR"
	EnvEndpoint = "ONTOLEARNER_HUB_ENDPOINT"
	EnvSeed     = "ONTOLEARNER_SEED"
	EnvLLMURL   = "ONTOLEARNER_LLM_BASE_URL"
	EnvLLMModel = "ONTOLEARNER_LLM_MODEL"
)

// TokenEnvVars are checked in order for a hub token.
var TokenEnvVars = []string{"HF_TOKEN", "HUGGING_FACE_HUB_TOKEN"}

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a new configuration loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. User config (~/.config/ontolearner/config.yaml)
// 3. Project config (ontolearner.yaml in current or parent directories)
// 4. Environment variables
func (l *Loader) Load() (*Config, error) {
	config := DefaultConfig()

	userConfigPath := l.userConfigPath()
	if userConfigPath != "" {
		if err := l.overlay(config, userConfigPath); err == nil {
			l.logger.Debug("Loaded user config", slog.String("path", userConfigPath))
		} else if !errors.Is(err, os.ErrNotExist) {
			l.logger.Warn("Failed to load user config", slog.String("path", userConfigPath), slog.String("error", err.Error()))
		}
	}

	projectConfigPath := l.findProjectConfig()
	if projectConfigPath != "" {
		if err := l.overlay(config, projectConfigPath); err == nil {
			l.logger.Debug("Loaded project config", slog.String("path", projectConfigPath))
		} else {
			l.logger.Warn("Failed to load project config", slog.String("path", projectConfigPath), slog.String("error", err.Error()))
		}
	} else {
		l.logger.Debug("No project config found")
	}

	l.applyEnv(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// overlay applies one layer file. A layer that fails to parse leaves config
// untouched.
func (l *Loader) overlay(config *Config, path string) error {
	layer := *config
	if layer.Extraction.Imports != nil {
		imports := *layer.Extraction.Imports
		layer.Extraction.Imports = &imports
	}
	if err := layer.Overlay(path); err != nil {
		return err
	}
	*config = layer
	return nil
}

// applyEnv overlays environment variables on config.
func (l *Loader) applyEnv(config *Config) {
	for _, name := range TokenEnvVars {
		if v := os.Getenv(name); v != "" {
			config.Hub.Token = v
			break
		}
	}
	if v := os.Getenv(EnvCacheDir); v != "" {
		config.Hub.CacheDir = v
	}
	if v := os.Getenv(EnvEndpoint); v != "" {
		config.Hub.Endpoint = v
	}
	if v := os.Getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			l.logger.Warn("Ignoring invalid seed", slog.String("env", EnvSeed), slog.String("value", v))
		} else {
			config.Split.Seed = seed
		}
	}
	if v := os.Getenv(EnvLLMURL); v != "" {
		config.LLM.BaseURL = v
	}
	if v := os.Getenv(EnvLLMModel); v != "" {
		config.LLM.Model = v
	}
}

// EnsureUserConfig creates the user config file with defaults if it doesn't exist
func (l *Loader) EnsureUserConfig() error {
	userConfigPath := l.userConfigPath()

	if _, err := os.Stat(userConfigPath); err == nil {
		return nil
	}

	config := DefaultConfig()
	if err := config.SaveToFile(userConfigPath); err != nil {
		return err
	}

	l.logger.Info("Created default user config", slog.String("path", userConfigPath))
	return nil
}

// userConfigPath returns the path to the user config file
func (l *Loader) userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}

// findProjectConfig searches for ontolearner.yaml in current and parent directories
func (l *Loader) findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		configPath := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
