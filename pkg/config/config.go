package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/loomcli/loom/pkg/edit"
	"github.com/loomcli/loom/pkg/resolve"
	"github.com/pkg/errors"
)

// LoomDirName is the working directory created next to the resume where
// intermediate artifacts are kept between runs.
const LoomDirName = ".loom"

// Config represents the application configuration.
type Config struct {
	AnthropicAPIKey  string        `json:"anthropic_api_key"`
	Model            string        `json:"model,omitempty"`
	Risk             string        `json:"risk,omitempty"`
	OnError          string        `json:"on_error,omitempty"`
	SectionsLocation string        `json:"sections_location,omitempty"`
	Cache            CacheConfig   `json:"cache"`
	Defaults         DefaultConfig `json:"defaults"`
}

// CacheConfig controls the on-disk model response cache.
type CacheConfig struct {
	Enabled  bool   `json:"enabled"`
	Dir      string `json:"dir,omitempty"`
	TTLHours int    `json:"ttl_hours,omitempty"`
}

// DefaultConfig holds default values for commands.
type DefaultConfig struct {
	OutputDir string `json:"output_dir"`
}

// GetModel returns the configured model or the built-in default.
func (c *Config) GetModel() (model string) {
	if c.Model != "" {
		model = c.Model
		return model
	}
	model = "claude-sonnet-4-20250514" // Default to Sonnet 4
	return model
}

// GetRisk returns the configured risk level or the built-in default.
func (c *Config) GetRisk() (risk edit.RiskLevel) {
	if c.Risk != "" {
		risk = edit.RiskLevel(c.Risk)
		return risk
	}
	risk = edit.RiskMed
	return risk
}

// GetOnError returns the configured resolution policy or the built-in
// default.
func (c *Config) GetOnError() (policy resolve.Policy) {
	if c.OnError != "" {
		policy = resolve.Policy(c.OnError)
		return policy
	}
	policy = resolve.PolicyAsk
	return policy
}

// GetCacheDir returns the cache directory or the default under the user
// config directory.
func (c *Config) GetCacheDir() (dir string, err error) {
	if c.Cache.Dir != "" {
		dir = c.Cache.Dir
		return dir, err
	}

	var homeDir string
	homeDir, err = os.UserHomeDir()
	if err != nil {
		err = errors.Wrap(err, "failed to get user home directory")
		return dir, err
	}
	dir = filepath.Join(homeDir, LoomDirName, "cache")

	return dir, err
}

// Load reads configuration from file with environment variable overrides.
func Load(configPath string) (cfg Config, err error) {
	// Determine config file location
	path := configPath
	if path == "" {
		path, err = defaultConfigPath()
		if err != nil {
			return cfg, err
		}
	}

	// Read config file
	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			err = errors.Errorf("config file not found: %s (run 'loom init' to create)", path)
			return cfg, err
		}
		err = errors.Wrapf(err, "failed to read config file: %s", path)
		return cfg, err
	}

	// Parse JSON
	err = json.Unmarshal(data, &cfg)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse config file: %s", path)
		return cfg, err
	}

	// Override with environment variable if set
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		cfg.AnthropicAPIKey = apiKey
	}

	// Validate required fields
	err = cfg.Validate()
	if err != nil {
		err = errors.Wrap(err, "config validation failed")
		return cfg, err
	}

	return cfg, err
}

// Validate checks that all required configuration is present and that
// enumerated settings carry known values. An unrecognized risk level or
// resolution policy is an error here, never a silent fallback.
func (c *Config) Validate() (err error) {
	if c.AnthropicAPIKey == "" {
		err = errors.New("anthropic_api_key is required (set in config or ANTHROPIC_API_KEY env var)")
		return err
	}

	if c.Risk != "" {
		_, err = edit.ParseRisk(c.Risk)
		if err != nil {
			return err
		}
	}

	if c.OnError != "" {
		_, err = resolve.ParsePolicy(c.OnError)
		if err != nil {
			return err
		}
	}

	if c.SectionsLocation != "" {
		_, err = os.Stat(c.SectionsLocation)
		if os.IsNotExist(err) {
			err = errors.Errorf("sections file not found: %s", c.SectionsLocation)
			return err
		}
		err = nil
	}

	if c.Cache.TTLHours < 0 {
		err = errors.Errorf("cache.ttl_hours must not be negative: %d", c.Cache.TTLHours)
		return err
	}

	// Set default output_dir if not specified
	if c.Defaults.OutputDir == "" {
		c.Defaults.OutputDir = "."
	}

	return err
}

// InitConfig creates a default configuration file.
func InitConfig(configPath string) (err error) {
	// Determine config file location
	path := configPath
	if path == "" {
		path, err = defaultConfigPath()
		if err != nil {
			return err
		}
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	err = os.MkdirAll(dir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create config directory: %s", dir)
		return err
	}

	// Check if file already exists
	_, err = os.Stat(path)
	if err == nil {
		err = errors.Errorf("config file already exists: %s", path)
		return err
	}

	defaultConfig := Config{
		AnthropicAPIKey: "sk-ant-api03-...",
		Model:           "claude-sonnet-4-20250514",
		Risk:            string(edit.RiskMed),
		OnError:         string(resolve.PolicyAsk),
		Cache: CacheConfig{
			Enabled:  true,
			TTLHours: 24,
		},
		Defaults: DefaultConfig{
			OutputDir: ".",
		},
	}

	// Write to file
	var data []byte
	data, err = json.MarshalIndent(defaultConfig, "", "  ")
	if err != nil {
		err = errors.Wrap(err, "failed to marshal default config")
		return err
	}

	err = os.WriteFile(path, data, 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write config file: %s", path)
		return err
	}

	return err
}

// SidePaths returns the locations of intermediate artifacts for a resume,
// rooted in a .loom directory next to it.
func SidePaths(resumePath string) (paths resolve.SidePaths) {
	loomDir := filepath.Join(filepath.Dir(resumePath), LoomDirName)
	paths = resolve.SidePaths{
		Edits:    filepath.Join(loomDir, "edits.json"),
		Warnings: filepath.Join(loomDir, "edits.warnings.txt"),
		Diff:     filepath.Join(loomDir, "diff.patch"),
		Plan:     filepath.Join(loomDir, "plan.txt"),
	}
	return paths
}

func defaultConfigPath() (path string, err error) {
	var homeDir string
	homeDir, err = os.UserHomeDir()
	if err != nil {
		err = errors.Wrap(err, "failed to get user home directory")
		return path, err
	}
	path = filepath.Join(homeDir, LoomDirName, "config.json")
	return path, err
}
