package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Repo        string       `json:"repo" yaml:"repo"`
	Backend     string       `json:"backend" yaml:"backend"` // gitlocal, gitcli or github
	DetailStats bool         `json:"detailStats" yaml:"detailStats"`
	GitHub      GitHubConfig `json:"github" yaml:"github"`
	Cache       CacheConfig  `json:"cache" yaml:"cache"`
	Filters     FilterConfig `json:"filters" yaml:"filters"`
	Output      OutputConfig `json:"output" yaml:"output"`
}

// GitHubConfig holds settings for the GitHub REST backend.
type GitHubConfig struct {
	Owner   string `json:"owner" yaml:"owner"`
	Repo    string `json:"repo" yaml:"repo"`
	Token   string `json:"token" yaml:"token"`
	BaseURL string `json:"baseURL" yaml:"baseURL"`
}

// CacheConfig holds commit cache persistence settings.
type CacheConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Dir     string `json:"dir" yaml:"dir"` // empty means the per-repo default under the user cache dir
}

// FilterConfig holds file path filtering options.
type FilterConfig struct {
	Include []string `json:"include" yaml:"include"`
	Exclude []string `json:"exclude" yaml:"exclude"`
}

// OutputConfig holds report rendering options.
type OutputConfig struct {
	Format string `json:"format" yaml:"format"` // console, json, csv or markdown
	Top    int    `json:"top" yaml:"top"`       // 0 means unlimited
}

const (
	BackendGitLocal = "gitlocal"
	BackendGitCLI   = "gitcli"
	BackendGitHub   = "github"
)

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Repo:    ".",
		Backend: BackendGitLocal,
		Cache: CacheConfig{
			Enabled: true,
		},
		Filters: FilterConfig{
			Include: []string{},
			Exclude: []string{},
		},
		Output: OutputConfig{
			Format: "console",
			Top:    0,
		},
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendGitLocal, BackendGitCLI, BackendGitHub:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.Backend == BackendGitHub && (c.GitHub.Owner == "" || c.GitHub.Repo == "") {
		return fmt.Errorf("github backend requires owner and repo")
	}
	return nil
}

// LoadConfig loads configuration from a file, merging with defaults.
// JSON and YAML files are both accepted, selected by extension.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		// Try default locations
		candidates := []string{".repotally.json", ".repotally.yaml", ".repotally.yml"}
		if home, err := os.UserHomeDir(); err == nil && home != "" {
			candidates = append(candidates,
				filepath.Join(home, ".repotally.json"),
				filepath.Join(home, ".repotally.yaml"))
		}
		for _, p := range candidates {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		applyEnv(cfg)
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(cfg)
			return cfg, nil
		}
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// applyEnv fills credentials from the environment when the file left them out.
func applyEnv(cfg *Config) {
	if cfg.GitHub.Token == "" {
		cfg.GitHub.Token = os.Getenv("GITHUB_TOKEN")
	}
}

// SaveConfig saves configuration to a file, in the format the extension names.
func SaveConfig(cfg *Config, path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(cfg)
	default:
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
