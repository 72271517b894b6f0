package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/placement"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
	Prefix   string `yaml:"prefix" json:"prefix"`
	// TTL is a Go duration string ("24h"); empty means documents never expire.
	TTL string `yaml:"ttl" json:"ttl"`
	// Lock enables the distributed page lock.
	Lock bool `yaml:"lock" json:"lock"`
}

// StoreConfig selects where page documents live.
type StoreConfig struct {
	Backend string      `yaml:"backend" json:"backend"`
	Path    string      `yaml:"path" json:"path"`
	Redis   RedisConfig `yaml:"redis" json:"redis"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" json:"port"`
}

// Config is the editor configuration file (arbor.yaml).
type Config struct {
	// ContainerTypes may own children and are the only types accepted at the page root.
	ContainerTypes []string `yaml:"containerTypes" json:"containerTypes"`
	// TabbedTypes address their slots by tab index.
	TabbedTypes []string `yaml:"tabbedTypes" json:"tabbedTypes"`
	// ChildRules restricts the children of specific container types.
	ChildRules map[string][]string `yaml:"childRules" json:"childRules"`
	// Defaults are the initial props of palette components, keyed by type.
	Defaults map[string]map[string]any `yaml:"defaults" json:"defaults"`

	HistoryLimit int    `yaml:"historyLimit" json:"historyLimit"`
	LogLevel     string `yaml:"logLevel" json:"logLevel"`

	Store  StoreConfig  `yaml:"store" json:"store"`
	Server ServerConfig `yaml:"server" json:"server"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ContainerTypes: slices.Clone(domain.DefaultContainerTypes),
		TabbedTypes:    slices.Clone(domain.DefaultTabbedTypes),
		Defaults: map[string]map[string]any{
			domain.TypeTabs:          {"tabs": []any{"Tab 1", "Tab 2"}},
			domain.TypeTabsAccordion: {"tabs": []any{"Tab 1", "Tab 2"}, "mode": "tabs"},
		},
		HistoryLimit: domain.DefaultHistoryLimit,
		LogLevel:     "info",
		Store: StoreConfig{
			Backend: BackendMemory,
			Path:    filepath.Join(".arbor", "pages"),
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "arbor:page:",
			},
		},
		Server: ServerConfig{Port: 8080},
	}
}

// Load reads a configuration file (YAML or JSON, chosen by extension) on top of
// the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the values that cannot be corrected silently.
func (c Config) Validate() error {
	var issues []string

	switch c.Store.Backend {
	case BackendMemory, BackendFile, BackendRedis:
	default:
		issues = append(issues, fmt.Sprintf("unknown store backend '%s'", c.Store.Backend))
	}
	if c.HistoryLimit < 0 {
		issues = append(issues, "historyLimit cannot be negative")
	}
	if _, err := c.Store.Redis.Expiry(); err != nil {
		issues = append(issues, err.Error())
	}
	for _, t := range c.TabbedTypes {
		if !slices.Contains(c.ContainerTypes, t) {
			issues = append(issues, fmt.Sprintf("tabbed type '%s' is not a container type", t))
		}
	}

	if len(issues) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(issues, "; "))
	}
	return nil
}

// Expiry parses the redis TTL.
func (r RedisConfig) Expiry() (time.Duration, error) {
	if r.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(r.TTL)
	if err != nil {
		return 0, fmt.Errorf("invalid redis ttl %q: %w", r.TTL, err)
	}
	return d, nil
}

// ResolverOptions converts the placement settings into resolver options.
func (c Config) ResolverOptions() []placement.Option {
	opts := []placement.Option{
		placement.WithContainerTypes(c.ContainerTypes...),
		placement.WithTabbedTypes(c.TabbedTypes...),
	}
	if len(c.ChildRules) > 0 {
		opts = append(opts, placement.WithChildRules(placement.ChildRules(c.ChildRules)))
	}
	if len(c.Defaults) > 0 {
		opts = append(opts, placement.WithDefaults(c.Defaults))
	}
	return opts
}
