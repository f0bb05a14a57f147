// Package config handles the XDG configuration directory, the optional
// config.yaml file and the settings derived from them.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"sharedtodo/internal/store"
)

const (
	// AppName is the application directory name.
	AppName = "sharedtodo"

	// ConfigFile is the optional settings file inside the config directory.
	ConfigFile = "config.yaml"

	// OAuthClientFile is the OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename.
	TokenFile = "token.json"

	// DatabaseFile is the default local store database filename.
	DatabaseFile = "tasks.db"
)

// Backends understood by the store factory.
const (
	BackendMemory      = "memory"
	BackendLocal       = "local"
	BackendGoogleTasks = "googletasks"
)

// Defaults for settings not given in the file or on the command line.
const (
	DefaultBackend   = BackendLocal
	DefaultAddr      = "localhost:8080"
	DefaultNamespace = store.DefaultNamespace
	DefaultPoll      = 5 * time.Second
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Backend selects the task store: memory, local or googletasks.
	Backend string

	// Identity is the roster name acting locally, if preselected.
	Identity string

	// Addr is the listen address of the web page.
	Addr string

	// Namespace is the top-level namespace the tasks are stored under.
	Namespace string

	// PollInterval is how often subscriptions re-read a shared or on-disk store.
	PollInterval time.Duration

	// Database overrides the local store database path.
	Database string

	// Logger receives diagnostics. Never nil after New.
	Logger *slog.Logger
}

// File is the on-disk shape of config.yaml.
type File struct {
	Backend      string `yaml:"backend"`
	Identity     string `yaml:"identity"`
	Addr         string `yaml:"addr"`
	Namespace    string `yaml:"namespace"`
	PollInterval string `yaml:"poll_interval"`
	Database     string `yaml:"database"`
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/sharedtodo or $HOME/.config/sharedtodo.
// Settings from config.yaml are applied when the file exists.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{
		Dir:          dir,
		Backend:      DefaultBackend,
		Addr:         DefaultAddr,
		Namespace:    DefaultNamespace,
		PollInterval: DefaultPoll,
		Logger:       NewLogger(io.Discard, false),
	}
	if err := cfg.load(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// load applies config.yaml on top of the defaults.
func (c *Config) load() error {
	data, err := os.ReadFile(c.FilePath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", ConfigFile, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("invalid %s: %w", ConfigFile, err)
	}
	return c.Apply(f)
}

// Apply overrides settings with the non-empty fields of f.
func (c *Config) Apply(f File) error {
	if f.Backend != "" {
		c.Backend = f.Backend
	}
	if f.Identity != "" {
		c.Identity = f.Identity
	}
	if f.Addr != "" {
		c.Addr = f.Addr
	}
	if f.Namespace != "" {
		c.Namespace = f.Namespace
	}
	if f.Database != "" {
		c.Database = f.Database
	}
	if f.PollInterval != "" {
		d, err := time.ParseDuration(f.PollInterval)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid poll_interval: %q", f.PollInterval)
		}
		c.PollInterval = d
	}
	return c.Validate()
}

// Validate checks settings that have a fixed set of values.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendLocal, BackendGoogleTasks:
		return nil
	default:
		return fmt.Errorf("unknown backend: %s", c.Backend)
	}
}

// NewLogger returns a text logger writing to w; debug enables debug records.
func NewLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// FilePath returns the path to config.yaml.
func (c *Config) FilePath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// DatabasePath returns the local store database path.
func (c *Config) DatabasePath() string {
	if c.Database != "" {
		return c.Database
	}
	return filepath.Join(c.Dir, DatabaseFile)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}
