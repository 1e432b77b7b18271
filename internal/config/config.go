package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	appLog "recurcal/internal/log"
)

// Defaults applied by DefaultConfig and Normalize.
const (
	DefaultListen        = "127.0.0.1:8080"
	DefaultWeekStart     = "sunday"
	DefaultRefresh       = "0 0 * * *"
	DefaultPreviewCount  = 10
	DefaultCommitCount   = 100
	DefaultMaxCountLimit = 1000
	DefaultProductID     = "-//recurcal//recurring dates//EN"
	DefaultLogLevel      = "info"
	DefaultLogMaxSizeMB  = 10
	DefaultLogMaxBackups = 3
)

// ICSConfig controls iCalendar export.
type ICSConfig struct {
	// ProductID is written as the calendar PRODID.
	ProductID string `yaml:"product_id" json:"product_id"`
	// Summary, if set, is the event title used when a request gives none.
	// Empty means "use the pattern description".
	Summary string `yaml:"summary" json:"summary"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	// Level is one of debug, info, error.
	Level string `yaml:"level" json:"level"`
	// File, if set, receives a size-rotated copy of the log.
	File       string `yaml:"file" json:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// WeekStart controls which weekday starts a calendar grid row.
	// Supported values:
	//   - "sunday" (default)
	//   - "monday"
	WeekStart string `yaml:"week_start" json:"week_start"`

	// RefreshCron is a standard 5-field cron schedule for rebuilding the
	// cached current-month grid.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// PreviewCount is the default number of dates /api/generate returns.
	PreviewCount int `yaml:"preview_count" json:"preview_count"`
	// CommitCount is the number of dates stored when a pattern is applied.
	CommitCount int `yaml:"commit_count" json:"commit_count"`
	// MaxCountLimit caps any client-supplied max_count.
	MaxCountLimit int `yaml:"max_count_limit" json:"max_count_limit"`

	ICS ICSConfig `yaml:"ics" json:"ics"`
	Log LogConfig `yaml:"log" json:"log"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:        DefaultListen,
		WeekStart:     DefaultWeekStart,
		RefreshCron:   DefaultRefresh,
		PreviewCount:  DefaultPreviewCount,
		CommitCount:   DefaultCommitCount,
		MaxCountLimit: DefaultMaxCountLimit,
		ICS: ICSConfig{
			ProductID: DefaultProductID,
		},
		Log: LogConfig{
			Level:      DefaultLogLevel,
			MaxSizeMB:  DefaultLogMaxSizeMB,
			MaxBackups: DefaultLogMaxBackups,
		},
		BasicAuth: nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs (e.g., older versions) still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}

	switch c.WeekStart {
	case "monday", "sunday":
		// ok
	default:
		c.WeekStart = DefaultWeekStart
	}

	if c.RefreshCron == "" {
		c.RefreshCron = DefaultRefresh
	} else if _, err := cron.ParseStandard(c.RefreshCron); err != nil {
		appLog.Error("config: invalid refresh schedule, using default", err, "refresh", c.RefreshCron, "default", DefaultRefresh)
		c.RefreshCron = DefaultRefresh
	}

	if c.MaxCountLimit <= 0 {
		c.MaxCountLimit = DefaultMaxCountLimit
	}
	if c.PreviewCount <= 0 {
		c.PreviewCount = DefaultPreviewCount
	}
	if c.CommitCount <= 0 {
		c.CommitCount = DefaultCommitCount
	}
	c.PreviewCount = min(c.PreviewCount, c.MaxCountLimit)
	c.CommitCount = min(c.CommitCount, c.MaxCountLimit)

	if c.ICS.ProductID == "" {
		c.ICS.ProductID = DefaultProductID
	}

	if _, err := appLog.ParseLevel(c.Log.Level); err != nil || c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.MaxSizeMB <= 0 {
		c.Log.MaxSizeMB = DefaultLogMaxSizeMB
	}
	if c.Log.MaxBackups < 0 {
		c.Log.MaxBackups = DefaultLogMaxBackups
	}

	if c.BasicAuth != nil && c.BasicAuth.Username == "" && c.BasicAuth.Password == "" {
		c.BasicAuth = nil
	}
}

// LogOptions converts the log section into logger options.
func (c *Config) LogOptions() appLog.Options {
	level, _ := appLog.ParseLevel(c.Log.Level)
	return appLog.Options{
		Level:      level,
		File:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config: path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			appLog.Info("config: wrote defaults", "path", path)
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config: path is empty")
	}
	if cfg == nil {
		return errors.New("config: config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".recurcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
