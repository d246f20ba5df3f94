package config

import (
	"fmt"
	"time"

	"github.com/grovetools/focus/errors"
	"github.com/grovetools/focus/pkg/paths"
	"github.com/grovetools/focus/util/pathutil"
	"github.com/mitchellh/mapstructure"
)

// Storage backends understood by the state package.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// DefaultTickInterval is the focus view refresh period.
const DefaultTickInterval = time.Second

// Config is the parsed focus.yml / focus.toml.
type Config struct {
	Version string        `yaml:"version,omitempty"`
	Storage StorageConfig `yaml:"storage,omitempty"`
	Daemon  DaemonConfig  `yaml:"daemon,omitempty"`
	Focus   FocusConfig   `yaml:"focus,omitempty"`

	// Extensions holds top-level sections not known to the core config,
	// such as "logging". Decode them with UnmarshalExtension.
	Extensions map[string]interface{} `yaml:"-"`
}

// StorageConfig selects the local key/value backend.
type StorageConfig struct {
	// Backend is "file" (YAML document, default) or "sqlite".
	Backend string `yaml:"backend,omitempty" jsonschema:"enum=file,enum=sqlite"`
	// Path overrides the backend's default location under the state dir.
	Path string `yaml:"path,omitempty"`
}

// DaemonConfig configures how the page side reaches the daemon.
type DaemonConfig struct {
	Socket string `yaml:"socket,omitempty"`
}

// FocusConfig configures the focus session manager.
type FocusConfig struct {
	// TickInterval is a Go duration string; defaults to "1s".
	TickInterval string `yaml:"tick_interval,omitempty" jsonschema:"example=1s"`
}

// SetDefaults fills unset values.
func (c *Config) SetDefaults() {
	if c.Version == "" {
		c.Version = "1.0"
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendFile
	}
	if c.Storage.Path == "" {
		c.Storage.Path = paths.StorePath(c.Storage.Backend)
	} else if p, err := pathutil.Expand(c.Storage.Path); err == nil {
		c.Storage.Path = p
	}
	if c.Daemon.Socket == "" {
		c.Daemon.Socket = paths.SocketPath()
	} else if p, err := pathutil.Expand(c.Daemon.Socket); err == nil {
		c.Daemon.Socket = p
	}
	if c.Focus.TickInterval == "" {
		c.Focus.TickInterval = DefaultTickInterval.String()
	}
}

// Validate checks semantic constraints the schema cannot express.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite:
	default:
		return errors.New(errors.ErrCodeConfigValidation,
			fmt.Sprintf("unknown storage backend %q", c.Storage.Backend)).
			WithDetail("field", "storage.backend")
	}

	d, err := time.ParseDuration(c.Focus.TickInterval)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigValidation, "invalid focus.tick_interval").
			WithDetail("field", "focus.tick_interval")
	}
	if d <= 0 {
		return errors.New(errors.ErrCodeConfigValidation, "focus.tick_interval must be positive").
			WithDetail("field", "focus.tick_interval")
	}
	return nil
}

// TickDuration returns the parsed tick interval, falling back to the default.
func (c *Config) TickDuration() time.Duration {
	d, err := time.ParseDuration(c.Focus.TickInterval)
	if err != nil || d <= 0 {
		return DefaultTickInterval
	}
	return d
}

// UnmarshalExtension decodes the section stored under key in the
// loaded config into the provided target struct. The target must be a pointer.
//
// Example:
//
//	var logCfg logging.Config
//	err := cfg.UnmarshalExtension("logging", &logCfg)
func (c *Config) UnmarshalExtension(key string, target interface{}) error {
	extensionConfig, ok := c.Extensions[key]
	if !ok {
		// A missing section leaves target zero-valued.
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  target,
		TagName: "yaml",
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(extensionConfig); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}

	return nil
}
