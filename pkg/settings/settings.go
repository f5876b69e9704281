// Package settings manages persistent user settings for the newtcheck CLI.
//
// Values come from ~/.newtcheck/settings.yaml and NEWTCHECK_* environment
// variables, in that order of increasing precedence. Command-line flags
// override both.
package settings

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/newtron-network/newtcheck/pkg/util"
)

// EnvPrefix is the prefix for environment overrides, e.g. NEWTCHECK_CONCURRENCY.
const EnvPrefix = "NEWTCHECK"

// Keys
const (
	KeyInventory   = "inventory"
	KeyCatalog     = "catalog"
	KeyConcurrency = "concurrency"
	KeyTimeout     = "timeout"
	KeyLogLevel    = "log_level"
	KeyLogFormat   = "log_format"
	KeyReportDir   = "report_dir"
	KeyRunLog      = "run_log"
)

// Settings holds persistent user preferences
type Settings struct {
	// Inventory is the default --inventory path
	Inventory string `mapstructure:"inventory" yaml:"inventory,omitempty"`

	// Catalog is the default --catalog path
	Catalog string `mapstructure:"catalog" yaml:"catalog,omitempty"`

	// Concurrency caps the number of units collecting at once
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency,omitempty"`

	// Timeout bounds each device command batch
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout,omitempty"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level,omitempty"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format,omitempty"`

	// ReportDir receives reports given as bare file names
	ReportDir string `mapstructure:"report_dir" yaml:"report_dir,omitempty"`

	// RunLog receives a JSON line per finished run. Empty disables it.
	RunLog string `mapstructure:"run_log" yaml:"run_log,omitempty"`
}

// Defaults returns the settings used when nothing is configured.
func Defaults() *Settings {
	return &Settings{
		Inventory:   "inventory.yaml",
		Catalog:     "catalog.yaml",
		Concurrency: 10,
		Timeout:     30 * time.Second,
		LogLevel:    "warn",
		LogFormat:   "text",
	}
}

// DefaultSettingsPath returns the default path for the settings file
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "newtcheck_settings.yaml"
	}
	return filepath.Join(home, ".newtcheck", "settings.yaml")
}

// Load reads settings from the default location
func Load() (*Settings, error) {
	return LoadFrom(DefaultSettingsPath())
}

// LoadFrom reads settings from path. A missing file is not an error.
func LoadFrom(path string) (*Settings, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, util.NewConfigError("settings", "%s: %v", path, err)
		}
	}

	s := &Settings{}
	if err := v.Unmarshal(s); err != nil {
		return nil, util.NewConfigError("settings", "%s: %v", path, err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	d := Defaults()
	v.SetDefault(KeyInventory, d.Inventory)
	v.SetDefault(KeyCatalog, d.Catalog)
	v.SetDefault(KeyConcurrency, d.Concurrency)
	v.SetDefault(KeyTimeout, d.Timeout)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyLogFormat, d.LogFormat)
	v.SetDefault(KeyReportDir, d.ReportDir)
	v.SetDefault(KeyRunLog, d.RunLog)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

func (s *Settings) validate() error {
	if s.Concurrency < 1 {
		return util.NewConfigError("settings", "%s must be at least 1", KeyConcurrency)
	}
	if s.Timeout <= 0 {
		return util.NewConfigError("settings", "%s must be positive", KeyTimeout)
	}
	switch s.LogFormat {
	case "text", "json":
	default:
		return util.NewConfigError("settings", "%s must be text or json", KeyLogFormat)
	}
	return nil
}

// ReportPath places a bare file name under ReportDir. Paths with a
// directory component are returned unchanged.
func (s *Settings) ReportPath(name string) string {
	if name == "" || s.ReportDir == "" || filepath.Base(name) != name {
		return name
	}
	return filepath.Join(s.ReportDir, name)
}

// Save writes settings to the default location
func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

// SaveTo writes settings to a specific path
func (s *Settings) SaveTo(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return util.WriteFileLocked(path, data)
}

// Clear resets all settings to their defaults
func (s *Settings) Clear() {
	*s = *Defaults()
}

// Keys lists every settable key in display order.
func Keys() []string {
	return []string{KeyInventory, KeyCatalog, KeyConcurrency, KeyTimeout, KeyLogLevel, KeyLogFormat, KeyReportDir, KeyRunLog}
}

// Get returns the value of key as a string.
func (s *Settings) Get(key string) (string, error) {
	switch key {
	case KeyInventory:
		return s.Inventory, nil
	case KeyCatalog:
		return s.Catalog, nil
	case KeyConcurrency:
		return strconv.Itoa(s.Concurrency), nil
	case KeyTimeout:
		return s.Timeout.String(), nil
	case KeyLogLevel:
		return s.LogLevel, nil
	case KeyLogFormat:
		return s.LogFormat, nil
	case KeyReportDir:
		return s.ReportDir, nil
	case KeyRunLog:
		return s.RunLog, nil
	}
	return "", unknownKey(key)
}

// Set parses value for key and validates the result. s is unchanged on error.
func (s *Settings) Set(key, value string) error {
	next := *s
	switch key {
	case KeyInventory:
		next.Inventory = value
	case KeyCatalog:
		next.Catalog = value
	case KeyConcurrency:
		n, err := strconv.Atoi(value)
		if err != nil {
			return util.NewConfigError("settings", "%s: %q is not a number", key, value)
		}
		next.Concurrency = n
	case KeyTimeout:
		d, err := time.ParseDuration(value)
		if err != nil {
			return util.NewConfigError("settings", "%s: %v", key, err)
		}
		next.Timeout = d
	case KeyLogLevel:
		if _, err := logrus.ParseLevel(value); err != nil {
			return util.NewConfigError("settings", "%s: %v", key, err)
		}
		next.LogLevel = value
	case KeyLogFormat:
		next.LogFormat = value
	case KeyReportDir:
		next.ReportDir = value
	case KeyRunLog:
		next.RunLog = value
	default:
		return unknownKey(key)
	}
	if err := next.validate(); err != nil {
		return err
	}
	*s = next
	return nil
}

func unknownKey(key string) error {
	return util.NewConfigError("settings", "unknown setting %q (valid: %s)", key, strings.Join(Keys(), ", "))
}
