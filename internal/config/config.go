// Package config builds the immutable server configuration from defaults, an
// optional TOML or YAML file, a dotenv file, the process environment and
// command line overrides.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/f4ah6o/assetserve/internal/logging"
)

const (
	// PortVariable is the environment variable holding the listening port.
	PortVariable = "PORT"
	// DefaultAssetDir is the asset directory, relative to the working
	// directory, used when none is configured.
	DefaultAssetDir = "build"
	// DefaultEntryFile is the entry-point file, relative to the working
	// directory, used when none is configured.
	DefaultEntryFile = "index.html"
	// DefaultEnvFile is the dotenv file loaded when none is specified.
	DefaultEnvFile = ".env"
)

// Config is the server configuration. It is created once by Load and must not
// be modified afterwards.
type Config struct {
	// Port is the listening port exactly as configured. It is not validated.
	Port string
	// AssetDir is the absolute path of the directory served by path.
	AssetDir string
	// EntryFile is the absolute path of the file served for "/".
	EntryFile string
	// MaxConnections caps simultaneously accepted connections. Zero means
	// unlimited.
	MaxConnections int
	// LogLevel is the level for the server's logger.
	LogLevel logging.Level
}

// Address returns the listen address covering all interfaces.
func (c *Config) Address() string {
	return ":" + c.Port
}

// Options holds the inputs to Load that come from the command line. Zero
// values mean "not specified".
type Options struct {
	// ConfigPath is an optional TOML (.toml) or YAML (.yaml, .yml) file.
	ConfigPath string
	// EnvFile is the dotenv file to load. If empty, DefaultEnvFile is loaded
	// when it exists.
	EnvFile string
	// AssetDir overrides the asset directory.
	AssetDir string
	// EntryFile overrides the entry-point file.
	EntryFile string
	// MaxConnections overrides the connection cap when non-nil.
	MaxConnections *int
	// LogLevel overrides the log level when non-empty.
	LogLevel string
	// WorkingDir is the directory relative paths are resolved against. If
	// empty, the process working directory is used.
	WorkingDir string
}

// fileConfig is the on-disk configuration format shared by TOML and YAML.
type fileConfig struct {
	Port           *string        `toml:"port" yaml:"port"`
	AssetDir       string         `toml:"asset_dir" yaml:"asset_dir"`
	EntryFile      string         `toml:"entry_file" yaml:"entry_file"`
	MaxConnections *int           `toml:"max_connections" yaml:"max_connections"`
	LogLevel       *logging.Level `toml:"log_level" yaml:"log_level"`
}

// readFile decodes a configuration file, selecting the format by extension.
func readFile(path string) (*fileConfig, error) {
	result := &fileConfig{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.DecodeFile(path, result); err != nil {
			return nil, errors.Wrap(err, "unable to decode TOML configuration")
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "unable to read YAML configuration")
		}
		if err := yaml.Unmarshal(data, result); err != nil {
			return nil, errors.Wrap(err, "unable to decode YAML configuration")
		}
	default:
		return nil, errors.Errorf("unsupported configuration file extension: %q", ext)
	}
	return result, nil
}

// loadEnvFile loads a dotenv file into the process environment without
// overriding variables that are already set.
func loadEnvFile(path string, explicit bool) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return errors.Wrap(err, "unable to access environment file")
	}
	if err := godotenv.Load(path); err != nil {
		return errors.Wrap(err, "unable to load environment file")
	}
	return nil
}

// resolve makes path absolute relative to base.
func resolve(base, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}

// Load builds a Config. Precedence from lowest to highest is: defaults, the
// configuration file, the PORT environment variable (possibly populated from
// the dotenv file) and finally the explicit options.
func Load(opts Options) (*Config, error) {
	workingDir := opts.WorkingDir
	if workingDir == "" {
		var err error
		if workingDir, err = os.Getwd(); err != nil {
			return nil, errors.Wrap(err, "unable to determine working directory")
		}
	}

	cfg := &Config{
		AssetDir:  DefaultAssetDir,
		EntryFile: DefaultEntryFile,
		LogLevel:  logging.LevelInfo,
	}

	if opts.ConfigPath != "" {
		file, err := readFile(resolve(workingDir, opts.ConfigPath))
		if err != nil {
			return nil, err
		}
		if file.Port != nil {
			cfg.Port = *file.Port
		}
		if file.AssetDir != "" {
			cfg.AssetDir = file.AssetDir
		}
		if file.EntryFile != "" {
			cfg.EntryFile = file.EntryFile
		}
		if file.MaxConnections != nil {
			cfg.MaxConnections = *file.MaxConnections
		}
		if file.LogLevel != nil {
			cfg.LogLevel = *file.LogLevel
		}
	}

	envFile, explicit := opts.EnvFile, opts.EnvFile != ""
	if !explicit {
		envFile = DefaultEnvFile
	}
	if err := loadEnvFile(resolve(workingDir, envFile), explicit); err != nil {
		return nil, err
	}
	if port, ok := os.LookupEnv(PortVariable); ok {
		cfg.Port = port
	}

	if opts.AssetDir != "" {
		cfg.AssetDir = opts.AssetDir
	}
	if opts.EntryFile != "" {
		cfg.EntryFile = opts.EntryFile
	}
	if opts.MaxConnections != nil {
		cfg.MaxConnections = *opts.MaxConnections
	}
	if opts.LogLevel != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(opts.LogLevel)); err != nil {
			return nil, errors.Wrap(err, "invalid log level option")
		}
	}

	if cfg.MaxConnections < 0 {
		return nil, errors.Errorf("invalid connection limit: %d", cfg.MaxConnections)
	}

	cfg.AssetDir = resolve(workingDir, cfg.AssetDir)
	cfg.EntryFile = resolve(workingDir, cfg.EntryFile)

	return cfg, nil
}
