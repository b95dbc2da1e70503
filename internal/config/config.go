package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort             = 8080
	DefaultHost             = "127.0.0.1"
	DefaultLogLevel         = "info"
	DefaultMaxFileSize      = 100 * 1024 * 1024 // 100MB
	DefaultCatalogCacheSize = 32

	// Directory permissions
	DefaultDirPerm = 0o750

	// EnvPrefix prefixes every environment variable, e.g. PDF_FILLER_WORK_DIR.
	EnvPrefix = "PDF_FILLER"
)

// Flag and key names shared by pflag, viper and the environment.
const (
	KeyConfigFile       = "config"
	KeyMode             = "mode"
	KeyHost             = "host"
	KeyPort             = "port"
	KeyWorkDir          = "work-dir"
	KeyOutputDir        = "output-dir"
	KeyProjectDir       = "project-dir"
	KeyLogLevel         = "log-level"
	KeyMaxFileSize      = "max-file-size"
	KeyForceAutosize    = "force-autosize"
	KeyNameColumn       = "name-column"
	KeyCatalogCacheSize = "catalog-cache-size"
)

// Config holds all configuration for the form filler
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Files. Every path argument must resolve inside WorkDirectory.
	WorkDirectory    string
	OutputDirectory  string
	ProjectDirectory string

	// Filling
	ForceAutosize bool
	NameColumn    string

	// Application configuration
	Version          string
	ServerName       string
	LogLevel         string
	MaxFileSize      int64 // Maximum template or data file size in bytes
	CatalogCacheSize int
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:             ModeStdio,
		Host:             DefaultHost,
		Port:             DefaultPort,
		WorkDirectory:    currentDir,
		OutputDirectory:  filepath.Join(currentDir, "output"),
		ProjectDirectory: filepath.Join(currentDir, "data", "projects"),
		ForceAutosize:    true,
		Version:          "1.0.0",
		ServerName:       "mcp-pdf-filler",
		LogLevel:         DefaultLogLevel,
		MaxFileSize:      DefaultMaxFileSize,
		CatalogCacheSize: DefaultCatalogCacheSize,
	}
}

// RegisterFlags defines every configuration flag on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	cfg := DefaultConfig()
	fs.String(KeyConfigFile, "", "Optional config file (yaml, json or toml)")
	fs.String(KeyMode, cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP/SSE")
	fs.String(KeyHost, cfg.Host, "Server host address (server mode only)")
	fs.Int(KeyPort, cfg.Port, "Server port (server mode only)")
	fs.String(KeyWorkDir, cfg.WorkDirectory, "Directory that templates, data files and outputs must live in")
	fs.String(KeyOutputDir, cfg.OutputDirectory, "Directory for generated documents")
	fs.String(KeyProjectDir, cfg.ProjectDirectory, "Directory for saved projects")
	fs.String(KeyLogLevel, cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.Int64(KeyMaxFileSize, cfg.MaxFileSize, "Maximum template or data file size in bytes")
	fs.Bool(KeyForceAutosize, cfg.ForceAutosize, "Rewrite text field font sizes to auto")
	fs.String(KeyNameColumn, cfg.NameColumn, "Column that names generated files")
	fs.Int(KeyCatalogCacheSize, cfg.CatalogCacheSize, "Number of template field catalogs kept in memory")
}

// Load resolves the configuration: defaults, then an optional config file,
// then PDF_FILLER_* environment variables, then flags set on fs. fs may be
// nil, in which case only defaults and the environment apply.
func Load(fs *pflag.FlagSet) (*Config, error) {
	cfg := DefaultConfig()
	v := newViper(cfg)

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	if file := v.GetString(KeyConfigFile); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	populateConfigFromViper(v, cfg)
	cfg.expandPaths()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func newViper(cfg *Config) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyMode, cfg.Mode)
	v.SetDefault(KeyHost, cfg.Host)
	v.SetDefault(KeyPort, cfg.Port)
	v.SetDefault(KeyWorkDir, cfg.WorkDirectory)
	v.SetDefault(KeyOutputDir, cfg.OutputDirectory)
	v.SetDefault(KeyProjectDir, cfg.ProjectDirectory)
	v.SetDefault(KeyLogLevel, cfg.LogLevel)
	v.SetDefault(KeyMaxFileSize, cfg.MaxFileSize)
	v.SetDefault(KeyForceAutosize, cfg.ForceAutosize)
	v.SetDefault(KeyNameColumn, cfg.NameColumn)
	v.SetDefault(KeyCatalogCacheSize, cfg.CatalogCacheSize)
	return v
}

func populateConfigFromViper(v *viper.Viper, cfg *Config) {
	cfg.Mode = v.GetString(KeyMode)
	cfg.Host = v.GetString(KeyHost)
	cfg.Port = v.GetInt(KeyPort)
	cfg.WorkDirectory = v.GetString(KeyWorkDir)
	cfg.OutputDirectory = v.GetString(KeyOutputDir)
	cfg.ProjectDirectory = v.GetString(KeyProjectDir)
	cfg.LogLevel = strings.ToLower(v.GetString(KeyLogLevel))
	cfg.MaxFileSize = v.GetInt64(KeyMaxFileSize)
	cfg.ForceAutosize = v.GetBool(KeyForceAutosize)
	cfg.NameColumn = v.GetString(KeyNameColumn)
	cfg.CatalogCacheSize = v.GetInt(KeyCatalogCacheSize)
}

func (c *Config) expandPaths() {
	for _, p := range []*string{&c.WorkDirectory, &c.OutputDirectory, &c.ProjectDirectory} {
		if *p == "" {
			continue
		}
		if abs, err := filepath.Abs(*p); err == nil {
			*p = abs
		}
	}
}

// Validate checks the configuration and creates missing directories.
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	dirs := []struct {
		label string
		path  string
	}{
		{"work", c.WorkDirectory},
		{"output", c.OutputDirectory},
		{"project", c.ProjectDirectory},
	}
	for _, d := range dirs {
		if d.path == "" {
			return fmt.Errorf("%s directory cannot be empty", d.label)
		}
		if err := ensureDir(d.path); err != nil {
			return fmt.Errorf("cannot use %s directory %s: %w", d.label, d.path, err)
		}
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	if c.CatalogCacheSize < 0 {
		return errors.New("catalog cache size cannot be negative")
	}

	if _, ok := logLevels[c.LogLevel]; !ok {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

func ensureDir(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return os.MkdirAll(path, DefaultDirPerm)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return errors.New("not a directory")
	}
	return nil
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	if l, ok := logLevels[c.LogLevel]; ok {
		return l
	}
	return slog.LevelInfo
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, WorkDirectory: %s, OutputDirectory: %s, "+
		"LogLevel: %s, MaxFileSize: %d, ForceAutosize: %t}",
		c.Mode, c.Host, c.Port, c.WorkDirectory, c.OutputDirectory, c.LogLevel, c.MaxFileSize, c.ForceAutosize)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
