package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dl-alexandre/gxlib/internal/utils"
	"github.com/pelletier/go-toml/v2"
)

const (
	// ConfigFileName is the name of the config file
	ConfigFileName = "config.toml"
	// EnvPrefix is the prefix for tool-specific environment variables
	EnvPrefix = "GXLIB_"
)

// Where a credential value came from
const (
	SourceDefault = "default"
	SourceFile    = "file"
	SourceEnv     = "env"
	SourceKeyring = "keyring"
	SourceFlag    = "flag"
)

// Config holds everything an import run needs. It is built once by the CLI
// and passed explicitly into the importer.
type Config struct {
	// GalaxyURL is the base URL of the Galaxy instance
	GalaxyURL string `toml:"galaxy_url" json:"galaxyUrl"`

	// AdminEmail and AdminPassword authenticate against Galaxy
	AdminEmail    string `toml:"admin_email" json:"adminEmail"`
	AdminPassword string `toml:"admin_password,omitempty" json:"adminPassword,omitempty"`

	// APIKey, when set, is sent as-is and skips the password exchange
	APIKey string `toml:"api_key,omitempty" json:"apiKey,omitempty"`

	// DataDir is the root of the tree to register
	DataDir string `toml:"data_dir" json:"dataDir"`

	LibraryName        string `toml:"library_name" json:"libraryName"`
	LibraryDescription string `toml:"library_description" json:"libraryDescription"`

	// Exclude holds optional glob patterns skipped by the scanner
	Exclude []string `toml:"exclude,omitempty" json:"exclude,omitempty"`

	// Pauses, in milliseconds
	FolderPauseMs  int `toml:"folder_pause_ms" json:"folderPauseMs"`
	PollIntervalMs int `toml:"poll_interval_ms" json:"pollIntervalMs"`
	SettleDelayMs  int `toml:"settle_delay_ms" json:"settleDelayMs"`

	// QueueCommand is run to inspect the cluster queue
	QueueCommand       []string `toml:"queue_command" json:"queueCommand"`
	QueueEmptyExitCode int      `toml:"queue_empty_exit_code" json:"queueEmptyExitCode"`
	// QueueTimeout bounds the drain wait in seconds; 0 waits forever
	QueueTimeout int `toml:"queue_timeout" json:"queueTimeout"`

	// RequestTimeout is the per-request HTTP timeout in seconds
	RequestTimeout int `toml:"request_timeout" json:"requestTimeout"`

	// LogLevel sets the logging verbosity (quiet, normal, verbose, debug)
	LogLevel string `toml:"log_level" json:"logLevel"`

	// LockFile, when set, guards against concurrent imports
	LockFile string `toml:"lock_file,omitempty" json:"lockFile,omitempty"`

	// HistoryDB, when set, records each run in a SQLite file
	HistoryDB string `toml:"history_db,omitempty" json:"historyDb,omitempty"`

	// PasswordSource tells where AdminPassword came from
	PasswordSource string `toml:"-" json:"passwordSource"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		GalaxyURL:          utils.DefaultGalaxyURL,
		AdminEmail:         utils.DefaultAdminEmail,
		AdminPassword:      utils.DefaultAdminPassword,
		DataDir:            utils.DefaultDataDir,
		LibraryName:        utils.DefaultLibraryName,
		LibraryDescription: utils.DefaultLibraryDescription,
		FolderPauseMs:      int(utils.DefaultFolderPause / time.Millisecond),
		PollIntervalMs:     int(utils.DefaultPollInterval / time.Millisecond),
		SettleDelayMs:      int(utils.DefaultSettleDelay / time.Millisecond),
		QueueCommand:       []string{utils.DefaultQueueCommand},
		QueueEmptyExitCode: utils.DefaultQueueEmptyExitCode,
		RequestTimeout:     utils.DefaultRequestTimeoutSeconds,
		LogLevel:           "normal",
		PasswordSource:     SourceDefault,
	}
}

// Load loads configuration with precedence: env vars > config file > defaults.
// CLI flags are applied by the caller on top of the result. An empty path
// means the default location, which may be absent.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		defaultPath, err := GetConfigPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	if err := cfg.loadFromFile(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || explicit {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	before := c.AdminPassword
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if c.AdminPassword != before {
		c.PasswordSource = SourceFile
	}
	return nil
}

func (c *Config) loadFromEnv() {
	// Credentials use the names injected by the Galaxy container.
	if v := os.Getenv(utils.EnvAdminUser); v != "" {
		c.AdminEmail = v
	}
	if v := os.Getenv(utils.EnvAdminPassword); v != "" {
		c.AdminPassword = v
		c.PasswordSource = SourceEnv
	}

	if v := os.Getenv(EnvPrefix + "API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv(EnvPrefix + "URL"); v != "" {
		c.GalaxyURL = v
	}
	if v := os.Getenv(EnvPrefix + "DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv(EnvPrefix + "LIBRARY_NAME"); v != "" {
		c.LibraryName = v
	}
	if v := os.Getenv(EnvPrefix + "LIBRARY_DESCRIPTION"); v != "" {
		c.LibraryDescription = v
	}
	if v := os.Getenv(EnvPrefix + "QUEUE_COMMAND"); v != "" {
		c.QueueCommand = strings.Fields(v)
	}
	if v := os.Getenv(EnvPrefix + "QUEUE_EMPTY_EXIT_CODE"); v != "" {
		if code, err := strconv.Atoi(v); err == nil {
			c.QueueEmptyExitCode = code
		}
	}
	if v := os.Getenv(EnvPrefix + "QUEUE_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.QueueTimeout = secs
		}
	}
	if v := os.Getenv(EnvPrefix + "REQUEST_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.RequestTimeout = secs
		}
	}
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvPrefix + "LOCK_FILE"); v != "" {
		c.LockFile = v
	}
	if v := os.Getenv(EnvPrefix + "HISTORY_DB"); v != "" {
		c.HistoryDB = v
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	u, err := url.Parse(c.GalaxyURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("galaxy url must be an absolute http(s) URL, got: %q", c.GalaxyURL)
	}

	if strings.TrimSpace(c.AdminEmail) == "" {
		return errors.New("admin email must not be empty")
	}

	if strings.TrimSpace(c.DataDir) == "" {
		return errors.New("data directory must not be empty")
	}

	if strings.TrimSpace(c.LibraryName) == "" {
		return errors.New("library name must not be empty")
	}

	if c.FolderPauseMs < 0 || c.PollIntervalMs < 0 || c.SettleDelayMs < 0 {
		return fmt.Errorf("pauses must be non-negative, got folder=%d poll=%d settle=%d",
			c.FolderPauseMs, c.PollIntervalMs, c.SettleDelayMs)
	}

	if len(c.QueueCommand) == 0 || strings.TrimSpace(c.QueueCommand[0]) == "" {
		return errors.New("queue command must not be empty")
	}

	if c.QueueEmptyExitCode < 1 || c.QueueEmptyExitCode > 255 {
		return fmt.Errorf("queue empty exit code must be between 1 and 255, got: %d", c.QueueEmptyExitCode)
	}

	if c.QueueTimeout < 0 {
		return fmt.Errorf("queue timeout must be non-negative, got: %d", c.QueueTimeout)
	}

	if c.RequestTimeout < 1 || c.RequestTimeout > 3600 {
		return fmt.Errorf("request timeout must be between 1 and 3600 seconds, got: %d", c.RequestTimeout)
	}

	validLogLevels := []string{"quiet", "normal", "verbose", "debug"}
	for _, level := range validLogLevels {
		if c.LogLevel == level {
			return nil
		}
	}
	return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
}

// Save writes the configuration to path as TOML, creating parent
// directories. The file is private because it may hold the admin password.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Redacted returns a copy safe to print
func (c *Config) Redacted() *Config {
	out := *c
	if out.AdminPassword != "" {
		out.AdminPassword = "********"
	}
	if out.APIKey != "" {
		out.APIKey = "********"
	}
	out.Exclude = append([]string(nil), c.Exclude...)
	out.QueueCommand = append([]string(nil), c.QueueCommand...)
	return &out
}

// GetFolderPause returns the pause after each folder upload
func (c *Config) GetFolderPause() time.Duration {
	return time.Duration(c.FolderPauseMs) * time.Millisecond
}

// GetPollInterval returns the delay between queue polls
func (c *Config) GetPollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// GetSettleDelay returns the trailing delay after the queue drains
func (c *Config) GetSettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMs) * time.Millisecond
}

// GetQueueTimeout returns the drain bound, or 0 for none
func (c *Config) GetQueueTimeout() time.Duration {
	return time.Duration(c.QueueTimeout) * time.Second
}

// GetRequestTimeout returns the request timeout as a duration
func (c *Config) GetRequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// GetConfigPath returns the path to the default config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, ConfigFileName), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	if dir := os.Getenv(EnvPrefix + "CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "gxlib"), nil
}
