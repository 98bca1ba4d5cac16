package config

import (
	"cursor-id-reset/log"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
)

const ConfigFileName = "config.json"

// GetConfigDir returns the path to the tool's configuration directory
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config home directory: %w", err)
	}
	return filepath.Join(homeDir, ".cursor-id-reset"), nil
}

// Config represents the tool configuration
type Config struct {
	// AppName is the directory name the target application uses for its data.
	AppName string `json:"app_name"`
	// ProcessName is matched case-insensitively against running process names.
	ProcessName string `json:"process_name"`
	// CloseAttempts is how many times to check that the target application exited.
	CloseAttempts int `json:"close_attempts"`
	// CloseRetryDelay is the pause (ms) between those checks.
	CloseRetryDelay int `json:"close_retry_delay"`
	// LogFile is where the run log is appended.
	LogFile string `json:"log_file"`
	// AutoYes answers yes to every prompt.
	AutoYes bool `json:"auto_yes"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		AppName:         "Cursor",
		ProcessName:     "cursor",
		CloseAttempts:   3,
		CloseRetryDelay: 5000,
		LogFile:         log.DefaultFileName,
		AutoYes:         false,
	}
}

// RetryDelay returns CloseRetryDelay as a duration.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.CloseRetryDelay) * time.Millisecond
}

// fillDefaults replaces zero values left by a partial config file.
func (c *Config) fillDefaults() {
	def := DefaultConfig()
	if c.AppName == "" {
		c.AppName = def.AppName
	}
	if c.ProcessName == "" {
		c.ProcessName = def.ProcessName
	}
	if c.CloseAttempts <= 0 {
		c.CloseAttempts = def.CloseAttempts
	}
	if c.CloseRetryDelay < 0 {
		c.CloseRetryDelay = def.CloseRetryDelay
	}
	if c.LogFile == "" {
		c.LogFile = def.LogFile
	}
}

// LoadConfig loads the configuration from disk. If it cannot be done, we return
// the default configuration, which is saved when no file exists yet.
func LoadConfig(logger *log.Logger) *Config {
	return loadConfig(logger, true)
}

// ReadConfig is LoadConfig without writing anything.
func ReadConfig(logger *log.Logger) *Config {
	return loadConfig(logger, false)
}

func loadConfig(logger *log.Logger, saveDefault bool) *Config {
	configDir, err := GetConfigDir()
	if err != nil {
		logger.Errorf("failed to get config directory: %v", err)
		return DefaultConfig()
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			defaultCfg := DefaultConfig()
			if !saveDefault {
				return defaultCfg
			}
			if saveErr := saveConfig(defaultCfg); saveErr != nil {
				logger.Warnf("failed to save default config: %v", saveErr)
			}
			return defaultCfg
		}

		logger.Warnf("failed to get config file: %v", err)
		return DefaultConfig()
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		logger.Errorf("failed to parse config file: %v", err)
		return DefaultConfig()
	}
	config.fillDefaults()

	return &config
}

// saveConfig saves the configuration to disk
func saveConfig(config *Config) error {
	configDir, err := GetConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return AtomicWriteFile(configPath, data, 0644)
}

// SaveConfig exports the saveConfig function for use by other packages
func SaveConfig(config *Config) error {
	return saveConfig(config)
}

// Environment holds the values the reset flow reads from the process
// environment.
type Environment struct {
	// Username is the login whose storage file is reset.
	Username string
	// Automated disables prompts and the exit pause.
	Automated bool
}

// LoadEnvironment reads USER and AUTOMATED_MODE.
func LoadEnvironment() Environment {
	return Environment{
		Username:  os.Getenv("USER"),
		Automated: os.Getenv("AUTOMATED_MODE") == "1",
	}
}
