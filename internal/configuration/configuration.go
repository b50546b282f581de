package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	AppName string `koanf:"app_name"`
	Server  struct {
		Address string `koanf:"address"`
	} `koanf:"server"`
	Sheet struct {
		BaseURL string        `koanf:"base_url"`
		Timeout time.Duration `koanf:"timeout"`
	} `koanf:"sheet"`
	Session struct {
		SettlingDelay time.Duration `koanf:"settling_delay"`
	} `koanf:"session"`
	Identity struct {
		File string `koanf:"file"`
	} `koanf:"identity"`
	Letters struct {
		OutputDir          string   `koanf:"output_dir"`
		SenderName         string   `koanf:"sender_name"`
		SenderOrganization string   `koanf:"sender_organization"`
		SenderAddressLines []string `koanf:"sender_address_lines"`
	} `koanf:"letters"`
	Log struct {
		Level  string `koanf:"level"`
		Format string `koanf:"format"`
	} `koanf:"log"`
}

// DefaultConfig returns the built-in defaults, overridable by file and env.
func DefaultConfig() *Config {
	cfg := &Config{AppName: "callsheet"}
	cfg.Server.Address = ":8080"
	cfg.Sheet.BaseURL = "https://sheet.example.com/api/banks"
	cfg.Sheet.Timeout = 30 * time.Second
	cfg.Session.SettlingDelay = 1 * time.Second
	cfg.Identity.File = "./callsheet-identity.json"
	cfg.Letters.OutputDir = "./letters"
	cfg.Letters.SenderName = "Branch Verification Desk"
	cfg.Letters.SenderOrganization = "Bank Records Cell"
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	return cfg
}

// Load loads the configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	var k = koanf.New(".")

	// Load default values
	defaultConfig := DefaultConfig()
	if err := k.Load(structs.Provider(defaultConfig, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}

	// Load from config file if specified
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
				return nil, fmt.Errorf("error loading TOML config file: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error checking config file: %w", err)
		}
	} else {
		commonPaths := []string{
			"./config.toml",
			"./config/config.toml",
			"/etc/callsheet/config.toml",
		}
		for _, path := range commonPaths {
			if _, err := os.Stat(path); err == nil {
				if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
					return nil, fmt.Errorf("error loading TOML config file from %s: %w", path, err)
				}
				break
			}
		}
	}

	// Load environment variables with APP_ prefix
	callback := func(s string) string {
		s = strings.TrimPrefix(s, "APP_")
		s = strings.ToLower(s)
		s = strings.ReplaceAll(s, "__", ".")
		return s
	}
	if err := k.Load(env.Provider("APP_", ".", callback), nil); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	// Unmarshal the config into our Config struct
	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Validate the config
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

// validateConfig checks that required fields are present and valid
func validateConfig(config *Config) error {
	if config.Sheet.BaseURL == "" {
		return errors.New("sheet base_url cannot be empty")
	}
	if !strings.HasPrefix(config.Sheet.BaseURL, "http://") && !strings.HasPrefix(config.Sheet.BaseURL, "https://") {
		return fmt.Errorf("sheet base_url must start with 'http://' or 'https://', got '%s'", config.Sheet.BaseURL)
	}
	if config.Sheet.Timeout < 0 {
		return errors.New("sheet timeout cannot be negative")
	}

	if config.Server.Address == "" {
		return errors.New("server address cannot be empty")
	}

	if config.Session.SettlingDelay < 0 {
		return errors.New("session settling_delay cannot be negative")
	}

	if config.Identity.File == "" {
		return errors.New("identity file cannot be empty")
	}
	if config.Letters.OutputDir == "" {
		return errors.New("letters output_dir cannot be empty")
	}

	if config.Log.Level == "" {
		return errors.New("log level cannot be empty")
	}
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}
	if !validLogLevels[strings.ToLower(config.Log.Level)] {
		return errors.New("invalid log level: must be one of debug, info, warn, error, fatal")
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[strings.ToLower(config.Log.Format)] {
		return errors.New("invalid log format: must be text or json")
	}

	return nil
}
