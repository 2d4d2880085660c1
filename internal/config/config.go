package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/thomas-vilte/promptforge/internal/catalog"
)

type (
	Config struct {
		Language         string `json:"language"`
		Provider         string `json:"provider"`
		OpenRouterAPIKey string `json:"openrouter_api_key,omitempty"`
		GeminiAPIKey     string `json:"gemini_api_key,omitempty"`
		ProxyURL         string `json:"proxy_url,omitempty"`
		SiteURL          string `json:"site_url,omitempty"`
		MockDelayMs      int    `json:"mock_delay_ms"`

		Defaults       Defaults      `json:"defaults"`
		MonthlyLimit   int           `json:"monthly_limit"`
		Storage        StorageConfig `json:"storage"`
		Server         ServerConfig  `json:"server"`
		User           UserConfig    `json:"user"`
		CatalogOverlay string        `json:"catalog_overlay,omitempty"`

		PathFile string `json:"path_file"`
	}

	Defaults struct {
		Model     string `json:"model"`
		Technique string `json:"technique"`
		Format    string `json:"format"`
	}

	StorageConfig struct {
		Backend string `json:"backend"`
		Path    string `json:"path,omitempty"`
	}

	ServerConfig struct {
		Addr            string  `json:"addr"`
		AuthToken       string  `json:"auth_token,omitempty"`
		RateLimit       float64 `json:"rate_limit"`
		Burst           int     `json:"burst"`
		CacheTTLSeconds int     `json:"cache_ttl_seconds"`
	}

	UserConfig struct {
		Name  string `json:"name,omitempty"`
		Email string `json:"email,omitempty"`
	}
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
	ProviderProxy      = "proxy"
	ProviderMock       = "mock"

	StorageFile   = "file"
	StorageSQLite = "sqlite"
	StorageMemory = "memory"

	EnvOpenRouterAPIKey = "OPENROUTER_API_KEY"
	EnvGeminiAPIKey     = "GEMINI_API_KEY"
	EnvAuthToken        = "PROMPTFORGE_AUTH_TOKEN"

	configDirName = ".promptforge"

	defaultLang         = LangEN
	defaultProvider     = ProviderOpenRouter
	defaultMonthlyLimit = 1000
	defaultMockDelayMs  = 50
	defaultServerAddr   = ":8888"
	defaultRateLimit    = 1.0
	defaultBurst        = 5
)

// LoadConfig reads the config file. path is either a .json file or a
// directory that holds .promptforge/config.json; a default file is created
// when none exists.
func LoadConfig(path string) (*Config, error) {
	var configPath string

	if filepath.Ext(path) == ".json" {
		configPath = path
	} else {
		configDir := filepath.Join(path, configDirName)
		configPath = filepath.Join(configDir, "config.json")

		if _, err := os.Stat(configDir); os.IsNotExist(err) {
			if err := os.MkdirAll(configDir, 0755); err != nil {
				return nil, fmt.Errorf("error creating config directory: %w", err)
			}
		}
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return CreateDefaultConfig(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error decoding config file: %w", err)
	}
	config.PathFile = configPath
	fillDefaults(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns the defaults without touching the filesystem.
func DefaultConfig() *Config {
	config := &Config{}
	fillDefaults(config)
	return config
}

func CreateDefaultConfig(path string) (*Config, error) {
	config := DefaultConfig()
	config.PathFile = path

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error encoding default config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return nil, fmt.Errorf("error saving default config: %w", err)
	}

	return config, nil
}

func SaveConfig(config *Config) error {
	if err := validateConfig(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if config.PathFile == "" {
		return errors.New("config file path is not set")
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}

	if err := os.WriteFile(config.PathFile, data, 0600); err != nil {
		return fmt.Errorf("error saving config: %w", err)
	}

	return nil
}

// Dir is the directory holding the config file, used as the default root
// for local storage.
func (c *Config) Dir() string {
	if c.PathFile == "" {
		return ""
	}
	return filepath.Dir(c.PathFile)
}

// OpenRouterKey prefers the OPENROUTER_API_KEY environment variable.
func (c *Config) OpenRouterKey() string {
	if v := strings.TrimSpace(os.Getenv(EnvOpenRouterAPIKey)); v != "" {
		return v
	}
	return c.OpenRouterAPIKey
}

func (c *Config) GeminiKey() string {
	if v := strings.TrimSpace(os.Getenv(EnvGeminiAPIKey)); v != "" {
		return v
	}
	return c.GeminiAPIKey
}

func (c *Config) AuthToken() string {
	if v := strings.TrimSpace(os.Getenv(EnvAuthToken)); v != "" {
		return v
	}
	return c.Server.AuthToken
}

func fillDefaults(c *Config) {
	if c.Language == "" {
		c.Language = defaultLang
	}
	if c.Provider == "" {
		c.Provider = defaultProvider
	}
	if c.MonthlyLimit == 0 {
		c.MonthlyLimit = defaultMonthlyLimit
	}
	if c.MockDelayMs == 0 {
		c.MockDelayMs = defaultMockDelayMs
	}
	if c.Defaults.Model == "" {
		c.Defaults.Model = catalog.DefaultModelID
	}
	if c.Defaults.Technique == "" {
		c.Defaults.Technique = catalog.DefaultTechniqueID
	}
	if c.Defaults.Format == "" {
		c.Defaults.Format = catalog.DefaultFormatID
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = StorageFile
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaultServerAddr
	}
	if c.Server.RateLimit == 0 {
		c.Server.RateLimit = defaultRateLimit
	}
	if c.Server.Burst == 0 {
		c.Server.Burst = defaultBurst
	}
}

func validateConfig(config *Config) error {
	if !isValidLanguage(config.Language) {
		return fmt.Errorf("unsupported language: %s", config.Language)
	}

	switch config.Provider {
	case ProviderOpenRouter, ProviderGemini, ProviderMock:
	case ProviderProxy:
		if config.ProxyURL == "" {
			return errors.New("proxy provider requires proxy_url")
		}
	default:
		return fmt.Errorf("unsupported provider: %s", config.Provider)
	}

	if config.MonthlyLimit <= 0 {
		return errors.New("monthly_limit must be greater than 0")
	}
	if config.MockDelayMs < 0 {
		return errors.New("mock_delay_ms cannot be negative")
	}

	switch config.Storage.Backend {
	case StorageFile, StorageSQLite, StorageMemory:
	default:
		return fmt.Errorf("unsupported storage backend: %s", config.Storage.Backend)
	}

	if config.Server.RateLimit < 0 {
		return errors.New("server rate_limit cannot be negative")
	}
	if config.Server.Burst < 0 {
		return errors.New("server burst cannot be negative")
	}
	if config.Server.CacheTTLSeconds < 0 {
		return errors.New("server cache_ttl_seconds cannot be negative")
	}

	return nil
}
