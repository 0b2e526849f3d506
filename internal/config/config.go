package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. TELECACHE_STORE_PATH.
const EnvPrefix = "TELECACHE_"

type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram" envPrefix:"TELEGRAM_"`
	LogLevel  string          `yaml:"log_level" env:"LOG_LEVEL"`
	Store     StoreConfig     `yaml:"store" envPrefix:"STORE_"`
	Media     MediaConfig     `yaml:"media" envPrefix:"MEDIA_"`
	Retry     RetryConfig     `yaml:"retry" envPrefix:"RETRY_"`
	FloodWait FloodWaitConfig `yaml:"flood_wait" envPrefix:"FLOOD_WAIT_"`
}

type TelegramConfig struct {
	APIID   int    `yaml:"api_id" env:"API_ID"`
	APIHash string `yaml:"api_hash" env:"API_HASH"`
	Phone   string `yaml:"phone" env:"PHONE"`
}

type StoreConfig struct {
	Path      string `yaml:"path" env:"PATH"`
	CacheSize int64  `yaml:"cache_size" env:"CACHE_SIZE"`
}

type MediaConfig struct {
	Dir string `yaml:"dir" env:"DIR"`

	// MaxDocumentSize caps the documents history sync downloads, in bytes.
	MaxDocumentSize int64 `yaml:"max_document_size" env:"MAX_DOCUMENT_SIZE"`
}

type RetryConfig struct {
	InitialInterval time.Duration `yaml:"initial_interval" env:"INITIAL_INTERVAL"`
	MaxInterval     time.Duration `yaml:"max_interval" env:"MAX_INTERVAL"`
}

type FloodWaitConfig struct {
	MaxRetries int           `yaml:"max_retries" env:"MAX_RETRIES"`
	MaxWait    time.Duration `yaml:"max_wait" env:"MAX_WAIT"`
}

func Dir() string {
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		cfgDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(cfgDir, "telecache")
}

// Load reads the YAML file at path, applies TELECACHE_* environment
// overrides and fills defaults. Relative store and media paths resolve
// against the directory of the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.setDefaults(filepath.Dir(path))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) setDefaults(base string) {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Store.Path == "" {
		c.Store.Path = "store"
	}
	if !filepath.IsAbs(c.Store.Path) {
		c.Store.Path = filepath.Join(base, c.Store.Path)
	}
	if c.Media.Dir == "" {
		c.Media.Dir = "media"
	}
	if !filepath.IsAbs(c.Media.Dir) {
		c.Media.Dir = filepath.Join(base, c.Media.Dir)
	}
	if c.Media.MaxDocumentSize <= 0 {
		c.Media.MaxDocumentSize = 10 << 20
	}
	if c.Retry.InitialInterval <= 0 {
		c.Retry.InitialInterval = 500 * time.Millisecond
	}
	if c.Retry.MaxInterval <= 0 {
		c.Retry.MaxInterval = 30 * time.Second
	}
	if c.FloodWait.MaxRetries <= 0 {
		c.FloodWait.MaxRetries = 5
	}
	if c.FloodWait.MaxWait <= 0 {
		c.FloodWait.MaxWait = time.Minute
	}
}

func (c *Config) Validate() error {
	if c.Retry.MaxInterval < c.Retry.InitialInterval {
		return fmt.Errorf("retry.max_interval %s is below retry.initial_interval %s", c.Retry.MaxInterval, c.Retry.InitialInterval)
	}
	return nil
}
