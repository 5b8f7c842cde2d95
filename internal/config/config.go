package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/abhisek/mandela/internal/llm"
)

// ErrMissingTelegramToken is returned by RequireTelegram when no bot token is set.
var ErrMissingTelegramToken = errors.New("telegram token is not configured (MANDELA_TELEGRAM_TOKEN)")

// EnvPrefix is prepended to every environment override, e.g. MANDELA_SERVER_ADDR.
const EnvPrefix = "MANDELA"

// Config holds application configuration loaded from file, .env and environment.
type Config struct {
	Env      string   `mapstructure:"env"` // local, dev, prod
	Log      Log      `mapstructure:"log"`
	Store    Store    `mapstructure:"store"`
	Catalog  Catalog  `mapstructure:"catalog"`
	Assets   Assets   `mapstructure:"assets"`
	Server   Server   `mapstructure:"server"`
	Telegram Telegram `mapstructure:"telegram"`
	Events   Events   `mapstructure:"events"`
	LLM      LLM      `mapstructure:"llm"`
}

// Log configures the zap logger.
type Log struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// Store selects the event database.
type Store struct {
	Driver string `mapstructure:"driver"` // sqlite or postgres
	DSN    string `mapstructure:"dsn"`    // file path for sqlite, URL for postgres
}

// Catalog points at an optional YAML catalog replacing the built-in one.
type Catalog struct {
	File string `mapstructure:"file"`
}

// Assets selects where quiz images come from.
type Assets struct {
	Source string `mapstructure:"source"` // dir or minio
	Dir    string `mapstructure:"dir"`
	Minio  Minio  `mapstructure:"minio"`
}

// Minio holds object storage credentials.
type Minio struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	Secure    bool   `mapstructure:"secure"`
}

// Server configures the HTTP API.
type Server struct {
	Addr            string        `mapstructure:"addr"`
	Mode            string        `mapstructure:"mode"` // gin mode: debug, release, test
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	RateLimit       int           `mapstructure:"rate_limit"` // requests per window per client
	RateWindow      time.Duration `mapstructure:"rate_window"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Telegram configures the bot.
type Telegram struct {
	Token   string `mapstructure:"token"`
	Debug   bool   `mapstructure:"debug"`
	Timeout int    `mapstructure:"timeout"` // long-poll seconds
}

// Events configures the optional AMQP publisher.
type Events struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

// LLM configures the deep-dive provider. Empty Provider means auto-discover.
type LLM struct {
	Provider string        `mapstructure:"provider"`
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// IsProduction reports whether env is prod or production.
func (c *Config) IsProduction() bool {
	return c.Env == "prod" || c.Env == "production"
}

// RequireTelegram validates that the bot can start.
func (c *Config) RequireTelegram() error {
	if c.Telegram.Token == "" {
		return ErrMissingTelegramToken
	}
	return nil
}

// LLMConfig converts the llm section into provider configuration. The
// bool is false when no provider is configured or discoverable.
func (c *Config) LLMConfig() (llm.Config, bool) {
	if c.LLM.Provider == "" {
		return llm.DiscoverConfig()
	}
	cfg := llm.DefaultConfig()
	cfg.Provider = c.LLM.Provider
	if c.LLM.Timeout > 0 {
		cfg.Timeout = c.LLM.Timeout
	}
	switch c.LLM.Provider {
	case "anthropic":
		cfg.Anthropic.APIKey = c.LLM.APIKey
		setIf(&cfg.Anthropic.Model, c.LLM.Model)
	case "openai":
		cfg.OpenAI.APIKey = c.LLM.APIKey
		setIf(&cfg.OpenAI.Model, c.LLM.Model)
		cfg.OpenAI.BaseURL = c.LLM.BaseURL
	case "gemini":
		cfg.Gemini.APIKey = c.LLM.APIKey
		setIf(&cfg.Gemini.Model, c.LLM.Model)
	case "openrouter":
		cfg.OpenRouter.APIKey = c.LLM.APIKey
		setIf(&cfg.OpenRouter.Model, c.LLM.Model)
		setIf(&cfg.OpenRouter.BaseURL, c.LLM.BaseURL)
	}
	return cfg, true
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", defaultLogFile())
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 14)

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.dsn", "")

	v.SetDefault("assets.source", "dir")
	v.SetDefault("assets.dir", "images")
	v.SetDefault("assets.minio.endpoint", "")
	v.SetDefault("assets.minio.access_key", "")
	v.SetDefault("assets.minio.secret_key", "")
	v.SetDefault("assets.minio.bucket", "mandela")
	v.SetDefault("assets.minio.prefix", "")
	v.SetDefault("assets.minio.secure", false)
	v.SetDefault("catalog.file", "")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.rate_limit", 60)
	v.SetDefault("server.rate_window", "1m")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("telegram.debug", false)
	v.SetDefault("telegram.timeout", 60)

	v.SetDefault("events.exchange", "mandela.events")

	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.timeout", "30s")
}

// Load reads configuration. path may be empty, in which case config.yaml
// is looked up in the working directory and $XDG_CONFIG_HOME/mandela.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	// .env is optional.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "mandela"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("telegram.token", EnvPrefix+"_TELEGRAM_TOKEN", "TELEGRAM_API_TOKEN")
	_ = v.BindEnv("store.dsn", EnvPrefix+"_STORE_DSN", "DATABASE_URL")
	_ = v.BindEnv("events.url", EnvPrefix+"_EVENTS_URL", "AMQP_URL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(path == "" && os.IsNotExist(err)) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	return &cfg, nil
}

func defaultLogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "mandela.log")
	}
	return filepath.Join(dir, "mandela", "mandela.log")
}
