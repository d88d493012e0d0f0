package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	Logging    LoggingConfig    `yaml:"logging"`
	Repository RepositoryConfig `yaml:"repository"`
	RateLimit  RateLimitConfig  `yaml:"ratelimit"`
	CORS       CORSConfig       `yaml:"cors"`
}

type ServerConfig struct {
	Port           string        `yaml:"port"`
	Host           string        `yaml:"host"`
	RequestTimeout time.Duration `yaml:"-"`

	RequestTimeoutRaw string `yaml:"request_timeout"`
}

type DatabaseConfig struct {
	URL            string        `yaml:"url"`
	MaxConnections int           `yaml:"max_connections"`
	MinConnections int           `yaml:"min_connections"`
	IdleTimeout    time.Duration `yaml:"-"`
	Migrate        bool          `yaml:"migrate"`

	IdleTimeoutRaw string `yaml:"idle_timeout"`
}

type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret"`
	TokenTTL   time.Duration `yaml:"-"` // срок действия токена по умолчанию
	SessionTTL time.Duration `yaml:"-"` // срок токена при регистрации и входе

	TokenTTLRaw   string `yaml:"token_ttl"`
	SessionTTLRaw string `yaml:"session_ttl"`
}

type LoggingConfig struct {
	Development bool `yaml:"development"`
}

type RepositoryConfig struct {
	Type string `yaml:"type"` // "postgres" или "inmemory"
}

type RateLimitConfig struct {
	Enabled bool `yaml:"enabled"`
	RPM     int  `yaml:"rpm"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.yml"
	}

	cfg := defaultConfig()

	file, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("не могу открыть %s: %w", path, err)
		}
		// файла нет — работаем на дефолтах и переменных окружения
	} else {
		defer file.Close()
		decoder := yaml.NewDecoder(file)
		if err := decoder.Decode(cfg); err != nil {
			return nil, fmt.Errorf("ошибка парсинга %s: %w", path, err)
		}
	}

	if err := cfg.parseDurations(); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("jwt-секрет не задан: укажите auth.jwt_secret или JWT_SECRET")
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           "8080",
			RequestTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			MaxConnections: 10,
			MinConnections: 2,
			IdleTimeout:    5 * time.Minute,
			Migrate:        true,
		},
		Auth: AuthConfig{
			TokenTTL:   30 * time.Minute,
			SessionTTL: 60 * time.Minute,
		},
		Logging: LoggingConfig{
			Development: false,
		},
		Repository: RepositoryConfig{
			Type: "postgres",
		},
		RateLimit: RateLimitConfig{
			Enabled: false,
			RPM:     100,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000"},
		},
	}
}

// parseDurations разбирает строковые интервалы из yaml ("30m", "5s").
// Пустая строка оставляет значение по умолчанию.
func (c *Config) parseDurations() error {
	pairs := []struct {
		raw  string
		dst  *time.Duration
		name string
	}{
		{c.Server.RequestTimeoutRaw, &c.Server.RequestTimeout, "server.request_timeout"},
		{c.Database.IdleTimeoutRaw, &c.Database.IdleTimeout, "database.idle_timeout"},
		{c.Auth.TokenTTLRaw, &c.Auth.TokenTTL, "auth.token_ttl"},
		{c.Auth.SessionTTLRaw, &c.Auth.SessionTTL, "auth.session_ttl"},
	}

	for _, p := range pairs {
		if p.raw == "" {
			continue
		}
		d, err := time.ParseDuration(p.raw)
		if err != nil {
			return fmt.Errorf("неверный интервал %s: %w", p.name, err)
		}
		*p.dst = d
	}
	return nil
}

// applyEnvOverrides даёт переменным окружения приоритет над файлом —
// секреты в yaml не хранятся.
func applyEnvOverrides(cfg *Config) {
	viper.AutomaticEnv()

	_ = viper.BindEnv("jwt_secret", "JWT_SECRET")
	_ = viper.BindEnv("database_url", "DATABASE_URL")
	_ = viper.BindEnv("app_http_host", "APP_HTTP_HOST")
	_ = viper.BindEnv("app_http_port", "APP_HTTP_PORT")
	_ = viper.BindEnv("app_repository_type", "APP_REPOSITORY_TYPE")

	if v := viper.GetString("jwt_secret"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := viper.GetString("database_url"); v != "" {
		cfg.Database.URL = v
	}
	if v := viper.GetString("app_http_host"); v != "" {
		cfg.Server.Host = v
	}
	if v := viper.GetString("app_http_port"); v != "" {
		cfg.Server.Port = v
	}
	if v := viper.GetString("app_repository_type"); v != "" {
		cfg.Repository.Type = v
	}
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
