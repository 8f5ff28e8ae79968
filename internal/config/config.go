package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `json:"server" mapstructure:"server"`
	Database  DatabaseConfig  `json:"database" mapstructure:"database"`
	OpenAI    OpenAIConfig    `json:"openai" mapstructure:"openai"`
	RateLimit RateLimitConfig `json:"rate_limit" mapstructure:"rate_limit"`
	Auth      AuthConfig      `json:"auth" mapstructure:"auth"`
}

type ServerConfig struct {
	Host        string `json:"host" mapstructure:"host"`
	Port        int    `json:"port" mapstructure:"port"`
	CORSOrigins string `json:"cors_origins" mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	Host            string        `json:"host" mapstructure:"host"`
	Port            int           `json:"port" mapstructure:"port"`
	User            string        `json:"user" mapstructure:"user"`
	Password        string        `json:"password" mapstructure:"password"`
	Database        string        `json:"database" mapstructure:"database"`
	SSLMode         string        `json:"sslmode" mapstructure:"sslmode"`
	MaxOpenConns    int           `json:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
}

type OpenAIConfig struct {
	APIKey string `json:"api_key" mapstructure:"api_key"`
	Model  string `json:"model" mapstructure:"model"`
	// MaxContextTokens is the context window of Model; the transcript sent
	// for summarization is capped at ContextFraction of it.
	MaxContextTokens int     `json:"max_context_tokens" mapstructure:"max_context_tokens"`
	ContextFraction  float64 `json:"context_fraction" mapstructure:"context_fraction"`
}

type RateLimitConfig struct {
	Max    int           `json:"max" mapstructure:"max"`
	Window time.Duration `json:"window" mapstructure:"window"`
}

type AuthConfig struct {
	JWTSecret string `json:"jwt_secret" mapstructure:"jwt_secret"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("json")

	// Add config paths
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Check for user config directory
	homeDir, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(filepath.Join(homeDir, ".tubebrief"))
	}

	// Set defaults
	viper.SetDefault("server.port", 3000)
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.cors_origins", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "tubebrief")
	viper.SetDefault("database.database", "tubebrief")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("openai.model", "gpt-4o-mini")
	viper.SetDefault("openai.max_context_tokens", 128000)
	viper.SetDefault("openai.context_fraction", 0.7)
	viper.SetDefault("rate_limit.max", 2)
	viper.SetDefault("rate_limit.window", time.Minute)

	// Read config
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			cfg := defaultConfig()
			loadEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Load environment variables
	loadEnvOverrides(&cfg)

	return &cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "localhost",
			Port:        3000,
			CORSOrigins: "http://localhost:5173,http://localhost:3000",
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "tubebrief",
			Password:        "",
			Database:        "tubebrief",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		OpenAI: OpenAIConfig{
			Model:            "gpt-4o-mini",
			MaxContextTokens: 128000,
			ContextFraction:  0.7,
		},
		RateLimit: RateLimitConfig{
			Max:    2,
			Window: time.Minute,
		},
	}
}

func loadEnvOverrides(cfg *Config) {
	if port := os.Getenv("TUBEBRIEF_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if host := os.Getenv("TUBEBRIEF_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if origins := os.Getenv("TUBEBRIEF_CORS_ORIGINS"); origins != "" {
		cfg.Server.CORSOrigins = origins
	}

	// Database overrides
	if dbHost := os.Getenv("POSTGRES_HOST"); dbHost != "" {
		cfg.Database.Host = dbHost
	}
	if dbPort := os.Getenv("POSTGRES_PORT"); dbPort != "" {
		if port, err := strconv.Atoi(dbPort); err == nil {
			cfg.Database.Port = port
		}
	}
	if dbUser := os.Getenv("POSTGRES_USER"); dbUser != "" {
		cfg.Database.User = dbUser
	}
	if dbPass := os.Getenv("POSTGRES_PASSWORD"); dbPass != "" {
		cfg.Database.Password = dbPass
	}
	if dbName := os.Getenv("POSTGRES_DB"); dbName != "" {
		cfg.Database.Database = dbName
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.OpenAI.APIKey = key
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		cfg.OpenAI.Model = model
	}

	if secret := os.Getenv("TUBEBRIEF_JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
}
