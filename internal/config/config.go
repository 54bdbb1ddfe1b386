package config

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds the overall configuration for the application.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Aura       AuraConfig       `yaml:"aura"`
	Portfolio  PortfolioConfig  `yaml:"portfolio"`
	Strategies StrategiesConfig `yaml:"strategies"`
	Auth       AuthConfig       `yaml:"auth"`
	SMTP       SMTPConfig       `yaml:"smtp"`
	Database   DatabaseConfig   `yaml:"database"`
	Wallets    WalletsConfig    `yaml:"wallets"`
	Logging    LoggingConfig    `yaml:"logging"`
	Swagger    SwaggerConfig    `yaml:"swagger"`
	Cache      CacheConfig      `yaml:"cache"`
}

// ServerConfig holds the server-specific configuration.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
	IdleTimeout  int    `yaml:"idleTimeout"`
}

// AuraConfig holds the configuration for the Aura portfolio provider client.
// The API key is never read from the file, only from AURA_API_KEY.
type AuraConfig struct {
	BaseURL              string `yaml:"baseURL"`
	APIKey               string `yaml:"-"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
	RateLimit            int    `yaml:"rateLimit"`
	BurstLimit           int    `yaml:"burstLimit"`
}

// PortfolioConfig holds configuration for the portfolio service.
type PortfolioConfig struct {
	MaxConcurrentRequests int `yaml:"maxConcurrentRequests"`
	CacheTTLMinutes       int `yaml:"cacheTTLMinutes"`
}

// StrategiesConfig holds configuration for the strategy service.
type StrategiesConfig struct {
	CacheTTLMinutes int    `yaml:"cacheTTLMinutes"`
	Model           string `yaml:"model"`
}

// AuthConfig holds configuration for authentication. The JWT secret comes
// from JWT_SECRET.
type AuthConfig struct {
	JWTSecret       string `yaml:"-"`
	TokenTTLHours   int    `yaml:"tokenTTLHours"`
	CodeTTLMinutes  int    `yaml:"codeTTLMinutes"`
	NonceTTLMinutes int    `yaml:"nonceTTLMinutes"`
	SecureCookie    bool   `yaml:"secureCookie"`
}

// SMTPConfig holds configuration for the verification mailer. Credentials
// come from SMTP_USERNAME / SMTP_PASSWORD.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"-"`
	Password string `yaml:"-"`
	From     string `yaml:"from"`
}

// DatabaseConfig holds configuration for the sqlite store.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// WalletsConfig holds configuration for the wallet registry. The at-rest
// encryption key comes from WALLET_ENCRYPTION_KEY (hex, 32 bytes).
type WalletsConfig struct {
	EncryptionKey string `yaml:"-"`
	MaxPerUser    int    `yaml:"maxPerUser"`
}

// LoggingConfig holds the configuration for logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // e.g., "debug", "info", "warn", "error"
	File  string `yaml:"file"`
}

// SwaggerConfig holds configuration for Swagger UI.
type SwaggerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// CacheConfig holds configuration for the in-process caches.
type CacheConfig struct {
	CleanupIntervalMinutes int `yaml:"cleanupIntervalMinutes"`
}

// LoadConfig loads configuration from a YAML file and overlays secrets from
// the environment.
func LoadConfig(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		logrus.Errorf("Failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		logrus.Errorf("Failed to unmarshal config data from %s: %v", path, err)
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	cfg.Aura.APIKey = os.Getenv("AURA_API_KEY")
	cfg.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.SMTP.Username = os.Getenv("SMTP_USERNAME")
	cfg.SMTP.Password = os.Getenv("SMTP_PASSWORD")
	cfg.Wallets.EncryptionKey = os.Getenv("WALLET_ENCRYPTION_KEY")

	applyDefaults(&cfg)

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}
	if cfg.Wallets.EncryptionKey == "" {
		return nil, fmt.Errorf("WALLET_ENCRYPTION_KEY must be set")
	}

	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60
	}

	if cfg.Aura.BaseURL == "" {
		cfg.Aura.BaseURL = "https://aura.adex.network"
		logrus.Infof("Aura.BaseURL not set, defaulting to %s", cfg.Aura.BaseURL)
	}
	if cfg.Aura.RequestTimeoutMillis == 0 {
		cfg.Aura.RequestTimeoutMillis = 30000
		logrus.Infof("Aura.RequestTimeoutMillis not set, defaulting to %d ms", cfg.Aura.RequestTimeoutMillis)
	}
	if cfg.Aura.RateLimit == 0 {
		cfg.Aura.RateLimit = 20
	}
	if cfg.Aura.BurstLimit == 0 {
		cfg.Aura.BurstLimit = 10
	}

	if cfg.Portfolio.MaxConcurrentRequests == 0 {
		cfg.Portfolio.MaxConcurrentRequests = 10
	}
	if cfg.Portfolio.CacheTTLMinutes == 0 {
		cfg.Portfolio.CacheTTLMinutes = 5
		logrus.Infof("Portfolio.CacheTTLMinutes not set, defaulting to %d minutes", cfg.Portfolio.CacheTTLMinutes)
	}

	if cfg.Strategies.CacheTTLMinutes == 0 {
		cfg.Strategies.CacheTTLMinutes = 60
		logrus.Infof("Strategies.CacheTTLMinutes not set, defaulting to %d minutes", cfg.Strategies.CacheTTLMinutes)
	}
	if cfg.Strategies.Model == "" {
		cfg.Strategies.Model = "gemini-2.0-flash"
	}

	if cfg.Auth.TokenTTLHours == 0 {
		cfg.Auth.TokenTTLHours = 7 * 24
	}
	if cfg.Auth.CodeTTLMinutes == 0 {
		cfg.Auth.CodeTTLMinutes = 10
	}
	if cfg.Auth.NonceTTLMinutes == 0 {
		cfg.Auth.NonceTTLMinutes = 5
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/isaura.db"
	}

	if cfg.Wallets.MaxPerUser == 0 {
		cfg.Wallets.MaxPerUser = 10
	}

	if cfg.Cache.CleanupIntervalMinutes == 0 {
		cfg.Cache.CleanupIntervalMinutes = 5
	}
}
