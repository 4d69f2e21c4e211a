package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App           AppConfig          `yaml:"app"`
	Database      DatabaseConfig     `yaml:"database"`
	Redis         RedisConfig        `yaml:"redis"`
	Logging       LoggingConfig      `yaml:"logging"`
	Monitoring    MonitoringConfig   `yaml:"monitoring"`
	API           APIConfig          `yaml:"api"`
	Booking       BookingConfig      `yaml:"booking"`
	Fees          FeesConfig         `yaml:"fees"`
	Notifications NotificationConfig `yaml:"notifications"`
	Sheets        SheetsConfig       `yaml:"sheets"`
	Exports       ExportConfig       `yaml:"exports"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type APIConfig struct {
	Port      int                `yaml:"port"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

// APIClientKey binds an API key to an authenticated actor. The booking core
// trusts the actor id and role supplied here; there is no second
// authentication layer.
type APIClientKey struct {
	Key     string `yaml:"key"`
	Name    string `yaml:"name"`
	ActorID int64  `yaml:"actor_id"`
	Role    string `yaml:"role"` // artist, venue, admin
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type BookingConfig struct {
	MaxBookingDays int `yaml:"max_booking_days"`
}

// FeesConfig seeds the settings table on first boot; afterwards the admin
// fee endpoint is the source of truth.
type FeesConfig struct {
	StandardRate   string `yaml:"standard_rate"`
	ProRate        string `yaml:"pro_rate"`
	GatewayPercent string `yaml:"gateway_percent"`
	GatewayFixed   string `yaml:"gateway_fixed"`
	CacheTTL       int    `yaml:"cache_ttl_seconds"`
}

type NotificationConfig struct {
	TelegramBotToken string `yaml:"telegram_bot_token"`
	Enabled          bool   `yaml:"enabled"`
}

type SheetsConfig struct {
	CredentialsFile      string `yaml:"credentials_file"`
	BookingSpreadSheetID string `yaml:"bookings_spreadsheet_id"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; ignore a missing file but surface parse errors.
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if c.API.Auth.Enabled && len(c.API.Auth.APIKeys) == 0 {
		return errors.New("api auth enabled but no api keys configured")
	}

	for _, k := range c.API.Auth.APIKeys {
		if k.Key == "" {
			return fmt.Errorf("api key entry '%s' has empty key", k.Name)
		}
		switch k.Role {
		case "artist", "venue", "admin":
		default:
			return fmt.Errorf("api key entry '%s' has invalid role %q", k.Name, k.Role)
		}
	}

	if c.Notifications.Enabled && c.Notifications.TelegramBotToken == "" {
		return errors.New("notifications enabled but telegram bot token is empty")
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Booking.MaxBookingDays == 0 {
		c.Booking.MaxBookingDays = 365
	}

	// Fee defaults match the launch pricing: 10% standard commission,
	// 8% pro tier, 4.99% + R$3.67 gateway fees.
	if c.Fees.StandardRate == "" {
		c.Fees.StandardRate = "0.10"
	}
	if c.Fees.ProRate == "" {
		c.Fees.ProRate = "0.08"
	}
	if c.Fees.GatewayPercent == "" {
		c.Fees.GatewayPercent = "0.0499"
	}
	if c.Fees.GatewayFixed == "" {
		c.Fees.GatewayFixed = "3.67"
	}
	if c.Fees.CacheTTL == 0 {
		c.Fees.CacheTTL = 30 * 60
	}
}
