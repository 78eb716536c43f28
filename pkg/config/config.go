package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	CORS          CORSConfig
	Log           LogConfig
	Mailer        MailerConfig
	Geocoding     GeocodingConfig
	Notifications NotificationsConfig
	Leaderboard   LeaderboardConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// MailerConfig selects and configures the outbound email channel.
type MailerConfig struct {
	Provider        string
	FromAddress     string
	FromName        string
	SESRegion       string
	SESAccessKeyID  string
	SESSecretKey    string
	WorkerCount     int
	QueueBufferSize int
}

// GeocodingConfig controls the Nominatim geocoding client.
type GeocodingConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	CacheTTL  time.Duration
}

// NotificationsConfig tunes alert fan-out behaviour.
type NotificationsConfig struct {
	EmailEnabled bool
}

// LeaderboardConfig governs leaderboard size and cache behaviour.
type LeaderboardConfig struct {
	Size     int
	CacheTTL time.Duration
}

// Load reads configuration from the environment, with .env support for local
// development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Env:       strings.ToLower(v.GetString("ENV")),
		Port:      v.GetInt("PORT"),
		APIPrefix: v.GetString("API_PREFIX"),
	}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSLMODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 12*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{
		AllowedOrigins: splitAndTrim(v.GetString("CORS_ALLOWED_ORIGINS")),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Mailer = MailerConfig{
		Provider:        v.GetString("MAILER_PROVIDER"),
		FromAddress:     v.GetString("MAILER_FROM_ADDRESS"),
		FromName:        v.GetString("MAILER_FROM_NAME"),
		SESRegion:       v.GetString("SES_REGION"),
		SESAccessKeyID:  v.GetString("SES_ACCESS_KEY_ID"),
		SESSecretKey:    v.GetString("SES_SECRET_ACCESS_KEY"),
		WorkerCount:     v.GetInt("MAILER_WORKERS"),
		QueueBufferSize: v.GetInt("MAILER_QUEUE_BUFFER"),
	}

	cfg.Geocoding = GeocodingConfig{
		BaseURL:   v.GetString("GEOCODING_BASE_URL"),
		UserAgent: v.GetString("GEOCODING_USER_AGENT"),
		Timeout:   parseDuration(v.GetString("GEOCODING_TIMEOUT"), 5*time.Second),
		CacheTTL:  parseDuration(v.GetString("GEOCODING_CACHE_TTL"), 24*time.Hour),
	}

	cfg.Notifications = NotificationsConfig{
		EmailEnabled: v.GetBool("NOTIFICATIONS_EMAIL_ENABLED"),
	}

	cfg.Leaderboard = LeaderboardConfig{
		Size:     v.GetInt("LEADERBOARD_SIZE"),
		CacheTTL: parseDuration(v.GetString("LEADERBOARD_CACHE_TTL"), 5*time.Minute),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "clotsync")
	v.SetDefault("DB_NAME", "clotsync")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_ISSUER", "clotsync-api")
	v.SetDefault("JWT_EXPIRATION", "12h")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("MAILER_PROVIDER", "noop")
	v.SetDefault("MAILER_FROM_ADDRESS", "no-reply@clotsync.local")
	v.SetDefault("MAILER_FROM_NAME", "ClotSync")
	v.SetDefault("MAILER_WORKERS", 2)
	v.SetDefault("MAILER_QUEUE_BUFFER", 64)

	v.SetDefault("GEOCODING_BASE_URL", "https://nominatim.openstreetmap.org")
	v.SetDefault("GEOCODING_USER_AGENT", "ClotSync Blood Donation System")
	v.SetDefault("GEOCODING_TIMEOUT", "5s")

	v.SetDefault("NOTIFICATIONS_EMAIL_ENABLED", true)

	v.SetDefault("LEADERBOARD_SIZE", 20)
	v.SetDefault("LEADERBOARD_CACHE_TTL", "5m")
}

func validate(cfg *Config) error {
	if cfg.Env != EnvDevelopment && cfg.Env != EnvProduction {
		return errors.New("ENV must be development or production")
	}
	if cfg.Env == EnvProduction && cfg.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required in production")
	}
	return nil
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
