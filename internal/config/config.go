package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/staff-attendance/internal/pkg/normalize"
	"github.com/joho/godotenv"
)

// Storage backends
const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Storage  StorageConfig
	Schedule ScheduleConfig
	Auth     AuthConfig
	CORS     CORSConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Name     string
	Version  string
	Port     int
	Env      string
	LogLevel string
	LogFile  string // empty means stdout only
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

type StorageConfig struct {
	Type     string
	BasePath string
}

// ScheduleConfig is the working day used for lateness and overtime.
type ScheduleConfig struct {
	Start           string
	DurationMinutes int
}

// StartClock parses Start as HH:MM or HH:MM:SS.
func (s ScheduleConfig) StartClock() (normalize.Clock, bool) {
	start := strings.TrimSpace(s.Start)
	if strings.Count(start, ":") == 1 {
		start += ":00"
	}
	clock := normalize.TimeOfDay(start)
	if clock == nil {
		return normalize.Clock{}, false
	}
	return *clock, true
}

type AuthConfig struct {
	DefaultPassword string
	AdminIDs        []string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	} else if err != nil {
		slog.Debug("No .env file found, using environment")
	}

	config := &Config{}

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}
	config.App = AppConfig{
		Name:     getEnv("APP_NAME", "staff-attendance"),
		Version:  getEnv("APP_VERSION", "dev"),
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),
	}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "staff_attendance"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(maxConns),
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "12h"),
	}

	config.Storage = StorageConfig{
		Type:     strings.ToLower(getEnv("STORAGE_TYPE", StorageFile)),
		BasePath: getEnv("STORAGE_PATH", "./data"),
	}

	duration, err := strconv.Atoi(getEnv("WORKDAY_DURATION_MINUTES", "360"))
	if err != nil {
		return nil, fmt.Errorf("invalid WORKDAY_DURATION_MINUTES: %w", err)
	}
	config.Schedule = ScheduleConfig{
		Start:           getEnv("WORKDAY_START", "09:00"),
		DurationMinutes: duration,
	}

	config.Auth = AuthConfig{
		DefaultPassword: getEnv("DEFAULT_PASSWORD", "123456"),
		AdminIDs:        getEnvSlice("ADMIN_IDS"),
	}

	config.CORS = CORSConfig{
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}
	if len(config.CORS.AllowedOrigins) == 0 {
		config.CORS.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	switch c.Storage.Type {
	case StorageFile:
		if c.Storage.BasePath == "" {
			return fmt.Errorf("STORAGE_PATH is required for file storage")
		}
	case StoragePostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	default:
		return fmt.Errorf("STORAGE_TYPE must be %q or %q", StorageFile, StoragePostgres)
	}
	if _, ok := c.Schedule.StartClock(); !ok {
		return fmt.Errorf("invalid WORKDAY_START %q", c.Schedule.Start)
	}
	if c.Schedule.DurationMinutes <= 0 {
		return fmt.Errorf("WORKDAY_DURATION_MINUTES must be positive")
	}
	if len(c.Auth.DefaultPassword) < 6 {
		return fmt.Errorf("DEFAULT_PASSWORD must be at least 6 characters")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getEnvSlice splits a comma separated variable, dropping blank entries.
func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
