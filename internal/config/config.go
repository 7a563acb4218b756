// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for our application
type Config struct {
	App          AppConfig
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Store        StoreConfig
	Tax          TaxConfig
	OrderService OrderServiceConfig
	Notification NotificationConfig
	Guard        GuardConfig
	JWT          JWTConfig
	Security     SecurityConfig
	Logging      LoggingConfig
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string
	Version     string
	Environment string
	Debug       bool
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// RedisConfig contains Redis configuration
type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	CartTTL      time.Duration
}

// StoreConfig identifies the restaurant/branch this instance serves
type StoreConfig struct {
	RestaurantID string
	BranchID     string
}

// TaxConfig is the tax snapshot applied at submission build time
type TaxConfig struct {
	Rate        float64 // Percentage, e.g. 10.0
	Name        string
	CountryCode string
	IsCompound  bool
}

// OrderServiceConfig contains the remote order service connection settings
type OrderServiceConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NotificationConfig contains the downstream order notification webhook
type NotificationConfig struct {
	WebhookURL string
	Timeout    time.Duration
}

// GuardConfig contains submission guard tunables
type GuardConfig struct {
	AddDebounce     time.Duration
	MinInterval     time.Duration
	AttemptBudget   int
	BaseCooldown    time.Duration
	MaxCooldown     time.Duration
	DuplicateWindow time.Duration
	SweepInterval   time.Duration
}

// JWTConfig contains the key used to read customer identity tokens
// issued by the external auth service
type JWTConfig struct {
	Secret string
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	RateLimitPerMinute int
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	CORSAllowedHeaders []string
	TrustedProxies     []string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	config := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "TableOrder Backend"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
			Debug:       getEnvAsBool("APP_DEBUG", true),
		},
		Server: ServerConfig{
			Port:         getEnv("APP_PORT", "8080"),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			Name:         getEnv("DB_NAME", "tableorder_db"),
			User:         getEnv("DB_USER", "tableorder_user"),
			Password:     getEnv("DB_PASSWORD", "tableorder_password"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 300*time.Second),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
			CartTTL:      getEnvAsDuration("REDIS_CART_TTL", 24*time.Hour),
		},
		Store: StoreConfig{
			RestaurantID: getEnv("RESTAURANT_ID", ""),
			BranchID:     getEnv("BRANCH_ID", ""),
		},
		Tax: TaxConfig{
			Rate:        getEnvAsFloat("TAX_RATE", 0),
			Name:        getEnv("TAX_NAME", "Tax"),
			CountryCode: getEnv("TAX_COUNTRY_CODE", "US"),
			IsCompound:  getEnvAsBool("TAX_IS_COMPOUND", false),
		},
		OrderService: OrderServiceConfig{
			BaseURL: getEnv("ORDER_SERVICE_URL", "http://localhost:9090"),
			APIKey:  getEnv("ORDER_SERVICE_API_KEY", ""),
			Timeout: getEnvAsDuration("ORDER_SERVICE_TIMEOUT", 15*time.Second),
		},
		Notification: NotificationConfig{
			WebhookURL: getEnv("NOTIFICATION_WEBHOOK_URL", ""),
			Timeout:    getEnvAsDuration("NOTIFICATION_TIMEOUT", 5*time.Second),
		},
		Guard: GuardConfig{
			AddDebounce:     getEnvAsDuration("GUARD_ADD_DEBOUNCE", 300*time.Millisecond),
			MinInterval:     getEnvAsDuration("GUARD_MIN_INTERVAL", 3*time.Second),
			AttemptBudget:   getEnvAsInt("GUARD_ATTEMPT_BUDGET", 5),
			BaseCooldown:    getEnvAsDuration("GUARD_BASE_COOLDOWN", 5*time.Second),
			MaxCooldown:     getEnvAsDuration("GUARD_MAX_COOLDOWN", 60*time.Second),
			DuplicateWindow: getEnvAsDuration("GUARD_DUPLICATE_WINDOW", 10*time.Second),
			SweepInterval:   getEnvAsDuration("GUARD_SWEEP_INTERVAL", time.Second),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
		},
		Security: SecurityConfig{
			RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 100),
			CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			CORSAllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			CORSAllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Session-ID"}),
			TrustedProxies:     getEnvAsSlice("TRUSTED_PROXIES", []string{}),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "debug"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.Redis.Host == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}
	if c.Server.Port == "" {
		return fmt.Errorf("APP_PORT is required")
	}
	if c.OrderService.BaseURL == "" {
		return fmt.Errorf("ORDER_SERVICE_URL is required")
	}
	if c.Guard.AttemptBudget < 1 {
		return fmt.Errorf("GUARD_ATTEMPT_BUDGET must be at least 1")
	}
	if c.Tax.Rate < 0 {
		return fmt.Errorf("TAX_RATE cannot be negative")
	}
	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
