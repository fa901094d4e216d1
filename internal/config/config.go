package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server ServerConfig `json:"server"`

	// Database Configuration
	Database DatabaseConfig `json:"database"`

	// MongoDB holds the media blob store
	MongoDB MongoDBConfig `json:"mongodb"`

	NATS NATSConfig `json:"nats"`

	Auth AuthConfig `json:"auth"`

	// Events configures the in-process event dispatcher
	Events EventsConfig `json:"events"`

	// Logging Configuration
	Logging LoggingConfig `json:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host         string `json:"host"`
	HTTPPort     string `json:"http_port"`
	GRPCPort     string `json:"grpc_port"`
	ReadTimeout  int    `json:"read_timeout"`  // seconds
	WriteTimeout int    `json:"write_timeout"` // seconds
	Environment  string `json:"environment"`   // development, staging, production
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Driver       string `json:"driver"` // mysql or postgres
	Host         string `json:"host"`
	Port         string `json:"port"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	DatabaseName string `json:"database_name"`
	SSLMode      string `json:"ssl_mode"`
	MaxOpenConns int    `json:"max_open_conns"`
	MaxIdleConns int    `json:"max_idle_conns"`
	AutoMigrate  bool   `json:"auto_migrate"`
}

type MongoDBConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	Database string `json:"database"`
	Enabled  bool   `json:"enabled"`
}

type NATSConfig struct {
	URL           string `json:"url"`
	ClientName    string `json:"client_name"`
	MaxReconnects int    `json:"max_reconnects"`
	ReconnectWait int    `json:"reconnect_wait"` // seconds
	Enabled       bool   `json:"enabled"`
}

type AuthConfig struct {
	JWTSecret string        `json:"-"`
	TokenTTL  time.Duration `json:"token_ttl"`
	Issuer    string        `json:"issuer"`
}

type EventsConfig struct {
	Workers    int `json:"workers"`     // Number of worker goroutines
	BufferSize int `json:"buffer_size"` // Channel buffer size
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
}

// LoadConfig reads .env (if present) and the process environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	return &Config{
		Server: ServerConfig{
			Host:         getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			HTTPPort:     getEnvOrDefault("HTTP_PORT", "8080"),
			GRPCPort:     getEnvOrDefault("GRPC_PORT", "9090"),
			ReadTimeout:  getIntOrDefault("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getIntOrDefault("SERVER_WRITE_TIMEOUT", 15),
			Environment:  getEnvOrDefault("APP_ENV", "development"),
		},
		Database: DatabaseConfig{
			Driver:       strings.ToLower(getEnvOrDefault("DB_DRIVER", "mysql")),
			Host:         getEnvOrDefault("DB_HOST", "localhost"),
			Port:         getEnvOrDefault("DB_PORT", ""),
			Username:     getEnvOrDefault("DB_USER", "moodfeed"),
			Password:     getEnvOrDefault("DB_PASSWORD", "moodfeed123"),
			DatabaseName: getEnvOrDefault("DB_NAME", "moodfeed"),
			SSLMode:      getEnvOrDefault("DB_SSLMODE", "disable"),
			MaxOpenConns: getIntOrDefault("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getIntOrDefault("DB_MAX_IDLE_CONNS", 5),
			AutoMigrate:  getBoolOrDefault("DB_AUTO_MIGRATE", false),
		},
		MongoDB: MongoDBConfig{
			Host:     getEnvOrDefault("MONGO_HOST", "localhost"),
			Port:     getEnvOrDefault("MONGO_PORT", "27017"),
			Username: getEnvOrDefault("MONGO_USERNAME", ""),
			Password: getEnvOrDefault("MONGO_PASSWORD", ""),
			Database: getEnvOrDefault("MONGO_DATABASE", "moodfeed"),
			Enabled:  getBoolOrDefault("MONGO_ENABLED", true),
		},
		NATS: NATSConfig{
			URL:           getEnvOrDefault("NATS_URL", "nats://localhost:4222"),
			ClientName:    getEnvOrDefault("NATS_CLIENT_NAME", "moodfeed"),
			MaxReconnects: getIntOrDefault("NATS_MAX_RECONNECTS", 10),
			ReconnectWait: getIntOrDefault("NATS_RECONNECT_WAIT", 2),
			Enabled:       getBoolOrDefault("NATS_ENABLED", false),
		},
		Auth: AuthConfig{
			JWTSecret: getEnvOrDefault("JWT_SECRET", "change-me"),
			TokenTTL:  time.Duration(getIntOrDefault("JWT_TTL_HOURS", 24)) * time.Hour,
			Issuer:    getEnvOrDefault("JWT_ISSUER", "moodfeed"),
		},
		Events: EventsConfig{
			Workers:    getIntOrDefault("EVENT_WORKERS", 4),
			BufferSize: getIntOrDefault("EVENT_BUFFER_SIZE", 256),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "text"),
		},
	}
}

func (cfg *Config) DSN() string {
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}

	if cfg.Database.Driver == "postgres" {
		if cfg.Database.Port == "" {
			cfg.Database.Port = "5432"
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			cfg.Database.Host,
			cfg.Database.Username,
			cfg.Database.Password,
			cfg.Database.DatabaseName,
			cfg.Database.Port,
			cfg.Database.SSLMode,
		)
	}

	if cfg.Database.Port == "" {
		cfg.Database.Port = "3306"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DatabaseName,
	)
}

func (cfg *Config) GetMongoURI() string {
	if cfg.MongoDB.Username == "" {
		return fmt.Sprintf("mongodb://%s:%s", cfg.MongoDB.Host, cfg.MongoDB.Port)
	}
	return fmt.Sprintf("mongodb://%s:%s@%s:%s/?authSource=admin",
		cfg.MongoDB.Username,
		cfg.MongoDB.Password,
		cfg.MongoDB.Host,
		cfg.MongoDB.Port,
	)
}

func (cfg *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.HTTPPort)
}

func (cfg *Config) GRPCAddr() string {
	return fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.GRPCPort)
}

func (cfg *Config) IsProduction() bool {
	return cfg.Server.Environment == "production"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid integer for %s: %q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
