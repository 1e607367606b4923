package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Supported storage drivers
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

var ErrMissingJWTSecret = errors.New("JWT_SECRET is required")

type Config struct {
	Port            string        `yaml:"port"`
	GinMode         string        `yaml:"gin_mode"`
	APIBasePath     string        `yaml:"api_base_path"`
	FrontendURL     string        `yaml:"frontend_url"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	DBDriver      string `yaml:"db_driver"`
	DBHost        string `yaml:"db_host"`
	DBPort        string `yaml:"db_port"`
	DBUser        string `yaml:"db_user"`
	DBPassword    string `yaml:"db_password"`
	DBName        string `yaml:"db_name"`
	DBSSLMode     string `yaml:"db_sslmode"`
	SQLitePath    string `yaml:"sqlite_path"`
	MongoURI      string `yaml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database"`

	JWTSecret string        `yaml:"jwt_secret"`
	JWTExpire time.Duration `yaml:"jwt_expire"`

	RedisAddr      string        `yaml:"redis_addr"`
	RedisPassword  string        `yaml:"redis_password"`
	RedisDB        int           `yaml:"redis_db"`
	AuthRateLimit  int           `yaml:"auth_rate_limit"`
	AuthRateWindow time.Duration `yaml:"auth_rate_window"`

	OpenAIAPIKey string `yaml:"openai_api_key"`
	OpenAIModel  string `yaml:"openai_model"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Defaults returns the configuration used when nothing overrides a value.
func Defaults() *Config {
	return &Config{
		Port:            "5000",
		GinMode:         "debug",
		APIBasePath:     "/api",
		FrontendURL:     "http://localhost:3000",
		ShutdownTimeout: 10 * time.Second,
		DBDriver:        DriverMongo,
		DBHost:          "localhost",
		DBPort:          "5432",
		DBUser:          "taskuser",
		DBPassword:      "taskpassword",
		DBName:          "task_management",
		DBSSLMode:       "disable",
		SQLitePath:      "taskboard.db",
		MongoURI:        "mongodb://localhost:27017",
		MongoDatabase:   "task_management",
		JWTExpire:       7 * 24 * time.Hour,
		AuthRateLimit:   20,
		AuthRateWindow:  time.Minute,
		OpenAIModel:     "gpt-4o",
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// Load builds the configuration from defaults, then the optional YAML file
// named by CONFIG_FILE, then environment variables.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.loadEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var placeholderPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	// Replace ${VAR} placeholders with environment values, leaving unknown ones untouched
	content := placeholderPattern.ReplaceAllStringFunc(string(data), func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		return match
	})

	if err := yaml.Unmarshal([]byte(content), c); err != nil {
		return fmt.Errorf("error parsing config: %w", err)
	}
	return nil
}

func (c *Config) loadEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.GinMode = getEnv("GIN_MODE", c.GinMode)
	c.APIBasePath = getEnv("API_BASE_PATH", c.APIBasePath)
	c.FrontendURL = getEnv("FRONTEND_URL", c.FrontendURL)
	c.ShutdownTimeout = getDuration("SHUTDOWN_TIMEOUT", c.ShutdownTimeout)

	c.DBDriver = getEnv("DB_DRIVER", c.DBDriver)
	c.DBHost = getEnv("DB_HOST", c.DBHost)
	c.DBPort = getEnv("DB_PORT", c.DBPort)
	c.DBUser = getEnv("DB_USER", c.DBUser)
	c.DBPassword = getEnv("DB_PASSWORD", c.DBPassword)
	c.DBName = getEnv("DB_NAME", c.DBName)
	c.DBSSLMode = getEnv("DB_SSLMODE", c.DBSSLMode)
	c.SQLitePath = getEnv("SQLITE_PATH", c.SQLitePath)
	c.MongoURI = getEnv("MONGO_URI", c.MongoURI)
	c.MongoDatabase = getEnv("MONGO_DATABASE", c.MongoDatabase)

	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.JWTExpire = getDuration("JWT_EXPIRE", c.JWTExpire)

	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = getInt("REDIS_DB", c.RedisDB)
	c.AuthRateLimit = getInt("AUTH_RATE_LIMIT", c.AuthRateLimit)
	c.AuthRateWindow = getDuration("AUTH_RATE_WINDOW", c.AuthRateWindow)

	c.OpenAIAPIKey = getEnv("OPENAI_API_KEY", c.OpenAIAPIKey)
	c.OpenAIModel = getEnv("OPENAI_MODEL", c.OpenAIModel)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	switch c.DBDriver {
	case DriverMongo, DriverPostgres, DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.JWTExpire <= 0 {
		return fmt.Errorf("JWT_EXPIRE must be positive, got %s", c.JWTExpire)
	}
	if c.AuthRateLimit > 0 && c.AuthRateWindow <= 0 {
		return fmt.Errorf("AUTH_RATE_WINDOW must be positive when AUTH_RATE_LIMIT is set, got %s", c.AuthRateWindow)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// getDuration accepts Go durations ("15m") and whole days ("7d").
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if n := len(value); n > 1 && value[n-1] == 'd' {
		if days, err := strconv.Atoi(value[:n-1]); err == nil {
			return time.Duration(days) * 24 * time.Hour
		}
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}
