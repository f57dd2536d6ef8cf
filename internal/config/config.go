// Package config assembles the service configuration from defaults, a .env
// file, command-line flags and environment variables, in that order of priority.
package config

import (
	"flag"
	"log"
	"os"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort            string        `env:"PORT" validate:"required,numeric"`
	MongoURI            string        `env:"MONGO_URI" validate:"required"`
	MongoURILive        string        `env:"MONGO_URI_LIVE"`
	MongoDBName         string        `env:"MONGO_DB_NAME" validate:"required"`
	MongoConnectTimeout time.Duration `env:"MONGO_CONNECT_TIMEOUT" validate:"gt=0"`
	JWTSecret           string        `env:"JWT_SECRET" validate:"required"`
	TokenTTL            time.Duration `env:"TOKEN_TTL" validate:"gt=0"`
	BcryptCost          int           `env:"BCRYPT_COST" validate:"min=4,max=31"`
	LogLevel            string        `env:"LOG_LEVEL" validate:"loglevel"`
	RequestTimeout      time.Duration `env:"REQUEST_TIMEOUT" validate:"gt=0"`
	ShutdownTimeout     time.Duration `env:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	MaxRequestBodySize  int64         `env:"MAX_REQUEST_BODY_SIZE" validate:"gt=0"`
	SeedBooks           bool          `env:"SEED_BOOKS"`
	CORSAllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," validate:"min=1"`
	RedisAddr           string        `env:"REDIS_ADDR" validate:"omitempty,hostname_port"`
	RedisPassword       string        `env:"REDIS_PASSWORD"`
	RedisDB             int           `env:"REDIS_DB" validate:"min=0"`
	AuthRateLimit       int           `env:"AUTH_RATE_LIMIT" validate:"gt=0"`
	AuthRateWindow      time.Duration `env:"AUTH_RATE_WINDOW" validate:"gt=0"`
}

var defaultConfig = Config{
	HTTPPort:            "5000",
	MongoURI:            "mongodb://localhost:27017",
	MongoDBName:         "bookbliss",
	MongoConnectTimeout: 10 * time.Second,
	TokenTTL:            time.Hour,
	BcryptCost:          12,
	LogLevel:            "info",
	RequestTimeout:      30 * time.Second,
	ShutdownTimeout:     10 * time.Second,
	MaxRequestBodySize:  1 << 20, // 1MB
	SeedBooks:           true,
	CORSAllowedOrigins:  []string{"*"},
	AuthRateLimit:       20,
	AuthRateWindow:      time.Minute,
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.HTTPPort
}

// DatabaseURI prefers the live cluster URI when one is configured.
func (c *Config) DatabaseURI() string {
	if c.MongoURILive != "" {
		return c.MongoURILive
	}
	return c.MongoURI
}

// RateLimitEnabled reports whether a Redis backend for the auth limiter is configured.
func (c *Config) RateLimitEnabled() bool {
	return c.RedisAddr != ""
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	allowedLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	return allowedLogLevels[value]
}

func (c *Config) validate() error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	return validate.Struct(c)
}

type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
	envFiles            []string
}

func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

// WithEnvFiles replaces the default ".env" file list.
func WithEnvFiles(files ...string) InitOption {
	return func(options *initOptions) {
		options.envFiles = files
	}
}

func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
		envFiles:            []string{".env"},
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	if len(options.envFiles) > 0 {
		if err := godotenv.Load(options.envFiles...); err != nil {
			log.Printf("Unable to load .env file: %v", err)
		}
	}

	values := defaultConfig
	values.CORSAllowedOrigins = append([]string(nil), defaultConfig.CORSAllowedOrigins...)

	if !options.disableFlagsParsing {
		if err := values.parseFlags(os.Args[1:]); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(&values); err != nil {
		return nil, err
	}

	if err := values.validate(); err != nil {
		return nil, err
	}

	return &values, nil
}

func (c *Config) parseFlags(args []string) error {
	flags := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flags.StringVar(&c.HTTPPort, "p", c.HTTPPort, "port to run the HTTP server on")
	flags.StringVar(&c.MongoURI, "m", c.MongoURI, "MongoDB connection URI")
	flags.StringVar(&c.LogLevel, "l", c.LogLevel, "logger level")

	return flags.Parse(args)
}
