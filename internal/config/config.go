// Package config loads and validates the application configuration from
// defaults, an optional .env file, command-line flags and environment
// variables, in that order of increasing priority.
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

// Config holds all runtime settings of the service.
type Config struct {
	RunAddr               string        `env:"SERVER_ADDRESS" validate:"hostname_port"`
	LogLevel              string        `env:"LOG_LEVEL" validate:"loglevel"`
	MongoDSN              string        `env:"MONGO_DSN"`
	MongoDBName           string        `env:"MONGO_DB_NAME" validate:"required"`
	ImagesDir             string        `env:"IMAGES_DIR" validate:"required"`
	TokenSigningSecretKey string        `env:"TOKEN_SIGNING_SECRET_KEY" validate:"base64url"`
	TokenTTL              time.Duration `env:"TOKEN_TTL"`
	DBConnectionTimeout   time.Duration `env:"DB_CONNECTION_TIMEOUT"`
	CleanerQueueCapacity  int           `env:"CLEANER_QUEUE_CAPACITY"`
	CleanerFlushInterval  time.Duration `env:"CLEANER_FLUSH_INTERVAL"`
}

var defaultConfig = Config{
	RunAddr:     ":8080",
	LogLevel:    "info",
	MongoDSN:    "",
	MongoDBName: "messages",
	ImagesDir:   "images",
	// Development-only default, override in any real deployment.
	TokenSigningSecretKey: "c29tZXN1cGVyc2VjcmV0c2VjcmV0",
	TokenTTL:              time.Hour,
	DBConnectionTimeout:   10 * time.Second,
	CleanerQueueCapacity:  64,
	CleanerFlushInterval:  5 * time.Second,
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	allowedLogLevels := map[string]bool{
		"debug":   true,
		"info":    true,
		"warning": true,
		"error":   true,
		"fatal":   true,
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

func applyDefaults(target *Config, defaults Config) {
	*target = defaults
}

// InitOption customizes the behavior of New.
type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
}

// WithDisableFlagsParsing disables command-line flag parsing,
// which is useful in tests where os.Args is owned by the test binary.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

// New builds a validated Config from defaults, .env file, flags and
// environment variables.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Printf("Unable to load .env file: %v", err)
	}

	values := &Config{}
	applyDefaults(values, defaultConfig)

	if !options.disableFlagsParsing {
		flag.StringVar(&values.RunAddr, "a", values.RunAddr, "address and port to run server")
		flag.StringVar(&values.LogLevel, "l", values.LogLevel, "logger level")
		flag.StringVar(&values.MongoDSN, "d", values.MongoDSN, "MongoDB connection string (empty means in-memory storage)")
		flag.StringVar(&values.MongoDBName, "n", values.MongoDBName, "MongoDB database name")
		flag.StringVar(&values.ImagesDir, "i", values.ImagesDir, "directory for uploaded images")
		flag.Parse()
	}

	var valuesFromEnv Config
	err = env.Parse(&valuesFromEnv)
	if err != nil {
		return nil, err
	}

	if valuesFromEnv.RunAddr != "" {
		values.RunAddr = valuesFromEnv.RunAddr
	}

	if valuesFromEnv.LogLevel != "" {
		values.LogLevel = valuesFromEnv.LogLevel
	}

	if valuesFromEnv.MongoDSN != "" {
		values.MongoDSN = valuesFromEnv.MongoDSN
	}

	if valuesFromEnv.MongoDBName != "" {
		values.MongoDBName = valuesFromEnv.MongoDBName
	}

	if valuesFromEnv.ImagesDir != "" {
		values.ImagesDir = valuesFromEnv.ImagesDir
	}

	if valuesFromEnv.TokenSigningSecretKey != "" {
		values.TokenSigningSecretKey = valuesFromEnv.TokenSigningSecretKey
	}

	if valuesFromEnv.TokenTTL != 0 {
		values.TokenTTL = valuesFromEnv.TokenTTL
	}

	if valuesFromEnv.DBConnectionTimeout != 0 {
		values.DBConnectionTimeout = valuesFromEnv.DBConnectionTimeout
	}

	if valuesFromEnv.CleanerQueueCapacity != 0 {
		values.CleanerQueueCapacity = valuesFromEnv.CleanerQueueCapacity
	}

	if valuesFromEnv.CleanerFlushInterval != 0 {
		values.CleanerFlushInterval = valuesFromEnv.CleanerFlushInterval
	}

	return values, values.validate()
}
