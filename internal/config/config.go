// Package config provides Viper-based hierarchical configuration management
// for the statement pipeline.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var (
	once sync.Once
	// Logger is the global logrus instance used before the container wires a
	// configured logger.
	Logger = logrus.New()
)

// Config represents the complete application configuration.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	LLM struct {
		Provider       string `mapstructure:"provider" yaml:"provider"`
		Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
		BaseURL        string `mapstructure:"base_url" yaml:"base_url"`
		Model          string `mapstructure:"model" yaml:"model"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		APIKey         string `mapstructure:"api_key" yaml:"-"` // Never serialize API key
	} `mapstructure:"llm" yaml:"llm"`

	Pipeline struct {
		BatchSize        int `mapstructure:"batch_size" yaml:"batch_size"`
		MaxRetries       int `mapstructure:"max_retries" yaml:"max_retries"`
		HeadSampleSize   int `mapstructure:"head_sample_size" yaml:"head_sample_size"`
		RandomSampleSize int `mapstructure:"random_sample_size" yaml:"random_sample_size"`
		TailSampleSize   int `mapstructure:"tail_sample_size" yaml:"tail_sample_size"`
	} `mapstructure:"pipeline" yaml:"pipeline"`

	CSV struct {
		Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	} `mapstructure:"csv" yaml:"csv"`

	Storage struct {
		DatabasePath   string `mapstructure:"database_path" yaml:"database_path"`
		CategoriesFile string `mapstructure:"categories_file" yaml:"categories_file"`
	} `mapstructure:"storage" yaml:"storage"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading:
// defaults, then an optional config file, then STMT_-prefixed environment
// variables.
func InitializeConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.statement-pipeline")
	v.AddConfigPath(".statement-pipeline")
	v.AddConfigPath(".")

	v.SetEnvPrefix("STMT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file present but unreadable: continue with defaults and env.
			Logger.Warnf("error reading config file %s: %v", v.ConfigFileUsed(), err)
		}
	}

	// The Gemini API key is always read from the conventional unprefixed
	// variable.
	if err := v.BindEnv("llm.api_key", "GEMINI_API_KEY"); err != nil {
		Logger.Warnf("failed to bind GEMINI_API_KEY environment variable: %v", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values. The pipeline defaults match
// the reference constants: 10/5/10 sampling, batches of 10, one retry.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("llm.provider", "ollama")
	v.SetDefault("llm.enabled", true)
	v.SetDefault("llm.base_url", "http://localhost:11434")
	v.SetDefault("llm.model", "llama2")
	v.SetDefault("llm.timeout_seconds", 30)

	v.SetDefault("pipeline.batch_size", 10)
	v.SetDefault("pipeline.max_retries", 1)
	v.SetDefault("pipeline.head_sample_size", 10)
	v.SetDefault("pipeline.random_sample_size", 5)
	v.SetDefault("pipeline.tail_sample_size", 10)

	v.SetDefault("csv.delimiter", ",")

	v.SetDefault("storage.database_path", "statement-pipeline.db")
	v.SetDefault("storage.categories_file", "categories.yaml")
}

// validateConfig checks configuration values for correctness.
func validateConfig(config *Config) error {
	switch config.Log.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	switch config.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s", config.Log.Format)
	}

	switch config.LLM.Provider {
	case "ollama", "gemini":
	default:
		return fmt.Errorf("invalid llm provider: %s", config.LLM.Provider)
	}

	if config.Pipeline.BatchSize < 1 {
		return fmt.Errorf("pipeline batch_size must be at least 1")
	}
	if config.Pipeline.MaxRetries < 0 {
		return fmt.Errorf("pipeline max_retries must not be negative")
	}
	if len(config.CSV.Delimiter) != 1 {
		return fmt.Errorf("csv delimiter must be a single character")
	}
	return nil
}

// LoadEnv loads environment variables from a .env file if one exists in the
// working directory or its parent.
func LoadEnv() {
	once.Do(func() {
		envFile := ".env"
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			envFile = filepath.Join("..", ".env")
			if _, err := os.Stat(envFile); os.IsNotExist(err) {
				return
			}
		}

		if err := godotenv.Load(envFile); err != nil {
			Logger.Warnf("Error loading .env file: %v", err)
			return
		}
		Logger.Infof("Loaded environment variables from %s", envFile)
	})
}
