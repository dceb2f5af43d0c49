package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
	Automation AutomationConfig `mapstructure:"automation"`
	Backup     BackupConfig     `mapstructure:"backup"`
	Logger     LoggerConfig     `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// OpenAIConfig holds reasoning backend configuration.
type OpenAIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float32       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// AutomationConfig bounds the pipeline's per-run work and external retries.
type AutomationConfig struct {
	MaxRecommendations int           `mapstructure:"max_recommendations"`
	MaxAssignments     int           `mapstructure:"max_assignments"`
	RetryMaxAttempts   int           `mapstructure:"retry_max_attempts"`
	RetryBaseBackoff   time.Duration `mapstructure:"retry_base_backoff"`
	RetryMaxBackoff    time.Duration `mapstructure:"retry_max_backoff"`
}

// BackupConfig holds backup verification configuration.
type BackupConfig struct {
	Method               string        `mapstructure:"method"`
	VerificationInterval time.Duration `mapstructure:"verification_interval"`
}

// LoggerConfig holds logger configuration.
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	viper.SetDefault("database.path", "data/compliance.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("database.migrations_dir", "migrations")

	viper.SetDefault("openai.model", "gpt-4")
	viper.SetDefault("openai.temperature", 0.3)
	viper.SetDefault("openai.max_tokens", 150)
	viper.SetDefault("openai.timeout", 60*time.Second)

	viper.SetDefault("automation.max_recommendations", 5)
	viper.SetDefault("automation.max_assignments", 10)
	viper.SetDefault("automation.retry_max_attempts", 3)
	viper.SetDefault("automation.retry_base_backoff", 1*time.Second)
	viper.SetDefault("automation.retry_max_backoff", 8*time.Second)

	viper.SetDefault("backup.method", "simulated")
	viper.SetDefault("backup.verification_interval", 24*time.Hour)

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

func bindEnvVars() {
	// Sensitive credentials come from the environment
	viper.BindEnv("openai.api_key", "OPENAI_API_KEY")
	viper.BindEnv("database.path", "DATABASE_PATH")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("openai.api_key is required")
	}
	if c.Automation.MaxRecommendations < 0 {
		return fmt.Errorf("automation.max_recommendations must not be negative")
	}
	if c.Automation.MaxAssignments < 0 {
		return fmt.Errorf("automation.max_assignments must not be negative")
	}
	if c.Automation.RetryMaxAttempts < 0 {
		return fmt.Errorf("automation.retry_max_attempts must not be negative")
	}
	if c.Backup.VerificationInterval <= 0 {
		return fmt.Errorf("backup.verification_interval must be positive")
	}
	return nil
}
