package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// EnvDevelopment is the environment name for local development. Session
// cookies are not marked Secure in it.
const EnvDevelopment = "development"

// Config holds all configuration for the application
type Config struct {
	App      AppConfig      `yaml:"app"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	AWS      AWSConfig      `yaml:"aws"`
	JWT      JWTConfig      `yaml:"jwt"`
	CORS     CORSConfig     `yaml:"cors"`
	Log      LogConfig      `yaml:"log"`
}

// AppConfig holds deployment-wide settings
type AppConfig struct {
	Env string `yaml:"env" env:"APP_ENV"`
}

// IsDevelopment reports whether the app runs in local development
func (c AppConfig) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int    `yaml:"port" env:"PORT"`
	Host string `yaml:"host" env:"HOST"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `yaml:"host" env:"DB_HOST"`
	Port     int    `yaml:"port" env:"DB_PORT"`
	User     string `yaml:"user" env:"DB_USER"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	DBName   string `yaml:"dbname" env:"DB_NAME"`
	SSLMode  string `yaml:"sslmode" env:"DB_SSLMODE"`
}

// AWSConfig holds the S3-compatible media host configuration
type AWSConfig struct {
	Region        string `yaml:"region" env:"AWS_REGION"`
	S3Bucket      string `yaml:"s3_bucket" env:"AWS_S3_BUCKET"`
	AccessKey     string `yaml:"access_key" env:"AWS_ACCESS_KEY"`
	SecretKey     string `yaml:"secret_key" env:"AWS_SECRET_KEY"`
	Endpoint      string `yaml:"endpoint" env:"AWS_ENDPOINT"`
	PublicBaseURL string `yaml:"public_base_url" env:"MEDIA_PUBLIC_BASE_URL"`
	Folder        string `yaml:"folder" env:"MEDIA_FOLDER"`
	UsePathStyle  bool   `yaml:"use_path_style" env:"AWS_USE_PATH_STYLE"`
}

// JWTConfig holds session token configuration
type JWTConfig struct {
	Secret   string        `yaml:"secret" env:"JWT_SECRET"`
	Lifetime time.Duration `yaml:"lifetime" env:"JWT_LIFETIME"`
}

// CORSConfig lists the browser origins allowed to call the API with cookies
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:","`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL"`
}

// Load reads configuration from a YAML file, then applies environment
// overrides. A missing file is allowed when everything comes from env.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.JWT.Lifetime == 0 {
		c.JWT.Lifetime = 15 * 24 * time.Hour
	}
	if c.AWS.Folder == "" {
		c.AWS.Folder = "media"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks that required settings are present
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt secret is required")
	}
	if c.JWT.Lifetime < 0 {
		return errors.New("jwt lifetime must be positive")
	}
	return nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
