package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store drivers selected from the DATABASE_URL scheme
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

type Config struct {
	Port           string `yaml:"port"`
	Environment    string `yaml:"environment"`
	DatabaseURL    string `yaml:"database_url"`
	MongoDatabase  string `yaml:"mongo_database"`
	TablePrefix    string `yaml:"table_prefix"`
	CORSOrigins    string `yaml:"cors_origins"`
	PublicBaseURL  string `yaml:"public_base_url"` // Prefix for file URLs; empty = relative URLs
	RootFolderName string `yaml:"root_folder_name"`

	Storage StorageConfig `yaml:"storage"`
	Upload  UploadConfig  `yaml:"upload"`
	Logging LoggingConfig `yaml:"logging"`
}

type StorageConfig struct {
	Dir              string        `yaml:"dir"`
	SweepGracePeriod time.Duration `yaml:"sweep_grace_period"` // Younger blobs are never swept
}

type UploadConfig struct {
	MaxFileSizeMB    int      `yaml:"max_file_size_mb"`
	MaxFiles         int      `yaml:"max_files"`
	AllowedMimeTypes []string `yaml:"allowed_mime_types"` // Empty = allow all
}

type LoggingConfig struct {
	Dir      string `yaml:"dir"` // Empty = stdout only
	MaxFiles int    `yaml:"max_files"`
}

// MaxFileSizeBytes returns the per-file upload limit in bytes
func (u UploadConfig) MaxFileSizeBytes() int64 {
	return int64(u.MaxFileSizeMB) << 20
}

// Load builds the configuration from defaults, an optional YAML file
// named by CONFIG_FILE, and environment variables (highest precedence).
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.MongoDatabase = getEnv("MONGO_DATABASE", cfg.MongoDatabase)
	cfg.CORSOrigins = getEnv("CORS_ORIGINS", cfg.CORSOrigins)
	cfg.PublicBaseURL = strings.TrimRight(getEnv("PUBLIC_BASE_URL", cfg.PublicBaseURL), "/")
	cfg.RootFolderName = getEnv("ROOT_FOLDER_NAME", cfg.RootFolderName)
	cfg.Storage.Dir = getEnv("STORAGE_DIR", cfg.Storage.Dir)
	cfg.Logging.Dir = getEnv("LOG_DIR", cfg.Logging.Dir)

	var err error
	if cfg.Upload.MaxFileSizeMB, err = getEnvInt("MAX_FILE_SIZE_MB", cfg.Upload.MaxFileSizeMB); err != nil {
		return nil, err
	}
	if cfg.Upload.MaxFiles, err = getEnvInt("MAX_FILES_PER_UPLOAD", cfg.Upload.MaxFiles); err != nil {
		return nil, err
	}
	if cfg.Logging.MaxFiles, err = getEnvInt("LOG_MAX_FILES", cfg.Logging.MaxFiles); err != nil {
		return nil, err
	}
	if v := os.Getenv("SWEEP_GRACE_PERIOD"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("SWEEP_GRACE_PERIOD: %w", err)
		}
		cfg.Storage.SweepGracePeriod = d
	}
	if v, ok := os.LookupEnv("ALLOWED_MIME_TYPES"); ok {
		cfg.Upload.AllowedMimeTypes = ParseMimeList(v)
	}

	cfg.TablePrefix = getEnv("TABLE_PREFIX", cfg.TablePrefix)
	if cfg.TablePrefix == "" {
		cfg.TablePrefix = getTablePrefix(cfg.Environment)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Port:           "4000",
		Environment:    "dev",
		DatabaseURL:    "postgres://localhost:5432/foldervault",
		MongoDatabase:  "foldervault",
		CORSOrigins:    "http://localhost:3000",
		RootFolderName: DefaultRootFolderName,
		Storage: StorageConfig{
			Dir:              "uploads",
			SweepGracePeriod: time.Hour,
		},
		Upload: UploadConfig{
			MaxFileSizeMB: DefaultMaxFileSizeMB,
			MaxFiles:      DefaultMaxFilesPerUpload,
		},
		Logging: LoggingConfig{
			MaxFiles: 10,
		},
	}
}

// loadFile overlays YAML settings onto cfg
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Upload.MaxFileSizeMB <= 0 {
		return fmt.Errorf("max file size must be positive, got %d MiB", c.Upload.MaxFileSizeMB)
	}
	if c.Upload.MaxFiles <= 0 {
		return fmt.Errorf("max files per upload must be positive, got %d", c.Upload.MaxFiles)
	}
	if c.Storage.Dir == "" {
		return fmt.Errorf("storage directory is required")
	}
	if _, err := c.StoreDriver(); err != nil {
		return err
	}
	return nil
}

// StoreDriver returns the document store driver implied by DatabaseURL
func (c *Config) StoreDriver() (string, error) {
	switch {
	case strings.HasPrefix(c.DatabaseURL, "postgres://"), strings.HasPrefix(c.DatabaseURL, "postgresql://"):
		return DriverPostgres, nil
	case strings.HasPrefix(c.DatabaseURL, "mongodb://"), strings.HasPrefix(c.DatabaseURL, "mongodb+srv://"):
		return DriverMongo, nil
	default:
		return "", fmt.Errorf("unsupported DATABASE_URL scheme: %q", c.DatabaseURL)
	}
}

// ParseMimeList splits a comma-separated allow-list, dropping blanks
func ParseMimeList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
