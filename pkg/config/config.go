package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"

	"github.com/ongchi/insitu-logger/pkg/archive"
	"github.com/ongchi/insitu-logger/pkg/database"
)

// DefaultPath is read when no --config flag is given.
const DefaultPath = "config.yaml"

// Config holds all configuration for insitu-logger.
// Configuration can come from a YAML file or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"0.0.0.0"`
	Port     string `yaml:"port" env:"PORT" env-default:"4000"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// StaticDir holds the built front end served at "/".
	StaticDir string `yaml:"static_dir" env:"STATIC_DIR" env-default:"./web/dist"`

	// CORSOrigins is a comma-separated list of allowed origins.
	CORSOrigins string `yaml:"cors_origins" env:"CORS_ORIGINS" env-default:"http://localhost:5173"`

	// MaxUploadBytes caps multipart log uploads.
	MaxUploadBytes int64 `yaml:"max_upload_bytes" env:"MAX_UPLOAD_BYTES" env-default:"100000000"`

	// ShutdownTimeout bounds graceful shutdown of the HTTP server.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"15s"`

	Database DatabaseConfig `yaml:"database"`
	Archive  ArchiveConfig  `yaml:"archive"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"insitu"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"insitu_logger"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"10"`
}

// ArchiveConfig selects where raw uploads are kept.
type ArchiveConfig struct {
	// Driver is one of none, fs, s3.
	Driver string `yaml:"driver" env:"ARCHIVE_DRIVER" env-default:"none"`
	Dir    string `yaml:"dir" env:"ARCHIVE_DIR" env-default:"./archive"`

	S3Bucket    string `yaml:"s3_bucket" env:"ARCHIVE_S3_BUCKET"`
	S3Region    string `yaml:"s3_region" env:"ARCHIVE_S3_REGION" env-default:"us-east-1"`
	S3Endpoint  string `yaml:"s3_endpoint" env:"ARCHIVE_S3_ENDPOINT"`
	S3PathStyle bool   `yaml:"s3_path_style" env:"ARCHIVE_S3_PATH_STYLE" env-default:"false"`

	// Static credentials; the default AWS chain is used when empty.
	S3AccessKeyID     string `yaml:"-" env:"ARCHIVE_S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `yaml:"-" env:"ARCHIVE_S3_SECRET_ACCESS_KEY"`
}

// Load reads configuration from path with environment variable overrides.
// A missing file is not an error; environment variables and defaults apply.
// The version parameter is injected at build time and set on the returned Config.
func Load(version, path string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if path == "" {
		path = DefaultPath
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("port %q is not a number", c.Port)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive")
	}

	switch archive.Driver(c.Archive.Driver) {
	case archive.DriverNone, archive.DriverFilesystem:
	case archive.DriverS3:
		if c.Archive.S3Bucket == "" {
			return fmt.Errorf("archive.s3_bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("unknown archive driver %q", c.Archive.Driver)
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.BindAddr, c.Port)
}

// AllowedOrigins returns the parsed CORS origin list.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// ConnectionString returns a PostgreSQL connection URL.
func (c *DatabaseConfig) ConnectionString() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(ResolveHostForDocker(c.Host), strconv.Itoa(c.Port)),
		Path:     "/" + c.Database,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	if c.Password == "" {
		u.User = url.User(c.User)
	}
	return u.String()
}

// Connection returns the pool settings for database.NewConnection.
func (c *DatabaseConfig) Connection() *database.Config {
	return &database.Config{
		URL:            c.ConnectionString(),
		MaxConnections: c.MaxConnections,
	}
}

// Store returns the settings for archive.Open.
func (c *ArchiveConfig) Store() archive.Config {
	return archive.Config{
		Driver:          archive.Driver(c.Driver),
		Dir:             c.Dir,
		Bucket:          c.S3Bucket,
		Region:          c.S3Region,
		Endpoint:        ResolveEndpointForDocker(c.S3Endpoint),
		PathStyle:       c.S3PathStyle,
		AccessKeyID:     c.S3AccessKeyID,
		SecretAccessKey: c.S3SecretAccessKey,
	}
}

// Redacted renders the effective configuration as YAML. Fields that only come
// from the environment (secrets) are never included.
func (c *Config) Redacted() (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	return string(out), nil
}
