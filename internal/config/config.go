// Package config provides unified configuration for all Eventdeck services.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Mode represents the service mode to run.
type Mode string

const (
	ModeAll    Mode = "all"
	ModeIngest Mode = "ingest"
	ModeQuery  Mode = "query"
)

// Config holds the unified configuration for all Eventdeck services.
type Config struct {
	// Mode specifies which services to run: all, ingest, query
	Mode Mode `json:"mode" yaml:"mode"`

	// DataDir is the base directory for all data files
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// HTTP configuration
	HTTP HTTPConfig `json:"http" yaml:"http"`

	// Ingest service configuration
	Ingest IngestConfig `json:"ingest" yaml:"ingest"`

	// Query service configuration
	Query QueryConfig `json:"query" yaml:"query"`

	// Store configuration
	Store StoreConfig `json:"store" yaml:"store"`

	// Assets configuration
	Assets AssetsConfig `json:"assets" yaml:"assets"`
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	// IngestAddr is the HTTP address for the ingest service
	IngestAddr string `json:"ingest_addr" yaml:"ingest_addr"`

	// QueryAddr is the HTTP address for the query service
	QueryAddr string `json:"query_addr" yaml:"query_addr"`

	// ReadTimeout is the HTTP read timeout
	ReadTimeout time.Duration `json:"read_timeout" yaml:"read_timeout"`

	// WriteTimeout is the HTTP write timeout
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`

	// IdleTimeout is the HTTP idle timeout
	IdleTimeout time.Duration `json:"idle_timeout" yaml:"idle_timeout"`
}

// IngestConfig holds ingest service configuration.
type IngestConfig struct {
	// MaxUploadMB bounds the multipart submission body size in megabytes (1–64, default 10)
	MaxUploadMB int `json:"max_upload_mb" yaml:"max_upload_mb"`
}

// QueryConfig holds query service configuration.
type QueryConfig struct {
	// ListingTTL is the freshness window for the cached listing response
	ListingTTL time.Duration `json:"listing_ttl" yaml:"listing_ttl"`

	// ListingCacheEnabled controls whether listing responses are cached
	ListingCacheEnabled bool `json:"listing_cache_enabled" yaml:"listing_cache_enabled"`
}

// StoreConfig holds event store configuration.
type StoreConfig struct {
	// Type is the store type: sqlite, mongo, memory
	Type string `json:"type" yaml:"type"`

	// Path is the SQLite database path (for sqlite type)
	Path string `json:"path" yaml:"path"`

	// Mongo configuration (for mongo type)
	Mongo MongoConfig `json:"mongo" yaml:"mongo"`
}

// MongoConfig holds MongoDB store configuration.
type MongoConfig struct {
	// URI is the MongoDB connection string
	URI string `json:"uri" yaml:"uri"`

	// Database is the MongoDB database name
	Database string `json:"database" yaml:"database"`
}

// AssetsConfig holds asset store configuration.
type AssetsConfig struct {
	// Type is the asset store type: local, s3
	Type string `json:"type" yaml:"type"`

	// Path is the local asset directory (for local type)
	Path string `json:"path" yaml:"path"`

	// S3 configuration (for s3 type)
	S3 S3Config `json:"s3" yaml:"s3"`
}

// S3Config holds S3 asset store configuration.
type S3Config struct {
	// Bucket is the S3 bucket name
	Bucket string `json:"bucket" yaml:"bucket"`

	// Region is the AWS region
	Region string `json:"region" yaml:"region"`

	// Endpoint is the S3 endpoint (for S3-compatible storage)
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// UsePathStyle forces path-style addressing (for S3-compatible storage)
	UsePathStyle bool `json:"use_path_style" yaml:"use_path_style"`

	// PublicBaseURL is the public URL prefix served to clients
	PublicBaseURL string `json:"public_base_url" yaml:"public_base_url"`
}

// DefaultConfig returns the default configuration for local development.
func DefaultConfig() *Config {
	return &Config{
		Mode:    ModeAll,
		DataDir: "./data/eventdeck",
		HTTP: HTTPConfig{
			IngestAddr:   ":8080",
			QueryAddr:    ":8081",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Ingest: IngestConfig{
			MaxUploadMB: 10,
		},
		Query: QueryConfig{
			ListingTTL:          time.Hour,
			ListingCacheEnabled: true,
		},
		Store: StoreConfig{
			Type: "sqlite",
			Path: "",
			Mongo: MongoConfig{
				Database: "eventdeck",
			},
		},
		Assets: AssetsConfig{
			Type: "local",
			Path: "",
		},
	}
}

// Resolve resolves relative paths and sets defaults based on DataDir.
func (c *Config) Resolve() {
	if c.DataDir == "" {
		c.DataDir = "./data/eventdeck"
	}

	if c.Store.Path == "" {
		c.Store.Path = filepath.Join(c.DataDir, "events.db")
	}

	if c.Assets.Path == "" {
		c.Assets.Path = filepath.Join(c.DataDir, "assets")
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeAll, ModeIngest, ModeQuery:
		// Valid modes
	default:
		return fmt.Errorf("invalid mode: %s (must be all, ingest, or query)", c.Mode)
	}

	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	switch c.Store.Type {
	case "sqlite", "mongo", "memory":
		// Valid store types
	default:
		return fmt.Errorf("invalid store type: %s (must be sqlite, mongo, or memory)", c.Store.Type)
	}

	if c.Store.Type == "mongo" && c.Store.Mongo.URI == "" {
		return fmt.Errorf("store.mongo.uri is required when store type is mongo")
	}

	if c.Assets.Type != "local" && c.Assets.Type != "s3" {
		return fmt.Errorf("invalid assets type: %s (must be local or s3)", c.Assets.Type)
	}

	if c.Assets.Type == "s3" && c.Assets.S3.Bucket == "" {
		return fmt.Errorf("assets.s3.bucket is required when assets type is s3")
	}

	if c.Ingest.MaxUploadMB < 1 || c.Ingest.MaxUploadMB > 64 {
		return fmt.Errorf("ingest.max_upload_mb must be between 1 and 64, got %d", c.Ingest.MaxUploadMB)
	}

	if c.Query.ListingTTL < 0 {
		return fmt.Errorf("query.listing_ttl must not be negative, got %s", c.Query.ListingTTL)
	}

	return nil
}

// MaxUploadBytes returns the multipart body limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Ingest.MaxUploadMB) << 20
}

// ShouldRunIngest returns true if the ingest service should run.
func (c *Config) ShouldRunIngest() bool {
	return c.Mode == ModeAll || c.Mode == ModeIngest
}

// ShouldRunQuery returns true if the query service should run.
func (c *Config) ShouldRunQuery() bool {
	return c.Mode == ModeAll || c.Mode == ModeQuery
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the EVENTDECK_ prefix.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("EVENTDECK_MODE"); v != "" {
		cfg.Mode = Mode(v)
	}
	if v := os.Getenv("EVENTDECK_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	// HTTP configuration
	if v := os.Getenv("EVENTDECK_HTTP_INGEST_ADDR"); v != "" {
		cfg.HTTP.IngestAddr = v
	}
	if v := os.Getenv("EVENTDECK_HTTP_QUERY_ADDR"); v != "" {
		cfg.HTTP.QueryAddr = v
	}

	// Ingest configuration
	if v := os.Getenv("EVENTDECK_INGEST_MAX_UPLOAD_MB"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Ingest.MaxUploadMB)
	}

	// Query configuration
	if v := os.Getenv("EVENTDECK_QUERY_LISTING_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Query.ListingTTL = d
		}
	}
	if v := os.Getenv("EVENTDECK_QUERY_LISTING_CACHE_ENABLED"); v != "" {
		cfg.Query.ListingCacheEnabled = v == "true" || v == "1"
	}

	// Store configuration
	if v := os.Getenv("EVENTDECK_STORE_TYPE"); v != "" {
		cfg.Store.Type = v
	}
	if v := os.Getenv("EVENTDECK_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("EVENTDECK_MONGO_URI"); v != "" {
		cfg.Store.Mongo.URI = v
	}
	if v := os.Getenv("EVENTDECK_MONGO_DATABASE"); v != "" {
		cfg.Store.Mongo.Database = v
	}

	// Assets configuration
	if v := os.Getenv("EVENTDECK_ASSETS_TYPE"); v != "" {
		cfg.Assets.Type = v
	}
	if v := os.Getenv("EVENTDECK_ASSETS_PATH"); v != "" {
		cfg.Assets.Path = v
	}
	if v := os.Getenv("EVENTDECK_S3_BUCKET"); v != "" {
		cfg.Assets.S3.Bucket = v
	}
	if v := os.Getenv("EVENTDECK_S3_REGION"); v != "" {
		cfg.Assets.S3.Region = v
	}
	if v := os.Getenv("EVENTDECK_S3_ENDPOINT"); v != "" {
		cfg.Assets.S3.Endpoint = v
	}
	if v := os.Getenv("EVENTDECK_S3_USE_PATH_STYLE"); v != "" {
		cfg.Assets.S3.UsePathStyle = v == "true" || v == "1"
	}
	if v := os.Getenv("EVENTDECK_S3_PUBLIC_BASE_URL"); v != "" {
		cfg.Assets.S3.PublicBaseURL = v
	}
}

// EnsureDirectories creates all required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.DataDir,
	}
	if c.Store.Type == "sqlite" && c.Store.Path != "" {
		dirs = append(dirs, filepath.Dir(c.Store.Path))
	}
	if c.Assets.Type == "local" && c.Assets.Path != "" {
		dirs = append(dirs, c.Assets.Path)
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
