// Package config provides YAML-based configuration loading for drillplan.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file the CLI looks for when --config is not given.
const DefaultPath = "drillplan.yaml"

// Catalog backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMySQL  = "mysql"
)

// Archive drivers.
const (
	ArchiveFS = "fs"
	ArchiveS3 = "s3"
)

// Config is the top-level drillplan configuration, loaded from drillplan.yaml.
type Config struct {
	Catalog  CatalogConfig  `yaml:"catalog"`
	Server   ServerConfig   `yaml:"server"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Images   ImagesConfig   `yaml:"images"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Publish  PublishConfig  `yaml:"publish"`
}

// CatalogConfig selects where the drill catalog lives.
type CatalogConfig struct {
	Backend string      `yaml:"backend"`
	Path    string      `yaml:"path"` // catalog file (file backend) or database file (sqlite)
	MySQL   MySQLConfig `yaml:"mysql"`
}

// MySQLConfig holds connection settings for the mysql backend.
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// ServerConfig holds web server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// DefaultsConfig drives the choices and initial values of the schedule form.
type DefaultsConfig struct {
	Sports           []string `yaml:"sports"`
	AgeCategories    []string `yaml:"age_categories"`
	SessionCount     int      `yaml:"session_count"`
	DrillsPerSession int      `yaml:"drills_per_session"`
	MinutesPerDrill  int      `yaml:"minutes_per_drill"`
}

// ImagesConfig controls how drill images are fetched for PDF export.
type ImagesConfig struct {
	Timeout time.Duration `yaml:"timeout"`
	Retries *int          `yaml:"retries"` // nil means the default; 0 disables retries
	Backoff time.Duration `yaml:"backoff"`
}

// ArchiveConfig selects where exported PDFs are stored.
type ArchiveConfig struct {
	Driver string   `yaml:"driver"`
	Dir    string   `yaml:"dir"`
	S3     S3Config `yaml:"s3"`
}

// S3Config holds S3 (or MinIO) settings for the archive.
type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

// PublishConfig configures chat delivery of generated schedules.
type PublishConfig struct {
	Cron    string        `yaml:"cron"`
	Request RequestConfig `yaml:"request"`
	Slack   ChatConfig    `yaml:"slack"`
	Discord ChatConfig    `yaml:"discord"`
}

// RequestConfig is the schedule request used by scheduled publishing.
type RequestConfig struct {
	Sport            string `yaml:"sport"`
	AgeCategory      string `yaml:"age_category"`
	SessionCount     int    `yaml:"session_count"`
	DrillsPerSession int    `yaml:"drills_per_session"`
	MinutesPerDrill  int    `yaml:"minutes_per_drill"`
}

// ChatConfig holds credentials for one chat platform. Tokens may reference
// environment variables as ${VAR}.
type ChatConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// Enabled reports whether the platform has enough settings to send messages.
func (c ChatConfig) Enabled() bool {
	return c.BotToken != "" && c.ChannelID != ""
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// LoadOrDefault behaves like Load, except that a missing file yields the
// built-in defaults unless required is set.
func LoadOrDefault(path string, required bool) (*Config, error) {
	cfg, err := Load(path)
	if err != nil && !required && errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.expandSecrets()
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// expandSecrets resolves ${VAR} references in credential fields.
func (c *Config) expandSecrets() {
	c.Catalog.MySQL.Password = os.ExpandEnv(c.Catalog.MySQL.Password)
	c.Publish.Slack.BotToken = os.ExpandEnv(c.Publish.Slack.BotToken)
	c.Publish.Discord.BotToken = os.ExpandEnv(c.Publish.Discord.BotToken)
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Catalog.Backend == "" {
		c.Catalog.Backend = BackendFile
	}
	if c.Catalog.Path == "" {
		switch c.Catalog.Backend {
		case BackendSQLite:
			c.Catalog.Path = "drillplan.db"
		default:
			c.Catalog.Path = "oefeningen_data.json"
		}
	}
	if c.Catalog.MySQL.Host == "" {
		c.Catalog.MySQL.Host = "127.0.0.1"
	}
	if c.Catalog.MySQL.Port == 0 {
		c.Catalog.MySQL.Port = 3306
	}
	if c.Catalog.MySQL.User == "" {
		c.Catalog.MySQL.User = "root"
	}
	if c.Catalog.MySQL.Database == "" {
		c.Catalog.MySQL.Database = "drillplan"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if len(c.Defaults.Sports) == 0 {
		c.Defaults.Sports = []string{"hockey", "voetbal"}
	}
	if len(c.Defaults.AgeCategories) == 0 {
		c.Defaults.AgeCategories = []string{"U10", "U12"}
	}
	if c.Defaults.SessionCount == 0 {
		c.Defaults.SessionCount = 2
	}
	if c.Defaults.DrillsPerSession == 0 {
		c.Defaults.DrillsPerSession = 2
	}
	if c.Defaults.MinutesPerDrill == 0 {
		c.Defaults.MinutesPerDrill = 10
	}
	if c.Images.Timeout == 0 {
		c.Images.Timeout = 10 * time.Second
	}
	if c.Images.Retries == nil {
		retries := 2
		c.Images.Retries = &retries
	}
	if c.Images.Backoff == 0 {
		c.Images.Backoff = 500 * time.Millisecond
	}
	if c.Archive.Driver == "" {
		c.Archive.Driver = ArchiveFS
	}
	if c.Archive.Dir == "" {
		c.Archive.Dir = "exports"
	}
	if c.Archive.S3.Region == "" {
		c.Archive.S3.Region = "us-east-1"
	}
	r := &c.Publish.Request
	if r.SessionCount == 0 {
		r.SessionCount = c.Defaults.SessionCount
	}
	if r.DrillsPerSession == 0 {
		r.DrillsPerSession = c.Defaults.DrillsPerSession
	}
	if r.MinutesPerDrill == 0 {
		r.MinutesPerDrill = c.Defaults.MinutesPerDrill
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Catalog.Backend {
	case BackendFile, BackendSQLite, BackendMySQL:
	default:
		errs = append(errs, fmt.Sprintf("catalog.backend %q is not one of file, sqlite, mysql", c.Catalog.Backend))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port %d is out of range", c.Server.Port))
	}
	if c.Defaults.SessionCount < 1 {
		errs = append(errs, "defaults.session_count must be at least 1")
	}
	if c.Defaults.DrillsPerSession < 1 {
		errs = append(errs, "defaults.drills_per_session must be at least 1")
	}
	if c.Defaults.MinutesPerDrill < 1 {
		errs = append(errs, "defaults.minutes_per_drill must be at least 1")
	}
	if *c.Images.Retries < 0 {
		errs = append(errs, "images.retries must not be negative")
	}
	switch c.Archive.Driver {
	case ArchiveFS:
	case ArchiveS3:
		if c.Archive.S3.Bucket == "" {
			errs = append(errs, "archive.s3.bucket is required for the s3 driver")
		}
	default:
		errs = append(errs, fmt.Sprintf("archive.driver %q is not one of fs, s3", c.Archive.Driver))
	}
	if c.Publish.Cron != "" {
		if c.Publish.Request.Sport == "" {
			errs = append(errs, "publish.request.sport is required when publish.cron is set")
		}
		if c.Publish.Request.AgeCategory == "" {
			errs = append(errs, "publish.request.age_category is required when publish.cron is set")
		}
		if !c.Publish.Slack.Enabled() && !c.Publish.Discord.Enabled() {
			errs = append(errs, "publish.cron is set but neither slack nor discord is configured")
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
