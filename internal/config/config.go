// Package config loads and validates the TOML configuration of the table service.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
)

// ConfigFormatVersion is the current version of the configuration file format.
const ConfigFormatVersion = "0.1.0"

// formatConstraint accepts any format version with the same major and minor version.
var formatConstraint = mustConstraint("~" + ConfigFormatVersion)

func mustConstraint(c string) *semver.Constraints {
	constraint, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return constraint
}

// DBConfig holds the optional Postgres connection. An empty host disables the database.
type DBConfig struct {
	Host     string `toml:"host"`     // Database host
	Port     int    `toml:"port"`     // Database port
	DBName   string `toml:"dbname"`   // Database name
	User     string `toml:"user"`     // Database user
	Password string `toml:"password"` // Database password
	SSLMode  string `toml:"sslmode"`  // SSL mode for database connection
	Schema   string `toml:"schema"`   // Schema holding the extras tables
}

// TablesConfig tunes table construction.
type TablesConfig struct {
	PerPage                   int   `toml:"per_page"`                     // Rows per page of a table response
	SortContentTypes          *bool `toml:"sort_content_types"`           // Sort content type lists; defaults to true
	ContentTypesTruncateWords int   `toml:"content_types_truncate_words"` // Word limit of content type lists, 0 for none
}

// SortContentTypesOrDefault returns sort_content_types, true when unset.
func (t *TablesConfig) SortContentTypesOrDefault() bool {
	if t.SortContentTypes == nil {
		return true
	}
	return *t.SortContentTypes
}

// FixturesConfig points to the fixture file loaded at startup.
type FixturesConfig struct {
	Path string `toml:"path"`
}

// ConfigParam holds all configuration parameters
type ConfigParam struct {
	// Configuration version
	FormatVersion string `toml:"format_version"` // Version of this configuration file format

	// Server configuration
	ServerHostName     string   `toml:"server_hostname"`       // Hostname for the server
	ServerPort         string   `toml:"server_port"`           // Port for the main server
	HandleCORS         bool     `toml:"handle_cors"`           // Whether to handle CORS
	AllowedOrigins     []string `toml:"allowed_origins"`       // Origins allowed when handling CORS
	MaxRequestBodySize int64    `toml:"max_request_body_size"` // Maximum size of request body in bytes
	RequestTimeout     string   `toml:"request_timeout"`       // Per request timeout, e.g. "30s"
	LogLevel           string   `toml:"log_level"`             // zerolog level name

	DB       DBConfig       `toml:"db"`
	Tables   TablesConfig   `toml:"tables"`
	Fixtures FixturesConfig `toml:"fixtures"`
}

var cfg *ConfigParam

// Config returns the current configuration
func Config() *ConfigParam {
	return cfg
}

// SetConfig replaces the current configuration.
func SetConfig(c *ConfigParam) {
	cfg = c
}

// HasDB reports whether a database is configured.
func (c *ConfigParam) HasDB() bool {
	return c.DB.Host != ""
}

// DSN returns the database connection string
func (c *ConfigParam) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.DBName, c.DB.SSLMode)
}

// GetRequestTimeout returns request_timeout as a time.Duration, zero when unset.
func (c *ConfigParam) GetRequestTimeout() (time.Duration, error) {
	if c.RequestTimeout == "" {
		return 0, nil
	}
	return ParseDuration(c.RequestTimeout)
}

// ParseDuration parses a duration string in the format "<number><unit>" where unit can be:
// - d: days
// - h: hours
// - m: minutes
// - s: seconds
func ParseDuration(input string) (time.Duration, error) {
	if len(input) < 2 {
		return 0, fmt.Errorf("invalid input format")
	}

	unit := input[len(input)-1:]
	value, err := strconv.Atoi(input[:len(input)-1])
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", err)
	}
	if value < 0 {
		return 0, fmt.Errorf("negative duration: %s", input)
	}

	switch unit {
	case "d":
		return time.Duration(value) * 24 * time.Hour, nil
	case "h":
		return time.Duration(value) * time.Hour, nil
	case "m":
		return time.Duration(value) * time.Minute, nil
	case "s":
		return time.Duration(value) * time.Second, nil
	default:
		return 0, fmt.Errorf("unknown time unit: %s", unit)
	}
}

// ValidateConfig checks if all required configuration values are present and valid,
// filling in defaults for optional ones.
func ValidateConfig(cfg *ConfigParam) error {
	if err := validateConfigFormatVersion(cfg); err != nil {
		return err
	}
	if err := validateServerConfig(cfg); err != nil {
		return err
	}
	if err := validateDBConfig(cfg); err != nil {
		return err
	}
	if err := validateTablesConfig(cfg); err != nil {
		return err
	}
	return nil
}

func validateConfigFormatVersion(cfg *ConfigParam) error {
	v, err := semver.NewVersion(cfg.FormatVersion)
	if err != nil {
		return fmt.Errorf("invalid config file format version %q: %v", cfg.FormatVersion, err)
	}
	if !formatConstraint.Check(v) {
		return fmt.Errorf("unsupported config file format version: %s", cfg.FormatVersion)
	}
	return nil
}

func validateServerConfig(cfg *ConfigParam) error {
	if cfg.ServerPort == "" {
		return fmt.Errorf("server_port is required")
	}
	if _, err := strconv.Atoi(cfg.ServerPort); err != nil {
		return fmt.Errorf("invalid server_port: %s", cfg.ServerPort)
	}
	if cfg.MaxRequestBodySize < 0 {
		return fmt.Errorf("max_request_body_size must not be negative")
	}
	if cfg.MaxRequestBodySize == 0 {
		cfg.MaxRequestBodySize = 1 << 20
	}
	if _, err := cfg.GetRequestTimeout(); err != nil {
		return fmt.Errorf("invalid request_timeout: %v", err)
	}
	if cfg.HandleCORS && len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	return nil
}

func validateDBConfig(cfg *ConfigParam) error {
	if !cfg.HasDB() {
		return nil
	}
	if cfg.DB.Port <= 0 {
		return fmt.Errorf("db.port must be positive")
	}
	if cfg.DB.DBName == "" {
		return fmt.Errorf("db.dbname is required")
	}
	if cfg.DB.User == "" {
		return fmt.Errorf("db.user is required")
	}
	if cfg.DB.SSLMode == "" {
		cfg.DB.SSLMode = "disable"
	}
	if cfg.DB.Schema == "" {
		cfg.DB.Schema = "public"
	}
	return nil
}

func validateTablesConfig(cfg *ConfigParam) error {
	if cfg.Tables.PerPage < 0 {
		return fmt.Errorf("tables.per_page must not be negative")
	}
	if cfg.Tables.PerPage == 0 {
		cfg.Tables.PerPage = 50
	}
	if cfg.Tables.ContentTypesTruncateWords < 0 {
		return fmt.Errorf("tables.content_types_truncate_words must not be negative")
	}
	return nil
}

// Parse decodes and validates a TOML document.
func Parse(content string) (*ConfigParam, error) {
	c := &ConfigParam{}
	if _, err := toml.Decode(content, c); err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}
	if err := ValidateConfig(c); err != nil {
		return nil, fmt.Errorf("invalid configuration: %v", err)
	}
	return c, nil
}

// LoadConfig loads configuration from a file and makes it current.
func LoadConfig(filename string) error {
	if filename == "" {
		return fmt.Errorf("config filename is required")
	}

	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	c, err := Parse(string(content))
	if err != nil {
		return err
	}
	cfg = c
	return nil
}
