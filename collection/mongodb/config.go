package mongodb

import (
	"fmt"
	"time"

	"github.com/speedytwenty/mongodb-aggregate/config"
	"github.com/speedytwenty/mongodb-aggregate/version"
)

// Config holds MongoDB connection configuration.
type Config struct {
	// URI is the MongoDB connection string.
	URI string `yaml:"uri" mapstructure:"uri"`

	// Database is the database aggregations run against.
	Database string `yaml:"database" mapstructure:"database"`

	// AppName identifies the client in server logs. Defaults to the
	// module user agent.
	AppName string `yaml:"app_name" mapstructure:"app_name"`

	// ConnectTimeout bounds each connection attempt, ping included
	// (e.g. "10s").
	ConnectTimeout string `yaml:"connect_timeout" mapstructure:"connect_timeout"`

	// MaxRetries is the number of connection attempts before giving up.
	MaxRetries int `yaml:"max_retries" mapstructure:"max_retries"`

	// MaxPoolSize caps the driver connection pool. Zero keeps the
	// driver default.
	MaxPoolSize uint64 `yaml:"max_pool_size" mapstructure:"max_pool_size"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.AppName == "" {
		c.AppName = version.UserAgent()
	}
	if c.ConnectTimeout == "" {
		c.ConnectTimeout = "10s"
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 5
	}
}

// LoadConfig reads the "mongodb" section of the named application's
// configuration (YAML file, environment, .env) and applies defaults.
// Validation is left to Connect, so a partially loaded config can
// still be completed in code.
func LoadConfig(name string, opts ...config.LoaderOption) (Config, error) {
	var wrapper struct {
		MongoDB Config `mapstructure:"mongodb"`
	}
	if err := config.LoadConfig(name, &wrapper, opts...); err != nil {
		return Config{}, err
	}
	cfg := wrapper.MongoDB
	cfg.ApplyDefaults()
	return cfg, nil
}

// Validate checks that required fields are present and parseable.
func (c *Config) Validate() error {
	if c.URI == "" {
		return fmt.Errorf("mongodb uri is required")
	}
	if c.Database == "" {
		return fmt.Errorf("mongodb database is required")
	}
	if _, err := time.ParseDuration(c.ConnectTimeout); err != nil {
		return fmt.Errorf("invalid connect_timeout %q: %w", c.ConnectTimeout, err)
	}
	if c.MaxRetries <= 0 {
		return fmt.Errorf("max_retries must be > 0")
	}
	return nil
}
