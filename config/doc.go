// Package config loads YAML and environment configuration for
// applications embedding the aggregation engine.
//
// LoadConfig layers a discovered (or explicitly given) YAML file,
// process environment variables, and a .env file into any tagged
// config struct:
//
//	var cfg struct {
//		Logging logger.Config  `mapstructure:"logging"`
//		MongoDB mongodb.Config `mapstructure:"mongodb"`
//	}
//	err := config.LoadConfig("reporting", &cfg)
//
// Environment variables override file values using underscore-separated
// paths (e.g. MONGODB_URI, LOGGING_LEVEL).
package config
