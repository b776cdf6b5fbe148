// Package logger provides structured logging for the aggregation kit
// using zerolog.
//
// It supports multiple output formats (JSON, console), log level
// configuration, and component-scoped loggers with structured fields.
// Library components stay silent by default: they log through Nop()
// unless the host wires in a configured logger.
//
// # Configuration
//
//	logger:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.NewDefault().WithComponent("executor")
//	log.Info("aggregate completed", logger.Fields("stages", 4))
package logger
