// Package config provides configuration management for the Bastion gateway.
//
// This package handles loading and validating configuration from YAML files
// with environment variable overrides. Every field has a default, so the
// gateway runs without any configuration file.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// Passing an empty path to either function starts from the defaults. Unknown
// YAML keys are rejected.
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention BASTION_SECTION_FIELD.
// For example:
//
//   - BASTION_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - BASTION_AUDIT_SQLITE_PATH overrides audit.sqlite.path
//   - BASTION_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// LoadEnvFiles reads dotenv files into the process environment first, so
// overrides can also live in a .env file.
//
// # Configuration Precedence
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Validation
//
// Validation errors carry field paths:
//
//	configuration validation failed with 2 errors:
//	  - audit.backend: invalid backend "mysql": must be 'sqlite' or 'memory'
//	  - routing.monitor.schedule: invalid schedule "soon": ...
//
// # Example Configuration
//
//	server:
//	  listen_address: "0.0.0.0:8080"
//
//	guardrails:
//	  max_input_length: 10000
//	  custom_injection_rules:
//	    - category: "jailbreak"
//	      pattern: "(?i)developer\\s+mode"
//
//	routing:
//	  monitor:
//	    schedule: "@every 15s"
//
//	audit:
//	  backend: "sqlite"
//	  sqlite:
//	    path: "data/audit.db"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
package config
