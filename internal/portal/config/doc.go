// Package config loads runtime configuration for the portal CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. PORTAL_* environment variables (sethvargo/go-envconfig).
//  3. Optional JSON file selected via -c or -config.
//  4. Command-line flags, which override everything earlier.
//
// Supported flags
//
//	-a string   base URL of the API gateway
//	-t int      per-request timeout (seconds)
//	-l string   log level
//
// # JSON schema
//
//	{
//	  "gateway_addr": "https://gateway.example.com",
//	  "request_timeout": "15s",
//	  "log_level": "info",
//	  "log_pretty": true
//	}
package config
