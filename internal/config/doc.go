// Package config provides configuration structures and utilities for
// the content crawler. It defines the crawl limits, API credentials,
// and report generation preferences, loaded from CLI flags, a YAML
// config file, and environment variables.
package config
