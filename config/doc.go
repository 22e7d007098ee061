// Package config provides unified configuration loading: defaults, then a
// YAML file, then environment variable overrides.
package config
