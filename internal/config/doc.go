// Package config loads, normalizes, and validates chalk configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob
// the CLI needs: the course directory layout, distribution-pass stubs and
// lock policy, autograde execution settings, and the collector pattern used
// to resolve submitted filenames.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
