// Package config loads, normalizes, and validates Gradr configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks. The Config
// type centralizes every knob the daemon and CLI need, so scans and transcript
// directories, queue tuning, and the transcriber command are discovered in one
// pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
