// Package config loads, normalizes, and validates autosub configuration data.
//
// Settings are layered: repository defaults, then the TOML file
// (~/.config/autosub/config.toml or ./autosub.toml), then AUTOSUB_*
// environment overrides, then CLI flags applied by the caller followed by
// Finalize. A .env file can seed the environment before any of this runs.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical language codes, and clear validation errors.
package config
