// Package config loads, validates, and normalizes marquee configuration.
//
// Configuration lives in a TOML file (default ~/.config/marquee/config.toml)
// with environment variable overrides for deployment-sensitive values such as
// the OMDb API key. Defaults are defined in defaults.go and a commented sample
// file is embedded for 'marquee config init'.
package config
