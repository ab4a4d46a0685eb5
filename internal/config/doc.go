// Package config loads, normalizes, and validates wavmeta configuration.
//
// Settings come from a TOML file (by default ~/.config/wavmeta/config.toml or
// ./wavmeta.toml). A missing file is not an error: Load falls back to the
// repository defaults so every command works without configuration.
package config
