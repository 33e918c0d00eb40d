// Package config loads and validates labeld configuration from TOML.
//
// Configuration resolves from an explicit path, then ~/.config/labeld/config.toml,
// then a labeld.toml in the working directory, falling back to built-in
// defaults when no file exists. Loaded values are normalized (path expansion,
// trimming, defaulting) before validation so the rest of the program never
// sees a half-populated Config.
package config
