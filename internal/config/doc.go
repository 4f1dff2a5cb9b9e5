// Package config loads, validates, and normalizes the linkflow TOML
// configuration.
//
// Resolution order: an explicit --config path, then
// ~/.config/linkflow/config.toml, then ./linkflow.toml, then built-in
// defaults. Credentials fall back to UNIQODE_TOKEN / UNIQODE_ORG_ID /
// UNIQODE_ENV environment variables so the CLI can run without a config file.
// The package also owns the environment registry that maps the qa/prod
// selection to API and PDF base URLs.
package config
