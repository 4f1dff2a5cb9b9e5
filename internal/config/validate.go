package config

import (
	"errors"
	"fmt"
)

var validCanvasTypes = map[string]struct{}{
	"pdf": {},
	"png": {},
	"svg": {},
}

// Validate ensures the configuration is structurally usable. Credentials are
// checked separately so read-only commands work without them.
func (c *Config) Validate() error {
	if err := c.validateAPI(); err != nil {
		return err
	}
	if err := c.validateQR(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

// ValidateCredentials ensures the API token and organization are present.
// Commands that create remote resources call this before doing anything.
func (c *Config) ValidateCredentials() error {
	if c.API.Token == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/linkflow/config.toml"
		}
		return fmt.Errorf("api.token is required. Set UNIQODE_TOKEN env var or edit %s (create with 'linkflow config init')", defaultPath)
	}
	if c.API.Organization <= 0 {
		return errors.New("api.organization is required. Set UNIQODE_ORG_ID env var or edit the config file")
	}
	return nil
}

func (c *Config) validateAPI() error {
	if _, ok := environmentBases[c.API.Environment]; !ok && c.API.BaseURL == "" {
		return fmt.Errorf("api.environment %q is unknown (expected qa or prod) and no api.base_url override was given", c.API.Environment)
	}
	if c.API.RequestTimeout <= 0 {
		return errors.New("api.request_timeout must be a positive number of seconds")
	}
	return nil
}

func (c *Config) validateQR() error {
	if c.QR.Size <= 0 {
		return errors.New("qr.size must be positive")
	}
	if c.QR.ErrorCorrectionLevel < 0 || c.QR.ErrorCorrectionLevel > 3 {
		return errors.New("qr.error_correction_level must be between 0 and 3")
	}
	if _, ok := validCanvasTypes[c.QR.CanvasType]; !ok {
		return fmt.Errorf("qr.canvas_type %q is unsupported (expected pdf, png, or svg)", c.QR.CanvasType)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q is unsupported (expected console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is unsupported", c.Logging.Level)
	}
	return nil
}
