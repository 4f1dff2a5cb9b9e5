package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// normalize applies environment-variable fallbacks, trims string fields, and
// expands path values. It runs after decoding and before validation.
func (c *Config) normalize() error {
	c.API.Token = strings.TrimSpace(c.API.Token)
	if c.API.Token == "" {
		c.API.Token = strings.TrimSpace(os.Getenv("UNIQODE_TOKEN"))
	}

	if c.API.Organization == 0 {
		if raw := strings.TrimSpace(os.Getenv("UNIQODE_ORG_ID")); raw != "" {
			parsed, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return fmt.Errorf("parse UNIQODE_ORG_ID %q: %w", raw, err)
			}
			c.API.Organization = parsed
		}
	}

	env := strings.ToLower(strings.TrimSpace(c.API.Environment))
	if env == "" {
		env = strings.ToLower(strings.TrimSpace(os.Getenv("UNIQODE_ENV")))
	}
	if env == "" {
		env = defaultEnvironment
	}
	c.API.Environment = env

	c.API.BaseURL = strings.TrimSpace(c.API.BaseURL)
	c.API.PDFBaseURL = strings.TrimSpace(c.API.PDFBaseURL)
	c.QR.CanvasType = strings.ToLower(strings.TrimSpace(c.QR.CanvasType))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))

	dir, err := expandPath(c.Output.Dir)
	if err != nil {
		return err
	}
	c.Output.Dir = dir

	return nil
}
