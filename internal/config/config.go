package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// API contains credentials and environment selection for the vendor API.
type API struct {
	Token        string `toml:"token"`
	Organization int64  `toml:"organization"`
	Environment  string `toml:"environment"`
	// BaseURL and PDFBaseURL override the environment defaults when set.
	BaseURL        string `toml:"base_url"`
	PDFBaseURL     string `toml:"pdf_base_url"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Output contains the run artifact directory configuration.
type Output struct {
	Dir string `toml:"dir"`
}

// QR contains QR image download options.
type QR struct {
	Size                 int    `toml:"size"`
	ErrorCorrectionLevel int    `toml:"error_correction_level"`
	CanvasType           string `toml:"canvas_type"`
}

// Run contains default names used when the CLI flags are omitted.
type Run struct {
	LinkpageName string `toml:"linkpage_name"`
	QRName       string `toml:"qr_name"`
	MediaFolder  int64  `toml:"media_folder"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for linkflow.
//
// Configuration sections by subsystem:
//   - API: token, organization, target environment, request timeout
//   - Output: where QR images and run dumps land
//   - QR: download options for the QR image
//   - Run: default linkpage/QR names and optional media folder
//   - Logging: log format and level
type Config struct {
	API     API     `toml:"api"`
	Output  Output  `toml:"output"`
	QR      QR      `toml:"qr"`
	Run     Run     `toml:"run"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/linkflow/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has path fields expanded and environment-variable fallbacks applied.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("linkflow.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the output directory used for run artifacts.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Output.Dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Output.Dir, err)
	}
	return nil
}

// APIBaseURL resolves the vendor API base for the selected environment,
// honoring an explicit override.
func (c *Config) APIBaseURL() string {
	if base := strings.TrimSpace(c.API.BaseURL); base != "" {
		return strings.TrimRight(base, "/")
	}
	if env, ok := environmentBases[c.API.Environment]; ok {
		return env.api
	}
	return environmentBases[EnvironmentQA].api
}

// PDFBaseURL resolves the PDF serving base used to construct pdf_url values.
func (c *Config) PDFBaseURL() string {
	if base := strings.TrimSpace(c.API.PDFBaseURL); base != "" {
		return strings.TrimRight(base, "/")
	}
	if env, ok := environmentBases[c.API.Environment]; ok {
		return env.pdf
	}
	return environmentBases[EnvironmentQA].pdf
}

// CreateSample writes the embedded sample configuration to the given path.
func CreateSample(path string) error {
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
