package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigFileYAML is the canonical config filename.
	DefaultConfigFileYAML = ".sitepolicy.yaml"
	// DefaultConfigFileYML is a compatible alternate config filename.
	DefaultConfigFileYML = ".sitepolicy.yml"
)

// FileConfig represents values loaded from a .sitepolicy.yaml file.
// Tokens are deliberately not accepted here; use --authtokenfile.
type FileConfig struct {
	Controller       string `yaml:"controller"`
	CSVFile          string `yaml:"csv_file"`
	AuthTokenFile    string `yaml:"auth_token_file"`
	Email            string `yaml:"email"`
	Timeout          string `yaml:"timeout"`
	LoginInterval    string `yaml:"login_interval"`
	MaxLoginAttempts *int   `yaml:"max_login_attempts"`
	AllowUnresolved  *bool  `yaml:"allow_unresolved"`
}

// Normalize trims string fields.
func (fc *FileConfig) Normalize() {
	if fc == nil {
		return
	}
	fc.Controller = strings.TrimSpace(fc.Controller)
	fc.CSVFile = strings.TrimSpace(fc.CSVFile)
	fc.AuthTokenFile = strings.TrimSpace(fc.AuthTokenFile)
	fc.Email = strings.TrimSpace(fc.Email)
	fc.Timeout = strings.TrimSpace(fc.Timeout)
	fc.LoginInterval = strings.TrimSpace(fc.LoginInterval)
}

// CandidatePaths lists the locations AutoLoadFile searches, in order.
// appDir may be empty.
func CandidatePaths(appDir string) []string {
	candidates := []string{
		DefaultConfigFileYAML,
		DefaultConfigFileYML,
	}

	if homeDir, err := os.UserHomeDir(); err == nil && strings.TrimSpace(homeDir) != "" {
		candidates = append(candidates,
			filepath.Join(homeDir, DefaultConfigFileYAML),
			filepath.Join(homeDir, DefaultConfigFileYML),
		)
	}

	if strings.TrimSpace(appDir) != "" {
		candidates = append(candidates, filepath.Join(appDir, "config.yaml"))
	}

	return candidates
}

// AutoLoadFile discovers and loads the first available config file.
func AutoLoadFile(appDir string) (*FileConfig, string, error) {
	return LoadFirstExistingFile(CandidatePaths(appDir))
}

// LoadFirstExistingFile loads the first config file that exists in paths.
func LoadFirstExistingFile(paths []string) (*FileConfig, string, error) {
	for _, path := range paths {
		candidate := strings.TrimSpace(path)
		if candidate == "" {
			continue
		}

		info, err := os.Stat(candidate)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, "", fmt.Errorf("failed to access config file %q: %w", candidate, err)
		}
		if info.IsDir() {
			return nil, "", fmt.Errorf("config path %q is a directory, expected a file", candidate)
		}

		cfg, err := LoadFile(candidate)
		if err != nil {
			return nil, "", err
		}
		return cfg, candidate, nil
	}

	return nil, "", nil
}

// LoadFile loads config values from a specific YAML file path.
func LoadFile(path string) (*FileConfig, error) {
	filename := strings.TrimSpace(path)
	if filename == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", filename, err)
	}

	cfg := &FileConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", filename, err)
	}

	cfg.Normalize()
	return cfg, nil
}
