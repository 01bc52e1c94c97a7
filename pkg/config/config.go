package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultController is the public controller API endpoint.
	DefaultController = "https://api.elcapitan.cloudgenix.com"
	// DefaultCSVFile is written when --csvfile is not given.
	DefaultCSVFile = "site-policy-mapping.csv"
)

// Config holds all runtime configuration
type Config struct {
	// Credentials
	Token         string
	AuthTokenFile string
	Email         string

	// Controller settings
	Controller     string
	RequestTimeout time.Duration

	// Interactive login
	MaxLoginAttempts int
	LoginInterval    time.Duration
	LoginBurst       int

	// Output settings
	CSVFile         string
	PrintTable      bool
	AllowUnresolved bool

	// Operational flags
	ConfigFile string
	Verbose    bool
	DryRun     bool
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Controller:       DefaultController,
		RequestTimeout:   60 * time.Second,
		MaxLoginAttempts: 0, // unlimited
		LoginInterval:    time.Second,
		LoginBurst:       3,
		CSVFile:          DefaultCSVFile,
		PrintTable:       false,
		AllowUnresolved:  false,
		Verbose:          false,
		DryRun:           false,
	}
}

// ApplyFile copies values set in fc onto c. Flags applied later win.
func (c *Config) ApplyFile(fc *FileConfig) error {
	if c == nil || fc == nil {
		return nil
	}
	if fc.Controller != "" {
		c.Controller = fc.Controller
	}
	if fc.CSVFile != "" {
		c.CSVFile = fc.CSVFile
	}
	if fc.AuthTokenFile != "" {
		c.AuthTokenFile = fc.AuthTokenFile
	}
	if fc.Email != "" {
		c.Email = fc.Email
	}
	if fc.Timeout != "" {
		d, err := ParseDuration(fc.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q in config file: %w", fc.Timeout, err)
		}
		c.RequestTimeout = d
	}
	if fc.LoginInterval != "" {
		d, err := ParseDuration(fc.LoginInterval)
		if err != nil {
			return fmt.Errorf("invalid login_interval %q in config file: %w", fc.LoginInterval, err)
		}
		c.LoginInterval = d
	}
	if fc.MaxLoginAttempts != nil {
		c.MaxLoginAttempts = *fc.MaxLoginAttempts
	}
	if fc.AllowUnresolved != nil {
		c.AllowUnresolved = *fc.AllowUnresolved
	}
	return nil
}

// ApplyEnv copies the controller override from the environment.
func (c *Config) ApplyEnv(env *Env) {
	if c == nil || env == nil {
		return
	}
	if controller := strings.TrimSpace(env.Controller); controller != "" {
		c.Controller = controller
	}
}

// Validate checks values that cannot be fixed up silently.
func (c *Config) Validate() error {
	controller := strings.TrimSpace(c.Controller)
	if controller == "" {
		return fmt.Errorf("controller URL is required")
	}
	if !strings.HasPrefix(controller, "http://") && !strings.HasPrefix(controller, "https://") {
		return fmt.Errorf("controller URL must start with http:// or https://")
	}
	if strings.TrimSpace(c.CSVFile) == "" {
		return fmt.Errorf("csv file path must not be empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	if c.MaxLoginAttempts < 0 {
		return fmt.Errorf("max login attempts must be >= 0")
	}
	if c.LoginBurst <= 0 {
		c.LoginBurst = 1
	}
	c.Controller = strings.TrimRight(controller, "/")
	return nil
}
