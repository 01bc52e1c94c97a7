package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ppiankov/sitepolicy/internal/app"
	"github.com/ppiankov/sitepolicy/pkg/config"
	"github.com/spf13/pflag"
)

// options collects flag values separately from the effective config so
// that only flags set on the command line override file and env values.
type options struct {
	flags      *config.Config
	timeoutStr string

	cfg *config.Config
	env *config.Env
}

func newOptions() *options {
	return &options{flags: config.DefaultConfig()}
}

func (o *options) bind(fs *pflag.FlagSet) {
	f := o.flags

	// Credentials
	fs.StringVarP(&f.Token, "token", "t", "", "Auth token to use instead of interactive login")
	fs.StringVarP(&f.AuthTokenFile, "authtokenfile", "f", "", "File containing the auth token")
	fs.StringVar(&f.Email, "email", "", "Email to pre-fill for the first interactive login")

	// Controller flags
	fs.StringVar(&f.Controller, "controller", config.DefaultController, "Controller API base URL")
	fs.StringVar(&o.timeoutStr, "timeout", "60s", "Per-request timeout (e.g., 30s, 2m)")
	fs.IntVar(&f.MaxLoginAttempts, "max-login-attempts", 0, "Interactive login attempts before giving up (0 = unlimited)")

	// Output flags
	fs.StringVarP(&f.CSVFile, "csvfile", "c", config.DefaultCSVFile, "CSV output file")
	fs.BoolVar(&f.AllowUnresolved, "allow-unresolved", false, "Write raw ids instead of failing on unknown ids")
	fs.BoolVar(&f.PrintTable, "print", false, "Also print the rows as a table")

	// Operational flags
	fs.StringVar(&f.ConfigFile, "config", "", "Config file (default: auto-discovered .sitepolicy.yaml)")
	fs.BoolVar(&f.Verbose, "verbose", false, "Verbose logging")
	fs.BoolVar(&f.DryRun, "dry-run", false, "Dry run mode (don't write the CSV file)")
}

// complete builds the effective config: defaults, then the config file,
// then the environment, then explicitly set flags.
func (o *options) complete(fs *pflag.FlagSet) error {
	cfg := config.DefaultConfig()

	fileCfg, path, err := o.loadFile()
	if err != nil {
		return err
	}
	if fileCfg != nil {
		slog.Debug("loaded config file", slog.String("path", path))
		if err := cfg.ApplyFile(fileCfg); err != nil {
			return err
		}
	}

	env, err := config.LoadEnv()
	if err != nil {
		return err
	}
	cfg.ApplyEnv(env)

	if err := o.applyFlags(fs, cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	o.cfg = cfg
	o.env = env
	return nil
}

func (o *options) loadFile() (*config.FileConfig, string, error) {
	if o.flags.ConfigFile != "" {
		fc, err := config.LoadFile(o.flags.ConfigFile)
		return fc, o.flags.ConfigFile, err
	}
	return config.AutoLoadFile(app.ConfigDirOrEmpty())
}

func (o *options) applyFlags(fs *pflag.FlagSet, cfg *config.Config) error {
	f := o.flags

	if fs.Changed("token") {
		cfg.Token = f.Token
	}
	if fs.Changed("authtokenfile") {
		cfg.AuthTokenFile = f.AuthTokenFile
	}
	if fs.Changed("email") {
		cfg.Email = f.Email
	}
	if fs.Changed("controller") {
		cfg.Controller = f.Controller
	}
	if fs.Changed("timeout") {
		d, err := config.ParseDuration(o.timeoutStr)
		if err != nil {
			return fmt.Errorf("invalid --timeout duration: %w", err)
		}
		cfg.RequestTimeout = d
	}
	if fs.Changed("max-login-attempts") {
		cfg.MaxLoginAttempts = f.MaxLoginAttempts
	}
	if fs.Changed("csvfile") {
		cfg.CSVFile = f.CSVFile
	}
	if fs.Changed("allow-unresolved") {
		cfg.AllowUnresolved = f.AllowUnresolved
	}

	cfg.PrintTable = f.PrintTable
	cfg.ConfigFile = f.ConfigFile
	cfg.Verbose = f.Verbose
	cfg.DryRun = f.DryRun
	return nil
}

// requestDeadline bounds cleanup calls made after the main context ends.
func requestDeadline(cfg *config.Config) time.Duration {
	if cfg.RequestTimeout > 0 {
		return cfg.RequestTimeout
	}
	return 60 * time.Second
}
