package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/ppiankov/sitepolicy/internal/auth"
	"github.com/ppiankov/sitepolicy/internal/controller"
	"github.com/ppiankov/sitepolicy/internal/logging"
	"github.com/ppiankov/sitepolicy/internal/policy"
	"github.com/spf13/cobra"
)

var version = "1.0.0"

// Exit codes for structured error reporting.
const (
	ExitSuccess     = 0
	ExitInternal    = 1
	ExitInvalidArg  = 2
	ExitNotFound    = 3
	ExitAuth        = 4
	ExitNetwork     = 5
	ExitAPI         = 6
	ExitUnresolved  = 7
	ExitInterrupted = 130
)

// UsageError wraps a bad flag, config file or environment value.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string {
	return e.Err.Error()
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

func main() {
	logging.Init(false)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd(os.Stdout, auth.NewSurveyPrompter())
	if err := root.ExecuteContext(ctx); err != nil {
		exitCode := classifyError(err)
		fmt.Fprintf(os.Stdout, "ERROR: %v\n", err)
		slog.Debug("command failed", slog.String("error", err.Error()), slog.Int("exit_code", exitCode))
		stop()
		os.Exit(exitCode)
	}
}

// NewRootCmd creates the sitepolicy command. Operator output goes to
// out; interactive logins use prompter.
func NewRootCmd(out io.Writer, prompter auth.Prompter) *cobra.Command {
	opts := newOptions()

	root := &cobra.Command{
		Use:   "sitepolicy",
		Short: "Export the site to policy mapping of a tenant as CSV",
		Long: `sitepolicy logs in to the SD-WAN controller, lists every SPOKE site
of the tenant and writes the Path, QoS and NAT policy bound to each site
to a CSV file.

Authentication uses the first of --token, --authtokenfile, X_AUTH_TOKEN
or AUTH_TOKEN that is set, and falls back to an interactive login.`,
		Version: version,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.NoArgs(cmd, args); err != nil {
				return &UsageError{Err: err}
			}
			return nil
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Init(opts.flags.Verbose)
		},
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.complete(cmd.Flags()); err != nil {
				return &UsageError{Err: err}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.Context(), opts.cfg, opts.env, out, prompter)
		},
	}

	root.SetOut(out)
	root.SetVersionTemplate(fmt.Sprintf("{{.Version}}\ngo: %s\nplatform: %s/%s\n",
		runtime.Version(), runtime.GOOS, runtime.GOARCH))
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &UsageError{Err: err}
	})
	root.SilenceUsage = true
	root.SilenceErrors = true

	opts.bind(root.Flags())

	return root
}

func classifyError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, auth.ErrLoginCancelled) {
		return ExitInterrupted
	}

	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		if errors.Is(err, os.ErrNotExist) {
			return ExitNotFound
		}
		return ExitInvalidArg
	}

	var unresolved *policy.UnresolvedIDError
	if errors.As(err, &unresolved) {
		return ExitUnresolved
	}

	if controller.IsTransport(err) {
		return ExitNetwork
	}

	if errors.Is(err, auth.ErrTokenRejected) || errors.Is(err, auth.ErrLoginAttemptsExhausted) {
		return ExitAuth
	}

	if errors.Is(err, os.ErrNotExist) {
		return ExitNotFound
	}

	var apiErr *controller.APIError
	if errors.As(err, &apiErr) ||
		errors.Is(err, controller.ErrInvalidResponse) ||
		errors.Is(err, controller.ErrNoTenant) {
		return ExitAPI
	}

	return ExitInternal
}
