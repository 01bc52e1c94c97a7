package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ppiankov/sitepolicy/internal/auth"
	"github.com/ppiankov/sitepolicy/internal/controller"
	"github.com/ppiankov/sitepolicy/internal/idname"
	"github.com/ppiankov/sitepolicy/internal/models"
	"github.com/ppiankov/sitepolicy/internal/policy"
	"github.com/ppiankov/sitepolicy/internal/reporter"
	"github.com/ppiankov/sitepolicy/pkg/config"
)

// runReport executes the export workflow. Everything is fetched and
// resolved before the CSV file is opened.
func runReport(ctx context.Context, cfg *config.Config, env *config.Env, out io.Writer, prompter auth.Prompter) error {
	startTime := time.Now()

	slog.Debug("starting export",
		slog.String("controller", cfg.Controller),
		slog.String("csv_file", cfg.CSVFile),
		slog.Duration("timeout", cfg.RequestTimeout),
		slog.Bool("dry_run", cfg.DryRun),
	)

	// 1. Authenticate
	fmt.Fprintln(out, "AUTHENTICATING...")
	cred, err := auth.ResolveToken(cfg, env)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "    %s\n", cred.Describe())

	client := controller.NewClient(cfg)
	loop := auth.NewLoginLoop(client, prompter,
		auth.WithMaxAttempts(cfg.MaxLoginAttempts),
		auth.WithLimiter(auth.NewRateLimiter(cfg.LoginInterval, cfg.LoginBurst)),
		auth.WithEmail(cfg.Email),
	)
	if err := auth.Authenticate(ctx, client, cred, loop); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}
	fmt.Fprintln(out, "    SUCCESS: Authentication Complete")

	defer logout(ctx, cfg, client, out)

	// 2. Build the id to name index
	index, err := idname.Build(ctx, client, idname.DefaultCollections)
	if err != nil {
		return fmt.Errorf("API call failure when building name index: %w", err)
	}

	// 3. Tenant banner
	tenant, err := client.Tenant(ctx)
	if err != nil {
		return fmt.Errorf("API call failure when enumerating tenant name: %w", err)
	}
	fmt.Fprintf(out, "======== TENANT NAME %s ========\n", tenant.Name)

	// 4. Sites
	sites, err := client.Sites(ctx)
	if err != nil {
		return fmt.Errorf("API call failure when enumerating sites in tenant: %w", err)
	}

	var resolverOpts []policy.Option
	if cfg.AllowUnresolved {
		resolverOpts = append(resolverOpts, policy.WithPlaceholders())
	}
	rows, err := policy.New(index, resolverOpts...).ResolveAll(sites)
	if err != nil {
		return err
	}

	report := &models.Report{
		TenantName:  tenant.Name,
		GeneratedAt: time.Now().UTC(),
		OutputPath:  cfg.CSVFile,
		SitesTotal:  len(sites),
		Rows:        rows,
	}

	slog.Debug("resolved sites",
		slog.Int("sites_total", report.SitesTotal),
		slog.Int("spokes", models.SpokeCount(sites)),
		slog.Int("rows", len(report.Rows)),
		slog.Int("index_size", index.Len()),
	)

	// 5. Write
	if cfg.DryRun {
		fmt.Fprintf(out, "Dry run: %d rows not written to %s\n", len(report.Rows), report.OutputPath)
	} else {
		n, err := reporter.New(cfg, out).Generate(report)
		if err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Fprintf(out, "Wrote to CSV File: %s - %d rows\n", report.OutputPath, n)
	}

	slog.Debug("export finished",
		slog.String("tenant", report.TenantName),
		slog.Time("generated_at", report.GeneratedAt),
		slog.Duration("duration", time.Since(startTime)),
	)
	return nil
}

// logout ends the session even when ctx is already cancelled.
func logout(ctx context.Context, cfg *config.Config, client *controller.Client, out io.Writer) {
	fmt.Fprintln(out, "Logging out")

	logoutCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), requestDeadline(cfg))
	defer cancel()

	if err := client.Logout(logoutCtx); err != nil {
		slog.Warn("logout failed", slog.String("error", err.Error()))
	}
}
