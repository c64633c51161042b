package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	apphttp "civicsim/internal/http"
	"civicsim/internal/service/report"
)

const shutdownTimeout = 15 * time.Second

var (
	statusJSON     bool
	serveStart     bool
	previewPersona string
)

var createAccountsCmd = &cobra.Command{
	Use:   "create-accounts [count]",
	Short: "Register synthetic accounts on the platform",
	Long: `Registers count accounts (default ACCOUNTS_TO_CREATE), logs each one in,
and records the usable ones in bot state. Failures are counted, not retried.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCreateAccounts,
}

var startPostingCmd = &cobra.Command{
	Use:   "start-posting",
	Short: "Run the posting and engagement loops until interrupted",
	Args:  cobra.NoArgs,
	RunE:  runStartPosting,
}

var stopPostingCmd = &cobra.Command{
	Use:   "stop-posting",
	Short: "Clear the persisted posting flag",
	Long: `Marks bot state as not posting. A running start-posting process is stopped
with Ctrl+C or through the operator API; this command only repairs the flag
left behind by a process that did not shut down cleanly.`,
	Args: cobra.NoArgs,
	RunE: runStopPosting,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show accounts, counters and activity rates",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the operator HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var previewCmd = &cobra.Command{
	Use:   "preview [n]",
	Short: "Print generated posts without touching the platform or state",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPreview,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print the report as JSON")
	serveCmd.Flags().BoolVar(&serveStart, "start", false, "Start the engine as soon as the API is up")
	previewCmd.Flags().StringVar(&previewPersona, "persona", "", "Persona type to generate for (default: random)")
}

func parseCount(args []string, fallback int) (int, error) {
	if len(args) == 0 {
		return fallback, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("count must be a non-negative integer, got %q", args[0])
	}
	return n, nil
}

func runCreateAccounts(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	count, err := parseCount(args, cfg.AccountsToCreate)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	res := a.provisioner.CreateAccounts(ctx, count)
	fmt.Fprintf(cmd.OutOrStdout(), "Created %d accounts (%d errors). Total accounts: %d\n",
		res.SuccessCount, res.ErrorCount, a.state.AccountCount())

	notifyCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.notifier.Notify(notifyCtx, fmt.Sprintf("civicsim provisioning: %d created, %d failed", res.SuccessCount, res.ErrorCount)); err != nil {
		logger.Warn("operator notify failed", zap.Error(err))
	}
	return nil
}

func runStartPosting(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.state.AccountCount() == 0 {
		logger.Warn("no accounts provisioned; ticks will be skipped until create-accounts runs")
	}
	a.engine.Start()
	fmt.Fprintln(cmd.OutOrStdout(), "Posting started. Press Ctrl+C to stop.")

	<-ctx.Done()
	a.engine.Stop()
	waitWithTimeout(a.engine.Wait, shutdownTimeout)

	printSummary(cmd, a.summary(), false)
	return nil
}

func runStopPosting(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.state.Posting() {
		fmt.Fprintln(cmd.OutOrStdout(), "Posting is not active.")
		return nil
	}
	if err := a.state.SetPosting(cmd.Context(), false, time.Now()); err != nil {
		return fmt.Errorf("clear posting flag: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Posting flag cleared.")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	printSummary(cmd, a.summary(), statusJSON)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := apphttp.NewServer(cfg, a.state, a.engine, a.provisioner, a.recorder, a.quota, a.notifier, logger.Named("http"))
	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      srv.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("operator API listening", zap.String("addr", cfg.ListenAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	if serveStart {
		a.engine.Start()
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			a.engine.Stop()
			a.engine.Wait()
			return fmt.Errorf("server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
	srv.Close()
	a.engine.Stop()
	waitWithTimeout(a.engine.Wait, shutdownTimeout)
	return nil
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	n, err := parseCount(args, 5)
	if err != nil {
		return err
	}
	catalog, err := newCatalog(cfg)
	if err != nil {
		return err
	}
	gen := newGenerator(cfg)

	out := cmd.OutOrStdout()
	var last string
	for i := 0; i < n; i++ {
		p := catalog.RandomPersona()
		if previewPersona != "" {
			var ok bool
			p, ok = catalog.FindByType(previewPersona)
			if !ok {
				return fmt.Errorf("unknown persona %q", previewPersona)
			}
		}
		item := gen.GenerateContent(p)
		fmt.Fprintf(out, "[%s/%s political=%t] %s\n", p.Type, item.Category, item.IsPolitical, item.Text)
		last = item.Text
	}
	if last != "" {
		fmt.Fprintf(out, "reply: %s\n", gen.GenerateResponse(last))
	}
	return nil
}

func (a *app) summary() report.Summary {
	maxPosts, maxEngagements := a.quota.Limits()
	return report.Summarize(a.state.Snapshot(), time.Now(), maxPosts, maxEngagements)
}

func printSummary(cmd *cobra.Command, s report.Summary, asJSON bool) {
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		_ = enc.Encode(s)
		return
	}
	fmt.Fprint(out, s.Text())
}

// waitWithTimeout gives in-flight ticks a bounded window to finish.
func waitWithTimeout(wait func(), timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		logger.Warn("timed out waiting for in-flight activity", zap.Duration("timeout", timeout))
	}
}
