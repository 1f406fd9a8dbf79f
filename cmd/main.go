// Package main provides the cutoffs CLI entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/cutoffs/internal/adapters/cli"
	"github.com/okian/cutoffs/internal/adapters/http/api"
	app "github.com/okian/cutoffs/internal/app"
	"github.com/okian/cutoffs/internal/config"
	"github.com/okian/cutoffs/internal/domain/reference"
	"github.com/okian/cutoffs/internal/domain/training"
	"github.com/okian/cutoffs/pkg/logger"
	"github.com/okian/cutoffs/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// streams carries the readers and writers a command reads from and writes to.
type streams struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	e := &streams{in: in, out: out, errOut: errOut}

	rootCmd := &cobra.Command{
		Use:   "cutoffs",
		Short: "Forecast next-cycle GPA cutoffs per engineering specialisation",
		Long: `cutoffs trains a small regression tree on historical GPA cutoffs and
forecasts a display band for each specialisation in the next intake.

Inputs:
  • total cohort size (minimum 800)
  • a perceived popularity score (1-10) per specialisation`,
		SilenceUsage: true,
	}
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.PersistentFlags().String("config", "", "YAML config file (overrides CUTOFFS_CONFIG)")
	rootCmd.PersistentFlags().String("reference", "", "CSV file with historical tables (overrides reference_csv)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cutoffs v%s (%s)\n", version, commit)
		},
	})

	predictCmd := &cobra.Command{
		Use:   "predict",
		Short: "Prompt for inputs and print the forecast table",
		Args:  cobra.NoArgs,
		RunE:  e.runPredict,
	}
	predictCmd.Flags().Int("cohort-size", 0, "Total cohort size; prompts when unset")
	predictCmd.Flags().String("popularity", "", "Comma separated popularity scores in track order; prompts when unset")
	predictCmd.Flags().Int("year", 0, "Forecast year (default: year after the last historical year)")
	predictCmd.Flags().String("output", "", "Output format: table, json or yaml (default from config)")
	rootCmd.AddCommand(predictCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "export",
		Short: "Write the active reference tables as CSV",
		Args:  cobra.NoArgs,
		RunE:  e.runExport,
	})

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve forecasts over HTTP",
		Args:  cobra.NoArgs,
		RunE:  e.runServe,
	}
	serveCmd.Flags().String("addr", "", "Listen address (default from config)")
	rootCmd.AddCommand(serveCmd)

	return rootCmd
}

// setup loads configuration, initializes logging and resolves the reference
// tables selected by flags and config.
func (e *streams) setup(cmd *cobra.Command) (*config.Config, *reference.Tables, error) {
	ctx := cmd.Context()
	configPath, _ := cmd.Flags().GetString("config")

	// Load configuration (defaults -> .env -> optional file -> env)
	cfg, err := config.Load(ctx, config.WithFile(configPath))
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(logger.WithWriter(e.errOut), logger.WithFormat(cfg.LogFormat)); err != nil {
		return nil, nil, fmt.Errorf("initialize logging: %w", err)
	}
	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	refPath, _ := cmd.Flags().GetString("reference")
	if refPath == "" {
		refPath = cfg.ReferenceCSV
	}
	tables, err := loadTables(refPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, tables, nil
}

func loadTables(path string) (*reference.Tables, error) {
	if path == "" {
		return reference.Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reference tables: %w", err)
	}
	defer func() { _ = f.Close() }()

	t, err := reference.LoadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("load reference tables %s: %w", path, err)
	}
	return t, nil
}

func newService(cfg *config.Config, tables *reference.Tables, year int) *app.Service {
	if year == 0 {
		year = cfg.TargetYear
	}
	return app.New(
		app.WithLogger(logger.Get()),
		app.WithTables(tables),
		app.WithMaxDepth(cfg.MaxDepth),
		app.WithSeed(cfg.RandomSeed),
		app.WithSuppressionThreshold(cfg.SuppressionThreshold),
		app.WithBandHalfWidth(cfg.BandHalfWidth),
		app.WithMinCohortSize(cfg.MinCohortSize),
		app.WithTargetYear(year),
	)
}

func startService(ctx context.Context, svc *app.Service) error {
	if err := svc.Start(ctx); err != nil {
		if errors.Is(err, training.ErrEmptyTrainingSet) {
			return fmt.Errorf("reference tables contain no known cutoff: %w", err)
		}
		return fmt.Errorf("start service: %w", err)
	}
	return nil
}

func (e *streams) runPredict(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, tables, err := e.setup(cmd)
	if err != nil {
		return err
	}

	year, _ := cmd.Flags().GetInt("year")
	svc := newService(cfg, tables, year)
	if err := startService(ctx, svc); err != nil {
		return err
	}

	cohort, _ := cmd.Flags().GetInt("cohort-size")
	popFlag, _ := cmd.Flags().GetString("popularity")

	prompter := cli.NewPrompter(e.in, e.out, cli.WithMinCohortSize(cfg.MinCohortSize))
	tracks := svc.Tracks()

	var popularity []float64
	if !cmd.Flags().Changed("cohort-size") && popFlag == "" {
		answers, err := prompter.Collect(ctx, tracks, svc.TargetYear())
		if err != nil {
			return err
		}
		cohort, popularity = answers.CohortSize, answers.Popularity
	} else {
		if !cmd.Flags().Changed("cohort-size") {
			if cohort, err = prompter.CohortSize(ctx); err != nil {
				return err
			}
		}
		if popFlag != "" {
			popularity, err = cli.ParsePopularity(popFlag, len(tracks))
		} else {
			popularity, err = prompter.Popularity(ctx, tracks, svc.TargetYear())
		}
		if err != nil {
			return err
		}
	}

	forecast, err := svc.Forecast(ctx, cohort, popularity)
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = cfg.Output
	}
	return cli.Render(e.out, forecast, output)
}

func (e *streams) runExport(cmd *cobra.Command, _ []string) error {
	_, tables, err := e.setup(cmd)
	if err != nil {
		return err
	}
	return reference.WriteCSV(e.out, tables)
}

func (e *streams) runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, tables, err := e.setup(cmd)
	if err != nil {
		return err
	}
	loggerInstance := logger.Get()

	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Addr = addr
	}

	svc := newService(cfg, tables, 0)
	if err := startService(ctx, svc); err != nil {
		return err
	}
	metrics.RegisterRuntimeCollectors()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.NewServer(svc, api.WithDocsScript(cfg.DocsScript)).Routes(),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("%w: %w", api.ErrServe, err)
		}
		close(errCh)
	}()

	// Wait for shutdown signal or a listener failure
	select {
	case err, ok := <-errCh:
		if ok {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			return err
		}
		return nil
	case <-ctx.Done():
	}
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
		return err
	}

	loggerInstance.Info(ctx, "server stopped")
	return nil
}
