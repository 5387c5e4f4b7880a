package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/preston-bernstein/f1-data-service/internal/config"
	"github.com/preston-bernstein/f1-data-service/internal/dispatch"
	"github.com/preston-bernstein/f1-data-service/internal/http/requestutil"
	"github.com/preston-bernstein/f1-data-service/internal/logging"
	"github.com/preston-bernstein/f1-data-service/internal/metrics"
	"github.com/preston-bernstein/f1-data-service/internal/server"
)

const (
	appName    = "f1-data-service"
	appVersion = "dev"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	code := 0
	root := newRootCommand(stdout, stderr, &code)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		res := dispatch.Failure(dispatch.KindUsage, err.Error())
		_, _ = stdout.Write(res.Body)
		return res.ExitCode
	}
	return code
}

func newRootCommand(stdout, stderr io.Writer, code *int) *cobra.Command {
	var (
		option int
		name   string
	)

	root := &cobra.Command{
		Use:           "f1data --option <0-4> [--name <file>]",
		Short:         "Read and edit the F1 teams store",
		Version:       appVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			*code = dispatchOnce(cmd.Context(), dispatch.Operation(option), name, stdout, stderr)
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.Flags().IntVar(&option, "option", 0, "0: GET, 1: POST, 2: PUT, 3: DELETE, 4: PATCH")
	root.Flags().StringVar(&name, "name", "", "name of the request JSON file inside the temp dir")
	_ = root.MarkFlagRequired("option")

	root.AddCommand(newServeCommand(stderr))
	return root
}

func newServeCommand(stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the teams store over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if os.Getenv("SKIP_SERVER_RUN") == "1" {
				return nil
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg, stderr)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(cfg, logger)
			srv.Run(ctx, stop)
			return nil
		},
	}
}

func dispatchOnce(ctx context.Context, op dispatch.Operation, name string, stdout, stderr io.Writer) int {
	if err := dispatch.Validate(op, name); err != nil {
		res := dispatch.Failure(dispatch.KindUsage, err.Error())
		_, _ = stdout.Write(res.Body)
		return res.ExitCode
	}

	cfg, err := config.Load()
	if err != nil {
		res := dispatch.Failure(dispatch.KindUsage, err.Error())
		_, _ = stdout.Write(res.Body)
		return res.ExitCode
	}
	logger := newLogger(cfg, stderr).With(slog.String(logging.FieldRequestID, requestutil.NewRequestID()))
	ctx = logging.WithLogger(ctx, logger)

	recorder, flush := cliMetrics(ctx, cfg, logger)
	defer flush()

	d := server.NewDispatcher(cfg, logger, recorder)
	res := d.Run(ctx, op, name)
	if _, err := stdout.Write(res.Body); err != nil {
		logging.Error(logger, "failed to write response", err)
	}
	logging.Info(logger, "invocation finished", slog.Int(logging.FieldExitCode, res.ExitCode))
	return res.ExitCode
}

// cliMetrics exports only when an OTLP endpoint is configured.
func cliMetrics(ctx context.Context, cfg config.Config, logger *slog.Logger) (*metrics.Recorder, func()) {
	if !cfg.Metrics.Enabled || cfg.Metrics.OtlpEndpoint == "" {
		return metrics.NewRecorder(), func() {}
	}
	rec, _, shutdown, err := metrics.Setup(ctx, metrics.TelemetryConfig{
		Enabled:      true,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	})
	if err != nil {
		logging.Warn(logger, "metrics setup failed, continuing without telemetry", "err", err)
		return metrics.NewRecorder(), func() {}
	}
	return rec, func() {
		if err := shutdown(context.Background()); err != nil {
			logging.Warn(logger, "metrics flush failed", "err", err)
		}
	}
}

func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	logger := logging.NewLogger(logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: appName,
		Version: appVersion,
		Writer:  w,
	})
	for _, warning := range cfg.Warnings {
		logging.Warn(logger, "config value ignored", "detail", warning)
	}
	return logger
}
