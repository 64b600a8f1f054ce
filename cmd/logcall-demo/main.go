// Package main is the entrypoint for logcall-demo, which instruments two
// functions, one synchronous and one suspending, and calls them.
package main

import (
	"context"
	"fmt"
	"io"
	golog "log"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"

	"github.com/luxas/deklarative/instrument"
	"github.com/luxas/deklarative/instrument/async"
	"github.com/luxas/deklarative/instrument/driver"
	"github.com/luxas/deklarative/instrument/internal/config"
	"github.com/luxas/deklarative/instrument/logcall"
	"github.com/luxas/deklarative/instrument/logcall/zaplog"
	"github.com/luxas/deklarative/instrument/tracing"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type flags struct {
	configFile string
	format     string
	exporter   string
	verbosity  int8
}

func newRootCommand() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "logcall-demo",
		Short: "Call an instrumented synchronous and asynchronous function",
		Long: `logcall-demo calls f(1) directly, and drives g() to completion. g suspends
once, and calls f(0) when resumed.

Every call is logged when it is entered and when it returns, and traced with
one span. Log records and spans of a call share a call ID.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&f.configFile, "config", "c", "", "Path to configuration file")
	cmd.Flags().StringVar(&f.format, "format", "", "Log format (json, console, std, records)")
	cmd.Flags().StringVar(&f.exporter, "exporter", "", "Trace exporter (none, stdout, yaml, otlp-grpc, otlp-http)")
	cmd.Flags().Int8VarP(&f.verbosity, "verbosity", "v", 0, "Highest log verbosity level that is output")

	cmd.AddCommand(newValidateCommand())

	return cmd
}

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [config-file]",
		Short: "Validate configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(args[0])
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("validating config: %w", err)
			}

			fmt.Println("Configuration is valid")
			fmt.Printf("  Log format: %s\n", cfg.Logging.Format)
			fmt.Printf("  Trace exporter: %s\n", cfg.Tracing.Exporter)
			return nil
		},
	}
}

func loadConfig(cmd *cobra.Command, f flags) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if f.configFile != "" {
		var err error
		if cfg, err = config.LoadConfig(f.configFile); err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	// Flags override the configuration file.
	if f.format != "" {
		cfg.Logging.Format = f.format
	}
	if f.exporter != "" {
		cfg.Tracing.Exporter = f.exporter
	}
	if cmd.Flags().Changed("verbosity") {
		cfg.Logging.Verbosity = f.verbosity
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg config.LoggingConfig, out io.Writer) logr.Logger {
	switch cfg.Format {
	case config.FormatConsole:
		return zaplog.NewZap().Development().LogTo(out).LogUpto(cfg.Verbosity).Build()
	case config.FormatStd:
		stdr.SetVerbosity(int(cfg.Verbosity))
		return stdr.New(golog.New(out, "", golog.LstdFlags))
	default:
		return zaplog.NewZap().LogTo(out).LogUpto(cfg.Verbosity).Build()
	}
}

func newTracerProvider(ctx context.Context, cfg config.Config, out io.Writer) (tracing.TracerProvider, error) {
	b := tracing.Provider().WithServiceName(cfg.Tracing.ServiceName)
	if cfg.Tracing.Synchronous {
		b = b.Synchronous()
	}
	if cfg.Logging.LogSpans {
		b = b.LogSpans(logcall.LoggerFromContext)
	}

	switch cfg.Tracing.Exporter {
	case config.ExporterStdout:
		b = b.WithStdoutExporter(stdouttrace.WithWriter(out))
	case config.ExporterYAML:
		b = b.TestYAMLTo(out)
	case config.ExporterOTLPGRPC:
		b = b.WithInsecureOTLPGRPCExporter(ctx, cfg.Tracing.Endpoint)
	case config.ExporterOTLPHTTP:
		b = b.WithInsecureOTLPHTTPExporter(ctx, cfg.Tracing.Endpoint)
	}
	return b.Build()
}

func run(ctx context.Context, cfg *config.Config, out io.Writer) (retErr error) {
	if ctx == nil {
		ctx = context.Background()
	}

	log := newLogger(cfg.Logging, out)
	logcall.SetGlobalLogger(log)

	tp, err := newTracerProvider(ctx, *cfg, out)
	if err != nil {
		return fmt.Errorf("building tracer provider: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Tracing.ShutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil && retErr == nil {
			retErr = fmt.Errorf("shutting down tracer provider: %w", err)
		}
	}()

	var sink logcall.Sink
	if cfg.Logging.Format == config.FormatRecords {
		sink = logcall.NewJSONSink(out)
	}

	ctx = instrument.Context().From(ctx).WithLogger(log).WithTracerProvider(tp).Build()

	f := func(ctx context.Context, a int) (int, error) {
		return instrument.Func[int]("f").WithSink(sink).WithArgs("a", a).
			Call(ctx, func(context.Context) (int, error) {
				return a + 1, nil
			})
	}

	v, err := f(ctx, 1)
	if err != nil {
		return err
	}
	log.Info("f returned", "value", v)

	// g suspends until the timer fires, then calls f.
	ready := async.NewSignal()
	time.AfterFunc(cfg.Delay, ready.Fire)
	g := instrument.Func[int]("g").WithSink(sink).Wrap(
		async.Await(ready.Done(), func(ctx context.Context) (int, error) {
			return f(ctx, 0)
		}),
	)

	d := driver.New(driver.WithLogger(log.WithName("driver")))
	v, err = driver.BlockOn(ctx, d, g)
	if err != nil {
		return err
	}
	log.Info("g returned", "value", v)
	return nil
}
