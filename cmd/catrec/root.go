package main

import (
	"context"
	"fmt"
	"io"

	"github.com/davidvella/concat"
	"github.com/davidvella/concat/internal/config"
	"github.com/davidvella/concat/internal/source"
	"github.com/davidvella/concat/record"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app carries what every subcommand shares once the root command has
// loaded the configuration.
type app struct {
	in  io.Reader
	out io.Writer
	cfg config.Config
	log *zap.Logger

	configPath string
	logLevel   string
	logFormat  string
	format     string
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	a := &app{in: in, out: out, log: zap.NewNop()}

	cmd := &cobra.Command{
		Use:   "catrec",
		Short: "Read record stores as one sequence",
		Long: `
catrec opens sstables, write-ahead logs and pebble stores and treats them
as a single concatenated sequence of records.

Sources are named kind:path, where kind is sst, wal, pebble or dir (a
directory of sstables).
`,
		Example: `  $ catrec cat sst:a.sst wal:b.wal
  $ catrec compact --mode merge -o out.sst sst:a.sst pebble:db
  $ seq 10 | catrec write -o lines.sst`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.log.Sync()
		},
	}
	cmd.SetIn(in)
	cmd.SetOut(out)

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to a YAML configuration file")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&a.logFormat, "log-format", "", "log encoding (production, development)")
	flags.StringVar(&a.format, "format", "", "output format (text, json)")

	cmd.AddCommand(
		newCatCmd(a),
		newInfoCmd(a),
		newCompactCmd(a),
		newWriteCmd(a),
	)
	return cmd
}

// setup loads the configuration, applies flag overrides and builds the
// logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = a.logFormat
	}
	if flags.Changed("format") {
		cfg.Output.Format = a.format
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}

	a.cfg, a.log = cfg, log
	return nil
}

func newLogger(cfg config.Log) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	zc := zap.NewProductionConfig()
	if cfg.Format == config.LogDevelopment {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// sourceArgs returns the sources named on the command line, falling back
// to the configured ones.
func (a *app) sourceArgs(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if len(a.cfg.Sources) > 0 {
		return a.cfg.Sources, nil
	}
	return nil, fmt.Errorf("no sources given")
}

// open opens the sources and returns them with their concatenation. The
// caller closes the sources.
func (a *app) open(ctx context.Context, args []string) ([]*source.Source, concat.Range[record.Record], error) {
	names, err := a.sourceArgs(args)
	if err != nil {
		return nil, nil, err
	}

	sources, err := source.OpenAll(ctx, names, source.WithLogger(a.log))
	if err != nil {
		return nil, nil, err
	}

	ranges := source.Ranges(sources)
	return sources, concat.New(ranges[0], ranges[1:]...), nil
}

func (a *app) close(sources []*source.Source) {
	for _, src := range sources {
		if err := src.Close(); err != nil {
			a.log.Warn("failed to close source", zap.String("source", src.Name), zap.Error(err))
		}
	}
}

// readErr reports the first read error of any source.
func readErr(sources []*source.Source) error {
	for _, src := range sources {
		if err := src.Err(); err != nil {
			return fmt.Errorf("%s: %w", src.Name, err)
		}
	}
	return nil
}
