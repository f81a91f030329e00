package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/zoobzio/snippet"
	"github.com/zoobzio/snippet/config"
	"github.com/zoobzio/snippet/recorder"
)

type options struct {
	cfgFile      string
	logFormat    string
	recordFile   string
	recordFormat string
	delay        time.Duration
	inert        bool
	useLogr      bool
}

// NewRootCommand builds the snippet-demo command.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "snippet-demo",
		Short: "Run every snippet capture style against a simulated workload",
		Long: `snippet-demo measures a few simulated operations with closure captures,
tagged tokens shared between goroutines, splits and thread locked tokens, and
logs each measurement through logrus.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.OutOrStdout(), opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.cfgFile, "config", "", "config file (YAML); SNIPPET_* environment variables override it")
	flags.StringVar(&opts.logFormat, "log-format", TextFormat, "log format: text or json")
	flags.BoolVar(&opts.inert, "inert", false, "use the inert execution path")
	flags.BoolVar(&opts.useLogr, "logr", false, "log through logr instead of logrus directly")
	flags.StringVar(&opts.recordFile, "record", "", "also persist every record to this file")
	flags.StringVar(&opts.recordFormat, "record-format", "json", "record file format: json or yaml")
	flags.DurationVar(&opts.delay, "delay", 20*time.Millisecond, "simulated work per step")
	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

func run(out io.Writer, opts *options) error {
	cfg, err := config.Load(opts.cfgFile)
	if err != nil {
		return err
	}
	if opts.inert {
		cfg.Path = config.PathInert
	}

	logger := newLogger(out, opts.logFormat, cfg.Debug)
	var sink snippet.Sink = snippet.NewLogrusSink(logger)
	if opts.useLogr {
		sink = snippet.NewLogrSink(newLogrLogger(logger))
	}

	path, err := cfg.NewPath(snippet.DefaultSettings(), sink)
	if err != nil {
		return err
	}

	if opts.recordFile != "" {
		format, err := recorder.ParseFormat(opts.recordFormat)
		if err != nil {
			return err
		}
		f, err := os.Create(opts.recordFile)
		if err != nil {
			return fmt.Errorf("create record file: %w", err)
		}
		defer f.Close()

		rec := recorder.New(path, f, format)
		defer func() {
			if err := rec.Close(); err != nil {
				logger.WithError(err).Error("recording failed")
			}
		}()
		path = rec
	}

	if !snippet.Install(path) {
		logger.Warn("an execution path is already installed, using it")
	}

	if mp, ok := path.(*snippet.MeasuredPath); ok {
		mp.OnRecord(func(r snippet.Record) {
			logger.WithField("duration", r.Duration).Debugf("completed %s.%s", r.Symbol, r.Function)
		})
		defer mp.Close()
	}

	return runDemo(logger, opts.delay)
}
