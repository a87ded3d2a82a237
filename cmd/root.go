package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/agentic-research/jqenum/internal/generate"
	"github.com/agentic-research/jqenum/internal/loader"
	"github.com/agentic-research/jqenum/internal/query"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	engine    string
	verbose   bool
	logFormat string

	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{log: zap.NewNop()}
	cmd := &cobra.Command{
		Use:   "jqenum",
		Short: "Generate Go enums from JSON data and query programs",
		Long: `jqenum expands enum invocation files (*.jqenum or *.hcl) into Go source.

Each invocation names a JSON or YAML data file, a query that yields the
variant names, and optional typed getters whose per-variant values are
embedded in the generated code. A test file checks that every getter
decodes for every variant. Run it from go:generate:

	//go:generate go run github.com/agentic-research/jqenum generate colors.jqenum

The jq engine visits object keys in sorted order, so variants built with
to_entries or keys come out alphabetically, not in file order. List the
names in an array in the data file when declaration order matters. Every
jq query must produce exactly one value; wrap a stream in [ ].`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(cmd.ErrOrStderr(), opts.logFormat, opts.verbose)
			if err != nil {
				return err
			}
			opts.log = log
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.engine, "engine", query.DefaultEngine, "Query language: jq or jsonpath")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "console", "Log encoding: console or json")

	cmd.AddCommand(newGenerateCmd(opts), newCheckCmd(opts), newVersionCmd())
	return cmd
}

func newLogger(w io.Writer, format string, verbose bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	var enc zapcore.Encoder
	switch format {
	case "console":
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.TimeKey = ""
		enc = zapcore.NewConsoleEncoder(cfg)
	case "json":
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	default:
		return nil, fmt.Errorf("unknown log format %q (available: console, json)", format)
	}
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), level)), nil
}

// generator builds a Generator over the host filesystem. pkg overrides
// the package clause; $GOPACKAGE, set by go generate, is the fallback.
func (o *rootOptions) generator(pkg string) (*generate.Generator, error) {
	engine, err := query.Lookup(o.engine)
	if err != nil {
		return nil, err
	}
	return generate.New(generate.Options{
		Engine:          engine,
		Loader:          loader.NewOS(),
		Logger:          o.log.Named("generate"),
		Package:         pkg,
		FallbackPackage: os.Getenv("GOPACKAGE"),
	}), nil
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
