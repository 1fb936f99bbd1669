/*
Package commands implements the CLI surface of dutree. The root command
runs the analysis itself; the only subcommand prints version
information.
*/
package commands

import (
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nachoparker/dutree/cmd/dutree/app"
	"github.com/nachoparker/dutree/internal/config"
)

// treeOptions holds the root command's flag values before they are
// folded into the configuration.
type treeOptions struct {
	depth     int
	aggr      string
	summary   bool
	usage     bool
	bytesOnly bool
	filesOnly bool
	noHidden  bool
	ascii     bool
	exclude   []string
	output    string
	workers   int
	rateLimit int
	noColor   bool
	withStats bool
	verbosity int
}

// Execute runs the CLI and returns the process exit status.
func Execute() int {
	status := app.StatusOK

	cmd := NewRootCommand(&status)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if status < app.StatusPartial {
			status = app.StatusFatal
		}
	}

	return status
}

// NewRootCommand creates the root command for the application
func NewRootCommand(status *int) *cobra.Command {
	opts := &treeOptions{}

	cmd := &cobra.Command{
		Use:   "dutree [flags] [path ...]",
		Short: "Coloured disk usage tree",
		Long: heredoc.Doc(`
			dutree prints an annotated tree of the disk usage under one or
			more paths: every entry gets a size column, a nested usage bar
			and LS_COLORS aware coloring.

			Small entries can be folded into a single <aggregated> line,
			the displayed depth can be capped for a quick overview, and
			the same tree can be emitted as JSON or YAML. With no path
			arguments the current directory is analyzed.
		`),
		Example: heredoc.Doc(`
			# current directory, one screen summary
			dutree -s

			# real disk usage of two trees, folding entries under 4 MiB
			dutree -u -a=4M /var /usr

			# machine readable dump without the build caches
			dutree -o json -x target -x node_modules .
		`),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if err := opts.apply(cmd.Flags(), &cfg, args); err != nil {
				return err
			}

			return runTree(&cfg, status)
		},
	}

	registerFlags(cmd.Flags(), opts)

	cmd.AddCommand(newVersionCommand())

	return cmd
}

func registerFlags(flags *pflag.FlagSet, opts *treeOptions) {
	flags.IntVarP(&opts.depth, "depth", "d", 0,
		"show entries up to N levels deep, 0 shows everything")
	flags.StringVarP(&opts.aggr, "aggr", "a", "0",
		"fold entries smaller than N[KMGT] into one line")
	flags.BoolVarP(&opts.summary, "summary", "s", false,
		"one screen overview, equivalent to -d 1 -a 1M")
	flags.BoolVarP(&opts.usage, "usage", "u", false,
		"report real disk usage instead of file size")
	flags.BoolVarP(&opts.bytesOnly, "bytes", "b", false,
		"print sizes in exact bytes")
	flags.BoolVarP(&opts.filesOnly, "files-only", "f", false,
		"skip directories for a fast local overview")
	flags.StringArrayVarP(&opts.exclude, "exclude", "x", nil,
		"exclude matching files and directories (can be repeated)")
	flags.BoolVarP(&opts.noHidden, "no-hidden", "H", false,
		"exclude hidden files and directories")
	flags.BoolVarP(&opts.ascii, "ascii", "A", false,
		"ASCII characters only, no colors")
	flags.StringVarP(&opts.output, "output", "o", config.OutputTree,
		"output format: tree|json|yaml")
	flags.IntVarP(&opts.workers, "workers", "w", 0,
		"number of concurrent workers (default: number of CPUs)")
	flags.IntVar(&opts.rateLimit, "rate-limit", 0,
		"cap filesystem operations per second, 0 is unlimited")
	flags.BoolVar(&opts.noColor, "no-color", false,
		"disable colored output")
	flags.BoolVar(&opts.withStats, "stats", false,
		"append a statistics footer to the tree")
	flags.CountVarP(&opts.verbosity, "verbose", "v",
		"verbose output (can be used multiple times)")

	// A bare -d or -a takes the classic defaults.
	flags.Lookup("depth").NoOptDefVal = "1"
	flags.Lookup("aggr").NoOptDefVal = "1M"
}

// apply folds flag values into the environment-derived configuration.
// Only flags the user actually set override it, so DUTREE_* variables
// keep working as defaults.
func (o *treeOptions) apply(flags *pflag.FlagSet, cfg *config.Config, args []string) error {
	cfg.Paths = args

	if o.summary {
		cfg.Depth = config.SummaryDepth
		cfg.Aggr = config.SummaryThreshold
	}

	if flags.Changed("depth") {
		cfg.Depth = o.depth
	}
	if flags.Changed("aggr") {
		aggr, err := config.ParseThreshold(o.aggr)
		if err != nil {
			return err
		}
		cfg.Aggr = aggr
	}
	if flags.Changed("output") {
		cfg.Output = o.output
	}
	if flags.Changed("workers") {
		cfg.Workers = o.workers
	}
	if flags.Changed("rate-limit") {
		cfg.RateLimit = o.rateLimit
	}
	if len(o.exclude) > 0 {
		cfg.Exclude = append(cfg.Exclude, o.exclude...)
	}

	cfg.UsageMode = cfg.UsageMode || o.usage
	cfg.BytesOnly = cfg.BytesOnly || o.bytesOnly
	cfg.FilesOnly = cfg.FilesOnly || o.filesOnly
	cfg.NoHidden = cfg.NoHidden || o.noHidden
	cfg.ASCII = cfg.ASCII || o.ascii
	cfg.NoColor = cfg.NoColor || o.noColor
	cfg.WithStats = cfg.WithStats || o.withStats
	if o.verbosity > 0 {
		cfg.Verbose = o.verbosity
	}

	return cfg.Validate()
}

func runTree(cfg *config.Config, status *int) error {
	application, err := app.New(cfg)
	if err != nil {
		*status = app.StatusFatal
		return err
	}
	defer application.Shutdown()

	st, err := application.Run()
	*status = st
	return err
}
