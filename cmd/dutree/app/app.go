/*
Package app provides the application container for dutree. It wires the
filesystem walker, the worker pool and the renderer together, runs one
analysis over all requested paths and maps the outcome to an exit
status.
*/
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/nachoparker/dutree/internal/config"
	"github.com/nachoparker/dutree/pkg/colors"
	"github.com/nachoparker/dutree/pkg/logger"
	"github.com/nachoparker/dutree/pkg/render"
	"github.com/nachoparker/dutree/pkg/tree"
	"github.com/nachoparker/dutree/pkg/walker"
	"github.com/nachoparker/dutree/pkg/worker"
)

// Exit statuses reported by Run.
const (
	// StatusOK means every path was analyzed completely.
	StatusOK = 0

	// StatusPartial means the tree was printed but some entries or
	// whole roots could not be read.
	StatusPartial = 1

	// StatusFatal means nothing useful could be produced.
	StatusFatal = 2
)

// App represents the application container
type App struct {
	config *config.Config
	log    logger.Logger

	fs     walker.UsageFs
	pool   worker.Pool
	walker walker.Walker

	stdout io.Writer
	stderr io.Writer

	ctx    context.Context
	cancel context.CancelFunc
}

// rootResult holds the walk outcome for one requested path.
type rootResult struct {
	path   string
	result walker.Result
	err    error
}

// New creates an application instance from a validated configuration.
func New(cfg *config.Config) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	log := logger.New(logger.Config{
		Verbosity: cfg.Verbose,
	})

	pool, err := worker.NewPool(worker.Config{
		Workers:   cfg.Workers,
		RateLimit: cfg.RateLimit,
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize worker pool: %w", err)
	}

	fs := walker.NewOsFs()

	a := &App{
		config: cfg,
		log:    log,
		fs:     fs,
		pool:   pool,
		walker: walker.New(fs, pool, log),
		stdout: os.Stdout,
		stderr: os.Stderr,
		ctx:    ctx,
		cancel: cancel,
	}

	a.setupSignalHandling()

	a.log.WithFields(logger.Fields{
		"workers": cfg.Workers,
		"paths":   cfg.Paths,
		"verbose": cfg.Verbose,
	}).Debug("Application initialized")

	return a, nil
}

// Run walks every configured path, folds and renders the resulting
// forest and writes it to stdout. The returned int is the process exit
// status.
func (a *App) Run() (int, error) {
	table, err := a.colorTable()
	if err != nil {
		return StatusFatal, err
	}

	paths := a.config.Paths
	if len(paths) == 0 {
		paths = []string{"."}
	}

	policy := walker.Policy{
		IncludeHidden:   !a.config.NoHidden,
		UsageMode:       a.config.UsageMode,
		FilesOnly:       a.config.FilesOnly,
		ExcludePatterns: a.config.Exclude,
	}

	a.log.WithFields(logger.Fields{
		"paths":     paths,
		"usageMode": policy.UsageMode,
		"filesOnly": policy.FilesOnly,
		"exclude":   policy.ExcludePatterns,
	}).Info("Starting analysis")

	// Each root gets its own walk; all of them share the pool so the
	// worker budget holds across the whole run.
	results := make([]rootResult, len(paths))
	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			res, err := a.walker.Walk(a.ctx, path, policy)
			results[i] = rootResult{path: path, result: res, err: err}
		}(i, path)
	}
	wg.Wait()

	if err := a.ctx.Err(); err != nil {
		return StatusFatal, fmt.Errorf("analysis aborted: %w", err)
	}

	forest, partial := a.collect(results)
	if len(forest) == 0 {
		return StatusFatal, fmt.Errorf("none of the given paths could be read")
	}

	if a.config.Aggr > 0 {
		tree.AggregateForest(forest, tree.AggregateOptions{
			Threshold: a.config.Aggr,
			UsageMode: a.config.UsageMode,
		})
	}

	formatter := render.NewFormatter(render.Config{
		Format:    render.Format(a.config.Output),
		Depth:     a.config.Depth,
		UsageMode: a.config.UsageMode,
		BytesOnly: a.config.BytesOnly,
		ASCII:     a.config.ASCII,
		Width:     a.terminalWidth(),
		WithStats: a.config.WithStats,
		Colors:    table,
	}, a.log)

	out, err := formatter.Format(forest)
	if err != nil {
		return StatusFatal, fmt.Errorf("output formatting failed: %w", err)
	}

	if _, err := io.WriteString(a.stdout, out); err != nil {
		return StatusFatal, fmt.Errorf("failed to write output: %w", err)
	}

	stats := a.pool.Stats()
	a.log.WithFields(logger.Fields{
		"roots":   len(forest),
		"spawned": stats.Spawned,
		"inlined": stats.Inlined,
		"partial": partial,
	}).Info("Analysis completed")

	if partial {
		return StatusPartial, nil
	}
	return StatusOK, nil
}

// collect keeps the readable roots in input order and reports whether
// anything at all failed along the way.
func (a *App) collect(results []rootResult) (tree.Forest, bool) {
	var forest tree.Forest
	partial := false

	for _, r := range results {
		if r.err != nil {
			partial = true
			a.log.WithFields(logger.Fields{
				"path":  r.path,
				"error": r.err.Error(),
			}).Error("Cannot read path")
			fmt.Fprintf(a.stderr, "dutree: %v\n", r.err)
			continue
		}

		for path, entryErr := range r.result.Errors {
			partial = true
			a.log.WithFields(logger.Fields{
				"path":  path,
				"error": entryErr.Error(),
			}).Warn("Unreadable entry")
		}

		forest = append(forest, r.result.Root)
	}

	return forest, partial
}

// Shutdown performs a graceful shutdown of the application
func (a *App) Shutdown() {
	a.cancel()
	a.pool.Wait()

	stats := a.pool.Stats()
	a.log.WithFields(logger.Fields{
		"spawned": stats.Spawned,
		"inlined": stats.Inlined,
	}).Debug("Shutdown complete")
}

// colorTable parses the LS_COLORS specification when coloring applies.
// An invalid rule aborts the run before any filesystem work starts.
func (a *App) colorTable() (*colors.Table, error) {
	if !a.colorEnabled() {
		color.NoColor = true
		return nil, nil
	}

	if a.config.ColorSpec == "" {
		return nil, nil
	}

	table, err := colors.Parse(a.config.ColorSpec)
	if err != nil {
		return nil, fmt.Errorf("invalid LS_COLORS: %w", err)
	}
	return table, nil
}

// colorEnabled reports whether escape sequences should reach stdout.
func (a *App) colorEnabled() bool {
	if a.config.ASCII || a.config.NoColor {
		return false
	}

	f, ok := a.stdout.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// terminalWidth resolves the rendering width: an explicit configuration
// wins, then the terminal size, then the renderer default.
func (a *App) terminalWidth() int {
	if a.config.Width > 0 {
		return a.config.Width
	}

	if f, ok := a.stdout.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			return w
		}
	}

	return render.DefaultWidth
}
