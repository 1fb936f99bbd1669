/*
Package walker builds disk-usage trees from a filesystem root.

The walk is depth-first and concurrent: each directory's children are
scanned in parallel with their siblings, bounded by a shared worker pool,
and every directory waits for all of its children before computing its own
totals. A worker owns the subtree it is building and hands back a
completed node to its parent's merge step, so no node is ever written by
two goroutines and the tree needs no locking.

Policy controls exclusion patterns, hidden-file handling, usage
accounting and files-only hoisting. Entry-level errors are recorded and
never abort the walk; only an unreadable root is fatal, and only for that
root.
*/
package walker

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/nachoparker/dutree/pkg/logger"
	"github.com/nachoparker/dutree/pkg/tree"
	"github.com/nachoparker/dutree/pkg/worker"
)

// Policy describes what the walk includes and how sizes are accounted.
type Policy struct {
	// IncludeHidden keeps entries whose base name starts with a dot.
	IncludeHidden bool

	// UsageMode accounts on-disk block usage alongside apparent size.
	// When off, usage is defined equal to size.
	UsageMode bool

	// FilesOnly drops directory nodes from the output tree: directories
	// are still traversed but their descendant files are hoisted to the
	// root, named by root-relative path.
	FilesOnly bool

	// ExcludePatterns removes matching entries and their whole subtree
	// from all totals. Patterns are globs matched against the base name,
	// and against the root-relative path when they contain a separator.
	ExcludePatterns []string
}

// Result is the outcome of walking one root.
type Result struct {
	// Root is the completed tree. Directory totals satisfy the sum
	// invariant over their children.
	Root *tree.Node

	// Errors maps entry paths to the per-entry errors recorded during
	// the walk. The entries themselves are kept, flagged, with size 0.
	Errors map[string]error
}

// Walker builds one tree per call to Walk.
type Walker interface {
	// Walk builds the tree rooted at root. It returns a RootError when
	// the root itself cannot be read; entry-level failures land in
	// Result.Errors instead.
	Walk(ctx context.Context, root string, policy Policy) (Result, error)
}

// New creates a Walker on the given filesystem, sharing the pool across
// all walks so multi-root runs stay bounded by one worker budget.
func New(fs UsageFs, pool worker.Pool, log logger.Logger) Walker {
	if log == nil {
		log = logger.Nop()
	}
	return &walker{fs: fs, pool: pool, log: log}
}

type walker struct {
	fs   UsageFs
	pool worker.Pool
	log  logger.Logger
}

// collector gathers the walk outputs that cross goroutine boundaries.
type collector struct {
	mu      sync.Mutex
	errors  map[string]error
	hoisted []*tree.Node
}

func (c *collector) recordError(path string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors[path] = err
}

func (c *collector) hoist(node *tree.Node) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hoisted = append(c.hoisted, node)
}

func (w *walker) Walk(ctx context.Context, root string, policy Policy) (Result, error) {
	rootPath := filepath.Clean(root)

	w.log.WithFields(logger.Fields{
		"root":      rootPath,
		"usage":     policy.UsageMode,
		"filesOnly": policy.FilesOnly,
		"excludes":  policy.ExcludePatterns,
	}).Info("walk started")

	info, _, err := w.fs.LstatIfPossible(rootPath)
	if err != nil {
		return Result{}, &RootError{Path: rootPath, Err: err}
	}

	c := &collector{errors: make(map[string]error)}

	node := w.newNode(rootPath, rootName(rootPath), info, 0, policy)
	if node.Kind == tree.Dir {
		if err := w.scanDir(ctx, node, rootPath, policy, c, true); err != nil {
			return Result{}, err
		}

		if policy.FilesOnly {
			node.Children = c.hoisted
			node.Size, node.Usage = 0, 0
			for _, child := range node.Children {
				node.Size += child.Size
				node.Usage += child.Usage
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	w.log.WithFields(logger.Fields{
		"root":   rootPath,
		"size":   node.Size,
		"usage":  node.Usage,
		"errors": len(c.errors),
	}).Info("walk completed")

	return Result{Root: node, Errors: c.errors}, nil
}

// scanDir fills in node's subtree and totals. Subdirectories run through
// the pool; the WaitGroup is the per-directory join barrier.
func (w *walker) scanDir(ctx context.Context, node *tree.Node, rootPath string, policy Policy, c *collector, isRoot bool) error {
	if err := w.pool.Throttle(ctx); err != nil {
		return err
	}

	names, err := w.readDirNames(node.Path)
	if err != nil {
		if isRoot {
			return &RootError{Path: node.Path, Err: err}
		}
		w.log.WithFields(logger.Fields{
			"path":  node.Path,
			"error": err.Error(),
		}).Warn("directory unreadable")
		node.Unreadable = true
		c.recordError(node.Path, &EntryError{Path: node.Path, Err: err})
		if policy.FilesOnly {
			// Directory nodes are dropped in files-only mode, so the
			// flagged record has to reach the output through the hoist.
			node.Name = relTo(rootPath, node.Path)
			node.Depth = 1
			c.hoist(node)
		}
		return nil
	}

	var wg sync.WaitGroup
	for _, name := range names {
		if ctx.Err() != nil {
			break
		}

		if !policy.IncludeHidden && strings.HasPrefix(name, ".") {
			continue
		}

		path := filepath.Join(node.Path, name)
		rel := relTo(rootPath, path)
		if matchesExclude(policy.ExcludePatterns, name, rel) {
			w.log.WithFields(logger.Fields{"path": path}).Debug("excluded")
			continue
		}

		info, _, err := w.fs.LstatIfPossible(path)
		if err != nil {
			w.log.WithFields(logger.Fields{
				"path":  path,
				"error": err.Error(),
			}).Warn("entry unreadable")
			c.recordError(path, &EntryError{Path: path, Err: err})
			marker := &tree.Node{
				Name:       name,
				Path:       path,
				Kind:       tree.File,
				Depth:      node.Depth + 1,
				Unreadable: true,
			}
			if policy.FilesOnly {
				marker.Name = rel
				marker.Depth = 1
				c.hoist(marker)
			} else {
				node.Children = append(node.Children, marker)
			}
			continue
		}

		child := w.newNode(path, name, info, node.Depth+1, policy)

		if child.Kind == tree.Dir {
			if !policy.FilesOnly {
				node.Children = append(node.Children, child)
			}
			wg.Add(1)
			w.pool.Go(func() {
				defer wg.Done()
				_ = w.scanDir(ctx, child, rootPath, policy, c, false)
			})
			continue
		}

		if policy.FilesOnly {
			child.Name = rel
			child.Depth = 1
			c.hoist(child)
			continue
		}
		node.Children = append(node.Children, child)
	}

	wg.Wait()

	node.Size, node.Usage = 0, 0
	for _, child := range node.Children {
		node.Size += child.Size
		node.Usage += child.Usage
	}

	return nil
}

// newNode classifies one stat result into a tree node with its sizes.
func (w *walker) newNode(path, name string, info os.FileInfo, depth int, policy Policy) *tree.Node {
	node := &tree.Node{
		Name:  name,
		Path:  path,
		Mode:  info.Mode(),
		Depth: depth,
	}

	switch {
	case info.IsDir():
		node.Kind = tree.Dir
		return node
	case info.Mode()&os.ModeSymlink != 0:
		node.Kind = tree.Symlink
		if target, err := w.fs.ReadlinkIfPossible(path); err == nil {
			node.Target = target
		}
		if _, err := w.fs.Stat(path); err != nil {
			node.Orphan = true
		}
	case info.Mode()&os.ModeType != 0:
		node.Kind = tree.Special
	default:
		node.Kind = tree.File
	}

	node.Size = info.Size()
	node.Usage = node.Size
	if policy.UsageMode {
		node.Usage = w.fs.UsageOf(info)
	}

	return node
}

func (w *walker) readDirNames(path string) ([]string, error) {
	dir, err := w.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer dir.Close()

	return dir.Readdirnames(-1)
}

// matchesExclude reports whether an entry matches any exclusion pattern,
// by base name always and by root-relative path for patterns carrying a
// separator. A "**/" prefix applies the remainder to the base name at any
// level.
func matchesExclude(patterns []string, base, rel string) bool {
	rel = filepath.ToSlash(rel)

	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)

		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
		if suffix, ok := strings.CutPrefix(pattern, "**/"); ok {
			if matched, _ := filepath.Match(suffix, base); matched {
				return true
			}
		}
		if strings.Contains(pattern, "/") {
			if matched, _ := filepath.Match(pattern, rel); matched {
				return true
			}
		}
	}

	return false
}

func relTo(rootPath, path string) string {
	rel, err := filepath.Rel(rootPath, path)
	if err != nil {
		return path
	}
	return rel
}

func rootName(path string) string {
	name := filepath.Base(path)
	if name == "" {
		return string(filepath.Separator)
	}
	return name
}
