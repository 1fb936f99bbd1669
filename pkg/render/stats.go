package render

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/nachoparker/dutree/pkg/tree"
)

// stats summarizes a forest for the footer and the machine formats.
type stats struct {
	Files      int   `json:"totalFiles" yaml:"totalFiles"`
	Dirs       int   `json:"totalDirectories" yaml:"totalDirectories"`
	Symlinks   int   `json:"totalSymlinks" yaml:"totalSymlinks"`
	Unreadable int   `json:"unreadable" yaml:"unreadable"`
	TotalSize  int64 `json:"totalSize" yaml:"totalSize"`
	TotalUsage int64 `json:"totalUsage" yaml:"totalUsage"`
}

func calculateStats(forest tree.Forest) *stats {
	s := &stats{
		TotalSize:  forest.TotalSize(),
		TotalUsage: forest.TotalUsage(),
	}
	for _, root := range forest {
		walkStats(root, s)
	}
	return s
}

func walkStats(n *tree.Node, s *stats) {
	switch n.Kind {
	case tree.File, tree.Special:
		s.Files++
	case tree.Dir:
		s.Dirs++
	case tree.Symlink:
		s.Symlinks++
	}
	if n.Unreadable {
		s.Unreadable++
	}
	for _, child := range n.Children {
		walkStats(child, s)
	}
}

func (f *formatter) writeStats(b *strings.Builder, forest tree.Forest) {
	s := calculateStats(forest)

	b.WriteString("\nStatistics:\n")
	fmt.Fprintf(b, "  Files: %d\n", s.Files)
	fmt.Fprintf(b, "  Directories: %d\n", s.Dirs)
	fmt.Fprintf(b, "  Symlinks: %d\n", s.Symlinks)
	if s.Unreadable > 0 {
		fmt.Fprintf(b, "  Unreadable: %d\n", s.Unreadable)
	}
	fmt.Fprintf(b, "  Total size: %s\n", humanize.IBytes(uint64(s.TotalSize)))
	if f.config.UsageMode {
		fmt.Fprintf(b, "  Disk usage: %s\n", humanize.IBytes(uint64(s.TotalUsage)))
	}
}
