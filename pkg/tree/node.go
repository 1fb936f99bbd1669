/*
Package tree defines the disk-usage tree model shared by the walker, the
aggregator and the renderer.

A Node owns its children exclusively: the filesystem is walked as a tree,
symlinks are recorded as leaves and never followed, so there are no cycles
and no node is referenced from two places. Directory totals always equal
the sum of their children once a subtree has been fully built; aggregation
only restructures children lists and never changes totals.
*/
package tree

import (
	"io/fs"
	"sort"
)

// Kind classifies a node.
type Kind int

const (
	// File is a regular file.
	File Kind = iota
	// Dir is a directory.
	Dir
	// Symlink is a symbolic link, recorded as a leaf and never followed.
	Symlink
	// Special covers devices, pipes and sockets.
	Special
	// Aggregate is a synthetic node absorbing small siblings.
	Aggregate
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case File:
		return "file"
	case Dir:
		return "directory"
	case Symlink:
		return "symlink"
	case Special:
		return "special"
	case Aggregate:
		return "aggregate"
	default:
		return "unknown"
	}
}

// AggregateName is the display name of synthetic aggregate nodes.
const AggregateName = "<aggregated>"

// Node is one entry of a disk-usage tree.
type Node struct {
	// Name is the entry base name. In files-only mode hoisted files carry
	// their root-relative path instead, which keeps sibling names unique.
	Name string

	// Path is the full path used for exclusion matching and coloring.
	Path string

	// Kind classifies the node.
	Kind Kind

	// Size is the apparent byte size, summed over descendants for
	// directories and aggregates.
	Size int64

	// Usage is the on-disk block usage, tracked in parallel to Size.
	// When usage accounting is off it equals Size.
	Usage int64

	// Mode holds the permission and type bits, used for coloring.
	Mode fs.FileMode

	// Depth is the distance from the tree root (0 at the root).
	Depth int

	// Unreadable marks an entry that could not be read; its sizes are 0.
	Unreadable bool

	// Orphan marks a symlink whose target does not exist.
	Orphan bool

	// Target is the symlink target path, empty for every other kind and
	// for links that cannot be read.
	Target string

	// Children are owned exclusively by this node. Empty for leaves.
	Children []*Node
}

// Weight returns Usage in usage mode and Size otherwise. All ordering and
// aggregation decisions go through it so both accountings behave the same.
func (n *Node) Weight(usageMode bool) int64 {
	if usageMode {
		return n.Usage
	}
	return n.Size
}

// SortedChildren returns the children ordered for display: weight
// descending, ties broken by name ascending so output is deterministic.
// The receiver's own slice is left untouched.
func (n *Node) SortedChildren(usageMode bool) []*Node {
	sorted := make([]*Node, len(n.Children))
	copy(sorted, n.Children)

	sort.SliceStable(sorted, func(i, j int) bool {
		wi, wj := sorted[i].Weight(usageMode), sorted[j].Weight(usageMode)
		if wi != wj {
			return wi > wj
		}
		return sorted[i].Name < sorted[j].Name
	})

	return sorted
}

// Forest is an ordered sequence of independently built roots, one per
// input path. No size relationship holds between them; render order is
// input order.
type Forest []*Node

// TotalSize returns the sum of the root sizes.
func (f Forest) TotalSize() int64 {
	var total int64
	for _, root := range f {
		total += root.Size
	}
	return total
}

// TotalUsage returns the sum of the root usages.
func (f Forest) TotalUsage() int64 {
	var total int64
	for _, root := range f {
		total += root.Usage
	}
	return total
}
