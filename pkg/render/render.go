/*
Package render turns a disk-usage forest into terminal output.

The tree format prints one line per visible node: branch glyphs, the
colorized entry name, a nested usage bar with a percentage of the parent,
and the formatted size. Children print largest first with names breaking
ties, rendering stops below the configured depth while totals keep
covering the whole tree, and every root gets a trailing grand-total line.
JSON and YAML formats expose the same tree for machines.

ASCII mode replaces the drawing glyphs with plain ASCII and bypasses
coloring entirely.
*/
package render

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/nachoparker/dutree/pkg/colors"
	"github.com/nachoparker/dutree/pkg/logger"
	"github.com/nachoparker/dutree/pkg/tree"
)

// Format selects the output format.
type Format string

const (
	FormatTree Format = "tree"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// DefaultWidth is assumed when no terminal width is supplied.
const DefaultWidth = 80

const sizeColumnWidth = 15

// Config holds renderer configuration.
type Config struct {
	// Format is one of tree, json, yaml.
	Format Format

	// Depth caps the displayed depth; 0 or negative shows everything.
	// Nodes below the cap still count into ancestor totals.
	Depth int

	// UsageMode orders and sizes lines by on-disk usage instead of
	// apparent size.
	UsageMode bool

	// BytesOnly prints exact byte counts instead of binary units.
	BytesOnly bool

	// ASCII restricts output to ASCII glyphs and disables all coloring.
	ASCII bool

	// Width is the terminal width in columns; 0 falls back to
	// DefaultWidth.
	Width int

	// WithStats appends a statistics footer to the output.
	WithStats bool

	// Colors classifies entries for coloring. nil renders everything in
	// the terminal default.
	Colors *colors.Table
}

// Formatter renders a forest into a string.
type Formatter interface {
	Format(forest tree.Forest) (string, error)
}

// NewFormatter creates a Formatter for the given configuration.
func NewFormatter(config Config, log logger.Logger) Formatter {
	if log == nil {
		log = logger.Nop()
	}
	if config.Width <= 0 {
		config.Width = DefaultWidth
	}
	return &formatter{config: config, log: log}
}

type formatter struct {
	config Config
	log    logger.Logger
}

func (f *formatter) Format(forest tree.Forest) (string, error) {
	if len(forest) == 0 {
		return "", fmt.Errorf("nothing to render: empty forest")
	}

	f.log.WithFields(logger.Fields{
		"format": f.config.Format,
		"roots":  len(forest),
		"depth":  f.config.Depth,
	}).Debug("formatting forest")

	switch f.config.Format {
	case FormatTree, "":
		return f.formatTree(forest), nil
	case FormatJSON:
		return f.formatJSON(forest)
	case FormatYAML:
		return f.formatYAML(forest)
	default:
		return "", fmt.Errorf("unsupported format: %s", f.config.Format)
	}
}

// column layout, derived from the terminal width the way the size bar
// expects it: a fixed size column, a name column of at least 25 cells,
// the bar takes the rest.
type layout struct {
	nameWidth int
	barWidth  int
}

func (f *formatter) layout() layout {
	varWidth := f.config.Width - sizeColumnWidth
	if varWidth < 40 {
		varWidth = 40
	}
	nameWidth := varWidth * 25 / 100
	if nameWidth < 25 {
		nameWidth = 25
	}
	return layout{
		nameWidth: nameWidth,
		barWidth:  varWidth - nameWidth,
	}
}

func (f *formatter) formatTree(forest tree.Forest) string {
	var b strings.Builder
	lay := f.layout()

	for _, root := range forest {
		weight := root.Weight(f.config.UsageMode)
		fmt.Fprintf(&b, "[ %s %s ]\n", f.colorize(root), FormatSize(weight, f.config.BytesOnly))

		maxWeight := weight
		if children := root.SortedChildren(f.config.UsageMode); len(children) > 0 {
			maxWeight = children[0].Weight(f.config.UsageMode)
		}

		f.writeEntries(&b, root, nil, []int64{weight}, maxWeight, lay)
	}

	for _, root := range forest {
		heading := fmt.Sprintf("%s total:", root.Name)
		if !f.config.ASCII {
			heading = color.New(color.Bold).Sprint(heading)
		}
		fmt.Fprintf(&b, "%s %s\n", heading,
			FormatSize(root.Weight(f.config.UsageMode), f.config.BytesOnly))
	}

	if f.config.WithStats {
		f.writeStats(&b, forest)
	}

	return b.String()
}

// writeEntries renders node's children and recurses. openParents tracks
// which ancestor levels already printed their last child, chain the
// weights from the root down to node.
func (f *formatter) writeEntries(b *strings.Builder, node *tree.Node, openParents []bool, chain []int64, maxWeight int64, lay layout) {
	children := node.SortedChildren(f.config.UsageMode)
	if len(children) == 0 {
		return
	}
	if f.config.Depth > 0 && children[0].Depth > f.config.Depth {
		return
	}

	treeWidth := (len(openParents) + 1) * 3
	nameWidth := lay.nameWidth - treeWidth
	if nameWidth < 1 {
		return
	}

	for i, child := range children {
		last := i == len(children)-1

		for _, open := range openParents {
			if open {
				b.WriteString("   ")
			} else {
				b.WriteString(f.glyph("│  ", "|  "))
			}
		}
		if last {
			b.WriteString(f.glyph("└─ ", "`- "))
		} else {
			b.WriteString(f.glyph("├─ ", "|- "))
		}

		name := truncate(child.Name, nameWidth)
		pad := nameWidth - len([]rune(name))
		b.WriteString(f.colorizeName(child, name))
		if child.Unreadable {
			marker := " [!]"
			if !f.config.ASCII {
				marker = " " + color.New(color.FgRed).Sprint("[!]")
			}
			b.WriteString(marker)
			pad -= 4
		}
		for ; pad > 0; pad-- {
			b.WriteByte(' ')
		}

		weight := child.Weight(f.config.UsageMode)
		childChain := append(append([]int64(nil), chain...), weight)

		fmt.Fprintf(b, " %s %13s\n",
			formatBar(childChain, maxWeight, lay.barWidth, f.config.ASCII),
			FormatSize(weight, f.config.BytesOnly))

		f.writeEntries(b, child, append(append([]bool(nil), openParents...), last), childChain, maxWeight, lay)
	}
}

func (f *formatter) glyph(unicode, ascii string) string {
	if f.config.ASCII {
		return ascii
	}
	return unicode
}

// colorize wraps the node name in its resolved SGR attribute.
func (f *formatter) colorize(n *tree.Node) string {
	return f.colorizeName(n, n.Name)
}

func (f *formatter) colorizeName(n *tree.Node, name string) string {
	if f.config.ASCII || f.config.Colors == nil || n.Kind == tree.Aggregate {
		return name
	}

	attr := f.config.Colors.Resolve(colors.Entry{
		Name:    n.Name,
		Dir:     n.Kind == tree.Dir,
		Symlink: n.Kind == tree.Symlink,
		Orphan:  n.Orphan,
		Special: n.Kind == tree.Special,
		Mode:    n.Mode,
	})
	if attr == "" {
		return name
	}

	return "\033[" + attr + "m" + name + "\033[0m"
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width])
}
