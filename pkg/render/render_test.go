package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/nachoparker/dutree/pkg/colors"
	"github.com/nachoparker/dutree/pkg/logger"
	"github.com/nachoparker/dutree/pkg/tree"
)

func file(name string, size int64, depth int) *tree.Node {
	return &tree.Node{Name: name, Kind: tree.File, Size: size, Usage: size, Depth: depth}
}

func dir(name string, depth int, children ...*tree.Node) *tree.Node {
	d := &tree.Node{Name: name, Kind: tree.Dir, Depth: depth, Children: children}
	for _, child := range children {
		d.Size += child.Size
		d.Usage += child.Usage
	}
	return d
}

func testForest() tree.Forest {
	return tree.Forest{
		dir("root", 0,
			file("small.txt", 100, 1),
			dir("sub", 1,
				file("inner.bin", 5000, 2),
				dir("deep", 2,
					file("leaf.dat", 50, 3),
				),
			),
			file("big.log", 9000, 1),
		),
	}
}

func format(t *testing.T, config Config, forest tree.Forest) string {
	t.Helper()

	out, err := NewFormatter(config, logger.Nop()).Format(forest)
	require.NoError(t, err)
	return out
}

func visibleNames(out string) []string {
	var names []string
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(strings.Trim(line, "│|`-├└─ "))
		if len(fields) > 0 {
			names = append(names, fields[0])
		}
	}
	return names
}

func TestFormatTreeBasic(t *testing.T) {
	out := format(t, Config{Format: FormatTree, ASCII: true}, testForest())

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Contains(t, lines[0], "[ root")
	assert.Contains(t, lines[0], "13.82 KiB")

	// Largest first at every level.
	joined := strings.Join(lines, "\n")
	assert.Less(t, strings.Index(joined, "big.log"), strings.Index(joined, "sub"))
	assert.Less(t, strings.Index(joined, "sub"), strings.Index(joined, "small.txt"))

	// Trailing total per root.
	assert.Contains(t, lines[len(lines)-1], "root total:")
}

func TestFormatTreeTieBrokenByName(t *testing.T) {
	forest := tree.Forest{dir("root", 0,
		file("bbb", 100, 1),
		file("aaa", 100, 1),
	)}

	out := format(t, Config{Format: FormatTree, ASCII: true}, forest)

	assert.Less(t, strings.Index(out, "aaa"), strings.Index(out, "bbb"))
}

func TestFormatTreeDepthLimit(t *testing.T) {
	out := format(t, Config{Format: FormatTree, ASCII: true, Depth: 1}, testForest())

	assert.Contains(t, out, "sub")
	assert.NotContains(t, out, "inner.bin")
	assert.NotContains(t, out, "leaf.dat")

	// Ancestor totals still cover hidden descendants.
	assert.Contains(t, out, "13.82 KiB")
}

func TestFormatTreeDepthMonotonic(t *testing.T) {
	var previous map[string]bool
	for _, depth := range []int{1, 2, 3} {
		out := format(t, Config{Format: FormatTree, ASCII: true, Depth: depth}, testForest())

		current := make(map[string]bool)
		for _, name := range visibleNames(out) {
			current[name] = true
		}
		for name := range previous {
			assert.True(t, current[name], "depth %d lost %q", depth, name)
		}
		previous = current
	}
}

func TestFormatTreeAggregateLine(t *testing.T) {
	forest := tree.Forest{dir("root", 0,
		file("c", 2_000_000, 1),
		file("a", 500, 1),
		file("b", 500, 1),
	)}
	tree.AggregateForest(forest, tree.AggregateOptions{Threshold: 1_000_000})

	out := format(t, Config{Format: FormatTree, ASCII: true, BytesOnly: true}, forest)

	assert.Contains(t, out, "c")
	assert.Contains(t, out, tree.AggregateName)
	assert.NotContains(t, out, "a ")
	assert.Contains(t, out, "1,000 B")
	assert.Contains(t, out, "2,001,000 B")
}

func TestFormatTreeASCIIHasNoEscapesOrGlyphs(t *testing.T) {
	table, err := colors.Parse("di=01;34:*.log=32")
	require.NoError(t, err)

	out := format(t, Config{Format: FormatTree, ASCII: true, Colors: table}, testForest())

	assert.NotContains(t, out, "\033[")
	assert.NotContains(t, out, "├")
	assert.NotContains(t, out, "└")
	assert.NotContains(t, out, "░")
	assert.Contains(t, out, "|- ")
	assert.Contains(t, out, "`- ")
}

func TestFormatTreeColors(t *testing.T) {
	table, err := colors.Parse("di=01;34:*.log=32")
	require.NoError(t, err)

	out := format(t, Config{Format: FormatTree, Colors: table}, testForest())

	assert.Contains(t, out, "\033[01;34msub\033[0m")
	assert.Contains(t, out, "\033[32mbig.log\033[0m")
	assert.Contains(t, out, "small.txt")
	assert.NotContains(t, out, "\033[32msmall.txt")
}

func TestFormatTreeUnreadableMarker(t *testing.T) {
	locked := &tree.Node{Name: "locked", Kind: tree.Dir, Depth: 1, Unreadable: true}
	forest := tree.Forest{dir("root", 0, locked, file("ok", 10, 1))}

	out := format(t, Config{Format: FormatTree, ASCII: true}, forest)

	assert.Contains(t, out, "locked [!]")
}

func TestFormatTreeUsageMode(t *testing.T) {
	sparse := &tree.Node{Name: "sparse", Kind: tree.File, Size: 1 << 20, Usage: 4096, Depth: 1}
	dense := &tree.Node{Name: "dense", Kind: tree.File, Size: 8192, Usage: 8192, Depth: 1}
	root := &tree.Node{Name: "root", Kind: tree.Dir, Depth: 0,
		Size: sparse.Size + dense.Size, Usage: sparse.Usage + dense.Usage,
		Children: []*tree.Node{sparse, dense}}

	out := format(t, Config{Format: FormatTree, ASCII: true, UsageMode: true}, tree.Forest{root})

	// Usage mode orders and sizes by usage.
	assert.Less(t, strings.Index(out, "dense"), strings.Index(out, "sparse"))
	assert.Contains(t, out, "8.00 KiB")
}

func TestFormatTreeMultiRootInputOrder(t *testing.T) {
	forest := tree.Forest{
		dir("zeta", 0, file("z", 10, 1)),
		dir("alpha", 0, file("a", 99999, 1)),
	}

	out := format(t, Config{Format: FormatTree, ASCII: true}, forest)

	// Input order, not size order.
	assert.Less(t, strings.Index(out, "[ zeta"), strings.Index(out, "[ alpha"))
	assert.Contains(t, out, "zeta total:")
	assert.Contains(t, out, "alpha total:")
}

func TestFormatTreeStatsFooter(t *testing.T) {
	out := format(t, Config{Format: FormatTree, ASCII: true, WithStats: true}, testForest())

	assert.Contains(t, out, "Statistics:")
	assert.Contains(t, out, "Files: 4")
	assert.Contains(t, out, "Directories: 3")
}

func TestFormatJSON(t *testing.T) {
	out := format(t, Config{Format: FormatJSON, WithStats: true}, testForest())

	var doc struct {
		Roots []struct {
			Name     string `json:"name"`
			Type     string `json:"type"`
			Size     int64  `json:"size"`
			Children []struct {
				Name string `json:"name"`
			} `json:"children"`
		} `json:"roots"`
		Statistics struct {
			TotalFiles int `json:"totalFiles"`
		} `json:"statistics"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	require.Len(t, doc.Roots, 1)
	assert.Equal(t, "root", doc.Roots[0].Name)
	assert.Equal(t, "directory", doc.Roots[0].Type)
	assert.Equal(t, int64(14150), doc.Roots[0].Size)
	assert.Equal(t, "big.log", doc.Roots[0].Children[0].Name)
	assert.Equal(t, 4, doc.Statistics.TotalFiles)
}

func TestFormatYAML(t *testing.T) {
	out := format(t, Config{Format: FormatYAML}, testForest())

	var doc struct {
		Roots []struct {
			Name string `yaml:"name"`
			Size int64  `yaml:"size"`
		} `yaml:"roots"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))

	require.Len(t, doc.Roots, 1)
	assert.Equal(t, "root", doc.Roots[0].Name)
	assert.Equal(t, int64(14150), doc.Roots[0].Size)
}

func TestFormatEmptyForest(t *testing.T) {
	_, err := NewFormatter(Config{Format: FormatTree}, logger.Nop()).Format(nil)
	assert.Error(t, err)
}

func TestFormatUnsupportedFormat(t *testing.T) {
	_, err := NewFormatter(Config{Format: "xml"}, logger.Nop()).Format(testForest())
	assert.Error(t, err)
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes     int64
		bytesOnly bool
		want      string
	}{
		{0, false, "0 B"},
		{500, false, "500 B"},
		{1536, false, "1.50 KiB"},
		{2 << 20, false, "2.00 MiB"},
		{3 << 30, false, "3.00 GiB"},
		{5 << 40, false, "5.00 TiB"},
		{2_001_000, true, "2,001,000 B"},
		{2_001_000, false, "1.91 MiB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatSize(tt.bytes, tt.bytesOnly))
	}
}

func TestFormatBar(t *testing.T) {
	out := formatBar([]int64{100, 50}, 100, 20, true)

	assert.True(t, strings.HasPrefix(out, "|"))
	assert.True(t, strings.HasSuffix(out, " 50%"), "got %q", out)
	assert.Contains(t, out, "#")

	empty := formatBar([]int64{100, 0}, 100, 20, true)
	assert.True(t, strings.HasSuffix(empty, "  0%"), "got %q", empty)
}

func TestFormatBarZeroParent(t *testing.T) {
	out := formatBar([]int64{0, 0}, 0, 20, true)
	assert.True(t, strings.HasSuffix(out, "  0%"), "got %q", out)
}
