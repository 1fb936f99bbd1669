package render

import (
	"fmt"
	"strings"
)

// formatBar draws the nested usage bar for one line. chain carries the
// weights from the root down to the entry itself; each level is shaded
// relative to its parent, the innermost level solid, filling from the
// right. maxWeight scales the outermost level so sibling roots plot on a
// common axis. The trailing percentage is the entry relative to its
// direct parent.
func formatBar(chain []int64, maxWeight int64, width int, ascii bool) string {
	blocks := []rune{' ', '░', '▒', '▓', '█'}
	edge := '│'
	if ascii {
		blocks = []rune{' ', '#'}
		edge = '|'
	}

	// Edges and percentage column live inside the given width.
	w := int64(width) - 2 - 5
	if w < 1 {
		w = 1
	}

	var bar strings.Builder
	bar.WriteRune(edge)

	idx := 1
	total := maxWeight
	part := int64(0)
	if idx < len(chain) {
		part = chain[idx]
	}
	var bars int64
	if total > 0 {
		bars = part * w / total
	}
	pos := w - bars
	chr := 0
	levels := len(chain) - 1

	for x := int64(0); x < w; x++ {
		if x > pos {
			total = part
			idx++
			if idx < len(chain) {
				part = chain[idx]
			} else {
				part = 0
			}
			if total > 0 {
				bars = part * bars / total
			} else {
				bars = 0
			}
			pos = w - bars
			chr++
			if chr == levels || chr >= len(blocks) {
				chr = len(blocks) - 1
			}
		}
		bar.WriteRune(blocks[chr])
	}

	var pct int64
	if len(chain) >= 2 && chain[len(chain)-2] > 0 {
		pct = chain[len(chain)-1] * 100 / chain[len(chain)-2]
	}

	return fmt.Sprintf("%s%c %3d%%", bar.String(), edge, pct)
}
