package render

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

const (
	kib = 1 << 10
	mib = 1 << 20
	gib = 1 << 30
	tib = 1 << 40
)

// FormatSize renders a byte count the way the tree column expects it:
// two-decimal binary units, or exact comma-grouped bytes when bytesOnly
// is set.
func FormatSize(bytes int64, bytesOnly bool) string {
	if bytesOnly || bytes < kib {
		return humanize.Comma(bytes) + " B"
	}

	b := float64(bytes)
	switch {
	case bytes < mib:
		return fmt.Sprintf("%.2f KiB", b/kib)
	case bytes < gib:
		return fmt.Sprintf("%.2f MiB", b/mib)
	case bytes < tib:
		return fmt.Sprintf("%.2f GiB", b/gib)
	default:
		return fmt.Sprintf("%.2f TiB", b/tib)
	}
}
