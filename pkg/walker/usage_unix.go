//go:build unix

package walker

import (
	"os"
	"syscall"
)

// blockUsage reports the allocated on-disk bytes for an entry. st_blocks
// counts 512-byte units regardless of the filesystem block size.
func blockUsage(info os.FileInfo) (int64, bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, false
	}
	return stat.Blocks * 512, true
}
