//go:build !unix

package walker

import "os"

// blockUsage is unavailable off unix; callers fall back to apparent size.
func blockUsage(info os.FileInfo) (int64, bool) {
	return 0, false
}
