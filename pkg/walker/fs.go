package walker

import (
	"os"

	"github.com/spf13/afero"
)

// UsageFs extends afero.Fs with the lstat, readlink and block-usage
// queries the walker needs. Symlinks must be observable without being
// followed, and usage accounting needs the allocated size on disk.
type UsageFs interface {
	afero.Fs

	// LstatIfPossible stats without following symlinks. The bool reports
	// whether lstat semantics were actually used.
	LstatIfPossible(name string) (os.FileInfo, bool, error)

	// ReadlinkIfPossible resolves a symlink target.
	ReadlinkIfPossible(name string) (string, error)

	// UsageOf returns the on-disk allocated bytes for an entry.
	UsageOf(info os.FileInfo) int64
}

// NewOsFs returns a UsageFs backed by the real filesystem, with usage
// taken from the allocated block count where the platform provides it.
func NewOsFs() UsageFs {
	return &osUsageFs{Fs: afero.NewOsFs()}
}

type osUsageFs struct {
	afero.Fs
}

func (fs *osUsageFs) LstatIfPossible(name string) (os.FileInfo, bool, error) {
	return fs.Fs.(afero.Lstater).LstatIfPossible(name)
}

func (fs *osUsageFs) ReadlinkIfPossible(name string) (string, error) {
	return fs.Fs.(afero.LinkReader).ReadlinkIfPossible(name)
}

func (fs *osUsageFs) UsageOf(info os.FileInfo) int64 {
	if usage, ok := blockUsage(info); ok {
		return usage
	}
	return info.Size()
}

// BasicUsageFs adapts any afero.Fs into a UsageFs with degraded semantics:
// lstat falls back to stat, symlinks are invisible and usage equals the
// apparent size. Used for in-memory filesystems in tests.
type BasicUsageFs struct {
	afero.Fs

	// BlockSize, when positive, rounds usage up to whole blocks so tests
	// can exercise usage accounting deterministically.
	BlockSize int64
}

func (fs *BasicUsageFs) LstatIfPossible(name string) (os.FileInfo, bool, error) {
	if lstater, ok := fs.Fs.(afero.Lstater); ok {
		return lstater.LstatIfPossible(name)
	}
	info, err := fs.Fs.Stat(name)
	return info, false, err
}

func (fs *BasicUsageFs) ReadlinkIfPossible(name string) (string, error) {
	if reader, ok := fs.Fs.(afero.LinkReader); ok {
		return reader.ReadlinkIfPossible(name)
	}
	return "", afero.ErrNoReadlink
}

func (fs *BasicUsageFs) UsageOf(info os.FileInfo) int64 {
	if fs.BlockSize > 0 {
		blocks := (info.Size() + fs.BlockSize - 1) / fs.BlockSize
		return blocks * fs.BlockSize
	}
	return info.Size()
}
