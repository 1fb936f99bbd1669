package walker

import "fmt"

// RootError reports that a root path could not be walked at all. In
// multi-root mode other roots still complete.
type RootError struct {
	Path string
	Err  error
}

func (e *RootError) Error() string {
	return fmt.Sprintf("cannot read root %s: %v", e.Path, e.Err)
}

func (e *RootError) Unwrap() error { return e.Err }

// EntryError reports a single unreadable entry inside an otherwise
// readable tree. The walk continues; the entry is kept with size 0 and
// flagged so its zero contribution stays visible.
type EntryError struct {
	Path string
	Err  error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("cannot read %s: %v", e.Path, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }
