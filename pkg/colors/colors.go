/*
Package colors resolves terminal display attributes for filesystem entries
from an LS_COLORS-style specification string.

The specification is a colon-separated list of selector=attribute rules.
Selectors are either special type keys (di, ln, or, ex, ow, fi, bd) or glob
patterns matched against the entry base name (*.mp3, *.tar). Attributes are
raw SGR parameter strings such as "01;34".

A Table is built once per run and is immutable afterwards. Resolution tries
type keys first (directories and symlinks always resolve by type, never by
name), then pattern rules in specification order, first match wins.
*/
package colors

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// Type selector keys, following the ls/dircolors vocabulary.
const (
	keyDir           = "di"
	keySymlink       = "ln"
	keyOrphan        = "or"
	keyExecutable    = "ex"
	keyOtherWritable = "ow"
	keyFile          = "fi"
	keyBlockDevice   = "bd"
)

// Entry describes the classification inputs for one filesystem entry.
type Entry struct {
	// Name is the entry base name, used for pattern rules.
	Name string

	// Dir, Symlink and Special select the type keys. Orphan marks a
	// symlink whose target does not exist.
	Dir     bool
	Symlink bool
	Orphan  bool
	Special bool

	// Mode supplies the permission bits for the ex and ow keys.
	Mode fs.FileMode
}

// InvalidRuleError reports a malformed rule in the specification string.
type InvalidRuleError struct {
	Rule   string
	Reason string
}

func (e *InvalidRuleError) Error() string {
	return fmt.Sprintf("invalid color rule %q: %s", e.Rule, e.Reason)
}

type patternRule struct {
	pattern string
	attr    string
}

// Table is an immutable classification table built from a specification
// string.
type Table struct {
	types    map[string]string
	patterns []patternRule
}

// Parse builds a Table from an LS_COLORS-style specification string.
// An empty string yields an empty table, which resolves everything to the
// terminal default. A rule without '=' or with an unusable glob pattern is
// rejected.
func Parse(spec string) (*Table, error) {
	table := &Table{
		types: make(map[string]string),
	}

	for _, raw := range strings.Split(spec, ":") {
		rule := strings.ReplaceAll(raw, `"`, "")
		if rule == "" {
			continue
		}

		sel, attr, ok := strings.Cut(rule, "=")
		if !ok || sel == "" {
			return nil, &InvalidRuleError{Rule: raw, Reason: "expected selector=attribute"}
		}

		if strings.ContainsAny(sel, "*?[") {
			if _, err := filepath.Match(sel, "probe"); err != nil {
				return nil, &InvalidRuleError{Rule: raw, Reason: err.Error()}
			}
			table.patterns = append(table.patterns, patternRule{pattern: sel, attr: attr})
			continue
		}

		table.types[sel] = attr
	}

	return table, nil
}

// Len returns the number of rules in the table.
func (t *Table) Len() int {
	return len(t.types) + len(t.patterns)
}

// Resolve returns the SGR attribute string for the given entry, or "" when
// the entry should be rendered in the terminal default.
func (t *Table) Resolve(entry Entry) string {
	if entry.Symlink {
		if entry.Orphan {
			if attr, ok := t.types[keyOrphan]; ok {
				return attr
			}
		}
		if attr, ok := t.types[keySymlink]; ok {
			return attr
		}
		if attr, ok := t.types[keyOrphan]; ok {
			return attr
		}
		return ""
	}

	if entry.Dir {
		if entry.Mode&0o002 != 0 {
			if attr, ok := t.types[keyOtherWritable]; ok {
				return attr
			}
		}
		if attr, ok := t.types[keyDir]; ok {
			return attr
		}
		return ""
	}

	if entry.Special {
		// bd stands in for all special files; the walker does not
		// distinguish block from character devices, pipes or sockets.
		if attr, ok := t.types[keyBlockDevice]; ok {
			return attr
		}
		return ""
	}

	if entry.Mode&0o111 != 0 {
		if attr, ok := t.types[keyExecutable]; ok {
			return attr
		}
	}

	for _, rule := range t.patterns {
		if matched, _ := filepath.Match(rule.pattern, entry.Name); matched {
			return rule.attr
		}
	}

	if attr, ok := t.types[keyFile]; ok {
		return attr
	}

	return ""
}
