package colors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		spec        string
		wantLen     int
		wantErr     bool
		errContains string
	}{
		{
			name:    "empty spec",
			spec:    "",
			wantLen: 0,
		},
		{
			name:    "type and pattern rules",
			spec:    "di=01;34:ln=01;36:*.mp3=00;36",
			wantLen: 3,
		},
		{
			name:    "quoted values are unwrapped",
			spec:    `di="01;34"`,
			wantLen: 1,
		},
		{
			name:    "trailing colon ignored",
			spec:    "di=01;34:",
			wantLen: 1,
		},
		{
			name:        "rule without separator",
			spec:        "di01;34",
			wantErr:     true,
			errContains: "selector=attribute",
		},
		{
			name:        "empty selector",
			spec:        "=31",
			wantErr:     true,
			errContains: "selector=attribute",
		},
		{
			name:        "malformed glob",
			spec:        "*.[=31",
			wantErr:     true,
			errContains: "invalid color rule",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Parse(tt.spec)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLen, table.Len())
		})
	}
}

func TestResolveTypePrecedence(t *testing.T) {
	table, err := Parse("di=dircode:ln=linkcode:or=orphcode:ex=execode:ow=owcode:fi=ficode:bd=bdcode:*.go=gocode")
	require.NoError(t, err)

	tests := []struct {
		name  string
		entry Entry
		want  string
	}{
		{
			name:  "directory resolves by type, never by name",
			entry: Entry{Name: "music.go", Dir: true},
			want:  "dircode",
		},
		{
			name:  "other-writable directory wins over plain directory",
			entry: Entry{Name: "tmp", Dir: true, Mode: 0o777},
			want:  "owcode",
		},
		{
			name:  "symlink resolves by type",
			entry: Entry{Name: "link.go", Symlink: true},
			want:  "linkcode",
		},
		{
			name:  "orphan symlink",
			entry: Entry{Name: "dangling", Symlink: true, Orphan: true},
			want:  "orphcode",
		},
		{
			name:  "executable wins over extension",
			entry: Entry{Name: "tool.go", Mode: 0o755},
			want:  "execode",
		},
		{
			name:  "extension match",
			entry: Entry{Name: "main.go", Mode: 0o644},
			want:  "gocode",
		},
		{
			name:  "plain file falls back to fi",
			entry: Entry{Name: "README", Mode: 0o644},
			want:  "ficode",
		},
		{
			name:  "special file",
			entry: Entry{Name: "sda", Special: true},
			want:  "bdcode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, table.Resolve(tt.entry))
		})
	}
}

func TestResolveFirstMatchWins(t *testing.T) {
	// Specification order decides between overlapping patterns.
	table, err := Parse("*.txt=31:*=32")
	require.NoError(t, err)

	assert.Equal(t, "31", table.Resolve(Entry{Name: "a.txt"}))
	assert.Equal(t, "32", table.Resolve(Entry{Name: "a.log"}))

	reversed, err := Parse("*=32:*.txt=31")
	require.NoError(t, err)

	assert.Equal(t, "32", reversed.Resolve(Entry{Name: "a.txt"}))
}

func TestResolveEmptyTable(t *testing.T) {
	table, err := Parse("")
	require.NoError(t, err)

	assert.Empty(t, table.Resolve(Entry{Name: "file.txt"}))
	assert.Empty(t, table.Resolve(Entry{Name: "dir", Dir: true}))
	assert.Empty(t, table.Resolve(Entry{Name: "ln", Symlink: true}))
}

func TestResolveSymlinkFallsBackToOrphan(t *testing.T) {
	table, err := Parse("or=orphcode")
	require.NoError(t, err)

	// No ln rule: a healthy symlink still picks up the or attribute,
	// matching how the original tool degrades.
	assert.Equal(t, "orphcode", table.Resolve(Entry{Name: "link", Symlink: true}))
}
