package logutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindLatestLogFile(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		want    string
		wantErr bool
	}{
		{
			name: "newest date wins",
			files: map[string]string{
				"focusd-2026-09-30.log": "a",
				"focusd-2026-10-15.log": "b",
				"focusd-2026-10-01.log": "c",
			},
			want: "focusd-2026-10-15.log",
		},
		{
			name: "non-empty preferred",
			files: map[string]string{
				"focusd-2026-10-14.log": "a",
				"focusd-2026-10-15.log": "",
			},
			want: "focusd-2026-10-14.log",
		},
		{
			name: "other components ignored",
			files: map[string]string{
				"focusd-2026-10-01.log":      "a",
				"focusd-test-2026-10-20.log": "b",
				"focus-cli-2026-10-20.log":   "c",
			},
			want: "focusd-2026-10-01.log",
		},
		{
			name:    "nothing matches",
			files:   map[string]string{"focus-cli-2026-10-20.log": "c"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, content := range tt.files {
				require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
			}

			got, err := FindLatestLogFile(dir, "focusd")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, tt.want), got)
		})
	}
}

func TestFindLatestLogFileMissingDir(t *testing.T) {
	_, err := FindLatestLogFile(filepath.Join(t.TempDir(), "nope"), "focusd")
	assert.Error(t, err)
}
