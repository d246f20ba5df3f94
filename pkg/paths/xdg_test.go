package paths

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFocusHomeOverride(t *testing.T) {
	root := t.TempDir()
	t.Setenv("FOCUS_HOME", root)

	assert.Equal(t, filepath.Join(root, "config"), ConfigDir())
	assert.Equal(t, filepath.Join(root, "state"), StateDir())
	assert.Equal(t, filepath.Join(root, "run", "focusd.sock"), SocketPath())
	assert.Equal(t, filepath.Join(root, "state", "focusd.pid"), PidFilePath())
	assert.Equal(t, filepath.Join(root, "state", "store.db"), StorePath("sqlite"))
	assert.Equal(t, filepath.Join(root, "state", "store.yml"), StorePath("file"))
}

func TestXDGFallback(t *testing.T) {
	t.Setenv("FOCUS_HOME", "")
	t.Setenv("XDG_STATE_HOME", "/xdg/state")
	t.Setenv("XDG_RUNTIME_DIR", "")

	assert.Equal(t, "/xdg/state/focus", StateDir())
	assert.Equal(t, "/xdg/state/focus", RuntimeDir())
	assert.True(t, strings.HasPrefix(LogFilePath("focusd"), "/xdg/state/focus/logs/focusd-"))
}
