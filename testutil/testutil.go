// Package testutil holds helpers shared by focus tests.
package testutil

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/grovetools/focus/internal/daemon/server"
	"github.com/grovetools/focus/internal/daemon/store"
	"github.com/grovetools/focus/internal/daemon/translator"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// ShortTempDir creates a temporary directory under the system temp root,
// removed when the test ends. Unix socket paths are length-limited, and
// t.TempDir nests too deeply on some systems.
func ShortTempDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "focus")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

// QuietLogger returns a logger that discards everything.
func QuietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// Daemon is a focus daemon running inside a test.
type Daemon struct {
	Socket string
	Rules  *store.Store
}

// StartDaemon runs a daemon on socketPath, or on a fresh socket when
// socketPath is empty, and waits until it accepts connections.
func StartDaemon(t *testing.T, socketPath string) *Daemon {
	t.Helper()
	if socketPath == "" {
		socketPath = filepath.Join(ShortTempDir(t), "d.sock")
	}

	logger := QuietLogger()
	rules := store.New()
	srv := server.New(logger, translator.New(rules, logger), rules)

	go func() { _ = srv.ListenAndServe(socketPath) }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})

	require.Eventually(t, func() bool {
		_, err := os.Stat(socketPath)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	return &Daemon{Socket: socketPath, Rules: rules}
}
