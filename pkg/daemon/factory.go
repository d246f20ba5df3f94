package daemon

import (
	"net"
	"os"
	"time"

	"github.com/grovetools/focus/errors"
	"github.com/grovetools/focus/pkg/paths"
)

// New returns a Client for the daemon at the default socket path.
func New() Client {
	return NewAt(paths.SocketPath())
}

// NewAt returns a RemoteClient if a daemon answers on socketPath,
// otherwise an OfflineClient.
//
// Callers don't need to know whether the daemon is running: status
// queries work in both modes.
func NewAt(socketPath string) Client {
	if Reachable(socketPath) {
		if client, err := NewRemoteClient(socketPath); err == nil {
			return client
		}
	}
	return NewOfflineClient(socketPath)
}

// Reachable reports whether something accepts connections on socketPath.
func Reachable(socketPath string) bool {
	if _, err := os.Stat(socketPath); err != nil {
		return false
	}
	conn, err := net.DialTimeout("unix", socketPath, 100*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// MustConnect returns a Client connected to a running daemon, or a
// DAEMON_NOT_RUNNING error. Use it where the daemon is required.
func MustConnect(socketPath string) (Client, error) {
	client := NewAt(socketPath)
	if !client.IsRunning() {
		return nil, errors.DaemonNotRunning(socketPath, nil)
	}
	return client, nil
}
