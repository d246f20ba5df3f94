package daemon

import (
	"context"

	"github.com/grovetools/focus/errors"
	"github.com/grovetools/focus/pkg/models"
)

// OfflineClient implements Client when the daemon is not running.
// Status queries report focus as off, since nothing is being enforced;
// everything else fails with DAEMON_NOT_RUNNING.
type OfflineClient struct {
	socketPath string
}

// NewOfflineClient creates an OfflineClient for the given socket path.
func NewOfflineClient(socketPath string) *OfflineClient {
	return &OfflineClient{socketPath: socketPath}
}

func (c *OfflineClient) notRunning() error {
	return errors.DaemonNotRunning(c.socketPath, nil)
}

// SetFocusState always fails: there is no daemon to receive it.
func (c *OfflineClient) SetFocusState(ctx context.Context, state models.FocusState) error {
	return c.notRunning()
}

// GetFocusState reports focus as off.
func (c *OfflineClient) GetFocusState(ctx context.Context) (models.StatusResponse, error) {
	return models.StatusResponse{Active: false}, nil
}

// Rules fails with DAEMON_NOT_RUNNING.
func (c *OfflineClient) Rules(ctx context.Context) (*RulesSnapshot, error) {
	return nil, c.notRunning()
}

// Check fails with DAEMON_NOT_RUNNING.
func (c *OfflineClient) Check(ctx context.Context, url string) (*Decision, error) {
	return nil, c.notRunning()
}

// StreamState fails with DAEMON_NOT_RUNNING.
func (c *OfflineClient) StreamState(ctx context.Context) (<-chan StateUpdate, error) {
	return nil, c.notRunning()
}

// IsRunning always returns false.
func (c *OfflineClient) IsRunning() bool { return false }

// Close is a no-op.
func (c *OfflineClient) Close() error { return nil }

// Ensure OfflineClient implements Client interface.
var _ Client = (*OfflineClient)(nil)
