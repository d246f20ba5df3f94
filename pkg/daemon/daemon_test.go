package daemon

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/grovetools/focus/errors"
	"github.com/grovetools/focus/internal/daemon/store"
	"github.com/grovetools/focus/pkg/models"
	"github.com/grovetools/focus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startDaemon runs a daemon server on a fresh unix socket.
func startDaemon(t *testing.T) (string, *store.Store) {
	t.Helper()
	d := testutil.StartDaemon(t, "")
	require.Eventually(t, func() bool { return Reachable(d.Socket) }, 2*time.Second, 10*time.Millisecond)
	return d.Socket, d.Rules
}

func TestRemoteClient(t *testing.T) {
	socket, _ := startDaemon(t)
	ctx := context.Background()

	client := NewAt(socket)
	defer client.Close()
	require.IsType(t, &RemoteClient{}, client)
	assert.True(t, client.IsRunning())

	status, err := client.GetFocusState(ctx)
	require.NoError(t, err)
	assert.False(t, status.Active)

	require.NoError(t, client.SetFocusState(ctx, models.FocusState{
		Active:       true,
		TaskID:       "t1",
		StartTime:    1000,
		BlockedSites: []string{"foo.com", "bar.com"},
	}))

	status, err = client.GetFocusState(ctx)
	require.NoError(t, err)
	assert.True(t, status.Active)

	snap, err := client.Rules(ctx)
	require.NoError(t, err)
	assert.True(t, snap.Active)
	assert.Len(t, snap.Rules, 4)

	d, err := client.Check(ctx, "https://news.bar.com/today")
	require.NoError(t, err)
	assert.True(t, d.Blocked)
	assert.Equal(t, 4, d.RuleID)

	_, err = client.Check(ctx, "https://")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestStreamState(t *testing.T) {
	socket, _ := startDaemon(t)
	client, err := NewRemoteClient(socket)
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := client.StreamState(ctx)
	require.NoError(t, err)

	initial := <-ch
	assert.Equal(t, "rules", initial.UpdateType)

	require.NoError(t, client.SetFocusState(context.Background(), models.FocusState{
		Active:       true,
		BlockedSites: []string{"a.com"},
	}))

	var got []StateUpdate
	require.Eventually(t, func() bool {
		select {
		case u := <-ch:
			got = append(got, u)
		default:
		}
		return len(got) >= 2
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "focus", got[0].UpdateType)
	assert.Equal(t, "rules", got[1].UpdateType)
	assert.Len(t, got[1].Rules, 2)
}

func TestWSNotifier(t *testing.T) {
	socket, rules := startDaemon(t)
	ctx := context.Background()

	n := NewWSNotifier(socket, testutil.QuietLogger())
	require.NoError(t, n.Notify(ctx, models.FocusState{Active: true, BlockedSites: []string{"a.com", "b.com"}}))
	require.NoError(t, n.Notify(ctx, models.FocusState{Active: true, BlockedSites: []string{"c.com"}}))
	require.NoError(t, n.Close())

	// Close waits for the daemon to answer everything sent.
	assert.Equal(t, []int{1, 2}, rules.IDs())
	d, err := rules.Match("https://c.com", models.ResourceMainFrame)
	require.NoError(t, err)
	assert.True(t, d.Blocked)

	// The notifier redials after Close.
	require.NoError(t, n.Notify(ctx, models.FocusState{}))
	require.NoError(t, n.Close())
	assert.Empty(t, rules.IDs())
	assert.False(t, rules.Active())
}

func TestWSNotifierWithoutDaemon(t *testing.T) {
	n := NewWSNotifier(filepath.Join(t.TempDir(), "missing.sock"), testutil.QuietLogger())
	err := n.Notify(context.Background(), models.FocusState{Active: true})
	assert.True(t, errors.Is(err, errors.ErrCodeDaemonNotRunning))
	assert.NoError(t, n.Close())
}

func TestOfflineFallback(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "missing.sock")
	client := NewAt(socket)
	require.IsType(t, &OfflineClient{}, client)
	assert.False(t, client.IsRunning())

	status, err := client.GetFocusState(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Active)

	err = client.SetFocusState(context.Background(), models.FocusState{})
	assert.True(t, errors.Is(err, errors.ErrCodeDaemonNotRunning))

	_, err = MustConnect(socket)
	assert.True(t, errors.Is(err, errors.ErrCodeDaemonNotRunning))
}
