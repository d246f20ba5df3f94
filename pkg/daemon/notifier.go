package daemon

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/grovetools/focus/errors"
	"github.com/grovetools/focus/pkg/models"
	"github.com/grovetools/focus/pkg/notify"
	"github.com/sirupsen/logrus"
)

// closeWait bounds how long Close waits for outstanding acks.
const closeWait = time.Second

// WSNotifier delivers focus states to the daemon over a single websocket.
// Messages on one connection are processed by the daemon in send order.
// The connection is dialled on first use and again after a failure; a
// failed send is reported and not retried.
type WSNotifier struct {
	socketPath string
	dialer     websocket.Dialer
	logger     *logrus.Entry

	mu     sync.Mutex
	conn   *websocket.Conn
	reader chan struct{}
}

// NewWSNotifier creates a notifier for the daemon on socketPath.
func NewWSNotifier(socketPath string, logger *logrus.Entry) *WSNotifier {
	return &WSNotifier{
		socketPath: socketPath,
		logger:     logger,
		dialer: websocket.Dialer{
			NetDialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", socketPath)
			},
			HandshakeTimeout: 2 * time.Second,
		},
	}
}

// Notify sends state as a FOCUS_STATE message.
func (n *WSNotifier) Notify(ctx context.Context, state models.FocusState) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.conn == nil {
		if err := n.dialLocked(ctx); err != nil {
			return err
		}
	}

	if err := n.conn.WriteJSON(notify.NewMessage(state)); err != nil {
		n.dropLocked()
		return errors.DaemonNotRunning(n.socketPath, err)
	}
	return nil
}

// Close ends the connection after the daemon has answered every message
// already sent, waiting at most closeWait.
func (n *WSNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.conn == nil {
		return nil
	}

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = n.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWait))
	select {
	case <-n.reader:
	case <-time.After(closeWait):
	}
	n.dropLocked()
	return nil
}

func (n *WSNotifier) dialLocked(ctx context.Context) error {
	conn, _, err := n.dialer.DialContext(ctx, "ws://unix/api/ws", nil)
	if err != nil {
		return errors.DaemonNotRunning(n.socketPath, err)
	}
	n.conn = conn
	n.reader = make(chan struct{})
	go n.drain(conn, n.reader)
	return nil
}

// drain reads replies until the connection closes. Error replies are
// logged; acks are discarded.
func (n *WSNotifier) drain(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		var reply struct {
			OK    bool               `json:"ok"`
			Error *errors.FocusError `json:"error"`
		}
		if err := conn.ReadJSON(&reply); err != nil {
			return
		}
		if reply.Error != nil && n.logger != nil {
			n.logger.WithError(reply.Error).Warn("Daemon rejected focus state")
		}
	}
}

func (n *WSNotifier) dropLocked() {
	if n.conn != nil {
		n.conn.Close()
	}
	n.conn = nil
	n.reader = nil
}

var _ notify.Notifier = (*WSNotifier)(nil)
