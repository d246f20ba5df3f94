package daemon

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/grovetools/focus/errors"
	"github.com/grovetools/focus/pkg/models"
	"github.com/grovetools/focus/pkg/notify"
)

// RemoteClient implements Client by calling the daemon's HTTP API over a Unix socket.
type RemoteClient struct {
	httpClient *http.Client
	socketPath string
}

// NewRemoteClient creates a new RemoteClient connected to the daemon socket.
func NewRemoteClient(socketPath string) (*RemoteClient, error) {
	// Create HTTP client that dials Unix socket
	transport := &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", socketPath)
		},
		DisableKeepAlives: false,
		MaxIdleConns:      10,
		IdleConnTimeout:   90 * time.Second,
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   10 * time.Second,
	}

	return &RemoteClient{
		httpClient: client,
		socketPath: socketPath,
	}, nil
}

// baseURL is the dummy host used for Unix socket HTTP requests.
// The actual connection goes through the Unix socket, not this URL.
const baseURL = "http://unix"

// SendMessage posts a wire message and decodes the reply into out.
func (c *RemoteClient) SendMessage(ctx context.Context, msg models.Message, out any) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDaemonProtocol, "failed to encode message")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/message", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// SetFocusState sends a FOCUS_STATE message and waits for the ack.
func (c *RemoteClient) SetFocusState(ctx context.Context, state models.FocusState) error {
	var ack models.Ack
	if err := c.SendMessage(ctx, notify.NewMessage(state), &ack); err != nil {
		return err
	}
	if !ack.OK {
		return errors.New(errors.ErrCodeDaemonProtocol, "daemon did not acknowledge focus state")
	}
	return nil
}

// GetFocusState sends GET_FOCUS_STATE and returns the daemon's answer.
func (c *RemoteClient) GetFocusState(ctx context.Context) (models.StatusResponse, error) {
	var status models.StatusResponse
	err := c.SendMessage(ctx, models.Message{Type: models.MessageGetFocusState}, &status)
	return status, err
}

// Rules returns the installed block rules.
func (c *RemoteClient) Rules(ctx context.Context) (*RulesSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/rules", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	var snap RulesSnapshot
	if err := c.do(req, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Check asks the daemon whether a navigation to target would be blocked.
func (c *RemoteClient) Check(ctx context.Context, target string) (*Decision, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		baseURL+"/api/check?url="+url.QueryEscape(target), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	var d Decision
	if err := c.do(req, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// do executes req and decodes a JSON body. Error bodies from the daemon
// are returned as the FocusError they carry.
func (c *RemoteClient) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.DaemonNotRunning(c.socketPath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Error *errors.FocusError `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&body) == nil && body.Error != nil {
			return body.Error
		}
		return errors.New(errors.ErrCodeDaemonProtocol, fmt.Sprintf("daemon returned status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, errors.ErrCodeDaemonProtocol, "failed to decode daemon response")
	}
	return nil
}

// IsRunning returns true if the daemon is available and responding.
func (c *RemoteClient) IsRunning() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// StreamState subscribes to rule table updates via Server-Sent Events (SSE).
// Returns a channel that receives updates. The channel is closed when the context is cancelled
// or the connection is lost.
func (c *RemoteClient) StreamState(ctx context.Context) (<-chan StateUpdate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/stream", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create stream request: %w", err)
	}

	// Use a separate client with no timeout for streaming
	streamTransport := &http.Transport{
		DialContext: func(dialCtx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(dialCtx, "unix", c.socketPath)
		},
	}
	streamClient := &http.Client{
		Transport: streamTransport,
		Timeout:   0, // No timeout for streaming
	}

	resp, err := streamClient.Do(req)
	if err != nil {
		return nil, errors.DaemonNotRunning(c.socketPath, err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("stream returned status %d", resp.StatusCode)
	}

	ch := make(chan StateUpdate, 10)

	go func() {
		defer resp.Body.Close()
		defer close(ch)
		defer streamTransport.CloseIdleConnections()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()

			// Skip comments and empty lines
			if strings.HasPrefix(line, ":") || line == "" {
				continue
			}

			if strings.HasPrefix(line, "data: ") {
				var update StateUpdate
				if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &update); err != nil {
					continue // Skip malformed data
				}

				select {
				case ch <- update:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}

// Close cleans up any resources used by the client.
func (c *RemoteClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// Ensure RemoteClient implements Client interface.
var _ Client = (*RemoteClient)(nil)
