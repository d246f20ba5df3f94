package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/grovetools/focus/internal/daemon/store"
	"github.com/grovetools/focus/internal/daemon/translator"
	"github.com/grovetools/focus/pkg/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	entry := logrus.NewEntry(logger)

	rules := store.New()
	srv := New(entry, translator.New(rules, entry), rules)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, rules
}

func postMessage(t *testing.T, ts *httptest.Server, msg models.Message) *http.Response {
	t.Helper()
	body, err := json.Marshal(msg)
	require.NoError(t, err)
	resp, err := http.Post(ts.URL+"/api/message", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMessageRoundTrip(t *testing.T) {
	ts, rules := newTestServer(t)

	resp := postMessage(t, ts, models.Message{Type: models.MessageGetFocusState})
	var status models.StatusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.False(t, status.Active)

	resp = postMessage(t, ts, models.Message{
		Type:         models.MessageFocusState,
		Active:       true,
		BlockedSites: []string{"foo.com"},
	})
	var ack models.Ack
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ack))
	assert.True(t, ack.OK)
	assert.Equal(t, []int{1, 2}, rules.IDs())

	resp = postMessage(t, ts, models.Message{Type: models.MessageGetFocusState})
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.True(t, status.Active)
}

func TestMessageRejectsBadInput(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postMessage(t, ts, models.Message{Type: "NOPE"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var er ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&er))
	assert.Equal(t, "DAEMON_PROTOCOL", string(er.Error.Code))

	bad, err := http.Post(ts.URL+"/api/message", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)

	get, err := http.Get(ts.URL + "/api/message")
	require.NoError(t, err)
	defer get.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, get.StatusCode)
}

func TestWebSocketOrdering(t *testing.T) {
	ts, rules := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	msgs := []models.Message{
		{Type: models.MessageFocusState, Active: true, BlockedSites: []string{"a.com", "b.com"}},
		{Type: models.MessageFocusState, Active: true, BlockedSites: []string{"c.com"}},
		{Type: models.MessageGetFocusState},
		{Type: models.MessageFocusState, Active: false},
		{Type: models.MessageGetFocusState},
	}
	for _, m := range msgs {
		require.NoError(t, conn.WriteJSON(m))
	}

	var replies []map[string]any
	for range msgs {
		var reply map[string]any
		require.NoError(t, conn.ReadJSON(&reply))
		replies = append(replies, reply)
	}

	assert.Equal(t, true, replies[0]["ok"])
	assert.Equal(t, true, replies[1]["ok"])
	assert.Equal(t, true, replies[2]["active"])
	assert.Equal(t, true, replies[3]["ok"])
	assert.Equal(t, false, replies[4]["active"])
	assert.Empty(t, rules.IDs())
}

func TestRulesAndCheck(t *testing.T) {
	ts, _ := newTestServer(t)
	postMessage(t, ts, models.Message{
		Type:         models.MessageFocusState,
		Active:       true,
		BlockedSites: []string{"YouTube.com"},
	})

	resp, err := http.Get(ts.URL + "/api/rules")
	require.NoError(t, err)
	defer resp.Body.Close()
	var rr RulesResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rr))
	assert.True(t, rr.Active)
	require.Len(t, rr.Rules, 2)
	assert.Equal(t, "*://youtube.com/*", rr.Rules[0].Condition.URLFilter)

	tests := []struct {
		target  string
		blocked bool
	}{
		{"https://www.youtube.com/watch", true},
		{"https://youtube.com", true},
		{"https://example.org", false},
	}
	for _, tt := range tests {
		resp, err := http.Get(ts.URL + "/api/check?url=" + url.QueryEscape(tt.target))
		require.NoError(t, err)
		var d store.Decision
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&d))
		resp.Body.Close()
		assert.Equal(t, tt.blocked, d.Blocked, tt.target)
	}

	missing, err := http.Get(ts.URL + "/api/check")
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusBadRequest, missing.StatusCode)
}

func TestStream(t *testing.T) {
	ts, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := make(chan store.Update, 10)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			var u store.Update
			if json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &u) == nil {
				events <- u
			}
		}
	}()

	next := func() store.Update {
		select {
		case u := <-events:
			return u
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for stream event")
			return store.Update{}
		}
	}

	initial := next()
	assert.Equal(t, store.UpdateRules, initial.Type)
	assert.Empty(t, initial.Rules)

	postMessage(t, ts, models.Message{
		Type:         models.MessageFocusState,
		Active:       true,
		BlockedSites: []string{"a.com"},
	})

	focus := next()
	assert.Equal(t, store.UpdateFocus, focus.Type)
	assert.True(t, focus.Active)

	installed := next()
	assert.Equal(t, store.UpdateRules, installed.Type)
	assert.Equal(t, 2, installed.Added)
}
