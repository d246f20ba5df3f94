// Package server provides the HTTP server for the focus daemon.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gorilla/websocket"
	"github.com/grovetools/focus/errors"
	"github.com/grovetools/focus/internal/daemon/store"
	"github.com/grovetools/focus/internal/daemon/translator"
	"github.com/grovetools/focus/pkg/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// RulesResponse is returned by /api/rules.
type RulesResponse struct {
	Active    bool               `json:"active"`
	Rules     []models.BlockRule `json:"rules"`
	StartedAt time.Time          `json:"started_at"`
}

// ErrorResponse is the body of failed requests and websocket replies.
type ErrorResponse struct {
	Error *errors.FocusError `json:"error"`
}

// Server manages the daemon's HTTP server over a Unix socket.
type Server struct {
	logger     *logrus.Entry
	server     *http.Server
	translator *translator.Translator
	rules      *store.Store
	upgrader   websocket.Upgrader
	startedAt  time.Time
}

// New creates a new Server answering from tr and exposing the rule table.
func New(logger *logrus.Entry, tr *translator.Translator, rules *store.Store) *Server {
	s := &Server{
		logger:     logger,
		translator: tr,
		rules:      rules,
		upgrader: websocket.Upgrader{
			// Only local processes can reach the socket.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		startedAt: time.Now(),
	}
	s.server = &http.Server{Handler: s.Handler()}
	return s
}

// Handler returns the daemon's routes wrapped for cleartext HTTP/2.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/api/message", s.handleMessage)
	mux.HandleFunc("/api/ws", s.handleWebSocket)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/rules", s.handleRules)
	mux.HandleFunc("/api/check", s.handleCheck)
	mux.HandleFunc("/api/stream", s.handleStream)

	return h2c.NewHandler(mux, &http2.Server{})
}

// ListenAndServe starts the daemon on the given unix socket path.
// It blocks until the server stops or fails.
func (s *Server) ListenAndServe(socketPath string) error {
	// Cleanup stale socket
	if _, err := os.Stat(socketPath); err == nil {
		if err := os.Remove(socketPath); err != nil {
			return fmt.Errorf("failed to remove stale socket: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(socketPath), 0755); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on socket: %w", err)
	}

	// Set restrictive permissions on socket
	if err := os.Chmod(socketPath, 0600); err != nil {
		_ = listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	return s.Serve(listener)
}

// Serve accepts connections on listener until Shutdown is called.
func (s *Server) Serve(listener net.Listener) error {
	s.logger.WithField("addr", listener.Addr().String()).Info("Daemon listening")
	err := s.server.Serve(listener)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	return s.server.Shutdown(ctx)
}

// dispatch runs a message through the translator. Rule installation is not
// tied to the lifetime of the request that carried it.
func (s *Server) dispatch(ctx context.Context, msg models.Message) (any, error) {
	s.logger.WithFields(logrus.Fields{
		"type":   msg.Type,
		"active": msg.Active,
	}).Debug("Message received")
	return s.translator.Handle(context.WithoutCancel(ctx), msg)
}

// handleMessage answers one POSTed message.
func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var msg models.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, errors.ErrCodeDaemonProtocol, "invalid message body"))
		return
	}

	reply, err := s.dispatch(r.Context(), msg)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// handleWebSocket processes messages from one connection in order and
// writes one reply per message.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	s.logger.Debug("WebSocket client connected")
	for {
		var msg models.Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.WithError(err).Debug("WebSocket read failed")
			}
			s.logger.Debug("WebSocket client disconnected")
			return
		}

		reply, err := s.dispatch(r.Context(), msg)
		if err != nil {
			reply = errorResponse(err)
		}
		if err := conn.WriteJSON(reply); err != nil {
			s.logger.WithError(err).Debug("WebSocket write failed")
			return
		}
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.translator.Status())
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, RulesResponse{
		Active:    s.translator.Status().Active,
		Rules:     s.rules.Rules(),
		StartedAt: s.startedAt,
	})
}

// handleCheck reports whether a navigation would be blocked right now.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if target == "" {
		writeError(w, http.StatusBadRequest, errors.InvalidInput("url parameter is required"))
		return
	}
	resourceType := r.URL.Query().Get("type")
	if resourceType == "" {
		resourceType = models.ResourceMainFrame
	}

	decision, err := s.rules.Match(target, resourceType)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, decision)
}

// handleStream provides Server-Sent Events (SSE) for rule table changes.
// The current table is sent first so clients have data right away.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	// Ensure the connection supports flushing
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.rules.Subscribe()
	defer s.rules.Unsubscribe(ch)

	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	s.logger.Debug("SSE client connected")

	initial := store.Update{
		Type:   store.UpdateRules,
		Active: s.rules.Active(),
		Rules:  s.rules.Rules(),
	}
	if data, err := json.Marshal(initial); err == nil {
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected")
			return
		case update, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(update)
			if err != nil {
				s.logger.WithError(err).Error("Failed to marshal update")
				continue
			}
			// SSE format: "data: {json}\n\n"
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse(err))
}

func errorResponse(err error) ErrorResponse {
	if fe, ok := err.(*errors.FocusError); ok {
		return ErrorResponse{Error: fe}
	}
	return ErrorResponse{Error: errors.Wrap(err, errors.ErrCodeInternal, err.Error())}
}
