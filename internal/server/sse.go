package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"mcp-document-service/internal/models"
	"mcp-document-service/pkg/config"
	"mcp-document-service/pkg/logging"
)

// pingInterval is how often idle SSE streams receive a keep-alive event.
const pingInterval = 15 * time.Second

// HTTPServer binds the MCP server to the HTTP/SSE transport. A GET on
// the SSE path opens a session and streams its events; POSTs on the
// message path carry the JSON-RPC requests for that session.
type HTTPServer struct {
	cfg      config.HTTPConfig
	root     *MCPServer
	sessions *SessionManager
	logger   *logging.StructuredLogger

	httpServer *http.Server
}

// NewHTTPServer creates the HTTP/SSE binding around a bootstrapped
// server.
func NewHTTPServer(root *MCPServer) *HTTPServer {
	hs := &HTTPServer{
		cfg:      root.cfg.HTTP,
		root:     root,
		sessions: NewSessionManager(root),
		logger:   root.loggingManager.GetLogger("http"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(hs.cfg.SSEPath, hs.handleSSE)
	mux.HandleFunc(hs.cfg.MessagePath, hs.handleMessages)
	mux.HandleFunc(hs.cfg.HealthPath, hs.handleHealth)
	mux.HandleFunc("/", hs.handleRoot)

	hs.httpServer = &http.Server{
		Addr:    hs.cfg.Addr,
		Handler: mux,
	}
	return hs
}

// Sessions exposes the session table.
func (hs *HTTPServer) Sessions() *SessionManager {
	return hs.sessions
}

// Handler returns the HTTP handler, used directly in tests.
func (hs *HTTPServer) Handler() http.Handler {
	return hs.httpServer.Handler
}

// Run serves until the context is canceled, then drains sessions and
// shuts the listener down.
func (hs *HTTPServer) Run(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		hs.logger.WithContext("addr", hs.cfg.Addr).Info("HTTP transport listening")
		if err := hs.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	hs.sessions.CloseAll()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return hs.httpServer.Shutdown(shutdownCtx)
}

// handleSSE opens a session and streams its responses as SSE events.
// The first event tells the client where to POST messages for this
// session.
func (hs *HTTPServer) handleSSE(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	session := hs.sessions.Open()
	defer hs.sessions.Close(session.ID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	endpoint := fmt.Sprintf("%s?sessionId=%s", hs.cfg.MessagePath, session.ID)
	if _, err := fmt.Fprintf(w, "event: endpoint\ndata: %s\n\n", endpoint); err != nil {
		return
	}
	flusher.Flush()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case message, open := <-session.Events():
			if !open {
				return
			}
			payload, err := json.Marshal(message)
			if err != nil {
				hs.logger.WithError(err).Error("Failed to encode stream message")
				continue
			}
			if _, err := fmt.Fprintf(w, "event: message\ndata: %s\n\n", payload); err != nil {
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, "event: ping\ndata: {}\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

// handleMessages accepts one JSON-RPC message per POST and routes it to
// the session named in the query string. The response is returned in
// the POST body and mirrored onto the session stream.
func (hs *HTTPServer) handleMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()

	defer func() {
		if rec := recover(); rec != nil {
			hs.logger.WithContext("panic", fmt.Sprintf("%v", rec)).
				Error("Recovered panic in message handler")
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
	}()

	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		http.Error(w, "missing sessionId", http.StatusBadRequest)
		return
	}

	var message models.MCPMessage
	if err := json.NewDecoder(r.Body).Decode(&message); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}

	response, err := hs.sessions.Route(sessionID, &message)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if response == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		hs.logger.WithError(err).Error("Failed to write response body")
	}
}

// handleHealth reports liveness plus a snapshot of the server state.
func (hs *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":        "ok",
		"service":       config.ServiceName,
		"version":       config.ServiceVersion,
		"pid":           os.Getpid(),
		"open_sessions": hs.sessions.Count(),
		"tools":         hs.root.registry.Names(),
		"documents":     hs.root.inventory.Size(),
		"timestamp":     time.Now().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		hs.logger.WithError(err).Error("Failed to write health response")
	}
}

// handleRoot describes the service and its endpoints.
func (hs *HTTPServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	info := map[string]interface{}{
		"name":        config.ServiceName,
		"version":     config.ServiceVersion,
		"description": config.ServiceDescription,
		"endpoints": map[string]string{
			"sse":      hs.cfg.SSEPath,
			"messages": hs.cfg.MessagePath + "?sessionId=<id>",
			"health":   hs.cfg.HealthPath,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(info); err != nil {
		hs.logger.WithError(err).Error("Failed to write service description")
	}
}
