package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"mcp-document-service/internal/models"
	"mcp-document-service/pkg/errors"
)

// ErrSessionNotFound is returned when a routed message names a session
// that was never opened or has been closed.
var ErrSessionNotFound = errors.NewSessionError(errors.ErrCodeSessionNotFound,
	"session not found", nil)

// sessionEventBuffer bounds the per-session outbound queue. A client
// that stops draining its stream loses events rather than blocking the
// message handler.
const sessionEventBuffer = 32

// Session is one HTTP/SSE client connection. Each session gets its own
// server instance so initialization handshakes stay independent, while
// the registry and inventory remain shared.
type Session struct {
	ID        string
	CreatedAt time.Time

	srv    *MCPServer
	events chan *models.MCPMessage

	mu     sync.Mutex
	closed bool
}

// Events is the outbound stream of responses for this session.
func (sess *Session) Events() <-chan *models.MCPMessage {
	return sess.events
}

// push queues a message for the session stream, dropping it when the
// client is not draining. The mutex serializes push against shutdown:
// a request routed just before its connection dropped must not send on
// the closed stream.
func (sess *Session) push(message *models.MCPMessage) bool {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return false
	}
	select {
	case sess.events <- message:
		return true
	default:
		return false
	}
}

// shutdown releases the stream. Idempotent; holds the same mutex as
// push so no send can race the close.
func (sess *Session) shutdown() {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return
	}
	sess.closed = true
	close(sess.events)
}

// SessionManager owns the session table for the HTTP/SSE transport.
type SessionManager struct {
	root     *MCPServer
	sessions map[string]*Session
	mu       sync.RWMutex
}

// NewSessionManager creates a session manager deriving sessions from
// the given root server.
func NewSessionManager(root *MCPServer) *SessionManager {
	return &SessionManager{
		root:     root,
		sessions: make(map[string]*Session),
	}
}

// Open creates a session with a time-ordered unique identifier.
func (sm *SessionManager) Open() *Session {
	session := &Session{
		ID:        uuid.Must(uuid.NewV7()).String(),
		CreatedAt: time.Now(),
		srv:       sm.root.derive("session"),
		events:    make(chan *models.MCPMessage, sessionEventBuffer),
	}

	sm.mu.Lock()
	sm.sessions[session.ID] = session
	count := len(sm.sessions)
	sm.mu.Unlock()

	sm.root.logger.LogSessionEvent("session_opened", session.ID, count)
	return session
}

// Close removes a session and releases its stream. Closing an unknown
// or already closed session is a no-op.
func (sm *SessionManager) Close(id string) {
	sm.mu.Lock()
	session, ok := sm.sessions[id]
	if ok {
		delete(sm.sessions, id)
	}
	count := len(sm.sessions)
	sm.mu.Unlock()

	if !ok {
		return
	}
	session.shutdown()
	sm.root.logger.LogSessionEvent("session_closed", id, count)
}

// Get looks up an open session.
func (sm *SessionManager) Get(id string) (*Session, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	session, ok := sm.sessions[id]
	return session, ok
}

// Count reports the number of open sessions.
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// Route dispatches a message to the named session's server and mirrors
// the response onto the session stream. A nil response means the
// message was a notification.
func (sm *SessionManager) Route(id string, message *models.MCPMessage) (*models.MCPMessage, error) {
	session, ok := sm.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}

	response := session.srv.handleMessage(message)
	if response != nil {
		if !session.push(response) {
			sm.root.logger.WithContext("session_id", id).
				Warn("Session stream unavailable, response not mirrored")
		}
	}
	return response, nil
}

// CloseAll tears down every open session.
func (sm *SessionManager) CloseAll() {
	sm.mu.Lock()
	ids := make([]string, 0, len(sm.sessions))
	for id := range sm.sessions {
		ids = append(ids, id)
	}
	sm.mu.Unlock()

	for _, id := range ids {
		sm.Close(id)
	}
}
