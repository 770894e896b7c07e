// Package memory keeps per-session short-term conversation history in
// process. Durable history lives in the database; this cache answers
// history reads for recent sessions without a round trip.
package memory

import (
	"sync"
	"time"
)

// Message represents a chat message in short-term memory
type Message struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type sessionMemory struct {
	messages []Message
	mu       sync.RWMutex
}

// Manager keeps short-term history per chat session
type Manager struct {
	sessions map[string]*sessionMemory
	maxSize  int
	mu       sync.RWMutex
}

// NewManager creates a manager keeping up to maxSize messages per session
func NewManager(maxSize int) *Manager {
	return &Manager{
		sessions: make(map[string]*sessionMemory),
		maxSize:  maxSize,
	}
}

// AddMessage appends a message to the session's history
func (m *Manager) AddMessage(sessionID string, msg Message) {
	m.mu.Lock()
	sess, exists := m.sessions[sessionID]
	if !exists {
		sess = &sessionMemory{messages: make([]Message, 0, m.maxSize)}
		m.sessions[sessionID] = sess
	}
	m.mu.Unlock()

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.messages = append(sess.messages, msg)

	// Keep only the most recent maxSize messages
	if len(sess.messages) > m.maxSize {
		sess.messages = sess.messages[len(sess.messages)-m.maxSize:]
	}
}

// History returns a copy of the session's recent messages, oldest first
func (m *Manager) History(sessionID string) []Message {
	m.mu.RLock()
	sess, exists := m.sessions[sessionID]
	m.mu.RUnlock()

	if !exists {
		return []Message{}
	}

	sess.mu.RLock()
	defer sess.mu.RUnlock()

	history := make([]Message, len(sess.messages))
	copy(history, sess.messages)
	return history
}

// Clear drops the session's history
func (m *Manager) Clear(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}
