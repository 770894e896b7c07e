package db

import (
	"context"
	"database/sql"
	"fmt"
)

// GetOrCreateConversation returns the conversation for a session,
// creating it on first use
func (db *DB) GetOrCreateConversation(ctx context.Context, sessionID string) (*Conversation, error) {
	query := `
		INSERT INTO conversations (session_id)
		VALUES ($1)
		ON CONFLICT (session_id)
		DO UPDATE SET last_activity = NOW()
		RETURNING id, session_id, created_at, last_activity
	`

	var c Conversation
	err := db.QueryRowContext(ctx, query, sessionID).Scan(
		&c.ID, &c.SessionID, &c.CreatedAt, &c.LastActivity,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create conversation: %w", err)
	}
	return &c, nil
}

// AddMessage appends a message to a session's conversation
func (db *DB) AddMessage(ctx context.Context, sessionID, role, content, metadata string) (*Message, error) {
	conv, err := db.GetOrCreateConversation(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO messages (conversation_id, role, content, metadata)
		VALUES ($1, $2, $3, $4)
		RETURNING id, conversation_id, role, content, COALESCE(metadata, ''), created_at
	`

	var m Message
	err = db.QueryRowContext(ctx, query, conv.ID, role, content, nullIfEmpty(metadata)).Scan(
		&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.Metadata, &m.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add message: %w", err)
	}
	return &m, nil
}

// GetHistory returns the last N messages for a session in
// chronological order
func (db *DB) GetHistory(ctx context.Context, sessionID string, limit int) ([]Message, error) {
	query := `
		SELECT m.id, m.conversation_id, m.role, m.content, COALESCE(m.metadata, ''), m.created_at
		FROM messages m
		JOIN conversations c ON c.id = m.conversation_id
		WHERE c.session_id = $1
		ORDER BY m.created_at DESC
		LIMIT $2
	`

	rows, err := db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	messages := make([]Message, 0, limit)
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.Metadata, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	// Reverse to chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// ClearConversation removes a session's conversation and messages.
// Returns false when no conversation existed.
func (db *DB) ClearConversation(ctx context.Context, sessionID string) (bool, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM conversations WHERE session_id = $1`, sessionID)
	if err != nil {
		return false, fmt.Errorf("failed to clear conversation: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
