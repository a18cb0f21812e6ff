package session

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/polyglot-agents/webkernel/core/protocol"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS messages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	tool_call_id TEXT NOT NULL DEFAULT '',
	tool_calls TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, id);
`

// sqliteSession keeps the working history in memory and mirrors every
// append into SQLite. Reads never touch the database after open; write
// failures are carried until Close so AddMessage stays non-blocking for
// the runtime loop.
type sqliteSession struct {
	id       string
	db       *sql.DB
	mu       sync.RWMutex
	messages []protocol.Message
	writeErr error
}

// NewSQLiteSession opens (creating if needed) the database at path and
// returns a fresh session persisting its history there.
func NewSQLiteSession(path string) (Session, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	return &sqliteSession{
		id: uuid.Must(uuid.NewV7()).String(),
		db: db,
	}, nil
}

// ResumeSQLiteSession reopens an existing session by ID, loading its
// persisted history.
func ResumeSQLiteSession(path, id string) (Session, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(
		`SELECT role, content, tool_call_id, tool_calls FROM messages WHERE session_id = ? ORDER BY id ASC`,
		id,
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	defer rows.Close()

	var messages []protocol.Message
	for rows.Next() {
		var role, content, toolCallID, toolCalls string
		if err := rows.Scan(&role, &content, &toolCallID, &toolCalls); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		msg := protocol.Message{
			Role:       protocol.Role(role),
			Content:    content,
			ToolCallID: toolCallID,
		}
		if toolCalls != "" {
			if err := json.Unmarshal([]byte(toolCalls), &msg.ToolCalls); err != nil {
				db.Close()
				return nil, fmt.Errorf("failed to decode tool calls: %w", err)
			}
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteSession{id: id, db: db, messages: messages}, nil
}

func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping session database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply session schema: %w", err)
	}
	return db, nil
}

func (s *sqliteSession) ID() string {
	return s.id
}

func (s *sqliteSession) AddMessage(msg protocol.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, msg)

	content, toolCalls := encodeMessage(msg)
	_, err := s.db.Exec(
		`INSERT INTO messages (session_id, role, content, tool_call_id, tool_calls) VALUES (?, ?, ?, ?, ?)`,
		s.id, string(msg.Role), content, msg.ToolCallID, toolCalls,
	)
	if err != nil && s.writeErr == nil {
		s.writeErr = err
	}
}

func (s *sqliteSession) Messages() []protocol.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make([]protocol.Message, len(s.messages))
	for i, msg := range s.messages {
		copied[i] = msg
		copied[i].ToolCalls = slices.Clone(msg.ToolCalls)
	}
	return copied
}

func (s *sqliteSession) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = nil
	if _, err := s.db.Exec(`DELETE FROM messages WHERE session_id = ?`, s.id); err != nil && s.writeErr == nil {
		s.writeErr = err
	}
}

// Close releases the database handle and surfaces the first write
// failure, if any.
func (s *sqliteSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	closeErr := s.db.Close()
	if s.writeErr != nil {
		return s.writeErr
	}
	return closeErr
}

func encodeMessage(msg protocol.Message) (content, toolCalls string) {
	switch c := msg.Content.(type) {
	case nil:
		content = ""
	case string:
		content = c
	default:
		b, err := json.Marshal(c)
		if err != nil {
			content = fmt.Sprint(c)
		} else {
			content = string(b)
		}
	}

	if len(msg.ToolCalls) > 0 {
		if b, err := json.Marshal(msg.ToolCalls); err == nil {
			toolCalls = string(b)
		}
	}
	return content, toolCalls
}

var _ interface {
	Session
	Close() error
} = (*sqliteSession)(nil)
