package session_test

import (
	"encoding/json"
	"io"
	"path/filepath"
	"testing"

	"github.com/polyglot-agents/webkernel/core/protocol"
	"github.com/polyglot-agents/webkernel/session"
)

func closeSession(t *testing.T, s session.Session) {
	t.Helper()
	if closer, ok := s.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			t.Errorf("Close() failed: %v", err)
		}
	}
}

func TestSQLiteSessionRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")

	s, err := session.NewSQLiteSession(path)
	if err != nil {
		t.Fatalf("NewSQLiteSession() failed: %v", err)
	}

	s.AddMessage(protocol.NewMessage(protocol.RoleUser, "analyze this"))
	s.AddMessage(protocol.Message{
		Role: protocol.RoleAssistant,
		ToolCalls: []protocol.ToolCall{
			{ID: "c1", Name: "data_transform", Arguments: json.RawMessage(`{"operation":"stats"}`)},
		},
	})
	s.AddMessage(protocol.Message{
		Role:       protocol.RoleTool,
		Content:    `{"count":3}`,
		ToolCallID: "c1",
	})

	id := s.ID()
	closeSession(t, s)

	resumed, err := session.ResumeSQLiteSession(path, id)
	if err != nil {
		t.Fatalf("ResumeSQLiteSession() failed: %v", err)
	}
	defer closeSession(t, resumed)

	if resumed.ID() != id {
		t.Errorf("resumed ID = %q, want %q", resumed.ID(), id)
	}

	msgs := resumed.Messages()
	if len(msgs) != 3 {
		t.Fatalf("len(Messages()) = %d, want 3", len(msgs))
	}
	if msgs[0].Role != protocol.RoleUser || msgs[0].Content != "analyze this" {
		t.Errorf("msgs[0] = %+v", msgs[0])
	}
	if len(msgs[1].ToolCalls) != 1 || msgs[1].ToolCalls[0].Name != "data_transform" {
		t.Errorf("msgs[1].ToolCalls = %+v", msgs[1].ToolCalls)
	}
	if msgs[2].ToolCallID != "c1" {
		t.Errorf("msgs[2].ToolCallID = %q, want c1", msgs[2].ToolCallID)
	}
}

func TestSQLiteSessionClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")

	s, err := session.NewSQLiteSession(path)
	if err != nil {
		t.Fatalf("NewSQLiteSession() failed: %v", err)
	}
	s.AddMessage(protocol.NewMessage(protocol.RoleUser, "hello"))
	s.Clear()

	id := s.ID()
	closeSession(t, s)

	resumed, err := session.ResumeSQLiteSession(path, id)
	if err != nil {
		t.Fatalf("ResumeSQLiteSession() failed: %v", err)
	}
	defer closeSession(t, resumed)

	if got := len(resumed.Messages()); got != 0 {
		t.Errorf("len(Messages()) after Clear = %d, want 0", got)
	}
}

func TestSQLiteSessionsIsolated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")

	a, err := session.NewSQLiteSession(path)
	if err != nil {
		t.Fatalf("NewSQLiteSession() failed: %v", err)
	}
	defer closeSession(t, a)

	b, err := session.NewSQLiteSession(path)
	if err != nil {
		t.Fatalf("NewSQLiteSession() failed: %v", err)
	}
	defer closeSession(t, b)

	a.AddMessage(protocol.NewMessage(protocol.RoleUser, "only in a"))

	if got := len(b.Messages()); got != 0 {
		t.Errorf("session b sees %d messages from session a", got)
	}
}
