package openai_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/polyglot-agents/webkernel/backend"
	openai "github.com/polyglot-agents/webkernel/backend/openai"
	"github.com/polyglot-agents/webkernel/completion"
	"github.com/polyglot-agents/webkernel/core/protocol"
)

type fakeChat struct {
	reply     string
	err       error
	noChoices bool
	requests  []goopenai.ChatCompletionRequest
}

func (f *fakeChat) CreateChatCompletion(_ context.Context, req goopenai.ChatCompletionRequest) (
	goopenai.ChatCompletionResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return goopenai.ChatCompletionResponse{}, f.err
	}
	if f.noChoices {
		return goopenai.ChatCompletionResponse{}, nil
	}
	return goopenai.ChatCompletionResponse{
		Choices: []goopenai.ChatCompletionChoice{
			{Message: goopenai.ChatCompletionMessage{Role: "assistant", Content: f.reply}},
		},
	}, nil
}

func chatRequest() backend.ChatRequest {
	return backend.ChatRequest{
		Messages: []protocol.Message{
			{Role: protocol.RoleSystem, Content: "be brief"},
			{Role: protocol.RoleUser, Content: "hi"},
		},
		Temperature: 0.7,
		MaxTokens:   256,
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := openai.New(openai.Options{Model: "m"}); err == nil {
		t.Error("New() accepted nil client")
	}
	if _, err := openai.New(openai.Options{Client: &fakeChat{}}); err == nil {
		t.Error("New() accepted empty model")
	}
	if _, err := openai.NewFromBaseURL("", "", "m"); err == nil {
		t.Error("NewFromBaseURL() accepted empty base URL")
	}
}

func TestComplete(t *testing.T) {
	chat := &fakeChat{reply: `{"type": "text", "content": "hello"}`}
	engine, err := openai.New(openai.Options{Client: chat, Model: "test-model"})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	got, err := engine.Complete(context.Background(), chatRequest())
	if err != nil {
		t.Fatalf("Complete() failed: %v", err)
	}
	if got != chat.reply {
		t.Errorf("Complete() = %q, want %q", got, chat.reply)
	}

	if len(chat.requests) != 1 {
		t.Fatalf("client saw %d requests, want 1", len(chat.requests))
	}
	req := chat.requests[0]
	if req.Model != "test-model" {
		t.Errorf("Model = %q, want test-model", req.Model)
	}
	if req.MaxTokens != 256 {
		t.Errorf("MaxTokens = %d, want 256", req.MaxTokens)
	}
	if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Content != "hi" {
		t.Errorf("Messages = %+v", req.Messages)
	}
}

func TestCompleteResponseFormat(t *testing.T) {
	tests := []struct {
		name   string
		format *backend.ResponseFormat
		want   goopenai.ChatCompletionResponseFormatType
	}{
		{
			name:   "json_object with schema becomes strict json_schema",
			format: &backend.ResponseFormat{Type: "json_object", Schema: `{"type": "object"}`},
			want:   goopenai.ChatCompletionResponseFormatTypeJSONSchema,
		},
		{
			name:   "json_schema with schema",
			format: &backend.ResponseFormat{Type: "json_schema", Schema: `{"type": "object"}`},
			want:   goopenai.ChatCompletionResponseFormatTypeJSONSchema,
		},
		{
			name:   "schemaless json_object",
			format: &backend.ResponseFormat{Type: "json_object"},
			want:   goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat := &fakeChat{reply: `{}`}
			engine, err := openai.New(openai.Options{Client: chat, Model: "m"})
			if err != nil {
				t.Fatalf("New() failed: %v", err)
			}

			req := chatRequest()
			req.ResponseFormat = tt.format
			if _, err := engine.Complete(context.Background(), req); err != nil {
				t.Fatalf("Complete() failed: %v", err)
			}

			rf := chat.requests[0].ResponseFormat
			if rf == nil || rf.Type != tt.want {
				t.Fatalf("ResponseFormat = %+v, want %s", rf, tt.want)
			}
			if tt.format.Schema != "" && (rf.JSONSchema == nil || !rf.JSONSchema.Strict) {
				t.Errorf("JSONSchema = %+v, want strict schema", rf.JSONSchema)
			}
		})
	}
}

func TestAdapterSchemaReachesEngine(t *testing.T) {
	chat := &fakeChat{reply: `{"type": "text", "content": "ok"}`}
	engine, err := openai.New(openai.Options{Client: chat, Model: "m"})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	session := backend.NewSession(engine)
	if err := session.Init(context.Background()); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	adapter := completion.NewAdapter(session)

	_, err = adapter.Complete(context.Background(), completion.Request{
		Messages: []protocol.Message{{Role: protocol.RoleUser, Content: "hi"}},
		Tools: []protocol.Tool{{
			Name:        "echo",
			Description: "echoes input",
			Parameters:  map[string]any{"type": "object"},
		}},
	})
	if err != nil {
		t.Fatalf("Complete() failed: %v", err)
	}

	if len(chat.requests) != 1 {
		t.Fatalf("client saw %d requests, want 1", len(chat.requests))
	}
	rf := chat.requests[0].ResponseFormat
	if rf == nil {
		t.Fatal("ResponseFormat = nil; constraint schema never reached the engine")
	}
	if rf.Type != goopenai.ChatCompletionResponseFormatTypeJSONSchema {
		t.Fatalf("ResponseFormat.Type = %q, want json_schema", rf.Type)
	}
	if rf.JSONSchema == nil || rf.JSONSchema.Schema == nil {
		t.Fatal("JSONSchema schema missing")
	}
	schema, err := rf.JSONSchema.Schema.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal forwarded schema: %v", err)
	}
	if !strings.Contains(string(schema), `"echo"`) {
		t.Errorf("forwarded schema does not enumerate the offered tool: %s", schema)
	}
}

func TestCompleteErrors(t *testing.T) {
	engine, err := openai.New(openai.Options{
		Client: &fakeChat{err: errors.New("server unavailable")},
		Model:  "m",
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if _, err := engine.Complete(context.Background(), chatRequest()); err == nil {
		t.Error("Complete() succeeded on client error")
	}

	if _, err := engine.Complete(context.Background(), backend.ChatRequest{}); err == nil {
		t.Error("Complete() accepted empty messages")
	}
}

func TestCompleteNoChoices(t *testing.T) {
	engine, err := openai.New(openai.Options{Client: &fakeChat{noChoices: true}, Model: "m"})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if _, err := engine.Complete(context.Background(), chatRequest()); err == nil {
		t.Error("Complete() accepted a response with no choices")
	}
}
