// Package openai provides a backend.Engine backed by an OpenAI-compatible
// Chat Completions API. It translates backend requests into ChatCompletion
// calls using github.com/sashabaranov/go-openai, which also covers local
// inference servers (llama.cpp, vLLM, Ollama) exposing the same surface.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/polyglot-agents/webkernel/backend"
	"github.com/polyglot-agents/webkernel/core/protocol"
)

// ChatClient captures the subset of the go-openai client used by the engine.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (
		openai.ChatCompletionResponse, error)
}

// Options configures the engine.
type Options struct {
	Client ChatClient
	Model  string
}

// Engine implements backend.Engine via the OpenAI Chat Completions API.
type Engine struct {
	chat  ChatClient
	model string
}

// New builds an engine from the provided options.
func New(opts Options) (*Engine, error) {
	if opts.Client == nil {
		return nil, errors.New("chat client is required")
	}
	if opts.Model == "" {
		return nil, errors.New("model is required")
	}
	return &Engine{chat: opts.Client, model: opts.Model}, nil
}

// NewFromBaseURL constructs an engine against an OpenAI-compatible server
// at baseURL. An empty apiKey is accepted for local servers that do not
// authenticate.
func NewFromBaseURL(baseURL, apiKey, model string) (*Engine, error) {
	if baseURL == "" {
		return nil, errors.New("base URL is required")
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return New(Options{Client: openai.NewClientWithConfig(cfg), Model: model})
}

// Complete renders a chat completion and returns the raw assistant text.
// Any response format carrying a schema is forwarded as a strict
// json_schema format regardless of the caller's format discriminator;
// a schemaless json_object format passes through as json_object.
// Servers without structured output support ignore these, and the
// completion layer's recovery path handles any free-form text that
// results.
func (e *Engine) Complete(ctx context.Context, req backend.ChatRequest) (string, error) {
	if len(req.Messages) == 0 {
		return "", errors.New("messages are required")
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: contentText(m),
		})
	}

	request := openai.ChatCompletionRequest{
		Model:       e.model,
		Messages:    messages,
		Temperature: float32(req.Temperature),
		MaxTokens:   req.MaxTokens,
	}

	if rf := req.ResponseFormat; rf != nil {
		switch {
		case rf.Schema != "":
			request.ResponseFormat = &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
				JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
					Name:   "response",
					Schema: json.RawMessage(rf.Schema),
					Strict: true,
				},
			}
		case rf.Type == "json_object":
			request.ResponseFormat = &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			}
		}
	}

	resp, err := e.chat.CreateChatCompletion(ctx, request)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func contentText(m protocol.Message) string {
	switch c := m.Content.(type) {
	case nil:
		return ""
	case string:
		return c
	default:
		b, err := json.Marshal(c)
		if err != nil {
			return fmt.Sprint(c)
		}
		return string(b)
	}
}
