// Package remote invokes tools hosted in out-of-process tool services
// (capabilities implemented in other language runtimes) over Connect
// RPC. The wire contract is schemaless: requests carry {name, input}
// and responses carry {success, output, error} as struct payloads.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/polyglot-agents/webkernel/core/protocol"
	"github.com/polyglot-agents/webkernel/tools"
)

// ExecuteProcedure is the Connect procedure path for tool execution.
const ExecuteProcedure = "/webkernel.tools.v1.ToolService/Execute"

// Client calls a remote ToolService endpoint.
type Client struct {
	execute *connect.Client[structpb.Struct, structpb.Struct]
}

// New creates a Client for the ToolService at baseURL. Client options
// (protocol selection, codecs, interceptors) pass through to Connect.
func New(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	return &Client{
		execute: connect.NewClient[structpb.Struct, structpb.Struct](
			httpClient,
			baseURL+ExecuteProcedure,
			opts...,
		),
	}
}

// Execute invokes the named remote tool and returns its JSON output.
// A response with success=false becomes an error carrying the remote
// failure message.
func (c *Client) Execute(ctx context.Context, name string, input json.RawMessage) (json.RawMessage, error) {
	var in any
	if len(input) > 0 {
		if err := json.Unmarshal(input, &in); err != nil {
			return nil, fmt.Errorf("invalid JSON input: %w", err)
		}
	}

	payload, err := structpb.NewStruct(map[string]any{
		"name":  name,
		"input": in,
	})
	if err != nil {
		return nil, fmt.Errorf("encode tool request: %w", err)
	}

	res, err := c.execute.CallUnary(ctx, connect.NewRequest(payload))
	if err != nil {
		return nil, fmt.Errorf("tool service call failed: %w", err)
	}

	fields := res.Msg.AsMap()
	if success, _ := fields["success"].(bool); !success {
		message, _ := fields["error"].(string)
		if message == "" {
			message = "remote tool failed"
		}
		return nil, errors.New(message)
	}

	out, err := json.Marshal(fields["output"])
	if err != nil {
		return nil, fmt.Errorf("decode tool output: %w", err)
	}
	return out, nil
}

// Entry builds a registry entry routing the given tool spec through
// this client. Language tags the runtime implementing the remote tool.
func (c *Client) Entry(tool protocol.Tool, language string) tools.Entry {
	return tools.Entry{
		Tool:     tool,
		Language: language,
		Handler: func(ctx context.Context, input json.RawMessage) (any, error) {
			out, err := c.Execute(ctx, tool.Name, input)
			if err != nil {
				return nil, err
			}
			return out, nil
		},
	}
}
