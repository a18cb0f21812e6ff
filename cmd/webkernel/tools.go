package main

import (
	"net/http"

	"github.com/polyglot-agents/webkernel/core/protocol"
	"github.com/polyglot-agents/webkernel/tools"
	"github.com/polyglot-agents/webkernel/tools/datatransform"
	"github.com/polyglot-agents/webkernel/tools/remote"
)

// registerBuiltinTools populates the registry with the in-process
// data_transform capability and, when a tool server URL is given, the
// remote capabilities hosted there.
func registerBuiltinTools(registry *tools.Registry, toolServer string) error {
	if err := registry.Register(datatransform.Entry()); err != nil {
		return err
	}

	if toolServer == "" {
		return nil
	}

	client := remote.New(http.DefaultClient, toolServer)

	remoteTools := []struct {
		tool     protocol.Tool
		language string
	}{
		{
			tool: protocol.Tool{
				Name:        "web_research",
				Description: "Search the web and fetch URL content.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"action":     map[string]any{"type": "string", "enum": []string{"search", "fetch", "extract_links"}},
						"query":      map[string]any{"type": "string"},
						"url":        map[string]any{"type": "string"},
						"max_length": map[string]any{"type": "integer"},
					},
					"required": []string{"action"},
				},
			},
			language: "javascript",
		},
		{
			tool: protocol.Tool{
				Name:        "code_analysis",
				Description: "Analyze Python source code using the ast module. Computes complexity, extracts signatures, identifies patterns.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"action": map[string]any{"type": "string", "enum": []string{"analyze", "complexity", "signatures"}},
						"code":   map[string]any{"type": "string", "description": "Python source code to analyze"},
					},
					"required": []string{"action", "code"},
				},
			},
			language: "python",
		},
		{
			tool: protocol.Tool{
				Name:        "document_builder",
				Description: "Assemble structured Markdown documents with templates, tables, and citations.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"action":   map[string]any{"type": "string", "enum": []string{"build", "format_table", "add_citations"}},
						"template": map[string]any{"type": "string", "enum": []string{"research_report", "summary", "comparison"}},
						"data":     map[string]any{"type": "object"},
					},
					"required": []string{"action"},
				},
			},
			language: "python",
		},
	}

	for _, rt := range remoteTools {
		if err := registry.Register(client.Entry(rt.tool, rt.language)); err != nil {
			return err
		}
	}
	return nil
}
