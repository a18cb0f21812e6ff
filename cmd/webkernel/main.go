// Command webkernel runs the agent runtime against an OpenAI-compatible
// completion server from the command line.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/polyglot-agents/webkernel/backend"
	"github.com/polyglot-agents/webkernel/backend/openai"
	"github.com/polyglot-agents/webkernel/kernel"
	"github.com/polyglot-agents/webkernel/session"
	"github.com/polyglot-agents/webkernel/tools"
)

func main() {
	var (
		configFile    = flag.String("config", "", "Path to config JSON file")
		prompt        = flag.String("prompt", "", "Prompt to send to the agent (required)")
		systemPrompt  = flag.String("system-prompt", "", "System prompt (overrides config)")
		maxIterations = flag.Int("max-iterations", -1, "Maximum loop iterations; 0 for unlimited (overrides config)")
		baseURL       = flag.String("base-url", "http://localhost:8080/v1", "OpenAI-compatible completion server URL")
		model         = flag.String("model", "qwen2.5-7b-instruct", "Model identifier to request")
		sessionDB     = flag.String("session-db", "", "SQLite database for session persistence")
		sessionID     = flag.String("session-id", "", "Existing session to resume (requires -session-db)")
		toolServer    = flag.String("tool-server", "", "Base URL of a remote tool server")
		verbose       = flag.Bool("verbose", false, "Enable verbose logging to stderr")
	)
	flag.Parse()

	if *prompt == "" {
		fmt.Fprintln(os.Stderr, "Usage: webkernel -prompt <text> [flags]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg := kernel.DefaultConfig()
	if *configFile != "" {
		loaded, err := kernel.LoadConfig(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = *loaded
	}

	if *systemPrompt != "" {
		cfg.SystemPrompt = *systemPrompt
	}
	if *maxIterations >= 0 {
		cfg.MaxIterations = *maxIterations
	}
	if *sessionDB != "" {
		cfg.Session.Backend = session.BackendSQLite
		cfg.Session.Path = *sessionDB
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	registry := tools.NewRegistry()
	if err := registerBuiltinTools(registry, *toolServer); err != nil {
		log.Fatalf("Failed to register tools: %v", err)
	}

	engine, err := openai.NewFromBaseURL(*baseURL, os.Getenv("OPENAI_API_KEY"), *model)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}
	backendSession := backend.NewSession(engine)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := backendSession.Init(ctx); err != nil {
		log.Fatalf("Failed to initialize backend: %v", err)
	}

	opts := []kernel.Option{kernel.WithLogger(logger)}
	if *sessionID != "" {
		if *sessionDB == "" {
			log.Fatal("-session-id requires -session-db")
		}
		resumed, err := session.ResumeSQLiteSession(*sessionDB, *sessionID)
		if err != nil {
			log.Fatalf("Failed to resume session: %v", err)
		}
		opts = append(opts, kernel.WithSession(resumed))
	}

	runtime, err := kernel.New(&cfg, backendSession, registry, opts...)
	if err != nil {
		log.Fatalf("Failed to create runtime: %v", err)
	}

	result, err := runtime.Run(ctx, *prompt)
	if err != nil {
		log.Fatalf("Run failed: %v", err)
	}

	fmt.Printf("Response: %s\n", result.Response)

	if len(result.ToolCalls) > 0 {
		fmt.Println("\nTool Calls:")
		for i, tc := range result.ToolCalls {
			fmt.Printf("  [%d] %s(%s)\n", i+1, tc.Name, tc.Arguments)
			if tc.IsError {
				fmt.Printf("    error: %s\n", tc.Result)
			} else if len(tc.Result) > 200 {
				fmt.Printf("    -> %s...\n", tc.Result[:200])
			} else {
				fmt.Printf("    -> %s\n", tc.Result)
			}
		}
	}

	fmt.Printf("\nSession: %s\nIterations: %d\n", runtime.Session().ID(), result.Iterations)
}
