package backend

import (
	"context"
	"sync/atomic"
)

// Session owns one engine and its initialized/uninitialized state. The
// engine is injected at construction; nothing reads ambient globals.
// Completion requests fail with ErrNotInitialized until Init succeeds.
//
// A Session is safe for concurrent use, but it does not serialize
// completion calls: if the underlying engine cannot serve concurrent
// completions, enforcing that is the engine implementation's contract.
type Session struct {
	engine Engine
	ready  atomic.Bool
}

// NewSession creates a Session around the given engine.
func NewSession(engine Engine) *Session {
	return &Session{engine: engine}
}

// Init prepares the engine for use. Engines implementing Initializer
// are initialized; others are only marked ready. Init is idempotent.
func (s *Session) Init(ctx context.Context) error {
	if init, ok := s.engine.(Initializer); ok && !s.ready.Load() {
		if err := init.Init(ctx); err != nil {
			return err
		}
	}
	s.ready.Store(true)
	return nil
}

// Ready reports whether Init has completed successfully.
func (s *Session) Ready() bool {
	return s.ready.Load()
}

// Complete issues one completion call. Returns ErrNotInitialized when
// called before Init.
func (s *Session) Complete(ctx context.Context, req ChatRequest) (string, error) {
	if !s.ready.Load() {
		return "", ErrNotInitialized
	}
	return s.engine.Complete(ctx, req)
}
