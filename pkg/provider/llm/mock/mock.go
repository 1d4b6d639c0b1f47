// Package mock provides a test double for the llm.Provider interface.
//
// Responses are served from a FIFO queue so tests can script a sequence of
// completions, e.g. a content-policy violation followed by a clean reply:
//
//	p := &mock.Provider{Responses: []string{"bad words", "a friendly hint"}}
package mock

import (
	"context"
	"sync"

	"github.com/MrWong99/guessbot/pkg/provider/llm"
)

// CompleteCall records a single invocation of Complete.
type CompleteCall struct {
	// Ctx is the context passed to Complete.
	Ctx context.Context
	// Req is the CompletionRequest passed to Complete.
	Req llm.CompletionRequest
}

// Provider is a mock implementation of llm.Provider.
type Provider struct {
	mu sync.Mutex

	// Responses is consumed front to back, one entry per Complete call. When
	// the queue is empty, Fallback is returned.
	Responses []string

	// Fallback is returned once Responses is exhausted.
	Fallback string

	// CompleteFunc, if set, takes precedence over Responses and Fallback.
	CompleteFunc func(req llm.CompletionRequest) (string, error)

	// CompleteErr, if non-nil, is returned as the error from Complete.
	CompleteErr error

	// ModelCapabilities is returned by Capabilities.
	ModelCapabilities llm.ModelCapabilities

	// CompleteCalls records every invocation of Complete in order.
	CompleteCalls []CompleteCall
}

// Complete records the call and returns the next scripted response.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.CompleteCalls = append(p.CompleteCalls, CompleteCall{Ctx: ctx, Req: req})
	if p.CompleteErr != nil {
		return nil, p.CompleteErr
	}
	if p.CompleteFunc != nil {
		text, err := p.CompleteFunc(req)
		if err != nil {
			return nil, err
		}
		return &llm.CompletionResponse{Content: text}, nil
	}
	text := p.Fallback
	if len(p.Responses) > 0 {
		text = p.Responses[0]
		p.Responses = p.Responses[1:]
	}
	return &llm.CompletionResponse{Content: text}, nil
}

// Capabilities returns ModelCapabilities.
func (p *Provider) Capabilities() llm.ModelCapabilities {
	return p.ModelCapabilities
}

// Calls returns a copy of the recorded Complete calls.
func (p *Provider) Calls() []CompleteCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]CompleteCall, len(p.CompleteCalls))
	copy(out, p.CompleteCalls)
	return out
}

// LastPrompt returns the user content of the most recent call, or "".
func (p *Provider) LastPrompt() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.CompleteCalls) == 0 {
		return ""
	}
	msgs := p.CompleteCalls[len(p.CompleteCalls)-1].Req.Messages
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1].Content
}

// Ensure Provider implements llm.Provider at compile time.
var _ llm.Provider = (*Provider)(nil)
