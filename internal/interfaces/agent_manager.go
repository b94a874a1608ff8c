package interfaces

import "context"

// AgentScope names which part of the pipeline is calling the Agent
// Manager, for per-scope enable/disable and budget accounting
// (e.g. "worker.extraction", "worker.analysis").
type AgentScope string

// AgentRequest is a provider-agnostic content generation request.
type AgentRequest struct {
	Scope             AgentScope
	SystemInstruction string
	Prompt            string
	OutputSchema      map[string]interface{}
	MaxOutputTokens   int
	Temperature       float32
}

// AgentResponse is the provider-agnostic result.
type AgentResponse struct {
	Text         string
	Provider     string
	Model        string
	InputTokens  int
	OutputTokens int
}

// AgentManager invokes the configured LLM providers in fallback order,
// enforcing per-scope enable flags and the daily cost budget before any
// call is made.
type AgentManager interface {
	Generate(ctx context.Context, req AgentRequest) (*AgentResponse, error)
	SetScopeEnabled(scope AgentScope, enabled bool)
	ScopeEnabled(scope AgentScope) bool
	Close() error
}
