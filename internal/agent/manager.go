package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jobpipeline/internal/common"
	"github.com/ternarybob/jobpipeline/internal/interfaces"
)

// Manager implements interfaces.AgentManager: it walks the configured
// provider fallback order for a scope, gating each attempt on the daily
// cost budget and the scope's enable flag, and logs every attempt to
// the cost ledger whether it succeeds or not.
type Manager struct {
	factory *providerFactory
	budget  *budgetGate
	order   []ProviderType
	logger  arbor.ILogger

	mu      sync.RWMutex
	enabled map[interfaces.AgentScope]bool

	// providerDisabled permanently disables one (scope, provider) pair
	// for the remainder of the process lifetime after an AuthError or
	// QuotaExceeded, keyed by scopeProviderKey. Unlike enabled, this is
	// never toggled back on: the condition it records (bad credential,
	// exhausted quota) does not self-heal within a process lifetime.
	providerDisabled map[string]bool
}

// NewManager constructs the Agent Manager from config and the cost
// ledger store.
func NewManager(cfg *common.Config, cost interfaces.CostStore, logger arbor.ILogger) *Manager {
	order := make([]ProviderType, 0, len(cfg.LLM.FallbackOrder))
	for _, p := range cfg.LLM.FallbackOrder {
		order = append(order, ProviderType(p))
	}
	if len(order) == 0 {
		order = []ProviderType{ProviderGemini, ProviderClaude}
	}

	return &Manager{
		factory:          newProviderFactory(&cfg.Gemini, &cfg.Claude, &cfg.LLM, logger),
		budget:           newBudgetGate(cost, &cfg.CostBudget),
		order:            order,
		logger:           logger,
		enabled:          make(map[interfaces.AgentScope]bool),
		providerDisabled: make(map[string]bool),
	}
}

// Generate walks the provider fallback order, skipping providers
// permanently disabled for this scope (after a prior AuthError/
// QuotaExceeded) or currently over their own daily budget, until one
// succeeds. The scope itself must be enabled or Generate fails
// immediately without attempting any provider.
func (m *Manager) Generate(ctx context.Context, req interfaces.AgentRequest) (*interfaces.AgentResponse, error) {
	if !m.ScopeEnabled(req.Scope) {
		return nil, fmt.Errorf("agent scope %q is disabled", req.Scope)
	}

	var lastErr error
	for _, provider := range m.order {
		if m.providerDisabledForScope(req.Scope, provider) {
			lastErr = fmt.Errorf("provider %q disabled for scope %q", provider, req.Scope)
			continue
		}
		if err := m.budget.check(ctx, string(provider)); err != nil {
			lastErr = err
			m.logger.Warn().Str("scope", string(req.Scope)).Str("provider", string(provider)).Err(err).Msg("provider over daily budget, skipping")
			continue
		}

		model := m.factory.defaultModel(provider)
		resp, err := m.factory.generate(ctx, provider, model, req)
		if err != nil {
			lastErr = err
			m.budget.record(ctx, string(req.Scope), string(provider), model, 0, 0, false)
			if IsAuthError(err) || IsQuotaExceededError(err) {
				m.disableProviderForScope(req.Scope, provider)
				m.logger.Warn().
					Str("scope", string(req.Scope)).
					Str("provider", string(provider)).
					Err(err).
					Msg("agent provider hit auth/quota failure, disabling for remainder of process lifetime")
			} else {
				m.logger.Warn().
					Str("scope", string(req.Scope)).
					Str("provider", string(provider)).
					Err(err).
					Msg("agent provider failed, trying next in fallback order")
			}
			continue
		}

		m.budget.record(ctx, string(req.Scope), resp.Provider, resp.Model, resp.InputTokens, resp.OutputTokens, true)
		return resp, nil
	}

	return nil, fmt.Errorf("all agent providers exhausted for scope %q: %w", req.Scope, lastErr)
}

func scopeProviderKey(scope interfaces.AgentScope, provider ProviderType) string {
	return string(scope) + "|" + string(provider)
}

// providerDisabledForScope reports whether provider was previously
// disabled for scope after an AuthError/QuotaExceeded.
func (m *Manager) providerDisabledForScope(scope interfaces.AgentScope, provider ProviderType) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.providerDisabled[scopeProviderKey(scope, provider)]
}

// disableProviderForScope permanently disables provider for scope for
// the remainder of the process lifetime.
func (m *Manager) disableProviderForScope(scope interfaces.AgentScope, provider ProviderType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providerDisabled[scopeProviderKey(scope, provider)] = true
}

// SetScopeEnabled toggles whether a scope is allowed to make provider
// calls. Scopes default to enabled.
func (m *Manager) SetScopeEnabled(scope interfaces.AgentScope, enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled[scope] = enabled
}

// ScopeEnabled reports whether a scope may currently make calls.
func (m *Manager) ScopeEnabled(scope interfaces.AgentScope) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	enabled, ok := m.enabled[scope]
	if !ok {
		return true
	}
	return enabled
}

// Close releases provider client resources.
func (m *Manager) Close() error {
	return m.factory.close()
}
