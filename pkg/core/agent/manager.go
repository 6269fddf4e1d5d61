// Package agent routes assistant roles to LLM providers.
package agent

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"dev_feasibility/pkg/core/llm"

	"gopkg.in/yaml.v2"
)

// ProviderOffline is always registered and is the last fallback.
const ProviderOffline = "offline"

type Config struct {
	ActiveProvider string                 `yaml:"active_provider"`
	Agents         map[string]AgentConfig `yaml:"agents"`
}

type AgentConfig struct {
	Provider    string `yaml:"provider"` // Optional override
	Description string `yaml:"description"`
}

// LoadConfig reads the models file. A missing file yields the offline config.
func LoadConfig(path string) (Config, error) {
	cfg := Config{ActiveProvider: ProviderOffline}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read models config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse models config %s: %w", path, err)
	}
	if cfg.ActiveProvider == "" {
		cfg.ActiveProvider = ProviderOffline
	}
	return cfg, nil
}

type Manager struct {
	mu        sync.RWMutex
	config    Config
	providers map[string]llm.Provider
}

func NewManager(config Config) *Manager {
	return &Manager{
		config: config,
		providers: map[string]llm.Provider{
			"gemini":        &llm.GeminiProvider{},
			"deepseek":      llm.NewDeepSeekProvider(),
			"qwen":          llm.NewQwenProvider(),
			ProviderOffline: &llm.OfflineProvider{},
		},
	}
}

// Register adds or replaces a provider.
func (m *Manager) Register(name string, p llm.Provider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providers[name] = p
}

// GetProvider resolves the agent override, then the active provider, then offline.
func (m *Manager) GetProvider(agentType string) llm.Provider {
	m.mu.RLock()
	defer m.mu.RUnlock()
	name, _ := m.route(agentType)
	return m.providers[name]
}

// Route names the provider agentType resolves to and whether a per-agent
// override chose it.
func (m *Manager) Route(agentType string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.route(agentType)
}

func (m *Manager) route(agentType string) (string, bool) {
	if agentConfig, ok := m.config.Agents[agentType]; ok && agentConfig.Provider != "" {
		if _, ok := m.providers[agentConfig.Provider]; ok {
			return agentConfig.Provider, true
		}
	}
	if _, ok := m.providers[m.config.ActiveProvider]; ok {
		return m.config.ActiveProvider, false
	}
	return ProviderOffline, false
}

func (m *Manager) GetProviderByName(name string) llm.Provider {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.providers[name]; ok {
		return p
	}
	fmt.Printf("[AGENT] Provider '%s' not registered\n", name)
	return nil
}

// ExecutePrompt adapts the system prompt for the routed provider and sends the request.
func (m *Manager) ExecutePrompt(ctx context.Context, agentType string, rawPrompt string, rawSystemPrompt string, options map[string]interface{}) (string, error) {
	provider := m.GetProvider(agentType)
	fmt.Printf("[AGENT] ExecutePrompt: agent=%s provider=%T\n", agentType, provider)

	adaptedSystemPrompt := provider.AdaptInstructions(rawSystemPrompt)
	return provider.GenerateResponse(ctx, rawPrompt, adaptedSystemPrompt, options)
}

func (m *Manager) SetGlobalProvider(newProvider string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.providers[newProvider]; !ok {
		return fmt.Errorf("provider %s not found", newProvider)
	}
	m.config.ActiveProvider = newProvider
	fmt.Printf("[AGENT] Global provider set to: %s\n", newProvider)
	return nil
}

// Providers lists registered provider names, sorted.
func (m *Manager) Providers() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *Manager) GetActiveProvider() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.ActiveProvider
}
