package agent

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"dev_feasibility/pkg/core/llm"
)

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("Missing file should not fail: %v", err)
	}
	if cfg.ActiveProvider != ProviderOffline {
		t.Errorf("Expected offline default, got %q", cfg.ActiveProvider)
	}

	path := filepath.Join(t.TempDir(), "models.yaml")
	data := "active_provider: deepseek\nagents:\n  risk_review:\n    provider: qwen\n    description: Risk reviewer\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.ActiveProvider != "deepseek" || cfg.Agents["risk_review"].Provider != "qwen" {
		t.Errorf("Unexpected config %+v", cfg)
	}
}

func TestGetProviderRouting(t *testing.T) {
	m := NewManager(Config{
		ActiveProvider: "deepseek",
		Agents:         map[string]AgentConfig{"risk_review": {Provider: "qwen"}},
	})
	if p, ok := m.GetProvider("risk_review").(*llm.ChatProvider); !ok || p.Name != "qwen" {
		t.Errorf("Expected qwen override, got %T", m.GetProvider("risk_review"))
	}
	if p, ok := m.GetProvider("returns_review").(*llm.ChatProvider); !ok || p.Name != "deepseek" {
		t.Errorf("Expected active deepseek, got %T", m.GetProvider("returns_review"))
	}

	if name, override := m.Route("risk_review"); name != "qwen" || !override {
		t.Errorf("Route(risk_review) = %s, %v", name, override)
	}
	if name, override := m.Route("returns_review"); name != "deepseek" || override {
		t.Errorf("Route(returns_review) = %s, %v", name, override)
	}

	unknown := NewManager(Config{ActiveProvider: "missing"})
	if _, ok := unknown.GetProvider("any").(*llm.OfflineProvider); !ok {
		t.Error("Expected offline fallback for unknown provider")
	}
	if name, _ := unknown.Route("any"); name != ProviderOffline {
		t.Errorf("Expected offline route, got %s", name)
	}
}

func TestExecutePromptAndSwitch(t *testing.T) {
	m := NewManager(Config{ActiveProvider: ProviderOffline})
	m.Register("canned", &llm.OfflineProvider{Reply: "canned answer"})

	if err := m.SetGlobalProvider("nope"); err == nil {
		t.Error("Expected error for unknown provider")
	}
	if err := m.SetGlobalProvider("canned"); err != nil {
		t.Fatalf("SetGlobalProvider failed: %v", err)
	}
	if m.GetActiveProvider() != "canned" {
		t.Errorf("Active provider not updated")
	}
	out, err := m.ExecutePrompt(context.Background(), "returns_review", "q", "sys", nil)
	if err != nil || out != "canned answer" {
		t.Errorf("ExecutePrompt = %q, %v", out, err)
	}
	if m.GetProviderByName("missing") != nil {
		t.Error("Expected nil for unregistered provider")
	}
}
