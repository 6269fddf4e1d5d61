package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultsCoverEveryRole(t *testing.T) {
	r := NewRegistry()
	for _, role := range []string{"returns_review", "financing_review", "action_planner", "risk_review"} {
		tmpl, err := r.Lookup(ID(role))
		if err != nil {
			t.Fatalf("Missing built-in %s: %v", role, err)
		}
		if tmpl.Question == "" {
			t.Errorf("%s has no canned question", role)
		}
		if !strings.Contains(r.SystemPrompt(ID(role)), "development finance analyst") {
			t.Errorf("%s should fall back to the shared system prompt", role)
		}
	}
	if _, err := r.Lookup("assistant.nope"); err == nil {
		t.Error("Expected unknown prompt to fail")
	}
}

func TestRenderUserPrompt(t *testing.T) {
	out, err := RenderUserPrompt(nil, Vars{Context: "## Project: Depot", Question: "Is it viable?"})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.HasPrefix(out, "Based on the feasibility analysis below") || !strings.HasSuffix(out, "Question: Is it viable?") {
		t.Errorf("Unexpected default layout %q", out)
	}

	custom := &Template{ID: "x", UserPromptTmpl: "Q={{.Question}}"}
	if out, _ := RenderUserPrompt(custom, Vars{Question: "why"}); out != "Q=why" {
		t.Errorf("Expected custom template, got %q", out)
	}
}

func TestLoadFromDirectoryMergesOverrides(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "assistant")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	hjson := "{\n  # lender focus\n  question: Which covenant breaks first?\n  version: \"2\"\n}\n"
	if err := os.WriteFile(filepath.Join(sub, "risk_review.hjson"), []byte(hjson), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "market.json"), []byte(`{"question": "How deep is the tenant market?"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry()
	before := r.Count()
	n, err := LoadFromDirectory(r, dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if n != 2 || r.Count() != before+1 {
		t.Errorf("Expected 2 files and one new prompt, got n=%d count=%d", n, r.Count())
	}

	risk, _ := r.Lookup(ID("risk_review"))
	if risk.Question != "Which covenant breaks first?" || risk.Version != "2" {
		t.Errorf("Override not applied: %+v", risk)
	}
	if risk.Name != "Risk review" || risk.Category != "assistant" {
		t.Errorf("Expected untouched fields kept, got %+v", risk)
	}
	if _, err := r.Lookup("assistant.market"); err != nil {
		t.Errorf("Expected ID derived from path: %v", err)
	}

	if n, err := LoadFromDirectory(r, filepath.Join(dir, "missing")); err != nil || n != 0 {
		t.Errorf("Missing directory should be a no-op, got %d %v", n, err)
	}
}

func TestLoadRejectsBadTemplate(t *testing.T) {
	dir := t.TempDir()
	bad := `{"id": "assistant.broken", "user_prompt_template": "{{.Question"}`
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromDirectory(NewRegistry(), dir); err == nil {
		t.Error("Expected unparseable template to fail")
	}
}
