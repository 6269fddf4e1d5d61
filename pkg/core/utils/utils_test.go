package utils

import (
	"strings"
	"testing"
)

func f(v float64) *float64 { return &v }

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		in   *float64
		want string
	}{
		{nil, "N/A"},
		{f(0), "$0"},
		{f(1234), "$1,234"},
		{f(16950000), "$16,950,000"},
		{f(1557526.354), "$1,557,526"},
		{f(999.5), "$1,000"},
		{f(2.5), "$2"},
		{f(-250000.4), "$-250,000"},
	}
	for _, tt := range tests {
		if got := FormatCurrency(tt.in); got != tt.want {
			t.Errorf("FormatCurrency(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestFormatPercentage(t *testing.T) {
	if got := FormatPercentage(nil); got != "N/A" {
		t.Errorf("Expected N/A, got %s", got)
	}
	if got := FormatPercentage(f(15.409514)); got != "15.41%" {
		t.Errorf("Expected 15.41%%, got %s", got)
	}
	if got := FormatMultiple(f(2.981)); got != "2.98x" {
		t.Errorf("Expected 2.98x, got %s", got)
	}
}

func TestSmartParse(t *testing.T) {
	var target struct {
		Name string  `json:"name"`
		Rent float64 `json:"rent"`
	}
	inputs := []string{
		`{"name": "Warehouse", "rent": 150000}`,
		"{name: 'Warehouse', rent: 150000,}",
		"# comment\nname: Warehouse\nrent: 150000\n",
	}
	for _, in := range inputs {
		target.Name, target.Rent = "", 0
		if _, err := SmartParse(in, &target); err != nil {
			t.Errorf("SmartParse(%q) failed: %v", in, err)
			continue
		}
		if target.Name != "Warehouse" || target.Rent != 150000 {
			t.Errorf("SmartParse(%q) decoded %+v", in, target)
		}
	}
}

func TestRenderMarkdown(t *testing.T) {
	html, err := RenderMarkdown("```markdown\n## Returns\n\n- IRR **15.4%**\n```")
	if err != nil {
		t.Fatalf("RenderMarkdown failed: %v", err)
	}
	if !strings.Contains(html, "<h2>Returns</h2>") || !strings.Contains(html, "<strong>15.4%</strong>") {
		t.Errorf("Unexpected HTML: %s", html)
	}
	if ValidateMarkdown("   ") {
		t.Error("Blank input should not validate")
	}
}
