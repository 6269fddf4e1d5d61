package prompt

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"dev_feasibility/pkg/core/utils"
)

// LoadFromDirectory loads every .json and .hjson template below dir into r.
// Expected structure:
//
//	dir/
//	  assistant/
//	    risk_review.hjson   -> assistant.risk_review
//
// Fields a file leaves empty keep the value of the template it replaces. A
// missing directory is not an error.
func LoadFromDirectory(r *Registry, dir string) (int, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return 0, nil
	}

	loaded := 0
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		ext := filepath.Ext(path)
		if info.IsDir() || (ext != ".json" && ext != ".hjson") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		var t Template
		if _, err := utils.SmartParse(string(data), &t); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if t.ID == "" {
			t.ID = generateIDFromPath(path, dir)
		}
		if t.Category == "" {
			t.Category = detectCategory(path, dir)
		}
		if t.UserPromptTmpl != "" {
			if _, err := template.New(t.ID).Parse(t.UserPromptTmpl); err != nil {
				return fmt.Errorf("invalid template in %s: %w", path, err)
			}
		}

		if prev, err := r.Lookup(t.ID); err == nil {
			t = merge(*prev, t)
		}
		if err := r.Register(&t); err != nil {
			return fmt.Errorf("failed to register %s: %w", t.ID, err)
		}
		loaded++
		return nil
	})
	if err != nil {
		return loaded, err
	}
	fmt.Printf("[PROMPT] Loaded %d prompts from %s\n", loaded, dir)
	return loaded, nil
}

func merge(base, over Template) Template {
	pick := func(a, b string) string {
		if b != "" {
			return b
		}
		return a
	}
	base.Name = pick(base.Name, over.Name)
	base.Category = pick(base.Category, over.Category)
	base.Description = pick(base.Description, over.Description)
	base.SystemPrompt = pick(base.SystemPrompt, over.SystemPrompt)
	base.Question = pick(base.Question, over.Question)
	base.UserPromptTmpl = pick(base.UserPromptTmpl, over.UserPromptTmpl)
	base.Version = pick(base.Version, over.Version)
	return base
}

// generateIDFromPath creates a prompt ID from the file path
// e.g., "assistant/risk_review.hjson" -> "assistant.risk_review"
func generateIDFromPath(path string, baseDir string) string {
	relPath, _ := filepath.Rel(baseDir, path)
	relPath = strings.TrimSuffix(relPath, filepath.Ext(relPath))
	return strings.ReplaceAll(relPath, string(filepath.Separator), ".")
}

// detectCategory extracts the category from the folder structure
func detectCategory(path string, baseDir string) string {
	relPath, _ := filepath.Rel(baseDir, path)
	parts := strings.Split(relPath, string(filepath.Separator))
	if len(parts) > 1 {
		return parts[0]
	}
	return "default"
}

// RenderUserPrompt executes the template's user prompt, or DefaultUserPrompt
// when it has none.
func RenderUserPrompt(t *Template, vars Vars) (string, error) {
	src := DefaultUserPrompt
	if t != nil && t.UserPromptTmpl != "" {
		src = t.UserPromptTmpl
	}
	name := "user"
	if t != nil {
		name = t.ID
	}
	tmpl, err := template.New(name).Parse(src)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}
