// Package prompt is the assistant's prompt library. Built-in templates cover
// every assistant role; files under a prompts directory (JSON or Hjson)
// replace them at startup without code changes.
package prompt

// Template is one assistant role's prompt.
type Template struct {
	ID          string `json:"id"`          // e.g. "assistant.risk_review"
	Name        string `json:"name"`        // Human-readable name
	Category    string `json:"category"`    // Folder the file was loaded from
	Description string `json:"description"` // What the role is for

	// SystemPrompt, when empty, falls back to the "assistant.system" template.
	SystemPrompt string `json:"system_prompt"`
	// Question is the canned question a review role asks.
	Question string `json:"question"`
	// UserPromptTmpl is a text/template over Vars. Empty uses the
	// context-and-question layout of DefaultUserPrompt.
	UserPromptTmpl string `json:"user_prompt_template"`
	Version        string `json:"version"`
}

// Vars are the values a user prompt template can reference.
type Vars struct {
	Context  string
	Question string
}
