package prompt

// SystemID is the shared system prompt template.
const SystemID = "assistant.system"

// DefaultUserPrompt wraps a question with the analysis summary.
const DefaultUserPrompt = "Based on the feasibility analysis below, please answer this question:\n\n{{.Context}}\n\nQuestion: {{.Question}}"

// ID is the template ID of an assistant role.
func ID(role string) string { return "assistant." + role }

func defaults() []Template {
	return []Template{
		{
			ID:   SystemID,
			Name: "Development finance analyst",
			SystemPrompt: `You are a property development finance analyst.
Answer questions about the feasibility analysis you are given clearly and accurately.
Quote figures from the context rather than inventing them.
Flag any metric that falls below common lending or investment hurdles.
Reply in Markdown with short sections and bullet points.`,
			Version: "1",
		},
		{
			ID:          ID("assistant"),
			Name:        "General question",
			Description: "Free-form questions about one analysis",
			Version:     "1",
		},
		{
			ID:          ID("returns_review"),
			Name:        "Returns review",
			Description: "IRR, NPV and equity multiple against the risk taken",
			Question:    "Review the projected returns. Are IRR, NPV and the equity multiple attractive for the risk taken? How do the scenarios change the picture?",
			Version:     "1",
		},
		{
			ID:          ID("financing_review"),
			Name:        "Financing review",
			Description: "Construction payoff, refinance and lender DSCR",
			Question:    "Review the construction and investment financing. Will the refinance cover the construction payoff, and is the DSCR comfortable for a lender?",
			Version:     "1",
		},
		{
			ID:          ID("action_planner"),
			Name:        "Next actions",
			Description: "Prioritised next steps for the developer",
			Question:    "Based on this feasibility, what are the top 3-5 actions the developer should take next? Prioritize by importance.",
			Version:     "1",
		},
		{
			ID:          ID("risk_review"),
			Name:        "Risk review",
			Description: "Which assumptions could break the deal",
			Question:    "Which assumptions carry the most risk? Use the sensitivity ranking to explain what could break the deal.",
			Version:     "1",
		},
	}
}
