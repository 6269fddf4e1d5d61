// Package assistant answers natural-language questions about a feasibility
// analysis through the configured LLM provider.
package assistant

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"dev_feasibility/pkg/core/agent"
	"dev_feasibility/pkg/core/cache"
	"dev_feasibility/pkg/core/feasibility"
	"dev_feasibility/pkg/core/metrics"
	"dev_feasibility/pkg/core/prompt"
	"dev_feasibility/pkg/core/returns"
	"dev_feasibility/pkg/core/utils"
)

// Agent roles routed through agent.Manager.
const (
	AgentGeneral   = "assistant"
	AgentReturns   = "returns_review"
	AgentFinancing = "financing_review"
	AgentActions   = "action_planner"
	AgentRisks     = "risk_review"
)

// Roles lists every role the assistant asks through.
var Roles = []string{AgentGeneral, AgentReturns, AgentFinancing, AgentActions, AgentRisks}

// Usage counts questions since the assistant was created.
type Usage struct {
	Questions int64 `json:"questions"`
	CacheHits int64 `json:"cache_hits"`
	Errors    int64 `json:"errors"`

	Cache cache.Stats `json:"cache"`
}

type Answer struct {
	Question string `json:"question"`
	Agent    string `json:"agent"`
	Markdown string `json:"markdown"`
	HTML     string `json:"html"`
	Cached   bool   `json:"cached"`
}

type Assistant struct {
	mgr     *agent.Manager
	cache   *cache.TTL[string]
	prompts *prompt.Registry

	mu    sync.Mutex
	usage Usage
}

// New wires an assistant to a provider manager and an answer cache. A nil
// cache disables caching.
func New(mgr *agent.Manager, answers *cache.TTL[string]) *Assistant {
	if answers == nil {
		answers = cache.NewTTL[string](0)
	}
	return &Assistant{mgr: mgr, cache: answers, prompts: prompt.Get()}
}

// WithPrompts swaps the prompt library, e.g. one loaded from disk.
func (a *Assistant) WithPrompts(r *prompt.Registry) *Assistant {
	a.prompts = r
	return a
}

func (a *Assistant) Usage() Usage {
	a.mu.Lock()
	u := a.usage
	a.mu.Unlock()
	u.Cache = a.cache.Stats()
	return u
}

func (a *Assistant) count(f func(u *Usage)) {
	a.mu.Lock()
	f(&a.usage)
	a.mu.Unlock()
}

// Ask answers a free-form question. With includeContext the analysis is
// summarised into the prompt; identical prompts are served from the cache.
func (a *Assistant) Ask(ctx context.Context, an *feasibility.Analysis, question string, includeContext bool) (*Answer, error) {
	return a.ask(ctx, AgentGeneral, an, question, includeContext)
}

func (a *Assistant) ReviewReturns(ctx context.Context, an *feasibility.Analysis) (*Answer, error) {
	return a.canned(ctx, AgentReturns, an)
}

func (a *Assistant) ReviewFinancing(ctx context.Context, an *feasibility.Analysis) (*Answer, error) {
	return a.canned(ctx, AgentFinancing, an)
}

func (a *Assistant) SuggestActions(ctx context.Context, an *feasibility.Analysis) (*Answer, error) {
	return a.canned(ctx, AgentActions, an)
}

func (a *Assistant) IdentifyRisks(ctx context.Context, an *feasibility.Analysis) (*Answer, error) {
	return a.canned(ctx, AgentRisks, an)
}

// canned asks a review role's stored question with the analysis attached.
func (a *Assistant) canned(ctx context.Context, role string, an *feasibility.Analysis) (*Answer, error) {
	t, err := a.prompts.Lookup(prompt.ID(role))
	if err != nil {
		return nil, fmt.Errorf("assistant %s: %w", role, err)
	}
	if t.Question == "" {
		return nil, fmt.Errorf("assistant %s: prompt has no question", role)
	}
	return a.ask(ctx, role, an, t.Question, true)
}

func (a *Assistant) ask(ctx context.Context, role string, an *feasibility.Analysis, question string, includeContext bool) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("assistant: empty question")
	}
	a.count(func(u *Usage) { u.Questions++ })

	tmpl, _ := a.prompts.Lookup(prompt.ID(role))
	userPrompt := question
	if includeContext && an != nil {
		rendered, err := prompt.RenderUserPrompt(tmpl, prompt.Vars{Context: BuildContext(an), Question: question})
		if err != nil {
			return nil, fmt.Errorf("assistant %s: %w", role, err)
		}
		userPrompt = rendered
	}
	system := a.prompts.SystemPrompt(prompt.ID(role))
	key := cacheKey(role, system+"\x00"+userPrompt)

	if md, ok := a.cache.Get(key); ok {
		a.count(func(u *Usage) { u.CacheHits++ })
		metrics.IncAssistant("hit")
		return a.answer(question, role, md, true), nil
	}

	md, err := a.mgr.ExecutePrompt(ctx, role, userPrompt, system, nil)
	if err != nil {
		a.count(func(u *Usage) { u.Errors++ })
		metrics.IncAssistant("error")
		return nil, fmt.Errorf("assistant %s: %w", role, err)
	}
	md = utils.CleanMarkdown(md)
	if !utils.ValidateMarkdown(md) {
		a.count(func(u *Usage) { u.Errors++ })
		metrics.IncAssistant("error")
		return nil, fmt.Errorf("assistant %s: empty answer", role)
	}
	a.cache.Set(key, md)
	metrics.IncAssistant("miss")
	return a.answer(question, role, md, false), nil
}

func (a *Assistant) answer(question, role, md string, cached bool) *Answer {
	html, err := utils.RenderMarkdown(md)
	if err != nil {
		fmt.Printf("[ASSISTANT] markdown render failed: %v\n", err)
	}
	return &Answer{Question: question, Agent: role, Markdown: md, HTML: html, Cached: cached}
}

func cacheKey(role, text string) string {
	sum := sha256.Sum256([]byte(role + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

// BuildContext summarises an analysis as Markdown for the prompt.
func BuildContext(an *feasibility.Analysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Project: %s\n", an.ProjectName)
	if an.Scenario != "" {
		fmt.Fprintf(&b, "Scenario: %s\n", an.Scenario)
	}

	p := an.Params
	b.WriteString("\n### Assumptions\n")
	fmt.Fprintf(&b, "- Purchase price: %s\n", utils.Money(p.PurchasePrice))
	fmt.Fprintf(&b, "- Construction cost: %s over %d months\n", utils.Money(p.ConstructionCost), p.ConstructionMonths)
	fmt.Fprintf(&b, "- Monthly rent: %s at %.1f%% occupancy, %.1f%% growth\n", utils.Money(p.MonthlyRent), p.OccupancyRate, p.RentGrowthRate)
	fmt.Fprintf(&b, "- Debt %.0f%% at %.2f%%, exit cap rate %.2f%%, hold %d years\n", p.DebtPct, p.InterestRate, p.ExitCapRate, p.HoldingPeriodYears)

	if r := an.Returns; r != nil {
		b.WriteString("\n### Returns\n")
		fmt.Fprintf(&b, "- IRR: %s\n", utils.FormatPercentage(r.IRR))
		fmt.Fprintf(&b, "- NPV @ %.0f%%: %s\n", returns.DiscountRate*100, utils.FormatCurrency(r.NPV))
		fmt.Fprintf(&b, "- Equity multiple: %s\n", utils.FormatMultiple(r.EquityMultiple))
		fmt.Fprintf(&b, "- Cash-on-cash: %s\n", utils.FormatPercentage(r.CashOnCash))
		fmt.Fprintf(&b, "- Average DSCR: %s\n", formatRatio(r.AvgDSCR))
		fmt.Fprintf(&b, "- Profit margin: %s\n", utils.FormatPercentage(r.ProfitMargin))
		fmt.Fprintf(&b, "- Equity invested %s, returned %s\n", utils.Money(r.TotalEquityInvested), utils.Money(r.TotalEquityReturned))
	}

	if len(an.Scenarios) > 0 {
		b.WriteString("\n### Scenarios (IRR)\n")
		for _, s := range returns.Scenarios {
			if r, ok := an.Scenarios[s.Name]; ok {
				fmt.Fprintf(&b, "- %s: %s\n", s.Name, utils.FormatPercentage(r.IRR))
			}
		}
	}

	if f := an.Financing; f != nil {
		b.WriteString("\n### Financing\n")
		fmt.Fprintf(&b, "- Construction payoff: %s\n", utils.Money(f.Refinance.ConstructionPayoff))
		fmt.Fprintf(&b, "- Investment loan: %s\n", utils.Money(f.Refinance.InvestmentLoanAmount))
		fmt.Fprintf(&b, "- Refinance feasible: %t (difference %s)\n", f.Refinance.Feasible, utils.Money(f.Refinance.CashDifference))
		fmt.Fprintf(&b, "- DSCR: %.2f (adequate: %t)\n", f.Debt.DSCR, f.Debt.DSCRAdequate)
		fmt.Fprintf(&b, "- Total equity required: %s\n", utils.Money(f.Equity.TotalEquityRequired))
	}

	if an.Costs != nil {
		b.WriteString("\n### Development cost\n")
		fmt.Fprintf(&b, "- Total development cost: %s\n", utils.Money(an.Costs.Summary.TotalDevelopmentCost))
	}

	if t := an.Tornado; t != nil && len(t.TornadoData) > 0 {
		b.WriteString("\n### Sensitivity ranking\n")
		for _, item := range t.TornadoData {
			fmt.Fprintf(&b, "- %s: %.2f IRR points (%s)\n", returns.VariableLabel(item.Variable), item.Impact, returns.SensitivityBand(item.Impact))
		}
	}
	return b.String()
}

func formatRatio(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2fx", *v)
}
