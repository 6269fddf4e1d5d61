// Package feasibility exposes the cost, loan, returns and report engines over
// HTTP, plus CRUD for saved projects.
package feasibility

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"dev_feasibility/pkg/core/assistant"
	"dev_feasibility/pkg/core/assumption"
	"dev_feasibility/pkg/core/costs"
	coreFeasibility "dev_feasibility/pkg/core/feasibility"
	"dev_feasibility/pkg/core/fin"
	"dev_feasibility/pkg/core/loan"
	"dev_feasibility/pkg/core/metrics"
	"dev_feasibility/pkg/core/report"
	"dev_feasibility/pkg/core/returns"
	"dev_feasibility/pkg/core/store"

	json "github.com/goccy/go-json"
)

const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("bad request")

// Handler serves /api/feasibility/* and /api/projects*.
type Handler struct {
	repo      store.ProjectRepo
	assistant *assistant.Assistant
}

// NewHandler wires the handlers. asst may be nil, in which case reports are
// built without commentary.
func NewHandler(repo store.ProjectRepo, asst *assistant.Assistant) *Handler {
	return &Handler{repo: repo, assistant: asst}
}

// Register mounts every route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/feasibility/analyze", h.HandleAnalyze)
	mux.HandleFunc("/api/feasibility/costs", h.HandleCosts)
	mux.HandleFunc("/api/feasibility/loans/construction", h.HandleConstructionLoan)
	mux.HandleFunc("/api/feasibility/loans/investment", h.HandleInvestmentLoan)
	mux.HandleFunc("/api/feasibility/loans/dual-phase", h.HandleDualPhase)
	mux.HandleFunc("/api/feasibility/loans/benchmarks", h.HandleBenchmarks)
	mux.HandleFunc("/api/feasibility/returns", h.HandleReturns)
	mux.HandleFunc("/api/feasibility/sensitivity", h.HandleSensitivity)
	mux.HandleFunc("/api/feasibility/tornado", h.HandleTornado)
	mux.HandleFunc("/api/feasibility/report", h.HandleReport)
	mux.HandleFunc("/api/projects", h.HandleProjects)
	mux.HandleFunc("/api/projects/{id}", h.HandleProject)
}

// =============================================================================
// HELPERS
// =============================================================================

// preflight sets CORS headers and reports whether the request is finished.
func preflight(w http.ResponseWriter, r *http.Request, methods string) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", methods+", OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fmt.Printf("[API] encode response: %v\n", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// writeError maps invalid assumptions to 400 and anything else to 500.
func writeError(w http.ResponseWriter, err error) {
	var ae *fin.AssumptionError
	switch {
	case errors.As(err, &ae):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Field: ae.Field})
	case errors.Is(err, fin.ErrInvalidAssumption):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, errBadRequest):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		fmt.Printf("[API] request failed: %v\n", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func readBody(r *http.Request) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
}

// decodeOver unmarshals the body over an already defaulted value.
func decodeOver(r *http.Request, v interface{}) error {
	body, err := readBody(r)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, v)
}

// parseAssumptions reads a lenient assumption document from the body.
func parseAssumptions(r *http.Request) (*assumption.Set, error) {
	body, err := readBody(r)
	if err != nil {
		return nil, err
	}
	set, err := assumption.Parse(body)
	if err != nil && !errors.Is(err, fin.ErrInvalidAssumption) {
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return set, err
}

func tornadoRange(r *http.Request) (float64, error) {
	raw := r.URL.Query().Get("tornado_range")
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("tornado_range must be a number")
	}
	return v, nil
}

func observe(op string, start time.Time, err error) {
	result := metrics.ResultSuccess
	switch {
	case errors.Is(err, fin.ErrInvalidAssumption):
		result = metrics.ResultInvalid
	case err != nil:
		result = metrics.ResultError
	}
	metrics.ObserveCalculation(op, result, time.Since(start))
}

// =============================================================================
// ENGINES
// =============================================================================

// HandleAnalyze runs every engine over an assumption document.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r, "POST") || !requireMethod(w, r, http.MethodPost) {
		return
	}
	set, err := parseAssumptions(r)
	if err != nil {
		writeError(w, err)
		return
	}
	rng, err := tornadoRange(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	an, err := coreFeasibility.Run(r.Context(), set, coreFeasibility.Options{TornadoRange: rng})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, an)
}

type costsResponse struct {
	Breakdown *costs.Breakdown   `json:"breakdown"`
	Summary   []costs.SummaryRow `json:"summary"`
}

func (h *Handler) HandleCosts(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r, "POST") || !requireMethod(w, r, http.MethodPost) {
		return
	}
	a := costs.DefaultAssumptions()
	if err := decodeOver(r, &a); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	start := time.Now()
	b, err := costs.Estimate(a)
	observe("costs", start, err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, costsResponse{Breakdown: b, Summary: costs.SummaryTable(b)})
}

func (h *Handler) HandleConstructionLoan(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r, "POST") || !requireMethod(w, r, http.MethodPost) {
		return
	}
	terms := loan.DefaultConstructionTerms()
	if err := decodeOver(r, &terms); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	start := time.Now()
	l, err := loan.NewConstructionLoan(terms)
	observe("construction_loan", start, err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l.Summary())
}

func (h *Handler) HandleInvestmentLoan(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r, "POST") || !requireMethod(w, r, http.MethodPost) {
		return
	}
	terms := loan.DefaultInvestmentTerms()
	if err := decodeOver(r, &terms); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	start := time.Now()
	l, err := loan.NewInvestmentLoan(terms)
	observe("investment_loan", start, err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l.Summary())
}

type dualPhaseResponse struct {
	*loan.DualPhaseResult
	Comparison []loan.ComparisonRow `json:"comparison_table"`
}

func (h *Handler) HandleDualPhase(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r, "POST") || !requireMethod(w, r, http.MethodPost) {
		return
	}
	terms := loan.DefaultDualPhaseTerms()
	if err := decodeOver(r, &terms); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	start := time.Now()
	res, err := loan.AnalyzeDualPhase(terms)
	observe("dual_phase", start, err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dualPhaseResponse{DualPhaseResult: res, Comparison: res.ComparisonTable()})
}

// HandleBenchmarks returns the typical AU lending ranges.
func (h *Handler) HandleBenchmarks(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r, "GET") || !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, loan.AUBenchmarks)
}

// modelFromBody decodes project params over the defaults.
func modelFromBody(raw json.RawMessage) (*returns.Model, error) {
	p := returns.DefaultProjectParams()
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("invalid params: %w", err)
		}
	}
	return returns.NewModel(p)
}

type returnsRequest struct {
	Params   json.RawMessage `json:"params"`
	Scenario string          `json:"scenario"`
}

// HandleReturns runs one returns model, optionally under a named scenario.
func (h *Handler) HandleReturns(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r, "POST") || !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req returnsRequest
	if err := decodeOver(r, &req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	start := time.Now()
	res, err := func() (*returns.Result, error) {
		m, err := modelFromBody(req.Params)
		if err != nil {
			return nil, err
		}
		if req.Scenario == "" {
			return m.Returns()
		}
		adj, ok := returns.ScenarioByName(req.Scenario)
		if !ok {
			return nil, fmt.Errorf("%w: unknown scenario %q", fin.ErrInvalidAssumption, req.Scenario)
		}
		return m.Scenario(adj)
	}()
	observe("returns", start, err)
	if err != nil {
		writeError(w, err)
		return
	}
	if res.IRR == nil {
		metrics.IncUndefinedIRR()
	}
	writeJSON(w, http.StatusOK, res)
}

type sensitivityRequest struct {
	Params   json.RawMessage `json:"params"`
	Variable string          `json:"variable"`
	RangePct float64         `json:"range_pct"`
	Steps    int             `json:"steps"`
}

func (h *Handler) HandleSensitivity(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r, "POST") || !requireMethod(w, r, http.MethodPost) {
		return
	}
	req := sensitivityRequest{Variable: returns.VarRent, RangePct: 20, Steps: 5}
	if err := decodeOver(r, &req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	start := time.Now()
	res, err := func() (*returns.SensitivityResult, error) {
		m, err := modelFromBody(req.Params)
		if err != nil {
			return nil, err
		}
		return m.Sensitivity(req.Variable, req.RangePct, req.Steps)
	}()
	observe("sensitivity", start, err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type tornadoRequest struct {
	Params   json.RawMessage `json:"params"`
	RangePct float64         `json:"range_pct"`
}

func (h *Handler) HandleTornado(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r, "POST") || !requireMethod(w, r, http.MethodPost) {
		return
	}
	req := tornadoRequest{RangePct: coreFeasibility.DefaultTornadoRange}
	if err := decodeOver(r, &req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	start := time.Now()
	res, err := func() (*returns.TornadoResult, error) {
		m, err := modelFromBody(req.Params)
		if err != nil {
			return nil, err
		}
		return m.Tornado(req.RangePct)
	}()
	observe("tornado", start, err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// =============================================================================
// REPORTS
// =============================================================================

// HandleReport renders ?format=pdf (default), xlsx or json for an assumption
// document. ?commentary=true asks the assistant for a review first.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r, "POST") || !requireMethod(w, r, http.MethodPost) {
		return
	}
	set, err := parseAssumptions(r)
	if err != nil {
		writeError(w, err)
		return
	}
	an, err := coreFeasibility.Run(r.Context(), set, coreFeasibility.Options{})
	if err != nil {
		writeError(w, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "pdf"
	}
	switch format {
	case "json":
		writeJSON(w, http.StatusOK, report.Summarize(an))
	case "xlsx":
		data, err := report.BuildXLSX(an)
		if err != nil {
			writeError(w, err)
			return
		}
		sendFile(w, data, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", set.ProjectName+".xlsx")
	case "pdf":
		commentary := h.commentary(r.Context(), an, r.URL.Query().Get("commentary") == "true")
		data, err := report.BuildPDF(an, commentary)
		if err != nil {
			writeError(w, err)
			return
		}
		sendFile(w, data, "application/pdf", set.ProjectName+".pdf")
	default:
		badRequest(w, "format must be one of: pdf, xlsx, json")
	}
}

// commentary returns rendered assistant HTML, or "" when unavailable. A
// failed review does not fail the report.
func (h *Handler) commentary(ctx context.Context, an *coreFeasibility.Analysis, want bool) string {
	if !want || h.assistant == nil {
		return ""
	}
	ans, err := h.assistant.ReviewReturns(ctx, an)
	if err != nil {
		fmt.Printf("[API] report commentary skipped: %v\n", err)
		return ""
	}
	return ans.HTML
}

func sendFile(w http.ResponseWriter, data []byte, contentType, name string) {
	if name == "" || name[0] == '.' {
		name = "feasibility" + name
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// =============================================================================
// PROJECTS
// =============================================================================

// HandleProjects lists saved projects (GET) or runs and saves one (POST).
func (h *Handler) HandleProjects(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r, "GET, POST") {
		return
	}
	switch r.Method {
	case http.MethodGet:
		list, err := h.repo.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		if list == nil {
			list = []*store.Project{}
		}
		writeJSON(w, http.StatusOK, list)
	case http.MethodPost:
		set, err := parseAssumptions(r)
		if err != nil {
			writeError(w, err)
			return
		}
		an, err := coreFeasibility.Run(r.Context(), set, coreFeasibility.Options{})
		if err != nil {
			writeError(w, err)
			return
		}
		p := store.NewProject(set, an)
		if status := r.URL.Query().Get("status"); status != "" {
			p.Status = status
		}
		if err := h.repo.Save(r.Context(), p); err != nil {
			writeError(w, err)
			return
		}
		fmt.Printf("[API] Saved project %s (%s)\n", p.ID, p.Name)
		writeJSON(w, http.StatusCreated, p)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleProject loads (GET) or deletes (DELETE) one saved project.
func (h *Handler) HandleProject(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r, "GET, DELETE") {
		return
	}
	id := r.PathValue("id")
	switch r.Method {
	case http.MethodGet:
		p, err := h.repo.Load(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	case http.MethodDelete:
		if err := h.repo.Delete(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
