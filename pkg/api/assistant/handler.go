package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"dev_feasibility/pkg/core/assistant"
	"dev_feasibility/pkg/core/assumption"
	"dev_feasibility/pkg/core/feasibility"
	"dev_feasibility/pkg/core/fin"
	"dev_feasibility/pkg/core/store"

	json "github.com/goccy/go-json"
)

// Question kinds beyond a free-form question.
const (
	KindQuestion  = "question"
	KindReturns   = "returns"
	KindFinancing = "financing"
	KindActions   = "actions"
	KindRisks     = "risks"
)

// Handler provides HTTP handlers for the analysis assistant
type Handler struct {
	asst *assistant.Assistant
	repo store.ProjectRepo
}

// NewHandler creates a new assistant handler. repo may be nil, in which case
// questions must carry their own assumptions.
func NewHandler(asst *assistant.Assistant, repo store.ProjectRepo) *Handler {
	return &Handler{asst: asst, repo: repo}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/assistant/ask", h.HandleAsk)
	mux.HandleFunc("/api/assistant/usage", h.HandleUsage)
}

// AskRequest names the analysis either by saved project or by inline
// assumptions.
type AskRequest struct {
	Question       string          `json:"question"`
	Kind           string          `json:"kind,omitempty"`
	ProjectID      string          `json:"project_id,omitempty"`
	Assumptions    json.RawMessage `json:"assumptions,omitempty"`
	IncludeContext *bool           `json:"include_context,omitempty"`
}

func cors(w http.ResponseWriter, r *http.Request, methods string) bool {
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
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// HandleAsk answers one question about a project
func (h *Handler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	if cors(w, r, "POST") {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	var req AskRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Kind == "" {
		req.Kind = KindQuestion
	}
	if req.Kind == KindQuestion && strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	an, status, err := h.resolve(r.Context(), req)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}

	ctx := r.Context()
	var ans *assistant.Answer
	switch req.Kind {
	case KindQuestion:
		include := req.IncludeContext == nil || *req.IncludeContext
		ans, err = h.asst.Ask(ctx, an, req.Question, include && an != nil)
	case KindReturns, KindFinancing, KindActions, KindRisks:
		if an == nil {
			writeError(w, http.StatusBadRequest, "project_id or assumptions is required for "+req.Kind)
			return
		}
		ans, err = h.review(ctx, req.Kind, an)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown kind %q", req.Kind))
		return
	}
	if err != nil {
		fmt.Printf("[ASSISTANT] %s failed: %v\n", req.Kind, err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ans)
}

func (h *Handler) review(ctx context.Context, kind string, an *feasibility.Analysis) (*assistant.Answer, error) {
	switch kind {
	case KindReturns:
		return h.asst.ReviewReturns(ctx, an)
	case KindFinancing:
		return h.asst.ReviewFinancing(ctx, an)
	case KindActions:
		return h.asst.SuggestActions(ctx, an)
	default:
		return h.asst.IdentifyRisks(ctx, an)
	}
}

// resolve runs the analysis the request refers to. A request with neither a
// project nor assumptions yields a nil analysis and no error.
func (h *Handler) resolve(ctx context.Context, req AskRequest) (*feasibility.Analysis, int, error) {
	var set *assumption.Set
	switch {
	case req.ProjectID != "":
		if h.repo == nil {
			return nil, http.StatusBadRequest, errors.New("project storage is not configured")
		}
		p, err := h.repo.Load(ctx, req.ProjectID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, http.StatusNotFound, err
		}
		if err != nil {
			return nil, http.StatusInternalServerError, err
		}
		if p.Assumptions == nil {
			return nil, http.StatusInternalServerError, fmt.Errorf("project %s has no assumptions", p.ID)
		}
		set = p.Assumptions
	case len(req.Assumptions) > 0:
		s, err := assumption.Parse(req.Assumptions)
		if err != nil {
			return nil, http.StatusBadRequest, err
		}
		set = s
	default:
		return nil, http.StatusOK, nil
	}

	an, err := feasibility.Run(ctx, set, feasibility.Options{})
	if errors.Is(err, fin.ErrInvalidAssumption) {
		return nil, http.StatusBadRequest, err
	}
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	return an, http.StatusOK, nil
}

// HandleUsage reports question counts since startup
func (h *Handler) HandleUsage(w http.ResponseWriter, r *http.Request) {
	if cors(w, r, "GET") {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.asst.Usage())
}
