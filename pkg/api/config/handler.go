// Package config serves the assistant's provider routing: which LLM answers
// each assistant role, and switching the global provider at runtime.
package config

import (
	"fmt"
	"net/http"

	"dev_feasibility/pkg/core/agent"
	"dev_feasibility/pkg/core/assistant"

	json "github.com/goccy/go-json"
)

// Route is the provider one assistant role resolves to.
type Route struct {
	Role     string `json:"role"`
	Provider string `json:"provider"`
	Override bool   `json:"override"`
}

type Response struct {
	ActiveProvider string   `json:"active_provider"`
	Available      []string `json:"available"`
	Routes         []Route  `json:"routes"`
	ModelsFile     string   `json:"models_file,omitempty"`
	// LoadError is set when the models file could not be read and the
	// server fell back to the offline provider.
	LoadError string `json:"load_error,omitempty"`
}

type SwitchRequest struct {
	Provider string `json:"provider"`
}

type SwitchResponse struct {
	ActiveProvider string  `json:"active_provider"`
	Routes         []Route `json:"routes"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Source records where the routing came from.
type Source struct {
	ModelsFile string
	LoadErr    error
}

type Handler struct {
	mgr    *agent.Manager
	source Source
}

func NewHandler(mgr *agent.Manager, source Source) *Handler {
	return &Handler{mgr: mgr, source: source}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/config", h.HandleConfig)
	mux.HandleFunc("/api/config/switch", h.HandleSwitch)
}

func (h *Handler) routes() []Route {
	out := make([]Route, 0, len(assistant.Roles))
	for _, role := range assistant.Roles {
		name, override := h.mgr.Route(role)
		out = append(out, Route{Role: role, Provider: name, Override: override})
	}
	return out
}

func cors(w http.ResponseWriter, methods string) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", methods)
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fmt.Printf("[API] encode response: %v\n", err)
	}
}

func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	cors(w, "GET, OPTIONS")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	resp := Response{
		ActiveProvider: h.mgr.GetActiveProvider(),
		Available:      h.mgr.Providers(),
		Routes:         h.routes(),
		ModelsFile:     h.source.ModelsFile,
	}
	if h.source.LoadErr != nil {
		resp.LoadError = h.source.LoadErr.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleSwitch(w http.ResponseWriter, r *http.Request) {
	cors(w, "POST, OPTIONS")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	var req SwitchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Provider == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "provider is required"})
		return
	}
	if err := h.mgr.SetGlobalProvider(req.Provider); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, SwitchResponse{ActiveProvider: h.mgr.GetActiveProvider(), Routes: h.routes()})
}
