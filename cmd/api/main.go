package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dev_feasibility/pkg/api/assistant"
	"dev_feasibility/pkg/api/auth"
	"dev_feasibility/pkg/api/config"
	"dev_feasibility/pkg/api/feasibility"
	"dev_feasibility/pkg/core/agent"
	coreAssistant "dev_feasibility/pkg/core/assistant"
	"dev_feasibility/pkg/core/cache"
	appConfig "dev_feasibility/pkg/core/config"
	"dev_feasibility/pkg/core/metrics"
	"dev_feasibility/pkg/core/prompt"
	"dev_feasibility/pkg/core/store"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	configPath := os.Getenv("FEASIBILITY_CONFIG")
	if configPath == "" {
		configPath = "config/app.yaml"
	}
	cfg, err := appConfig.Load(configPath)
	if err != nil {
		fmt.Printf("[FATAL] %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("[FATAL] invalid config: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize manager from config
	agentCfg, modelsErr := agent.LoadConfig(cfg.Assistant.ModelsFile)
	if modelsErr != nil {
		fmt.Printf("[WARNING] %v, using offline provider\n", modelsErr)
	}
	agentMgr := agent.NewManager(agentCfg)
	answers := cache.NewTTL[string](cfg.Assistant.CacheTTL)
	// Prompt library: built-in templates, overridden by files on disk
	prompts := prompt.Get()
	if _, err := prompt.LoadFromDirectory(prompts, cfg.Assistant.PromptsDir); err != nil {
		fmt.Printf("[WARNING] Failed to load prompt library: %v\n", err)
		fmt.Println("  Falling back to built-in prompts")
	}
	asst := coreAssistant.New(agentMgr, answers).WithPrompts(prompts)

	repo, err := openRepo(ctx, cfg.Storage)
	if err != nil {
		fmt.Printf("[FATAL] storage: %v\n", err)
		os.Exit(1)
	}
	defer repo.Close()
	defer store.Close()

	mux := http.NewServeMux()

	// Config endpoints
	config.NewHandler(agentMgr, config.Source{ModelsFile: cfg.Assistant.ModelsFile, LoadErr: modelsErr}).Register(mux)

	// Engine, report and project endpoints
	feasibility.NewHandler(repo, asst).Register(mux)

	// Assistant endpoints, bounded by the assistant timeout
	assistantMux := http.NewServeMux()
	assistant.NewHandler(asst, repo).Register(assistantMux)
	mux.Handle("/api/assistant/", http.TimeoutHandler(assistantMux, cfg.Assistant.Timeout, `{"error":"assistant timed out"}`))

	var api http.Handler = mux
	if cfg.Auth.Enabled {
		api = auth.NewMiddleware([]byte(cfg.Auth.JWTSecret), cfg.Auth.Issuer).Wrap(mux)
		fmt.Println("[API] Bearer token auth enabled")
	}

	root := http.NewServeMux()
	root.Handle("/metrics", metrics.Handler())
	root.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	root.Handle("/", api)

	go purgeAnswers(ctx, answers, cfg.Assistant.CacheTTL)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      root,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	fmt.Printf("API server starting on %s (storage=%s, assistant=%s)...\n", srv.Addr, cfg.Storage.Driver, agentMgr.GetActiveProvider())
	fmt.Println("  - POST /api/feasibility/analyze")
	fmt.Println("  - POST /api/feasibility/{costs,returns,sensitivity,tornado,report}")
	fmt.Println("  - POST /api/feasibility/loans/{construction,investment,dual-phase}, GET /api/feasibility/loans/benchmarks")
	fmt.Println("  - GET/POST /api/projects, GET/DELETE /api/projects/{id}")
	fmt.Println("  - POST /api/assistant/ask, GET /api/assistant/usage")
	fmt.Println("  - GET  /api/config, POST /api/config/switch")
	fmt.Println("  - GET  /metrics")

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			fmt.Printf("[FATAL] Server failed to start: %v\n", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		fmt.Println("[API] Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("[API] shutdown: %v\n", err)
		}
	}
}

func openRepo(ctx context.Context, sc appConfig.StorageConfig) (store.ProjectRepo, error) {
	switch sc.Driver {
	case "postgres":
		opts := store.PGOptions{URL: sc.PostgresURL, MaxConns: sc.MaxConns, ConnectTimeout: sc.ConnectTimeout}
		if err := store.InitDB(ctx, opts); err != nil {
			return nil, err
		}
		repo, err := store.NewPGProjectRepo(ctx, store.GetPool())
		if err != nil {
			store.Close()
			return nil, err
		}
		return repo, nil
	default:
		repo, err := store.NewSQLiteProjectRepo(sc.SQLitePath)
		if err != nil {
			return nil, err
		}
		return repo, nil
	}
}

// purgeAnswers drops expired assistant answers until ctx ends.
func purgeAnswers(ctx context.Context, answers *cache.TTL[string], ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := answers.Purge(); n > 0 {
				fmt.Printf("[ASSISTANT] Purged %d expired answers\n", n)
			}
		}
	}
}
