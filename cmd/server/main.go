package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/elwin56/MengMengShangAn-program/internal/agent"
	"github.com/elwin56/MengMengShangAn-program/internal/config"
	"github.com/elwin56/MengMengShangAn-program/internal/finance"
	"github.com/elwin56/MengMengShangAn-program/internal/llm"
	"github.com/elwin56/MengMengShangAn-program/internal/middleware"
	"github.com/elwin56/MengMengShangAn-program/internal/models"
	"github.com/elwin56/MengMengShangAn-program/internal/server"
	"github.com/elwin56/MengMengShangAn-program/internal/storage/sqlite"
	"github.com/elwin56/MengMengShangAn-program/pkg/logging"
)

// defaultUserID is the single local user every conversation and
// transaction belongs to.
const defaultUserID = 1

func main() {
	logging.Setup()
	cfg := config.Load()

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("storage initialized", "database", cfg.DBPath)

	if err := store.EnsureUser(context.Background(), defaultUserID, cfg.UserName); err != nil {
		slog.Error("failed to ensure user", "error", err)
		os.Exit(1)
	}

	var gen llm.Generator
	if cfg.UseRuleFallback() {
		slog.Warn("no model API configured, using rule-based replies")
		gen = llm.NewRuleGenerator()
	} else {
		slog.Info("using remote model", "model", cfg.ModelName, "url", cfg.ModelAPIURL)
		gen = llm.NewClient(cfg.ModelName, cfg.ModelAPIURL, cfg.ModelAPIKey)
	}

	toolbox := finance.New(store, defaultUserID)
	sessions := make(map[models.AgentType]*agent.Session, len(agent.Personas()))
	for _, persona := range agent.Personas() {
		sessions[persona.Type] = agent.NewSession(store, gen, persona, persona.Bind(toolbox), defaultUserID)
	}

	staticDir, err := filepath.Abs(cfg.StaticPath)
	if err != nil {
		slog.Error("failed to resolve static path", "error", err)
		os.Exit(1)
	}
	slog.Info("serving static files", "path", staticDir)

	handler := middleware.Logging(middleware.CORS(server.New(store, sessions, staticDir).Handler()))

	// HTTP/2 without TLS keeps the server usable behind h2c-capable proxies.
	h2cHandler := h2c.NewHandler(handler, &http2.Server{})

	addr := ":" + cfg.Port
	slog.Info("finance assistant starting", "address", addr, "url", "http://localhost"+addr)
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
