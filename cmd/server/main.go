package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tcpires/peticiona/internal/api"
	"github.com/tcpires/peticiona/internal/assembly"
	"github.com/tcpires/peticiona/internal/config"
	"github.com/tcpires/peticiona/internal/fieldmeta"
	"github.com/tcpires/peticiona/internal/pipeline"
	"github.com/tcpires/peticiona/internal/rules"
	"github.com/tcpires/peticiona/internal/templates"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	defs, err := rules.LoadSections(cfg.SectionRulesPath)
	if err != nil {
		log.Error("failed to load section rules", "path", cfg.SectionRulesPath, "error", err)
		os.Exit(1)
	}
	log.Info("section rules loaded", "path", cfg.SectionRulesPath, "sections", len(defs))

	var meta fieldmeta.Provider = fieldmeta.NullProvider{}
	if cfg.FieldDBPath != "" {
		store, err := fieldmeta.OpenSQLite(cfg.FieldDBPath, log)
		if err != nil {
			log.Error("failed to open field metadata db", "path", cfg.FieldDBPath, "error", err)
			os.Exit(1)
		}
		meta = store
	}

	repo, err := templates.NewRepo(cfg.TemplateDir, log)
	if err != nil {
		log.Error("failed to open template repository", "error", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		log.Error("failed to create output dir", "error", err)
		os.Exit(1)
	}

	latency := assembly.NewLatency(cfg.StatsWindow)
	asm := assembly.New(defs, meta, assembly.Options{
		Strict:              cfg.StrictRequired,
		TitleScoreThreshold: cfg.TitleScoreThreshold,
	}, latency, log)

	orch := pipeline.NewOrchestrator(cfg, repo, asm, log)
	orch.Start(ctx)

	srv := api.NewServer(orch, repo, asm, defs, meta, latency, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		// Drain HTTP first so no handler can submit into a stopped pipeline.
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
	}()

	log.Info("starting peticiona", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
