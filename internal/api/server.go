package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tcpires/peticiona/internal/assembly"
	"github.com/tcpires/peticiona/internal/config"
	"github.com/tcpires/peticiona/internal/fieldmeta"
	"github.com/tcpires/peticiona/internal/pipeline"
	"github.com/tcpires/peticiona/internal/rules"
	"github.com/tcpires/peticiona/internal/templates"
)

// Server is the HTTP API server for peticiona.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	repo         *templates.Repo
	assembler    *assembly.Assembler
	defs         []rules.SectionDef
	meta         fieldmeta.Provider
	latency      *assembly.Latency
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, repo *templates.Repo, asm *assembly.Assembler, defs []rules.SectionDef, meta fieldmeta.Provider, latency *assembly.Latency, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		repo:         repo,
		assembler:    asm,
		defs:         defs,
		meta:         meta,
		latency:      latency,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/templates", s.handleUploadTemplate)
		r.Get("/api/templates", s.handleListTemplates)
		r.Get("/api/templates/{templateID}/versions", s.handleTemplateVersions)
		r.Get("/api/templates/{templateID}/report", s.handleTemplateReport)
		r.Delete("/api/templates/{templateID}", s.handleDeleteTemplate)

		r.Post("/api/generate", s.handleGenerate)
		r.Post("/api/generate/batch", s.handleBatchGenerate)
		r.Get("/api/jobs/{jobID}", s.handleJobStatus)

		r.Get("/api/stats/assembly", s.handleAssemblyStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
