package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tcpires/peticiona/internal/assembly"
	"github.com/tcpires/peticiona/internal/docxio"
	"github.com/tcpires/peticiona/internal/pipeline"
	"github.com/tcpires/peticiona/internal/record"
	"github.com/tcpires/peticiona/internal/templates"
)

type generateRequest struct {
	TemplateID string         `json:"template_id"`
	Version    int            `json:"version,omitempty"`
	Record     map[string]any `json:"record"`
}

// handleGenerate assembles one document synchronously and streams the
// .docx back.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.TemplateID == "" {
		jsonError(w, "template_id is required", http.StatusBadRequest)
		return
	}
	if len(req.Record) == 0 {
		jsonError(w, "record is required", http.StatusBadRequest)
		return
	}

	path, meta, err := s.repo.Resolve(req.TemplateID, req.Version)
	if err != nil {
		if errors.Is(err, templates.ErrNotFound) {
			jsonError(w, err.Error(), http.StatusNotFound)
			return
		}
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	doc, err := docxio.Open(path)
	if err != nil {
		jsonError(w, "failed to parse template: "+err.Error(), http.StatusInternalServerError)
		return
	}

	rec := make(record.Record, len(req.Record))
	for k, v := range req.Record {
		rec[k] = record.Coerce(v)
	}

	_, stats, err := s.assembler.AssembleDocument(doc.Units(), rec)
	if err != nil {
		var missing *assembly.RequiredFieldMissingError
		if errors.As(err, &missing) {
			jsonError(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		jsonError(w, "assembly failed: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		jsonError(w, "failed to serialize document: "+err.Error(), http.StatusInternalServerError)
		return
	}

	statsJSON, _ := json.Marshal(stats)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", req.TemplateID+".docx"))
	w.Header().Set("X-Assembly-Stats", string(statsJSON))
	w.Header().Set("X-Template-Version", fmt.Sprintf("%d", meta.Version))
	w.Write(buf.Bytes())
}

// handleBatchGenerate queues a job that applies one template to every row
// of an uploaded CSV.
func (s *Server) handleBatchGenerate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	templateID := r.FormValue("template_id")
	if templateID == "" {
		jsonError(w, "template_id is required", http.StatusBadRequest)
		return
	}
	version := 0
	if v := r.FormValue("version"); v != "" {
		if _, err := fmt.Sscanf(v, "%d", &version); err != nil || version < 0 {
			jsonError(w, "invalid version", http.StatusBadRequest)
			return
		}
	}
	separator := ';'
	if v := r.FormValue("separator"); v != "" {
		separator = []rune(v)[0]
	}

	file, _, err := r.FormFile("records")
	if err != nil {
		jsonError(w, "records file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	recs, err := record.ReadCSV(file, separator)
	if err != nil {
		jsonError(w, "failed to read records: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(recs) == 0 {
		jsonError(w, "records file contains no rows", http.StatusBadRequest)
		return
	}

	now := time.Now()
	job := &pipeline.Job{
		ID:              pipeline.NewID(),
		TemplateID:      templateID,
		TemplateVersion: version,
		Status:          pipeline.StatusQueued,
		Phase:           "queued",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	job.SetRecords(recs)

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"status":   job.Status,
		"records":  len(recs),
		"poll_url": fmt.Sprintf("/api/jobs/%s", job.ID),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}
