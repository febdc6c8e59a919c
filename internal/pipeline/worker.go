package pipeline

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/tcpires/peticiona/internal/assembly"
	"github.com/tcpires/peticiona/internal/docxio"
	"github.com/tcpires/peticiona/internal/record"
	"github.com/tcpires/peticiona/internal/templates"
)

// Worker processes a single generation job: one template version applied
// to every record in the batch.
type Worker struct {
	repo      *templates.Repo
	assembler *assembly.Assembler
	outputDir string
	log       *slog.Logger

	maxConcurrentRecords int
}

func NewWorker(repo *templates.Repo, asm *assembly.Assembler, outputDir string, log *slog.Logger, maxRecords int) *Worker {
	if maxRecords < 1 {
		maxRecords = 1
	}
	return &Worker{
		repo:                 repo,
		assembler:            asm,
		outputDir:            outputDir,
		log:                  log,
		maxConcurrentRecords: maxRecords,
	}
}

// Process runs the full generation pipeline for a job. Record failures are
// isolated: one bad record never aborts the batch.
func (w *Worker) Process(job *Job) {
	log := w.log.With("job_id", job.ID, "template", job.TemplateID)

	job.SetStatus(StatusGenerating, "resolving_template")
	path, meta, err := w.repo.Resolve(job.TemplateID, job.TemplateVersion)
	if err != nil {
		log.Error("template resolution failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "resolving_template")
		return
	}
	job.TemplateVersion = meta.Version

	recs := job.Records()
	if len(recs) == 0 {
		job.AddError("no records to process")
		job.SetStatus(StatusFailed, "generating")
		return
	}

	job.SetStatus(StatusGenerating, "generating")

	var g errgroup.Group
	g.SetLimit(w.maxConcurrentRecords)
	for i, rec := range recs {
		i, rec := i, rec
		g.Go(func() error {
			res := w.generateOne(job, path, i, rec)
			if res.Error != "" {
				log.Error("record generation failed", "record", i, "error", res.Error)
			}
			job.AddResult(res)
			return nil
		})
	}
	g.Wait()

	snap := job.Snapshot()
	switch {
	case snap.Progress.Succeeded+snap.Progress.Partial == 0:
		job.SetStatus(StatusFailed, "done")
	case snap.Progress.Failed > 0 || snap.Progress.Partial > 0:
		job.SetStatus(StatusPartial, "done")
	default:
		job.SetStatus(StatusCompleted, "done")
	}
	log.Info("job finished",
		"succeeded", snap.Progress.Succeeded,
		"partial", snap.Progress.Partial,
		"failed", snap.Progress.Failed)
}

// generateOne assembles the template for one record. The template file is
// re-parsed per record because assembly mutates the document in place.
func (w *Worker) generateOne(job *Job, templatePath string, idx int, rec record.Record) Result {
	res := Result{Index: idx}

	doc, err := docxio.Open(templatePath)
	if err != nil {
		res.Error = fmt.Sprintf("record %d: %s", idx, err)
		return res
	}

	_, stats, err := w.assembler.AssembleDocument(doc.Units(), rec)
	if err != nil {
		res.Error = fmt.Sprintf("record %d: %s", idx, err)
		return res
	}
	res.Stats = stats

	name := fmt.Sprintf("%s-%s-%03d.docx", job.TemplateID, job.ID, idx)
	outPath := filepath.Join(w.outputDir, name)
	if err := doc.Save(outPath); err != nil {
		res.Error = fmt.Sprintf("record %d: %s", idx, err)
		return res
	}
	res.OutputFile = name
	return res
}
