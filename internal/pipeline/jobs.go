package pipeline

import (
	"sync"
	"time"

	"github.com/tcpires/peticiona/internal/assembly"
	"github.com/tcpires/peticiona/internal/record"
)

// JobStatus represents the state of a generation job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusGenerating JobStatus = "generating"
	StatusCompleted  JobStatus = "completed"
	StatusPartial    JobStatus = "partial"
	StatusFailed     JobStatus = "failed"
)

// Job tracks one batch document generation: a template applied to a list
// of records.
type Job struct {
	mu sync.Mutex

	ID              string `json:"job_id"`
	TemplateID      string `json:"template_id"`
	TemplateVersion int    `json:"template_version"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	records []record.Record
	results []Result
}

// Result is the per-record outcome of a batch job.
type Result struct {
	Index      int            `json:"index"`
	OutputFile string         `json:"output_file,omitempty"`
	Stats      assembly.Stats `json:"stats"`
	Error      string         `json:"error,omitempty"`
}

// Progress tracks batch processing counts.
type Progress struct {
	TotalRecords int      `json:"total_records"`
	Processed    int      `json:"processed"`
	Succeeded    int      `json:"succeeded"`
	Partial      int      `json:"partial"`
	Failed       int      `json:"failed"`
	Errors       []string `json:"errors"`
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records a job-level error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Errors = append(j.Progress.Errors, err)
	j.UpdatedAt = time.Now()
}

// AddResult records the outcome of one record.
func (j *Job) AddResult(r Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.results = append(j.results, r)
	j.Progress.Processed++
	switch {
	case r.Error != "":
		j.Progress.Failed++
		j.Progress.Errors = append(j.Progress.Errors, r.Error)
	case r.Stats.Status == assembly.StatusPartial:
		j.Progress.Partial++
	case r.Stats.Status == assembly.StatusError:
		j.Progress.Failed++
	default:
		j.Progress.Succeeded++
	}
	j.UpdatedAt = time.Now()
}

// SetRecords stores the batch input.
func (j *Job) SetRecords(recs []record.Record) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = recs
	j.Progress.TotalRecords = len(recs)
}

// Records returns the batch input.
func (j *Job) Records() []record.Record {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.records
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID              string    `json:"job_id"`
	TemplateID      string    `json:"template_id"`
	TemplateVersion int       `json:"template_version"`
	Status          JobStatus `json:"status"`
	Phase           string    `json:"phase"`
	Progress        Progress  `json:"progress"`
	Results         []Result  `json:"results,omitempty"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	results := make([]Result, len(j.results))
	copy(results, j.results)
	return JobSnapshot{
		ID:              j.ID,
		TemplateID:      j.TemplateID,
		TemplateVersion: j.TemplateVersion,
		Status:          j.Status,
		Phase:           j.Phase,
		Progress: Progress{
			TotalRecords: j.Progress.TotalRecords,
			Processed:    j.Progress.Processed,
			Succeeded:    j.Progress.Succeeded,
			Partial:      j.Progress.Partial,
			Failed:       j.Progress.Failed,
			Errors:       errs,
		},
		Results: results,
	}
}
