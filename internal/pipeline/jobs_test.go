package pipeline

import (
	"testing"
	"time"

	"github.com/tcpires/peticiona/internal/assembly"
	"github.com/tcpires/peticiona/internal/record"
)

func TestNewID_UniqueAndSortable(t *testing.T) {
	seen := make(map[string]bool)
	var prev string
	for i := 0; i < 100; i++ {
		id := NewID()
		if len(id) != 26 {
			t.Fatalf("expected 26-char id, got %d (%q)", len(id), id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
		prev = id
	}
	time.Sleep(2 * time.Millisecond)
	next := NewID()
	if next <= prev {
		t.Errorf("expected later id to sort after earlier one: %q <= %q", next, prev)
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusGenerating, "resolving_template"},
		{StatusGenerating, "generating"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("record 3 failed")
	job.AddError("record 7 failed")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "record 3 failed" {
		t.Errorf("expected first error %q, got %q", "record 3 failed", snap.Progress.Errors[0])
	}
}

func TestJob_AddResultCounts(t *testing.T) {
	job := &Job{ID: "res-test", UpdatedAt: time.Now()}

	job.AddResult(Result{Index: 0, Stats: assembly.Stats{Status: assembly.StatusSuccess}})
	job.AddResult(Result{Index: 1, Stats: assembly.Stats{Status: assembly.StatusPartial}})
	job.AddResult(Result{Index: 2, Error: "record 2: boom"})

	snap := job.Snapshot()
	if snap.Progress.Processed != 3 {
		t.Errorf("expected 3 processed, got %d", snap.Progress.Processed)
	}
	if snap.Progress.Succeeded != 1 {
		t.Errorf("expected 1 succeeded, got %d", snap.Progress.Succeeded)
	}
	if snap.Progress.Partial != 1 {
		t.Errorf("expected 1 partial, got %d", snap.Progress.Partial)
	}
	if snap.Progress.Failed != 1 {
		t.Errorf("expected 1 failed, got %d", snap.Progress.Failed)
	}
	if len(snap.Results) != 3 {
		t.Fatalf("expected 3 results in snapshot, got %d", len(snap.Results))
	}
	if len(snap.Progress.Errors) != 1 || snap.Progress.Errors[0] != "record 2: boom" {
		t.Errorf("expected record error to surface, got %v", snap.Progress.Errors)
	}
}

func TestJob_SetRecords(t *testing.T) {
	job := &Job{ID: "rec-test"}
	recs := []record.Record{{"nome": "Ana"}, {"nome": "Bruno"}}
	job.SetRecords(recs)

	if job.Progress.TotalRecords != 2 {
		t.Errorf("expected 2 total records, got %d", job.Progress.TotalRecords)
	}
	got := job.Records()
	if len(got) != 2 {
		t.Fatalf("expected 2 records back, got %d", len(got))
	}
	if got[0]["nome"] != "Ana" {
		t.Errorf("expected first record to round-trip, got %v", got[0])
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	// Snapshot should always return non-nil errors slice.
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if len(snap.Progress.Errors) != 0 {
		t.Errorf("expected empty errors, got %d", len(snap.Progress.Errors))
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
}

func TestJobStore_GetMissing(t *testing.T) {
	store := NewJobStore(time.Hour)
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", UpdatedAt: time.Now()}
	store.Put(expired)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	// Add a fresh job.
	fresh := &Job{ID: "new", UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}

func TestJobStore_CleanupEmpty(t *testing.T) {
	store := NewJobStore(time.Hour)
	// Should not panic on empty store.
	store.Cleanup()
}
