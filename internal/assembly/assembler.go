package assembly

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/tcpires/peticiona/internal/docmodel"
	"github.com/tcpires/peticiona/internal/engine"
	"github.com/tcpires/peticiona/internal/fieldmeta"
	"github.com/tcpires/peticiona/internal/record"
	"github.com/tcpires/peticiona/internal/rules"
)

// Assembly status values, derived from placeholder completeness.
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusError   = "error"
)

// RequiredFieldMissingError aborts strict-mode assembly when a required
// placeholder has no value in the record.
type RequiredFieldMissingError struct {
	Fields []string
}

func (e *RequiredFieldMissingError) Error() string {
	return fmt.Sprintf("assembly: required fields missing: %v", e.Fields)
}

// Stats summarizes one document assembly run.
type Stats struct {
	SectionsTotal   int      `json:"sections_total"`
	SectionsActive  int      `json:"sections_active"`
	SectionsPruned  int      `json:"sections_pruned"`
	Discovered      int      `json:"placeholders_discovered"`
	Substituted     int      `json:"placeholders_substituted"`
	Missing         int      `json:"placeholders_missing"`
	MissingRequired []string `json:"missing_required,omitempty"`
	OrphanEnds      []string `json:"orphan_end_markers,omitempty"`
	Overlaps        int      `json:"overlapping_sections"`
	Completeness    float64  `json:"completeness_pct"`
	Status          string   `json:"status"`
	DurationMs      int64    `json:"duration_ms"`
}

// Options control assembler behavior across runs.
type Options struct {
	// Strict makes a missing required field abort the run instead of
	// leaving an inline marker in the output.
	Strict bool

	TitleScoreThreshold int
}

// Assembler sequences one document through section activation,
// substitution, boundary mapping, pruning and cleanup.
type Assembler struct {
	defs    []rules.SectionDef
	meta    fieldmeta.Provider
	opts    Options
	latency *Latency
	log     *slog.Logger
}

func New(defs []rules.SectionDef, meta fieldmeta.Provider, opts Options, latency *Latency, log *slog.Logger) *Assembler {
	if meta == nil {
		meta = fieldmeta.NullProvider{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Assembler{defs: defs, meta: meta, opts: opts, latency: latency, log: log}
}

// AssembleDocument transforms the unit list in place for one record and
// returns the surviving units plus run statistics. The input slice is not
// reusable afterwards.
func (a *Assembler) AssembleDocument(units []*docmodel.Unit, rec record.Record) ([]*docmodel.Unit, Stats, error) {
	started := time.Now()

	active := rules.ActiveSections(a.defs, rec, a.log)

	tally := engine.NewTally()
	engine.Substitute(units, rec, a.meta, tally, a.log)

	if a.opts.Strict && len(tally.MissingRequired) > 0 {
		return nil, Stats{Status: StatusError}, &RequiredFieldMissingError{
			Fields: sortedKeys(tally.MissingRequired),
		}
	}

	smap, err := engine.MapSections(units, a.defs, engine.MapOptions{
		TitleScoreThreshold: a.opts.TitleScoreThreshold,
	}, a.log)
	if err != nil {
		return nil, Stats{Status: StatusError}, err
	}

	engine.Prune(smap, active, a.log)
	kept := engine.Cleanup(units, smap, a.log)

	stats := a.buildStats(active, tally, smap, time.Since(started))
	if a.latency != nil {
		a.latency.Record(stats.DurationMs)
	}

	a.log.Info("document assembled",
		"sections_active", stats.SectionsActive,
		"sections_pruned", stats.SectionsPruned,
		"completeness_pct", stats.Completeness,
		"status", stats.Status,
		"duration_ms", stats.DurationMs)
	return kept, stats, nil
}

func (a *Assembler) buildStats(active map[string]bool, tally *engine.Tally, smap *engine.SectionMap, elapsed time.Duration) Stats {
	st := Stats{
		SectionsTotal:   len(a.defs),
		Discovered:      len(tally.Discovered),
		Substituted:     len(tally.Substituted),
		Missing:         len(tally.Missing),
		MissingRequired: sortedKeys(tally.MissingRequired),
		OrphanEnds:      smap.OrphanEnds,
		Overlaps:        len(smap.Overlaps),
		DurationMs:      elapsed.Milliseconds(),
	}
	for _, on := range active {
		if on {
			st.SectionsActive++
		}
	}
	for _, id := range smap.Order {
		if !active[id] {
			st.SectionsPruned++
		}
	}

	if st.Discovered == 0 {
		st.Completeness = 100
	} else {
		st.Completeness = float64(st.Substituted) / float64(st.Discovered) * 100
	}
	// A missing required field is an error regardless of how complete the
	// rest of the document is.
	switch {
	case len(st.MissingRequired) > 0:
		st.Status = StatusError
	case st.Completeness >= 95:
		st.Status = StatusSuccess
	case st.Completeness >= 50:
		st.Status = StatusPartial
	default:
		st.Status = StatusError
	}
	return st
}

func sortedKeys(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
