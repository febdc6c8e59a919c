package engine

import (
	"log/slog"
	"sort"

	"github.com/tcpires/peticiona/internal/docmodel"
	"github.com/tcpires/peticiona/internal/rules"
)

// Boundary is the resolved span of one section inside the document: every
// unit from the start marker (or heuristic anchor) to the end marker (or
// the unit before the next anchor), inclusive.
type Boundary struct {
	ID         string
	Start, End int // unit indexes, inclusive
	Units      []*docmodel.Unit
	Incomplete bool // start marker never closed; captured through the last unit
	Heuristic  bool // resolved by title detection, not explicit markers
}

// OverlapFlag records two distinct sections whose boundaries overlap.
// Overlaps indicate malformed input; they are flagged, never silently
// merged, and resolved first-wins for pruning.
type OverlapFlag struct {
	First, Second string
}

// SectionMap is the result of boundary mapping over one document.
type SectionMap struct {
	Boundaries map[string]*Boundary
	Order      []string // boundary ids in document order
	OrphanEnds []string // end markers with no open start
	Overlaps   []OverlapFlag

	markerOnly map[*docmodel.Unit]bool
	pruned     map[*docmodel.Unit]bool
}

// MapOptions tunes boundary mapping. The heuristic threshold is policy,
// not law: it was hand-tuned on one document family and is deliberately
// configurable.
type MapOptions struct {
	TitleScoreThreshold int
}

const defaultTitleScoreThreshold = 5

func (o MapOptions) threshold() int {
	if o.TitleScoreThreshold > 0 {
		return o.TitleScoreThreshold
	}
	return defaultTitleScoreThreshold
}

// MapSections locates every section boundary in the document. Explicit
// {{#id}} / {{/id}} markers are the primary strategy; when the document
// carries no markers at all, heuristic title detection against the
// definitions' keyword hints takes over.
func MapSections(units []*docmodel.Unit, defs []rules.SectionDef, opts MapOptions, log *slog.Logger) (*SectionMap, error) {
	smap := &SectionMap{
		Boundaries: make(map[string]*Boundary),
		markerOnly: make(map[*docmodel.Unit]bool),
		pruned:     make(map[*docmodel.Unit]bool),
	}

	type openInfo struct {
		start int
	}
	open := make(map[string]*openInfo)
	sawMarker := false

	for i, u := range units {
		text := u.Text()
		if markerOnlyRe.MatchString(text) {
			smap.markerOnly[u] = true
		}

		for _, m := range markerStartRe.FindAllStringSubmatch(text, -1) {
			sawMarker = true
			id := m[1]
			if _, isOpen := open[id]; isOpen {
				return nil, &TemplateStructureError{
					SectionID: id,
					Reason:    "start marker nested inside an open section with the same id",
				}
			}
			if _, done := smap.Boundaries[id]; done {
				log.Warn("section reopened after close, ignoring second start", "section", id, "unit", i)
				continue
			}
			open[id] = &openInfo{start: i}
			log.Debug("section start marker", "section", id, "unit", i)
		}

		for _, m := range markerEndRe.FindAllStringSubmatch(text, -1) {
			sawMarker = true
			id := m[1]
			info, isOpen := open[id]
			if !isOpen {
				smap.OrphanEnds = append(smap.OrphanEnds, id)
				log.Warn("orphaned section end marker", "section", id, "unit", i)
				continue
			}
			smap.Boundaries[id] = &Boundary{
				ID:    id,
				Start: info.start,
				End:   i,
				Units: units[info.start : i+1],
			}
			delete(open, id)
			log.Debug("section mapped", "section", id, "start", info.start, "end", i)
		}
	}

	// Starts never closed are captured through the last unit so pruning is
	// total rather than partial.
	for id, info := range open {
		smap.Boundaries[id] = &Boundary{
			ID:         id,
			Start:      info.start,
			End:        len(units) - 1,
			Units:      units[info.start:],
			Incomplete: true,
		}
		log.Warn("section start never closed, capturing through end of document", "section", id)
	}

	if !sawMarker {
		log.Info("no explicit section markers found, using heuristic title detection")
		mapByTitles(units, defs, opts, smap, log)
	}

	smap.Order = boundaryOrder(smap.Boundaries)
	smap.flagOverlaps(log)
	return smap, nil
}

func boundaryOrder(bounds map[string]*Boundary) []string {
	ids := make([]string, 0, len(bounds))
	for id := range bounds {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := bounds[ids[i]], bounds[ids[j]]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return ids[i] < ids[j]
	})
	return ids
}

// flagOverlaps detects boundaries of distinct sections sharing units. The
// earlier boundary wins the shared units; the later one is trimmed.
func (s *SectionMap) flagOverlaps(log *slog.Logger) {
	for i := 0; i < len(s.Order); i++ {
		for j := i + 1; j < len(s.Order); j++ {
			a, b := s.Boundaries[s.Order[i]], s.Boundaries[s.Order[j]]
			if b.Start > a.End {
				break
			}
			s.Overlaps = append(s.Overlaps, OverlapFlag{First: a.ID, Second: b.ID})
			log.Warn("overlapping section boundaries", "first", a.ID, "second", b.ID)
			// First-wins: drop the shared prefix from the later boundary.
			trim := a.End - b.Start + 1
			if trim >= len(b.Units) {
				b.Units = nil
			} else {
				b.Units = b.Units[trim:]
				b.Start = a.End + 1
			}
		}
	}
}

// Prune blanks the content of every mapped section that is not in the
// active set. Units are blanked fragment by fragment rather than removed,
// so layout primitives like table row counts survive.
func Prune(smap *SectionMap, active map[string]bool, log *slog.Logger) {
	for _, id := range smap.Order {
		if active[id] {
			log.Debug("section kept", "section", id)
			continue
		}
		b := smap.Boundaries[id]
		for _, u := range b.Units {
			u.Blank()
			smap.pruned[u] = true
		}
		log.Info("section pruned", "section", id, "units", len(b.Units))
	}
}

// Cleanup runs once at the end of assembly: it strips residual marker
// tokens, removes units that contained only a marker, and removes units
// emptied by pruning. Table cell units are never structurally removed.
// The returned slice is the surviving unit list in document order.
func Cleanup(units []*docmodel.Unit, smap *SectionMap, log *slog.Logger) []*docmodel.Unit {
	removed := 0
	kept := make([]*docmodel.Unit, 0, len(units))
	for _, u := range units {
		stripMarkers(u)

		if u.Empty() && (smap.markerOnly[u] || smap.pruned[u]) && u.Removable() {
			u.Detach()
			removed++
			continue
		}
		kept = append(kept, u)
	}
	if removed > 0 {
		log.Info("cleanup removed empty units", "count", removed)
	}
	return kept
}

// stripMarkers deletes marker tokens from a unit's text, fragment-aware.
func stripMarkers(u *docmodel.Unit) {
	if len(u.Fragments) == 0 {
		return
	}
	if len(u.Fragments) == 1 {
		f := u.Fragments[0]
		if markerRe.MatchString(f.Text()) {
			f.SetText(markerRe.ReplaceAllString(f.Text(), ""))
		}
		return
	}
	arena := docmodel.BuildArena(u)
	matches := markerRe.FindAllStringIndex(arena.Text(), -1)
	for i := len(matches) - 1; i >= 0; i-- {
		arena.Splice(u, matches[i][0], matches[i][1], "")
	}
}
