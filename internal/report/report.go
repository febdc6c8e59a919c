// Package report builds template diagnostics: which placeholders and
// section markers a template carries, how they line up with the section
// definitions, and which fields a record must provide.
package report

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/tcpires/peticiona/internal/docmodel"
	"github.com/tcpires/peticiona/internal/engine"
	"github.com/tcpires/peticiona/internal/fieldmeta"
	"github.com/tcpires/peticiona/internal/rules"
)

// TemplateReport is the inspection result for one template version.
type TemplateReport struct {
	TemplateID   string   `json:"template_id"`
	Version      int      `json:"version"`
	Units        int      `json:"units"`
	Placeholders []string `json:"placeholders"`
	Required     []string `json:"required_fields"`
	Sections     []string `json:"sections"`
	Unmatched    []string `json:"unmatched_sections,omitempty"`
	Undefined    []string `json:"undefined_markers,omitempty"`
	OrphanEnds   []string `json:"orphan_end_markers,omitempty"`
	Incomplete   []string `json:"incomplete_sections,omitempty"`
}

// Inspect scans a template's units against the section definitions and
// field metadata without substituting anything.
func Inspect(id string, version int, units []*docmodel.Unit, defs []rules.SectionDef, meta fieldmeta.Provider) (*TemplateReport, error) {
	if meta == nil {
		meta = fieldmeta.NullProvider{}
	}

	rep := &TemplateReport{TemplateID: id, Version: version, Units: len(units)}

	fields := engine.ScanPlaceholders(units)
	for _, f := range fields {
		rep.Placeholders = append(rep.Placeholders, f)
		if fm, ok := meta.ByName(f); ok && fm.RequiredWhenActive {
			rep.Required = append(rep.Required, f)
		}
	}

	smap, err := engine.MapSections(units, defs, engine.MapOptions{}, discardLogger())
	if err != nil {
		return nil, err
	}
	rep.Sections = append(rep.Sections, smap.Order...)
	rep.OrphanEnds = smap.OrphanEnds

	defined := make(map[string]bool, len(defs))
	for _, d := range defs {
		defined[d.ID] = true
	}
	for _, id := range smap.Order {
		b := smap.Boundaries[id]
		if b.Incomplete {
			rep.Incomplete = append(rep.Incomplete, id)
		}
		if !defined[id] {
			rep.Undefined = append(rep.Undefined, id)
		}
	}
	for _, d := range defs {
		if _, ok := smap.Boundaries[d.ID]; !ok {
			rep.Unmatched = append(rep.Unmatched, d.ID)
		}
	}
	sort.Strings(rep.Unmatched)
	return rep, nil
}

// Markdown renders the report as a human-readable document.
func (r *TemplateReport) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Template %s (v%d)\n\n", r.TemplateID, r.Version)
	fmt.Fprintf(&b, "%d units scanned.\n\n", r.Units)

	writeList := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&b, "## %s\n\n", title)
		for _, it := range items {
			fmt.Fprintf(&b, "- `%s`\n", it)
		}
		b.WriteString("\n")
	}

	writeList("Placeholders", r.Placeholders)
	writeList("Required fields", r.Required)
	writeList("Sections", r.Sections)
	writeList("Sections defined but absent from template", r.Unmatched)
	writeList("Markers without a definition", r.Undefined)
	writeList("Orphaned end markers", r.OrphanEnds)
	writeList("Sections never closed", r.Incomplete)
	return b.String()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// HTML renders the markdown report to HTML.
func (r *TemplateReport) HTML() ([]byte, error) {
	var buf bytes.Buffer
	if err := goldmark.New().Convert([]byte(r.Markdown()), &buf); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}
