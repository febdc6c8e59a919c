// Package engine is the conditional assembly core. It substitutes
// placeholder tokens across independently formatted text fragments, maps
// section boundaries, prunes inactive sections, and cleans residual marker
// text, all over the structural unit model of docmodel.
package engine

import (
	"regexp"
	"sort"
	"strings"

	"github.com/tcpires/peticiona/internal/docmodel"
)

// Placeholder token contract shared with template authors: {{ field_name }}
// for substitution, {{#section_id}} / {{/section_id}} for boundaries.
// Whitespace inside the braces is insignificant.
var (
	placeholderRe = regexp.MustCompile(`\{\{\s*([^{}]+?)\s*\}\}`)
	markerRe      = regexp.MustCompile(`\{\{\s*[#/]([^{}]+?)\s*\}\}`)
	markerStartRe = regexp.MustCompile(`\{\{\s*#([^{}]+?)\s*\}\}`)
	markerEndRe   = regexp.MustCompile(`\{\{\s*/([^{}]+?)\s*\}\}`)
	markerOnlyRe  = regexp.MustCompile(`^\s*\{\{\s*[#/][^{}]*\}\}\s*$`)
)

// isMarkerName reports whether a matched token name denotes a section
// marker rather than a data placeholder.
func isMarkerName(name string) bool {
	return strings.HasPrefix(name, "#") || strings.HasPrefix(name, "/")
}

// Tally accumulates the placeholder sets observed during substitution. One
// Tally belongs to one assembly run.
type Tally struct {
	Discovered      map[string]bool
	Substituted     map[string]bool
	Missing         map[string]bool
	MissingRequired map[string]bool
}

func NewTally() *Tally {
	return &Tally{
		Discovered:      make(map[string]bool),
		Substituted:     make(map[string]bool),
		Missing:         make(map[string]bool),
		MissingRequired: make(map[string]bool),
	}
}

// ScanPlaceholders returns the sorted set of data placeholder names found
// in units, without substituting anything. Section markers are excluded.
func ScanPlaceholders(units []*docmodel.Unit) []string {
	seen := make(map[string]bool)
	for _, u := range units {
		for _, m := range placeholderRe.FindAllStringSubmatch(u.Text(), -1) {
			if !isMarkerName(m[1]) {
				seen[m[1]] = true
			}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
