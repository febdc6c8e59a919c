package engine

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"github.com/tcpires/peticiona/internal/docmodel"
	"github.com/tcpires/peticiona/internal/rules"
)

var (
	headingStyleRe = regexp.MustCompile(`(?i)^(heading|t[íi]tulo|ttulo)`)
	numerationRe   = regexp.MustCompile(`^\s*([IVXLCDM]+|\d+(\.\d+)*)\s*[-–.)]`)
)

// titleScore rates how much a unit looks like a section title. Formatting
// signals are scored independently from keyword hits; a candidate needs
// both to qualify.
func titleScore(u *docmodel.Unit, keywords []string) (total, keywordScore int) {
	text := strings.TrimSpace(u.Text())
	if text == "" {
		return 0, 0
	}

	if isMostlyUpper(text) {
		total += 3
	}
	bold, italic := u.HasEmphasis()
	if bold {
		total += 3
	}
	if italic {
		total++
	}
	if headingStyleRe.MatchString(u.Style) {
		total += 5
	}
	if len([]rune(text)) < 50 {
		total++
	}
	if numerationRe.MatchString(text) {
		total += 2
	}

	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			keywordScore += 3
		}
	}
	return total + keywordScore, keywordScore
}

func isMostlyUpper(s string) bool {
	letters, upper := 0, 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	return letters > 0 && upper*10 >= letters*8
}

// mapByTitles resolves boundaries in documents without explicit markers.
// For each definition carrying keywords, the best-scoring title unit
// anchors the section; the boundary extends to the unit before the next
// anchor, or the end of the document for the last one.
func mapByTitles(units []*docmodel.Unit, defs []rules.SectionDef, opts MapOptions, smap *SectionMap, log *slog.Logger) {
	threshold := opts.threshold()

	type anchor struct {
		id    string
		index int
	}
	var anchors []anchor
	claimed := make(map[int]bool)

	for _, def := range defs {
		if len(def.Keywords) == 0 {
			continue
		}
		best, bestScore := -1, 0
		for i, u := range units {
			if claimed[i] {
				continue
			}
			total, kwScore := titleScore(u, def.Keywords)
			// Formatting alone is not enough; some keyword evidence is
			// required to avoid anchoring on unrelated headings.
			if kwScore < 3 || total < threshold {
				continue
			}
			if total > bestScore {
				best, bestScore = i, total
			}
		}
		if best < 0 {
			log.Debug("no title candidate for section", "section", def.ID)
			continue
		}
		claimed[best] = true
		anchors = append(anchors, anchor{id: def.ID, index: best})
		log.Debug("heuristic title anchor", "section", def.ID, "unit", best, "score", bestScore)
	}

	if len(anchors) == 0 {
		return
	}
	for i := range anchors {
		for j := i + 1; j < len(anchors); j++ {
			if anchors[j].index < anchors[i].index {
				anchors[i], anchors[j] = anchors[j], anchors[i]
			}
		}
	}
	for i, a := range anchors {
		end := len(units) - 1
		if i+1 < len(anchors) {
			end = anchors[i+1].index - 1
		}
		smap.Boundaries[a.id] = &Boundary{
			ID:        a.id,
			Start:     a.index,
			End:       end,
			Units:     units[a.index : end+1],
			Heuristic: true,
		}
	}
}
