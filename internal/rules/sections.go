package rules

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tcpires/peticiona/internal/record"
)

// SectionDef describes one conditional section of the document template.
// Exactly one of Condition (structured tree) or Expr (legacy textual form)
// is normally set; with neither, the section is always active.
type SectionDef struct {
	ID          string     `yaml:"id"`
	Description string     `yaml:"description,omitempty"`
	Condition   *Condition `yaml:"condition,omitempty"`
	Expr        string     `yaml:"expr,omitempty"`

	// Hints for the heuristic boundary fallback when the template carries
	// no explicit markers.
	Keywords []string `yaml:"keywords,omitempty"`
}

type sectionsFile struct {
	Sections []SectionDef `yaml:"sections"`
}

// LoadSections reads section definitions from a YAML file.
func LoadSections(path string) ([]SectionDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sections file: %w", err)
	}
	var f sectionsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse sections file: %w", err)
	}
	seen := make(map[string]bool, len(f.Sections))
	for _, def := range f.Sections {
		if def.ID == "" {
			return nil, fmt.Errorf("section definition without id")
		}
		if seen[def.ID] {
			return nil, fmt.Errorf("duplicate section id %q", def.ID)
		}
		seen[def.ID] = true
	}
	return f.Sections, nil
}

// ActiveSections evaluates every definition against rec and returns the set
// of active section ids. A definition whose condition fails to evaluate is
// treated as inactive; the failure is logged, never fatal. Evaluation runs
// in definition order so diagnostics are reproducible.
func ActiveSections(defs []SectionDef, rec record.Record, log *slog.Logger) map[string]bool {
	active := make(map[string]bool, len(defs))
	for _, def := range defs {
		on, err := evaluateDef(def, rec, log)
		if err != nil {
			log.Warn("section activation rule failed, treating as inactive",
				"section", def.ID, "error", err)
			continue
		}
		if on {
			active[def.ID] = true
			log.Debug("section active", "section", def.ID)
		} else {
			log.Debug("section inactive", "section", def.ID)
		}
	}
	return active
}

func evaluateDef(def SectionDef, rec record.Record, log *slog.Logger) (bool, error) {
	if def.Condition != nil {
		return Evaluate(def.Condition, rec, log)
	}
	if def.Expr != "" {
		return EvaluateExpr(def.Expr, rec, log)
	}
	return true, nil
}
