package engine

import (
	"fmt"
	"log/slog"

	"github.com/tcpires/peticiona/internal/docmodel"
	"github.com/tcpires/peticiona/internal/fieldmeta"
	"github.com/tcpires/peticiona/internal/format"
	"github.com/tcpires/peticiona/internal/record"
)

// RequiredMarker is the visibly flagged replacement for an obligatory
// field that is absent from the record.
func RequiredMarker(field string) string {
	return fmt.Sprintf("**[CAMPO OBRIGATÓRIO: %s]**", field)
}

// Substitute replaces every data placeholder in units with the formatted
// record value, recording discovered/substituted/missing fields in tally.
// Section markers are left untouched for the boundary mapper. Formatting of
// literal text around each placeholder is preserved: only the fragments the
// match actually covers are rewritten.
func Substitute(units []*docmodel.Unit, rec record.Record, meta fieldmeta.Provider, tally *Tally, log *slog.Logger) {
	for _, u := range units {
		substituteUnit(u, rec, meta, tally, log)
	}
}

func substituteUnit(u *docmodel.Unit, rec record.Record, meta fieldmeta.Provider, tally *Tally, log *slog.Logger) {
	if len(u.Fragments) == 0 {
		return
	}

	// Single fragment: a direct string replace is equivalent and skips the
	// offset-mapping machinery.
	if len(u.Fragments) == 1 {
		f := u.Fragments[0]
		text := f.Text()
		if !placeholderRe.MatchString(text) {
			return
		}
		replaced := placeholderRe.ReplaceAllStringFunc(text, func(tok string) string {
			name := placeholderRe.FindStringSubmatch(tok)[1]
			if isMarkerName(name) {
				return tok
			}
			return renderField(name, rec, meta, tally, log)
		})
		if replaced != text {
			f.SetText(replaced)
		}
		return
	}

	// Fragmented path: flatten the fragments, match over the logical text,
	// then splice each match back through the arena. Matches are applied in
	// reverse order so offsets of earlier matches stay valid while later
	// fragments are rewritten.
	arena := docmodel.BuildArena(u)
	matches := placeholderRe.FindAllStringSubmatchIndex(arena.Text(), -1)
	if len(matches) == 0 {
		return
	}
	text := arena.Text()
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		name := text[m[2]:m[3]]
		if isMarkerName(name) {
			continue
		}
		repl := renderField(name, rec, meta, tally, log)
		arena.Splice(u, m[0], m[1], repl)
	}
}

// renderField resolves one placeholder name against the record and formats
// the replacement text.
func renderField(name string, rec record.Record, meta fieldmeta.Provider, tally *Tally, log *slog.Logger) string {
	tally.Discovered[name] = true

	value, ok := rec.Get(name)
	if !ok {
		tally.Missing[name] = true
		m, known := meta.ByName(name)
		if known && m.RequiredWhenActive {
			tally.MissingRequired[name] = true
			log.Warn("required field missing from record", "field", name)
			return RequiredMarker(name)
		}
		log.Debug("optional field missing from record", "field", name)
		return ""
	}

	tally.Substituted[name] = true
	return formatValue(name, value, meta)
}

// formatValue applies the rendering priority for resolved values:
// monetary first (metadata hint, monetary data type, or for fields without
// metadata a monetary-sounding name), then written-out words, then the
// default string conversion. Written-out data types do not count as
// monetary, so an "extenso" field reaches the word renderer.
func formatValue(name string, value any, meta fieldmeta.Provider) string {
	m, known := meta.ByName(name)
	if f, isNum := numeric(value); isNum {
		if (known && m.Monetary()) || (!known && format.MonetaryName(name)) {
			return format.Money(f)
		}
		if known && m.SpelledOut() {
			return format.MoneyExtenso(f)
		}
	}
	return format.Value(value)
}

func numeric(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case float64:
		return t, true
	case float32:
		return float64(t), true
	}
	return 0, false
}
