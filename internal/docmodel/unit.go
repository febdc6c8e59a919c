// Package docmodel defines the structural text model the assembly engine
// operates on: ordered fragments of styled text grouped into units
// (paragraphs, table cell paragraphs, header and footer paragraphs).
package docmodel

import "strings"

// UnitKind identifies where a unit came from in the document.
type UnitKind int

const (
	KindParagraph UnitKind = iota
	KindTableCell
	KindHeader
	KindFooter
)

func (k UnitKind) String() string {
	switch k {
	case KindParagraph:
		return "paragraph"
	case KindTableCell:
		return "table_cell"
	case KindHeader:
		return "header"
	case KindFooter:
		return "footer"
	}
	return "unknown"
}

// TextSink receives text writes for a fragment that is backed by an
// underlying document node (for example a DOCX run).
type TextSink interface {
	SetText(s string)
}

// Fragment is a minimal span of text sharing one formatting style.
type Fragment struct {
	text   string
	Bold   bool
	Italic bool
	sink   TextSink
}

// NewFragment creates a detached fragment, not backed by any document node.
func NewFragment(text string) *Fragment {
	return &Fragment{text: text}
}

// BoundFragment creates a fragment whose writes propagate to sink.
func BoundFragment(text string, bold, italic bool, sink TextSink) *Fragment {
	return &Fragment{text: text, Bold: bold, Italic: italic, sink: sink}
}

func (f *Fragment) Text() string { return f.text }

// SetText updates the fragment text and, when bound, the backing node.
func (f *Fragment) SetText(s string) {
	f.text = s
	if f.sink != nil {
		f.sink.SetText(s)
	}
}

// Unit is a paragraph-like container of fragments, the atomic scan target
// for placeholders and section markers.
type Unit struct {
	Kind      UnitKind
	Style     string // paragraph style name, e.g. "Heading1"; may be empty
	Fragments []*Fragment

	// detach removes the unit from the backing document. Nil for units that
	// cannot be structurally removed (table cell paragraphs keep row counts
	// intact, so they are blanked instead).
	detach func()
}

// NewUnit creates a detached unit from plain fragment texts. Used by tests
// and by callers that assemble documents in memory.
func NewUnit(kind UnitKind, texts ...string) *Unit {
	u := &Unit{Kind: kind}
	for _, t := range texts {
		u.Fragments = append(u.Fragments, NewFragment(t))
	}
	return u
}

// SetDetach installs the structural-removal hook for the unit.
func (u *Unit) SetDetach(fn func()) { u.detach = fn }

// Removable reports whether the unit can be structurally removed.
func (u *Unit) Removable() bool { return u.detach != nil }

// Detach removes the unit from its backing document, if removable.
func (u *Unit) Detach() {
	if u.detach != nil {
		u.detach()
	}
}

// Text returns the unit's logical text: the concatenation of all fragment
// texts in order.
func (u *Unit) Text() string {
	if len(u.Fragments) == 1 {
		return u.Fragments[0].Text()
	}
	var b strings.Builder
	for _, f := range u.Fragments {
		b.WriteString(f.Text())
	}
	return b.String()
}

// Blank clears every fragment of the unit.
func (u *Unit) Blank() {
	for _, f := range u.Fragments {
		if f.Text() != "" {
			f.SetText("")
		}
	}
}

// Empty reports whether the unit's logical text is blank.
func (u *Unit) Empty() bool {
	return strings.TrimSpace(u.Text()) == ""
}

// HasEmphasis reports whether any non-empty fragment carries bold or italic
// formatting. Used by the heuristic section anchor scoring.
func (u *Unit) HasEmphasis() (bold, italic bool) {
	for _, f := range u.Fragments {
		if strings.TrimSpace(f.Text()) == "" {
			continue
		}
		bold = bold || f.Bold
		italic = italic || f.Italic
	}
	return bold, italic
}
