package docmodel

import "strings"

// ref points from one character offset of the flattened text back into the
// fragment that owns it.
type ref struct {
	frag int // fragment index within the unit
	off  int // byte offset within that fragment
}

// Arena is a flat index over a unit's fragment boundaries. It maps byte
// offsets of the concatenated logical text to (fragment, offset) pairs so a
// placeholder match spanning any number of fragments can be resolved without
// re-slicing strings per fragment.
type Arena struct {
	text string
	refs []ref
}

// BuildArena flattens the unit's fragments into an arena.
func BuildArena(u *Unit) *Arena {
	var b strings.Builder
	total := 0
	for _, f := range u.Fragments {
		total += len(f.Text())
	}
	b.Grow(total)
	refs := make([]ref, 0, total)
	for i, f := range u.Fragments {
		t := f.Text()
		b.WriteString(t)
		for off := 0; off < len(t); off++ {
			refs = append(refs, ref{frag: i, off: off})
		}
	}
	return &Arena{text: b.String(), refs: refs}
}

// Text returns the flattened logical text.
func (a *Arena) Text() string { return a.text }

// Locate resolves a byte offset of the logical text into the owning fragment
// index and the offset within it. The offset must be < len(Text()).
func (a *Arena) Locate(offset int) (frag, off int) {
	r := a.refs[offset]
	return r.frag, r.off
}

// Splice replaces the logical text range [start, end) with repl, editing the
// underlying fragments in place. The fragment owning start keeps its prefix
// and receives the full replacement; fully interior fragments are cleared;
// the fragment owning end-1 keeps its suffix, so formatting of literal text
// around the range is never disturbed. The arena is stale afterwards.
func (a *Arena) Splice(u *Unit, start, end int, repl string) {
	startFrag, startOff := a.Locate(start)
	endFrag, endOff := a.Locate(end - 1)
	endOff++ // exclusive offset within endFrag

	if startFrag == endFrag {
		t := u.Fragments[startFrag].Text()
		u.Fragments[startFrag].SetText(t[:startOff] + repl + t[endOff:])
		return
	}

	first := u.Fragments[startFrag]
	first.SetText(first.Text()[:startOff] + repl)

	for i := startFrag + 1; i < endFrag; i++ {
		u.Fragments[i].SetText("")
	}

	last := u.Fragments[endFrag]
	if endOff < len(last.Text()) {
		last.SetText(last.Text()[endOff:])
	} else {
		last.SetText("")
	}
}
