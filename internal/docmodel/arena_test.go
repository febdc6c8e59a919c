package docmodel

import "testing"

func TestArenaTextAndLocate(t *testing.T) {
	u := NewUnit(KindParagraph, "Olá ", "{{no", "me}}", "!")
	arena := BuildArena(u)

	if arena.Text() != "Olá {{nome}}!" {
		t.Fatalf("unexpected flattened text %q", arena.Text())
	}

	frag, off := arena.Locate(0)
	if frag != 0 || off != 0 {
		t.Errorf("expected (0,0), got (%d,%d)", frag, off)
	}
	// "Olá " is 5 bytes (á is 2); offset 5 is the first byte of "{{no".
	frag, off = arena.Locate(5)
	if frag != 1 || off != 0 {
		t.Errorf("expected (1,0), got (%d,%d)", frag, off)
	}
}

func TestSpliceWithinOneFragment(t *testing.T) {
	u := NewUnit(KindParagraph, "Nome: {{nome}}, fim.")
	arena := BuildArena(u)

	start := 6
	end := start + len("{{nome}}")
	arena.Splice(u, start, end, "Maria")

	if got := u.Text(); got != "Nome: Maria, fim." {
		t.Errorf("unexpected text %q", got)
	}
}

func TestSpliceAcrossFragments(t *testing.T) {
	// Placeholder split over three fragments: prefix and suffix formatting
	// must survive, interior fragments must be cleared.
	u := NewUnit(KindParagraph, "Autor: {{", "nome_com", "pleto}} presente")
	arena := BuildArena(u)

	start := len("Autor: ")
	end := len("Autor: {{nome_completo}}")
	arena.Splice(u, start, end, "João Souza")

	if got := u.Fragments[0].Text(); got != "Autor: João Souza" {
		t.Errorf("expected first fragment to keep prefix and take replacement, got %q", got)
	}
	if got := u.Fragments[1].Text(); got != "" {
		t.Errorf("expected interior fragment cleared, got %q", got)
	}
	if got := u.Fragments[2].Text(); got != " presente" {
		t.Errorf("expected last fragment to keep suffix, got %q", got)
	}
	if got := u.Text(); got != "Autor: João Souza presente" {
		t.Errorf("unexpected unit text %q", got)
	}
}

func TestSpliceConsumesEntireLastFragment(t *testing.T) {
	u := NewUnit(KindParagraph, "x{{a", "}}")
	arena := BuildArena(u)

	arena.Splice(u, 1, len("x{{a}}"), "1")
	if got := u.Text(); got != "x1" {
		t.Errorf("unexpected text %q", got)
	}
}

type captureSink struct{ last string }

func (c *captureSink) SetText(s string) { c.last = s }

func TestBoundFragmentPropagatesWrites(t *testing.T) {
	sink := &captureSink{}
	f := BoundFragment("antes", true, false, sink)
	f.SetText("depois")
	if f.Text() != "depois" {
		t.Errorf("expected fragment text updated, got %q", f.Text())
	}
	if sink.last != "depois" {
		t.Errorf("expected write to propagate to sink, got %q", sink.last)
	}
}

func TestUnitBlankAndRemovable(t *testing.T) {
	u := NewUnit(KindTableCell, "conteúdo", "mais")
	if u.Removable() {
		t.Error("expected unit without detach hook to be non-removable")
	}
	u.Blank()
	if !u.Empty() {
		t.Error("expected blanked unit to be empty")
	}
	if len(u.Fragments) != 2 {
		t.Error("expected blanking to preserve fragment count")
	}

	detached := false
	u.SetDetach(func() { detached = true })
	if !u.Removable() {
		t.Error("expected unit with detach hook to be removable")
	}
	u.Detach()
	if !detached {
		t.Error("expected detach hook to run")
	}
}
