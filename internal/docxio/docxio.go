// Package docxio binds the assembly engine's text model to .docx files.
// All go-docx API contact is confined here; the rest of the codebase
// works against docmodel units.
package docxio

import (
	"fmt"
	"io"
	"os"

	"github.com/fumiama/go-docx"

	"github.com/tcpires/peticiona/internal/docmodel"
)

// Document wraps a parsed .docx file and its extracted unit list.
type Document struct {
	doc     *docx.Docx
	units   []*docmodel.Unit
	removed map[any]bool // body items detached by cleanup
}

// Open parses the .docx file at path and extracts its units.
func Open(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat docx: %w", err)
	}
	return Read(f, info.Size())
}

// Read parses a .docx stream of a known size.
func Read(r io.ReaderAt, size int64) (*Document, error) {
	doc, err := docx.Parse(r, size)
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	d := &Document{doc: doc, removed: make(map[any]bool)}
	d.extract()
	return d, nil
}

// Units returns the document's units in reading order. Mutations to the
// units propagate to the backing document.
func (d *Document) Units() []*docmodel.Unit { return d.units }

func (d *Document) extract() {
	for _, item := range d.doc.Document.Body.Items {
		switch node := item.(type) {
		case *docx.Paragraph:
			u := paragraphUnit(node, docmodel.KindParagraph)
			u.SetDetach(func() { d.removed[item] = true })
			d.units = append(d.units, u)
		case *docx.Table:
			for _, row := range node.TableRows {
				for _, cell := range row.TableCells {
					for _, para := range cell.Paragraphs {
						// Cell paragraphs are never structurally removed;
						// dropping them would change row shapes.
						d.units = append(d.units, paragraphUnit(para, docmodel.KindTableCell))
					}
				}
			}
		}
	}
}

func paragraphUnit(para *docx.Paragraph, kind docmodel.UnitKind) *docmodel.Unit {
	u := &docmodel.Unit{Kind: kind, Style: paragraphStyle(para)}
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		bold, italic := runEmphasis(run)
		for _, rc := range run.Children {
			t, ok := rc.(*docx.Text)
			if !ok {
				continue
			}
			u.Fragments = append(u.Fragments, docmodel.BoundFragment(t.Text, bold, italic, (*textSink)(t)))
		}
	}
	return u
}

func paragraphStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return para.Properties.Style.Val
}

func runEmphasis(run *docx.Run) (bold, italic bool) {
	if run.RunProperties == nil {
		return false, false
	}
	return run.RunProperties.Bold != nil, run.RunProperties.Italic != nil
}

// textSink propagates fragment writes back into a DOCX text node.
type textSink docx.Text

func (s *textSink) SetText(v string) { (*docx.Text)(s).Text = v }

// WriteTo serializes the document, excluding detached body items.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	if len(d.removed) > 0 {
		kept := d.doc.Document.Body.Items[:0]
		for _, item := range d.doc.Document.Body.Items {
			if !d.removed[item] {
				kept = append(kept, item)
			}
		}
		d.doc.Document.Body.Items = kept
		d.removed = make(map[any]bool)
	}
	return d.doc.WriteTo(w)
}

// Save writes the document to a new file at path.
func (d *Document) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if _, err := d.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write docx: %w", err)
	}
	return f.Close()
}
