package engine

import "fmt"

// TemplateStructureError marks irreparably malformed boundary markers, such
// as a nested start marker for a section that is already open. It aborts
// generation of the current document, never the whole batch.
type TemplateStructureError struct {
	SectionID string
	Reason    string
}

func (e *TemplateStructureError) Error() string {
	return fmt.Sprintf("template structure error in section %q: %s", e.SectionID, e.Reason)
}
