package rules

import "fmt"

// InvalidRuleError marks a malformed condition tree or a disallowed
// operator. It is local to one section: activation treats it as "section
// inactive" and never aborts the run.
type InvalidRuleError struct {
	Reason string
}

func (e *InvalidRuleError) Error() string {
	return fmt.Sprintf("invalid rule: %s", e.Reason)
}

func invalidRule(format string, args ...any) error {
	return &InvalidRuleError{Reason: fmt.Sprintf(format, args...)}
}

// UnsafeExpressionError marks a legacy textual condition rejected by the
// safety filter before any evaluation was attempted.
type UnsafeExpressionError struct {
	Expr    string
	Pattern string
}

func (e *UnsafeExpressionError) Error() string {
	return fmt.Sprintf("unsafe expression rejected (pattern %q): %s", e.Pattern, e.Expr)
}
