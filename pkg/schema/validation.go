package schema

import "fmt"

// ValidationSeverity indicates how serious a diagnostic is.
type ValidationSeverity string

const (
	SeverityError   ValidationSeverity = "error"
	SeverityWarning ValidationSeverity = "warning"
	SeverityInfo    ValidationSeverity = "info"
)

// Diagnostic codes emitted by the parse pipeline.
const (
	CodeMissingHeader        = "MISSING_HEADER"
	CodeRowLengthMismatch    = "ROW_LENGTH_MISMATCH"
	CodeMissingRequiredField = "MISSING_REQUIRED_FIELD"
	CodeDanglingEdgeTarget   = "DANGLING_EDGE_TARGET"
	CodeUnterminatedQuote    = "UNTERMINATED_QUOTE"
	CodeUnbalancedBrace      = "UNBALANCED_BRACE"
	CodeDuplicateNode        = "DUPLICATE_NODE"
	CodeLintRule             = "LINT_RULE"
	CodeContextSchema        = "CONTEXT_SCHEMA"
)

// ValidationIssue is a single, non-fatal problem with location context.
// Row is the 1-based input line (header = line 1); 0 means the issue applies
// to the table as a whole. Column names the offending header column, or is
// empty for row-level issues.
type ValidationIssue struct {
	Row      int                `json:"row,omitempty"`
	Column   string             `json:"column,omitempty"`
	Code     string             `json:"code"`
	Message  string             `json:"message"`
	Severity ValidationSeverity `json:"severity"`
}

// ValidationResult accumulates every diagnostic produced by one parse.
// Diagnostics never halt processing; callers always get a (possibly partial)
// graph alongside the full list.
type ValidationResult struct {
	Issues []ValidationIssue `json:"issues,omitempty"`
}

// Valid returns true if there are no error-severity issues.
// Warnings and infos are acceptable.
func (r *ValidationResult) Valid() bool {
	return r.CountBySeverity(SeverityError) == 0
}

// AddError appends an error-severity issue.
func (r *ValidationResult) AddError(row int, column, code, message string) {
	r.Issues = append(r.Issues, ValidationIssue{
		Row: row, Column: column, Code: code, Message: message, Severity: SeverityError,
	})
}

// AddWarning appends a warning-severity issue.
func (r *ValidationResult) AddWarning(row int, column, code, message string) {
	r.Issues = append(r.Issues, ValidationIssue{
		Row: row, Column: column, Code: code, Message: message, Severity: SeverityWarning,
	})
}

// AddInfo appends an info-severity issue.
func (r *ValidationResult) AddInfo(row int, column, code, message string) {
	r.Issues = append(r.Issues, ValidationIssue{
		Row: row, Column: column, Code: code, Message: message, Severity: SeverityInfo,
	})
}

// Merge combines another ValidationResult into this one, preserving order.
func (r *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	r.Issues = append(r.Issues, other.Issues...)
}

// BySeverity returns the issues with the given severity, in emission order.
func (r *ValidationResult) BySeverity(sev ValidationSeverity) []ValidationIssue {
	var out []ValidationIssue
	for _, iss := range r.Issues {
		if iss.Severity == sev {
			out = append(out, iss)
		}
	}
	return out
}

// ByCode returns the issues with the given code, in emission order.
func (r *ValidationResult) ByCode(code string) []ValidationIssue {
	var out []ValidationIssue
	for _, iss := range r.Issues {
		if iss.Code == code {
			out = append(out, iss)
		}
	}
	return out
}

// CountBySeverity returns how many issues carry the given severity.
func (r *ValidationResult) CountBySeverity(sev ValidationSeverity) int {
	n := 0
	for _, iss := range r.Issues {
		if iss.Severity == sev {
			n++
		}
	}
	return n
}

// ToError converts the result to a FlowmapError if invalid, nil if valid.
// Parse diagnostics are informational by contract; this is for callers that
// need a hard gate (e.g. strict CI linting).
func (r *ValidationResult) ToError() error {
	if r.Valid() {
		return nil
	}

	errs := r.BySeverity(SeverityError)
	msg := errs[0].Message
	if len(errs) > 1 {
		msg = fmt.Sprintf("validation failed with %d errors", len(errs))
	}

	return NewError(ErrCodeValidation, msg).
		WithDetails(map[string]any{
			"error_count":   len(errs),
			"warning_count": r.CountBySeverity(SeverityWarning),
			"issues":        r.Issues,
		})
}
