package record

// Severity ranks a row-level validation problem.
type Severity string

const (
	// SeverityError blocks persistence of the row.
	SeverityError Severity = "error"
	// SeverityWarning is recorded but does not block the row.
	SeverityWarning Severity = "warning"
)

// ImportError is a row/field-scoped validation failure. It is a
// value, not a Go error: the pipeline records it and moves on.
type ImportError struct {
	Row      int      `json:"row"`
	Field    string   `json:"field,omitempty"`
	Value    string   `json:"value,omitempty"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// HasBlocking reports whether any of the errors has severity=error.
func HasBlocking(errs []ImportError) bool {
	for _, e := range errs {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}

// CountBlocking returns the number of severity=error entries.
func CountBlocking(errs []ImportError) int {
	var n int
	for _, e := range errs {
		if e.Severity == SeverityError {
			n++
		}
	}
	return n
}
