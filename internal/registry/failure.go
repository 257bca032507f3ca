package registry

import "fmt"

// ErrorKind classifies a failed invocation.
type ErrorKind string

const (
	UnknownTool          ErrorKind = "unknown_tool"
	MissingArgument      ErrorKind = "missing_argument"
	TypeMismatch         ErrorKind = "type_mismatch"
	DivisionByZero       ErrorKind = "division_by_zero"
	UnsupportedOperation ErrorKind = "unsupported_operation"
	InternalError        ErrorKind = "internal_error"
)

// Failure is a structured, caller-visible invocation failure. Handlers
// return it as an error for modeled domain failures.
type Failure struct {
	Kind    ErrorKind
	Message string
	// Supported lists the accepted alternatives, when there is a finite set.
	Supported []string
	// Details are extra echo fields merged into the failure document.
	Details Payload
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// Failf builds a Failure with a formatted message.
func Failf(kind ErrorKind, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
