package pipeline

import "fmt"

// Kind classifies pipeline failures.
type Kind string

const (
	KindInputInvalid       Kind = "input_invalid"
	KindUpstreamEmpty      Kind = "upstream_empty"
	KindUpstreamFault      Kind = "upstream_fault"
	KindExtractionDegraded Kind = "extraction_degraded"
	KindGenerationInvalid  Kind = "generation_invalid"
	KindStageFault         Kind = "stage_fault"
)

// Error is a classified pipeline failure. errors.Is matches on Kind, so callers can test
// against the sentinels below.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

var (
	ErrInputInvalid      = &Error{Kind: KindInputInvalid}
	ErrUpstreamFault     = &Error{Kind: KindUpstreamFault}
	ErrGenerationInvalid = &Error{Kind: KindGenerationInvalid}
	ErrStageFault        = &Error{Kind: KindStageFault}
)

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newError(kind Kind, op, message string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}
