package llm

import (
	"github.com/lldarena/arena/internal/llm/llmerrors"
	"github.com/lldarena/arena/internal/llm/transport"
)

// Result is the outcome of a structured completion. Success implies Data is
// non-nil and passed schema validation; failure implies Data is nil and
// ErrorMessage describes what went wrong. No completion failure ever escapes
// the client as an error value.
type Result[T any] struct {
	Success        bool
	Kind           llmerrors.Kind
	ErrorMessage   string
	RawText        string
	Data           *T
	Usage          *transport.Usage
	ReasoningTrace string
}

// Validatable lets target types add semantic checks beyond JSON unmarshaling.
// The client runs Validate after decoding; an error fails the completion as
// a schema-validation failure.
type Validatable interface {
	Validate() error
}

func failureResult[T any](err error) Result[T] {
	return Result[T]{
		Kind:         llmerrors.Classify(err),
		ErrorMessage: err.Error(),
	}
}
