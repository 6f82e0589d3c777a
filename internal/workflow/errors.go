package workflow

import (
	"errors"
	"fmt"

	"github.com/dusk-indust/quill/internal/artifact"
)

// Stage failure categories. Every StageError wraps exactly one of them.
var (
	// ErrExecutor means the executor call itself failed.
	ErrExecutor = errors.New("workflow: executor failed")

	// ErrValidation means the output did not match the stage schema.
	ErrValidation = errors.New("workflow: output failed validation")

	// ErrEmptyOutput means the executor returned nothing usable.
	ErrEmptyOutput = errors.New("workflow: empty output")
)

// StageError records which stage failed and why.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// outputError maps a decoding failure onto the stage failure categories.
func outputError(err error) error {
	if errors.Is(err, artifact.ErrEmpty) {
		return fmt.Errorf("%w: %w", ErrEmptyOutput, err)
	}
	return fmt.Errorf("%w: %w", ErrValidation, err)
}
